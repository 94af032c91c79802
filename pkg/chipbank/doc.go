// Package chipbank provides a client for the chip bank service that owns
// the authoritative chips balance. The core consumes two endpoints: a
// settlement call that records a bet and returns the post-settlement
// balance, and a balance query used to seed the local ledger.
//
// All requests and responses are plain JSON. A response whose success
// field is false or absent is a rejection; the caller must roll back any
// optimistic mutation. Transport errors are reported separately but must
// be handled identically: unknown is never success.
package chipbank
