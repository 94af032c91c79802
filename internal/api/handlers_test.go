package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/memeseal/casino-core/internal/auth"
	"github.com/memeseal/casino-core/internal/config"
	"github.com/memeseal/casino-core/internal/history"
	"github.com/memeseal/casino-core/pkg/chipbank"
)

// testBank is an in-process settlement service applying the bet math to
// its own balance.
type testBank struct {
	mu      sync.Mutex
	balance float64
}

func (b *testBank) PlaceBet(_ context.Context, req *chipbank.PlaceBetRequest) (*chipbank.BetResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balance = b.balance - req.BetAmount + req.WinAmount
	return &chipbank.BetResult{Chips: b.balance}, nil
}

func (b *testBank) GetBalance(_ context.Context, _ string) (*chipbank.BalanceResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &chipbank.BalanceResult{Chips: b.balance}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *testBank) {
	t.Helper()

	cfg := config.Load()
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenExpiry = time.Hour
	cfg.Game.CrashTick = 2 * time.Millisecond

	math := config.DefaultGameMath()
	slots, roulette, crash, err := math.Build()
	if err != nil {
		t.Fatalf("Failed to build generators: %v", err)
	}

	bank := &testBank{balance: 50}
	h := New(auth.New(&cfg.Auth), bank, history.NewMemory(0), cfg, nil, slots, roulette, crash)

	server := httptest.NewServer(h.SetupRouter())
	t.Cleanup(server.Close)
	return server, bank
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

func doJSON(t *testing.T, method, url, token string, body interface{}) (int, *apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp.StatusCode, &out
}

func startSession(t *testing.T, server *httptest.Server) string {
	t.Helper()

	status, resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/session", "",
		map[string]string{"user_id": "user-1"})
	if status != http.StatusOK {
		t.Fatalf("Session start returned %d: %+v", status, resp.Error)
	}

	var data struct {
		Token   string  `json:"token"`
		Balance float64 `json:"balance"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("Failed to decode session data: %v", err)
	}
	if data.Balance != 50 {
		t.Fatalf("Expected seeded balance 50, got %v", data.Balance)
	}
	return data.Token
}

func TestSessionBootstrap(t *testing.T) {
	server, _ := newTestServer(t)

	t.Run("StartIssuesToken", func(t *testing.T) {
		if token := startSession(t, server); token == "" {
			t.Error("Expected a session token")
		}
	})

	t.Run("MissingUserIDRejected", func(t *testing.T) {
		status, resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/session", "",
			map[string]string{})
		if status != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", status)
		}
		if resp.Error == nil || resp.Error.Code != "INVALID_REQUEST" {
			t.Errorf("Unexpected error %+v", resp.Error)
		}
	})

	t.Run("ProtectedRouteNeedsToken", func(t *testing.T) {
		status, resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/state", "", nil)
		if status != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", status)
		}
		if resp.Error == nil || resp.Error.Code != "NO_TOKEN" {
			t.Errorf("Unexpected error %+v", resp.Error)
		}
	})

	t.Run("ForgedTokenRejected", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodGet, server.URL+"/api/v1/state", "forged", nil)
		if status != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", status)
		}
	})

	t.Run("UnknownRouteIs404", func(t *testing.T) {
		status, resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/blackjack", "", nil)
		if status != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", status)
		}
		if resp.Error == nil || resp.Error.Code != "NOT_FOUND" {
			t.Errorf("Unexpected error %+v", resp.Error)
		}
	})
}

func TestSpinEndpoints(t *testing.T) {
	server, _ := newTestServer(t)
	token := startSession(t, server)

	t.Run("OverdraftIs402", func(t *testing.T) {
		status, resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/slots/spin", token,
			map[string]interface{}{"amount": 100})
		if status != http.StatusPaymentRequired {
			t.Errorf("Expected 402, got %d: %+v", status, resp.Error)
		}
	})

	t.Run("SlotsSpinSettles", func(t *testing.T) {
		status, resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/slots/spin", token,
			map[string]interface{}{"amount": 1})
		if status != http.StatusOK {
			t.Fatalf("Spin returned %d: %+v", status, resp.Error)
		}
		var data struct {
			Bet struct {
				Status string `json:"status"`
			} `json:"bet"`
			Balance float64 `json:"balance"`
		}
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			t.Fatalf("Failed to decode spin data: %v", err)
		}
		if data.Bet.Status != "settled" {
			t.Errorf("Expected settled bet, got %s", data.Bet.Status)
		}
	})

	t.Run("AboveMaxBetIs400", func(t *testing.T) {
		status, resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/slots/spin", token,
			map[string]interface{}{"amount": 5000})
		if status != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", status)
		}
		if resp.Error == nil || resp.Error.Code != "INVALID_AMOUNT" {
			t.Errorf("Unexpected error %+v", resp.Error)
		}
	})

	t.Run("UnknownRoulettePickIs400", func(t *testing.T) {
		status, resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/roulette/spin", token,
			map[string]interface{}{"amount": 1, "pick": "doge"})
		if status != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", status)
		}
		if resp.Error == nil || resp.Error.Code != "UNKNOWN_CATEGORY" {
			t.Errorf("Unexpected error %+v", resp.Error)
		}
	})

	t.Run("NoSessionIs404", func(t *testing.T) {
		// A valid token whose session set was never started.
		cfg := config.Load()
		cfg.Auth.JWTSecret = "test-secret"
		cfg.Auth.TokenExpiry = time.Hour
		orphan, err := auth.New(&cfg.Auth).IssueToken("user-2")
		if err != nil {
			t.Fatalf("Failed to issue token: %v", err)
		}
		status, resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/slots/spin", orphan,
			map[string]interface{}{"amount": 1})
		if status != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", status)
		}
		if resp.Error == nil || resp.Error.Code != "NO_SESSION" {
			t.Errorf("Unexpected error %+v", resp.Error)
		}
	})
}

func TestCrashEndpoints(t *testing.T) {
	server, _ := newTestServer(t)
	token := startSession(t, server)

	t.Run("CashOutWithoutRoundIs409", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/crash/cashout", token, nil)
		if status != http.StatusConflict {
			t.Errorf("Expected 409, got %d", status)
		}
	})

	t.Run("PlaceThenState", func(t *testing.T) {
		status, resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/crash/bet", token,
			map[string]interface{}{"amount": 1})
		if status != http.StatusOK {
			t.Fatalf("Place returned %d: %+v", status, resp.Error)
		}

		status, resp = doJSON(t, http.MethodGet, server.URL+"/api/v1/state", token, nil)
		if status != http.StatusOK {
			t.Fatalf("State returned %d: %+v", status, resp.Error)
		}
		var data struct {
			Crash struct {
				Status string `json:"status"`
			} `json:"crash"`
		}
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			t.Fatalf("Failed to decode state: %v", err)
		}
		// The round may still be flying or already concluded; either way a
		// bet exists on the crash controller.
		if data.Crash.Status == "idle" {
			t.Error("Expected a crash bet on the controller")
		}
	})

	t.Run("EndSessionClosesRound", func(t *testing.T) {
		status, _ := doJSON(t, http.MethodDelete, server.URL+"/api/v1/session", token, nil)
		if status != http.StatusOK {
			t.Errorf("Expected 200, got %d", status)
		}
		status, resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/state", token, nil)
		if status != http.StatusNotFound {
			t.Errorf("Expected 404 after session end, got %d: %+v", status, resp.Error)
		}
	})
}

func TestHistoryEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	token := startSession(t, server)

	if status, resp := doJSON(t, http.MethodPost, server.URL+"/api/v1/slots/spin", token,
		map[string]interface{}{"amount": 1}); status != http.StatusOK {
		t.Fatalf("Spin returned %d: %+v", status, resp.Error)
	}

	status, resp := doJSON(t, http.MethodGet, server.URL+"/api/v1/history?game=slots", token, nil)
	if status != http.StatusOK {
		t.Fatalf("History returned %d: %+v", status, resp.Error)
	}
	var rounds []struct {
		GameType string  `json:"game_type"`
		Wager    float64 `json:"wager"`
	}
	if err := json.Unmarshal(resp.Data, &rounds); err != nil {
		t.Fatalf("Failed to decode history: %v", err)
	}
	if len(rounds) != 1 {
		t.Fatalf("Expected one round, got %d", len(rounds))
	}
	if rounds[0].GameType != "slots" {
		t.Errorf("Unexpected round %+v", rounds[0])
	}
}
