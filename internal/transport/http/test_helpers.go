package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tablon-server/internal/auth"
	"tablon-server/internal/config"
	"tablon-server/internal/feed"
	"tablon-server/internal/moderation"
	"tablon-server/internal/store"
	"tablon-server/internal/store/sqlite"
)

// testEnv bundles a running test server with the pieces tests poke at
// directly.
type testEnv struct {
	ts     *httptest.Server
	store  store.Store
	broker *feed.Broker
}

// newTestServer builds the full router against an in-memory SQLite store.
// opts may tweak the config before the server is constructed.
func newTestServer(t *testing.T, opts ...func(*config.Config)) *testEnv {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	disabledLogger := zerolog.New(nil)

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}
	authService := auth.NewService(st, jwtConfig)

	screener, err := moderation.NewScreener(moderation.DefaultDenylist)
	if err != nil {
		t.Fatalf("failed to create screener: %v", err)
	}
	broker := feed.NewBroker(&disabledLogger)
	svc := moderation.NewService(st, screener, broker)

	cfg := config.Default()
	cfg.SubmitPerMinute = 0
	for _, opt := range opts {
		opt(&cfg)
	}

	server := NewServer(svc, authService, st, broker, &cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, store: st, broker: broker}
}

// register creates a user through the API and returns its token.
func (e *testEnv) register(t *testing.T, username string, role store.Role) string {
	t.Helper()

	resp := e.request(t, http.MethodPost, "/api/register", "", RegisterRequest{
		Username: username,
		Password: "password123",
		Role:     string(role),
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: unexpected status %d", username, resp.StatusCode)
	}

	var out AuthResponse
	decodeBody(t, resp, &out)
	if out.Token == "" {
		t.Fatalf("register %s: empty token", username)
	}
	return out.Token
}

// request performs a JSON request against the test server. body may be nil.
func (e *testEnv) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.ts.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()

	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
