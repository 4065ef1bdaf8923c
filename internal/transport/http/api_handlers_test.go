package http

import (
	"net/http"
	"testing"

	"tablon-server/internal/store"
)

func TestHealth(t *testing.T) {
	env := newTestServer(t)

	resp := env.request(t, http.MethodGet, "/health", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestServer(t)

	token := env.register(t, "ana", store.RoleStudent)
	if token == "" {
		t.Fatalf("expected token from registration")
	}

	// duplicate username
	resp := env.request(t, http.MethodPost, "/api/register", "", RegisterRequest{
		Username: "ana",
		Password: "password123",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate username, got %d", resp.StatusCode)
	}

	// binding rejects a short password before the service sees it
	resp = env.request(t, http.MethodPost, "/api/register", "", RegisterRequest{
		Username: "luis",
		Password: "123",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", resp.StatusCode)
	}

	// unknown role is rejected by binding
	resp = env.request(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": "luis",
		"password": "password123",
		"role":     "admin",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d", resp.StatusCode)
	}

	resp = env.request(t, http.MethodPost, "/api/login", "", LoginRequest{
		Username: "ana",
		Password: "password123",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for login, got %d", resp.StatusCode)
	}
	var out AuthResponse
	decodeBody(t, resp, &out)
	if out.Token == "" {
		t.Fatalf("expected token from login")
	}

	bad := env.request(t, http.MethodPost, "/api/login", "", LoginRequest{
		Username: "ana",
		Password: "wrong-password",
	})
	bad.Body.Close()
	if bad.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", bad.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	env := newTestServer(t)

	resp := env.request(t, http.MethodPost, "/api/messages", "", CreateMessageRequest{
		Subject: "Inglés",
		Content: "Hola",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	resp = env.request(t, http.MethodPost, "/api/messages", "not-a-token", CreateMessageRequest{
		Subject: "Inglés",
		Content: "Hola",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with garbage token, got %d", resp.StatusCode)
	}
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestServer(t)

	resp := env.request(t, http.MethodGet, "/health", "", nil)
	resp.Body.Close()
	if resp.Header.Get(HeaderRequestID) == "" {
		t.Fatalf("expected generated request id header")
	}

	req, err := http.NewRequest(http.MethodGet, env.ts.URL+"/health", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set(HeaderRequestID, "my-trace-id")
	resp, err = env.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(HeaderRequestID); got != "my-trace-id" {
		t.Fatalf("expected client request id echoed back, got %q", got)
	}
}
