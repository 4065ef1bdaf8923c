package http

import (
	"fmt"
	"net/http"
	"testing"

	"tablon-server/internal/config"
	"tablon-server/internal/store"
)

func createMessage(t *testing.T, env *testEnv, token, subject, content string) CreateMessageResponse {
	t.Helper()

	resp := env.request(t, http.MethodPost, "/api/messages", token, CreateMessageRequest{
		Subject: subject,
		Content: content,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create message: unexpected status %d", resp.StatusCode)
	}
	var out CreateMessageResponse
	decodeBody(t, resp, &out)
	return out
}

func listFeed(t *testing.T, env *testEnv, path, token string) FeedResponse {
	t.Helper()

	resp := env.request(t, http.MethodGet, path, token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	var out FeedResponse
	decodeBody(t, resp, &out)
	return out
}

func TestSubmitApprovePublishFlow(t *testing.T) {
	env := newTestServer(t)
	student := env.register(t, "ana", store.RoleStudent)
	teacher := env.register(t, "marta", store.RoleTeacher)

	created := createMessage(t, env, student, "Inglés", "Hola a todos")
	if created.Status != "pending" {
		t.Fatalf("expected pending, got %q", created.Status)
	}

	// not in the public feed yet
	feed := listFeed(t, env, "/api/messages", "")
	if len(feed.Messages) != 0 {
		t.Fatalf("expected empty feed before approval, got %d", len(feed.Messages))
	}

	// student cannot reach moderation routes
	resp := env.request(t, http.MethodGet, "/api/moderation/pending", student, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for student on moderation route, got %d", resp.StatusCode)
	}

	pending := listFeed(t, env, "/api/moderation/pending", teacher)
	if len(pending.Messages) != 1 || pending.Messages[0].ID != created.ID {
		t.Fatalf("expected message in pending queue, got %+v", pending.Messages)
	}
	if pending.Messages[0].Author != "ana" {
		t.Fatalf("expected author display name, got %q", pending.Messages[0].Author)
	}

	resp = env.request(t, http.MethodPost, fmt.Sprintf("/api/moderation/%d/approve", created.ID), teacher, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for approve, got %d", resp.StatusCode)
	}

	feed = listFeed(t, env, "/api/messages", "")
	if len(feed.Messages) != 1 || feed.Messages[0].ID != created.ID {
		t.Fatalf("expected approved message in feed, got %+v", feed.Messages)
	}

	// decision is final: a second approve conflicts
	resp = env.request(t, http.MethodPost, fmt.Sprintf("/api/moderation/%d/approve", created.ID), teacher, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for double approve, got %d", resp.StatusCode)
	}
}

func TestUnsafeSubmissionAutoRejected(t *testing.T) {
	env := newTestServer(t)
	student := env.register(t, "ana", store.RoleStudent)
	teacher := env.register(t, "marta", store.RoleTeacher)

	created := createMessage(t, env, student, "Inglés", "esto es una mierda")
	if created.Status != "rejected" {
		t.Fatalf("expected rejected, got %q", created.Status)
	}

	rejected := listFeed(t, env, "/api/moderation/rejected", teacher)
	if len(rejected.Messages) != 1 || rejected.Messages[0].ID != created.ID {
		t.Fatalf("expected message in rejected view, got %+v", rejected.Messages)
	}
	pending := listFeed(t, env, "/api/moderation/pending", teacher)
	if len(pending.Messages) != 0 {
		t.Fatalf("rejected message must not be in pending queue")
	}
}

func TestFeedSubjectFilter(t *testing.T) {
	env := newTestServer(t)
	student := env.register(t, "ana", store.RoleStudent)
	teacher := env.register(t, "marta", store.RoleTeacher)

	english := createMessage(t, env, student, "Inglés", "clase de inglés")
	other := createMessage(t, env, student, "Despliegue", "clase de despliegue")
	for _, id := range []int64{english.ID, other.ID} {
		resp := env.request(t, http.MethodPost, fmt.Sprintf("/api/moderation/%d/approve", id), teacher, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("approve %d: unexpected status %d", id, resp.StatusCode)
		}
	}

	feed := listFeed(t, env, "/api/messages?subject=Inglés", "")
	if len(feed.Messages) != 1 || feed.Messages[0].ID != english.ID {
		t.Fatalf("expected only the Inglés message, got %+v", feed.Messages)
	}

	all := listFeed(t, env, "/api/messages?subject=todas", "")
	if len(all.Messages) != 2 {
		t.Fatalf("expected both messages for todas, got %d", len(all.Messages))
	}
	// newest first
	if all.Messages[0].ID != other.ID {
		t.Fatalf("expected newest message first, got %+v", all.Messages)
	}
}

func TestListSubjects(t *testing.T) {
	env := newTestServer(t)

	resp := env.request(t, http.MethodGet, "/api/subjects", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out struct {
		Subjects []string `json:"subjects"`
	}
	decodeBody(t, resp, &out)
	if len(out.Subjects) == 0 {
		t.Fatalf("expected non-empty subject list")
	}
}

func TestEditMessage(t *testing.T) {
	env := newTestServer(t)
	student := env.register(t, "ana", store.RoleStudent)
	other := env.register(t, "luis", store.RoleStudent)
	teacher := env.register(t, "marta", store.RoleTeacher)

	created := createMessage(t, env, student, "Inglés", "Hola")
	resp := env.request(t, http.MethodPost, fmt.Sprintf("/api/moderation/%d/approve", created.ID), teacher, nil)
	resp.Body.Close()

	// non-owner cannot edit
	resp = env.request(t, http.MethodPut, fmt.Sprintf("/api/messages/%d", created.ID), other, CreateMessageRequest{
		Subject: "Inglés",
		Content: "hackeado",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner edit, got %d", resp.StatusCode)
	}

	// owner edit pulls the message back into the queue
	resp = env.request(t, http.MethodPut, fmt.Sprintf("/api/messages/%d", created.ID), student, CreateMessageRequest{
		Subject: "Inglés",
		Content: "Hola de nuevo",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for owner edit, got %d", resp.StatusCode)
	}
	var out map[string]string
	decodeBody(t, resp, &out)
	if out["status"] != "pending" {
		t.Fatalf("expected pending after edit, got %q", out["status"])
	}

	feed := listFeed(t, env, "/api/messages", "")
	if len(feed.Messages) != 0 {
		t.Fatalf("edited message must leave the feed, got %+v", feed.Messages)
	}

	// unknown id
	resp = env.request(t, http.MethodPut, "/api/messages/9999", student, CreateMessageRequest{
		Subject: "Inglés",
		Content: "Hola",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown message, got %d", resp.StatusCode)
	}

	// malformed id
	resp = env.request(t, http.MethodPut, "/api/messages/abc", student, CreateMessageRequest{
		Subject: "Inglés",
		Content: "Hola",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", resp.StatusCode)
	}
}

func TestDeleteMessage(t *testing.T) {
	env := newTestServer(t)
	student := env.register(t, "ana", store.RoleStudent)
	other := env.register(t, "luis", store.RoleStudent)

	created := createMessage(t, env, student, "Inglés", "Hola")

	resp := env.request(t, http.MethodDelete, fmt.Sprintf("/api/messages/%d", created.ID), other, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner delete, got %d", resp.StatusCode)
	}

	resp = env.request(t, http.MethodDelete, fmt.Sprintf("/api/messages/%d", created.ID), student, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 for owner delete, got %d", resp.StatusCode)
	}

	// deleted is terminal
	resp = env.request(t, http.MethodDelete, fmt.Sprintf("/api/messages/%d", created.ID), student, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for double delete, got %d", resp.StatusCode)
	}
	resp = env.request(t, http.MethodPut, fmt.Sprintf("/api/messages/%d", created.ID), student, CreateMessageRequest{
		Subject: "Inglés",
		Content: "resucitado",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 editing deleted message, got %d", resp.StatusCode)
	}
}

func TestSubmissionRateLimit(t *testing.T) {
	env := newTestServer(t, func(cfg *config.Config) {
		cfg.SubmitPerMinute = 2
	})
	student := env.register(t, "ana", store.RoleStudent)

	createMessage(t, env, student, "Inglés", "uno")
	createMessage(t, env, student, "Inglés", "dos")

	resp := env.request(t, http.MethodPost, "/api/messages", student, CreateMessageRequest{
		Subject: "Inglés",
		Content: "tres",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over the submission limit, got %d", resp.StatusCode)
	}
}

func TestUpdateTheme(t *testing.T) {
	env := newTestServer(t)
	student := env.register(t, "ana", store.RoleStudent)

	resp := env.request(t, http.MethodPut, "/api/profile/theme", student, ThemeRequest{Theme: "dark"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = env.request(t, http.MethodPut, "/api/profile/theme", student, map[string]string{"theme": "neon"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown theme, got %d", resp.StatusCode)
	}
}
