package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/questhall/questhall/internal/config"
	"github.com/questhall/questhall/internal/domain"
)

type stubStore struct {
	messages []domain.Message
	err      error
	gotRoom  domain.RoomID
	gotLimit int
}

func (s *stubStore) CreateMessage(_ context.Context, roomID domain.RoomID, senderID domain.UserID, content string) (domain.Message, error) {
	return domain.Message{}, errors.New("not implemented")
}

func (s *stubStore) TouchRoom(_ context.Context, _ domain.RoomID) error { return nil }

func (s *stubStore) ListMessages(_ context.Context, roomID domain.RoomID, limit int) ([]domain.Message, error) {
	s.gotRoom = roomID
	s.gotLimit = limit
	return s.messages, s.err
}

func testConfig() *config.Config {
	return &config.Config{Mode: "test", Secret: "test-secret"}
}

func doRequest(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupRouter(testConfig(), &stubStore{})

	w := doRequest(t, r, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRoomHistory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &stubStore{
		messages: []domain.Message{
			{ID: "m1", RoomID: "r1", SenderID: "u1", Content: "hello", CreatedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)},
			{ID: "m2", RoomID: "r1", SenderID: "u2", Content: "hi", CreatedAt: time.Date(2026, 3, 14, 9, 27, 2, 0, time.UTC)},
		},
	}
	r := SetupRouter(testConfig(), store)

	w := doRequest(t, r, "/api/rooms/r1/messages")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if store.gotRoom != "r1" {
		t.Fatalf("expected room r1, got %q", store.gotRoom)
	}
	if store.gotLimit != defaultHistoryLimit {
		t.Fatalf("expected default limit %d, got %d", defaultHistoryLimit, store.gotLimit)
	}

	var body struct {
		Messages []messageDTO `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(body.Messages))
	}
	first := body.Messages[0]
	if first.ID != "m1" || first.RoomID != "r1" || first.UserID != "u1" || first.Content != "hello" {
		t.Fatalf("unexpected first message: %+v", first)
	}
}

func TestRoomHistoryLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &stubStore{}
	r := SetupRouter(testConfig(), store)

	if w := doRequest(t, r, "/api/rooms/r1/messages?limit=7"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if store.gotLimit != 7 {
		t.Fatalf("expected limit 7, got %d", store.gotLimit)
	}

	if w := doRequest(t, r, "/api/rooms/r1/messages?limit=9999"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if store.gotLimit != maxHistoryLimit {
		t.Fatalf("expected capped limit %d, got %d", maxHistoryLimit, store.gotLimit)
	}
}

func TestRoomHistoryInvalidLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupRouter(testConfig(), &stubStore{})

	for _, raw := range []string{"abc", "0", "-3"} {
		w := doRequest(t, r, "/api/rooms/r1/messages?limit="+raw)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("limit=%s: expected 400, got %d", raw, w.Code)
		}
	}
}

func TestRoomHistoryStoreError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupRouter(testConfig(), &stubStore{err: errors.New("db gone")})

	w := doRequest(t, r, "/api/rooms/r1/messages")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestClientTokenIssued(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := SetupRouter(testConfig(), &stubStore{})

	w := doRequest(t, r, "/healthz")
	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == "ct" && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected a client token cookie on first visit")
	}
}
