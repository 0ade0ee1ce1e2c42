package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"assessment-engine/internal/app"
	"github.com/gorilla/websocket"
)

func TestEventStreamDeliversSessionEvents(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/test/events?token=" + tokenFor(t, "u1")
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Expect subscribed event first.
	_, payload := readNext(conn, t, "subscribed")
	if payload["userId"] != "u1" {
		t.Fatalf("expected subscription for u1, got %v", payload)
	}

	created, err := env.service.Create(context.Background(), app.CreateRequest{UserID: "u1", Domain: "mathematics", QuestionCount: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, payload = readNext(conn, t, "session.created")
	if payload["sessionId"] != created.SessionID {
		t.Fatalf("expected event for %s, got %v", created.SessionID, payload)
	}

	// Another user's events are not delivered.
	if _, err := env.service.Create(context.Background(), app.CreateRequest{UserID: "u2", Domain: "mathematics", QuestionCount: 1}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if ok, err := env.service.Abandon(context.Background(), created.SessionID, "u1"); err != nil || !ok {
		t.Fatalf("abandon: ok=%v err=%v", ok, err)
	}
	readNext(conn, t, "session.abandoned")

	if err := conn.WriteJSON(map[string]any{"type": "ping"}); err != nil {
		t.Fatalf("write ping: %v", err)
	}
	readNext(conn, t, "pong")
}

func TestEventStreamRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/test/events"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail without token")
	}
	if resp == nil || resp.StatusCode != 401 {
		t.Fatalf("expected 401, got %+v", resp)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
