package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quiz-event/pkg/cache"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
)

func testVerifier(token string) (Identity, error) {
	switch token {
	case "admin-token":
		return Identity{UserID: "a1", Username: "dumbledore", IsAdmin: true}, nil
	case "user-token":
		return Identity{UserID: "u1", Username: "harry"}, nil
	}
	return Identity{}, errors.New("bad token")
}

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(testVerifier)
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	t.Cleanup(server.Close)
	return hub, server
}

func dial(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d clients, have %d", n, hub.ClientCount())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	var msg Message
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestHandshakeRejectsBadToken(t *testing.T) {
	_, server := startHub(t)

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=nope"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}

	u = "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	if _, resp, _ = websocket.DefaultDialer.Dial(u, nil); resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token")
	}
}

func TestRoomsRouteEvents(t *testing.T) {
	hub, server := startHub(t)
	admin := dial(t, server, "admin-token")
	participant := dial(t, server, "user-token")
	waitForClients(t, hub, 2)

	// The participant's first message must be question:locked, which proves
	// answer:new never reached it.
	hub.EmitNewAnswer(map[string]interface{}{"questionId": "q1", "isCorrect": true})
	hub.EmitQuestionLocked("q1")

	if msg := readMessage(t, admin); msg.Type != EventAnswerNew {
		t.Fatalf("expected answer:new for admin, got %s", msg.Type)
	}
	for _, conn := range []*websocket.Conn{admin, participant} {
		msg := readMessage(t, conn)
		if msg.Type != EventQuestionLocked {
			t.Fatalf("expected question:locked, got %s", msg.Type)
		}
		data, _ := msg.Data.(map[string]interface{})
		if data["questionId"] != "q1" {
			t.Fatalf("unexpected payload %+v", msg.Data)
		}
	}

	hub.EmitEventFinalized(map[string]interface{}{"totalQuestions": 5})
	for _, conn := range []*websocket.Conn{admin, participant} {
		if msg := readMessage(t, conn); msg.Type != EventEventFinalized {
			t.Fatalf("expected event:finalized, got %s", msg.Type)
		}
	}
}

func TestClientMessagesAreIgnored(t *testing.T) {
	hub, server := startHub(t)
	conn := dial(t, server, "user-token")
	waitForClients(t, hub, 1)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"answer","data":{}}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	hub.EmitScoreboardUpdate(map[string]interface{}{"participants": []interface{}{}})
	if msg := readMessage(t, conn); msg.Type != EventScoreboardUpdate {
		t.Fatalf("expected scoreboard:update, got %s", msg.Type)
	}
	if hub.ClientCount() != 1 {
		t.Fatalf("expected client to stay connected")
	}
}

func TestRelayDeliversAcrossHubs(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	newRelay := func() *cache.RedisCache {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })
		return cache.NewRedisCacheWithClient(client, time.Minute, "test:events")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	origin, _ := startHub(t)
	if err := origin.AttachRelay(ctx, newRelay()); err != nil {
		t.Fatalf("attach origin: %v", err)
	}
	remote, remoteServer := startHub(t)
	if err := remote.AttachRelay(ctx, newRelay()); err != nil {
		t.Fatalf("attach remote: %v", err)
	}

	conn := dial(t, remoteServer, "user-token")
	waitForClients(t, remote, 1)

	origin.EmitQuestionLocked("q9")
	msg := readMessage(t, conn)
	if msg.Type != EventQuestionLocked {
		t.Fatalf("expected relayed question:locked, got %s", msg.Type)
	}
}
