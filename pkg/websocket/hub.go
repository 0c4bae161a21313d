package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Message represents the standard message format pushed over WebSocket.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

const (
	EventScoreboardUpdate = "scoreboard:update"
	EventQuestionLocked   = "question:locked"
	EventAnswerNew        = "answer:new"
	EventEventFinalized   = "event:finalized"
)

const (
	RoomScoreboard = "scoreboard"
	RoomAdmin      = "admin"
	// roomAll addresses every connected client.
	roomAll = ""
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Identity is the authenticated principal behind a connection.
type Identity struct {
	UserID   string
	Username string
	IsAdmin  bool
}

// VerifyFunc validates a bearer token presented at handshake.
type VerifyFunc func(token string) (Identity, error)

// Relay fans hub broadcasts out to every server instance, this one
// included.
type Relay interface {
	Publish(ctx context.Context, payload []byte) error
	Subscribe(ctx context.Context) (<-chan []byte, error)
}

type relayEnvelope struct {
	Room    string          `json:"room"`
	Message json.RawMessage `json:"message"`
}

type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
	mu         sync.RWMutex
	verify     VerifyFunc
	relay      Relay
	upgrader   websocket.Upgrader
}

func NewHub(verify VerifyFunc) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		verify:     verify,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// AttachRelay subscribes to relay and delivers every received broadcast to
// local clients. Once attached, broadcasts go through the relay only.
func (h *Hub) AttachRelay(ctx context.Context, relay Relay) error {
	messages, err := relay.Subscribe(ctx)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.relay = relay
	h.mu.Unlock()

	go func() {
		for raw := range messages {
			var env relayEnvelope
			if err := json.Unmarshal(raw, &env); err != nil {
				log.Warn().Err(err).Msg("dropping malformed relay message")
				continue
			}
			h.deliver(env.Room, env.Message)
		}
	}()
	return nil
}

type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	identity Identity
	rooms    []string
}

// Run owns client registration until ctx is cancelled, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.quit)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			for _, room := range client.rooms {
				if _, ok := h.rooms[room]; !ok {
					h.rooms[room] = make(map[*Client]bool)
				}
				h.rooms[room][client] = true
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Debug().Str("user_id", client.identity.UserID).Strs("rooms", client.rooms).Int("clients", total).Msg("websocket client registered")

		case client := <-h.unregister:
			h.removeClient(client)

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.rooms = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	for _, room := range client.rooms {
		delete(h.rooms[room], client)
	}
	delete(h.clients, client)
	close(client.send)
	log.Debug().Str("user_id", client.identity.UserID).Msg("websocket client left")
}

// ClientCount returns the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event to a room. With a relay attached the event is
// published and delivered when it comes back; on publish failure it falls
// back to local delivery.
func (h *Hub) Broadcast(room, eventType string, data interface{}) {
	message, err := json.Marshal(Message{Type: eventType, Data: data})
	if err != nil {
		log.Error().Err(err).Str("type", eventType).Msg("error marshaling websocket message")
		return
	}

	h.mu.RLock()
	relay := h.relay
	h.mu.RUnlock()

	if relay != nil {
		payload, err := json.Marshal(relayEnvelope{Room: room, Message: message})
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err = relay.Publish(ctx, payload)
			cancel()
		}
		if err == nil {
			return
		}
		log.Warn().Err(err).Str("type", eventType).Msg("relay publish failed, delivering locally")
	}
	h.deliver(room, message)
}

func (h *Hub) deliver(room string, message []byte) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	if room == roomAll {
		for client := range h.clients {
			targets = append(targets, client)
		}
	} else {
		for client := range h.rooms[room] {
			targets = append(targets, client)
		}
	}

	var slow []*Client
	for _, client := range targets {
		select {
		case client.send <- message:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		log.Warn().Str("user_id", client.identity.UserID).Msg("send channel full; unregistering client")
		h.removeClient(client)
	}
}

func (h *Hub) EmitScoreboardUpdate(scoreboard interface{}) {
	h.Broadcast(RoomScoreboard, EventScoreboardUpdate, scoreboard)
}

func (h *Hub) EmitQuestionLocked(questionID string) {
	h.Broadcast(RoomScoreboard, EventQuestionLocked, map[string]string{"questionId": questionID})
}

func (h *Hub) EmitNewAnswer(answer interface{}) {
	h.Broadcast(RoomAdmin, EventAnswerNew, answer)
}

func (h *Hub) EmitEventFinalized(summary interface{}) {
	h.Broadcast(roomAll, EventEventFinalized, summary)
}

var errNoToken = errors.New("No token provided")

func tokenFromRequest(r *http.Request) (string, error) {
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errNoToken
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return "", errors.New("Token format invalid")
	}
	return token, nil
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// HandleWebSocket authenticates the handshake, upgrades the connection and
// registers the client in the scoreboard room, plus the admin room for
// administrators.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token, err := tokenFromRequest(r)
	if err != nil {
		writeUnauthorized(w, err.Error())
		return
	}
	identity, err := h.verify(token)
	if err != nil {
		writeUnauthorized(w, "Invalid or expired token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade error")
		return
	}

	rooms := []string{RoomScoreboard}
	if identity.IsAdmin {
		rooms = append(rooms, RoomAdmin)
	}
	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 256),
		identity: identity,
		rooms:    rooms,
	}

	select {
	case h.register <- client:
	case <-h.quit:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump drains the connection so control frames are processed. Client
// payloads carry no meaning and are discarded.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.quit:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Msg("unexpected websocket close")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(message); err != nil {
				log.Debug().Err(err).Msg("error writing websocket message")
				return
			}
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
