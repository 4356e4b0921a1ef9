package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisPubSubChannel = "notifications"

// Event types pushed to clients. The connected handshake is always the
// first event on a new stream and carries no payload.
const (
	EventConnected    = "connected"
	EventNotification = "notification"
)

// Event represents a real-time event sent via WebSocket
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Hub tracks at most one WebSocket client per user in this process and
// routes events to them. Delivery is best-effort, at most once: a user
// with no tracked client simply misses the push and reconciles by
// pulling durable state.
type Hub struct {
	// One active client per user ID. A new registration for the same
	// user replaces (and closes) the previous connection.
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *targetedEvent

	mu          sync.RWMutex
	redisClient *redis.Client
	// instanceID marks this hub's own pub/sub publishes so the
	// subscriber can drop them instead of delivering twice.
	instanceID string
	ctx        context.Context
	cancel     context.CancelFunc
}

type targetedEvent struct {
	UserID string
	Event  *Event
}

// NewHub creates a new Hub. redisClient may be nil; cross-instance
// fan-out is then disabled and only local clients receive pushes.
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[string]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *targetedEvent, 256),
		redisClient: redisClient,
		instanceID:  uuid.New().String(),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	// Start Redis subscriber if Redis is available
	if h.redisClient != nil {
		go h.subscribeRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[client.userID]; ok {
				close(old.send)
			}
			h.clients[client.userID] = client
			h.mu.Unlock()
			h.handshake(client)

		case client := <-h.unregister:
			h.mu.Lock()
			// Only remove if this exact client is still tracked; a
			// replaced connection was already closed on register.
			if current, ok := h.clients[client.userID]; ok && current == client {
				delete(h.clients, client.userID)
				close(client.send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			if client, ok := h.clients[msg.UserID]; ok {
				data, err := json.Marshal(msg.Event)
				if err == nil {
					select {
					case client.send <- data:
					default:
						close(client.send)
						delete(h.clients, msg.UserID)
					}
				}
			}
			h.mu.Unlock()

		case <-h.ctx.Done():
			return
		}
	}
}

// handshake confirms stream liveness before any notification event
func (h *Hub) handshake(client *Client) {
	data, err := json.Marshal(&Event{Type: EventConnected})
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
	}
}

// SendToUser sends an event to a specific user (local + Redis publish)
func (h *Hub) SendToUser(userID string, event *Event) {
	// Local broadcast
	h.broadcast <- &targetedEvent{UserID: userID, Event: event}

	// Publish to Redis for multi-instance support. The publish is
	// tagged with this instance's ID; our own subscriber drops it so
	// locally connected clients are not delivered to twice.
	if h.redisClient != nil {
		msg := &redisMessage{Origin: h.instanceID, UserID: userID, Event: event}
		data, err := json.Marshal(msg)
		if err == nil {
			h.redisClient.Publish(h.ctx, redisPubSubChannel, data) //nolint:errcheck
		}
	}
}

// Connected reports whether a user has an active client in this process
func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

type redisMessage struct {
	Origin string `json:"origin"`
	UserID string `json:"user_id"`
	Event  *Event `json:"event"`
}

// dispatchFanout delivers a pub/sub message published by another
// instance. Messages this instance published are dropped: the direct
// broadcast in SendToUser already delivered them once, and a second
// delivery would break the at-most-once contract.
func (h *Hub) dispatchFanout(payload []byte) {
	var rm redisMessage
	if err := json.Unmarshal(payload, &rm); err != nil {
		return
	}
	if rm.Origin == h.instanceID {
		return
	}
	h.broadcast <- &targetedEvent{UserID: rm.UserID, Event: rm.Event}
}

// subscribeRedis listens for events published by other instances
func (h *Hub) subscribeRedis() {
	pubsub := h.redisClient.Subscribe(h.ctx, redisPubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.dispatchFanout([]byte(msg.Payload))
		case <-h.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the hub
func (h *Hub) Stop() {
	h.cancel()
}
