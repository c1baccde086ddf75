package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"task-manager-be/internal/entity"
	"task-manager-be/internal/pkg/logger"
)

type Hub struct {
	// Registered clients map: SessionID -> List of Clients (multi-tab)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance fan-out. Nil means single
	// instance, local delivery only.
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionID]) == 0 {
					delete(h.clients, client.SessionID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"session_id": client.SessionID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// SendToSession delivers a notification to every connection of one session.
// Implements service.NotificationDelivery.
func (h *Hub) SendToSession(sessionID string, payload interface{}) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": payload,
	})
	h.deliver(sessionID, data)
}

// NotifySessionExpiring implements service.SessionNotifier.
func (h *Hub) NotifySessionExpiring(sessionID string, user entity.UserProfile, timeLeft time.Duration) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "session_expiring",
		"data": map[string]interface{}{
			"time_left_seconds": int64(timeLeft.Seconds()),
			"email":             user.Email,
		},
	})
	h.deliver(sessionID, data)
}

// NotifySessionExpired implements service.SessionNotifier.
func (h *Hub) NotifySessionExpired(sessionID string, user entity.UserProfile) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "session_expired",
		"data": map[string]interface{}{
			"email": user.Email,
		},
	})
	h.deliver(sessionID, data)
}

// Broadcast sends a payload to ALL connected clients.
func (h *Hub) Broadcast(payload interface{}) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": payload,
	})

	h.mu.RLock()
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				h.dropSlow(client)
			}
		}
	}
	h.mu.RUnlock()

	if h.rdb != nil {
		h.publishToRedis("*", data)
	}
}

func (h *Hub) deliver(sessionID string, data []byte) {
	h.mu.RLock()
	clients, localFound := h.clients[sessionID]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"session_id": sessionID})
				h.dropSlow(client)
			}
		}
	}

	if h.rdb != nil {
		h.publishToRedis(sessionID, data)
	}
}

func (h *Hub) publishToRedis(targetSessionID string, data []byte) {
	payload := map[string]interface{}{
		"target_session_id": targetSessionID,
		"message":           json.RawMessage(data),
	}
	jsonPayload, _ := json.Marshal(payload)
	h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
}

// subscribeToRedis relays messages published by other instances to local
// clients. Every instance subscribes to one channel and filters by target.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetSessionID string          `json:"target_session_id"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		if payload.TargetSessionID == "*" {
			h.mu.RLock()
			for _, clients := range h.clients {
				for _, client := range clients {
					select {
					case client.Send <- payload.Message:
					default:
						h.dropSlow(client)
					}
				}
			}
			h.mu.RUnlock()
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[payload.TargetSessionID]
		h.mu.RUnlock()

		if ok {
			for _, client := range clients {
				select {
				case client.Send <- payload.Message:
				default:
					h.dropSlow(client)
				}
			}
		}
	}
}

// dropSlow queues an unregister for a client whose buffer is full. Done off
// the caller's goroutine: the caller may hold the read lock, and Run needs
// the write lock to process the unregister. The channel itself is closed by
// Run, exactly once.
func (h *Hub) dropSlow(client *Client) {
	go func() {
		h.unregister <- client
	}()
}
