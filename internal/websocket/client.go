package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/websocket/v2"

	"task-manager-be/internal/dto"
	"task-manager-be/internal/service"
	"task-manager-be/pkg/debounce"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// inboundMessage is what the browser sends over the socket. Only "query"
// frames do anything today.
type inboundMessage struct {
	Type  string `json:"type"`
	Query string `json:"query"`
}

// Client is a middleman between the websocket connection and the hub. Each
// client owns a debouncer so keystrokes coalesce into one search per pause.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// SessionID associated with this connection
	SessionID string

	// Buffered channel of outbound messages.
	Send chan []byte

	search    service.ISearchService
	activity  service.IPublisherService
	debouncer *debounce.Debouncer[string]
}

// runSearch fires after the debounce pause. The search service re-validates
// the session itself, so a query that out-waited its session comes back as
// an error frame rather than results.
func (c *Client) runSearch(query string) {
	req := &dto.SearchTasksRequest{
		Query:      query,
		Highlights: true,
	}

	results, err := c.search.Search(context.Background(), c.SessionID, req)
	if err != nil {
		data, _ := json.Marshal(map[string]interface{}{
			"type":    "search_error",
			"message": err.Error(),
		})
		c.trySend(data)
		return
	}

	data, _ := json.Marshal(map[string]interface{}{
		"type": "search_results",
		"data": map[string]interface{}{
			"query":   query,
			"results": results,
		},
	})
	c.trySend(data)
}

func (c *Client) trySend(data []byte) {
	defer func() {
		// Send may race with the hub closing the channel on unregister.
		recover()
	}()
	select {
	case c.Send <- data:
	default:
	}
}

// readPump pumps messages from the websocket connection into the debouncer.
func (c *Client) readPump() {
	defer func() {
		c.debouncer.Stop()
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Hub", "Unexpected socket close", map[string]interface{}{
					"session_id": c.SessionID,
					"error":      err.Error(),
				})
			}
			break
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		// Every inbound frame counts as activity regardless of type.
		if c.activity != nil {
			_ = c.activity.PublishActivity(context.Background(), c.SessionID, dto.ActivityKindWebSocket)
		}

		if msg.Type == "query" {
			c.debouncer.Set(msg.Query)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
