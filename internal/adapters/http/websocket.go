package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/morgankhalil/VenueConnect-sub003/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to feeds.
type wsMessage struct {
	Action  string `json:"action"`  // "subscribe" | "unsubscribe"
	Channel string `json:"channel"` // "tours" | "stops" | "network"
	Tour    string `json:"tour"`    // tour id filter for tours and stops ("" = all)
}

const broadcastSubject = "booking.updates.broadcast"

// wsSubject maps a client request onto the NATS subject it follows.
func wsSubject(m wsMessage) (string, error) {
	tour := m.Tour
	if tour == "" {
		tour = "*"
	}
	switch m.Channel {
	case "tours":
		return "booking.tours.rescored." + tour, nil
	case "stops":
		return "booking.stops.status." + tour, nil
	case "network":
		return "booking.network.rebuilt", nil
	}
	return "", fmt.Errorf("unknown channel: %q", m.Channel)
}

// WebSocketHandler returns a handler that relays booking events from NATS to
// connected clients.
// Clients send JSON: {"action":"subscribe","channel":"stops","tour":"<id>"}.
// Every client receives broadcasts without subscribing.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		if nc == nil {
			_ = c.WriteJSON(map[string]string{"error": "event relay not available"})
			return
		}

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		log := slog.With("remote", c.RemoteAddr().String())
		log.Debug("ws client connected")

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		relay := func(msg *nats.Msg) {
			_ = writeJSON(map[string]any{"subject": msg.Subject, "event": json.RawMessage(msg.Data)})
		}

		sub, err := nc.Subscribe(broadcastSubject, relay)
		if err != nil {
			log.Warn("ws broadcast subscribe failed", "error", err)
			return
		}
		subs[broadcastSubject] = sub

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject, err := wsSubject(m)
			if err != nil {
				_ = writeJSON(map[string]string{"error": err.Error()})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, relay)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		log.Debug("ws client disconnected")
	}
}
