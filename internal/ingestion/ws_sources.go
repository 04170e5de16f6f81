package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"power-vol-lab/internal/domain"
)

// WSFeedConfig configures the live observation feed client.
type WSFeedConfig struct {
	// HandshakeTimeout bounds the initial dial.
	HandshakeTimeout time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
}

// DefaultWSFeedConfig returns default feed configuration.
func DefaultWSFeedConfig() WSFeedConfig {
	return WSFeedConfig{
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     30 * time.Second,
		ReadTimeout:      60 * time.Second,
	}
}

// feedMessage is the wire format of one observation record on the feed.
type feedMessage struct {
	ID      int64               `json:"id"`
	DayID   string              `json:"day_id"`
	Country string              `json:"country"`
	Values  map[string]*float64 `json:"values"`
}

// WSObservationSource provides real-time observations via a WebSocket feed.
// Each text message carries one JSON observation record.
type WSObservationSource struct {
	endpoint string
	config   WSFeedConfig
}

// NewWSObservationSource creates a new WebSocket-based observation source.
func NewWSObservationSource(endpoint string, config *WSFeedConfig) *WSObservationSource {
	cfg := DefaultWSFeedConfig()
	if config != nil {
		cfg = *config
	}
	return &WSObservationSource{endpoint: endpoint, config: cfg}
}

// Subscribe returns a channel of observations from the live feed.
// The channel is closed when the context is cancelled or the connection drops.
func (s *WSObservationSource) Subscribe(ctx context.Context) (<-chan *domain.Observation, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: s.config.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial %s: %w", s.endpoint, err)
	}
	log.Printf("[ws-obs] Connected to feed: %s", s.endpoint)

	obsCh := make(chan *domain.Observation, 100)

	// Close the connection when the context ends so the read loop unblocks.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	// Ping loop keeps intermediaries from dropping an idle feed.
	go func() {
		ticker := time.NewTicker(s.config.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deadline := time.Now().Add(s.config.HandshakeTimeout)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					return
				}
			}
		}
	}()

	go func() {
		defer close(obsCh)
		defer conn.Close()

		for {
			conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
			_, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("[ws-obs] Read failed, closing feed: %v", err)
				}
				return
			}

			var msg feedMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Printf("[ws-obs] SKIP malformed message: %v", err)
				continue
			}
			if msg.Country == "" {
				log.Printf("[ws-obs] SKIP: empty country for id=%d", msg.ID)
				continue
			}

			o := &domain.Observation{
				ID:      msg.ID,
				DayID:   domain.ParseDay(msg.DayID),
				Country: msg.Country,
			}
			for col, v := range msg.Values {
				o.SetRawValue(col, v)
			}

			select {
			case obsCh <- o:
			case <-ctx.Done():
				return
			}
		}
	}()

	return obsCh, nil
}
