package clob

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"crossfill/internal/domain"
)

// StreamConfig configures the book stream connection.
type StreamConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay caps the backoff between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is the interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultStreamConfig returns the default stream configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// streamSubscribe is the subscription message for the market channel.
type streamSubscribe struct {
	AssetIDs []string `json:"assets_ids"`
	Type     string   `json:"type"`
}

// streamEvent is a book push from the market channel.
type streamEvent struct {
	EventType string     `json:"event_type"`
	AssetID   string     `json:"asset_id"`
	Market    string     `json:"market"`
	Bids      []rawLevel `json:"bids"`
	Asks      []rawLevel `json:"asks"`
	Timestamp string     `json:"timestamp"`
}

// BookStream maintains a WebSocket subscription to the venue's market
// channel and delivers book updates for the subscribed tokens. Reconnects
// resubscribe the full token set.
type BookStream struct {
	endpoint string
	config   StreamConfig

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	tokens   []string
	tokensMu sync.RWMutex

	// Updates are delivered on a buffered channel; the recorder drains it.
	updates chan domain.Book

	done chan struct{}
	wg   sync.WaitGroup

	reconnecting atomic.Bool
}

// NewBookStream connects to the market channel and subscribes to tokens.
func NewBookStream(ctx context.Context, endpoint string, tokens []string, config *StreamConfig) (*BookStream, error) {
	cfg := DefaultStreamConfig()
	if config != nil {
		cfg = *config
	}

	s := &BookStream{
		endpoint: endpoint,
		config:   cfg,
		tokens:   append([]string(nil), tokens...),
		updates:  make(chan domain.Book, 1024),
		done:     make(chan struct{}),
	}

	if err := s.connect(ctx); err != nil {
		return nil, err
	}
	if err := s.subscribe(); err != nil {
		s.Close()
		return nil, err
	}

	s.wg.Add(1)
	go s.readLoop()

	s.wg.Add(1)
	go s.pingLoop()

	return s, nil
}

// Updates returns the channel of book updates. Closed on shutdown.
func (s *BookStream) Updates() <-chan domain.Book {
	return s.updates
}

func (s *BookStream) connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	s.conn = conn
	return nil
}

func (s *BookStream) subscribe() error {
	s.tokensMu.RLock()
	msg := streamSubscribe{AssetIDs: append([]string(nil), s.tokens...), Type: "market"}
	s.tokensMu.RUnlock()

	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("not connected")
	}

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// Close shuts the stream down and closes the updates channel.
func (s *BookStream) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	close(s.done)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
	close(s.updates)
	return nil
}

func (s *BookStream) readLoop() {
	defer s.wg.Done()

	reconnectDelay := s.config.ReconnectDelay

	for !s.closed.Load() {
		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if conn == nil {
			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}

			if !s.reconnecting.Swap(true) {
				go s.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > s.config.MaxReconnectDelay {
				reconnectDelay = s.config.MaxReconnectDelay
			}

			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		reconnectDelay = s.config.ReconnectDelay

		s.handleMessage(message)
	}
}

func (s *BookStream) reconnect(delay time.Duration) {
	defer s.reconnecting.Store(false)

	if s.closed.Load() {
		return
	}

	select {
	case <-s.done:
		return
	case <-time.After(delay):
	}

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.connect(ctx); err != nil {
		return
	}

	if err := s.subscribe(); err != nil {
		log.Printf("[stream] resubscribe failed: %v", err)
	}
}

func (s *BookStream) handleMessage(message []byte) {
	// The channel multiplexes event types; only book events matter here.
	var events []streamEvent
	if err := json.Unmarshal(message, &events); err != nil {
		var single streamEvent
		if err := json.Unmarshal(message, &single); err != nil {
			return
		}
		events = []streamEvent{single}
	}

	for _, ev := range events {
		if ev.EventType != "book" {
			continue
		}

		book := domain.Book{TokenID: ev.AssetID}
		for _, lvl := range ev.Bids {
			parsed, err := parseLevel(lvl)
			if err != nil {
				continue
			}
			book.Bids = append(book.Bids, parsed)
		}
		for _, lvl := range ev.Asks {
			parsed, err := parseLevel(lvl)
			if err != nil {
				continue
			}
			book.Asks = append(book.Asks, parsed)
		}

		select {
		case s.updates <- book:
		case <-s.done:
			return
		default:
			// A full buffer means the consumer stalled; the next event
			// supersedes this one anyway.
		}
	}
}

func (s *BookStream) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.connMu.Lock()
			if s.conn != nil {
				s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
				if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Reader will notice the dead connection and reconnect.
				}
			}
			s.connMu.Unlock()
		}
	}
}
