package clob

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultWSSURL is the CLOB market-channel WebSocket endpoint.
const DefaultWSSURL = "wss://ws-subscriptions-clob.polymarket.com/ws/market"

// StreamConfig configures the price stream.
type StreamConfig struct {
	URL string

	ReconnectMinDelay time.Duration
	ReconnectMaxDelay time.Duration

	HeartbeatInterval time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
}

// DefaultStreamConfig returns the production stream settings.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		URL:               DefaultWSSURL,
		ReconnectMinDelay: 1 * time.Second,
		ReconnectMaxDelay: 30 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// StreamHandlers are the stream's callbacks. OnPrice receives every price
// change and last-trade event for the subscribed tokens.
type StreamHandlers struct {
	OnPrice      func(PriceUpdate)
	OnConnect    func()
	OnDisconnect func(err error)
	OnError      func(err error)
}

// Stream maintains a resubscribing WebSocket connection to the CLOB market
// channel. Run blocks until the context ends, reconnecting with exponential
// backoff on any read or dial failure.
type Stream struct {
	config   StreamConfig
	handlers StreamHandlers

	mu     sync.Mutex
	tokens map[string]struct{}
	conn   *websocket.Conn
}

// NewStream builds a stream subscribed to the given token IDs. Tokens may be
// added later with Subscribe.
func NewStream(config StreamConfig, handlers StreamHandlers, tokenIDs ...string) *Stream {
	s := &Stream{
		config:   config,
		handlers: handlers,
		tokens:   make(map[string]struct{}, len(tokenIDs)),
	}
	for _, id := range tokenIDs {
		s.tokens[id] = struct{}{}
	}
	return s
}

// Subscribe adds token IDs to the stream. On a live connection the
// subscription message is sent immediately; otherwise it is sent on the next
// (re)connect.
func (s *Stream) Subscribe(tokenIDs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh []string
	for _, id := range tokenIDs {
		if _, ok := s.tokens[id]; !ok {
			s.tokens[id] = struct{}{}
			fresh = append(fresh, id)
		}
	}
	if len(fresh) == 0 || s.conn == nil {
		return nil
	}
	return s.writeSubscribe(s.conn, fresh)
}

// Run connects and consumes the stream until ctx ends. Every disconnect
// short of cancellation triggers a backoff-and-reconnect cycle.
func (s *Stream) Run(ctx context.Context) error {
	delay := s.config.ReconnectMinDelay

	for {
		connected, err := s.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			delay = s.config.ReconnectMinDelay
		}
		if s.handlers.OnDisconnect != nil {
			s.handlers.OnDisconnect(err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > s.config.ReconnectMaxDelay {
			delay = s.config.ReconnectMaxDelay
		}
	}
}

// runOnce dials, subscribes, and reads until the connection drops or ctx
// ends. It reports whether a connection was established so Run can reset its
// backoff.
func (s *Stream) runOnce(ctx context.Context) (bool, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.config.URL, nil)
	if err != nil {
		s.reportError(err)
		return false, err
	}
	defer conn.Close()

	// The connect-time subscribe happens under the mutex, and s.conn is
	// published only after it completes. Subscribe also writes under the
	// mutex, so the connection never sees two concurrent writers.
	s.mu.Lock()
	subscribed := make([]string, 0, len(s.tokens))
	for id := range s.tokens {
		subscribed = append(subscribed, id)
	}
	if err := s.writeSubscribe(conn, subscribed); err != nil {
		s.mu.Unlock()
		s.reportError(err)
		return false, err
	}
	s.conn = conn
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
	}()

	if s.handlers.OnConnect != nil {
		s.handlers.OnConnect()
	}

	// Close the connection when ctx ends so the read below unblocks.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	if s.config.HeartbeatInterval > 0 {
		go s.heartbeat(conn, stop)
	}

	for {
		if s.config.ReadTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return true, nil
			}
			s.reportError(err)
			return true, err
		}
		s.handleMessage(data)
	}
}

func (s *Stream) heartbeat(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.reportError(err)
				return
			}
		}
	}
}

type subscribeMsg struct {
	Type   string   `json:"type"`
	Assets []string `json:"assets_ids"`
}

func (s *Stream) writeSubscribe(conn *websocket.Conn, tokenIDs []string) error {
	if len(tokenIDs) == 0 {
		return nil
	}
	if s.config.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	}
	return conn.WriteJSON(subscribeMsg{Type: "subscribe", Assets: tokenIDs})
}

// marketMessage covers the two market-channel events that carry a price.
type marketMessage struct {
	EventType string `json:"event_type"`
	AssetID   string `json:"asset_id"`
	Price     string `json:"price"`
	Timestamp string `json:"timestamp"`
}

func (s *Stream) handleMessage(data []byte) {
	// The channel delivers both single messages and arrays of them.
	var batch []marketMessage
	if err := json.Unmarshal(data, &batch); err != nil {
		var single marketMessage
		if err := json.Unmarshal(data, &single); err != nil {
			s.reportError(errors.New("unrecognized market message: " + string(data)))
			return
		}
		batch = []marketMessage{single}
	}

	for _, msg := range batch {
		if msg.EventType != "price_change" && msg.EventType != "last_trade_price" {
			continue
		}
		price, err := strconv.ParseFloat(msg.Price, 64)
		if err != nil || msg.AssetID == "" {
			continue
		}
		observed := time.Now().UTC()
		if ms, err := strconv.ParseInt(msg.Timestamp, 10, 64); err == nil && ms > 0 {
			observed = time.UnixMilli(ms).UTC()
		}
		if s.handlers.OnPrice != nil {
			s.handlers.OnPrice(PriceUpdate{TokenID: msg.AssetID, Price: price, ObservedAt: observed})
		}
	}
}

func (s *Stream) reportError(err error) {
	if s.handlers.OnError != nil {
		s.handlers.OnError(err)
	}
}
