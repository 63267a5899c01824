package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"TrendLab/internal/domain/models"
	drepo "TrendLab/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a CandleStream backed by a broker-bridge WebSocket that
// emits one frame per finished M15 bar.
type Client struct {
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	bufferSize     int

	conn      *websocket.Conn
	connected bool
}

// New creates a new WebSocket CandleStream.
func New(websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration, bufferSize int) drepo.CandleStream {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Client{
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		bufferSize:     bufferSize,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("stream connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("stream: connected")
	return nil
}

// Subscribe subscribes to configured symbols.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("stream not connected")
	}
	for _, s := range c.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": s, "timeframe": "M15"}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", s, err)
		}
		log.Printf("stream: subscribed %s", s)
	}
	return nil
}

type wsCandle struct {
	Symbol     string  `json:"s"`
	Open       float64 `json:"o"`
	High       float64 `json:"h"`
	Low        float64 `json:"l"`
	Close      float64 `json:"c"`
	TickVolume float64 `json:"v"`
	Spread     float64 `json:"sp"`
	Time       int64   `json:"t"` // bar open, unix seconds
}

type wsMessage struct {
	Type string     `json:"type"`
	Data []wsCandle `json:"data"`
}

// Read streams finished candles and errors. Malformed candles are dropped;
// a closed connection ends both channels.
func (c *Client) Read(ctx context.Context) (<-chan *models.Candle, <-chan error) {
	candles := make(chan *models.Candle, c.bufferSize)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(candles)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("stream conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("stream read: %w", err)
					return
				}
				var m wsMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-candle frames
					continue
				}
				if m.Type != "candle" {
					continue
				}
				for _, d := range m.Data {
					candle := &models.Candle{
						Timestamp:  time.Unix(d.Time, 0).UTC(),
						Open:       d.Open,
						High:       d.High,
						Low:        d.Low,
						Close:      d.Close,
						TickVolume: d.TickVolume,
						Spread:     d.Spread,
					}
					if err := candle.Validate(); err != nil {
						log.Printf("stream: dropped bad candle for %s: %v", d.Symbol, err)
						continue
					}
					select {
					case candles <- candle:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return candles, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
