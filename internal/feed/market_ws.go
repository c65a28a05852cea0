// Package feed connects to an exchange trade stream and fans prices out to
// the cache and the signal bus.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
)

// PriceEvent is the JSON shape published to the "prices" bus channel.
type PriceEvent struct {
	AssetID   string  `json:"asset_id"`
	Price     float64 `json:"price"`
	Timestamp string  `json:"timestamp"`
}

// tradeMessage is the combined-stream trade payload of a Binance-style feed.
type tradeMessage struct {
	EventType string `json:"e"`
	Symbol    string `json:"s"`
	Price     string `json:"p"`
	TradeTime int64  `json:"T"` // milliseconds
}

// subscribeCommand is the stream subscription request.
type subscribeCommand struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int      `json:"id"`
}

// MarketWSFeed consumes a trade websocket stream for the configured symbols,
// writes every price into the price cache, and publishes a PriceEvent to the
// "prices" bus channel. It reconnects with a fixed delay on disconnect.
type MarketWSFeed struct {
	wsURL          string
	symbols        []string
	reconnectDelay time.Duration
	maxReconnects  int // 0 means unlimited
	pingInterval   time.Duration

	cache  domain.PriceCache
	bus    domain.SignalBus
	logger *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// Config holds the feed's connection parameters.
type Config struct {
	WsURL          string
	Symbols        []string
	ReconnectDelay time.Duration
	MaxReconnects  int
	PingInterval   time.Duration
}

// NewMarketWSFeed creates a feed for the given symbols.
func NewMarketWSFeed(cfg Config, cache domain.PriceCache, bus domain.SignalBus, logger *slog.Logger) *MarketWSFeed {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	return &MarketWSFeed{
		wsURL:          cfg.WsURL,
		symbols:        cfg.Symbols,
		reconnectDelay: cfg.ReconnectDelay,
		maxReconnects:  cfg.MaxReconnects,
		pingInterval:   cfg.PingInterval,
		cache:          cache,
		bus:            bus,
		logger:         logger.With(slog.String("component", "market_ws_feed")),
		done:           make(chan struct{}),
	}
}

// Run connects, subscribes to the configured symbols, and runs until ctx is
// cancelled or Close is called. Reconnects on disconnect, up to MaxReconnects
// attempts when that is non-zero.
func (f *MarketWSFeed) Run(ctx context.Context) error {
	if len(f.symbols) == 0 {
		f.logger.Info("no symbols to subscribe, exiting")
		return nil
	}

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		default:
		}

		err := f.runConnection(ctx)
		if err == nil || ctx.Err() != nil {
			return ctx.Err()
		}

		attempts++
		if f.maxReconnects > 0 && attempts >= f.maxReconnects {
			return fmt.Errorf("feed: giving up after %d reconnect attempts: %w", attempts, domain.ErrWSDisconnect)
		}

		f.logger.Warn("market ws disconnected, reconnecting",
			slog.String("error", err.Error()),
			slog.Int("attempt", attempts),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		case <-time.After(f.reconnectDelay):
		}
	}
}

func (f *MarketWSFeed) runConnection(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	conn, _, err := dialer.DialContext(ctx, f.wsURL, nil)
	if err != nil {
		return fmt.Errorf("feed: connect: %w", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if err := f.subscribe(conn); err != nil {
		return err
	}
	f.logger.Info("market ws subscribed", slog.Int("symbols", len(f.symbols)))

	// Ping loop ends with the connection.
	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go f.pingLoop(pingCtx, conn)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.done:
			return nil
		default:
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("feed: read: %w", err)
		}
		f.handleMessage(ctx, data)
	}
}

func (f *MarketWSFeed) subscribe(conn *websocket.Conn) error {
	params := make([]string, 0, len(f.symbols))
	for _, s := range f.symbols {
		params = append(params, strings.ToLower(s)+"@trade")
	}
	cmd := subscribeCommand{Method: "SUBSCRIBE", Params: params, ID: 1}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("feed: subscribe: %w", err)
	}
	return nil
}

func (f *MarketWSFeed) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(f.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage parses a trade message, stores the price, and republishes it
// on the bus. Non-trade frames (subscription acks, unrelated events) are
// silently skipped.
func (f *MarketWSFeed) handleMessage(ctx context.Context, data []byte) {
	var msg tradeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if msg.EventType != "trade" || msg.Symbol == "" {
		return
	}

	price, err := strconv.ParseFloat(msg.Price, 64)
	if err != nil || price <= 0 {
		return
	}

	ts := time.Now()
	if msg.TradeTime > 0 {
		ts = time.UnixMilli(msg.TradeTime)
	}
	assetID := strings.ToLower(msg.Symbol)

	if err := f.cache.SetPrice(ctx, assetID, price, ts); err != nil {
		f.logger.Warn("cache price failed",
			slog.String("asset_id", assetID),
			slog.String("error", err.Error()),
		)
	}

	ev := PriceEvent{
		AssetID:   assetID,
		Price:     price,
		Timestamp: ts.Format(time.RFC3339Nano),
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := f.bus.Publish(ctx, "prices", payload); err != nil {
		f.logger.Warn("publish price failed",
			slog.String("asset_id", assetID),
			slog.String("error", err.Error()),
		)
	}
}

// Close stops the feed.
func (f *MarketWSFeed) Close() {
	f.closeOnce.Do(func() { close(f.done) })
}
