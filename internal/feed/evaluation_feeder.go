package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

// PriceHandler receives each price observation from the bus. The evaluation
// service implements it.
type PriceHandler interface {
	HandlePrice(ctx context.Context, assetID string, price float64, at time.Time) error
}

// EvaluationFeeder subscribes to the "prices" bus channel and feeds each
// observation into the evaluation service.
type EvaluationFeeder struct {
	bus     domain.SignalBus
	handler PriceHandler
	logger  *slog.Logger
}

// NewEvaluationFeeder creates an EvaluationFeeder.
func NewEvaluationFeeder(bus domain.SignalBus, handler PriceHandler, logger *slog.Logger) *EvaluationFeeder {
	return &EvaluationFeeder{
		bus:     bus,
		handler: handler,
		logger:  logger.With(slog.String("component", "evaluation_feeder")),
	}
}

// Run subscribes to "prices" and calls the handler for each message. It runs
// until ctx is cancelled or the subscription channel closes.
func (f *EvaluationFeeder) Run(ctx context.Context) error {
	ch, err := f.bus.Subscribe(ctx, "prices")
	if err != nil {
		return err
	}
	f.logger.Info("evaluation feeder started")
	defer f.logger.Info("evaluation feeder stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data, ok := <-ch:
			if !ok {
				return nil
			}
			if err := f.handleMessage(ctx, data); err != nil {
				f.logger.Debug("evaluation feeder handle message failed",
					slog.String("error", err.Error()),
					slog.Int("payload_len", len(data)),
				)
			}
		}
	}
}

func (f *EvaluationFeeder) handleMessage(ctx context.Context, data []byte) error {
	var ev PriceEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}
	assetID := strings.TrimSpace(ev.AssetID)
	if assetID == "" || ev.Price <= 0 {
		return nil
	}

	ts := time.Now()
	if ev.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339Nano, ev.Timestamp); err == nil {
			ts = t
		}
	}

	return f.handler.HandlePrice(ctx, assetID, ev.Price, ts)
}
