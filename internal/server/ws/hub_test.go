package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

type stubBus struct {
	stream []domain.StreamMessage
	reads  int
}

func (b *stubBus) Publish(context.Context, string, []byte) error { return nil }

func (b *stubBus) Subscribe(context.Context, string) (<-chan []byte, error) {
	ch := make(chan []byte)
	close(ch)
	return ch, nil
}

func (b *stubBus) StreamAppend(context.Context, string, []byte) error { return nil }

func (b *stubBus) StreamRead(_ context.Context, _ string, _ string, count int) ([]domain.StreamMessage, error) {
	b.reads++
	if count > 0 && len(b.stream) > count {
		return b.stream[:count], nil
	}
	return b.stream, nil
}

var _ domain.SignalBus = (*stubBus)(nil)

func newTestClient(bus domain.SignalBus, subs ...string) *client {
	hub := NewHub(bus, slog.New(slog.DiscardHandler), Config{Mode: "server", StartedAt: time.Now().UTC()})
	c := &client{
		hub:  hub,
		send: make(chan []byte, sendBufferSize),
		subs: make(map[string]bool),
	}
	for _, s := range subs {
		c.subs[s] = true
	}
	return c
}

func TestSendDecisionBacklog_ReplaysStreamAsEnvelopes(t *testing.T) {
	bus := &stubBus{stream: []domain.StreamMessage{
		{ID: "1-0", Payload: []byte(`{"event":"decision","position_id":"pos-1"}`)},
		{ID: "2-0", Payload: []byte(`{"event":"decision","position_id":"pos-2"}`)},
	}}
	c := newTestClient(bus, decisionsStream)

	c.sendDecisionBacklog()

	require.Len(t, c.send, 2)
	var env struct {
		Channel string          `json:"channel"`
		Payload json.RawMessage `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(<-c.send, &env))
	assert.Equal(t, "decisions", env.Channel)
	assert.JSONEq(t, `{"event":"decision","position_id":"pos-1"}`, string(env.Payload))
}

func TestSendDecisionBacklog_SkipsUnsubscribedClients(t *testing.T) {
	bus := &stubBus{stream: []domain.StreamMessage{
		{ID: "1-0", Payload: []byte(`{}`)},
	}}
	c := newTestClient(bus, "prices")

	c.sendDecisionBacklog()

	assert.Equal(t, 0, bus.reads)
	assert.Empty(t, c.send)
}

func TestSendDecisionBacklog_EmptyStreamSendsNothing(t *testing.T) {
	bus := &stubBus{}
	c := newTestClient(bus, decisionsStream)

	c.sendDecisionBacklog()

	assert.Empty(t, c.send)
}
