package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

type recordingSender struct {
	name   string
	titles []string
	err    error
}

func (s *recordingSender) Send(_ context.Context, title, _ string) error {
	s.titles = append(s.titles, title)
	return s.err
}

func (s *recordingSender) Name() string { return s.name }

type stubLimiter struct {
	waited []string
	err    error
}

func (l *stubLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return true, nil
}

func (l *stubLimiter) Wait(_ context.Context, key string) error {
	l.waited = append(l.waited, key)
	return l.err
}

var _ domain.RateLimiter = (*stubLimiter)(nil)

func newTestNotifier(senders []Sender, events []string, limiter domain.RateLimiter) *Notifier {
	return NewNotifier(senders, events, limiter, slog.New(slog.DiscardHandler))
}

func TestNotify_FiltersDisallowedEvents(t *testing.T) {
	sender := &recordingSender{name: "telegram"}
	n := newTestNotifier([]Sender{sender}, []string{EventPositionInvalidated}, nil)

	require.NoError(t, n.Notify(context.Background(), EventDecisionChanged, "decision", "body"))
	assert.Empty(t, sender.titles)

	require.NoError(t, n.Notify(context.Background(), EventPositionInvalidated, "invalidated", "body"))
	assert.Equal(t, []string{"invalidated"}, sender.titles)
}

func TestNotify_EmptyEventListAllowsEverything(t *testing.T) {
	sender := &recordingSender{name: "discord"}
	n := newTestNotifier([]Sender{sender}, nil, nil)

	require.NoError(t, n.Notify(context.Background(), EventDecisionChanged, "a", "body"))
	require.NoError(t, n.Notify(context.Background(), EventError, "b", "body"))
	assert.Equal(t, []string{"a", "b"}, sender.titles)
}

func TestNotifyAll_BypassesFilter(t *testing.T) {
	sender := &recordingSender{name: "telegram"}
	n := newTestNotifier([]Sender{sender}, []string{EventError}, nil)

	require.NoError(t, n.NotifyAll(context.Background(), "startup", "body"))
	assert.Equal(t, []string{"startup"}, sender.titles)
}

func TestNotifyDecision_FormatsRecord(t *testing.T) {
	sender := &recordingSender{name: "telegram"}
	n := newTestNotifier([]Sender{sender}, []string{EventDecisionChanged}, nil)

	rec := domain.DecisionRecord{
		PositionID: "pos-1",
		Stance:     domain.StanceStrongThesis,
		Confidence: domain.ConfidenceHigh,
		Permission: domain.PermissionAllowed,
		Action:     domain.ActionPrepareEntry,
		Reason:     domain.ReasonStrongPolicy,
	}
	require.NoError(t, n.NotifyDecision(context.Background(), rec))
	require.Len(t, sender.titles, 1)
	assert.Equal(t, "Decision: PREPARE_ENTRY", sender.titles[0])
}

func TestDispatch_CollectsSenderErrors(t *testing.T) {
	failing := &recordingSender{name: "telegram", err: errors.New("boom")}
	working := &recordingSender{name: "discord"}
	n := newTestNotifier([]Sender{failing, working}, nil, nil)

	err := n.Notify(context.Background(), EventError, "t", "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram")
	// One failing sender does not stop delivery to the others.
	assert.Equal(t, []string{"t"}, working.titles)
}

func TestDispatch_WaitsOnLimiterPerSender(t *testing.T) {
	limiter := &stubLimiter{}
	a := &recordingSender{name: "telegram"}
	b := &recordingSender{name: "discord"}
	n := newTestNotifier([]Sender{a, b}, nil, limiter)

	require.NoError(t, n.NotifyAll(context.Background(), "t", "m"))
	assert.Equal(t, []string{"notify:telegram", "notify:discord"}, limiter.waited)
}

func TestDispatch_LimiterErrorSkipsSender(t *testing.T) {
	limiter := &stubLimiter{err: context.DeadlineExceeded}
	sender := &recordingSender{name: "telegram"}
	n := newTestNotifier([]Sender{sender}, nil, limiter)

	err := n.NotifyAll(context.Background(), "t", "m")
	require.Error(t, err)
	assert.Empty(t, sender.titles)
}
