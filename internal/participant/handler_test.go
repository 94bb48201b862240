package participant_test

import (
	"context"
	"errors"
	"testing"

	"github.com/cassiomorais/order-saga/internal/infrastructure/observability"
	"github.com/cassiomorais/order-saga/internal/participant"
	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/cassiomorais/order-saga/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	source     string
	forward    func(ctx context.Context, ev *saga.Event) (string, error)
	compensate func(ctx context.Context, ev *saga.Event) (string, error)
}

func (f *fakeExecutor) Source() string { return f.source }

func (f *fakeExecutor) Forward(ctx context.Context, ev *saga.Event) (string, error) {
	return f.forward(ctx, ev)
}

func (f *fakeExecutor) Compensate(ctx context.Context, ev *saga.Event) (string, error) {
	return f.compensate(ctx, ev)
}

func newHandler(t *testing.T, exec participant.Executor, publisher participant.EventPublisher) *participant.Handler {
	t.Helper()
	metrics := observability.NewMetrics("test", prometheus.NewRegistry())
	cfg := participant.Config{
		ReplyTopic:                "orchestrator",
		ForwardFailurePrefix:      "Fail to realize payment",
		CompensationFailurePrefix: "Rollback not executed for payment",
	}
	return participant.NewHandler(exec, publisher, cfg, zerolog.Nop(), metrics)
}

func TestHandleForward_SuccessPublishesSuccess(t *testing.T) {
	publisher := testutil.NewMockEventPublisher()
	exec := &fakeExecutor{
		source: "PAYMENT_SERVICE",
		forward: func(ctx context.Context, ev *saga.Event) (string, error) {
			return "Payment realized successfully, amount 31.00 for 2 items", nil
		},
	}
	h := newHandler(t, exec, publisher)

	ev := testutil.NewTestEvent("ORCHESTRATOR", saga.StatusPending)
	require.NoError(t, h.HandleForward(context.Background(), ev))

	published := publisher.Last()
	require.NotNil(t, published)
	assert.Equal(t, "orchestrator", published.Topic)
	assert.Equal(t, saga.StatusSuccess, published.Event.Status)
	assert.Equal(t, "PAYMENT_SERVICE", published.Event.Source)
	require.Len(t, published.Event.History, 1)
	assert.Equal(t, "Payment realized successfully, amount 31.00 for 2 items", published.Event.History[0].Message)
}

func TestHandleForward_FailurePublishesRollbackPending(t *testing.T) {
	publisher := testutil.NewMockEventPublisher()
	exec := &fakeExecutor{
		source: "PAYMENT_SERVICE",
		forward: func(ctx context.Context, ev *saga.Event) (string, error) {
			return "", errors.New("amount below the minimum")
		},
	}
	h := newHandler(t, exec, publisher)

	ev := testutil.NewTestEvent("ORCHESTRATOR", saga.StatusPending)
	require.NoError(t, h.HandleForward(context.Background(), ev))

	published := publisher.Last()
	require.NotNil(t, published)
	assert.Equal(t, saga.StatusRollbackPending, published.Event.Status)
	require.Len(t, published.Event.History, 1)
	assert.Contains(t, published.Event.History[0].Message, "Fail to realize payment")
	assert.Contains(t, published.Event.History[0].Message, "amount below the minimum")
}

func TestHandleForward_PanicStillPublishes(t *testing.T) {
	publisher := testutil.NewMockEventPublisher()
	exec := &fakeExecutor{
		source: "PAYMENT_SERVICE",
		forward: func(ctx context.Context, ev *saga.Event) (string, error) {
			panic("nil map write")
		},
	}
	h := newHandler(t, exec, publisher)

	ev := testutil.NewTestEvent("ORCHESTRATOR", saga.StatusPending)
	require.NoError(t, h.HandleForward(context.Background(), ev))

	published := publisher.Last()
	require.NotNil(t, published)
	assert.Equal(t, saga.StatusRollbackPending, published.Event.Status)
	assert.Contains(t, published.Event.History[0].Message, "panic")
}

func TestHandleCompensation_AlwaysLeavesWithFail(t *testing.T) {
	publisher := testutil.NewMockEventPublisher()
	exec := &fakeExecutor{
		source: "PAYMENT_SERVICE",
		compensate: func(ctx context.Context, ev *saga.Event) (string, error) {
			// The envelope is already FAIL when the business logic runs.
			assert.Equal(t, saga.StatusFail, ev.Status)
			return "Payment of 31.00 refunded", nil
		},
	}
	h := newHandler(t, exec, publisher)

	ev := testutil.NewTestEvent("ORCHESTRATOR", saga.StatusFail)
	require.NoError(t, h.HandleCompensation(context.Background(), ev))

	published := publisher.Last()
	require.NotNil(t, published)
	assert.Equal(t, saga.StatusFail, published.Event.Status)
	assert.Equal(t, "PAYMENT_SERVICE", published.Event.Source)
	assert.Equal(t, "Payment of 31.00 refunded", published.Event.History[0].Message)
}

func TestHandleCompensation_ErrorIsRecordedButStillFail(t *testing.T) {
	publisher := testutil.NewMockEventPublisher()
	exec := &fakeExecutor{
		source: "PAYMENT_SERVICE",
		compensate: func(ctx context.Context, ev *saga.Event) (string, error) {
			return "", errors.New("db down")
		},
	}
	h := newHandler(t, exec, publisher)

	ev := testutil.NewTestEvent("ORCHESTRATOR", saga.StatusFail)
	require.NoError(t, h.HandleCompensation(context.Background(), ev))

	published := publisher.Last()
	require.NotNil(t, published)
	assert.Equal(t, saga.StatusFail, published.Event.Status)
	assert.Contains(t, published.Event.History[0].Message, "Rollback not executed for payment")
	assert.Contains(t, published.Event.History[0].Message, "db down")
}

func TestHandleForward_PublishErrorPropagates(t *testing.T) {
	publisher := testutil.NewMockEventPublisher()
	publisher.PublishFunc = func(ctx context.Context, topic string, ev *saga.Event) error {
		return errors.New("broker unavailable")
	}
	exec := &fakeExecutor{
		source: "PAYMENT_SERVICE",
		forward: func(ctx context.Context, ev *saga.Event) (string, error) {
			return "ok", nil
		},
	}
	h := newHandler(t, exec, publisher)

	// The publish failure must surface so the consumer leaves the offset
	// uncommitted and the message is redelivered.
	err := h.HandleForward(context.Background(), testutil.NewTestEvent("ORCHESTRATOR", saga.StatusPending))
	require.Error(t, err)
}
