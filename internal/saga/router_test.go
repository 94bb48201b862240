package saga_test

import (
	"errors"
	"testing"

	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDefinition(t *testing.T) *saga.Definition {
	t.Helper()
	def, err := saga.NewDefinition("order-saga",
		saga.Step{Name: "PRODUCT_VALIDATION_SERVICE", Index: 0, ForwardTopic: "product-validation-success", CompensationTopic: "product-validation-fail"},
		saga.Step{Name: "PAYMENT_SERVICE", Index: 1, ForwardTopic: "payment-success", CompensationTopic: "payment-fail"},
		saga.Step{Name: "INVENTORY_SERVICE", Index: 2, ForwardTopic: "inventory-success", CompensationTopic: "inventory-fail"},
	)
	require.NoError(t, err)
	return def
}

func testEvent(source string, status saga.Status) *saga.Event {
	return &saga.Event{
		ID:            "ev-1",
		TransactionID: "tx-1",
		OrderID:       "order-1",
		Source:        source,
		Status:        status,
	}
}

func TestRoute_PendingStartsAtFirstStep(t *testing.T) {
	def := testDefinition(t)

	d, err := saga.Route(def, testEvent("ORDER_SERVICE", saga.StatusPending), "notify-ending")
	require.NoError(t, err)

	assert.Equal(t, saga.DecisionStart, d.Kind)
	assert.Equal(t, "product-validation-success", d.Topic)
	assert.Equal(t, saga.StatusPending, d.Status)
	assert.False(t, d.Terminal)
}

func TestRoute_SuccessAdvancesThroughAllSteps(t *testing.T) {
	def := testDefinition(t)

	steps := []struct {
		source    string
		wantTopic string
	}{
		{"PRODUCT_VALIDATION_SERVICE", "payment-success"},
		{"PAYMENT_SERVICE", "inventory-success"},
	}
	for _, step := range steps {
		d, err := saga.Route(def, testEvent(step.source, saga.StatusSuccess), "notify-ending")
		require.NoError(t, err)
		assert.Equal(t, saga.DecisionForward, d.Kind)
		assert.Equal(t, step.wantTopic, d.Topic)
		assert.Equal(t, saga.StatusSuccess, d.Status)
		assert.False(t, d.Terminal)
	}
}

func TestRoute_LastStepSuccessFinishesSaga(t *testing.T) {
	def := testDefinition(t)

	d, err := saga.Route(def, testEvent("INVENTORY_SERVICE", saga.StatusSuccess), "notify-ending")
	require.NoError(t, err)

	assert.Equal(t, saga.DecisionFinishSuccess, d.Kind)
	assert.Equal(t, "notify-ending", d.Topic)
	assert.Equal(t, saga.StatusSuccess, d.Status)
	assert.True(t, d.Terminal)
}

func TestRoute_RollbackPendingCompensatesPreviousStep(t *testing.T) {
	def := testDefinition(t)

	// Inventory failed its forward step; payment, the previously completed
	// step, must compensate. The failing step itself already cleaned up.
	d, err := saga.Route(def, testEvent("INVENTORY_SERVICE", saga.StatusRollbackPending), "notify-ending")
	require.NoError(t, err)

	assert.Equal(t, saga.DecisionCompensate, d.Kind)
	assert.Equal(t, "payment-fail", d.Topic)
	assert.Equal(t, saga.StatusFail, d.Status)
	assert.False(t, d.Terminal)
}

func TestRoute_FailContinuesUnwindingInReverse(t *testing.T) {
	def := testDefinition(t)

	d, err := saga.Route(def, testEvent("PAYMENT_SERVICE", saga.StatusFail), "notify-ending")
	require.NoError(t, err)

	assert.Equal(t, saga.DecisionCompensate, d.Kind)
	assert.Equal(t, "product-validation-fail", d.Topic)
	assert.Equal(t, saga.StatusFail, d.Status)
}

func TestRoute_FirstStepFailureFinishesFailed(t *testing.T) {
	def := testDefinition(t)

	for _, status := range []saga.Status{saga.StatusRollbackPending, saga.StatusFail} {
		d, err := saga.Route(def, testEvent("PRODUCT_VALIDATION_SERVICE", status), "notify-ending")
		require.NoError(t, err)

		assert.Equal(t, saga.DecisionFinishFail, d.Kind)
		assert.Equal(t, "notify-ending", d.Topic)
		assert.Equal(t, saga.StatusFail, d.Status)
		assert.True(t, d.Terminal)
	}
}

func TestRoute_FullUnwindFromLastStep(t *testing.T) {
	def := testDefinition(t)

	// Walk the whole backward traversal the way the bus would drive it:
	// inventory reports the failure, then each compensated participant
	// reports FAIL in turn.
	d, err := saga.Route(def, testEvent("INVENTORY_SERVICE", saga.StatusRollbackPending), "notify-ending")
	require.NoError(t, err)
	require.Equal(t, "payment-fail", d.Topic)

	d, err = saga.Route(def, testEvent("PAYMENT_SERVICE", saga.StatusFail), "notify-ending")
	require.NoError(t, err)
	require.Equal(t, "product-validation-fail", d.Topic)

	d, err = saga.Route(def, testEvent("PRODUCT_VALIDATION_SERVICE", saga.StatusFail), "notify-ending")
	require.NoError(t, err)
	assert.True(t, d.Terminal)
	assert.Equal(t, saga.DecisionFinishFail, d.Kind)
}

func TestRoute_UnknownSourceIsUnroutable(t *testing.T) {
	def := testDefinition(t)

	_, err := saga.Route(def, testEvent("SHIPPING_SERVICE", saga.StatusSuccess), "notify-ending")
	require.Error(t, err)

	var unroutable *saga.UnroutableError
	require.True(t, errors.As(err, &unroutable))
	assert.Equal(t, "SHIPPING_SERVICE", unroutable.Source)
}

func TestRoute_UnknownStatusIsUnroutable(t *testing.T) {
	def := testDefinition(t)

	_, err := saga.Route(def, testEvent("PAYMENT_SERVICE", saga.Status("SHRUG")), "notify-ending")
	require.Error(t, err)

	var unroutable *saga.UnroutableError
	require.True(t, errors.As(err, &unroutable))
	assert.Equal(t, saga.Status("SHRUG"), unroutable.Status)
}
