package saga_test

import (
	"testing"

	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefinition_Valid(t *testing.T) {
	def := testDefinition(t)

	assert.Equal(t, "order-saga", def.Name())
	assert.Equal(t, 3, def.Len())
	assert.Equal(t, "PRODUCT_VALIDATION_SERVICE", def.First().Name)
	assert.Equal(t, "INVENTORY_SERVICE", def.Last().Name)

	step, ok := def.StepByName("PAYMENT_SERVICE")
	require.True(t, ok)
	assert.Equal(t, 1, step.Index)

	_, ok = def.StepByName("UNKNOWN")
	assert.False(t, ok)

	_, ok = def.StepAt(3)
	assert.False(t, ok)
	_, ok = def.StepAt(-1)
	assert.False(t, ok)
}

func TestNewDefinition_Rejects(t *testing.T) {
	valid := saga.Step{Name: "A", Index: 0, ForwardTopic: "a-ok", CompensationTopic: "a-fail"}

	_, err := saga.NewDefinition("empty")
	assert.Error(t, err)

	_, err = saga.NewDefinition("gap", valid,
		saga.Step{Name: "B", Index: 2, ForwardTopic: "b-ok", CompensationTopic: "b-fail"})
	assert.Error(t, err)

	_, err = saga.NewDefinition("dup", valid,
		saga.Step{Name: "A", Index: 1, ForwardTopic: "b-ok", CompensationTopic: "b-fail"})
	assert.Error(t, err)

	_, err = saga.NewDefinition("incomplete",
		saga.Step{Name: "A", Index: 0, ForwardTopic: "a-ok"})
	assert.Error(t, err)
}
