package saga_test

import (
	"encoding/json"
	"testing"

	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want saga.Amount
	}{
		{"15.50", 1550},
		{"15.5", 1550},
		{"15", 1500},
		{"0.01", 1},
		{"0.1", 10},
		{"0", 0},
		{"-3", -300},
		{"-3.25", -325},
		{" 12.00 ", 1200},
		{".5", 50},
	}
	for _, tt := range tests {
		got, err := saga.ParseAmount(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1.234", "1.2c", "--5"} {
		_, err := saga.ParseAmount(in)
		assert.Error(t, err, in)
	}
}

func TestAmount_String(t *testing.T) {
	assert.Equal(t, "15.50", saga.Amount(1550).String())
	assert.Equal(t, "0.05", saga.Amount(5).String())
	assert.Equal(t, "-3.25", saga.Amount(-325).String())
	assert.Equal(t, "0.00", saga.Amount(0).String())
}

func TestAmount_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(saga.Amount(1550))
	require.NoError(t, err)
	assert.Equal(t, `"15.50"`, string(data))

	var a saga.Amount
	require.NoError(t, json.Unmarshal([]byte(`"15.50"`), &a))
	assert.Equal(t, saga.Amount(1550), a)

	// Looser serializers emit bare numbers.
	require.NoError(t, json.Unmarshal([]byte(`15.50`), &a))
	assert.Equal(t, saga.Amount(1550), a)
}
