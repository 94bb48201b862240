package postgres

import (
	"testing"

	"github.com/cassiomorais/order-saga/internal/saga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumericStringToAmount_Success(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected saga.Amount
	}{
		{"whole value", "100", 10000},
		{"value with cents", "100.50", 10050},
		{"cents only", "0.99", 99},
		{"zero", "0", 0},
		{"zero with decimals", "0.00", 0},
		{"with whitespace", "  50.25  ", 5025},
		{"negative amount", "-10.50", -1050},
		{"single decimal", "5.5", 550},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := numericStringToAmount(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNumericStringToAmount_Errors(t *testing.T) {
	for _, input := range []string{"", "abc", "$100.00", "10.5.5"} {
		_, err := numericStringToAmount(input)
		assert.Error(t, err, input)
	}
}

func TestAmountToNumericString(t *testing.T) {
	tests := []struct {
		input    saga.Amount
		expected string
	}{
		{10000, "100.00"},
		{10050, "100.50"},
		{99, "0.99"},
		{0, "0.00"},
		{1, "0.01"},
		{-1050, "-10.50"},
		{-99, "-0.99"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, amountToNumericString(tt.input))
	}
}

func TestMoneyConversion_RoundTrip(t *testing.T) {
	for _, original := range []saga.Amount{0, 1, 10, 999, 12345, 999999, -100, -12345} {
		str := amountToNumericString(original)
		back, err := numericStringToAmount(str)
		require.NoError(t, err)
		assert.Equal(t, original, back, "amount=%d, str=%s", original, str)
	}
}
