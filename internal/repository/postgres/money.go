package postgres

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cassiomorais/order-saga/internal/saga"
)

func numericStringToAmount(s string) (saga.Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty numeric string")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse numeric %q: %w", s, err)
	}

	return saga.Amount(math.Round(f * 100)), nil
}

func amountToNumericString(a saga.Amount) string {
	cents := int64(a)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	whole := cents / 100
	frac := cents % 100

	return fmt.Sprintf("%s%d.%02d", sign, whole, frac)
}
