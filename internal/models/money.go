package models

import (
	"fmt"
	"math"
)

// DefaultCurrency is applied when a payload omits the currency code.
const DefaultCurrency = "USD"

// Money is a fixed-point monetary amount: minor units (cents) plus an ISO
// currency code. All price arithmetic in the service happens on Money so
// totals are deterministic.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// NewMoney creates a Money value from minor units.
func NewMoney(amount int64, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Amount: amount, Currency: currency}
}

// MoneyFromFloat converts a major-unit float (e.g. 19.99) to Money,
// rounding to the nearest cent.
func MoneyFromFloat(value float64, currency string) Money {
	return NewMoney(int64(math.Round(value*100)), currency)
}

// Mul returns the amount multiplied by a quantity.
func (m Money) Mul(qty int) Money {
	return Money{Amount: m.Amount * int64(qty), Currency: m.Currency}
}

// Add returns the sum of two amounts. A zero-valued Money adopts the other
// operand's currency so running totals can start from the zero value.
func (m Money) Add(other Money) Money {
	currency := m.Currency
	if currency == "" {
		currency = other.Currency
	}
	return Money{Amount: m.Amount + other.Amount, Currency: currency}
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Amount > 0
}

// ToFloat returns the amount in major units. For display only; never feed
// the result back into arithmetic.
func (m Money) ToFloat() float64 {
	return float64(m.Amount) / 100
}

func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.ToFloat(), m.Currency)
}
