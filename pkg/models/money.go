package models

import (
	"fmt"
	"math"
)

// Money represents an amount in a specific currency.
type Money struct {
	// Amount is the numeric value in major units (e.g., dollars).
	Amount float64 `json:"amount"`
	// Currency is the ISO 4217 currency code (e.g., "USD", "ARS").
	Currency string `json:"currency"`
}

// minorUnitDigits maps currency codes to the number of minor-unit digits.
// Currencies not listed default to 2.
var minorUnitDigits = map[string]int{
	"JPY": 0,
	"CLP": 0,
	"USD": 2,
	"EUR": 2,
	"GBP": 2,
	"ARS": 2,
}

// MinorUnitDigits returns the number of decimal digits for the currency's
// minor unit.
func MinorUnitDigits(currency string) int {
	if d, ok := minorUnitDigits[currency]; ok {
		return d
	}
	return 2
}

// NewMoney creates a Money value rounded to the currency's minor unit.
func NewMoney(amount float64, currency string) Money {
	m := Money{Amount: amount, Currency: currency}
	return m.RoundMinor()
}

// USD is shorthand for NewMoney(amount, "USD").
func USD(amount float64) Money {
	return NewMoney(amount, "USD")
}

// RoundMinor rounds the amount to the currency's minor unit using
// round-half-to-even.
func (m Money) RoundMinor() Money {
	scale := math.Pow(10, float64(MinorUnitDigits(m.Currency)))
	m.Amount = math.RoundToEven(m.Amount*scale) / scale
	return m
}

// IsZero returns true if the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool {
	return m.Amount > 0
}

// Add returns m + other. Both values must share a currency.
func (m Money) Add(other Money) Money {
	return NewMoney(m.Amount+other.Amount, m.Currency)
}

// Sub returns m - other. Both values must share a currency.
func (m Money) Sub(other Money) Money {
	return NewMoney(m.Amount-other.Amount, m.Currency)
}

// Scale returns m multiplied by factor, rounded to the minor unit.
func (m Money) Scale(factor float64) Money {
	return NewMoney(m.Amount*factor, m.Currency)
}

// MinorUnit returns the smallest representable amount in this currency
// (e.g., 0.01 for USD). Used as the rounding tolerance for invariants.
func (m Money) MinorUnit() float64 {
	return 1 / math.Pow(10, float64(MinorUnitDigits(m.Currency)))
}

// String formats the amount with its currency code.
func (m Money) String() string {
	return fmt.Sprintf("%.*f %s", MinorUnitDigits(m.Currency), m.Amount, m.Currency)
}
