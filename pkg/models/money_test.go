package models

import (
	"math"
	"testing"
)

func TestMoney_RoundMinor(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		currency string
		want     float64
	}{
		{"exact cents unchanged", 100.25, "USD", 100.25},
		{"half cent rounds to even down", 100.125, "USD", 100.12},
		{"half cent rounds to even up", 100.135, "USD", 100.14},
		{"zero-digit currency rounds to whole", 1500.5, "JPY", 1500},
		{"zero-digit currency rounds to even", 1501.5, "JPY", 1502},
		{"unknown currency defaults to two digits", 9.999, "XXX", 10.00},
		{"negative amount", -0.005, "USD", -0.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewMoney(tt.amount, tt.currency)
			if math.Abs(got.Amount-tt.want) > 1e-9 {
				t.Errorf("NewMoney(%v, %q).Amount = %v, want %v", tt.amount, tt.currency, got.Amount, tt.want)
			}
		})
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	a := USD(100.10)
	b := USD(0.90)

	if got := a.Add(b).Amount; got != 101.00 {
		t.Errorf("Add = %v, want 101.00", got)
	}
	if got := a.Sub(b).Amount; got != 99.20 {
		t.Errorf("Sub = %v, want 99.20", got)
	}
	if got := a.Scale(0.5).Amount; got != 50.05 {
		t.Errorf("Scale(0.5) = %v, want 50.05", got)
	}
}

func TestMoney_String(t *testing.T) {
	tests := []struct {
		money Money
		want  string
	}{
		{USD(1234.5), "1234.50 USD"},
		{NewMoney(1500, "JPY"), "1500 JPY"},
		{Money{Currency: "USD"}, "0.00 USD"},
	}

	for _, tt := range tests {
		if got := tt.money.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestMoney_MinorUnit(t *testing.T) {
	if got := USD(1).MinorUnit(); got != 0.01 {
		t.Errorf("USD minor unit = %v, want 0.01", got)
	}
	if got := NewMoney(1, "JPY").MinorUnit(); got != 1.0 {
		t.Errorf("JPY minor unit = %v, want 1", got)
	}
}
