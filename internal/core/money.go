// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and decimal representations.
package core

import (
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// MaxAmountCents is the largest amount a single expense or budget may hold.
const MaxAmountCents int64 = 1e13

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(MaxAmountCents)
	maxTotal = decimal.NewFromInt(math.MaxInt64)
)

// ParseDecimalToCents converts a decimal string to a strictly positive amount
// of cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// to two places half away from zero on the decimal value, never through a
// binary float.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.344") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil
func ParseDecimalToCents(s string) (int64, error) {
	cents, err := parseCents(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseBudgetAmount is ParseDecimalToCents for budgets, where zero is allowed.
func ParseBudgetAmount(s string) (Money, error) {
	cents, err := parseCents(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

func parseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return 0, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			// Signs and exponents are rejected along with everything else
			return 0, ErrInvalidAmount
		}
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Round(2).Mul(hundred)
	if cents.GreaterThan(maxCents) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// MoneyFromDecimal rounds d to cents, half away from zero.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Mul(hundred).IntPart()}
}

func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxAmountCents {
		return ErrInvalidAmount
	}
	return nil
}

// Decimal returns the exact decimal value of m.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Add returns m+other, or ErrAmountOverflow when the sum does not fit.
func (m Money) Add(other Money) (Money, error) {
	sum := decimal.NewFromInt(m.Cents).Add(decimal.NewFromInt(other.Cents))
	if sum.Abs().GreaterThan(maxTotal) {
		return Money{}, ErrAmountOverflow
	}
	return Money{Cents: sum.IntPart()}, nil
}

func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// String renders the amount with exactly two decimals, e.g. "120.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Format prefixes the amount with the currency symbol.
func (m Money) Format(c Currency) string {
	return c.Symbol() + m.String()
}
