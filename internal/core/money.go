// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and formatting cents as Brazilian real amounts.
package core

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts dot (12.34) and comma (12,34) decimal separators as well as
// pt-BR grouped input (1.234,56), and performs half-up rounding on the third
// decimal place. Returns an error for invalid formats, negative values, or
// zero amounts.
//
// Examples:
//
//	ParseDecimalToCents("12.34")    -> 1234, nil
//	ParseDecimalToCents("12,34")    -> 1234, nil
//	ParseDecimalToCents("1.234,56") -> 123456, nil
//	ParseDecimalToCents("12.346")   -> 1235, nil (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// With both separators present the input must be pt-BR grouped: dots
	// split thousands and a single comma marks the decimals.
	if strings.Contains(s, ",") && strings.Contains(s, ".") {
		if strings.LastIndex(s, ",") < strings.LastIndex(s, ".") {
			return 0, ErrInvalidAmount
		}
		grouped := s[:strings.Index(s, ",")]
		if !validThousandsGroups(grouped) {
			return 0, ErrInvalidAmount
		}
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if !asciiDigits(intPart) || !asciiDigits(fracPart) {
		return 0, ErrInvalidAmount
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

func asciiDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// validThousandsGroups reports whether s looks like "1.234.567": a leading
// group of one to three digits followed by groups of exactly three.
func validThousandsGroups(s string) bool {
	groups := strings.Split(s, ".")
	if len(groups[0]) < 1 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

// Reais returns the amount as a float64 for display and prompt purposes.
// Use cents for calculations.
func (m Money) Reais() float64 {
	return float64(m.Cents) / 100.0
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// RoundCents rounds a fractional cent value half away from zero.
func RoundCents(v float64) Money {
	return Money{Cents: int64(math.Round(v))}
}

// Scale multiplies the amount by f, rounding to the nearest cent.
func (m Money) Scale(f float64) Money {
	return RoundCents(float64(m.Cents) * f)
}

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL formats cents as a Brazilian real amount (e.g. "R$ 1.234,56").
func FormatBRL(m Money) string {
	s := brPrinter.Sprintf("%v", number.Decimal(math.Abs(m.Reais()), number.Scale(2)))
	if m.Cents < 0 {
		return "-R$ " + s
	}
	return "R$ " + s
}

// FormatBRLWhole formats the amount rounded to whole reais (e.g. "R$ 150.000").
func FormatBRLWhole(m Money) string {
	whole := math.Round(math.Abs(m.Reais()))
	s := brPrinter.Sprintf("%v", number.Decimal(whole, number.MaxFractionDigits(0)))
	if m.Cents < 0 && whole > 0 {
		return "-R$ " + s
	}
	return "R$ " + s
}

// FormatPercent formats a percentage with one decimal using pt-BR separators.
func FormatPercent(p float64) string {
	return brPrinter.Sprintf("%v", number.Decimal(p, number.Scale(1))) + "%"
}
