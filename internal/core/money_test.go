package core

import (
	"strings"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"1.234,56", 123456, true},
		{"R$ 350", 35000, true},
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1.234.567,89", 123456789, true},
		{"1,234.56", 0, false},  // US grouping
		{"12,345.67", 0, false}, // US grouping
		{"12.34,56", 0, false},  // malformed thousands group
		{"1.234,5,6", 0, false},
		{"1.٣", 0, false}, // non-ASCII digit
		{"١٢", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1050}
	b := Money{Cents: 50}
	if a.Add(b).Cents != 1100 || a.Sub(b).Cents != 1000 {
		t.Fatalf("unexpected arithmetic: %d %d", a.Add(b).Cents, a.Sub(b).Cents)
	}
	if a.Scale(0.5).Cents != 525 {
		t.Fatalf("unexpected scale: %d", a.Scale(0.5).Cents)
	}
	if RoundCents(2.5).Cents != 3 {
		t.Fatalf("expected half away from zero rounding")
	}
	if a.Reais() != 10.5 {
		t.Fatalf("unexpected reais: %f", a.Reais())
	}
}

func TestFormatBRL(t *testing.T) {
	got := FormatBRL(Money{Cents: 123450})
	if !strings.HasPrefix(got, "R$ ") || !strings.HasSuffix(got, ",50") {
		t.Fatalf("unexpected format %q", got)
	}
	neg := FormatBRL(Money{Cents: -100})
	if !strings.HasPrefix(neg, "-R$ ") {
		t.Fatalf("unexpected negative format %q", neg)
	}
	whole := FormatBRLWhole(Money{Cents: 15000049})
	if !strings.HasPrefix(whole, "R$ ") || strings.Contains(whole, ",") {
		t.Fatalf("unexpected whole format %q", whole)
	}
	if p := FormatPercent(42.25); !strings.HasSuffix(p, "%") || !strings.Contains(p, ",") {
		t.Fatalf("unexpected percent format %q", p)
	}
}
