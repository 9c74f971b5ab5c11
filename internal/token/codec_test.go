package token

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestToSmallestUnit(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"2.50", 2500000},
		{"1.00", 1000000},
		{"0.000001", 1},
		{"0", 0},
		{"3", 3000000},
		{"0.0000019", 1}, // truncated toward zero past precision
	}

	for _, tc := range cases {
		d, err := decimal.NewFromString(tc.in)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.in, err)
		}
		got, err := USDC.ToSmallestUnit(d)
		if err != nil {
			t.Fatalf("ToSmallestUnit(%s): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ToSmallestUnit(%s) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestToSmallestUnitRejectsNegative(t *testing.T) {
	if _, err := USDC.ToSmallestUnit(decimal.NewFromFloat(-0.01)); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestToSmallestUnitRejectsOverflow(t *testing.T) {
	huge, _ := decimal.NewFromString("99999999999999999999")
	if _, err := USDC.ToSmallestUnit(huge); err != ErrInvalidAmount {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"2.50", "0.000001", "123.456789", "1"} {
		d, _ := decimal.NewFromString(s)
		units, err := USDC.ToSmallestUnit(d)
		if err != nil {
			t.Fatalf("ToSmallestUnit(%s): %v", s, err)
		}
		back := USDC.FromSmallestUnit(units)
		if !back.Equal(d) {
			t.Fatalf("round trip %s -> %d -> %s", s, units, back)
		}
	}
}

func TestParseAmount(t *testing.T) {
	if _, err := USDC.ParseAmount("not-a-number"); err == nil {
		t.Fatalf("expected error for garbage input")
	}
	if _, err := USDC.ParseAmount("-1"); err == nil {
		t.Fatalf("expected error for negative input")
	}
	d, err := USDC.ParseAmount("3.00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !d.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("unexpected value %s", d)
	}
}
