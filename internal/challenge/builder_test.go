package challenge

import (
	"testing"

	"github.com/shopspring/decimal"

	"coffeerails/internal/token"
)

var testNet = NetworkConfig{
	Network:      "base",
	ChainID:      8453,
	TokenAddress: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
	TokenSymbol:  "USDC",
	Codec:        token.USDC,
}

func TestBuild(t *testing.T) {
	ch, err := Build(3, decimal.NewFromInt(1), "0xAAA0000000000000000000000000000000000001", testNet)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if ch.Amount != "3000000" {
		t.Fatalf("expected 3000000, got %s", ch.Amount)
	}
	if ch.Currency != "USDC" || ch.ChainID != 8453 {
		t.Fatalf("unexpected challenge: %+v", ch)
	}
}

func TestBuildRequiresPayoutAddress(t *testing.T) {
	if _, err := Build(1, decimal.NewFromInt(1), "", testNet); err != ErrNoPayoutAddress {
		t.Fatalf("expected ErrNoPayoutAddress, got %v", err)
	}
}

func TestBuildRejectsZeroTotal(t *testing.T) {
	if _, err := Build(1, decimal.Zero, "0xAAA0000000000000000000000000000000000001", testNet); err != ErrZeroAmount {
		t.Fatalf("expected ErrZeroAmount, got %v", err)
	}
}

func TestHeadersMirrorBody(t *testing.T) {
	ch, err := Build(2, decimal.RequireFromString("0.50"), "0xAAA0000000000000000000000000000000000001", testNet)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	h := ch.Headers()
	if h["X-Payment-Amount"] != ch.Amount {
		t.Fatalf("amount header mismatch: %s vs %s", h["X-Payment-Amount"], ch.Amount)
	}
	if h["X-Payment-Recipient"] != ch.Recipient {
		t.Fatalf("recipient header mismatch")
	}
	if h["X-Payment-ChainId"] != "8453" {
		t.Fatalf("chain id header mismatch: %s", h["X-Payment-ChainId"])
	}
}
