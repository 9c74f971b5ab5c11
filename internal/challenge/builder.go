package challenge

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"coffeerails/internal/token"
)

var (
	ErrNoPayoutAddress = errors.New("recipient has no payout address")
	ErrZeroAmount      = errors.New("challenge amount must be positive")
)

// NetworkConfig describes the rail a challenge settles on.
type NetworkConfig struct {
	Network      string
	ChainID      int64
	TokenAddress string
	TokenSymbol  string
	Codec        token.Codec
}

// Challenge is the machine-readable payment offer returned with a 402.
// It is derived from a purchase intent and never persisted.
type Challenge struct {
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	Recipient    string `json:"recipient"`
	Network      string `json:"network"`
	ChainID      int64  `json:"chainId"`
	TokenAddress string `json:"tokenAddress"`
}

// Required is the 402 response body wrapping a Challenge.
type Required struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Payment Challenge `json:"payment"`
}

// Build computes the total in smallest units and assembles the offer.
// Pure function of its inputs.
func Build(units int64, unitPrice decimal.Decimal, payoutAddress string, net NetworkConfig) (Challenge, error) {
	if payoutAddress == "" {
		return Challenge{}, ErrNoPayoutAddress
	}

	total := unitPrice.Mul(decimal.NewFromInt(units))
	atomic, err := net.Codec.ToSmallestUnit(total)
	if err != nil {
		return Challenge{}, fmt.Errorf("convert amount: %w", err)
	}
	if atomic <= 0 {
		return Challenge{}, ErrZeroAmount
	}

	return Challenge{
		Amount:       strconv.FormatInt(atomic, 10),
		Currency:     net.TokenSymbol,
		Recipient:    payoutAddress,
		Network:      net.Network,
		ChainID:      net.ChainID,
		TokenAddress: net.TokenAddress,
	}, nil
}

// Headers mirrors the offer so machine clients can act on it without
// re-parsing the body.
func (c Challenge) Headers() map[string]string {
	return map[string]string{
		"X-Payment-Required":  "true",
		"X-Payment-Amount":    c.Amount,
		"X-Payment-Currency":  c.Currency,
		"X-Payment-Recipient": c.Recipient,
		"X-Payment-Network":   c.Network,
		"X-Payment-ChainId":   strconv.FormatInt(c.ChainID, 10),
		"X-Payment-Token":     c.TokenAddress,
	}
}
