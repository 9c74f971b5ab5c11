package purchase

import (
	"errors"
	"fmt"
)

var (
	// ErrCreatorUnconfigured means the recipient exists but cannot be
	// paid: no payout address or no positive unit price. The flow never
	// offers a challenge it cannot settle.
	ErrCreatorUnconfigured = errors.New("creator has no usable payout configuration")

	// ErrWalletIneligible means the payer wallet failed the fraud gate,
	// or the gate itself was unavailable. The gate fails closed.
	ErrWalletIneligible = errors.New("wallet is not eligible")

	// ErrAlreadyRecorded means the settlement transaction was persisted
	// by an earlier submission. The ledger holds exactly one row for it.
	ErrAlreadyRecorded = errors.New("payment already recorded")
)

// ValidationError reports a bad intent field. It is resolved locally;
// no network or ledger call happens after one is raised.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// VerificationRejectedError means the facilitator said no, or the call
// to it failed. Both look the same to the client.
type VerificationRejectedError struct {
	Reason string
}

func (e *VerificationRejectedError) Error() string {
	if e.Reason == "" {
		return "payment verification rejected"
	}
	return "payment verification rejected: " + e.Reason
}

// LedgerWriteError means verification succeeded but persistence failed.
// The payer's funds may already have moved, so this must never be
// conflated with a verification rejection.
type LedgerWriteError struct {
	Err error
}

func (e *LedgerWriteError) Error() string {
	return "payment accepted but failed to record: " + e.Err.Error()
}

func (e *LedgerWriteError) Unwrap() error { return e.Err }
