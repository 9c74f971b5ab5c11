package purchase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"coffeerails/internal/challenge"
	"coffeerails/internal/creators"
	"coffeerails/internal/facilitator"
	"coffeerails/internal/fraud"
	"coffeerails/internal/ledger"
	"coffeerails/internal/proof"
)

// State names the position of a request in the two-phase flow. The
// states are explicit so "which network calls have happened" is always
// readable off the outcome, not inferred from booleans.
type State int

const (
	StateAwaitingProof State = iota
	StateChallengeIssued
	StateVerifying
	StateConfirmed
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateAwaitingProof:
		return "awaiting_proof"
	case StateChallengeIssued:
		return "challenge_issued"
	case StateVerifying:
		return "verifying"
	case StateConfirmed:
		return "confirmed"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Intent is the unverified, user-submitted description of the purchase.
type Intent struct {
	CreatorID     string
	SupporterName string
	UnitCount     int64
	Message       string
	Private       bool
	GoalID        string
}

const (
	minUnits         = 1
	maxUnits         = 100
	maxMessageLength = 280
)

// Outcome is the terminal result of one request. Exactly one of
// Challenge or Record is set on the happy paths.
type Outcome struct {
	State        State
	Challenge    *challenge.Challenge
	Record       *ledger.SupportRecord
	Verification *facilitator.Verification
	TotalAmount  decimal.Decimal
}

// Orchestrator drives a purchase from intent to challenge or settlement.
type Orchestrator struct {
	directory   creators.Directory
	gate        fraud.Gate
	facilitator facilitator.Client
	ledger      ledger.Ledger
	network     challenge.NetworkConfig
}

func NewOrchestrator(dir creators.Directory, gate fraud.Gate, fac facilitator.Client, led ledger.Ledger, net challenge.NetworkConfig) *Orchestrator {
	if gate == nil {
		gate = fraud.AllowAll{}
	}
	return &Orchestrator{
		directory:   dir,
		gate:        gate,
		facilitator: fac,
		ledger:      led,
		network:     net,
	}
}

// Process runs the state machine for one request. rawProof is the
// x-payment header value, empty when the client has not paid yet.
//
// Ordering is fixed: validation, then the fraud gate, then the
// facilitator, then the ledger. No step is skipped or reordered.
func (o *Orchestrator) Process(ctx context.Context, intent Intent, rawProof string) (Outcome, error) {
	rejected := Outcome{State: StateRejected}

	if err := validateIntent(intent); err != nil {
		return rejected, err
	}

	creator, err := o.directory.Get(ctx, intent.CreatorID)
	if err != nil {
		if err == creators.ErrNotFound {
			return rejected, err
		}
		return rejected, fmt.Errorf("lookup creator: %w", err)
	}

	if !common.IsHexAddress(creator.PayoutAddress) || !creator.UnitPrice.IsPositive() {
		return rejected, ErrCreatorUnconfigured
	}

	terms, err := challenge.Build(intent.UnitCount, creator.UnitPrice, creator.PayoutAddress, o.network)
	if err != nil {
		return rejected, &ValidationError{Field: "unitCount", Reason: err.Error()}
	}
	atomic, _ := strconv.ParseInt(terms.Amount, 10, 64)
	total := o.network.Codec.FromSmallestUnit(atomic)

	if strings.TrimSpace(rawProof) == "" {
		return Outcome{State: StateChallengeIssued, Challenge: &terms, TotalAmount: total}, nil
	}

	p, err := proof.Parse(rawProof)
	if err != nil {
		return rejected, err
	}

	if claimed := p.PayerAddress(); claimed != "" {
		if err := o.checkEligibility(ctx, claimed); err != nil {
			return rejected, err
		}
	}

	verification, err := o.facilitator.Verify(ctx, p, terms)
	if err != nil {
		return rejected, &VerificationRejectedError{Reason: err.Error()}
	}
	if !verification.Verified {
		return rejected, &VerificationRejectedError{Reason: verification.Reason}
	}
	if verification.TransactionHash == "" {
		return rejected, &VerificationRejectedError{Reason: "facilitator reported no settlement transaction"}
	}

	payer := resolvePayer(verification, p)
	if payer == "" {
		return rejected, &VerificationRejectedError{Reason: "payer address could not be determined"}
	}
	if !strings.EqualFold(payer, p.PayerAddress()) {
		// the facilitator named a payer the proof did not claim
		if err := o.checkEligibility(ctx, payer); err != nil {
			return rejected, err
		}
	}

	rec, err := o.ledger.Insert(ctx, ledger.SupportRecord{
		CreatorID:              creator.ID,
		SupporterName:          intent.SupporterName,
		SupporterWalletAddress: payer,
		UnitCount:              intent.UnitCount,
		TotalAmount:            total,
		Message:                intent.Message,
		Private:                intent.Private,
		TransactionHash:        verification.TransactionHash,
		Status:                 ledger.StatusConfirmed,
	})
	if err != nil {
		if err == ledger.ErrDuplicateTransaction {
			return rejected, ErrAlreadyRecorded
		}
		return rejected, &LedgerWriteError{Err: err}
	}

	return Outcome{
		State:        StateConfirmed,
		Record:       &rec,
		Verification: &verification,
		TotalAmount:  total,
	}, nil
}

func (o *Orchestrator) checkEligibility(ctx context.Context, address string) error {
	ok, err := o.gate.IsWalletEligible(ctx, address)
	if err != nil {
		// gate unavailable: fail closed
		return fmt.Errorf("%w: %v", ErrWalletIneligible, err)
	}
	if !ok {
		return ErrWalletIneligible
	}
	return nil
}

func validateIntent(intent Intent) error {
	if strings.TrimSpace(intent.CreatorID) == "" {
		return &ValidationError{Field: "creatorId", Reason: "required"}
	}
	if intent.UnitCount < minUnits || intent.UnitCount > maxUnits {
		return &ValidationError{Field: "unitCount", Reason: fmt.Sprintf("must be between %d and %d", minUnits, maxUnits)}
	}
	if len(intent.Message) > maxMessageLength {
		return &ValidationError{Field: "message", Reason: fmt.Sprintf("must be at most %d characters", maxMessageLength)}
	}
	return nil
}

func resolvePayer(v facilitator.Verification, p proof.Proof) string {
	if common.IsHexAddress(v.PayerAddress) {
		return common.HexToAddress(v.PayerAddress).Hex()
	}
	return p.PayerAddress()
}
