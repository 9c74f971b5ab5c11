package facilitator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"coffeerails/internal/challenge"
	"coffeerails/internal/proof"
)

// FakeClient hashes the proof signature to deterministically emulate
// settlement hashes in local dev and tests.
type FakeClient struct{}

func (FakeClient) Verify(_ context.Context, p proof.Proof, terms challenge.Challenge) (Verification, error) {
	if p.Signature == "" {
		return Verification{}, fmt.Errorf("missing proof signature")
	}
	sum := sha256.Sum256([]byte(p.Signature + terms.Amount + terms.Recipient))
	return Verification{
		Verified:        true,
		TransactionHash: "0x" + hex.EncodeToString(sum[:]),
		PayerAddress:    p.PayerAddress(),
	}, nil
}
