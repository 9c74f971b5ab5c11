package proof

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Header carries the client's payment proof on the retry leg of the flow.
const Header = "x-payment"

var (
	ErrMissing   = errors.New("missing payment proof")
	ErrMalformed = errors.New("malformed payment proof")
)

// Authorization holds the transfer-with-authorization parameters the
// payer signed. The core treats everything beyond From as opaque.
type Authorization struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	ValidAfter  string `json:"validAfter,omitempty"`
	ValidBefore string `json:"validBefore,omitempty"`
	Nonce       string `json:"nonce,omitempty"`
}

// Proof is the typed form of the x-payment header. Untrusted until the
// facilitator confirms it.
type Proof struct {
	Scheme        string        `json:"scheme,omitempty"`
	Network       string        `json:"network,omitempty"`
	Signature     string        `json:"signature"`
	Authorization Authorization `json:"authorization"`
}

// PayerAddress returns the proof's own claim of who paid, normalized,
// or empty if absent or not a valid address.
func (p Proof) PayerAddress() string {
	if !common.IsHexAddress(p.Authorization.From) {
		return ""
	}
	return common.HexToAddress(p.Authorization.From).Hex()
}

// FromRequest extracts and parses the proof header. Returns ErrMissing
// when the header is absent, ErrMalformed when it cannot be parsed.
func FromRequest(r *http.Request) (Proof, error) {
	raw := strings.TrimSpace(r.Header.Get(Header))
	if raw == "" {
		return Proof{}, ErrMissing
	}
	return Parse(raw)
}

// Parse accepts raw JSON or base64-encoded JSON. Wallet clients differ
// on which encoding they send.
func Parse(raw string) (Proof, error) {
	data := []byte(raw)
	if !strings.HasPrefix(raw, "{") {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return Proof{}, ErrMalformed
		}
		data = decoded
	}

	var p Proof
	if err := json.Unmarshal(data, &p); err != nil {
		return Proof{}, ErrMalformed
	}
	if strings.TrimSpace(p.Signature) == "" {
		return Proof{}, ErrMalformed
	}
	return p, nil
}
