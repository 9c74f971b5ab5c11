package facilitator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"coffeerails/internal/challenge"
	"coffeerails/internal/proof"
)

// Client abstracts the external payment verification service.
type Client interface {
	Verify(ctx context.Context, p proof.Proof, terms challenge.Challenge) (Verification, error)
}

// Verification is the facilitator's judgement of a proof against the
// offered terms.
type Verification struct {
	Verified        bool
	TransactionHash string
	PayerAddress    string
	Reason          string
}

// verifyRequest submits the exact terms that were offered. The proof is
// never allowed to dictate its own acceptance criteria.
type verifyRequest struct {
	Proof             proof.Proof `json:"proof"`
	ExpectedAmount    string      `json:"expectedAmount"`
	ExpectedRecipient string      `json:"expectedRecipient"`
	ExpectedToken     string      `json:"expectedToken"`
	ExpectedNetwork   string      `json:"expectedNetwork"`
}

type verifyResponse struct {
	Verified        bool   `json:"verified"`
	TransactionHash string `json:"transactionHash"`
	Payer           string `json:"payer"`
	From            string `json:"from"`
	Reason          string `json:"reason"`
}

// HTTPClient talks to a facilitator REST API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

const defaultVerifyTimeout = 10 * time.Second

// NewHTTPClient creates a client for the facilitator at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultVerifyTimeout
	}
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Verify makes exactly one outbound call. It never retries: a retry
// re-submits a financial proof and is the caller's decision.
func (c *HTTPClient) Verify(ctx context.Context, p proof.Proof, terms challenge.Challenge) (Verification, error) {
	body, err := json.Marshal(verifyRequest{
		Proof:             p,
		ExpectedAmount:    terms.Amount,
		ExpectedRecipient: terms.Recipient,
		ExpectedToken:     terms.TokenAddress,
		ExpectedNetwork:   terms.Network,
	})
	if err != nil {
		return Verification{}, fmt.Errorf("marshal verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify", bytes.NewReader(body))
	if err != nil {
		return Verification{}, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Verification{}, fmt.Errorf("facilitator verify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Verification{}, fmt.Errorf("facilitator returned status %d", resp.StatusCode)
	}

	var vr verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return Verification{}, fmt.Errorf("decode verify response: %w", err)
	}

	payer := vr.Payer
	if payer == "" {
		payer = vr.From
	}
	return Verification{
		Verified:        vr.Verified,
		TransactionHash: vr.TransactionHash,
		PayerAddress:    payer,
		Reason:          vr.Reason,
	}, nil
}
