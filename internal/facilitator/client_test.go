package facilitator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coffeerails/internal/challenge"
	"coffeerails/internal/proof"
)

var testProof = proof.Proof{
	Scheme:    "exact",
	Network:   "base",
	Signature: "0xsig",
	Authorization: proof.Authorization{
		From:  "0xBBB0000000000000000000000000000000000002",
		To:    "0xAAA0000000000000000000000000000000000001",
		Value: "3000000",
	},
}

var testTerms = challenge.Challenge{
	Amount:       "3000000",
	Currency:     "USDC",
	Recipient:    "0xAAA0000000000000000000000000000000000001",
	Network:      "base",
	ChainID:      8453,
	TokenAddress: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
}

func TestVerifySubmitsOfferedTerms(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/verify" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"verified":        true,
			"transactionHash": "0xHASH",
			"payer":           "0xBBB0000000000000000000000000000000000002",
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second)
	v, err := client.Verify(context.Background(), testProof, testTerms)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !v.Verified || v.TransactionHash != "0xHASH" {
		t.Fatalf("unexpected verification: %+v", v)
	}
	if got["expectedAmount"] != "3000000" {
		t.Fatalf("expected offered amount in request, got %v", got["expectedAmount"])
	}
	if got["expectedRecipient"] != testTerms.Recipient {
		t.Fatalf("expected offered recipient in request, got %v", got["expectedRecipient"])
	}
}

func TestVerifyFallsBackToFromField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"verified":        true,
			"transactionHash": "0xHASH",
			"from":            "0xBBB0000000000000000000000000000000000002",
		})
	}))
	defer srv.Close()

	v, err := NewHTTPClient(srv.URL, time.Second).Verify(context.Background(), testProof, testTerms)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if v.PayerAddress != "0xBBB0000000000000000000000000000000000002" {
		t.Fatalf("unexpected payer %q", v.PayerAddress)
	}
}

func TestVerifyRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"verified": false, "reason": "bad signature"})
	}))
	defer srv.Close()

	v, err := NewHTTPClient(srv.URL, time.Second).Verify(context.Background(), testProof, testTerms)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if v.Verified {
		t.Fatalf("expected rejection")
	}
	if v.Reason != "bad signature" {
		t.Fatalf("unexpected reason %q", v.Reason)
	}
}

func TestVerifyNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewHTTPClient(srv.URL, time.Second).Verify(context.Background(), testProof, testTerms); err == nil {
		t.Fatalf("expected error on 500")
	}
}

func TestVerifyTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	if _, err := NewHTTPClient(srv.URL, 20*time.Millisecond).Verify(context.Background(), testProof, testTerms); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestFakeClientDeterministic(t *testing.T) {
	fake := FakeClient{}
	a, err := fake.Verify(context.Background(), testProof, testTerms)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	b, _ := fake.Verify(context.Background(), testProof, testTerms)
	if a.TransactionHash != b.TransactionHash {
		t.Fatalf("expected deterministic hash")
	}
	if !a.Verified || a.PayerAddress == "" {
		t.Fatalf("unexpected verification: %+v", a)
	}
}
