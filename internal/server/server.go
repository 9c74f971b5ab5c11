package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"coffeerails/internal/challenge"
	"coffeerails/internal/config"
	"coffeerails/internal/creators"
	"coffeerails/internal/ledger"
	"coffeerails/internal/proof"
	"coffeerails/internal/purchase"
)

type Server struct {
	cfg        *config.AppConfig
	orch       *purchase.Orchestrator
	httpServer *http.Server
	metrics    *metricsRegistry
	dbHealthFn func(context.Context) error
}

func NewServer(cfg *config.AppConfig, orch *purchase.Orchestrator, led ledger.Ledger) *Server {
	s := &Server{
		cfg:     cfg,
		orch:    orch,
		metrics: newMetricsRegistry(),
	}

	if checker, ok := led.(interface{ Ping(context.Context) error }); ok {
		s.dbHealthFn = checker.Ping
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/support", s.handleSupport)
	mux.Handle("/api/v1/metrics", s.metrics.handler())
	mux.HandleFunc("/api/v1/health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Service.HTTPPort),
		Handler:           requestIDMiddleware(mux),
		ReadHeaderTimeout: 15 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	log.Printf("API listening on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type supportRequest struct {
	CreatorID     string `json:"creatorId"`
	SupporterName string `json:"supporterName"`
	UnitCount     int64  `json:"unitCount"`
	Message       string `json:"message,omitempty"`
	IsPrivate     bool   `json:"isPrivate,omitempty"`
	GoalID        string `json:"goalId,omitempty"`
}

type paymentSummary struct {
	TransactionHash string          `json:"transactionHash"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Network         string          `json:"network"`
}

type supportResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Support ledger.SupportRecord `json:"support"`
	Payment paymentSummary       `json:"payment"`
}

type errorResponse struct {
	Error   string               `json:"error"`
	Message string               `json:"message"`
	Field   string               `json:"field,omitempty"`
	Payment *challenge.Challenge `json:"payment,omitempty"`
}

func (s *Server) handleSupport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload supportRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "invalid_json",
			Message: "request body is not valid JSON",
		})
		return
	}

	name := payload.SupporterName
	if name == "" {
		name = "Anonymous"
	}
	intent := purchase.Intent{
		CreatorID:     payload.CreatorID,
		SupporterName: name,
		UnitCount:     payload.UnitCount,
		Message:       payload.Message,
		Private:       payload.IsPrivate,
		GoalID:        payload.GoalID,
	}

	outcome, err := s.orch.Process(r.Context(), intent, r.Header.Get(proof.Header))
	if err != nil {
		s.writeOutcomeError(w, err)
		return
	}

	switch outcome.State {
	case purchase.StateChallengeIssued:
		s.metrics.incChallenge()
		for k, v := range outcome.Challenge.Headers() {
			w.Header().Set(k, v)
		}
		writeJSON(w, http.StatusPaymentRequired, errorResponse{
			Error:   "payment_required",
			Message: fmt.Sprintf("Payment of %s %s required", outcome.TotalAmount, outcome.Challenge.Currency),
			Payment: outcome.Challenge,
		})

	case purchase.StateConfirmed:
		s.metrics.incVerification("verified")
		s.metrics.incSupport()

		summary, _ := json.Marshal(map[string]any{
			"verified":        true,
			"transactionHash": outcome.Verification.TransactionHash,
			"payer":           outcome.Record.SupporterWalletAddress,
			"network":         s.cfg.Network.Name,
		})
		w.Header().Set("X-Payment-Response", string(summary))

		writeJSON(w, http.StatusOK, supportResponse{
			Success: true,
			Message: "Thank you for your support!",
			Support: *outcome.Record,
			Payment: paymentSummary{
				TransactionHash: outcome.Verification.TransactionHash,
				Amount:          outcome.TotalAmount,
				Currency:        s.cfg.Network.TokenSymbol,
				Network:         s.cfg.Network.Name,
			},
		})

	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "internal_error",
			Message: "unexpected purchase state",
		})
	}
}

// writeOutcomeError maps the purchase error taxonomy onto HTTP statuses.
// Verification failures stay generic so facilitator internals never leak.
func (s *Server) writeOutcomeError(w http.ResponseWriter, err error) {
	var ve *purchase.ValidationError
	var vre *purchase.VerificationRejectedError
	var lwe *purchase.LedgerWriteError

	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "validation_error",
			Message: ve.Error(),
			Field:   ve.Field,
		})

	case errors.Is(err, proof.ErrMalformed):
		s.metrics.incVerification("malformed")
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "malformed_proof",
			Message: "the x-payment header could not be parsed",
		})

	case errors.Is(err, creators.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:   "creator_not_found",
			Message: "no such creator",
		})

	case errors.Is(err, purchase.ErrCreatorUnconfigured):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "creator_unconfigured",
			Message: "this creator cannot receive payments yet",
			Field:   "creatorId",
		})

	case errors.Is(err, purchase.ErrWalletIneligible):
		s.metrics.incFraudBlock()
		writeJSON(w, http.StatusPaymentRequired, errorResponse{
			Error:   "wallet_ineligible",
			Message: "payment cannot be accepted from this wallet",
		})

	case errors.As(err, &vre):
		s.metrics.incVerification("rejected")
		writeJSON(w, http.StatusPaymentRequired, errorResponse{
			Error:   "verification_rejected",
			Message: "payment verification failed",
		})

	case errors.Is(err, purchase.ErrAlreadyRecorded):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:   "already_recorded",
			Message: "this payment was already recorded",
		})

	case errors.As(err, &lwe):
		// funds may already have moved; this must be loud and distinct
		s.metrics.incLedgerError()
		log.Printf("SEVERE: verified payment could not be recorded: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "record_failed",
			Message: "payment was verified but could not be recorded, contact support",
		})

	default:
		log.Printf("support request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "internal_error",
			Message: "something went wrong",
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	overallHealthy := true

	dbInfo := struct {
		Connected bool   `json:"connected"`
		Error     string `json:"error,omitempty"`
	}{Connected: true}

	if s.dbHealthFn != nil {
		dbCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := s.dbHealthFn(dbCtx); err != nil {
			dbInfo.Connected = false
			dbInfo.Error = err.Error()
			overallHealthy = false
		}
	}

	status := "healthy"
	if !overallHealthy {
		status = "degraded"
	}

	resp := struct {
		Status   string      `json:"status"`
		Network  string      `json:"network"`
		Database interface{} `json:"database"`
	}{
		Status:   status,
		Network:  s.cfg.Network.Name,
		Database: dbInfo,
	}

	w.Header().Set("Content-Type", "application/json")
	if !overallHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Request-Id") == "" {
			r.Header.Set("X-Request-Id", fmt.Sprintf("%d", time.Now().UnixNano()))
		}
		next.ServeHTTP(w, r)
	})
}
