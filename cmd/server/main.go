package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"coffeerails/internal/challenge"
	"coffeerails/internal/config"
	"coffeerails/internal/creators"
	"coffeerails/internal/facilitator"
	"coffeerails/internal/fraud"
	"coffeerails/internal/ledger"
	"coffeerails/internal/purchase"
	"coffeerails/internal/server"
	"coffeerails/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()

	var led ledger.Ledger = ledger.NewMemoryLedger()
	var dir creators.Directory = creators.NewMemoryDirectory()
	if cfg.PostgresDSN != "" {
		pgLedger, err := ledger.NewPostgresLedger(ctx, cfg.PostgresDSN, cfg.Service.LedgerWriteTimeout)
		if err != nil {
			log.Fatalf("ledger error: %v", err)
		}
		defer pgLedger.Close()
		led = pgLedger

		pgDir, err := creators.NewPostgresDirectory(ctx, pgLedger.Pool())
		if err != nil {
			log.Fatalf("creator directory error: %v", err)
		}
		dir = pgDir
	}

	var fac facilitator.Client = facilitator.FakeClient{}
	if cfg.Facilitator.BaseURL != "" {
		fac = facilitator.NewHTTPClient(cfg.Facilitator.BaseURL, cfg.Facilitator.VerifyTimeout)
	} else {
		log.Printf("no facilitator configured, using fake client")
	}

	var gate fraud.Gate = fraud.NewDenylist(cfg.Fraud.Denylist)
	if cfg.Fraud.ReputationURL != "" {
		gate = fraud.NewHTTPGate(cfg.Fraud.ReputationURL, 0)
	}

	network := challenge.NetworkConfig{
		Network:      cfg.Network.Name,
		ChainID:      cfg.Network.ChainID,
		TokenAddress: cfg.Network.TokenAddress,
		TokenSymbol:  cfg.Network.TokenSymbol,
		Codec:        token.Codec{Decimals: cfg.Network.TokenDecimals},
	}

	orch := purchase.NewOrchestrator(dir, gate, fac, led, network)
	apiServer := server.NewServer(cfg, orch, led)

	go func() {
		if err := apiServer.Start(); err != nil {
			log.Printf("server stopped: %v", err)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Service.ShutdownGrace)
	defer cancel()
	_ = apiServer.Shutdown(shutdownCtx)
}
