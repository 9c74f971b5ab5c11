package ledger

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestPostgresLedgerLifecycle(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	l, err := NewPostgresLedger(ctx, dsn, time.Second)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	defer l.Close()

	tx := "0xtest-" + time.Now().Format("20060102150405.000")
	rec, err := l.Insert(ctx, testRecord(tx))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if rec.ID == "" {
		t.Fatalf("expected generated id")
	}

	if _, err := l.Insert(ctx, testRecord(tx)); err != ErrDuplicateTransaction {
		t.Fatalf("expected ErrDuplicateTransaction, got %v", err)
	}
}
