package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger persists support records in a PostgreSQL table. The
// UNIQUE constraint on transaction_hash is the idempotency boundary for
// the whole purchase flow.
type PostgresLedger struct {
	pool         *pgxpool.Pool
	writeTimeout time.Duration
}

const createSupportsSQL = `
CREATE TABLE IF NOT EXISTS supports (
    id TEXT PRIMARY KEY,
    creator_id TEXT NOT NULL,
    supporter_name TEXT NOT NULL,
    supporter_wallet_address TEXT NOT NULL,
    unit_count INT NOT NULL,
    total_amount NUMERIC(12,6) NOT NULL,
    message TEXT NOT NULL DEFAULT '',
    private BOOLEAN NOT NULL DEFAULT FALSE,
    transaction_hash TEXT NOT NULL UNIQUE,
    status TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);
`

const uniqueViolationCode = "23505"

// NewPostgresLedger connects to Postgres using the DSN and ensures the
// table exists.
func NewPostgresLedger(ctx context.Context, dsn string, writeTimeout time.Duration) (*PostgresLedger, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is empty")
	}
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if _, err := pool.Exec(ctx, createSupportsSQL); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresLedger{pool: pool, writeTimeout: writeTimeout}, nil
}

func (p *PostgresLedger) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// Pool exposes the underlying connection pool so other stores can share it.
func (p *PostgresLedger) Pool() *pgxpool.Pool {
	return p.pool
}

func (p *PostgresLedger) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresLedger) Insert(ctx context.Context, rec SupportRecord) (SupportRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()

	_, err := p.pool.Exec(ctx, `
INSERT INTO supports (
    id, creator_id, supporter_name, supporter_wallet_address,
    unit_count, total_amount, message, private,
    transaction_hash, status, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`, rec.ID, rec.CreatorID, rec.SupporterName, rec.SupporterWalletAddress,
		rec.UnitCount, rec.TotalAmount.String(), rec.Message, rec.Private,
		rec.TransactionHash, rec.Status, rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return SupportRecord{}, ErrDuplicateTransaction
		}
		return SupportRecord{}, err
	}
	return rec, nil
}
