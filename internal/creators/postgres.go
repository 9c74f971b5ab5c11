package creators

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresDirectory reads creators from a PostgreSQL table.
type PostgresDirectory struct {
	pool *pgxpool.Pool
}

const createCreatorsSQL = `
CREATE TABLE IF NOT EXISTS creators (
    id TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    payout_address TEXT NOT NULL DEFAULT '',
    unit_price NUMERIC(12,6) NOT NULL
);
`

// NewPostgresDirectory connects using the pool and ensures the table exists.
func NewPostgresDirectory(ctx context.Context, pool *pgxpool.Pool) (*PostgresDirectory, error) {
	if _, err := pool.Exec(ctx, createCreatorsSQL); err != nil {
		return nil, err
	}
	return &PostgresDirectory{pool: pool}, nil
}

func (p *PostgresDirectory) Get(ctx context.Context, id string) (Creator, error) {
	row := p.pool.QueryRow(ctx, `
SELECT id, display_name, payout_address, unit_price::text
FROM creators
WHERE id = $1
`, id)

	var c Creator
	var price string
	if err := row.Scan(&c.ID, &c.DisplayName, &c.PayoutAddress, &price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Creator{}, ErrNotFound
		}
		return Creator{}, err
	}

	unitPrice, err := decimal.NewFromString(price)
	if err != nil {
		return Creator{}, err
	}
	c.UnitPrice = unitPrice
	return c, nil
}
