package ledger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrDuplicateTransaction reports that a record with the same settlement
// transaction hash already exists. Two concurrent retries of the same
// proof must produce exactly one row; the second writer gets this.
var ErrDuplicateTransaction = errors.New("transaction already recorded")

// Record statuses. Only verified purchases are ever written, so pending
// never appears in the ledger.
const (
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
)

// SupportRecord is the durable outcome of a verified purchase. Inserted
// exactly once and never mutated by this flow.
type SupportRecord struct {
	ID                     string          `json:"id"`
	CreatorID              string          `json:"creator_id"`
	SupporterName          string          `json:"supporter_name"`
	SupporterWalletAddress string          `json:"supporter_wallet_address"`
	UnitCount              int64           `json:"unit_count"`
	TotalAmount            decimal.Decimal `json:"total_amount"`
	Message                string          `json:"message,omitempty"`
	Private                bool            `json:"private"`
	TransactionHash        string          `json:"transaction_hash"`
	Status                 string          `json:"status"`
	CreatedAt              time.Time       `json:"created_at"`
}

// Ledger durably persists support records. Implementations must enforce
// uniqueness on the settlement transaction hash.
type Ledger interface {
	Insert(ctx context.Context, rec SupportRecord) (SupportRecord, error)
}

// MemoryLedger is mostly for testing.
type MemoryLedger struct {
	mu      sync.Mutex
	byTx    map[string]SupportRecord
	inserts int
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{byTx: make(map[string]SupportRecord)}
}

func (m *MemoryLedger) Insert(_ context.Context, rec SupportRecord) (SupportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++

	key := strings.ToLower(rec.TransactionHash)
	if _, exists := m.byTx[key]; exists {
		return SupportRecord{}, ErrDuplicateTransaction
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m.byTx[key] = rec
	return rec, nil
}

// InsertAttempts reports how many Insert calls were made, duplicates included.
func (m *MemoryLedger) InsertAttempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inserts
}

// Len reports how many records were actually persisted.
func (m *MemoryLedger) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byTx)
}
