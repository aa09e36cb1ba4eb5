package ports

import (
	"context"

	"vault-engine/internal/core/domain"

	"github.com/gagliardetto/solana-go"
	"github.com/jackc/pgx/v5"
)

// AccountRepository defines persistence operations for ledger accounts.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type AccountRepository interface {
	Get(ctx context.Context, key solana.PublicKey) (*domain.Account, error)
	// GetManyForUpdate locks and returns the stored accounts among keys.
	// Keys with no stored account are absent from the result.
	GetManyForUpdate(ctx context.Context, tx pgx.Tx, keys []solana.PublicKey) (map[solana.PublicKey]*domain.Account, error)
	Upsert(ctx context.Context, tx pgx.Tx, account *domain.Account) error
}

// ReceiptRepository defines persistence operations for submission receipts.
type ReceiptRepository interface {
	// Create inserts a receipt. A nil tx writes outside any transaction.
	Create(ctx context.Context, tx pgx.Tx, receipt *domain.Receipt) error
	GetByMessageHash(ctx context.Context, hash string) (*domain.Receipt, error)
	List(ctx context.Context, params ReceiptListParams) ([]domain.Receipt, int64, error)
}

// ReceiptListParams holds filter + pagination for listing receipts.
type ReceiptListParams struct {
	Status   *domain.ReceiptStatus
	Signer   *solana.PublicKey
	Page     int
	PageSize int
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}
