package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"vault-engine/internal/core/domain"

	"github.com/gagliardetto/solana-go"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const accountColumns = `key, owner, lamports, data, executable, updated_at`

// AccountRepo implements ports.AccountRepository.
// Keys are stored base58-encoded; lamports as NUMERIC(20,0) so the full u64 range survives.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// Get fetches an account by key. Returns nil, nil when the key was never written.
func (r *AccountRepo) Get(ctx context.Context, key solana.PublicKey) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE key = $1`

	acct, err := scanAccount(r.pool.QueryRow(ctx, query, key.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return acct, nil
}

// GetManyForUpdate locks the stored rows among keys with SELECT ... FOR UPDATE.
// Rows are locked in key order so concurrent submissions touching the same accounts cannot deadlock.
func (r *AccountRepo) GetManyForUpdate(ctx context.Context, tx pgx.Tx, keys []solana.PublicKey) (map[solana.PublicKey]*domain.Account, error) {
	result := make(map[solana.PublicKey]*domain.Account, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE key = ANY($1) ORDER BY key FOR UPDATE`
	rows, err := tx.Query(ctx, query, encodeKeys(keys))
	if err != nil {
		return nil, fmt.Errorf("lock accounts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		result[acct.Key] = acct
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return result, nil
}

// Upsert writes the full account state within a database transaction.
func (r *AccountRepo) Upsert(ctx context.Context, tx pgx.Tx, acct *domain.Account) error {
	query := `INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key) DO UPDATE SET
			owner = EXCLUDED.owner,
			lamports = EXCLUDED.lamports,
			data = EXCLUDED.data,
			executable = EXCLUDED.executable,
			updated_at = EXCLUDED.updated_at`

	data := acct.Data
	if data == nil {
		data = []byte{}
	}

	_, err := tx.Exec(ctx, query,
		acct.Key.String(), acct.Owner.String(), lamportsToDecimal(acct.Lamports),
		data, acct.Executable, acct.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		key, owner string
		lamports   decimal.Decimal
		acct       domain.Account
	)
	if err := row.Scan(&key, &owner, &lamports, &acct.Data, &acct.Executable, &acct.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if acct.Key, err = solana.PublicKeyFromBase58(key); err != nil {
		return nil, fmt.Errorf("decode account key %q: %w", key, err)
	}
	if acct.Owner, err = solana.PublicKeyFromBase58(owner); err != nil {
		return nil, fmt.Errorf("decode owner of %s: %w", key, err)
	}
	if acct.Lamports, err = decimalToLamports(lamports); err != nil {
		return nil, fmt.Errorf("lamports of %s: %w", key, err)
	}
	return &acct, nil
}

func lamportsToDecimal(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

func decimalToLamports(d decimal.Decimal) (uint64, error) {
	if !d.IsInteger() || d.IsNegative() {
		return 0, fmt.Errorf("not a u64: %s", d)
	}
	b := d.BigInt()
	if !b.IsUint64() {
		return 0, fmt.Errorf("out of u64 range: %s", d)
	}
	return b.Uint64(), nil
}
