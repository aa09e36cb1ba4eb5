package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vault-engine/internal/core/domain"
	"vault-engine/internal/core/ports"

	"github.com/gagliardetto/solana-go"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const receiptColumns = `id, message_hash, program_id, instruction, status, error_code, signers, created_at`

// ReceiptRepo implements ports.ReceiptRepository.
type ReceiptRepo struct {
	pool Pool
}

// NewReceiptRepo creates a new ReceiptRepo.
func NewReceiptRepo(pool Pool) *ReceiptRepo {
	return &ReceiptRepo{pool: pool}
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Create inserts a receipt, inside tx when one is given.
func (r *ReceiptRepo) Create(ctx context.Context, tx pgx.Tx, rc *domain.Receipt) error {
	query := `INSERT INTO receipts (` + receiptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	var db execer = r.pool
	if tx != nil {
		db = tx
	}

	_, err := db.Exec(ctx, query,
		rc.ID, rc.MessageHash, rc.ProgramID.String(), rc.Instruction,
		string(rc.Status), rc.ErrorCode, encodeKeys(rc.Signers), rc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

// GetByMessageHash fetches the receipt recorded for a message hash.
func (r *ReceiptRepo) GetByMessageHash(ctx context.Context, hash string) (*domain.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE message_hash = $1`

	rc, err := scanReceipt(r.pool.QueryRow(ctx, query, hash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	return rc, nil
}

// List returns a page of receipts, newest first, with the total match count.
func (r *ReceiptRepo) List(ctx context.Context, params ports.ReceiptListParams) ([]domain.Receipt, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, string(*params.Status))
		argIdx++
	}
	if params.Signer != nil {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(signers)", argIdx))
		args = append(args, params.Signer.String())
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM receipts %s", where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count receipts: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT %s FROM receipts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		receiptColumns, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	receipts := make([]domain.Receipt, 0, params.PageSize)
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan receipt: %w", err)
		}
		receipts = append(receipts, *rc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate receipts: %w", err)
	}
	return receipts, total, nil
}

func scanReceipt(row rowScanner) (*domain.Receipt, error) {
	var (
		rc        domain.Receipt
		programID string
		status    string
		signers   []string
	)
	err := row.Scan(&rc.ID, &rc.MessageHash, &programID, &rc.Instruction,
		&status, &rc.ErrorCode, &signers, &rc.CreatedAt)
	if err != nil {
		return nil, err
	}

	if rc.ProgramID, err = solana.PublicKeyFromBase58(programID); err != nil {
		return nil, fmt.Errorf("decode program id: %w", err)
	}
	rc.Status = domain.ReceiptStatus(status)
	if rc.Signers, err = decodeKeys(signers); err != nil {
		return nil, err
	}
	return &rc, nil
}

func encodeKeys(keys []solana.PublicKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

func decodeKeys(encoded []string) ([]solana.PublicKey, error) {
	out := make([]solana.PublicKey, len(encoded))
	for i, s := range encoded {
		k, err := solana.PublicKeyFromBase58(s)
		if err != nil {
			return nil, fmt.Errorf("decode signer %q: %w", s, err)
		}
		out[i] = k
	}
	return out, nil
}
