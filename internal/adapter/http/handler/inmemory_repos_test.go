package handler_test

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"vault-engine/internal/core/domain"
	"vault-engine/internal/core/ports"

	"github.com/gagliardetto/solana-go"
	"github.com/jackc/pgx/v5"
)

// memStore stands in for PostgreSQL. Transactions are serialized by txMu,
// which gives the same isolation the row locks give in production, and
// stage their writes until Commit.
type memStore struct {
	txMu     sync.Mutex
	mu       sync.RWMutex
	accounts map[solana.PublicKey]*domain.Account
	receipts []*domain.Receipt
	audits   []*domain.AuditLog
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[solana.PublicKey]*domain.Account)}
}

func (s *memStore) auditCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.audits)
}

// --- Transactor ---

type memTx struct {
	pgx.Tx // nil; only Commit and Rollback are called
	store    *memStore
	accounts map[solana.PublicKey]*domain.Account
	receipts []*domain.Receipt
	done     sync.Once
}

func (tx *memTx) Commit(_ context.Context) error {
	tx.done.Do(func() {
		tx.store.mu.Lock()
		for key, acct := range tx.accounts {
			tx.store.accounts[key] = acct
		}
		tx.store.receipts = append(tx.store.receipts, tx.receipts...)
		tx.store.mu.Unlock()
		tx.store.txMu.Unlock()
	})
	return nil
}

func (tx *memTx) Rollback(_ context.Context) error {
	tx.done.Do(func() {
		tx.store.txMu.Unlock()
	})
	return nil
}

type memTransactor struct{ store *memStore }

func (t memTransactor) Begin(_ context.Context) (pgx.Tx, error) {
	t.store.txMu.Lock()
	return &memTx{store: t.store, accounts: make(map[solana.PublicKey]*domain.Account)}, nil
}

func asMemTx(tx pgx.Tx) (*memTx, error) {
	mtx, ok := tx.(*memTx)
	if !ok {
		return nil, fmt.Errorf("unexpected transaction type %T", tx)
	}
	return mtx, nil
}

// --- Account Repo ---

type memAccountRepo struct{ store *memStore }

var _ ports.AccountRepository = memAccountRepo{}

func (r memAccountRepo) Get(_ context.Context, key solana.PublicKey) (*domain.Account, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	acct, ok := r.store.accounts[key]
	if !ok {
		return nil, nil
	}
	return acct.Clone(), nil
}

func (r memAccountRepo) GetManyForUpdate(_ context.Context, tx pgx.Tx, keys []solana.PublicKey) (map[solana.PublicKey]*domain.Account, error) {
	if _, err := asMemTx(tx); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make(map[solana.PublicKey]*domain.Account, len(keys))
	for _, key := range keys {
		if acct, ok := r.store.accounts[key]; ok {
			out[key] = acct.Clone()
		}
	}
	return out, nil
}

func (r memAccountRepo) Upsert(_ context.Context, tx pgx.Tx, account *domain.Account) error {
	mtx, err := asMemTx(tx)
	if err != nil {
		return err
	}
	mtx.accounts[account.Key] = account.Clone()
	return nil
}

// --- Receipt Repo ---

type memReceiptRepo struct{ store *memStore }

var _ ports.ReceiptRepository = memReceiptRepo{}

func (r memReceiptRepo) Create(_ context.Context, tx pgx.Tx, receipt *domain.Receipt) error {
	if tx != nil {
		mtx, err := asMemTx(tx)
		if err != nil {
			return err
		}
		mtx.receipts = append(mtx.receipts, receipt)
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.receipts {
		if existing.MessageHash == receipt.MessageHash {
			return fmt.Errorf("duplicate message hash %s", receipt.MessageHash)
		}
	}
	r.store.receipts = append(r.store.receipts, receipt)
	return nil
}

func (r memReceiptRepo) GetByMessageHash(_ context.Context, hash string) (*domain.Receipt, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, rc := range r.store.receipts {
		if rc.MessageHash == hash {
			cp := *rc
			return &cp, nil
		}
	}
	return nil, nil
}

func (r memReceiptRepo) List(_ context.Context, params ports.ReceiptListParams) ([]domain.Receipt, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var filtered []domain.Receipt
	for _, rc := range r.store.receipts {
		if params.Status != nil && rc.Status != *params.Status {
			continue
		}
		if params.Signer != nil && !containsKey(rc.Signers, *params.Signer) {
			continue
		}
		filtered = append(filtered, *rc)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := int64(len(filtered))
	offset := (params.Page - 1) * params.PageSize
	if offset >= len(filtered) {
		return []domain.Receipt{}, total, nil
	}
	end := offset + params.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func containsKey(keys []solana.PublicKey, want solana.PublicKey) bool {
	for _, k := range keys {
		if k.Equals(want) {
			return true
		}
	}
	return false
}

// --- Audit Repo ---

type memAuditRepo struct{ store *memStore }

func (r memAuditRepo) Create(_ context.Context, log *domain.AuditLog) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.audits = append(r.store.audits, log)
	return nil
}
