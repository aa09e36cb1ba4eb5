package service

import (
	"context"
	"fmt"
	"time"

	"vault-engine/internal/core/domain"
	"vault-engine/internal/core/ports"
	"vault-engine/pkg/apperror"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

// MaxAirdropLamports caps a single airdrop.
const MaxAirdropLamports = 1000 * domain.LamportsPerSOL

// FaucetServiceImpl implements ports.FaucetService.
type FaucetServiceImpl struct {
	accountRepo ports.AccountRepository
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewFaucetService creates a new FaucetServiceImpl.
func NewFaucetService(accountRepo ports.AccountRepository, transactor ports.DBTransactor, log zerolog.Logger) *FaucetServiceImpl {
	return &FaucetServiceImpl{
		accountRepo: accountRepo,
		transactor:  transactor,
		log:         log,
	}
}

// Airdrop credits lamports to a system-owned account, creating it if needed.
func (s *FaucetServiceImpl) Airdrop(ctx context.Context, key solana.PublicKey, lamports uint64) (*domain.Account, error) {
	if lamports == 0 || lamports > MaxAirdropLamports {
		return nil, apperror.Validation(fmt.Sprintf("airdrop must be between 1 and %d lamports", MaxAirdropLamports))
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	locked, err := s.accountRepo.GetManyForUpdate(ctx, dbTx, []solana.PublicKey{key})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	acct, ok := locked[key]
	if !ok {
		acct = domain.NewEmptyAccount(key)
	}
	if !acct.Owner.Equals(solana.SystemProgramID) || acct.Executable {
		return nil, apperror.ErrOwnershipMismatch("Airdrop recipient")
	}

	balance, ok := domain.CheckedAdd(acct.Lamports, lamports)
	if !ok {
		return nil, apperror.ErrArithmeticOverflow()
	}
	acct.Lamports = balance
	acct.UpdatedAt = time.Now().UTC()

	if err := s.accountRepo.Upsert(ctx, dbTx, acct); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("save account: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("account", key.String()).
		Uint64("lamports", lamports).
		Uint64("balance", balance).
		Msg("airdrop credited")

	return acct, nil
}
