package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vault-engine/internal/core/codec"
	"vault-engine/internal/core/domain"
	"vault-engine/internal/core/ports"
	"vault-engine/pkg/apperror"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const receiptCacheTTL = 24 * time.Hour

// ExecutorServiceImpl implements ports.ExecutorService. A submission is
// verified, replay-checked, executed by the Runtime against locked account
// state, and committed together with its receipt in one database transaction.
type ExecutorServiceImpl struct {
	cfg          EngineConfig
	runtime      *Runtime
	accountRepo  ports.AccountRepository
	receiptRepo  ports.ReceiptRepository
	nonceStore   ports.NonceStore
	receiptCache ports.ReceiptCache
	transactor   ports.DBTransactor
	replayTTL    time.Duration
	log          zerolog.Logger
}

// NewExecutorService creates a new ExecutorServiceImpl.
func NewExecutorService(
	cfg EngineConfig,
	runtime *Runtime,
	accountRepo ports.AccountRepository,
	receiptRepo ports.ReceiptRepository,
	nonceStore ports.NonceStore,
	receiptCache ports.ReceiptCache,
	transactor ports.DBTransactor,
	replayTTL time.Duration,
	log zerolog.Logger,
) *ExecutorServiceImpl {
	return &ExecutorServiceImpl{
		cfg:          cfg,
		runtime:      runtime,
		accountRepo:  accountRepo,
		receiptRepo:  receiptRepo,
		nonceStore:   nonceStore,
		receiptCache: receiptCache,
		transactor:   transactor,
		replayTTL:    replayTTL,
		log:          log,
	}
}

// Submit executes one signed instruction.
func (s *ExecutorServiceImpl) Submit(ctx context.Context, req ports.SubmitRequest) (*domain.Receipt, error) {
	msg := codec.Message{Instruction: req.Instruction, Nonce: req.Nonce}
	encoded, err := codec.EncodeMessage(msg)
	if err != nil {
		return nil, apperror.ErrInvalidInstruction(err)
	}
	hash := codec.MessageHash(encoded)
	signers := msg.Signers()

	for _, signer := range signers {
		sig, ok := req.Signatures[signer]
		if !ok || !sig.Verify(signer, encoded) {
			return nil, apperror.ErrInvalidSignature()
		}
	}

	// Layer 1: Redis replay guard
	claimed, err := s.nonceStore.CheckAndSet(ctx, hash, s.replayTTL)
	if err != nil {
		s.log.Warn().Err(err).Str("message_hash", hash).Msg("redis replay check failed, falling through to DB")
	} else if !claimed {
		return nil, apperror.ErrReplayed()
	}

	// Layer 2: DB receipt check
	existing, err := s.receiptRepo.GetByMessageHash(ctx, hash)
	if err != nil {
		s.release(ctx, claimed, hash)
		return nil, apperror.InternalError(fmt.Errorf("db replay check: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrReplayed()
	}

	receipt := &domain.Receipt{
		ID:          uuid.New(),
		MessageHash: hash,
		ProgramID:   req.Instruction.ProgramID,
		Instruction: s.describe(req.Instruction),
		Signers:     signers,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.execute(ctx, req.Instruction, receipt); err != nil {
		if apperror.CodeOf(err) == apperror.CodeInternal {
			// Nothing was decided about this message; let the client retry it.
			s.release(ctx, claimed, hash)
			return nil, err
		}
		s.recordFailure(ctx, receipt, err)
		return nil, err
	}

	s.cache(ctx, receipt)

	s.log.Info().
		Str("receipt_id", receipt.ID.String()).
		Str("message_hash", hash).
		Str("program_id", receipt.ProgramID.String()).
		Str("instruction", receipt.Instruction).
		Str("client_ip", req.ClientIP).
		Msg("instruction executed")

	return receipt, nil
}

// execute runs ix under row locks and commits the changed accounts with a SUCCESS receipt.
func (s *ExecutorServiceImpl) execute(ctx context.Context, ix domain.Instruction, receipt *domain.Receipt) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	keys := distinctKeys(ix.Accounts)
	stored, err := s.accountRepo.GetManyForUpdate(ctx, dbTx, keys)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock accounts: %w", err))
	}

	post, err := s.runtime.Execute(ctx, ix, stored)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, key := range keys {
		acct := post[key]
		if acct.Executable {
			continue
		}
		before, found := stored[key]
		if found && before.Equal(acct) {
			continue
		}
		if !found && acct.IsUnused() {
			continue
		}
		acct.UpdatedAt = now
		if err := s.accountRepo.Upsert(ctx, dbTx, acct); err != nil {
			return apperror.InternalError(fmt.Errorf("save account %s: %w", key, err))
		}
	}

	receipt.Status = domain.ReceiptStatusSuccess
	if err := s.receiptRepo.Create(ctx, dbTx, receipt); err != nil {
		return apperror.InternalError(fmt.Errorf("create receipt: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// recordFailure stores a FAILED receipt outside the rolled-back transaction
// so the message cannot be replayed.
func (s *ExecutorServiceImpl) recordFailure(ctx context.Context, receipt *domain.Receipt, cause error) {
	code := apperror.CodeOf(cause)
	receipt.Status = domain.ReceiptStatusFailed
	receipt.ErrorCode = &code
	if err := s.receiptRepo.Create(ctx, nil, receipt); err != nil {
		s.log.Warn().Err(err).Str("message_hash", receipt.MessageHash).Msg("failed to record failed receipt")
		return
	}
	s.cache(ctx, receipt)

	s.log.Info().
		Str("receipt_id", receipt.ID.String()).
		Str("message_hash", receipt.MessageHash).
		Str("instruction", receipt.Instruction).
		Str("error_code", code).
		Msg("instruction rejected")
}

// cache stores the receipt in Redis (best-effort).
func (s *ExecutorServiceImpl) cache(ctx context.Context, receipt *domain.Receipt) {
	data, err := json.Marshal(receipt)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to marshal receipt")
		return
	}
	if err := s.receiptCache.Set(ctx, receipt.MessageHash, data, receiptCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("message_hash", receipt.MessageHash).Msg("failed to cache receipt in redis")
	}
}

func (s *ExecutorServiceImpl) release(ctx context.Context, claimed bool, hash string) {
	if !claimed {
		return
	}
	if err := s.nonceStore.Release(ctx, hash); err != nil {
		s.log.Warn().Err(err).Str("message_hash", hash).Msg("failed to release replay key")
	}
}

// describe names the instruction for receipts and logs.
func (s *ExecutorServiceImpl) describe(ix domain.Instruction) string {
	switch {
	case ix.ProgramID.Equals(s.cfg.ProgramID):
		if dec, err := codec.DecodeInstruction(ix.Data); err == nil {
			return dec.Tag.String()
		}
	case ix.ProgramID.Equals(s.cfg.SystemProgramID):
		if dec, err := codec.DecodeSystemInstruction(ix.Data); err == nil {
			return "System." + dec.Tag.String()
		}
	case ix.ProgramID.Equals(s.cfg.TokenProgramID):
		if dec, err := codec.DecodeTokenInstruction(ix.Data); err == nil {
			return "Token." + dec.Tag.String()
		}
	}
	return "Unknown"
}

func distinctKeys(metas []domain.AccountMeta) []solana.PublicKey {
	seen := make(map[solana.PublicKey]bool, len(metas))
	keys := make([]solana.PublicKey, 0, len(metas))
	for _, meta := range metas {
		if !seen[meta.Key] {
			seen[meta.Key] = true
			keys = append(keys, meta.Key)
		}
	}
	return keys
}
