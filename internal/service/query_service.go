package service

import (
	"context"
	"encoding/json"
	"fmt"

	"vault-engine/internal/core/codec"
	"vault-engine/internal/core/domain"
	"vault-engine/internal/core/ports"
	"vault-engine/pkg/apperror"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

// Account view kinds.
const (
	ViewKindSystem  = "System"
	ViewKindProgram = "Program"
	ViewKindMint    = "Mint"
	ViewKindToken   = "TokenAccount"
	ViewKindUnknown = "Unknown"
)

// QueryServiceImpl implements ports.QueryService.
type QueryServiceImpl struct {
	cfg          EngineConfig
	runtime      *Runtime
	accountRepo  ports.AccountRepository
	receiptRepo  ports.ReceiptRepository
	receiptCache ports.ReceiptCache
	log          zerolog.Logger
}

// NewQueryService creates a new QueryServiceImpl.
func NewQueryService(
	cfg EngineConfig,
	runtime *Runtime,
	accountRepo ports.AccountRepository,
	receiptRepo ports.ReceiptRepository,
	receiptCache ports.ReceiptCache,
	log zerolog.Logger,
) *QueryServiceImpl {
	return &QueryServiceImpl{
		cfg:          cfg,
		runtime:      runtime,
		accountRepo:  accountRepo,
		receiptRepo:  receiptRepo,
		receiptCache: receiptCache,
		log:          log,
	}
}

// GetAccount returns the stored account with its data decoded when the owner
// and discriminator identify a known record.
func (s *QueryServiceImpl) GetAccount(ctx context.Context, key solana.PublicKey) (*ports.AccountView, error) {
	acct, err := s.accountRepo.Get(ctx, key)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if acct == nil {
		if s.runtime.IsProgram(key) {
			return &ports.AccountView{Account: domain.NewProgramAccount(key), Kind: ViewKindProgram}, nil
		}
		return nil, apperror.ErrNotFound("Account")
	}
	return s.view(acct), nil
}

// view never fails: data that does not decode is reported as Unknown.
func (s *QueryServiceImpl) view(acct *domain.Account) *ports.AccountView {
	v := &ports.AccountView{Account: acct, Kind: ViewKindUnknown}
	switch {
	case acct.Owner.Equals(solana.SystemProgramID) && len(acct.Data) == 0:
		v.Kind = ViewKindSystem
	case acct.Owner.Equals(s.cfg.ProgramID):
		s.viewRecord(v)
	case acct.Owner.Equals(s.cfg.TokenProgramID):
		switch len(acct.Data) {
		case domain.MintSize:
			if mint, err := codec.DecodeMint(acct.Data); err == nil {
				v.Kind, v.Mint = ViewKindMint, mint
			}
		case domain.TokenAccountSize:
			if ta, err := codec.DecodeTokenAccount(acct.Data); err == nil {
				v.Kind, v.Token = ViewKindToken, ta
			}
		}
	}
	return v
}

func (s *QueryServiceImpl) viewRecord(v *ports.AccountView) {
	data := v.Account.Data
	switch codec.PeekKind(data) {
	case domain.RecordKindVault:
		if vault, err := codec.DecodeVault(data); err == nil {
			v.Kind, v.Vault = domain.RecordKindVault.String(), vault
		}
	case domain.RecordKindPool:
		if pool, err := codec.DecodePool(data); err == nil {
			v.Kind, v.Pool = domain.RecordKindPool.String(), pool
		}
	case domain.RecordKindWallet:
		if wallet, err := codec.DecodeWallet(data); err == nil {
			v.Kind, v.Wallet = domain.RecordKindWallet.String(), wallet
		}
	case domain.RecordKindUninitialized:
		v.Kind = domain.RecordKindUninitialized.String()
	}
}

// GetReceipt looks a receipt up by message hash: Redis first, then the DB.
func (s *QueryServiceImpl) GetReceipt(ctx context.Context, hash string) (*domain.Receipt, error) {
	// Layer 1: Redis
	cached, err := s.receiptCache.Get(ctx, hash)
	if err != nil {
		s.log.Warn().Err(err).Str("message_hash", hash).Msg("redis receipt lookup failed, falling through to DB")
	}
	if cached != nil {
		var receipt domain.Receipt
		if err := json.Unmarshal(cached, &receipt); err == nil {
			return &receipt, nil
		}
		s.log.Warn().Str("message_hash", hash).Msg("discarding undecodable cached receipt")
	}

	// Layer 2: DB
	receipt, err := s.receiptRepo.GetByMessageHash(ctx, hash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get receipt: %w", err))
	}
	if receipt == nil {
		return nil, apperror.ErrNotFound("Receipt")
	}

	if data, err := json.Marshal(receipt); err == nil {
		if err := s.receiptCache.Set(ctx, hash, data, receiptCacheTTL); err != nil {
			s.log.Warn().Err(err).Str("message_hash", hash).Msg("failed to cache receipt in redis")
		}
	}
	return receipt, nil
}

// ListReceipts returns a page of receipts, newest first.
func (s *QueryServiceImpl) ListReceipts(ctx context.Context, params ports.ReceiptListParams) ([]domain.Receipt, int64, error) {
	receipts, total, err := s.receiptRepo.List(ctx, params)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("list receipts: %w", err))
	}
	return receipts, total, nil
}
