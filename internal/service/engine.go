package service

import (
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"vault-engine/internal/core/codec"
	"vault-engine/internal/core/domain"
	"vault-engine/internal/core/ports"
	"vault-engine/pkg/apperror"
)

// Engine is the custodial vault program. It implements ports.Program.
type Engine struct {
	cfg     EngineConfig
	deriver *Deriver
	guard   *Guard
	native  *NativeDelegate
	token   *TokenDelegate
	log     zerolog.Logger
}

// NewEngine creates the engine program for cfg.
func NewEngine(cfg EngineConfig, log zerolog.Logger) *Engine {
	return &Engine{
		cfg:     cfg,
		deriver: NewDeriver(cfg.ProgramID),
		guard:   NewGuard(cfg),
		native:  NewNativeDelegate(cfg),
		token:   NewTokenDelegate(cfg),
		log:     log,
	}
}

// ID returns the engine program id.
func (e *Engine) ID() solana.PublicKey {
	return e.cfg.ProgramID
}

// Process decodes the instruction and dispatches on its tag.
func (e *Engine) Process(ic ports.InvokeContext, accounts []*domain.AccountInfo, data []byte) error {
	ix, err := codec.DecodeInstruction(data)
	if err != nil {
		return err
	}
	if err := requireAccounts(accounts, accountCount(ix.Tag)); err != nil {
		return err
	}

	e.log.Debug().Str("instruction", ix.Tag.String()).Int("accounts", len(accounts)).Msg("engine instruction")

	switch ix.Tag {
	case domain.TagInitialize:
		return e.initialize(ic, accounts, ix)
	case domain.TagCreatePool:
		return e.createPool(accounts)
	case domain.TagDeposit, domain.TagTip:
		return e.deposit(ic, accounts, ix.Amount)
	case domain.TagWithdraw:
		return e.withdraw(ic, accounts, ix.Amount)
	case domain.TagInitializeWallet:
		return e.initializeWallet(ic, accounts)
	case domain.TagWalletDeposit:
		return e.walletDeposit(ic, accounts, ix.Amount)
	case domain.TagWalletWithdraw:
		return e.walletWithdraw(ic, accounts, ix.Amount)
	default:
		return apperror.ErrInvalidInstruction(nil)
	}
}

func accountCount(tag domain.InstructionTag) int {
	switch tag {
	case domain.TagInitialize, domain.TagCreatePool:
		return 3
	case domain.TagDeposit, domain.TagTip, domain.TagWithdraw:
		return 4
	case domain.TagWalletDeposit:
		return 6
	case domain.TagInitializeWallet, domain.TagWalletWithdraw:
		return 7
	default:
		return 0
	}
}

func requireAccounts(accounts []*domain.AccountInfo, n int) error {
	if len(accounts) < n {
		return apperror.ErrNotEnoughAccounts()
	}
	return nil
}

func writeRecord(acct *domain.AccountInfo, data []byte, err error) error {
	if err != nil {
		return apperror.InternalError(err)
	}
	if len(acct.Data) != len(data) {
		return apperror.ErrMalformedRecord(codec.PeekKind(data).String())
	}
	copy(acct.Data, data)
	return nil
}

func requireAmount(amount uint64) error {
	if amount == 0 {
		return apperror.Validation("amount must be greater than zero")
	}
	return nil
}
