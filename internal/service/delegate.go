package service

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"vault-engine/internal/core/codec"
	"vault-engine/internal/core/domain"
	"vault-engine/internal/core/ports"
	"vault-engine/pkg/apperror"
)

// NativeDelegate moves lamports. Engine-owned sources signed by engine seeds
// are debited directly; every other source goes through the system program.
type NativeDelegate struct {
	deriver *Deriver
}

// NewNativeDelegate creates the lamport delegate for the configured engine.
func NewNativeDelegate(cfg EngineConfig) *NativeDelegate {
	return &NativeDelegate{deriver: NewDeriver(cfg.ProgramID)}
}

// ProgramID is the system program.
func (d *NativeDelegate) ProgramID() solana.PublicKey {
	return solana.SystemProgramID
}

// Transfer moves req.Amount lamports from req.Source to req.Destination.
func (d *NativeDelegate) Transfer(ic ports.InvokeContext, req ports.TransferRequest) error {
	if err := pinned(req.Program, d); err != nil {
		return err
	}

	if req.Source.Owner.Equals(ic.ProgramID()) {
		return d.debitOwned(req)
	}

	data, err := codec.EncodeSystemInstruction(domain.SystemInstruction{
		Tag:      domain.SystemTransfer,
		Lamports: req.Amount,
	})
	if err != nil {
		return apperror.InternalError(fmt.Errorf("encode transfer: %w", err))
	}
	ix := domain.Instruction{
		ProgramID: d.ProgramID(),
		Accounts: []domain.AccountMeta{
			domain.Meta(req.Source.Key, true, true),
			domain.Meta(req.Destination.Key, false, true),
		},
		Data: data,
	}
	return invokeSigned(ic, ix, req.AuthoritySeeds)
}

// debitOwned moves lamports out of an engine-owned account without a
// cross-program call. The source must be an address the engine signs for.
func (d *NativeDelegate) debitOwned(req ports.TransferRequest) error {
	if req.AuthoritySeeds == nil || !d.deriver.CanSign(req.Source.Key, req.AuthoritySeeds) {
		return apperror.ErrMissingSigner("Engine authority")
	}
	remaining, ok := domain.CheckedSub(req.Source.Lamports, req.Amount)
	if !ok {
		return apperror.ErrInsufficientBalance()
	}
	credited, ok := domain.CheckedAdd(req.Destination.Lamports, req.Amount)
	if !ok {
		return apperror.ErrArithmeticOverflow()
	}
	req.Source.Lamports = remaining
	req.Destination.Lamports = credited
	return nil
}

// CreateAccount funds and allocates target with space bytes owned by owner.
// targetSeeds sign for target when it is an engine derived address.
func (d *NativeDelegate) CreateAccount(
	ic ports.InvokeContext,
	program, payer, target *domain.AccountInfo,
	space int,
	owner solana.PublicKey,
	targetSeeds [][]byte,
) error {
	if err := pinned(program, d); err != nil {
		return err
	}
	data, err := codec.EncodeSystemInstruction(domain.SystemInstruction{
		Tag:      domain.SystemCreateAccount,
		Lamports: domain.MinimumBalance(space),
		Space:    uint64(space),
		Owner:    owner,
	})
	if err != nil {
		return apperror.InternalError(fmt.Errorf("encode create account: %w", err))
	}
	ix := domain.Instruction{
		ProgramID: d.ProgramID(),
		Accounts: []domain.AccountMeta{
			domain.Meta(payer.Key, true, true),
			domain.Meta(target.Key, true, true),
		},
		Data: data,
	}
	return invokeSigned(ic, ix, targetSeeds)
}

// TokenDelegate moves tokens through the pinned token program.
type TokenDelegate struct {
	programID solana.PublicKey
}

// NewTokenDelegate creates the token delegate for the configured token program.
func NewTokenDelegate(cfg EngineConfig) *TokenDelegate {
	return &TokenDelegate{programID: cfg.TokenProgramID}
}

// ProgramID is the configured token program.
func (d *TokenDelegate) ProgramID() solana.PublicKey {
	return d.programID
}

// Transfer issues TransferChecked from req.Source to req.Destination.
func (d *TokenDelegate) Transfer(ic ports.InvokeContext, req ports.TransferRequest) error {
	if err := pinned(req.Program, d); err != nil {
		return err
	}
	if req.Mint == nil {
		return apperror.Validation("token transfer requires a mint")
	}
	data, err := codec.EncodeTokenInstruction(domain.TokenInstruction{
		Tag:      domain.TokenTransferChecked,
		Amount:   req.Amount,
		Decimals: req.Decimals,
	})
	if err != nil {
		return apperror.InternalError(fmt.Errorf("encode transfer checked: %w", err))
	}
	ix := domain.Instruction{
		ProgramID: d.programID,
		Accounts: []domain.AccountMeta{
			domain.Meta(req.Source.Key, false, true),
			domain.Meta(req.Mint.Key, false, false),
			domain.Meta(req.Destination.Key, false, true),
			domain.Meta(req.Authority.Key, true, false),
		},
		Data: data,
	}
	return invokeSigned(ic, ix, req.AuthoritySeeds)
}

// InitializeAccount sets up account as a token account of mint controlled by owner.
func (d *TokenDelegate) InitializeAccount(ic ports.InvokeContext, program, account, mint, owner *domain.AccountInfo) error {
	if err := pinned(program, d); err != nil {
		return err
	}
	data, err := codec.EncodeTokenInstruction(domain.TokenInstruction{Tag: domain.TokenInitializeAccount})
	if err != nil {
		return apperror.InternalError(fmt.Errorf("encode initialize account: %w", err))
	}
	ix := domain.Instruction{
		ProgramID: d.programID,
		Accounts: []domain.AccountMeta{
			domain.Meta(account.Key, false, true),
			domain.Meta(mint.Key, false, false),
			domain.Meta(owner.Key, false, false),
		},
		Data: data,
	}
	return ic.Invoke(ix)
}

func pinned(program *domain.AccountInfo, delegate ports.TransferDelegate) error {
	if program == nil || !program.Key.Equals(delegate.ProgramID()) {
		return apperror.ErrDelegateIdentityMismatch("Transfer program")
	}
	return nil
}

func invokeSigned(ic ports.InvokeContext, ix domain.Instruction, seeds [][]byte) error {
	if seeds == nil {
		return ic.Invoke(ix)
	}
	return ic.Invoke(ix, seeds)
}
