package service

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"vault-engine/internal/core/codec"
	"vault-engine/internal/core/domain"
	"vault-engine/internal/core/ports"
	"vault-engine/pkg/apperror"
)

// Guard validates caller-supplied accounts before any state is touched.
// Every account is treated as untrusted: identity is re-derived, ownership and
// discriminators are checked, and records are only then decoded.
type Guard struct {
	cfg     EngineConfig
	deriver *Deriver
}

// NewGuard creates a Guard for the configured engine.
func NewGuard(cfg EngineConfig) *Guard {
	return &Guard{cfg: cfg, deriver: NewDeriver(cfg.ProgramID)}
}

// RequireOwner fails with OWNERSHIP_MISMATCH unless acct is owned by owner.
func (g *Guard) RequireOwner(acct *domain.AccountInfo, owner solana.PublicKey, what string) error {
	if !acct.Owner.Equals(owner) {
		return apperror.ErrOwnershipMismatch(what)
	}
	return nil
}

// RequireSigner fails with MISSING_SIGNER unless acct signed the call.
func (g *Guard) RequireSigner(acct *domain.AccountInfo, what string) error {
	if !acct.IsSigner {
		return apperror.ErrMissingSigner(what)
	}
	return nil
}

// RequireAddress fails with UNAUTHORIZED_SUBSTITUTION unless acct is at want.
func (g *Guard) RequireAddress(acct *domain.AccountInfo, want solana.PublicKey, what string) error {
	if !acct.Key.Equals(want) {
		return apperror.ErrUnauthorizedSubstitution(what)
	}
	return nil
}

// RequireDelegate pins the supplied transfer program account to the delegate's identity.
func (g *Guard) RequireDelegate(acct *domain.AccountInfo, delegate ports.TransferDelegate, what string) error {
	if !acct.Key.Equals(delegate.ProgramID()) {
		return apperror.ErrDelegateIdentityMismatch(what)
	}
	return nil
}

// RequireUnallocated fails with ALREADY_INITIALIZED if acct holds data or belongs to a program.
// A lamport balance alone does not count as initialized.
func (g *Guard) RequireUnallocated(acct *domain.AccountInfo, what string) error {
	if len(acct.Data) != 0 || !acct.Owner.Equals(solana.SystemProgramID) {
		return apperror.ErrAlreadyInitialized(what)
	}
	return nil
}

// LoadVault checks ownership, discriminator and derived address of a Vault.
func (g *Guard) LoadVault(acct *domain.AccountInfo) (*domain.Vault, error) {
	if err := g.RequireOwner(acct, g.cfg.ProgramID, "Vault"); err != nil {
		return nil, err
	}
	vault, err := codec.DecodeVault(acct.Data)
	if err != nil {
		return nil, err
	}
	addr, _, err := g.deriver.VaultAddress(vault.Seed)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("derive vault address: %w", err))
	}
	if err := g.RequireAddress(acct, addr, "Vault"); err != nil {
		return nil, err
	}
	return vault, nil
}

// LoadPool checks ownership and discriminator of a Pool and binds it to a Vault
// account that has already passed LoadVault.
func (g *Guard) LoadPool(acct, vaultAcct *domain.AccountInfo) (*domain.Pool, error) {
	if err := g.RequireOwner(acct, g.cfg.ProgramID, "Pool"); err != nil {
		return nil, err
	}
	pool, err := codec.DecodePool(acct.Data)
	if err != nil {
		return nil, err
	}
	if !pool.Vault.Equals(vaultAcct.Key) {
		return nil, apperror.ErrBackReferenceMismatch()
	}
	return pool, nil
}

// LoadVaultAndPool applies LoadVault then LoadPool.
func (g *Guard) LoadVaultAndPool(vaultAcct, poolAcct *domain.AccountInfo) (*domain.Vault, *domain.Pool, error) {
	vault, err := g.LoadVault(vaultAcct)
	if err != nil {
		return nil, nil, err
	}
	pool, err := g.LoadPool(poolAcct, vaultAcct)
	if err != nil {
		return nil, nil, err
	}
	return vault, pool, nil
}

// LoadWallet checks ownership and discriminator of a Wallet and that it lives
// at the address derived from its stored owner.
func (g *Guard) LoadWallet(acct *domain.AccountInfo) (*domain.Wallet, error) {
	if err := g.RequireOwner(acct, g.cfg.ProgramID, "Wallet"); err != nil {
		return nil, err
	}
	wallet, err := codec.DecodeWallet(acct.Data)
	if err != nil {
		return nil, err
	}
	addr, _, err := g.deriver.WalletAddress(wallet.Owner)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("derive wallet address: %w", err))
	}
	if err := g.RequireAddress(acct, addr, "Wallet"); err != nil {
		return nil, err
	}
	return wallet, nil
}

// LoadMint decodes an initialized mint owned by the pinned token program.
func (g *Guard) LoadMint(acct *domain.AccountInfo) (*domain.Mint, error) {
	if err := g.RequireOwner(acct, g.cfg.TokenProgramID, "Mint"); err != nil {
		return nil, err
	}
	mint, err := codec.DecodeMint(acct.Data)
	if err != nil {
		return nil, err
	}
	if !mint.IsInitialized {
		return nil, apperror.ErrMalformedRecord("Mint")
	}
	return mint, nil
}

// LoadTokenAccount decodes an initialized token account owned by the pinned token program.
func (g *Guard) LoadTokenAccount(acct *domain.AccountInfo, what string) (*domain.TokenAccount, error) {
	if err := g.RequireOwner(acct, g.cfg.TokenProgramID, what); err != nil {
		return nil, err
	}
	ta, err := codec.DecodeTokenAccount(acct.Data)
	if err != nil {
		return nil, err
	}
	if !ta.IsInitialized() {
		return nil, apperror.ErrMalformedRecord(what)
	}
	return ta, nil
}
