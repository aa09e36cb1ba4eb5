package service

import (
	"fmt"

	"vault-engine/internal/core/codec"
	"vault-engine/internal/core/domain"
	"vault-engine/internal/core/ports"
	"vault-engine/pkg/apperror"
)

// initializeWallet accounts: wallet(w), wallet_vault(w), authority, owner(s,w),
// mint, system_program, token_program.
func (e *Engine) initializeWallet(ic ports.InvokeContext, accounts []*domain.AccountInfo) error {
	walletAcct, walletVault, authority, owner := accounts[0], accounts[1], accounts[2], accounts[3]
	mintAcct, systemProgram, tokenProgram := accounts[4], accounts[5], accounts[6]

	if err := e.guard.RequireDelegate(systemProgram, e.native, "System program"); err != nil {
		return err
	}
	if err := e.guard.RequireDelegate(tokenProgram, e.token, "Token program"); err != nil {
		return err
	}
	walletAddr, walletBump, err := e.deriver.WalletAddress(owner.Key)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("derive wallet address: %w", err))
	}
	if err := e.guard.RequireAddress(walletAcct, walletAddr, "Wallet"); err != nil {
		return err
	}
	vaultAddr, vaultBump, err := e.deriver.WalletVaultAddress(owner.Key)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("derive wallet vault address: %w", err))
	}
	if err := e.guard.RequireAddress(walletVault, vaultAddr, "Wallet vault"); err != nil {
		return err
	}
	if err := e.guard.RequireAddress(authority, e.cfg.Authority, "Authority"); err != nil {
		return err
	}
	if err := e.guard.RequireSigner(owner, "Owner"); err != nil {
		return err
	}
	if err := e.guard.RequireUnallocated(walletAcct, "Wallet"); err != nil {
		return err
	}
	if err := e.guard.RequireUnallocated(walletVault, "Wallet vault"); err != nil {
		return err
	}
	if _, err := e.guard.LoadMint(mintAcct); err != nil {
		return err
	}

	if err := e.native.CreateAccount(ic, systemProgram, owner, walletAcct,
		domain.WalletSize, e.cfg.ProgramID, WithBump(WalletSeeds(owner.Key), walletBump)); err != nil {
		return err
	}
	if err := e.native.CreateAccount(ic, systemProgram, owner, walletVault,
		domain.TokenAccountSize, e.cfg.TokenProgramID, WithBump(WalletVaultSeeds(owner.Key), vaultBump)); err != nil {
		return err
	}
	if err := e.token.InitializeAccount(ic, tokenProgram, walletVault, mintAcct, authority); err != nil {
		return err
	}

	data, err := codec.EncodeWallet(&domain.Wallet{
		Owner:      owner.Key,
		Authority:  e.cfg.Authority,
		Mint:       mintAcct.Key,
		Vault:      walletVault.Key,
		WalletBump: walletBump,
		VaultBump:  vaultBump,
	})
	if err := writeRecord(walletAcct, data, err); err != nil {
		return err
	}

	e.log.Debug().Str("wallet", walletAcct.Key.String()).Str("owner", owner.Key.String()).Msg("wallet initialized")
	return nil
}

// walletDeposit accounts: wallet, wallet_vault(w), source(w), source_authority(s), mint, token_program.
func (e *Engine) walletDeposit(ic ports.InvokeContext, accounts []*domain.AccountInfo, amount uint64) error {
	walletAcct, walletVault, source, sourceAuthority := accounts[0], accounts[1], accounts[2], accounts[3]
	mintAcct, tokenProgram := accounts[4], accounts[5]

	wallet, err := e.guard.LoadWallet(walletAcct)
	if err != nil {
		return err
	}
	if err := e.guard.RequireAddress(walletVault, wallet.Vault, "Wallet vault"); err != nil {
		return err
	}
	if err := e.guard.RequireAddress(mintAcct, wallet.Mint, "Mint"); err != nil {
		return err
	}
	mint, err := e.guard.LoadMint(mintAcct)
	if err != nil {
		return err
	}
	if err := e.guard.RequireSigner(sourceAuthority, "Source authority"); err != nil {
		return err
	}
	if err := e.guard.RequireDelegate(tokenProgram, e.token, "Token program"); err != nil {
		return err
	}
	if err := requireAmount(amount); err != nil {
		return err
	}

	if err := e.token.Transfer(ic, ports.TransferRequest{
		Source:      source,
		Destination: walletVault,
		Authority:   sourceAuthority,
		Program:     tokenProgram,
		Mint:        mintAcct,
		Decimals:    mint.Decimals,
		Amount:      amount,
	}); err != nil {
		return err
	}

	e.log.Debug().Str("wallet", walletAcct.Key.String()).Uint64("amount", amount).Msg("wallet deposit")
	return nil
}

// walletWithdraw accounts: wallet, wallet_vault(w), authority, owner(s),
// destination(w), mint, token_program.
func (e *Engine) walletWithdraw(ic ports.InvokeContext, accounts []*domain.AccountInfo, amount uint64) error {
	walletAcct, walletVault, authority, owner := accounts[0], accounts[1], accounts[2], accounts[3]
	destination, mintAcct, tokenProgram := accounts[4], accounts[5], accounts[6]

	wallet, err := e.guard.LoadWallet(walletAcct)
	if err != nil {
		return err
	}
	if err := e.guard.RequireAddress(owner, wallet.Owner, "Owner"); err != nil {
		return err
	}
	if err := e.guard.RequireAddress(authority, e.cfg.Authority, "Authority"); err != nil {
		return err
	}
	if !wallet.Authority.Equals(e.cfg.Authority) {
		return apperror.ErrUnauthorizedSubstitution("Wallet authority")
	}
	if err := e.guard.RequireAddress(walletVault, wallet.Vault, "Wallet vault"); err != nil {
		return err
	}
	if err := e.guard.RequireAddress(mintAcct, wallet.Mint, "Mint"); err != nil {
		return err
	}
	if err := e.guard.RequireSigner(owner, "Owner"); err != nil {
		return err
	}
	if err := e.guard.RequireDelegate(tokenProgram, e.token, "Token program"); err != nil {
		return err
	}
	if err := requireAmount(amount); err != nil {
		return err
	}
	mint, err := e.guard.LoadMint(mintAcct)
	if err != nil {
		return err
	}
	custody, err := e.guard.LoadTokenAccount(walletVault, "Wallet vault")
	if err != nil {
		return err
	}
	if custody.Amount < amount {
		return apperror.ErrInsufficientBalance()
	}

	if err := e.token.Transfer(ic, ports.TransferRequest{
		Source:         walletVault,
		Destination:    destination,
		Authority:      authority,
		Program:        tokenProgram,
		Mint:           mintAcct,
		Decimals:       mint.Decimals,
		Amount:         amount,
		AuthoritySeeds: e.cfg.AuthoritySignerSeeds(),
	}); err != nil {
		return err
	}

	e.log.Debug().Str("wallet", walletAcct.Key.String()).Uint64("amount", amount).Msg("wallet withdraw")
	return nil
}
