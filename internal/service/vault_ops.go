package service

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"vault-engine/internal/core/codec"
	"vault-engine/internal/core/domain"
	"vault-engine/internal/core/ports"
	"vault-engine/pkg/apperror"
)

var basisPointsPerUnit = decimal.NewFromInt(int64(domain.MaxFeeBasisPoints))

// feeBasisPoints converts a fee fraction in [0, 1] to basis points.
func feeBasisPoints(fee float64) (uint16, error) {
	if math.IsNaN(fee) || math.IsInf(fee, 0) {
		return 0, apperror.Validation("fee must be a finite number")
	}
	d := decimal.NewFromFloat(fee)
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return 0, apperror.Validation("fee must be between 0 and 1")
	}
	return uint16(d.Mul(basisPointsPerUnit).Round(0).IntPart()), nil
}

// initialize accounts: vault(w), initializer(s,w), system_program.
func (e *Engine) initialize(ic ports.InvokeContext, accounts []*domain.AccountInfo, ix *domain.EngineInstruction) error {
	vaultAcct, initializer, systemProgram := accounts[0], accounts[1], accounts[2]

	if err := e.guard.RequireDelegate(systemProgram, e.native, "System program"); err != nil {
		return err
	}
	addr, bump, err := e.deriver.VaultAddress(ix.Seed)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("derive vault address: %w", err))
	}
	if err := e.guard.RequireAddress(vaultAcct, addr, "Vault"); err != nil {
		return err
	}
	if err := e.guard.RequireUnallocated(vaultAcct, "Vault"); err != nil {
		return err
	}
	if err := e.guard.RequireSigner(initializer, "Initializer"); err != nil {
		return err
	}
	feeBps, err := feeBasisPoints(ix.Fee)
	if err != nil {
		return err
	}

	if err := e.native.CreateAccount(ic, systemProgram, initializer, vaultAcct,
		domain.VaultSize, e.cfg.ProgramID, WithBump(VaultSeeds(ix.Seed), bump)); err != nil {
		return err
	}

	data, err := codec.EncodeVault(&domain.Vault{
		Creator:      initializer.Key,
		FeeBps:       feeBps,
		FeeRecipient: ix.FeeRecipient,
		Seed:         ix.Seed,
		Bump:         bump,
	})
	if err := writeRecord(vaultAcct, data, err); err != nil {
		return err
	}

	e.log.Debug().Str("vault", vaultAcct.Key.String()).Uint8("seed", ix.Seed).Uint16("fee_bps", feeBps).Msg("vault initialized")
	return nil
}

// createPool accounts: vault, withdraw_authority(s), pool(w).
func (e *Engine) createPool(accounts []*domain.AccountInfo) error {
	vaultAcct, authority, poolAcct := accounts[0], accounts[1], accounts[2]

	if _, err := e.guard.LoadVault(vaultAcct); err != nil {
		return err
	}
	if err := e.guard.RequireSigner(authority, "Withdraw authority"); err != nil {
		return err
	}
	if err := e.guard.RequireOwner(poolAcct, e.cfg.ProgramID, "Pool"); err != nil {
		return err
	}
	if len(poolAcct.Data) != domain.PoolSize {
		return apperror.ErrMalformedRecord("Pool")
	}
	if !poolAcct.IsZeroed() {
		return apperror.ErrAlreadyInitialized("Pool")
	}

	data, err := codec.EncodePool(&domain.Pool{
		WithdrawAuthority: authority.Key,
		Value:             0,
		Vault:             vaultAcct.Key,
	})
	if err := writeRecord(poolAcct, data, err); err != nil {
		return err
	}

	e.log.Debug().Str("pool", poolAcct.Key.String()).Str("vault", vaultAcct.Key.String()).Msg("pool created")
	return nil
}

// deposit accounts: vault(w), pool(w), source(s,w), system_program. Serves Deposit and Tip.
func (e *Engine) deposit(ic ports.InvokeContext, accounts []*domain.AccountInfo, amount uint64) error {
	vaultAcct, poolAcct, source, systemProgram := accounts[0], accounts[1], accounts[2], accounts[3]

	_, pool, err := e.guard.LoadVaultAndPool(vaultAcct, poolAcct)
	if err != nil {
		return err
	}
	if err := e.guard.RequireSigner(source, "Depositor"); err != nil {
		return err
	}
	if err := e.guard.RequireDelegate(systemProgram, e.native, "System program"); err != nil {
		return err
	}
	if err := requireAmount(amount); err != nil {
		return err
	}
	// Checked before the transfer so the ledger and the real balance never diverge.
	value, ok := domain.CheckedAdd(pool.Value, amount)
	if !ok {
		return apperror.ErrArithmeticOverflow()
	}

	if err := e.native.Transfer(ic, ports.TransferRequest{
		Source:      source,
		Destination: vaultAcct,
		Authority:   source,
		Program:     systemProgram,
		Amount:      amount,
	}); err != nil {
		return err
	}

	pool.Value = value
	data, err := codec.EncodePool(pool)
	if err := writeRecord(poolAcct, data, err); err != nil {
		return err
	}

	e.log.Debug().Str("pool", poolAcct.Key.String()).Uint64("amount", amount).Uint64("value", value).Msg("deposit")
	return nil
}

// withdraw accounts: vault(w), pool(w), withdraw_authority(s,w), system_program.
func (e *Engine) withdraw(ic ports.InvokeContext, accounts []*domain.AccountInfo, amount uint64) error {
	vaultAcct, poolAcct, authority, systemProgram := accounts[0], accounts[1], accounts[2], accounts[3]

	vault, pool, err := e.guard.LoadVaultAndPool(vaultAcct, poolAcct)
	if err != nil {
		return err
	}
	if err := e.guard.RequireSigner(authority, "Withdraw authority"); err != nil {
		return err
	}
	if err := e.guard.RequireAddress(authority, pool.WithdrawAuthority, "Withdraw authority"); err != nil {
		return err
	}
	if err := e.guard.RequireDelegate(systemProgram, e.native, "System program"); err != nil {
		return err
	}
	if err := requireAmount(amount); err != nil {
		return err
	}
	value, ok := domain.CheckedSub(pool.Value, amount)
	if !ok {
		return apperror.ErrInsufficientBalance()
	}
	remaining, ok := domain.CheckedSub(vaultAcct.Lamports, amount)
	if !ok || remaining < domain.MinimumBalance(len(vaultAcct.Data)) {
		return apperror.ErrInsufficientBalance()
	}
	if _, ok := domain.CheckedAdd(authority.Lamports, amount); !ok {
		return apperror.ErrArithmeticOverflow()
	}

	if err := e.native.Transfer(ic, ports.TransferRequest{
		Source:         vaultAcct,
		Destination:    authority,
		Authority:      vaultAcct,
		Program:        systemProgram,
		Amount:         amount,
		AuthoritySeeds: WithBump(VaultSeeds(vault.Seed), vault.Bump),
	}); err != nil {
		return err
	}

	pool.Value = value
	data, err := codec.EncodePool(pool)
	if err := writeRecord(poolAcct, data, err); err != nil {
		return err
	}

	e.log.Debug().Str("pool", poolAcct.Key.String()).Uint64("amount", amount).Uint64("value", value).Msg("withdraw")
	return nil
}
