// Package builtin provides the system and token programs the engine delegates
// value movement to.
package builtin

import (
	"github.com/gagliardetto/solana-go"

	"vault-engine/internal/core/codec"
	"vault-engine/internal/core/domain"
	"vault-engine/internal/core/ports"
	"vault-engine/pkg/apperror"
)

// MaxAccountSpace caps the data size of a created account.
const MaxAccountSpace = 10 * 1024 * 1024

// SystemProgram creates accounts and moves lamports between system-owned accounts.
type SystemProgram struct{}

// NewSystemProgram creates a new SystemProgram.
func NewSystemProgram() *SystemProgram {
	return &SystemProgram{}
}

// ID returns the well-known system program address.
func (p *SystemProgram) ID() solana.PublicKey {
	return solana.SystemProgramID
}

func (p *SystemProgram) Process(_ ports.InvokeContext, accounts []*domain.AccountInfo, data []byte) error {
	ix, err := codec.DecodeSystemInstruction(data)
	if err != nil {
		return err
	}
	if len(accounts) < 2 {
		return apperror.ErrNotEnoughAccounts()
	}
	switch ix.Tag {
	case domain.SystemCreateAccount:
		return p.createAccount(accounts[0], accounts[1], ix)
	case domain.SystemTransfer:
		return p.transfer(accounts[0], accounts[1], ix.Lamports)
	default:
		return apperror.ErrInvalidInstruction(nil)
	}
}

// createAccount accounts: funder(s,w), new account(s,w).
func (p *SystemProgram) createAccount(from, to *domain.AccountInfo, ix *domain.SystemInstruction) error {
	if !from.IsSigner {
		return apperror.ErrMissingSigner("Funding account")
	}
	if !to.IsSigner {
		return apperror.ErrMissingSigner("New account")
	}
	if len(to.Data) != 0 || !to.Owner.Equals(solana.SystemProgramID) {
		return apperror.ErrAlreadyInitialized("Account")
	}
	if ix.Space > MaxAccountSpace {
		return apperror.Validation("requested account space is too large")
	}
	if err := p.move(from, to, ix.Lamports); err != nil {
		return err
	}
	to.Data = make([]byte, ix.Space)
	to.Owner = ix.Owner
	return nil
}

// transfer accounts: from(s,w), to(w).
func (p *SystemProgram) transfer(from, to *domain.AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		return apperror.ErrMissingSigner("Source")
	}
	return p.move(from, to, lamports)
}

func (p *SystemProgram) move(from, to *domain.AccountInfo, lamports uint64) error {
	if !from.Owner.Equals(solana.SystemProgramID) || len(from.Data) != 0 {
		return apperror.ErrOwnershipMismatch("Source")
	}
	remaining, ok := domain.CheckedSub(from.Lamports, lamports)
	if !ok {
		return apperror.ErrInsufficientBalance()
	}
	if from.Account == to.Account {
		return nil
	}
	credited, ok := domain.CheckedAdd(to.Lamports, lamports)
	if !ok {
		return apperror.ErrArithmeticOverflow()
	}
	from.Lamports = remaining
	to.Lamports = credited
	return nil
}
