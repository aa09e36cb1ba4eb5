package builtin

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"vault-engine/internal/core/codec"
	"vault-engine/internal/core/domain"
	"vault-engine/internal/core/ports"
	"vault-engine/pkg/apperror"
)

// TokenProgram keeps mint and token account balances.
type TokenProgram struct {
	id solana.PublicKey
}

// NewTokenProgram returns a token program that answers to id.
func NewTokenProgram(id solana.PublicKey) *TokenProgram {
	return &TokenProgram{id: id}
}

// ID returns the program address the runtime dispatches on.
func (p *TokenProgram) ID() solana.PublicKey {
	return p.id
}

// Process decodes data and runs the matching token instruction.
func (p *TokenProgram) Process(_ ports.InvokeContext, accounts []*domain.AccountInfo, data []byte) error {
	ix, err := codec.DecodeTokenInstruction(data)
	if err != nil {
		return err
	}
	switch ix.Tag {
	case domain.TokenInitializeMint:
		if len(accounts) < 1 {
			return apperror.ErrNotEnoughAccounts()
		}
		return p.initializeMint(accounts[0], ix)
	case domain.TokenInitializeAccount:
		if len(accounts) < 3 {
			return apperror.ErrNotEnoughAccounts()
		}
		return p.initializeAccount(accounts[0], accounts[1], accounts[2])
	case domain.TokenMintTo:
		if len(accounts) < 3 {
			return apperror.ErrNotEnoughAccounts()
		}
		return p.mintTo(accounts[0], accounts[1], accounts[2], ix.Amount)
	case domain.TokenTransferChecked:
		if len(accounts) < 4 {
			return apperror.ErrNotEnoughAccounts()
		}
		return p.transferChecked(accounts[0], accounts[1], accounts[2], accounts[3], ix)
	default:
		return apperror.ErrInvalidInstruction(nil)
	}
}

// initializeMint accounts: mint(w).
func (p *TokenProgram) initializeMint(mintAcct *domain.AccountInfo, ix *domain.TokenInstruction) error {
	if !mintAcct.Owner.Equals(p.id) {
		return apperror.ErrOwnershipMismatch("Mint")
	}
	if len(mintAcct.Data) != domain.MintSize {
		return apperror.ErrMalformedRecord("Mint")
	}
	if !mintAcct.IsZeroed() {
		return apperror.ErrAlreadyInitialized("Mint")
	}
	authority := ix.MintAuthority
	data, err := codec.EncodeMint(&domain.Mint{
		MintAuthority: &authority,
		Decimals:      ix.Decimals,
		IsInitialized: true,
	})
	return p.store(mintAcct, data, err)
}

// initializeAccount accounts: account(w), mint, owner.
func (p *TokenProgram) initializeAccount(acct, mintAcct, owner *domain.AccountInfo) error {
	if !acct.Owner.Equals(p.id) {
		return apperror.ErrOwnershipMismatch("Token account")
	}
	if len(acct.Data) != domain.TokenAccountSize {
		return apperror.ErrMalformedRecord("Token account")
	}
	if !acct.IsZeroed() {
		return apperror.ErrAlreadyInitialized("Token account")
	}
	if _, err := p.loadMint(mintAcct); err != nil {
		return err
	}
	data, err := codec.EncodeTokenAccount(&domain.TokenAccount{
		Mint:  mintAcct.Key,
		Owner: owner.Key,
		State: domain.TokenAccountInitialized,
	})
	return p.store(acct, data, err)
}

// mintTo accounts: mint(w), destination(w), mint_authority(s).
func (p *TokenProgram) mintTo(mintAcct, dest, authority *domain.AccountInfo, amount uint64) error {
	mint, err := p.loadMint(mintAcct)
	if err != nil {
		return err
	}
	if mint.MintAuthority == nil || !mint.MintAuthority.Equals(authority.Key) {
		return apperror.ErrUnauthorizedSubstitution("Mint authority")
	}
	if !authority.IsSigner {
		return apperror.ErrMissingSigner("Mint authority")
	}
	to, err := p.loadAccount(dest)
	if err != nil {
		return err
	}
	if !to.Mint.Equals(mintAcct.Key) {
		return apperror.Validation("destination belongs to a different mint")
	}
	supply, ok := domain.CheckedAdd(mint.Supply, amount)
	if !ok {
		return apperror.ErrArithmeticOverflow()
	}
	balance, ok := domain.CheckedAdd(to.Amount, amount)
	if !ok {
		return apperror.ErrArithmeticOverflow()
	}
	mint.Supply = supply
	to.Amount = balance
	mintData, err := codec.EncodeMint(mint)
	if err := p.store(mintAcct, mintData, err); err != nil {
		return err
	}
	destData, err := codec.EncodeTokenAccount(to)
	return p.store(dest, destData, err)
}

// transferChecked accounts: source(w), mint, destination(w), authority(s).
func (p *TokenProgram) transferChecked(src, mintAcct, dest, authority *domain.AccountInfo, ix *domain.TokenInstruction) error {
	mint, err := p.loadMint(mintAcct)
	if err != nil {
		return err
	}
	if mint.Decimals != ix.Decimals {
		return apperror.Validation(fmt.Sprintf("mint has %d decimals, instruction says %d", mint.Decimals, ix.Decimals))
	}
	from, err := p.loadAccount(src)
	if err != nil {
		return err
	}
	to, err := p.loadAccount(dest)
	if err != nil {
		return err
	}
	if !from.Mint.Equals(mintAcct.Key) || !to.Mint.Equals(mintAcct.Key) {
		return apperror.Validation("token account belongs to a different mint")
	}
	if from.State == domain.TokenAccountFrozen || to.State == domain.TokenAccountFrozen {
		return apperror.Validation("token account is frozen")
	}
	if !from.Owner.Equals(authority.Key) {
		return apperror.ErrUnauthorizedSubstitution("Token account owner")
	}
	if !authority.IsSigner {
		return apperror.ErrMissingSigner("Token account owner")
	}
	remaining, ok := domain.CheckedSub(from.Amount, ix.Amount)
	if !ok {
		return apperror.ErrInsufficientBalance()
	}
	if src.Account == dest.Account {
		return nil
	}
	balance, ok := domain.CheckedAdd(to.Amount, ix.Amount)
	if !ok {
		return apperror.ErrArithmeticOverflow()
	}
	from.Amount = remaining
	to.Amount = balance
	srcData, err := codec.EncodeTokenAccount(from)
	if err := p.store(src, srcData, err); err != nil {
		return err
	}
	destData, err := codec.EncodeTokenAccount(to)
	return p.store(dest, destData, err)
}

func (p *TokenProgram) loadMint(acct *domain.AccountInfo) (*domain.Mint, error) {
	if !acct.Owner.Equals(p.id) {
		return nil, apperror.ErrOwnershipMismatch("Mint")
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

func (p *TokenProgram) loadAccount(acct *domain.AccountInfo) (*domain.TokenAccount, error) {
	if !acct.Owner.Equals(p.id) {
		return nil, apperror.ErrOwnershipMismatch("Token account")
	}
	ta, err := codec.DecodeTokenAccount(acct.Data)
	if err != nil {
		return nil, err
	}
	if !ta.IsInitialized() {
		return nil, apperror.ErrMalformedRecord("Token account")
	}
	return ta, nil
}

func (p *TokenProgram) store(acct *domain.AccountInfo, data []byte, err error) error {
	if err != nil {
		return apperror.InternalError(err)
	}
	copy(acct.Data, data)
	return nil
}
