package domain

import (
	"bytes"
	"time"

	"github.com/gagliardetto/solana-go"
)

// NativeLoaderID owns the executable accounts of builtin programs.
var NativeLoaderID = solana.MustPublicKeyFromBase58("NativeLoader1111111111111111111111111111111")

// Account is a ledger entry keyed by address.
type Account struct {
	Key        solana.PublicKey `json:"key"`
	Owner      solana.PublicKey `json:"owner"`
	Lamports   uint64           `json:"lamports"`
	Data       []byte           `json:"data"`
	Executable bool             `json:"executable"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// NewEmptyAccount returns the state of an address that has never been written:
// system-owned, no data, no lamports.
func NewEmptyAccount(key solana.PublicKey) *Account {
	return &Account{Key: key, Owner: solana.SystemProgramID}
}

// NewProgramAccount returns the executable account backing a builtin program.
func NewProgramAccount(programID solana.PublicKey) *Account {
	return &Account{Key: programID, Owner: NativeLoaderID, Lamports: 1, Executable: true}
}

// Clone returns a deep copy.
func (a *Account) Clone() *Account {
	c := *a
	c.Data = append([]byte(nil), a.Data...)
	return &c
}

// IsZeroed reports whether every data byte is zero (true for empty data).
func (a *Account) IsZeroed() bool {
	for _, b := range a.Data {
		if b != 0 {
			return false
		}
	}
	return true
}

// IsUnused reports whether the account has never been allocated.
func (a *Account) IsUnused() bool {
	return len(a.Data) == 0 && a.Lamports == 0 && a.Owner.Equals(solana.SystemProgramID)
}

// Equal compares every stored field except UpdatedAt.
func (a *Account) Equal(b *Account) bool {
	return a.Key.Equals(b.Key) &&
		a.Owner.Equals(b.Owner) &&
		a.Lamports == b.Lamports &&
		a.Executable == b.Executable &&
		bytes.Equal(a.Data, b.Data)
}

// AccountInfo is an account as seen by a running program, with the privileges
// granted to it by the current call.
type AccountInfo struct {
	*Account
	IsSigner   bool
	IsWritable bool
}

// AccountMeta names an account in an instruction and the privileges requested for it.
type AccountMeta struct {
	Key        solana.PublicKey `json:"key"`
	IsSigner   bool             `json:"is_signer"`
	IsWritable bool             `json:"is_writable"`
}

// Meta is a shorthand for building instruction account lists.
func Meta(key solana.PublicKey, signer, writable bool) AccountMeta {
	return AccountMeta{Key: key, IsSigner: signer, IsWritable: writable}
}

// Instruction is a call into a program.
type Instruction struct {
	ProgramID solana.PublicKey `json:"program_id"`
	Accounts  []AccountMeta    `json:"accounts"`
	Data      []byte           `json:"data"`
}
