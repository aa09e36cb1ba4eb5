package service

import (
	"github.com/gagliardetto/solana-go"
)

// Address namespaces. Each record kind derives its address under its own namespace.
const (
	vaultNamespace       = "vault"
	walletNamespace      = "wallet"
	walletVaultNamespace = "wallet_vault"
	authorityNamespace   = "authority"
)

// Deriver computes the authoritative addresses of engine records.
type Deriver struct {
	programID solana.PublicKey
}

// NewDeriver creates a Deriver for the given engine program.
func NewDeriver(programID solana.PublicKey) *Deriver {
	return &Deriver{programID: programID}
}

// VaultSeeds are the seeds of the Vault with the given seed byte.
func VaultSeeds(seed uint8) [][]byte {
	return [][]byte{[]byte(vaultNamespace), {seed}}
}

// WalletSeeds are the seeds of owner's Wallet record.
func WalletSeeds(owner solana.PublicKey) [][]byte {
	return [][]byte{[]byte(walletNamespace), owner.Bytes()}
}

// WalletVaultSeeds are the seeds of owner's custody token account.
func WalletVaultSeeds(owner solana.PublicKey) [][]byte {
	return [][]byte{[]byte(walletVaultNamespace), owner.Bytes()}
}

// AuthoritySeeds are the seeds of the engine's signing authority.
func AuthoritySeeds() [][]byte {
	return [][]byte{[]byte(authorityNamespace)}
}

// WithBump returns seeds followed by the bump byte, the form used to sign.
func WithBump(seeds [][]byte, bump uint8) [][]byte {
	out := make([][]byte, 0, len(seeds)+1)
	out = append(out, seeds...)
	return append(out, []byte{bump})
}

// VaultAddress returns the canonical Vault address for seed and its bump.
func (d *Deriver) VaultAddress(seed uint8) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(VaultSeeds(seed), d.programID)
}

// WalletAddress returns the Wallet record address of owner.
func (d *Deriver) WalletAddress(owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(WalletSeeds(owner), d.programID)
}

// WalletVaultAddress returns the custody token account address of owner.
func (d *Deriver) WalletVaultAddress(owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(WalletVaultSeeds(owner), d.programID)
}

// AuthorityAddress returns the engine's signing authority.
func (d *Deriver) AuthorityAddress() (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(AuthoritySeeds(), d.programID)
}

// CanSign reports whether signing with seeds yields addr under this engine.
func (d *Deriver) CanSign(addr solana.PublicKey, seeds [][]byte) bool {
	derived, err := solana.CreateProgramAddress(seeds, d.programID)
	if err != nil {
		return false
	}
	return derived.Equals(addr)
}
