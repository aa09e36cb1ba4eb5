package domain

import (
	"github.com/gagliardetto/solana-go"
)

// RecordKind is the discriminator stored in the first byte of every engine record.
type RecordKind uint8

const (
	RecordKindUninitialized RecordKind = iota
	RecordKindVault
	RecordKindPool
	RecordKindWallet
)

func (k RecordKind) String() string {
	switch k {
	case RecordKindUninitialized:
		return "Uninitialized"
	case RecordKindVault:
		return "Vault"
	case RecordKindPool:
		return "Pool"
	case RecordKindWallet:
		return "Wallet"
	default:
		return "Unknown"
	}
}

// Encoded record sizes, discriminator included.
const (
	VaultSize  = 1 + 32 + 2 + 32 + 1 + 1
	PoolSize   = 1 + 32 + 8 + 32
	WalletSize = 1 + 32 + 32 + 32 + 32 + 1 + 1
)

// Size returns the encoded size of a record kind, or 0 for kinds with no layout.
func (k RecordKind) Size() int {
	switch k {
	case RecordKindVault:
		return VaultSize
	case RecordKindPool:
		return PoolSize
	case RecordKindWallet:
		return WalletSize
	default:
		return 0
	}
}

// MaxFeeBasisPoints is a fee of 100%.
const MaxFeeBasisPoints uint16 = 10_000

// Vault holds pooled native currency at the address derived from Seed.
type Vault struct {
	Creator      solana.PublicKey `json:"creator"`
	FeeBps       uint16           `json:"fee_bps"`
	FeeRecipient solana.PublicKey `json:"fee_recipient"`
	Seed         uint8            `json:"seed"`
	Bump         uint8            `json:"bump"`
}

// Pool tracks the balance withdrawable from one Vault.
type Pool struct {
	WithdrawAuthority solana.PublicKey `json:"withdraw_authority"`
	Value             uint64           `json:"value"`
	Vault             solana.PublicKey `json:"vault"`
}

// Wallet is a per-owner token custody record. The custody token account is
// controlled by the engine authority only.
type Wallet struct {
	Owner      solana.PublicKey `json:"owner"`
	Authority  solana.PublicKey `json:"authority"`
	Mint       solana.PublicKey `json:"mint"`
	Vault      solana.PublicKey `json:"vault"`
	WalletBump uint8            `json:"wallet_bump"`
	VaultBump  uint8            `json:"vault_bump"`
}
