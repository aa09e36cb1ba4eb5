package domain

import "github.com/gagliardetto/solana-go"

// Token program account sizes.
const (
	MintSize         = 82
	TokenAccountSize = 165
)

// TokenAccountState mirrors the token program's account state byte.
type TokenAccountState uint8

const (
	TokenAccountUninitialized TokenAccountState = iota
	TokenAccountInitialized
	TokenAccountFrozen
)

// Mint describes a token denomination.
type Mint struct {
	MintAuthority   *solana.PublicKey `json:"mint_authority,omitempty"`
	Supply          uint64            `json:"supply"`
	Decimals        uint8             `json:"decimals"`
	IsInitialized   bool              `json:"is_initialized"`
	FreezeAuthority *solana.PublicKey `json:"freeze_authority,omitempty"`
}

// TokenAccount holds a balance of one mint on behalf of Owner.
type TokenAccount struct {
	Mint            solana.PublicKey  `json:"mint"`
	Owner           solana.PublicKey  `json:"owner"`
	Amount          uint64            `json:"amount"`
	Delegate        *solana.PublicKey `json:"delegate,omitempty"`
	State           TokenAccountState `json:"state"`
	IsNative        *uint64           `json:"is_native,omitempty"`
	DelegatedAmount uint64            `json:"delegated_amount"`
	CloseAuthority  *solana.PublicKey `json:"close_authority,omitempty"`
}

// IsInitialized reports whether the account has been set up by InitializeAccount.
func (t *TokenAccount) IsInitialized() bool {
	return t.State != TokenAccountUninitialized
}
