package codec

import (
	"vault-engine/internal/core/domain"
	"vault-engine/pkg/apperror"
)

// EncodeMint serializes m in the token program mint layout.
func EncodeMint(m *domain.Mint) ([]byte, error) {
	w := newLayoutWriter(domain.MintSize)
	w.optionKey(m.MintAuthority)
	w.u64(m.Supply)
	w.u8(m.Decimals)
	w.u8(boolByte(m.IsInitialized))
	w.optionKey(m.FreezeAuthority)
	return w.bytes()
}

// DecodeMint parses a mint. The account owner must be checked by the caller.
func DecodeMint(data []byte) (*domain.Mint, error) {
	if len(data) != domain.MintSize {
		return nil, apperror.ErrMalformedRecord("Mint")
	}
	r := newLayoutReader(data)
	m := &domain.Mint{
		MintAuthority: r.optionKey(),
		Supply:        r.u64(),
		Decimals:      r.u8(),
	}
	initialized := r.u8()
	m.FreezeAuthority = r.optionKey()
	if r.err != nil || initialized > 1 {
		return nil, malformed("Mint", r.err)
	}
	m.IsInitialized = initialized == 1
	return m, nil
}

// EncodeTokenAccount serializes t in the token account layout.
func EncodeTokenAccount(t *domain.TokenAccount) ([]byte, error) {
	w := newLayoutWriter(domain.TokenAccountSize)
	w.key(t.Mint)
	w.key(t.Owner)
	w.u64(t.Amount)
	w.optionKey(t.Delegate)
	w.u8(uint8(t.State))
	if t.IsNative != nil {
		w.u32(1)
		w.u64(*t.IsNative)
	} else {
		w.u32(0)
		w.u64(0)
	}
	w.u64(t.DelegatedAmount)
	w.optionKey(t.CloseAuthority)
	return w.bytes()
}

// DecodeTokenAccount parses a token account. The account owner must be checked by the caller.
func DecodeTokenAccount(data []byte) (*domain.TokenAccount, error) {
	if len(data) != domain.TokenAccountSize {
		return nil, apperror.ErrMalformedRecord("Token account")
	}
	r := newLayoutReader(data)
	t := &domain.TokenAccount{
		Mint:     r.key(),
		Owner:    r.key(),
		Amount:   r.u64(),
		Delegate: r.optionKey(),
		State:    domain.TokenAccountState(r.u8()),
	}
	t.IsNative = r.optionU64()
	t.DelegatedAmount = r.u64()
	t.CloseAuthority = r.optionKey()
	if r.err != nil || t.State > domain.TokenAccountFrozen {
		return nil, malformed("Token account", r.err)
	}
	return t, nil
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
