// Package codec converts engine records, token layouts and instructions to and
// from their fixed binary layouts.
package codec

import (
	"fmt"

	"vault-engine/internal/core/domain"
	"vault-engine/pkg/apperror"
)

// PeekKind returns the discriminator of an engine record without decoding it.
func PeekKind(data []byte) domain.RecordKind {
	if len(data) == 0 {
		return domain.RecordKindUninitialized
	}
	return domain.RecordKind(data[0])
}

// checkRecord verifies the discriminator before the length so that a record of
// one kind is always reported as a kind mismatch, whatever its size.
func checkRecord(data []byte, want domain.RecordKind) error {
	if len(data) == 0 {
		return apperror.ErrMalformedRecord(want.String())
	}
	if got := PeekKind(data); got != want {
		return apperror.ErrKindMismatch(want.String(), got.String())
	}
	if len(data) != want.Size() {
		return apperror.ErrMalformedRecord(want.String())
	}
	return nil
}

// EncodeVault serializes v into a VaultSize record.
func EncodeVault(v *domain.Vault) ([]byte, error) {
	w := newLayoutWriter(domain.VaultSize)
	w.u8(uint8(domain.RecordKindVault))
	w.key(v.Creator)
	w.u16(v.FeeBps)
	w.key(v.FeeRecipient)
	w.u8(v.Seed)
	w.u8(v.Bump)
	return w.bytes()
}

// DecodeVault parses a Vault record. A wrong length or discriminator is
// reported as a malformed or mismatched record, never a zero Vault.
func DecodeVault(data []byte) (*domain.Vault, error) {
	if err := checkRecord(data, domain.RecordKindVault); err != nil {
		return nil, err
	}
	r := newLayoutReader(data[1:])
	v := &domain.Vault{
		Creator:      r.key(),
		FeeBps:       r.u16(),
		FeeRecipient: r.key(),
		Seed:         r.u8(),
		Bump:         r.u8(),
	}
	if r.err != nil {
		return nil, malformed("Vault", r.err)
	}
	if v.FeeBps > domain.MaxFeeBasisPoints {
		return nil, apperror.ErrMalformedRecord("Vault")
	}
	return v, nil
}

// EncodePool serializes p into a PoolSize record.
func EncodePool(p *domain.Pool) ([]byte, error) {
	w := newLayoutWriter(domain.PoolSize)
	w.u8(uint8(domain.RecordKindPool))
	w.key(p.WithdrawAuthority)
	w.u64(p.Value)
	w.key(p.Vault)
	return w.bytes()
}

// DecodePool parses a Pool record.
func DecodePool(data []byte) (*domain.Pool, error) {
	if err := checkRecord(data, domain.RecordKindPool); err != nil {
		return nil, err
	}
	r := newLayoutReader(data[1:])
	p := &domain.Pool{
		WithdrawAuthority: r.key(),
		Value:             r.u64(),
		Vault:             r.key(),
	}
	if r.err != nil {
		return nil, malformed("Pool", r.err)
	}
	return p, nil
}

// EncodeWallet serializes wl into a WalletSize record.
func EncodeWallet(wl *domain.Wallet) ([]byte, error) {
	w := newLayoutWriter(domain.WalletSize)
	w.u8(uint8(domain.RecordKindWallet))
	w.key(wl.Owner)
	w.key(wl.Authority)
	w.key(wl.Mint)
	w.key(wl.Vault)
	w.u8(wl.WalletBump)
	w.u8(wl.VaultBump)
	return w.bytes()
}

// DecodeWallet parses a Wallet record.
func DecodeWallet(data []byte) (*domain.Wallet, error) {
	if err := checkRecord(data, domain.RecordKindWallet); err != nil {
		return nil, err
	}
	r := newLayoutReader(data[1:])
	wl := &domain.Wallet{
		Owner:      r.key(),
		Authority:  r.key(),
		Mint:       r.key(),
		Vault:      r.key(),
		WalletBump: r.u8(),
		VaultBump:  r.u8(),
	}
	if r.err != nil {
		return nil, malformed("Wallet", r.err)
	}
	return wl, nil
}

func malformed(what string, err error) error {
	return apperror.Wrap(apperror.CodeMalformedRecord, fmt.Sprintf("Malformed %s record", what),
		apperror.ErrMalformedRecord(what).HTTPStatus, err)
}
