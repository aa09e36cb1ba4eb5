package dto

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"time"

	"vault-engine/internal/core/domain"
	"vault-engine/internal/core/ports"
	"vault-engine/pkg/apperror"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// nativeDecimals is the number of decimal places between lamports and native units.
const nativeDecimals = 9

// ToSubmitRequest decodes the wire encodings of a submission.
func (r *SubmitTransactionRequest) ToSubmitRequest(clientIP string) (ports.SubmitRequest, error) {
	programID, err := solana.PublicKeyFromBase58(r.ProgramID)
	if err != nil {
		return ports.SubmitRequest{}, apperror.Validation("program_id is not a base58 address")
	}

	data, err := base64.StdEncoding.DecodeString(r.Data)
	if err != nil {
		return ports.SubmitRequest{}, apperror.Validation("data is not valid base64")
	}

	metas := make([]domain.AccountMeta, 0, len(r.Accounts))
	for i, a := range r.Accounts {
		key, err := solana.PublicKeyFromBase58(a.Address)
		if err != nil {
			return ports.SubmitRequest{}, apperror.Validation(fmt.Sprintf("accounts[%d].address is not a base58 address", i))
		}
		metas = append(metas, domain.Meta(key, a.IsSigner, a.IsWritable))
	}

	sigs := make(map[solana.PublicKey]solana.Signature, len(r.Signatures))
	for addr, s := range r.Signatures {
		key, err := solana.PublicKeyFromBase58(addr)
		if err != nil {
			return ports.SubmitRequest{}, apperror.Validation(fmt.Sprintf("signature key %q is not a base58 address", addr))
		}
		sig, err := solana.SignatureFromBase58(s)
		if err != nil {
			return ports.SubmitRequest{}, apperror.Validation(fmt.Sprintf("signature for %s is not base58", addr))
		}
		sigs[key] = sig
	}

	return ports.SubmitRequest{
		Instruction: domain.Instruction{ProgramID: programID, Accounts: metas, Data: data},
		Nonce:       r.Nonce,
		Signatures:  sigs,
		ClientIP:    clientIP,
	}, nil
}

// FromReceipt converts a domain.Receipt to its response body.
func FromReceipt(rc *domain.Receipt) ReceiptResponse {
	signers := make([]string, len(rc.Signers))
	for i, k := range rc.Signers {
		signers[i] = k.String()
	}
	return ReceiptResponse{
		ID:          rc.ID.String(),
		MessageHash: rc.MessageHash,
		ProgramID:   rc.ProgramID.String(),
		Instruction: rc.Instruction,
		Status:      string(rc.Status),
		ErrorCode:   rc.ErrorCode,
		Signers:     signers,
		CreatedAt:   rc.CreatedAt.Format(time.RFC3339),
	}
}

// FromAccountView converts a decoded account view to its response body.
func FromAccountView(v *ports.AccountView) AccountResponse {
	acct := v.Account
	resp := AccountResponse{
		Address:    acct.Key.String(),
		Owner:      acct.Owner.String(),
		Lamports:   acct.Lamports,
		Balance:    FormatLamports(acct.Lamports),
		Executable: acct.Executable,
		Kind:       v.Kind,
		Data:       base64.StdEncoding.EncodeToString(acct.Data),
	}

	if v.Vault != nil {
		resp.Vault = &VaultResponse{
			Creator:      v.Vault.Creator.String(),
			FeeBps:       v.Vault.FeeBps,
			FeePercent:   FormatBps(v.Vault.FeeBps),
			FeeRecipient: v.Vault.FeeRecipient.String(),
			Seed:         v.Vault.Seed,
			Bump:         v.Vault.Bump,
		}
	}
	if v.Pool != nil {
		resp.Pool = &PoolResponse{
			WithdrawAuthority: v.Pool.WithdrawAuthority.String(),
			Value:             v.Pool.Value,
			ValueBalance:      FormatLamports(v.Pool.Value),
			Vault:             v.Pool.Vault.String(),
		}
	}
	if v.Wallet != nil {
		resp.Wallet = &WalletResponse{
			Owner:      v.Wallet.Owner.String(),
			Authority:  v.Wallet.Authority.String(),
			Mint:       v.Wallet.Mint.String(),
			Vault:      v.Wallet.Vault.String(),
			WalletBump: v.Wallet.WalletBump,
			VaultBump:  v.Wallet.VaultBump,
		}
	}
	if v.Mint != nil {
		resp.Mint = &MintResponse{
			MintAuthority:   optionalKey(v.Mint.MintAuthority),
			Supply:          v.Mint.Supply,
			Decimals:        v.Mint.Decimals,
			IsInitialized:   v.Mint.IsInitialized,
			FreezeAuthority: optionalKey(v.Mint.FreezeAuthority),
		}
	}
	if v.Token != nil {
		resp.Token = &TokenAccountResponse{
			Mint:     v.Token.Mint.String(),
			Owner:    v.Token.Owner.String(),
			Amount:   v.Token.Amount,
			Delegate: optionalKey(v.Token.Delegate),
			State:    tokenState(v.Token.State),
		}
	}
	return resp
}

// FormatLamports renders lamports as native units, e.g. 1500000000 -> "1.5".
func FormatLamports(lamports uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -nativeDecimals).String()
}

// FormatBps renders basis points as a percentage, e.g. 250 -> "2.5".
func FormatBps(bps uint16) string {
	return decimal.New(int64(bps), -2).String()
}

func optionalKey(k *solana.PublicKey) *string {
	if k == nil {
		return nil
	}
	s := k.String()
	return &s
}

func tokenState(s domain.TokenAccountState) string {
	switch s {
	case domain.TokenAccountUninitialized:
		return "uninitialized"
	case domain.TokenAccountInitialized:
		return "initialized"
	case domain.TokenAccountFrozen:
		return "frozen"
	}
	return "unknown"
}
