package domain

import (
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
)

func TestRecordKind_SizeAndString(t *testing.T) {
	tests := []struct {
		kind RecordKind
		size int
		name string
	}{
		{RecordKindUninitialized, 0, "Uninitialized"},
		{RecordKindVault, 69, "Vault"},
		{RecordKindPool, 73, "Pool"},
		{RecordKindWallet, 131, "Wallet"},
		{RecordKind(9), 0, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.size, tt.kind.Size())
			assert.Equal(t, tt.name, tt.kind.String())
		})
	}
}

func TestMinimumBalance(t *testing.T) {
	assert.Equal(t, uint64(890880), MinimumBalance(0))
	assert.Equal(t, uint64((69+128)*3480*2), MinimumBalance(VaultSize))
	assert.Equal(t, uint64(2039280), MinimumBalance(TokenAccountSize))
}

func TestAccount_State(t *testing.T) {
	key := solana.MustPublicKeyFromBase58("Vau1tEngine11111111111111111111111111111111")

	acct := NewEmptyAccount(key)
	assert.True(t, acct.IsUnused())
	assert.True(t, acct.IsZeroed())

	acct.Data = make([]byte, PoolSize)
	assert.False(t, acct.IsUnused())
	assert.True(t, acct.IsZeroed())

	acct.Data[10] = 1
	assert.False(t, acct.IsZeroed())
}

func TestAccount_CloneIsDeep(t *testing.T) {
	acct := &Account{Key: solana.SystemProgramID, Lamports: 5, Data: []byte{1, 2, 3}}
	c := acct.Clone()
	assert.True(t, acct.Equal(c))

	c.Data[0] = 9
	c.Lamports = 6
	assert.Equal(t, byte(1), acct.Data[0])
	assert.Equal(t, uint64(5), acct.Lamports)
	assert.False(t, acct.Equal(c))
}

func TestProgramAccount(t *testing.T) {
	acct := NewProgramAccount(solana.TokenProgramID)
	assert.True(t, acct.Executable)
	assert.Equal(t, NativeLoaderID, acct.Owner)
}

func TestInstructionTag(t *testing.T) {
	tests := []struct {
		tag   InstructionTag
		name  string
		valid bool
	}{
		{TagInitialize, "Initialize", true},
		{TagDeposit, "Deposit", true},
		{TagWithdraw, "Withdraw", true},
		{TagCreatePool, "CreatePool", true},
		{TagTip, "Tip", true},
		{TagInitializeWallet, "InitializeWallet", true},
		{TagWalletDeposit, "WalletDeposit", true},
		{TagWalletWithdraw, "WalletWithdraw", true},
		{InstructionTag(42), "Unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.tag.String())
			assert.Equal(t, tt.valid, tt.tag.Valid())
		})
	}
}

func TestReceipt_Succeeded(t *testing.T) {
	assert.True(t, (&Receipt{Status: ReceiptStatusSuccess}).Succeeded())
	assert.False(t, (&Receipt{Status: ReceiptStatusFailed}).Succeeded())
}

func TestTokenAccount_IsInitialized(t *testing.T) {
	assert.False(t, (&TokenAccount{}).IsInitialized())
	assert.True(t, (&TokenAccount{State: TokenAccountInitialized}).IsInitialized())
	assert.True(t, (&TokenAccount{State: TokenAccountFrozen}).IsInitialized())
}

func TestCheckedArithmetic(t *testing.T) {
	sum, ok := CheckedAdd(math.MaxUint64-1, 1)
	assert.True(t, ok)
	assert.Equal(t, uint64(math.MaxUint64), sum)

	_, ok = CheckedAdd(math.MaxUint64, 1)
	assert.False(t, ok)

	diff, ok := CheckedSub(10, 10)
	assert.True(t, ok)
	assert.Zero(t, diff)

	_, ok = CheckedSub(0, 1)
	assert.False(t, ok)
}
