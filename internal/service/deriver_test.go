package service

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriver_AddressesAreDistinctPerNamespace(t *testing.T) {
	d := NewDeriver(testProgramID)
	owner := testKey(5)

	vault, _, err := d.VaultAddress(5)
	require.NoError(t, err)
	wallet, _, err := d.WalletAddress(owner)
	require.NoError(t, err)
	custody, _, err := d.WalletVaultAddress(owner)
	require.NoError(t, err)
	authority, _, err := d.AuthorityAddress()
	require.NoError(t, err)

	seen := map[solana.PublicKey]bool{}
	for _, addr := range []solana.PublicKey{vault, wallet, custody, authority} {
		assert.False(t, seen[addr], "address %s derived twice", addr)
		seen[addr] = true
	}
}

func TestDeriver_Deterministic(t *testing.T) {
	a, bumpA, err := NewDeriver(testProgramID).VaultAddress(9)
	require.NoError(t, err)
	b, bumpB, err := NewDeriver(testProgramID).VaultAddress(9)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, bumpA, bumpB)

	other, _, err := NewDeriver(testKey(7)).VaultAddress(9)
	require.NoError(t, err)
	assert.NotEqual(t, a, other)

	next, _, err := NewDeriver(testProgramID).VaultAddress(10)
	require.NoError(t, err)
	assert.NotEqual(t, a, next)
}

func TestDeriver_CanSign(t *testing.T) {
	d := NewDeriver(testProgramID)
	addr, bump, err := d.VaultAddress(3)
	require.NoError(t, err)

	assert.True(t, d.CanSign(addr, WithBump(VaultSeeds(3), bump)))
	assert.False(t, d.CanSign(addr, WithBump(VaultSeeds(4), bump)))
	assert.False(t, d.CanSign(testKey(1), WithBump(VaultSeeds(3), bump)))
	assert.False(t, NewDeriver(testKey(7)).CanSign(addr, WithBump(VaultSeeds(3), bump)))
}

func TestWithBump_DoesNotAlias(t *testing.T) {
	seeds := VaultSeeds(1)
	signed := WithBump(seeds, 254)
	assert.Len(t, seeds, 2)
	assert.Len(t, signed, 3)
	assert.Equal(t, []byte{254}, signed[2])
}

func TestNewEngineConfig(t *testing.T) {
	cfg, err := NewEngineConfig(testProgramID, solana.TokenProgramID)
	require.NoError(t, err)
	assert.Equal(t, solana.SystemProgramID, cfg.SystemProgramID)

	authority, bump, err := NewDeriver(testProgramID).AuthorityAddress()
	require.NoError(t, err)
	assert.Equal(t, authority, cfg.Authority)
	assert.Equal(t, bump, cfg.AuthorityBump)
	assert.True(t, NewDeriver(testProgramID).CanSign(cfg.Authority, cfg.AuthoritySignerSeeds()))

	_, err = NewEngineConfig(solana.PublicKey{}, solana.TokenProgramID)
	assert.Error(t, err)
	_, err = NewEngineConfig(solana.TokenProgramID, solana.TokenProgramID)
	assert.Error(t, err)
	_, err = NewEngineConfig(solana.SystemProgramID, solana.TokenProgramID)
	assert.Error(t, err)
}
