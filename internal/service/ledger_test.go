package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault-engine/internal/builtin"
	"vault-engine/internal/core/codec"
	"vault-engine/internal/core/domain"
	"vault-engine/pkg/apperror"
)

var testProgramID = solana.MustPublicKeyFromBase58("Vau1tEngine11111111111111111111111111111111")

func testKey(b byte) solana.PublicKey {
	var k solana.PublicKey
	for i := range k {
		k[i] = b
	}
	return k
}

// hasCode reports whether any AppError in err's chain carries code.
func hasCode(err error, code string) bool {
	for err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperror.CodeOf(err), "unexpected error: %v", err)
}

func testEngineConfig(t *testing.T) EngineConfig {
	t.Helper()
	cfg, err := NewEngineConfig(testProgramID, solana.TokenProgramID)
	require.NoError(t, err)
	return cfg
}

// ledger is an in-memory account store driven through the Runtime with the
// engine, system and token programs registered. Successful instructions are
// committed back into accounts; failed ones leave it untouched.
type ledger struct {
	t        *testing.T
	cfg      EngineConfig
	engine   *Engine
	runtime  *Runtime
	accounts map[solana.PublicKey]*domain.Account
}

func newLedger(t *testing.T) *ledger {
	cfg := testEngineConfig(t)
	engine := NewEngine(cfg, zerolog.Nop())
	return &ledger{
		t:      t,
		cfg:    cfg,
		engine: engine,
		runtime: NewRuntime(DefaultMaxInvokeDepth, zerolog.Nop(),
			engine, builtin.NewSystemProgram(), builtin.NewTokenProgram(cfg.TokenProgramID)),
		accounts: make(map[solana.PublicKey]*domain.Account),
	}
}

func (l *ledger) fund(key solana.PublicKey, lamports uint64) {
	acct := domain.NewEmptyAccount(key)
	acct.Lamports = lamports
	l.accounts[key] = acct
}

func (l *ledger) put(acct *domain.Account) {
	l.accounts[acct.Key] = acct
}

func (l *ledger) get(key solana.PublicKey) *domain.Account {
	if acct, ok := l.accounts[key]; ok {
		return acct
	}
	return domain.NewEmptyAccount(key)
}

func (l *ledger) exec(ix domain.Instruction) error {
	post, err := l.runtime.Execute(context.Background(), ix, l.accounts)
	if err != nil {
		return err
	}
	for key, acct := range post {
		if acct.Executable {
			continue
		}
		l.accounts[key] = acct
	}
	return nil
}

func (l *ledger) mustExec(ix domain.Instruction) {
	l.t.Helper()
	require.NoError(l.t, l.exec(ix))
}

func (l *ledger) engineIx(ix domain.EngineInstruction, metas ...domain.AccountMeta) domain.Instruction {
	l.t.Helper()
	data, err := codec.EncodeInstruction(ix)
	require.NoError(l.t, err)
	return domain.Instruction{ProgramID: l.cfg.ProgramID, Accounts: metas, Data: data}
}

func (l *ledger) systemIx(ix domain.SystemInstruction, metas ...domain.AccountMeta) domain.Instruction {
	l.t.Helper()
	data, err := codec.EncodeSystemInstruction(ix)
	require.NoError(l.t, err)
	return domain.Instruction{ProgramID: solana.SystemProgramID, Accounts: metas, Data: data}
}

func (l *ledger) tokenIx(ix domain.TokenInstruction, metas ...domain.AccountMeta) domain.Instruction {
	l.t.Helper()
	data, err := codec.EncodeTokenInstruction(ix)
	require.NoError(l.t, err)
	return domain.Instruction{ProgramID: l.cfg.TokenProgramID, Accounts: metas, Data: data}
}

// createAccount allocates target with space bytes owned by owner, funded by payer.
func (l *ledger) createAccount(payer, target solana.PublicKey, space int, owner solana.PublicKey) {
	l.t.Helper()
	l.mustExec(l.systemIx(domain.SystemInstruction{
		Tag:      domain.SystemCreateAccount,
		Lamports: domain.MinimumBalance(space),
		Space:    uint64(space),
		Owner:    owner,
	}, domain.Meta(payer, true, true), domain.Meta(target, true, true)))
}

func (l *ledger) vaultAddress(seed uint8) solana.PublicKey {
	l.t.Helper()
	addr, _, err := NewDeriver(l.cfg.ProgramID).VaultAddress(seed)
	require.NoError(l.t, err)
	return addr
}

func (l *ledger) initializeIx(vault, initializer, systemProgram solana.PublicKey, seed uint8, fee float64) domain.Instruction {
	return l.engineIx(domain.EngineInstruction{Tag: domain.TagInitialize, Seed: seed, Fee: fee, FeeRecipient: initializer},
		domain.Meta(vault, false, true), domain.Meta(initializer, true, true), domain.Meta(systemProgram, false, false))
}

func (l *ledger) createPoolIx(vault, authority, pool solana.PublicKey) domain.Instruction {
	return l.engineIx(domain.EngineInstruction{Tag: domain.TagCreatePool},
		domain.Meta(vault, false, false), domain.Meta(authority, true, false), domain.Meta(pool, false, true))
}

func (l *ledger) depositIx(tag domain.InstructionTag, vault, pool, source, systemProgram solana.PublicKey, signed bool, amount uint64) domain.Instruction {
	return l.engineIx(domain.EngineInstruction{Tag: tag, Amount: amount},
		domain.Meta(vault, false, true), domain.Meta(pool, false, true),
		domain.Meta(source, signed, true), domain.Meta(systemProgram, false, false))
}

func (l *ledger) withdrawIx(vault, pool, authority, systemProgram solana.PublicKey, amount uint64) domain.Instruction {
	return l.engineIx(domain.EngineInstruction{Tag: domain.TagWithdraw, Amount: amount},
		domain.Meta(vault, false, true), domain.Meta(pool, false, true),
		domain.Meta(authority, true, true), domain.Meta(systemProgram, false, false))
}

// setupVault initializes the vault for seed and a pool under it whose withdraw
// authority is authority. It returns the vault and pool addresses.
func (l *ledger) setupVault(payer solana.PublicKey, seed uint8, pool, authority solana.PublicKey) solana.PublicKey {
	l.t.Helper()
	vault := l.vaultAddress(seed)
	l.mustExec(l.initializeIx(vault, payer, solana.SystemProgramID, seed, 0.01))
	l.createAccount(payer, pool, domain.PoolSize, l.cfg.ProgramID)
	l.mustExec(l.createPoolIx(vault, authority, pool))
	return vault
}

func (l *ledger) pool(key solana.PublicKey) *domain.Pool {
	l.t.Helper()
	pool, err := codec.DecodePool(l.get(key).Data)
	require.NoError(l.t, err)
	return pool
}

func (l *ledger) tokenBalance(key solana.PublicKey) uint64 {
	l.t.Helper()
	ta, err := codec.DecodeTokenAccount(l.get(key).Data)
	require.NoError(l.t, err)
	return ta.Amount
}

func (l *ledger) totalLamports() uint64 {
	var total uint64
	for _, acct := range l.accounts {
		total += acct.Lamports
	}
	return total
}
