package service

import (
	"context"
	"fmt"
	"math/bits"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	"vault-engine/internal/core/domain"
	"vault-engine/internal/core/ports"
	"vault-engine/pkg/apperror"
)

// DefaultMaxInvokeDepth bounds nested cross-program invocations.
const DefaultMaxInvokeDepth = 4

// Runtime executes instructions against an in-memory account set: it
// dispatches to registered programs, brokers cross-program calls and checks
// every frame's account changes against the caller's privileges.
type Runtime struct {
	mu       sync.RWMutex
	programs map[solana.PublicKey]ports.Program
	maxDepth int
	log      zerolog.Logger
}

// NewRuntime creates a Runtime with the given programs registered.
func NewRuntime(maxDepth int, log zerolog.Logger, programs ...ports.Program) *Runtime {
	if maxDepth < 1 {
		maxDepth = DefaultMaxInvokeDepth
	}
	r := &Runtime{
		programs: make(map[solana.PublicKey]ports.Program, len(programs)),
		maxDepth: maxDepth,
		log:      log,
	}
	for _, p := range programs {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a program.
func (r *Runtime) Register(p ports.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.programs[p.ID()] = p
}

// IsProgram reports whether key is a registered program.
func (r *Runtime) IsProgram(key solana.PublicKey) bool {
	_, ok := r.program(key)
	return ok
}

func (r *Runtime) program(key solana.PublicKey) (ports.Program, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.programs[key]
	return p, ok
}

// Execute runs ix against accounts. Addresses missing from accounts start
// empty, or as executable program accounts for registered programs. accounts
// is not modified: on success the post-execution state of every referenced
// account is returned; on error nothing is.
func (r *Runtime) Execute(
	ctx context.Context,
	ix domain.Instruction,
	accounts map[solana.PublicKey]*domain.Account,
) (map[solana.PublicKey]*domain.Account, error) {
	program, ok := r.program(ix.ProgramID)
	if !ok {
		return nil, apperror.ErrProgramNotFound(ix.ProgramID.String())
	}

	working := make(map[solana.PublicKey]*domain.Account, len(ix.Accounts))
	for _, meta := range ix.Accounts {
		if _, seen := working[meta.Key]; seen {
			continue
		}
		switch stored, found := accounts[meta.Key]; {
		case found:
			working[meta.Key] = stored.Clone()
		case r.IsProgram(meta.Key):
			working[meta.Key] = domain.NewProgramAccount(meta.Key)
		default:
			working[meta.Key] = domain.NewEmptyAccount(meta.Key)
		}
	}

	top := newFrame(ctx, r, ix.ProgramID, 1, ix.Accounts, func(key solana.PublicKey) *domain.Account {
		return working[key]
	})
	if err := top.run(program, ix.Data); err != nil {
		r.log.Debug().Err(err).Str("program_id", ix.ProgramID.String()).Msg("instruction failed")
		return nil, err
	}
	return working, nil
}

// sumLamports totals balances without overflow as a 128-bit value.
func sumLamports(accounts map[solana.PublicKey]*domain.Account) (hi, lo uint64) {
	for _, a := range accounts {
		var carry uint64
		lo, carry = bits.Add64(lo, a.Lamports, 0)
		hi += carry
	}
	return hi, lo
}

func illegal(format string, args ...any) error {
	return apperror.ErrIllegalAccountMutation(fmt.Sprintf(format, args...))
}
