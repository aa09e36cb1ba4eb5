package service

import (
	"bytes"
	"context"

	"github.com/gagliardetto/solana-go"

	"vault-engine/internal/core/domain"
	"vault-engine/internal/core/ports"
	"vault-engine/pkg/apperror"
)

type privilege struct {
	signer   bool
	writable bool
}

// frame is one program invocation. It implements ports.InvokeContext.
type frame struct {
	ctx        context.Context
	runtime    *Runtime
	programID  solana.PublicKey
	depth      int
	infos      []*domain.AccountInfo
	privileges map[solana.PublicKey]privilege
	pre        map[solana.PublicKey]*domain.Account
}

// newFrame builds the account views for metas. Privileges of repeated keys are merged.
func newFrame(
	ctx context.Context,
	r *Runtime,
	programID solana.PublicKey,
	depth int,
	metas []domain.AccountMeta,
	lookup func(solana.PublicKey) *domain.Account,
) *frame {
	f := &frame{
		ctx:        ctx,
		runtime:    r,
		programID:  programID,
		depth:      depth,
		privileges: make(map[solana.PublicKey]privilege, len(metas)),
	}
	for _, meta := range metas {
		p := f.privileges[meta.Key]
		p.signer = p.signer || meta.IsSigner
		p.writable = p.writable || meta.IsWritable
		f.privileges[meta.Key] = p
	}
	f.infos = make([]*domain.AccountInfo, len(metas))
	for i, meta := range metas {
		p := f.privileges[meta.Key]
		f.infos[i] = &domain.AccountInfo{Account: lookup(meta.Key), IsSigner: p.signer, IsWritable: p.writable}
	}
	return f
}

func (f *frame) Context() context.Context {
	return f.ctx
}

func (f *frame) ProgramID() solana.PublicKey {
	return f.programID
}

func (f *frame) account(key solana.PublicKey) *domain.Account {
	for _, info := range f.infos {
		if info.Key.Equals(key) {
			return info.Account
		}
	}
	return nil
}

func (f *frame) snapshot() {
	f.pre = make(map[solana.PublicKey]*domain.Account, len(f.privileges))
	for key := range f.privileges {
		f.pre[key] = f.account(key).Clone()
	}
}

func (f *frame) run(program ports.Program, data []byte) error {
	f.snapshot()
	if err := program.Process(f, f.infos, data); err != nil {
		return err
	}
	return f.verify()
}

// verify checks the changes made since the last snapshot: only the owning
// program may change data or owner or debit lamports, read-only accounts are
// untouched, and total lamports are conserved.
func (f *frame) verify() error {
	post := make(map[solana.PublicKey]*domain.Account, len(f.pre))
	for key, before := range f.pre {
		after := f.account(key)
		post[key] = after

		if !f.privileges[key].writable {
			if !before.Equal(after) {
				return illegal("read-only account %s was modified", key)
			}
			continue
		}
		if before.Executable != after.Executable {
			return illegal("executable flag of %s changed", key)
		}
		owned := before.Owner.Equals(f.programID)
		if !before.Owner.Equals(after.Owner) && (!owned || !after.IsZeroed()) {
			return illegal("owner of %s changed by a non-owner or with data", key)
		}
		if !bytes.Equal(before.Data, after.Data) && !owned {
			return illegal("data of %s changed by a non-owner", key)
		}
		if after.Lamports < before.Lamports && !owned {
			return illegal("lamports of %s debited by a non-owner", key)
		}
	}

	preHi, preLo := sumLamports(f.pre)
	postHi, postLo := sumLamports(post)
	if preHi != postHi || preLo != postLo {
		return illegal("lamports not conserved")
	}
	return nil
}

// Invoke runs ix as a nested call. Accounts come from this frame; the callee
// can never gain writability, and only this frame's signers or addresses
// derived from signerSeeds under this program may sign.
func (f *frame) Invoke(ix domain.Instruction, signerSeeds ...[][]byte) error {
	if f.depth >= f.runtime.maxDepth {
		return apperror.ErrCallDepthExceeded(f.runtime.maxDepth)
	}
	if _, ok := f.privileges[ix.ProgramID]; !ok {
		return apperror.ErrNotEnoughAccounts()
	}
	program, ok := f.runtime.program(ix.ProgramID)
	if !ok {
		return apperror.ErrProgramNotFound(ix.ProgramID.String())
	}

	derived := make(map[solana.PublicKey]bool, len(signerSeeds))
	for _, seeds := range signerSeeds {
		addr, err := solana.CreateProgramAddress(seeds, f.programID)
		if err != nil {
			return apperror.Validation("signer seeds do not derive a program address")
		}
		derived[addr] = true
	}

	for _, meta := range ix.Accounts {
		caller, ok := f.privileges[meta.Key]
		if !ok {
			return apperror.ErrNotEnoughAccounts()
		}
		if meta.IsWritable && !caller.writable {
			return illegal("%s escalated to writable", meta.Key)
		}
		if meta.IsSigner && !caller.signer && !derived[meta.Key] {
			return apperror.ErrMissingSigner(meta.Key.String())
		}
	}

	// Changes made so far are checked against this frame's privileges before the callee sees them.
	if err := f.verify(); err != nil {
		return err
	}

	callee := newFrame(f.ctx, f.runtime, ix.ProgramID, f.depth+1, ix.Accounts, f.account)
	if err := callee.run(program, ix.Data); err != nil {
		return apperror.ErrDelegateCallFailed(err)
	}
	f.snapshot()
	return nil
}
