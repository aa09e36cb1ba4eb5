package service

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// EngineConfig identifies the engine and the programs it delegates to.
// It is built once at startup and shared read-only.
type EngineConfig struct {
	ProgramID       solana.PublicKey
	SystemProgramID solana.PublicKey
	TokenProgramID  solana.PublicKey
	Authority       solana.PublicKey
	AuthorityBump   uint8
}

// NewEngineConfig precomputes the engine authority.
func NewEngineConfig(programID, tokenProgramID solana.PublicKey) (EngineConfig, error) {
	if programID == (solana.PublicKey{}) || tokenProgramID == (solana.PublicKey{}) {
		return EngineConfig{}, fmt.Errorf("engine and token program ids are required")
	}
	if programID.Equals(tokenProgramID) || programID.Equals(solana.SystemProgramID) {
		return EngineConfig{}, fmt.Errorf("engine program id %s collides with a builtin program", programID)
	}
	authority, bump, err := NewDeriver(programID).AuthorityAddress()
	if err != nil {
		return EngineConfig{}, fmt.Errorf("derive engine authority: %w", err)
	}
	return EngineConfig{
		ProgramID:       programID,
		SystemProgramID: solana.SystemProgramID,
		TokenProgramID:  tokenProgramID,
		Authority:       authority,
		AuthorityBump:   bump,
	}, nil
}

// AuthoritySignerSeeds are the seeds that sign for Authority.
func (c EngineConfig) AuthoritySignerSeeds() [][]byte {
	return WithBump(AuthoritySeeds(), c.AuthorityBump)
}
