package codec

import (
	"errors"
	"fmt"
	"math"

	"vault-engine/internal/core/domain"
	"vault-engine/pkg/apperror"
)

const (
	initializePayloadSize = 1 + 8 + 32
	amountPayloadSize     = 8
)

func enginePayloadSize(tag domain.InstructionTag) int {
	switch tag {
	case domain.TagInitialize:
		return initializePayloadSize
	case domain.TagDeposit, domain.TagWithdraw, domain.TagTip,
		domain.TagWalletDeposit, domain.TagWalletWithdraw:
		return amountPayloadSize
	default:
		return 0
	}
}

// EncodeInstruction serializes an engine instruction: tag byte then payload.
func EncodeInstruction(ix domain.EngineInstruction) ([]byte, error) {
	if !ix.Tag.Valid() {
		return nil, fmt.Errorf("unknown instruction tag %d", ix.Tag)
	}
	w := newLayoutWriter(1 + enginePayloadSize(ix.Tag))
	w.u8(uint8(ix.Tag))
	switch ix.Tag {
	case domain.TagInitialize:
		w.u8(ix.Seed)
		w.u64(math.Float64bits(ix.Fee))
		w.key(ix.FeeRecipient)
	case domain.TagDeposit, domain.TagWithdraw, domain.TagTip,
		domain.TagWalletDeposit, domain.TagWalletWithdraw:
		w.u64(ix.Amount)
	}
	return w.bytes()
}

// DecodeInstruction parses engine instruction data. Unknown tags, short
// payloads and trailing bytes are rejected.
func DecodeInstruction(data []byte) (*domain.EngineInstruction, error) {
	if len(data) == 0 {
		return nil, apperror.ErrInvalidInstruction(errors.New("empty instruction data"))
	}
	tag := domain.InstructionTag(data[0])
	if !tag.Valid() {
		return nil, apperror.ErrInvalidInstruction(fmt.Errorf("unknown tag %d", data[0]))
	}
	if want := 1 + enginePayloadSize(tag); len(data) != want {
		return nil, apperror.ErrInvalidInstruction(
			fmt.Errorf("%s payload is %d bytes, want %d", tag, len(data)-1, want-1))
	}

	ix := &domain.EngineInstruction{Tag: tag}
	r := newLayoutReader(data[1:])
	switch tag {
	case domain.TagInitialize:
		ix.Seed = r.u8()
		ix.Fee = math.Float64frombits(r.u64())
		ix.FeeRecipient = r.key()
	case domain.TagDeposit, domain.TagWithdraw, domain.TagTip,
		domain.TagWalletDeposit, domain.TagWalletWithdraw:
		ix.Amount = r.u64()
	}
	if r.err != nil {
		return nil, apperror.ErrInvalidInstruction(r.err)
	}
	return ix, nil
}

// EncodeSystemInstruction serializes a system program instruction with a u32 tag.
func EncodeSystemInstruction(ix domain.SystemInstruction) ([]byte, error) {
	w := newLayoutWriter(4 + 8 + 8 + 32)
	w.u32(uint32(ix.Tag))
	switch ix.Tag {
	case domain.SystemCreateAccount:
		w.u64(ix.Lamports)
		w.u64(ix.Space)
		w.key(ix.Owner)
	case domain.SystemTransfer:
		w.u64(ix.Lamports)
	default:
		return nil, fmt.Errorf("unknown system instruction %d", ix.Tag)
	}
	return w.bytes()
}

// DecodeSystemInstruction parses system program instruction data.
func DecodeSystemInstruction(data []byte) (*domain.SystemInstruction, error) {
	if len(data) < 4 {
		return nil, apperror.ErrInvalidInstruction(errors.New("system instruction too short"))
	}
	r := newLayoutReader(data)
	ix := &domain.SystemInstruction{Tag: domain.SystemInstructionTag(r.u32())}
	var want int
	switch ix.Tag {
	case domain.SystemCreateAccount:
		want = 4 + 8 + 8 + 32
	case domain.SystemTransfer:
		want = 4 + 8
	default:
		return nil, apperror.ErrInvalidInstruction(fmt.Errorf("unknown system instruction %d", ix.Tag))
	}
	if len(data) != want {
		return nil, apperror.ErrInvalidInstruction(fmt.Errorf("system instruction is %d bytes, want %d", len(data), want))
	}
	ix.Lamports = r.u64()
	if ix.Tag == domain.SystemCreateAccount {
		ix.Space = r.u64()
		ix.Owner = r.key()
	}
	if r.err != nil {
		return nil, apperror.ErrInvalidInstruction(r.err)
	}
	return ix, nil
}

// EncodeTokenInstruction serializes a token program instruction with a u8 tag.
func EncodeTokenInstruction(ix domain.TokenInstruction) ([]byte, error) {
	w := newLayoutWriter(1 + 1 + 32)
	w.u8(uint8(ix.Tag))
	switch ix.Tag {
	case domain.TokenInitializeMint:
		w.u8(ix.Decimals)
		w.key(ix.MintAuthority)
	case domain.TokenInitializeAccount:
	case domain.TokenMintTo:
		w.u64(ix.Amount)
	case domain.TokenTransferChecked:
		w.u64(ix.Amount)
		w.u8(ix.Decimals)
	default:
		return nil, fmt.Errorf("unknown token instruction %d", ix.Tag)
	}
	return w.bytes()
}

// DecodeTokenInstruction parses token program instruction data.
func DecodeTokenInstruction(data []byte) (*domain.TokenInstruction, error) {
	if len(data) == 0 {
		return nil, apperror.ErrInvalidInstruction(errors.New("empty token instruction"))
	}
	ix := &domain.TokenInstruction{Tag: domain.TokenInstructionTag(data[0])}
	var want int
	switch ix.Tag {
	case domain.TokenInitializeMint:
		want = 1 + 1 + 32
	case domain.TokenInitializeAccount:
		want = 1
	case domain.TokenMintTo:
		want = 1 + 8
	case domain.TokenTransferChecked:
		want = 1 + 8 + 1
	default:
		return nil, apperror.ErrInvalidInstruction(fmt.Errorf("unknown token instruction %d", data[0]))
	}
	if len(data) != want {
		return nil, apperror.ErrInvalidInstruction(fmt.Errorf("token instruction is %d bytes, want %d", len(data), want))
	}
	r := newLayoutReader(data[1:])
	switch ix.Tag {
	case domain.TokenInitializeMint:
		ix.Decimals = r.u8()
		ix.MintAuthority = r.key()
	case domain.TokenMintTo:
		ix.Amount = r.u64()
	case domain.TokenTransferChecked:
		ix.Amount = r.u64()
		ix.Decimals = r.u8()
	}
	if r.err != nil {
		return nil, apperror.ErrInvalidInstruction(r.err)
	}
	return ix, nil
}
