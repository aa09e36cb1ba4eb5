package codec

import (
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"vault-engine/internal/core/domain"
)

// Message is the signed content of a submission.
type Message struct {
	Instruction domain.Instruction
	Nonce       uint64
}

// EncodeMessage returns the bytes every signer signs: program id, account
// metas, length-prefixed data and nonce.
func EncodeMessage(m Message) ([]byte, error) {
	ix := m.Instruction
	w := newLayoutWriter(32 + 4 + len(ix.Accounts)*34 + 4 + len(ix.Data) + 8)
	w.key(ix.ProgramID)
	w.u32(uint32(len(ix.Accounts)))
	for _, meta := range ix.Accounts {
		w.key(meta.Key)
		w.u8(boolByte(meta.IsSigner))
		w.u8(boolByte(meta.IsWritable))
	}
	w.u32(uint32(len(ix.Data)))
	w.raw(ix.Data)
	w.u64(m.Nonce)
	return w.bytes()
}

// MessageHash identifies an encoded message. It is the replay key.
func MessageHash(encoded []byte) string {
	sum := sha256.Sum256(encoded)
	return base58.Encode(sum[:])
}

// Signers returns the distinct keys the message marks as signers, in order.
func (m Message) Signers() []solana.PublicKey {
	seen := make(map[solana.PublicKey]bool)
	var out []solana.PublicKey
	for _, meta := range m.Instruction.Accounts {
		if meta.IsSigner && !seen[meta.Key] {
			seen[meta.Key] = true
			out = append(out, meta.Key)
		}
	}
	return out
}
