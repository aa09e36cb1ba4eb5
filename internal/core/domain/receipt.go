package domain

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
)

// ReceiptStatus is the outcome of a submission.
type ReceiptStatus string

const (
	ReceiptStatusSuccess ReceiptStatus = "SUCCESS"
	ReceiptStatusFailed  ReceiptStatus = "FAILED"
)

// Receipt records one processed submission. Receipts are append-only.
type Receipt struct {
	ID          uuid.UUID          `json:"id"`
	MessageHash string             `json:"message_hash"`
	ProgramID   solana.PublicKey   `json:"program_id"`
	Instruction string             `json:"instruction"`
	Status      ReceiptStatus      `json:"status"`
	ErrorCode   *string            `json:"error_code,omitempty"`
	Signers     []solana.PublicKey `json:"signers"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Succeeded reports whether the submission was committed.
func (r *Receipt) Succeeded() bool {
	return r.Status == ReceiptStatusSuccess
}
