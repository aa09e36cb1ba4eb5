package ports

import (
	"context"
	"time"

	"vault-engine/internal/core/domain"

	"github.com/gagliardetto/solana-go"
)

// --- Program execution ---

// Program is an on-ledger program the runtime can dispatch to.
type Program interface {
	ID() solana.PublicKey
	Process(ic InvokeContext, accounts []*domain.AccountInfo, data []byte) error
}

// InvokeContext is a program's handle on the running invocation frame.
type InvokeContext interface {
	Context() context.Context
	// ProgramID is the program executing the current frame.
	ProgramID() solana.PublicKey
	// Invoke calls another program with accounts drawn from the current frame.
	// Each seed set in signerSeeds grants signer status to the address it
	// derives under the current program.
	Invoke(ix domain.Instruction, signerSeeds ...[][]byte) error
}

// TransferDelegate moves value on the engine's behalf through a pinned transfer program.
type TransferDelegate interface {
	// ProgramID is the only program identity this delegate will invoke.
	ProgramID() solana.PublicKey
	Transfer(ic InvokeContext, req TransferRequest) error
}

// TransferRequest describes one value movement.
type TransferRequest struct {
	Source      *domain.AccountInfo
	Destination *domain.AccountInfo
	Authority   *domain.AccountInfo
	// Program is the account the caller supplied for the transfer program.
	Program *domain.AccountInfo
	// Mint and Decimals are required for token transfers only.
	Mint     *domain.AccountInfo
	Decimals uint8
	Amount   uint64
	// AuthoritySeeds sign for Authority when it is an engine derived address.
	AuthoritySeeds [][]byte
}

// --- Infrastructure ---

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService issues and checks operator bearer tokens.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims is an authenticated operator session.
type TokenClaims struct {
	Subject   string
	SessionID string
}

// NonceStore records message hashes for replay protection.
type NonceStore interface {
	// CheckAndSet atomically claims key. Returns true if the key was unused.
	CheckAndSet(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release frees a claimed key so the message can be submitted again.
	Release(ctx context.Context, key string) error
}

// ReceiptCache is the Redis-layer receipt lookup (fast path).
type ReceiptCache interface {
	Get(ctx context.Context, hash string) ([]byte, error) // Returns cached receipt JSON or nil
	Set(ctx context.Context, hash string, value []byte, ttl time.Duration) error
}

// RateLimiter counts requests per key in fixed windows.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

// --- Service Ports (Business Logic) ---

// ExecutorService verifies, executes and commits submissions.
type ExecutorService interface {
	Submit(ctx context.Context, req SubmitRequest) (*domain.Receipt, error)
}

// SubmitRequest holds a decoded submission.
type SubmitRequest struct {
	Instruction domain.Instruction
	Nonce       uint64
	Signatures  map[solana.PublicKey]solana.Signature
	ClientIP    string
}

// QueryService serves read-only views of ledger state.
type QueryService interface {
	GetAccount(ctx context.Context, key solana.PublicKey) (*AccountView, error)
	GetReceipt(ctx context.Context, hash string) (*domain.Receipt, error)
	ListReceipts(ctx context.Context, params ReceiptListParams) ([]domain.Receipt, int64, error)
}

// AccountView is an account with its data decoded according to its owner and discriminator.
type AccountView struct {
	Account *domain.Account
	Kind    string
	Vault   *domain.Vault
	Pool    *domain.Pool
	Wallet  *domain.Wallet
	Mint    *domain.Mint
	Token   *domain.TokenAccount
}

// AuthService defines operator authentication.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// FaucetService credits lamports to accounts for development.
type FaucetService interface {
	Airdrop(ctx context.Context, key solana.PublicKey, lamports uint64) (*domain.Account, error)
}

// AuditService records audited API actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
