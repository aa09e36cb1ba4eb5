package dto

// AccountMetaRequest is one account reference of a submitted instruction.
type AccountMetaRequest struct {
	Address    string `json:"address" binding:"required,base58_key"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}

// SubmitTransactionRequest is the request body for POST /api/v1/transactions.
// Data is base64; signatures are base58, keyed by the base58 signer address.
type SubmitTransactionRequest struct {
	ProgramID  string               `json:"program_id" binding:"required,base58_key"`
	Accounts   []AccountMetaRequest `json:"accounts" binding:"max=64,dive"`
	Data       string               `json:"data" binding:"omitempty,base64"`
	Nonce      uint64               `json:"nonce"`
	Signatures map[string]string    `json:"signatures" binding:"required,min=1,max=16"`
}

// LoginRequest is the request body for operator login.
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64,safe_id"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// AirdropRequest is the request body for the development faucet.
type AirdropRequest struct {
	Address  string `json:"address" binding:"required,base58_key"`
	Lamports uint64 `json:"lamports" binding:"required,gt=0"`
}

// ReceiptResponse is the response body for a processed submission.
type ReceiptResponse struct {
	ID          string   `json:"id"`
	MessageHash string   `json:"message_hash"`
	ProgramID   string   `json:"program_id"`
	Instruction string   `json:"instruction"`
	Status      string   `json:"status"`
	ErrorCode   *string  `json:"error_code,omitempty"`
	Signers     []string `json:"signers"`
	CreatedAt   string   `json:"created_at"`
}

// AccountResponse is the decoded view of one ledger account.
// Balance is Lamports expressed in native units.
type AccountResponse struct {
	Address    string                `json:"address"`
	Owner      string                `json:"owner"`
	Lamports   uint64                `json:"lamports"`
	Balance    string                `json:"balance"`
	Executable bool                  `json:"executable"`
	Kind       string                `json:"kind"`
	Data       string                `json:"data"` // base64
	Vault      *VaultResponse        `json:"vault,omitempty"`
	Pool       *PoolResponse         `json:"pool,omitempty"`
	Wallet     *WalletResponse       `json:"wallet,omitempty"`
	Mint       *MintResponse         `json:"mint,omitempty"`
	Token      *TokenAccountResponse `json:"token_account,omitempty"`
}

// VaultResponse is a decoded Vault record.
type VaultResponse struct {
	Creator      string `json:"creator"`
	FeeBps       uint16 `json:"fee_bps"`
	FeePercent   string `json:"fee_percent"`
	FeeRecipient string `json:"fee_recipient"`
	Seed         uint8  `json:"seed"`
	Bump         uint8  `json:"bump"`
}

// PoolResponse is a decoded Pool record.
type PoolResponse struct {
	WithdrawAuthority string `json:"withdraw_authority"`
	Value             uint64 `json:"value"`
	ValueBalance      string `json:"value_balance"`
	Vault             string `json:"vault"`
}

// WalletResponse is a decoded Wallet record.
type WalletResponse struct {
	Owner      string `json:"owner"`
	Authority  string `json:"authority"`
	Mint       string `json:"mint"`
	Vault      string `json:"vault"`
	WalletBump uint8  `json:"wallet_bump"`
	VaultBump  uint8  `json:"vault_bump"`
}

// MintResponse is a decoded token mint.
type MintResponse struct {
	MintAuthority   *string `json:"mint_authority,omitempty"`
	Supply          uint64  `json:"supply"`
	Decimals        uint8   `json:"decimals"`
	IsInitialized   bool    `json:"is_initialized"`
	FreezeAuthority *string `json:"freeze_authority,omitempty"`
}

// TokenAccountResponse is a decoded token account.
type TokenAccountResponse struct {
	Mint     string  `json:"mint"`
	Owner    string  `json:"owner"`
	Amount   uint64  `json:"amount"`
	Delegate *string `json:"delegate,omitempty"`
	State    string  `json:"state"`
}

// AirdropResponse reports a faucet credit and the resulting balance.
type AirdropResponse struct {
	Address  string `json:"address"`
	Credited uint64 `json:"credited"`
	Lamports uint64 `json:"lamports"`
	Balance  string `json:"balance"`
}

// ReceiptListResponse wraps a paginated receipt listing.
type ReceiptListResponse struct {
	Items      []ReceiptResponse `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}
