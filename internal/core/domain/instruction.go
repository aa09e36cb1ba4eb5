package domain

import "github.com/gagliardetto/solana-go"

// InstructionTag selects an engine operation. It is the first byte of instruction data.
type InstructionTag uint8

const (
	TagInitialize InstructionTag = iota
	TagDeposit
	TagWithdraw
	TagCreatePool
	TagTip
	TagInitializeWallet
	TagWalletDeposit
	TagWalletWithdraw
)

var instructionNames = map[InstructionTag]string{
	TagInitialize:       "Initialize",
	TagDeposit:          "Deposit",
	TagWithdraw:         "Withdraw",
	TagCreatePool:       "CreatePool",
	TagTip:              "Tip",
	TagInitializeWallet: "InitializeWallet",
	TagWalletDeposit:    "WalletDeposit",
	TagWalletWithdraw:   "WalletWithdraw",
}

func (t InstructionTag) String() string {
	if name, ok := instructionNames[t]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether t names a known operation.
func (t InstructionTag) Valid() bool {
	_, ok := instructionNames[t]
	return ok
}

// EngineInstruction is a decoded engine instruction. Only the fields of the
// selected variant are set.
type EngineInstruction struct {
	Tag          InstructionTag
	Seed         uint8
	Fee          float64
	FeeRecipient solana.PublicKey
	Amount       uint64
}

// System program instructions understood by the builtin system program.
type SystemInstructionTag uint32

const (
	SystemCreateAccount SystemInstructionTag = 0
	SystemTransfer      SystemInstructionTag = 2
)

func (t SystemInstructionTag) String() string {
	switch t {
	case SystemCreateAccount:
		return "CreateAccount"
	case SystemTransfer:
		return "Transfer"
	default:
		return "Unknown"
	}
}

// SystemInstruction is a decoded system program instruction.
type SystemInstruction struct {
	Tag      SystemInstructionTag
	Lamports uint64
	Space    uint64
	Owner    solana.PublicKey
}

// Token program instructions understood by the builtin token program.
type TokenInstructionTag uint8

const (
	TokenInitializeMint    TokenInstructionTag = 0
	TokenInitializeAccount TokenInstructionTag = 1
	TokenMintTo            TokenInstructionTag = 7
	TokenTransferChecked   TokenInstructionTag = 12
)

func (t TokenInstructionTag) String() string {
	switch t {
	case TokenInitializeMint:
		return "InitializeMint"
	case TokenInitializeAccount:
		return "InitializeAccount"
	case TokenMintTo:
		return "MintTo"
	case TokenTransferChecked:
		return "TransferChecked"
	default:
		return "Unknown"
	}
}

// TokenInstruction is a decoded token program instruction.
type TokenInstruction struct {
	Tag           TokenInstructionTag
	Amount        uint64
	Decimals      uint8
	MintAuthority solana.PublicKey
}
