package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error carrying one discrete error kind.
// Every aborted operation surfaces exactly one of these to the caller.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// CodeOf returns the code of the outermost AppError in err's chain, or "" if there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Error kinds reported by the engine.
const (
	CodeMalformedRecord          = "MALFORMED_RECORD"
	CodeKindMismatch             = "KIND_MISMATCH"
	CodeAlreadyInitialized       = "ALREADY_INITIALIZED"
	CodeUnauthorizedSubstitution = "UNAUTHORIZED_SUBSTITUTION"
	CodeOwnershipMismatch        = "OWNERSHIP_MISMATCH"
	CodeMissingSigner            = "MISSING_SIGNER"
	CodeBackReferenceMismatch    = "BACK_REFERENCE_MISMATCH"
	CodeDelegateIdentityMismatch = "DELEGATE_IDENTITY_MISMATCH"
	CodeArithmeticOverflow       = "ARITHMETIC_OVERFLOW"
	CodeInsufficientBalance      = "INSUFFICIENT_BALANCE"
	CodeDelegateCallFailed       = "DELEGATE_CALL_FAILED"
)

// Error kinds reported by the host runtime and the API.
const (
	CodeInvalidInstruction     = "INVALID_INSTRUCTION"
	CodeInvalidArgument        = "INVALID_ARGUMENT"
	CodeNotEnoughAccounts      = "NOT_ENOUGH_ACCOUNTS"
	CodeProgramNotFound        = "PROGRAM_NOT_FOUND"
	CodeIllegalAccountMutation = "ILLEGAL_ACCOUNT_MUTATION"
	CodeCallDepthExceeded      = "CALL_DEPTH_EXCEEDED"
	CodeInvalidSignature       = "INVALID_SIGNATURE"
	CodeReplayed               = "REPLAYED"
	CodeRateLimited            = "RATE_LIMITED"
	CodeInvalidCredentials     = "INVALID_CREDENTIALS"
	CodeInvalidToken           = "INVALID_TOKEN"
	CodeNotFound               = "NOT_FOUND"
	CodeInternal               = "INTERNAL"
)

// ---- Record integrity ----

func ErrMalformedRecord(what string) *AppError {
	return New(CodeMalformedRecord, fmt.Sprintf("Malformed %s record", what), http.StatusUnprocessableEntity)
}

func ErrKindMismatch(want, got string) *AppError {
	return New(CodeKindMismatch, fmt.Sprintf("Expected %s record, found %s", want, got), http.StatusUnprocessableEntity)
}

func ErrAlreadyInitialized(what string) *AppError {
	return New(CodeAlreadyInitialized, fmt.Sprintf("%s account is already initialized", what), http.StatusConflict)
}

// ---- Authorization ----

func ErrUnauthorizedSubstitution(what string) *AppError {
	return New(CodeUnauthorizedSubstitution, fmt.Sprintf("%s does not match the expected address", what), http.StatusForbidden)
}

func ErrOwnershipMismatch(what string) *AppError {
	return New(CodeOwnershipMismatch, fmt.Sprintf("%s is not owned by the expected program", what), http.StatusForbidden)
}

func ErrMissingSigner(what string) *AppError {
	return New(CodeMissingSigner, fmt.Sprintf("%s must sign", what), http.StatusForbidden)
}

func ErrBackReferenceMismatch() *AppError {
	return New(CodeBackReferenceMismatch, "Pool is bound to a different vault", http.StatusForbidden)
}

func ErrDelegateIdentityMismatch(what string) *AppError {
	return New(CodeDelegateIdentityMismatch, fmt.Sprintf("%s is not the pinned transfer program", what), http.StatusForbidden)
}

// ---- Value movement ----

func ErrArithmeticOverflow() *AppError {
	return New(CodeArithmeticOverflow, "Balance arithmetic overflow", http.StatusUnprocessableEntity)
}

func ErrInsufficientBalance() *AppError {
	return New(CodeInsufficientBalance, "Insufficient balance", http.StatusPaymentRequired)
}

func ErrDelegateCallFailed(err error) *AppError {
	return Wrap(CodeDelegateCallFailed, "Transfer program call failed", http.StatusBadGateway, err)
}

// ---- Runtime ----

func ErrInvalidInstruction(err error) *AppError {
	return Wrap(CodeInvalidInstruction, "Invalid instruction data", http.StatusBadRequest, err)
}

func ErrNotEnoughAccounts() *AppError {
	return New(CodeNotEnoughAccounts, "Not enough account keys", http.StatusBadRequest)
}

func ErrProgramNotFound(id string) *AppError {
	return New(CodeProgramNotFound, fmt.Sprintf("Program %s not found", id), http.StatusNotFound)
}

func ErrIllegalAccountMutation(msg string) *AppError {
	return New(CodeIllegalAccountMutation, msg, http.StatusForbidden)
}

func ErrCallDepthExceeded(max int) *AppError {
	return New(CodeCallDepthExceeded, fmt.Sprintf("Cross-program invocation deeper than %d", max), http.StatusUnprocessableEntity)
}

// ---- API ----

func ErrInvalidSignature() *AppError {
	return New(CodeInvalidSignature, "Invalid signature", http.StatusUnauthorized)
}

func ErrReplayed() *AppError {
	return New(CodeReplayed, "Message has already been processed", http.StatusConflict)
}

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimited, "Rate limit exceeded", http.StatusTooManyRequests)
}

func ErrInvalidCredentials() *AppError {
	return New(CodeInvalidCredentials, "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
}

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// InternalError wraps an internal error as an INTERNAL error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns an INVALID_ARGUMENT error.
func Validation(message string) *AppError {
	return New(CodeInvalidArgument, message, http.StatusBadRequest)
}
