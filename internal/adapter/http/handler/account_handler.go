package handler

import (
	"vault-engine/internal/adapter/http/dto"
	"vault-engine/internal/core/ports"
	"vault-engine/pkg/apperror"
	"vault-engine/pkg/response"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
)

// AccountHandler serves decoded account state.
type AccountHandler struct {
	querySvc ports.QueryService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(querySvc ports.QueryService) *AccountHandler {
	return &AccountHandler{querySvc: querySvc}
}

// GetAccount handles GET /api/v1/accounts/:address.
func (h *AccountHandler) GetAccount(c *gin.Context) {
	key, err := solana.PublicKeyFromBase58(c.Param("address"))
	if err != nil {
		response.Error(c, apperror.Validation("address is not a base58 address"))
		return
	}

	view, err := h.querySvc.GetAccount(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromAccountView(view))
}
