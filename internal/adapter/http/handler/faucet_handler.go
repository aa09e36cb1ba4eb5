package handler

import (
	"vault-engine/internal/adapter/http/dto"
	"vault-engine/internal/adapter/http/middleware"
	"vault-engine/internal/core/ports"
	"vault-engine/pkg/apperror"
	"vault-engine/pkg/response"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
)

// FaucetHandler credits development lamports on behalf of an operator.
type FaucetHandler struct {
	faucetSvc ports.FaucetService
}

// NewFaucetHandler creates a new FaucetHandler.
func NewFaucetHandler(faucetSvc ports.FaucetService) *FaucetHandler {
	return &FaucetHandler{faucetSvc: faucetSvc}
}

// Airdrop handles POST /api/v1/operator/airdrop.
func (h *FaucetHandler) Airdrop(c *gin.Context) {
	if c.GetString(middleware.CtxOperator) == "" {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.AirdropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	key, err := solana.PublicKeyFromBase58(req.Address)
	if err != nil {
		response.Error(c, apperror.Validation("address is not a base58 address"))
		return
	}

	acct, err := h.faucetSvc.Airdrop(c.Request.Context(), key, req.Lamports)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, key.String())
	response.OK(c, dto.AirdropResponse{
		Address:  key.String(),
		Credited: req.Lamports,
		Lamports: acct.Lamports,
		Balance:  dto.FormatLamports(acct.Lamports),
	})
}
