package handler

import (
	"vault-engine/internal/adapter/http/dto"
	"vault-engine/internal/adapter/http/middleware"
	"vault-engine/internal/core/ports"
	"vault-engine/pkg/apperror"
	"vault-engine/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransactionHandler accepts signed submissions.
type TransactionHandler struct {
	executorSvc ports.ExecutorService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(executorSvc ports.ExecutorService) *TransactionHandler {
	return &TransactionHandler{executorSvc: executorSvc}
}

// Submit handles POST /api/v1/transactions.
func (h *TransactionHandler) Submit(c *gin.Context) {
	var req dto.SubmitTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	submit, err := req.ToSubmitRequest(c.ClientIP())
	if err != nil {
		response.Error(c, err)
		return
	}
	for _, meta := range submit.Instruction.Accounts {
		if meta.IsSigner {
			c.Set(middleware.CtxActor, meta.Key.String())
			break
		}
	}

	receipt, err := h.executorSvc.Submit(c.Request.Context(), submit)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, receipt.MessageHash)
	response.Created(c, dto.FromReceipt(receipt))
}
