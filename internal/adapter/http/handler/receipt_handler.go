package handler

import (
	"math"
	"strconv"

	"vault-engine/internal/adapter/http/dto"
	"vault-engine/internal/core/domain"
	"vault-engine/internal/core/ports"
	"vault-engine/pkg/apperror"
	"vault-engine/pkg/response"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
)

// ReceiptHandler serves submission receipts.
type ReceiptHandler struct {
	querySvc ports.QueryService
}

// NewReceiptHandler creates a new ReceiptHandler.
func NewReceiptHandler(querySvc ports.QueryService) *ReceiptHandler {
	return &ReceiptHandler{querySvc: querySvc}
}

// GetReceipt handles GET /api/v1/receipts/:hash.
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	receipt, err := h.querySvc.GetReceipt(c.Request.Context(), c.Param("hash"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromReceipt(receipt))
}

// ListReceipts handles GET /api/v1/receipts.
func (h *ReceiptHandler) ListReceipts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	params := ports.ReceiptListParams{
		Page:     page,
		PageSize: pageSize,
	}

	if s := c.Query("status"); s != "" {
		status := domain.ReceiptStatus(s)
		if status != domain.ReceiptStatusSuccess && status != domain.ReceiptStatusFailed {
			response.Error(c, apperror.Validation("status must be SUCCESS or FAILED"))
			return
		}
		params.Status = &status
	}
	if s := c.Query("signer"); s != "" {
		signer, err := solana.PublicKeyFromBase58(s)
		if err != nil {
			response.Error(c, apperror.Validation("signer is not a base58 address"))
			return
		}
		params.Signer = &signer
	}

	receipts, total, err := h.querySvc.ListReceipts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.ReceiptResponse, 0, len(receipts))
	for i := range receipts {
		items = append(items, dto.FromReceipt(&receipts[i]))
	}

	response.OK(c, dto.ReceiptListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	})
}
