package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"tapmove.backend/internal/domain/entities"
	domainerrors "tapmove.backend/internal/domain/errors"
	"tapmove.backend/internal/interfaces/http/middleware"
	"tapmove.backend/internal/interfaces/http/response"
	"tapmove.backend/internal/usecases"
	"tapmove.backend/pkg/utils"
)

type MerchantService interface {
	Register(ctx context.Context, input usecases.RegisterMerchantInput) (*usecases.RegisterMerchantOutput, error)
	Get(ctx context.Context, address string) (*entities.Merchant, error)
	List(ctx context.Context, verifiedOnly bool) ([]*entities.Merchant, error)
	Update(ctx context.Context, address string, authenticated *entities.Merchant, input usecases.UpdateMerchantInput) (*entities.Merchant, error)
	RegenerateAPIKey(ctx context.Context, address string, authenticated *entities.Merchant) (string, error)
	GetStats(ctx context.Context, address string) (*entities.MerchantStats, error)
	ListTransactions(ctx context.Context, address string, p utils.Pagination) ([]*entities.Transaction, int64, error)
}

// MerchantHandler handles merchant account endpoints
type MerchantHandler struct {
	merchantUsecase MerchantService
}

// NewMerchantHandler creates a new merchant handler
func NewMerchantHandler(merchantUsecase MerchantService) *MerchantHandler {
	return &MerchantHandler{merchantUsecase: merchantUsecase}
}

type registerMerchantRequest struct {
	Address    string `json:"address" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Category   string `json:"category"`
	WebhookURL string `json:"webhookUrl"`
	LogoURL    string `json:"logoUrl"`
}

// Register creates a merchant account and issues its API key
// POST /merchants/register
func (h *MerchantHandler) Register(c *gin.Context) {
	var req registerMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	out, err := h.merchantUsecase.Register(c.Request.Context(), usecases.RegisterMerchantInput{
		Address:    req.Address,
		Name:       req.Name,
		Category:   req.Category,
		WebhookURL: req.WebhookURL,
		LogoURL:    req.LogoURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, out)
}

// Get returns a merchant's public profile
// GET /merchants/:address
func (h *MerchantHandler) Get(c *gin.Context) {
	merchant, err := h.merchantUsecase.Get(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"merchant": merchant})
}

// List returns active merchants
// GET /merchants
func (h *MerchantHandler) List(c *gin.Context) {
	verifiedOnly := c.Query("verified") == "true"
	merchants, err := h.merchantUsecase.List(c.Request.Context(), verifiedOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"merchants": merchants})
}

type updateMerchantRequest struct {
	Name       *string `json:"name"`
	Category   *string `json:"category"`
	WebhookURL *string `json:"webhookUrl"`
	LogoURL    *string `json:"logoUrl"`
}

// Update patches the authenticated merchant's profile
// PATCH /merchants/:address
func (h *MerchantHandler) Update(c *gin.Context) {
	merchant, ok := middleware.GetMerchant(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("merchant not authenticated"))
		return
	}

	var req updateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	updated, err := h.merchantUsecase.Update(c.Request.Context(), c.Param("address"), merchant, usecases.UpdateMerchantInput{
		Name:       req.Name,
		Category:   req.Category,
		WebhookURL: req.WebhookURL,
		LogoURL:    req.LogoURL,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"merchant": updated})
}

// RegenerateAPIKey rotates the merchant's API credential
// POST /merchants/:address/regenerate-key
func (h *MerchantHandler) RegenerateAPIKey(c *gin.Context) {
	merchant, ok := middleware.GetMerchant(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("merchant not authenticated"))
		return
	}

	key, err := h.merchantUsecase.RegenerateAPIKey(c.Request.Context(), c.Param("address"), merchant)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"apiKey": key})
}

// GetStats returns the merchant's payment statistics
// GET /merchants/:address/stats
func (h *MerchantHandler) GetStats(c *gin.Context) {
	stats, err := h.merchantUsecase.GetStats(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// ListTransactions pages through a merchant's settlement records
// GET /merchants/:address/transactions
func (h *MerchantHandler) ListTransactions(c *gin.Context) {
	p := utils.PaginationFromQuery(c.Query("limit"), c.Query("offset"))
	txs, total, err := h.merchantUsecase.ListTransactions(c.Request.Context(), c.Param("address"), p)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"transactions": txs,
		"pagination": gin.H{
			"limit":  p.Limit,
			"offset": p.Offset,
			"total":  total,
		},
	})
}
