package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"tapmove.backend/internal/domain/entities"
	domainerrors "tapmove.backend/internal/domain/errors"
	"tapmove.backend/internal/infrastructure/ledger"
	"tapmove.backend/internal/interfaces/http/middleware"
	"tapmove.backend/internal/interfaces/http/response"
	"tapmove.backend/internal/usecases"
	"tapmove.backend/pkg/utils"
)

type PaymentService interface {
	CreatePayment(ctx context.Context, input usecases.CreatePaymentInput) (*usecases.CreatePaymentOutput, error)
	GetPayment(ctx context.Context, id string) (*entities.PaymentSession, error)
	GetPaymentStatus(ctx context.Context, id string) (*usecases.PaymentStatusOutput, error)
	BuildTransaction(ctx context.Context, id, senderAddress string) (*ledger.BuiltTransaction, error)
	ProcessPayment(ctx context.Context, id string, signed *ledger.SignedTransaction, senderAddress string) (*usecases.ProcessPaymentOutput, error)
	ListMerchantPayments(ctx context.Context, merchantAddress string, status entities.PaymentStatus, p utils.Pagination) ([]*entities.PaymentSession, int64, error)
}

// PaymentHandler handles payment session endpoints
type PaymentHandler struct {
	paymentUsecase PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentUsecase PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentUsecase: paymentUsecase}
}

type createPaymentRequest struct {
	MerchantAddress string `json:"merchantAddress" binding:"required"`
	Amount          string `json:"amount" binding:"required"`
	Memo            string `json:"memo"`
	ExpiresIn       int    `json:"expiresIn"`
}

// CreatePayment creates a new payment session
// POST /payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	out, err := h.paymentUsecase.CreatePayment(c.Request.Context(), usecases.CreatePaymentInput{
		MerchantAddress: req.MerchantAddress,
		Amount:          req.Amount,
		Memo:            req.Memo,
		ExpiresIn:       req.ExpiresIn,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, out)
}

// GetPayment gets a payment session by ID
// GET /payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	session, err := h.paymentUsecase.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"payment": session})
}

// GetPaymentStatus polls a payment session's status
// GET /payments/:id/status
func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	out, err := h.paymentUsecase.GetPaymentStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

type buildTransactionRequest struct {
	SenderAddress string `json:"senderAddress" binding:"required"`
}

// BuildTransaction prepares an unsigned payment transaction for signing
// POST /payments/:id/build
func (h *PaymentHandler) BuildTransaction(c *gin.Context) {
	var req buildTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	built, err := h.paymentUsecase.BuildTransaction(c.Request.Context(), c.Param("id"), req.SenderAddress)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, built)
}

type submitPaymentRequest struct {
	SenderAddress  string          `json:"senderAddress" binding:"required"`
	RawTransaction json.RawMessage `json:"rawTransaction" binding:"required"`
	PublicKey      string          `json:"publicKey" binding:"required"`
	Signature      string          `json:"signature" binding:"required"`
}

// SubmitPayment settles a signed payment transaction
// POST /payments/:id/submit
func (h *PaymentHandler) SubmitPayment(c *gin.Context) {
	var req submitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}

	signed := &ledger.SignedTransaction{
		RawTransaction: req.RawTransaction,
		PublicKey:      req.PublicKey,
		Signature:      req.Signature,
	}

	out, err := h.paymentUsecase.ProcessPayment(c.Request.Context(), c.Param("id"), signed, req.SenderAddress)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// ListPayments lists the authenticated merchant's payment sessions
// GET /payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	merchant, ok := middleware.GetMerchant(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("merchant not authenticated"))
		return
	}

	p := utils.PaginationFromQuery(c.Query("limit"), c.Query("offset"))
	status := entities.PaymentStatus(c.Query("status"))

	sessions, total, err := h.paymentUsecase.ListMerchantPayments(c.Request.Context(), merchant.Address, status, p)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"payments": sessions,
		"pagination": gin.H{
			"limit":  p.Limit,
			"offset": p.Offset,
			"total":  total,
		},
	})
}
