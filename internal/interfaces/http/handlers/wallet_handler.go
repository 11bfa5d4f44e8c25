package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"tapmove.backend/internal/domain/entities"
	domainerrors "tapmove.backend/internal/domain/errors"
	"tapmove.backend/internal/infrastructure/ledger"
	"tapmove.backend/internal/interfaces/http/response"
)

type WalletService interface {
	GetBalance(ctx context.Context, address string) (string, error)
	Fund(ctx context.Context, address, amount string) error
	NetworkConfig() ledger.NetworkConfig
}

// WalletHandler exposes balance lookups and the testnet faucet.
type WalletHandler struct {
	ledger WalletService
}

func NewWalletHandler(ledgerSvc WalletService) *WalletHandler {
	return &WalletHandler{ledger: ledgerSvc}
}

// GetBalance returns an account's coin balance
// GET /balance/:address
func (h *WalletHandler) GetBalance(c *gin.Context) {
	address := c.Param("address")
	if !entities.IsValidAddress(address) {
		response.Error(c, domainerrors.Validation("address must be a 64-character hex address"))
		return
	}

	balance, err := h.ledger.GetBalance(c.Request.Context(), entities.NormalizeAddress(address))
	if err != nil {
		response.Error(c, domainerrors.Ledger("failed to fetch balance", err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"address": entities.NormalizeAddress(address),
		"balance": balance,
	})
}

type faucetRequest struct {
	Address string `json:"address" binding:"required"`
	Amount  string `json:"amount"`
}

// Faucet funds a testnet account
// POST /faucet
func (h *WalletHandler) Faucet(c *gin.Context) {
	var req faucetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.Validation(err.Error()))
		return
	}
	if !entities.IsValidAddress(req.Address) {
		response.Error(c, domainerrors.Validation("address must be a 64-character hex address"))
		return
	}

	amount := req.Amount
	if amount == "" {
		amount = "100000000"
	}

	if err := h.ledger.Fund(c.Request.Context(), entities.NormalizeAddress(req.Address), amount); err != nil {
		response.Error(c, domainerrors.Ledger("faucet request failed", err))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"funded":  true,
		"address": entities.NormalizeAddress(req.Address),
		"amount":  amount,
	})
}
