package main

import (
	"github.com/gin-gonic/gin"
	"tapmove.backend/internal/interfaces/http/handlers"
	"tapmove.backend/internal/interfaces/http/middleware"
	"tapmove.backend/pkg/metrics"
)

type routeDeps struct {
	paymentHandler  *handlers.PaymentHandler
	merchantHandler *handlers.MerchantHandler
	walletHandler   *handlers.WalletHandler
	healthHandler   *handlers.HealthHandler
	authMiddleware  gin.HandlerFunc
	rateLimit       gin.HandlerFunc
}

// registerRoutes wires the public payment surface. Session creation and
// settlement are open so any wallet can pay; merchant account management
// requires the merchant's API key.
func registerRoutes(r *gin.Engine, deps routeDeps) {
	r.GET("/health", deps.healthHandler.Health)
	r.GET("/config", deps.healthHandler.Config)
	r.GET("/metrics", metrics.Handler())

	payments := r.Group("/payments", deps.rateLimit)
	{
		payments.POST("", middleware.IdempotencyMiddleware(), deps.paymentHandler.CreatePayment)
		payments.GET("/:id", deps.paymentHandler.GetPayment)
		payments.GET("/:id/status", deps.paymentHandler.GetPaymentStatus)
		payments.POST("/:id/build", deps.paymentHandler.BuildTransaction)
		payments.POST("/:id/submit", middleware.IdempotencyMiddleware(), deps.paymentHandler.SubmitPayment)

		payments.GET("", deps.authMiddleware, deps.paymentHandler.ListPayments)
	}

	merchants := r.Group("/merchants", deps.rateLimit)
	{
		merchants.POST("/register", deps.merchantHandler.Register)
		merchants.GET("", deps.merchantHandler.List)
		merchants.GET("/:address", deps.merchantHandler.Get)
		merchants.GET("/:address/stats", deps.merchantHandler.GetStats)
		merchants.GET("/:address/transactions", deps.merchantHandler.ListTransactions)

		merchants.PATCH("/:address", deps.authMiddleware, deps.merchantHandler.Update)
		merchants.POST("/:address/regenerate-key", deps.authMiddleware, deps.merchantHandler.RegenerateAPIKey)
	}

	r.GET("/balance/:address", deps.rateLimit, deps.walletHandler.GetBalance)
	r.POST("/faucet", deps.rateLimit, deps.walletHandler.Faucet)
}
