package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tapmove.backend/internal/infrastructure/ledger"
)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

type stubWalletService struct {
	balanceFn func(ctx context.Context, address string) (string, error)
	fundFn    func(ctx context.Context, address, amount string) error
	network   ledger.NetworkConfig
}

func (s *stubWalletService) GetBalance(ctx context.Context, address string) (string, error) {
	return s.balanceFn(ctx, address)
}

func (s *stubWalletService) Fund(ctx context.Context, address, amount string) error {
	return s.fundFn(ctx, address, amount)
}

func (s *stubWalletService) NetworkConfig() ledger.NetworkConfig {
	return s.network
}

var walletAddr = "0x" + strings.Repeat("a", 64)

func TestBalanceEndpoint(t *testing.T) {
	svc := &stubWalletService{
		balanceFn: func(ctx context.Context, address string) (string, error) {
			require.Equal(t, walletAddr, address)
			return "5000000", nil
		},
	}
	h := NewWalletHandler(svc)
	r := newTestEngine()
	r.GET("/balance/:address", h.GetBalance)

	w := doJSON(t, r, http.MethodGet, "/balance/"+walletAddr, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "5000000")
}

func TestBalanceEndpoint_BadAddress(t *testing.T) {
	h := NewWalletHandler(&stubWalletService{})
	r := newTestEngine()
	r.GET("/balance/:address", h.GetBalance)

	w := doJSON(t, r, http.MethodGet, "/balance/0x123", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBalanceEndpoint_NodeDown(t *testing.T) {
	svc := &stubWalletService{
		balanceFn: func(ctx context.Context, address string) (string, error) {
			return "", fmt.Errorf("connection refused")
		},
	}
	h := NewWalletHandler(svc)
	r := newTestEngine()
	r.GET("/balance/:address", h.GetBalance)

	w := doJSON(t, r, http.MethodGet, "/balance/"+walletAddr, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestFaucetEndpoint_DefaultAmount(t *testing.T) {
	var gotAmount string
	svc := &stubWalletService{
		fundFn: func(ctx context.Context, address, amount string) error {
			gotAmount = amount
			return nil
		},
	}
	h := NewWalletHandler(svc)
	r := newTestEngine()
	r.POST("/faucet", h.Faucet)

	w := doJSON(t, r, http.MethodPost, "/faucet", `{"address":"`+walletAddr+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100000000", gotAmount)
}

func TestFaucetEndpoint_BadAddress(t *testing.T) {
	h := NewWalletHandler(&stubWalletService{})
	r := newTestEngine()
	r.POST("/faucet", h.Faucet)

	w := doJSON(t, r, http.MethodPost, "/faucet", `{"address":"bogus"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type stubSweeper struct {
	running  bool
	interval time.Duration
}

func (s *stubSweeper) Running() bool           { return s.running }
func (s *stubSweeper) Interval() time.Duration { return s.interval }

func TestHealthEndpoint(t *testing.T) {
	h := NewHealthHandler(&stubSweeper{running: true, interval: 30 * time.Second}, ledger.NetworkConfig{})
	r := newTestEngine()
	r.GET("/health", h.Health)

	w := doJSON(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"running":true`)
	assert.Contains(t, w.Body.String(), "30s")
}

func TestConfigEndpoint(t *testing.T) {
	network := ledger.NetworkConfig{
		Network:       "testnet",
		NodeURL:       "https://fullnode.testnet.example.com/v1",
		ModuleAddress: "0x1234",
		CoinType:      "0x1::aptos_coin::AptosCoin",
		GasSponsored:  true,
	}
	h := NewHealthHandler(&stubSweeper{}, network)
	r := newTestEngine()
	r.GET("/config", h.Config)

	w := doJSON(t, r, http.MethodGet, "/config", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "testnet")
	assert.Contains(t, w.Body.String(), `"gasSponsored":true`)
}
