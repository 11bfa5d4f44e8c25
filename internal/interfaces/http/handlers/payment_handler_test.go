package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tapmove.backend/internal/domain/entities"
	domainerrors "tapmove.backend/internal/domain/errors"
	"tapmove.backend/internal/infrastructure/ledger"
	"tapmove.backend/internal/interfaces/http/middleware"
	"tapmove.backend/internal/usecases"
	"tapmove.backend/pkg/utils"
)

type stubPaymentService struct {
	createFn func(ctx context.Context, input usecases.CreatePaymentInput) (*usecases.CreatePaymentOutput, error)
	getFn    func(ctx context.Context, id string) (*entities.PaymentSession, error)
	statusFn func(ctx context.Context, id string) (*usecases.PaymentStatusOutput, error)
	buildFn  func(ctx context.Context, id, sender string) (*ledger.BuiltTransaction, error)
	submitFn func(ctx context.Context, id string, signed *ledger.SignedTransaction, sender string) (*usecases.ProcessPaymentOutput, error)
	listFn   func(ctx context.Context, merchant string, status entities.PaymentStatus, p utils.Pagination) ([]*entities.PaymentSession, int64, error)
}

func (s *stubPaymentService) CreatePayment(ctx context.Context, input usecases.CreatePaymentInput) (*usecases.CreatePaymentOutput, error) {
	return s.createFn(ctx, input)
}

func (s *stubPaymentService) GetPayment(ctx context.Context, id string) (*entities.PaymentSession, error) {
	return s.getFn(ctx, id)
}

func (s *stubPaymentService) GetPaymentStatus(ctx context.Context, id string) (*usecases.PaymentStatusOutput, error) {
	return s.statusFn(ctx, id)
}

func (s *stubPaymentService) BuildTransaction(ctx context.Context, id, sender string) (*ledger.BuiltTransaction, error) {
	return s.buildFn(ctx, id, sender)
}

func (s *stubPaymentService) ProcessPayment(ctx context.Context, id string, signed *ledger.SignedTransaction, sender string) (*usecases.ProcessPaymentOutput, error) {
	return s.submitFn(ctx, id, signed, sender)
}

func (s *stubPaymentService) ListMerchantPayments(ctx context.Context, merchant string, status entities.PaymentStatus, p utils.Pagination) ([]*entities.PaymentSession, int64, error) {
	return s.listFn(ctx, merchant, status, p)
}

func paymentRouter(svc PaymentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPaymentHandler(svc)
	r := gin.New()
	r.POST("/payments", h.CreatePayment)
	r.GET("/payments/:id", h.GetPayment)
	r.GET("/payments/:id/status", h.GetPaymentStatus)
	r.POST("/payments/:id/build", h.BuildTransaction)
	r.POST("/payments/:id/submit", h.SubmitPayment)
	r.GET("/payments", func(c *gin.Context) {
		c.Set(middleware.MerchantKey, &entities.Merchant{Address: "0xmerchant"})
		h.ListPayments(c)
	})
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreatePaymentEndpoint(t *testing.T) {
	svc := &stubPaymentService{
		createFn: func(ctx context.Context, input usecases.CreatePaymentInput) (*usecases.CreatePaymentOutput, error) {
			require.Equal(t, "25.5", input.Amount)
			return &usecases.CreatePaymentOutput{
				ID:         "pay_abc123def456",
				PaymentURI: "tapmove://pay?id=pay_abc123def456",
				Amount:     "25.5",
				AmountRaw:  "25500000",
				Status:     "pending",
				ExpiresAt:  time.Now().Add(15 * time.Minute),
			}, nil
		},
	}
	r := paymentRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/payments",
		`{"merchantAddress":"0xabc","amount":"25.5","memo":"table 4"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "pay_abc123def456")
	assert.Contains(t, w.Body.String(), "tapmove://pay?id=")
}

func TestCreatePaymentEndpoint_MissingFields(t *testing.T) {
	svc := &stubPaymentService{}
	r := paymentRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/payments", `{"memo":"no amount"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePaymentEndpoint_UsecaseValidation(t *testing.T) {
	svc := &stubPaymentService{
		createFn: func(ctx context.Context, input usecases.CreatePaymentInput) (*usecases.CreatePaymentOutput, error) {
			return nil, domainerrors.Validation("invalid amount")
		},
	}
	r := paymentRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/payments", `{"merchantAddress":"0xabc","amount":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid amount")
}

func TestGetPaymentEndpoint_NotFound(t *testing.T) {
	svc := &stubPaymentService{
		getFn: func(ctx context.Context, id string) (*entities.PaymentSession, error) {
			return nil, domainerrors.NotFound("payment not found")
		},
	}
	r := paymentRouter(svc)

	w := doJSON(t, r, http.MethodGet, "/payments/pay_missing12345", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPaymentStatusEndpoint(t *testing.T) {
	svc := &stubPaymentService{
		statusFn: func(ctx context.Context, id string) (*usecases.PaymentStatusOutput, error) {
			return &usecases.PaymentStatusOutput{Status: entities.PaymentStatusConfirmed, TxHash: "0xhash"}, nil
		},
	}
	r := paymentRouter(svc)

	w := doJSON(t, r, http.MethodGet, "/payments/pay_x/status", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "confirmed")
	assert.Contains(t, w.Body.String(), "0xhash")
}

func TestBuildTransactionEndpoint_Expired(t *testing.T) {
	svc := &stubPaymentService{
		buildFn: func(ctx context.Context, id, sender string) (*ledger.BuiltTransaction, error) {
			return nil, domainerrors.Expired("payment has expired")
		},
	}
	r := paymentRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/payments/pay_x/build", `{"senderAddress":"0xsender"}`)
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestSubmitPaymentEndpoint(t *testing.T) {
	svc := &stubPaymentService{
		submitFn: func(ctx context.Context, id string, signed *ledger.SignedTransaction, sender string) (*usecases.ProcessPaymentOutput, error) {
			require.Equal(t, "0xpub", signed.PublicKey)
			require.Equal(t, "0xsig", signed.Signature)
			return &usecases.ProcessPaymentOutput{
				Success: true, TxHash: "0xhash", Status: entities.PaymentStatusConfirmed,
			}, nil
		},
	}
	r := paymentRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/payments/pay_x/submit",
		`{"senderAddress":"0xsender","rawTransaction":{"sequence_number":"1"},"publicKey":"0xpub","signature":"0xsig"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
}

func TestSubmitPaymentEndpoint_AlreadySettled(t *testing.T) {
	svc := &stubPaymentService{
		submitFn: func(ctx context.Context, id string, signed *ledger.SignedTransaction, sender string) (*usecases.ProcessPaymentOutput, error) {
			return nil, domainerrors.InvalidState("payment is not pending, current status: confirmed")
		},
	}
	r := paymentRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/payments/pay_x/submit",
		`{"senderAddress":"0xsender","rawTransaction":{},"publicKey":"0xpub","signature":"0xsig"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListPaymentsEndpoint(t *testing.T) {
	svc := &stubPaymentService{
		listFn: func(ctx context.Context, merchant string, status entities.PaymentStatus, p utils.Pagination) ([]*entities.PaymentSession, int64, error) {
			require.Equal(t, "0xmerchant", merchant)
			require.Equal(t, entities.PaymentStatusPending, status)
			require.Equal(t, 5, p.Limit)
			return []*entities.PaymentSession{{ID: "pay_list12345678"}}, 1, nil
		},
	}
	r := paymentRouter(svc)

	w := doJSON(t, r, http.MethodGet, "/payments?status=pending&limit=5", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pay_list12345678")
	assert.Contains(t, w.Body.String(), `"total":1`)
}
