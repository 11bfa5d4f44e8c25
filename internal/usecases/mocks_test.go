package usecases_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"tapmove.backend/internal/domain/entities"
	"tapmove.backend/internal/infrastructure/ledger"
	"tapmove.backend/pkg/utils"
)

// Mock PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, session *entities.PaymentSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*entities.PaymentSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PaymentSession), args.Error(1)
}

func (m *MockPaymentRepository) GetByMerchant(ctx context.Context, merchantAddress string, status entities.PaymentStatus, p utils.Pagination) ([]*entities.PaymentSession, int64, error) {
	args := m.Called(ctx, merchantAddress, status, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.PaymentSession), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, id string, status entities.PaymentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockPaymentRepository) ClaimPending(ctx context.Context, id, senderAddress string) (bool, error) {
	args := m.Called(ctx, id, senderAddress)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) MarkSubmitted(ctx context.Context, id, txHash string) error {
	args := m.Called(ctx, id, txHash)
	return args.Error(0)
}

func (m *MockPaymentRepository) MarkConfirmed(ctx context.Context, id string, confirmedAt time.Time) error {
	args := m.Called(ctx, id, confirmedAt)
	return args.Error(0)
}

func (m *MockPaymentRepository) MarkFailed(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPaymentRepository) ExpireIfPending(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) GetExpiredPending(ctx context.Context, now time.Time, limit int) ([]*entities.PaymentSession, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PaymentSession), args.Error(1)
}

func (m *MockPaymentRepository) ExpireSessions(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) GetStuckSubmitted(ctx context.Context, cutoff time.Time, limit int) ([]*entities.PaymentSession, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PaymentSession), args.Error(1)
}

func (m *MockPaymentRepository) CountOldTerminal(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) CountByMerchantStatus(ctx context.Context, merchantAddress string) (map[entities.PaymentStatus]int64, error) {
	args := m.Called(ctx, merchantAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[entities.PaymentStatus]int64), args.Error(1)
}

// Mock MerchantRepository
type MockMerchantRepository struct {
	mock.Mock
}

func (m *MockMerchantRepository) Create(ctx context.Context, merchant *entities.Merchant) error {
	args := m.Called(ctx, merchant)
	return args.Error(0)
}

func (m *MockMerchantRepository) GetByAddress(ctx context.Context, address string) (*entities.Merchant, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) GetByAPIKeyHash(ctx context.Context, hash string) (*entities.Merchant, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Merchant), args.Error(1)
}

func (m *MockMerchantRepository) Update(ctx context.Context, merchant *entities.Merchant) error {
	args := m.Called(ctx, merchant)
	return args.Error(0)
}

func (m *MockMerchantRepository) UpdateAPIKeyHash(ctx context.Context, address, hash string) error {
	args := m.Called(ctx, address, hash)
	return args.Error(0)
}

func (m *MockMerchantRepository) IncrementStats(ctx context.Context, address, amount string) error {
	args := m.Called(ctx, address, amount)
	return args.Error(0)
}

func (m *MockMerchantRepository) List(ctx context.Context, verifiedOnly bool) ([]*entities.Merchant, error) {
	args := m.Called(ctx, verifiedOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Merchant), args.Error(1)
}

// Mock TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByHash(ctx context.Context, hash string) (*entities.Transaction, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByMerchant(ctx context.Context, merchantAddress string, p utils.Pagination) ([]*entities.Transaction, int64, error) {
	args := m.Called(ctx, merchantAddress, p)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.Transaction), args.Get(1).(int64), args.Error(2)
}

// Mock ledger Service
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) BuildPaymentTransaction(ctx context.Context, sender, recipient, amountRaw, paymentID, memo string) (*ledger.BuiltTransaction, error) {
	args := m.Called(ctx, sender, recipient, amountRaw, paymentID, memo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.BuiltTransaction), args.Error(1)
}

func (m *MockLedgerService) Submit(ctx context.Context, signed *ledger.SignedTransaction) (*ledger.SubmitResult, error) {
	args := m.Called(ctx, signed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.SubmitResult), args.Error(1)
}

func (m *MockLedgerService) GetTransactionStatus(ctx context.Context, txHash string) (*ledger.TransactionStatus, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.TransactionStatus), args.Error(1)
}

func (m *MockLedgerService) GetBalance(ctx context.Context, address string) (string, error) {
	args := m.Called(ctx, address)
	return args.String(0), args.Error(1)
}

func (m *MockLedgerService) Fund(ctx context.Context, address, amount string) error {
	args := m.Called(ctx, address, amount)
	return args.Error(0)
}

func (m *MockLedgerService) NetworkConfig() ledger.NetworkConfig {
	args := m.Called()
	return args.Get(0).(ledger.NetworkConfig)
}

// Mock Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyPaymentCompleted(ctx context.Context, session *entities.PaymentSession) entities.WebhookResult {
	args := m.Called(ctx, session)
	return args.Get(0).(entities.WebhookResult)
}

func (m *MockNotifier) NotifyPaymentExpired(ctx context.Context, session *entities.PaymentSession) entities.WebhookResult {
	args := m.Called(ctx, session)
	return args.Get(0).(entities.WebhookResult)
}

func (m *MockNotifier) NotifyStatusChanged(ctx context.Context, merchantAddress, paymentID string, status entities.PaymentStatus) entities.WebhookResult {
	args := m.Called(ctx, merchantAddress, paymentID, status)
	return args.Get(0).(entities.WebhookResult)
}
