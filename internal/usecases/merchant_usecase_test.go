package usecases_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"tapmove.backend/internal/domain/entities"
	"tapmove.backend/internal/domain/errors"
	"tapmove.backend/internal/usecases"
	"tapmove.backend/pkg/crypto"
)

type merchantFixture struct {
	uc           *usecases.MerchantUsecase
	merchantRepo *MockMerchantRepository
	paymentRepo  *MockPaymentRepository
	txRepo       *MockTransactionRepository
}

func newMerchantFixture() *merchantFixture {
	f := &merchantFixture{
		merchantRepo: new(MockMerchantRepository),
		paymentRepo:  new(MockPaymentRepository),
		txRepo:       new(MockTransactionRepository),
	}
	f.uc = usecases.NewMerchantUsecase(f.merchantRepo, f.paymentRepo, f.txRepo)
	return f
}

func activeMerchant(address string) *entities.Merchant {
	return &entities.Merchant{
		Address:     address,
		Name:        "Corner Cafe",
		Category:    "food",
		APIKeyHash:  "somehash",
		IsActive:    true,
		TotalVolume: "0",
	}
}

func TestRegister_IssuesKeyOnce(t *testing.T) {
	f := newMerchantFixture()
	ctx := context.Background()
	mixedCase := "0x" + strings.Repeat("A", 64)
	normalized := "0x" + strings.Repeat("a", 64)

	f.merchantRepo.On("GetByAddress", ctx, normalized).Return(nil, gorm.ErrRecordNotFound)

	var storedHash, storedWebhook, storedVolume string
	f.merchantRepo.On("Create", ctx, mock.AnythingOfType("*entities.Merchant")).
		Run(func(args mock.Arguments) {
			m := args.Get(1).(*entities.Merchant)
			storedHash = m.APIKeyHash
			storedWebhook = m.WebhookURL.String
			storedVolume = m.TotalVolume
		}).
		Return(nil)

	out, err := f.uc.Register(ctx, usecases.RegisterMerchantInput{
		Address:    mixedCase,
		Name:       "Corner Cafe",
		Category:   "food",
		WebhookURL: "https://example.com/hooks",
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out.APIKey, "tm_"))
	assert.Equal(t, normalized, out.Merchant.Address)
	// the response never carries the credential hash
	assert.Empty(t, out.Merchant.APIKeyHash)

	// only the hash hits storage, and it matches the issued key
	assert.Equal(t, crypto.HashAPIKey(out.APIKey), storedHash)
	assert.Equal(t, "https://example.com/hooks", storedWebhook)
	assert.Equal(t, "0", storedVolume)
}

func TestRegister_DuplicateAddress(t *testing.T) {
	f := newMerchantFixture()
	ctx := context.Background()
	f.merchantRepo.On("GetByAddress", ctx, testMerchant).Return(activeMerchant(testMerchant), nil)

	_, err := f.uc.Register(ctx, usecases.RegisterMerchantInput{Address: testMerchant, Name: "Again"})
	assert.True(t, errors.Is(err, errors.ErrConflict))
	f.merchantRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_Validation(t *testing.T) {
	f := newMerchantFixture()
	ctx := context.Background()

	_, err := f.uc.Register(ctx, usecases.RegisterMerchantInput{Address: "nope", Name: "X"})
	assert.True(t, errors.Is(err, errors.ErrValidation))

	_, err = f.uc.Register(ctx, usecases.RegisterMerchantInput{Address: testMerchant})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestAuthenticate(t *testing.T) {
	f := newMerchantFixture()
	ctx := context.Background()
	merchant := activeMerchant(testMerchant)

	f.merchantRepo.On("GetByAPIKeyHash", ctx, crypto.HashAPIKey("tm_goodkey")).Return(merchant, nil)
	f.merchantRepo.On("GetByAPIKeyHash", ctx, crypto.HashAPIKey("tm_badkey")).Return(nil, gorm.ErrRecordNotFound)

	got, err := f.uc.Authenticate(ctx, "tm_goodkey")
	require.NoError(t, err)
	assert.Equal(t, testMerchant, got.Address)

	_, err = f.uc.Authenticate(ctx, "tm_badkey")
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}

func TestUpdate_OwnershipRequired(t *testing.T) {
	f := newMerchantFixture()
	ctx := context.Background()
	other := activeMerchant("0x" + strings.Repeat("c", 64))

	_, err := f.uc.Update(ctx, testMerchant, other, usecases.UpdateMerchantInput{})
	assert.True(t, errors.Is(err, errors.ErrForbidden))
	f.merchantRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdate_PatchesOnlyProvidedFields(t *testing.T) {
	f := newMerchantFixture()
	ctx := context.Background()
	merchant := activeMerchant(testMerchant)
	merchant.WebhookURL = null.StringFrom("https://old.example.com")

	f.merchantRepo.On("GetByAddress", ctx, testMerchant).Return(merchant, nil)
	f.merchantRepo.On("Update", ctx, mock.AnythingOfType("*entities.Merchant")).Return(nil)

	newName := "New Name"
	got, err := f.uc.Update(ctx, testMerchant, merchant, usecases.UpdateMerchantInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)
	assert.Equal(t, "food", got.Category)
	assert.Equal(t, "https://old.example.com", got.WebhookURL.String)
	assert.Empty(t, got.APIKeyHash)
}

func TestUpdate_ClearsWebhookWithEmptyString(t *testing.T) {
	f := newMerchantFixture()
	ctx := context.Background()
	merchant := activeMerchant(testMerchant)
	merchant.WebhookURL = null.StringFrom("https://old.example.com")

	f.merchantRepo.On("GetByAddress", ctx, testMerchant).Return(merchant, nil)
	f.merchantRepo.On("Update", ctx, mock.Anything).Return(nil)

	empty := ""
	got, err := f.uc.Update(ctx, testMerchant, merchant, usecases.UpdateMerchantInput{WebhookURL: &empty})
	require.NoError(t, err)
	assert.False(t, got.WebhookURL.Valid)
}

func TestRegenerateAPIKey(t *testing.T) {
	f := newMerchantFixture()
	ctx := context.Background()
	merchant := activeMerchant(testMerchant)

	var storedHash string
	f.merchantRepo.On("UpdateAPIKeyHash", ctx, testMerchant, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) {
			storedHash = args.Get(2).(string)
		}).
		Return(nil)

	key, err := f.uc.RegenerateAPIKey(ctx, testMerchant, merchant)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "tm_"))
	assert.Equal(t, crypto.HashAPIKey(key), storedHash)
}

func TestRegenerateAPIKey_Forbidden(t *testing.T) {
	f := newMerchantFixture()
	other := activeMerchant("0x" + strings.Repeat("d", 64))

	_, err := f.uc.RegenerateAPIKey(context.Background(), testMerchant, other)
	assert.True(t, errors.Is(err, errors.ErrForbidden))
}

func TestGetStats(t *testing.T) {
	f := newMerchantFixture()
	ctx := context.Background()
	merchant := activeMerchant(testMerchant)
	merchant.TotalVolume = "123.45"
	merchant.TotalTransactions = 7

	f.merchantRepo.On("GetByAddress", ctx, testMerchant).Return(merchant, nil)
	f.paymentRepo.On("CountByMerchantStatus", ctx, testMerchant).Return(map[entities.PaymentStatus]int64{
		entities.PaymentStatusPending:   2,
		entities.PaymentStatusConfirmed: 7,
		entities.PaymentStatusFailed:    1,
		entities.PaymentStatusExpired:   3,
	}, nil)

	stats, err := f.uc.GetStats(ctx, testMerchant)
	require.NoError(t, err)
	assert.Equal(t, int64(13), stats.TotalPayments)
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(7), stats.Completed)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(3), stats.Expired)
	assert.Equal(t, "123.45", stats.TotalVolume)
	assert.Equal(t, int64(7), stats.TotalTransactions)
}

func TestGetStats_UnknownMerchant(t *testing.T) {
	f := newMerchantFixture()
	ctx := context.Background()
	f.merchantRepo.On("GetByAddress", ctx, testMerchant).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.uc.GetStats(ctx, testMerchant)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestList_StripsCredentialHashes(t *testing.T) {
	f := newMerchantFixture()
	ctx := context.Background()
	f.merchantRepo.On("List", ctx, false).Return([]*entities.Merchant{
		activeMerchant(testMerchant),
		activeMerchant("0x" + strings.Repeat("e", 64)),
	}, nil)

	merchants, err := f.uc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, merchants, 2)
	for _, m := range merchants {
		assert.Empty(t, m.APIKeyHash)
	}
}
