package usecases

import (
	"context"

	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"tapmove.backend/internal/domain/entities"
	"tapmove.backend/internal/domain/errors"
	"tapmove.backend/internal/domain/repositories"
	"tapmove.backend/pkg/crypto"
	"tapmove.backend/pkg/utils"
)

// MerchantUsecase handles registration, credentials and statistics.
type MerchantUsecase struct {
	merchantRepo repositories.MerchantRepository
	paymentRepo  repositories.PaymentRepository
	txRepo       repositories.TransactionRepository
}

func NewMerchantUsecase(
	merchantRepo repositories.MerchantRepository,
	paymentRepo repositories.PaymentRepository,
	txRepo repositories.TransactionRepository,
) *MerchantUsecase {
	return &MerchantUsecase{
		merchantRepo: merchantRepo,
		paymentRepo:  paymentRepo,
		txRepo:       txRepo,
	}
}

type RegisterMerchantInput struct {
	Address    string
	Name       string
	Category   string
	WebhookURL string
	LogoURL    string
}

// RegisterMerchantOutput carries the plaintext API key. It is returned
// exactly once; only the hash is persisted.
type RegisterMerchantOutput struct {
	Merchant *entities.Merchant `json:"merchant"`
	APIKey   string             `json:"apiKey"`
}

// Register creates a merchant and issues its API credential.
func (uc *MerchantUsecase) Register(ctx context.Context, input RegisterMerchantInput) (*RegisterMerchantOutput, error) {
	if !entities.IsValidAddress(input.Address) {
		return nil, errors.Validation("address must be a 64-character hex address")
	}
	if input.Name == "" {
		return nil, errors.Validation("name is required")
	}

	address := entities.NormalizeAddress(input.Address)
	if _, err := uc.merchantRepo.GetByAddress(ctx, address); err == nil {
		return nil, errors.Conflict("merchant already registered")
	}

	plainKey, hash, err := crypto.GenerateAPIKey()
	if err != nil {
		return nil, errors.InternalError(err)
	}

	merchant := &entities.Merchant{
		Address:     address,
		Name:        input.Name,
		Category:    input.Category,
		LogoURL:     null.NewString(input.LogoURL, input.LogoURL != ""),
		WebhookURL:  null.NewString(input.WebhookURL, input.WebhookURL != ""),
		APIKeyHash:  hash,
		TotalVolume: "0",
	}
	if err := uc.merchantRepo.Create(ctx, merchant); err != nil {
		return nil, errors.InternalError(err)
	}

	merchant.APIKeyHash = ""
	return &RegisterMerchantOutput{Merchant: merchant, APIKey: plainKey}, nil
}

// Get returns a merchant's public profile.
func (uc *MerchantUsecase) Get(ctx context.Context, address string) (*entities.Merchant, error) {
	merchant, err := uc.merchantRepo.GetByAddress(ctx, entities.NormalizeAddress(address))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("merchant not found")
		}
		return nil, errors.InternalError(err)
	}
	merchant.APIKeyHash = ""
	return merchant, nil
}

// Authenticate resolves an API key to its merchant, for the auth middleware.
func (uc *MerchantUsecase) Authenticate(ctx context.Context, apiKey string) (*entities.Merchant, error) {
	merchant, err := uc.merchantRepo.GetByAPIKeyHash(ctx, crypto.HashAPIKey(apiKey))
	if err != nil {
		return nil, errors.Unauthorized("invalid API key")
	}
	return merchant, nil
}

type UpdateMerchantInput struct {
	Name       *string
	Category   *string
	WebhookURL *string
	LogoURL    *string
}

// Update modifies a merchant's profile. The caller must own the account;
// ownership is checked against the authenticated merchant.
func (uc *MerchantUsecase) Update(ctx context.Context, address string, authenticated *entities.Merchant, input UpdateMerchantInput) (*entities.Merchant, error) {
	address = entities.NormalizeAddress(address)
	if authenticated.Address != address {
		return nil, errors.Forbidden("cannot modify another merchant's account")
	}

	merchant, err := uc.merchantRepo.GetByAddress(ctx, address)
	if err != nil {
		return nil, errors.NotFound("merchant not found")
	}

	if input.Name != nil {
		merchant.Name = *input.Name
	}
	if input.Category != nil {
		merchant.Category = *input.Category
	}
	if input.WebhookURL != nil {
		merchant.WebhookURL = null.NewString(*input.WebhookURL, *input.WebhookURL != "")
	}
	if input.LogoURL != nil {
		merchant.LogoURL = null.NewString(*input.LogoURL, *input.LogoURL != "")
	}

	if err := uc.merchantRepo.Update(ctx, merchant); err != nil {
		return nil, errors.InternalError(err)
	}
	merchant.APIKeyHash = ""
	return merchant, nil
}

// RegenerateAPIKey issues a fresh credential and invalidates the old one.
func (uc *MerchantUsecase) RegenerateAPIKey(ctx context.Context, address string, authenticated *entities.Merchant) (string, error) {
	address = entities.NormalizeAddress(address)
	if authenticated.Address != address {
		return "", errors.Forbidden("cannot modify another merchant's account")
	}

	plainKey, hash, err := crypto.GenerateAPIKey()
	if err != nil {
		return "", errors.InternalError(err)
	}
	if err := uc.merchantRepo.UpdateAPIKeyHash(ctx, address, hash); err != nil {
		return "", errors.InternalError(err)
	}
	return plainKey, nil
}

// GetStats aggregates per-status session counts with the advisory volume
// counters.
func (uc *MerchantUsecase) GetStats(ctx context.Context, address string) (*entities.MerchantStats, error) {
	merchant, err := uc.merchantRepo.GetByAddress(ctx, entities.NormalizeAddress(address))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("merchant not found")
		}
		return nil, errors.InternalError(err)
	}

	counts, err := uc.paymentRepo.CountByMerchantStatus(ctx, merchant.Address)
	if err != nil {
		return nil, errors.InternalError(err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &entities.MerchantStats{
		TotalPayments:     total,
		Pending:           counts[entities.PaymentStatusPending],
		Completed:         counts[entities.PaymentStatusConfirmed],
		Failed:            counts[entities.PaymentStatusFailed],
		Expired:           counts[entities.PaymentStatusExpired],
		TotalVolume:       merchant.TotalVolume,
		TotalTransactions: merchant.TotalTransactions,
	}, nil
}

// ListTransactions pages through a merchant's settlement records.
func (uc *MerchantUsecase) ListTransactions(ctx context.Context, address string, p utils.Pagination) ([]*entities.Transaction, int64, error) {
	txs, total, err := uc.txRepo.GetByMerchant(ctx, entities.NormalizeAddress(address), p)
	if err != nil {
		return nil, 0, errors.InternalError(err)
	}
	return txs, total, nil
}

// List returns all active merchants' public profiles.
func (uc *MerchantUsecase) List(ctx context.Context, verifiedOnly bool) ([]*entities.Merchant, error) {
	merchants, err := uc.merchantRepo.List(ctx, verifiedOnly)
	if err != nil {
		return nil, errors.InternalError(err)
	}
	for _, m := range merchants {
		m.APIKeyHash = ""
	}
	return merchants, nil
}
