package repositories

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"tapmove.backend/internal/domain/entities"
	"tapmove.backend/internal/infrastructure/models"
)

// MerchantRepositoryImpl implements MerchantRepository
type MerchantRepositoryImpl struct {
	db *gorm.DB
}

func NewMerchantRepository(db *gorm.DB) *MerchantRepositoryImpl {
	return &MerchantRepositoryImpl{db: db}
}

func (r *MerchantRepositoryImpl) Create(ctx context.Context, merchant *entities.Merchant) error {
	now := time.Now()
	m := &models.Merchant{
		Address:           entities.NormalizeAddress(merchant.Address),
		Name:              merchant.Name,
		Category:          merchant.Category,
		LogoURL:           merchant.LogoURL.Ptr(),
		WebhookURL:        merchant.WebhookURL.Ptr(),
		APIKeyHash:        merchant.APIKeyHash,
		Verified:          merchant.Verified,
		IsActive:          true,
		TotalVolume:       "0",
		TotalTransactions: 0,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MerchantRepositoryImpl) GetByAddress(ctx context.Context, address string) (*entities.Merchant, error) {
	var m models.Merchant
	if err := r.db.WithContext(ctx).
		Where("address = ?", entities.NormalizeAddress(address)).
		First(&m).Error; err != nil {
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *MerchantRepositoryImpl) GetByAPIKeyHash(ctx context.Context, hash string) (*entities.Merchant, error) {
	var m models.Merchant
	if err := r.db.WithContext(ctx).
		Where("api_key_hash = ? AND is_active = ?", hash, true).
		First(&m).Error; err != nil {
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *MerchantRepositoryImpl) Update(ctx context.Context, merchant *entities.Merchant) error {
	return r.db.WithContext(ctx).Model(&models.Merchant{}).
		Where("address = ?", entities.NormalizeAddress(merchant.Address)).
		Updates(map[string]interface{}{
			"name":        merchant.Name,
			"category":    merchant.Category,
			"logo_url":    merchant.LogoURL.Ptr(),
			"webhook_url": merchant.WebhookURL.Ptr(),
			"updated_at":  time.Now(),
		}).Error
}

func (r *MerchantRepositoryImpl) UpdateAPIKeyHash(ctx context.Context, address, hash string) error {
	return r.db.WithContext(ctx).Model(&models.Merchant{}).
		Where("address = ?", entities.NormalizeAddress(address)).
		Updates(map[string]interface{}{
			"api_key_hash": hash,
			"updated_at":   time.Now(),
		}).Error
}

// IncrementStats keeps the aggregate counters in lockstep with settlement.
// sqlite and postgres both cast the varchar volume column for the addition.
func (r *MerchantRepositoryImpl) IncrementStats(ctx context.Context, address, amount string) error {
	return r.db.WithContext(ctx).Model(&models.Merchant{}).
		Where("address = ?", entities.NormalizeAddress(address)).
		Updates(map[string]interface{}{
			"total_volume":       gorm.Expr("CAST(CAST(total_volume AS DECIMAL) + CAST(? AS DECIMAL) AS VARCHAR)", amount),
			"total_transactions": gorm.Expr("total_transactions + 1"),
			"updated_at":         time.Now(),
		}).Error
}

func (r *MerchantRepositoryImpl) List(ctx context.Context, verifiedOnly bool) ([]*entities.Merchant, error) {
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if verifiedOnly {
		q = q.Where("verified = ?", true)
	}

	var ms []models.Merchant
	if err := q.Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}

	merchants := make([]*entities.Merchant, 0, len(ms))
	for i := range ms {
		merchants = append(merchants, r.toEntity(&ms[i]))
	}
	return merchants, nil
}

func (r *MerchantRepositoryImpl) toEntity(m *models.Merchant) *entities.Merchant {
	return &entities.Merchant{
		Address:           m.Address,
		Name:              m.Name,
		Category:          m.Category,
		LogoURL:           null.StringFromPtr(m.LogoURL),
		WebhookURL:        null.StringFromPtr(m.WebhookURL),
		APIKeyHash:        m.APIKeyHash,
		Verified:          m.Verified,
		IsActive:          m.IsActive,
		TotalVolume:       m.TotalVolume,
		TotalTransactions: m.TotalTransactions,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
