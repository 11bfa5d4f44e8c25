package repositories

import (
	"context"

	"tapmove.backend/internal/domain/entities"
)

// MerchantRepository defines merchant data operations. Addresses are
// normalized by implementations before any lookup or write.
type MerchantRepository interface {
	Create(ctx context.Context, merchant *entities.Merchant) error
	GetByAddress(ctx context.Context, address string) (*entities.Merchant, error)
	GetByAPIKeyHash(ctx context.Context, hash string) (*entities.Merchant, error)
	Update(ctx context.Context, merchant *entities.Merchant) error
	UpdateAPIKeyHash(ctx context.Context, address, hash string) error

	// IncrementStats adds amount to the merchant's volume counter and bumps
	// the transaction count by one.
	IncrementStats(ctx context.Context, address, amount string) error

	List(ctx context.Context, verifiedOnly bool) ([]*entities.Merchant, error)
}
