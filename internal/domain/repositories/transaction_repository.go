package repositories

import (
	"context"

	"tapmove.backend/internal/domain/entities"
	"tapmove.backend/pkg/utils"
)

// TransactionRepository defines settlement record operations. Records are
// append-only.
type TransactionRepository interface {
	Create(ctx context.Context, tx *entities.Transaction) error
	GetByHash(ctx context.Context, hash string) (*entities.Transaction, error)
	GetByMerchant(ctx context.Context, merchantAddress string, p utils.Pagination) ([]*entities.Transaction, int64, error)
}
