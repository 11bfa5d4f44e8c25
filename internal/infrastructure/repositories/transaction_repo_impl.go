package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"tapmove.backend/internal/domain/entities"
	"tapmove.backend/internal/infrastructure/models"
	"tapmove.backend/pkg/utils"
)

// TransactionRepositoryImpl implements TransactionRepository
type TransactionRepositoryImpl struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepositoryImpl {
	return &TransactionRepositoryImpl{db: db}
}

func (r *TransactionRepositoryImpl) Create(ctx context.Context, tx *entities.Transaction) error {
	m := &models.Transaction{
		Hash:            tx.Hash,
		PaymentID:       tx.PaymentID,
		MerchantAddress: tx.MerchantAddress,
		SenderAddress:   tx.SenderAddress,
		Amount:          tx.Amount,
		Memo:            tx.Memo,
		VMStatus:        tx.VMStatus,
		CreatedAt:       time.Now(),
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *TransactionRepositoryImpl) GetByHash(ctx context.Context, hash string) (*entities.Transaction, error) {
	var m models.Transaction
	if err := r.db.WithContext(ctx).Where("hash = ?", hash).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *TransactionRepositoryImpl) GetByMerchant(ctx context.Context, merchantAddress string, p utils.Pagination) ([]*entities.Transaction, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("merchant_address = ?", merchantAddress).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Transaction
	if err := r.db.WithContext(ctx).
		Where("merchant_address = ?", merchantAddress).
		Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	txs := make([]*entities.Transaction, 0, len(ms))
	for i := range ms {
		txs = append(txs, r.toEntity(&ms[i]))
	}
	return txs, total, nil
}

func (r *TransactionRepositoryImpl) toEntity(m *models.Transaction) *entities.Transaction {
	return &entities.Transaction{
		Hash:            m.Hash,
		PaymentID:       m.PaymentID,
		MerchantAddress: m.MerchantAddress,
		SenderAddress:   m.SenderAddress,
		Amount:          m.Amount,
		Memo:            m.Memo,
		VMStatus:        m.VMStatus,
		CreatedAt:       m.CreatedAt,
	}
}
