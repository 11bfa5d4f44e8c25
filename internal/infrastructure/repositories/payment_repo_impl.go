package repositories

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"tapmove.backend/internal/domain/entities"
	"tapmove.backend/internal/infrastructure/models"
	"tapmove.backend/pkg/utils"
)

// PaymentRepositoryImpl implements PaymentRepository
type PaymentRepositoryImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepositoryImpl {
	return &PaymentRepositoryImpl{db: db}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, session *entities.PaymentSession) error {
	now := time.Now()
	m := &models.PaymentSession{
		ID:              session.ID,
		MerchantAddress: session.MerchantAddress,
		Amount:          session.Amount,
		AmountRaw:       session.AmountRaw,
		Memo:            session.Memo,
		Status:          string(session.Status),
		PaymentURI:      session.PaymentURI,
		ExpiresAt:       session.ExpiresAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *PaymentRepositoryImpl) GetByID(ctx context.Context, id string) (*entities.PaymentSession, error) {
	var m models.PaymentSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *PaymentRepositoryImpl) GetByMerchant(ctx context.Context, merchantAddress string, status entities.PaymentStatus, p utils.Pagination) ([]*entities.PaymentSession, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.PaymentSession{}).
		Where("merchant_address = ?", merchantAddress)
	if status != "" {
		q = q.Where("status = ?", string(status))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.PaymentSession
	if err := q.Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	sessions := make([]*entities.PaymentSession, 0, len(ms))
	for i := range ms {
		sessions = append(sessions, r.toEntity(&ms[i]))
	}
	return sessions, total, nil
}

func (r *PaymentRepositoryImpl) UpdateStatus(ctx context.Context, id string, status entities.PaymentStatus) error {
	return r.db.WithContext(ctx).Model(&models.PaymentSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now(),
		}).Error
}

func (r *PaymentRepositoryImpl) ClaimPending(ctx context.Context, id, senderAddress string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentSession{}).
		Where("id = ? AND status = ?", id, entities.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":         entities.PaymentStatusProcessing,
			"sender_address": senderAddress,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PaymentRepositoryImpl) MarkSubmitted(ctx context.Context, id, txHash string) error {
	return r.db.WithContext(ctx).Model(&models.PaymentSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     entities.PaymentStatusSubmitted,
			"tx_hash":    txHash,
			"updated_at": time.Now(),
		}).Error
}

func (r *PaymentRepositoryImpl) MarkConfirmed(ctx context.Context, id string, confirmedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.PaymentSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       entities.PaymentStatusConfirmed,
			"confirmed_at": confirmedAt,
			"updated_at":   time.Now(),
		}).Error
}

func (r *PaymentRepositoryImpl) MarkFailed(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.PaymentSession{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     entities.PaymentStatusFailed,
			"updated_at": time.Now(),
		}).Error
}

func (r *PaymentRepositoryImpl) ExpireIfPending(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentSession{}).
		Where("id = ? AND status = ?", id, entities.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":     entities.PaymentStatusExpired,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PaymentRepositoryImpl) GetExpiredPending(ctx context.Context, now time.Time, limit int) ([]*entities.PaymentSession, error) {
	var ms []models.PaymentSession
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", entities.PaymentStatusPending, now).
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	sessions := make([]*entities.PaymentSession, 0, len(ms))
	for i := range ms {
		sessions = append(sessions, r.toEntity(&ms[i]))
	}
	return sessions, nil
}

func (r *PaymentRepositoryImpl) ExpireSessions(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&models.PaymentSession{}).
		Where("id IN ? AND status = ?", ids, entities.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":     entities.PaymentStatusExpired,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

func (r *PaymentRepositoryImpl) GetStuckSubmitted(ctx context.Context, cutoff time.Time, limit int) ([]*entities.PaymentSession, error) {
	var ms []models.PaymentSession
	if err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", entities.PaymentStatusSubmitted, cutoff).
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	sessions := make([]*entities.PaymentSession, 0, len(ms))
	for i := range ms {
		sessions = append(sessions, r.toEntity(&ms[i]))
	}
	return sessions, nil
}

func (r *PaymentRepositoryImpl) CountOldTerminal(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PaymentSession{}).
		Where("status IN ? AND created_at < ?", []string{
			string(entities.PaymentStatusConfirmed),
			string(entities.PaymentStatusFailed),
			string(entities.PaymentStatusExpired),
			string(entities.PaymentStatusRefunded),
		}, cutoff).
		Count(&count).Error
	return count, err
}

func (r *PaymentRepositoryImpl) CountByMerchantStatus(ctx context.Context, merchantAddress string) (map[entities.PaymentStatus]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).Model(&models.PaymentSession{}).
		Select("status, count(*) as count").
		Where("merchant_address = ?", merchantAddress).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[entities.PaymentStatus]int64, len(rows))
	for _, rw := range rows {
		counts[entities.PaymentStatus(rw.Status)] = rw.Count
	}
	return counts, nil
}

func (r *PaymentRepositoryImpl) toEntity(m *models.PaymentSession) *entities.PaymentSession {
	return &entities.PaymentSession{
		ID:              m.ID,
		MerchantAddress: m.MerchantAddress,
		Amount:          m.Amount,
		AmountRaw:       m.AmountRaw,
		Memo:            m.Memo,
		Status:          entities.PaymentStatus(m.Status),
		PaymentURI:      m.PaymentURI,
		SenderAddress:   null.StringFromPtr(m.SenderAddress),
		TxHash:          null.StringFromPtr(m.TxHash),
		ExpiresAt:       m.ExpiresAt,
		ConfirmedAt:     null.TimeFromPtr(m.ConfirmedAt),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
