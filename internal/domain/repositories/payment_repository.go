package repositories

import (
	"context"
	"time"

	"tapmove.backend/internal/domain/entities"
	"tapmove.backend/pkg/utils"
)

// PaymentRepository defines payment session data operations
type PaymentRepository interface {
	Create(ctx context.Context, session *entities.PaymentSession) error
	GetByID(ctx context.Context, id string) (*entities.PaymentSession, error)
	GetByMerchant(ctx context.Context, merchantAddress string, status entities.PaymentStatus, p utils.Pagination) ([]*entities.PaymentSession, int64, error)
	UpdateStatus(ctx context.Context, id string, status entities.PaymentStatus) error

	// ClaimPending atomically moves a pending session to processing and
	// records the sender. Returns false when the session was not pending,
	// so concurrent settlement attempts lose cleanly.
	ClaimPending(ctx context.Context, id, senderAddress string) (bool, error)

	MarkSubmitted(ctx context.Context, id, txHash string) error
	MarkConfirmed(ctx context.Context, id string, confirmedAt time.Time) error
	MarkFailed(ctx context.Context, id string) error

	// ExpireIfPending conditionally expires a single session. Returns false
	// when the session was already out of pending.
	ExpireIfPending(ctx context.Context, id string) (bool, error)

	GetExpiredPending(ctx context.Context, now time.Time, limit int) ([]*entities.PaymentSession, error)

	// ExpireSessions batch-expires the given IDs, guarded on pending status.
	// Returns the number of rows actually transitioned.
	ExpireSessions(ctx context.Context, ids []string) (int64, error)

	// GetStuckSubmitted returns submitted sessions older than cutoff, for
	// ledger reconciliation.
	GetStuckSubmitted(ctx context.Context, cutoff time.Time, limit int) ([]*entities.PaymentSession, error)

	// CountOldTerminal counts terminal sessions past the retention window.
	CountOldTerminal(ctx context.Context, cutoff time.Time) (int64, error)

	CountByMerchantStatus(ctx context.Context, merchantAddress string) (map[entities.PaymentStatus]int64, error)
}
