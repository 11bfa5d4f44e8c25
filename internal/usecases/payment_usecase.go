package usecases

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"tapmove.backend/internal/domain/entities"
	"tapmove.backend/internal/domain/errors"
	"tapmove.backend/internal/domain/repositories"
	"tapmove.backend/internal/infrastructure/ledger"
	"tapmove.backend/pkg/currency"
	"tapmove.backend/pkg/logger"
	"tapmove.backend/pkg/metrics"
	"tapmove.backend/pkg/utils"
)

// PaymentConfig carries the lifecycle knobs for payment sessions.
type PaymentConfig struct {
	DefaultTTL       time.Duration
	MinExpirySeconds int
	MaxExpirySeconds int
	URIScheme        string
	WebBaseURL       string // optional hosted checkout page; empty disables webUrl
	Decimals         int
}

func (c PaymentConfig) withDefaults() PaymentConfig {
	if c.DefaultTTL <= 0 {
		c.DefaultTTL = 15 * time.Minute
	}
	if c.MinExpirySeconds <= 0 {
		c.MinExpirySeconds = 60
	}
	if c.MaxExpirySeconds <= 0 {
		c.MaxExpirySeconds = 3600
	}
	if c.URIScheme == "" {
		c.URIScheme = "tapmove"
	}
	if c.Decimals <= 0 {
		c.Decimals = currency.DefaultDecimals
	}
	return c
}

// PaymentUsecase owns the payment session lifecycle: creation, lazy expiry,
// settlement, and status reconciliation. All status changes funnel through
// the repository's conditional-update primitives.
type PaymentUsecase struct {
	paymentRepo  repositories.PaymentRepository
	merchantRepo repositories.MerchantRepository
	txRepo       repositories.TransactionRepository
	ledger       ledger.Service
	notifier     Notifier
	cfg          PaymentConfig
	now          func() time.Time
}

func NewPaymentUsecase(
	paymentRepo repositories.PaymentRepository,
	merchantRepo repositories.MerchantRepository,
	txRepo repositories.TransactionRepository,
	ledgerSvc ledger.Service,
	notifier Notifier,
	cfg PaymentConfig,
) *PaymentUsecase {
	return &PaymentUsecase{
		paymentRepo:  paymentRepo,
		merchantRepo: merchantRepo,
		txRepo:       txRepo,
		ledger:       ledgerSvc,
		notifier:     notifier,
		cfg:          cfg.withDefaults(),
		now:          time.Now,
	}
}

type CreatePaymentInput struct {
	MerchantAddress string
	Amount          string
	Memo            string
	ExpiresIn       int // seconds, 0 means the configured default
}

type CreatePaymentOutput struct {
	ID         string    `json:"id"`
	PaymentURI string    `json:"paymentUri"`
	WebURL     string    `json:"webUrl,omitempty"`
	Amount     string    `json:"amount"`
	AmountRaw  string    `json:"amountRaw"`
	Status     string    `json:"status"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// CreatePayment validates input, generates the session ID and deep-link URI,
// and persists a pending session. Validation happens before any write.
func (uc *PaymentUsecase) CreatePayment(ctx context.Context, input CreatePaymentInput) (*CreatePaymentOutput, error) {
	if !entities.IsValidAddress(input.MerchantAddress) {
		return nil, errors.Validation("merchantAddress must be a 64-character hex address")
	}

	raw, err := currency.ParseAmount(input.Amount, uc.cfg.Decimals)
	if err != nil {
		return nil, errors.Validation(fmt.Sprintf("invalid amount: %v", err))
	}
	if raw.Sign() <= 0 {
		return nil, errors.Validation("amount must be positive")
	}

	ttl := uc.cfg.DefaultTTL
	if input.ExpiresIn != 0 {
		if input.ExpiresIn < uc.cfg.MinExpirySeconds || input.ExpiresIn > uc.cfg.MaxExpirySeconds {
			return nil, errors.Validation(fmt.Sprintf(
				"expiresIn must be between %d and %d seconds", uc.cfg.MinExpirySeconds, uc.cfg.MaxExpirySeconds))
		}
		ttl = time.Duration(input.ExpiresIn) * time.Second
	}

	id, err := utils.GeneratePaymentID()
	if err != nil {
		return nil, errors.InternalError(err)
	}

	session := &entities.PaymentSession{
		ID:              id,
		MerchantAddress: entities.NormalizeAddress(input.MerchantAddress),
		Amount:          input.Amount,
		AmountRaw:       raw.String(),
		Memo:            input.Memo,
		Status:          entities.PaymentStatusPending,
		PaymentURI:      fmt.Sprintf("%s://pay?id=%s", uc.cfg.URIScheme, id),
		ExpiresAt:       uc.now().Add(ttl),
	}

	if err := uc.paymentRepo.Create(ctx, session); err != nil {
		return nil, errors.InternalError(err)
	}

	out := &CreatePaymentOutput{
		ID:         session.ID,
		PaymentURI: session.PaymentURI,
		Amount:     session.Amount,
		AmountRaw:  session.AmountRaw,
		Status:     string(session.Status),
		ExpiresAt:  session.ExpiresAt,
	}
	if uc.cfg.WebBaseURL != "" {
		out.WebURL = fmt.Sprintf("%s/pay/%s", strings.TrimSuffix(uc.cfg.WebBaseURL, "/"), id)
	}
	return out, nil
}

// GetPayment fetches a session, lazily expiring it when its deadline passed
// while it was still pending. Both this path and the sweeper funnel through
// the same conditional-update primitive, so double expiry is a no-op.
func (uc *PaymentUsecase) GetPayment(ctx context.Context, id string) (*entities.PaymentSession, error) {
	session, err := uc.paymentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("payment not found")
		}
		return nil, errors.InternalError(err)
	}

	if session.Status == entities.PaymentStatusPending && session.IsExpired(uc.now()) {
		won, err := uc.paymentRepo.ExpireIfPending(ctx, id)
		if err != nil {
			return nil, errors.InternalError(err)
		}
		if won {
			session.Status = entities.PaymentStatusExpired
			metrics.PaymentsExpired.WithLabelValues("lazy").Inc()
		} else {
			// someone else transitioned it first; re-read for the truth
			session, err = uc.paymentRepo.GetByID(ctx, id)
			if err != nil {
				return nil, errors.InternalError(err)
			}
		}
	}

	return session, nil
}

type PaymentStatusOutput struct {
	Status      entities.PaymentStatus `json:"status"`
	TxHash      string                 `json:"txHash,omitempty"`
	ConfirmedAt *time.Time             `json:"confirmedAt,omitempty"`
}

// GetPaymentStatus polls a session's status. Sessions sitting in submitted
// are reconciled against the ledger by their known hash.
func (uc *PaymentUsecase) GetPaymentStatus(ctx context.Context, id string) (*PaymentStatusOutput, error) {
	session, err := uc.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Status == entities.PaymentStatusSubmitted && session.TxHash.Valid {
		if reconciled, rerr := uc.ReconcileSubmitted(ctx, session); rerr == nil {
			session = reconciled
		}
	}

	out := &PaymentStatusOutput{Status: session.Status, TxHash: session.TxHash.String}
	if session.ConfirmedAt.Valid {
		t := session.ConfirmedAt.Time
		out.ConfirmedAt = &t
	}
	return out, nil
}

// ReconcileSubmitted resolves a submitted session against the chain by its
// known hash. Used by the status poll and the sweeper's stuck-settlement
// pass. Sessions the node has not committed yet are returned unchanged.
func (uc *PaymentUsecase) ReconcileSubmitted(ctx context.Context, session *entities.PaymentSession) (*entities.PaymentSession, error) {
	status, err := uc.ledger.GetTransactionStatus(ctx, session.TxHash.String)
	if err != nil {
		return session, err
	}
	if !status.Exists || status.Pending {
		return session, nil
	}

	if status.Success {
		confirmedAt := parseLedgerTimestamp(status.Timestamp, uc.now())
		if err := uc.paymentRepo.MarkConfirmed(ctx, session.ID, confirmedAt); err != nil {
			return session, err
		}
		session.Status = entities.PaymentStatusConfirmed
		session.ConfirmedAt.SetValid(confirmedAt)
		metrics.SettlementsProcessed.WithLabelValues("reconciled_confirmed").Inc()
	} else {
		if err := uc.paymentRepo.MarkFailed(ctx, session.ID); err != nil {
			return session, err
		}
		session.Status = entities.PaymentStatusFailed
		metrics.SettlementsProcessed.WithLabelValues("reconciled_failed").Inc()
	}
	return session, nil
}

// BuildTransaction prepares an unsigned payment transaction for the sender
// to sign. Only pending, unexpired sessions can be built against.
func (uc *PaymentUsecase) BuildTransaction(ctx context.Context, id, senderAddress string) (*ledger.BuiltTransaction, error) {
	if !entities.IsValidAddress(senderAddress) {
		return nil, errors.Validation("senderAddress must be a 64-character hex address")
	}

	session, err := uc.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status == entities.PaymentStatusExpired {
		return nil, errors.Expired("payment has expired")
	}
	if session.Status != entities.PaymentStatusPending {
		return nil, errors.InvalidState(fmt.Sprintf("payment is not pending, current status: %s", session.Status))
	}

	built, err := uc.ledger.BuildPaymentTransaction(ctx,
		entities.NormalizeAddress(senderAddress),
		session.MerchantAddress,
		session.AmountRaw,
		session.ID,
		session.Memo,
	)
	if err != nil {
		return nil, errors.Ledger("failed to build transaction", err)
	}
	return built, nil
}

type ProcessPaymentOutput struct {
	Success  bool                   `json:"success"`
	TxHash   string                 `json:"txHash,omitempty"`
	Status   entities.PaymentStatus `json:"status"`
	VMStatus string                 `json:"vmStatus,omitempty"`
}

// ProcessPayment submits a caller-signed envelope to the ledger and
// reconciles the outcome into the session. The session is claimed with a
// conditional update first, so a concurrent sweep or duplicate submission
// loses cleanly. Whatever the ledger does, the session always ends in a
// known state before this returns.
func (uc *PaymentUsecase) ProcessPayment(ctx context.Context, id string, signed *ledger.SignedTransaction, senderAddress string) (*ProcessPaymentOutput, error) {
	if !entities.IsValidAddress(senderAddress) {
		return nil, errors.Validation("senderAddress must be a 64-character hex address")
	}

	session, err := uc.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Status == entities.PaymentStatusExpired {
		return nil, errors.Expired("payment has expired")
	}
	if session.Status != entities.PaymentStatusPending {
		return nil, errors.InvalidState(fmt.Sprintf("payment is not pending, current status: %s", session.Status))
	}
	// re-verify the deadline; the lazy check above raced against the clock
	if session.IsExpired(uc.now()) {
		if _, err := uc.paymentRepo.ExpireIfPending(ctx, id); err != nil {
			return nil, errors.InternalError(err)
		}
		return nil, errors.Expired("payment has expired")
	}

	sender := entities.NormalizeAddress(senderAddress)
	claimed, err := uc.paymentRepo.ClaimPending(ctx, id, sender)
	if err != nil {
		return nil, errors.InternalError(err)
	}
	if !claimed {
		return nil, errors.InvalidState("payment was claimed by another operation")
	}

	result, err := uc.ledger.Submit(ctx, signed)
	if err != nil {
		// transport or timeout failure: reconcile to failed, then propagate
		if ferr := uc.paymentRepo.MarkFailed(ctx, id); ferr != nil {
			logger.Error(ctx, "failed to mark payment failed after ledger error",
				zap.String("payment_id", id), zap.Error(ferr))
		}
		metrics.SettlementsProcessed.WithLabelValues("error").Inc()
		return nil, errors.Ledger("ledger submission failed", err)
	}

	if result.Hash != "" {
		if err := uc.paymentRepo.MarkSubmitted(ctx, id, result.Hash); err != nil {
			return nil, errors.InternalError(err)
		}
	}

	if !result.Success {
		if err := uc.paymentRepo.MarkFailed(ctx, id); err != nil {
			return nil, errors.InternalError(err)
		}
		metrics.SettlementsProcessed.WithLabelValues("failed").Inc()
		return &ProcessPaymentOutput{
			Success:  false,
			TxHash:   result.Hash,
			Status:   entities.PaymentStatusFailed,
			VMStatus: result.VMStatus,
		}, nil
	}

	confirmedAt := uc.now()
	if err := uc.paymentRepo.MarkConfirmed(ctx, id, confirmedAt); err != nil {
		return nil, errors.InternalError(err)
	}

	if err := uc.txRepo.Create(ctx, &entities.Transaction{
		Hash:            result.Hash,
		PaymentID:       id,
		MerchantAddress: session.MerchantAddress,
		SenderAddress:   sender,
		Amount:          session.Amount,
		Memo:            session.Memo,
		VMStatus:        result.VMStatus,
	}); err != nil {
		logger.Error(ctx, "failed to record settlement transaction",
			zap.String("payment_id", id), zap.String("tx_hash", result.Hash), zap.Error(err))
	}

	// advisory counters, never on the critical path
	if err := uc.merchantRepo.IncrementStats(ctx, session.MerchantAddress, session.Amount); err != nil {
		logger.Warn(ctx, "failed to increment merchant stats",
			zap.String("merchant", session.MerchantAddress), zap.Error(err))
	}

	session.TxHash.SetValid(result.Hash)
	session.SenderAddress.SetValid(sender)
	uc.notifier.NotifyPaymentCompleted(ctx, session)

	metrics.SettlementsProcessed.WithLabelValues("confirmed").Inc()
	return &ProcessPaymentOutput{
		Success:  true,
		TxHash:   result.Hash,
		Status:   entities.PaymentStatusConfirmed,
		VMStatus: result.VMStatus,
	}, nil
}

// UpdateStatus applies a guarded state change. Transitions out of terminal
// states and transitions the state machine does not permit are rejected.
func (uc *PaymentUsecase) UpdateStatus(ctx context.Context, id string, newStatus entities.PaymentStatus) error {
	session, err := uc.GetPayment(ctx, id)
	if err != nil {
		return err
	}

	if session.Status.IsTerminal() {
		return errors.InvalidState(fmt.Sprintf("payment is already %s", session.Status))
	}
	if !session.Status.CanTransitionTo(newStatus) {
		return errors.InvalidState(fmt.Sprintf("cannot transition from %s to %s", session.Status, newStatus))
	}

	if err := uc.paymentRepo.UpdateStatus(ctx, id, newStatus); err != nil {
		return errors.InternalError(err)
	}

	uc.notifier.NotifyStatusChanged(ctx, session.MerchantAddress, id, newStatus)
	return nil
}

// ListMerchantPayments returns a merchant's sessions, optionally filtered by
// status, newest first.
func (uc *PaymentUsecase) ListMerchantPayments(ctx context.Context, merchantAddress string, status entities.PaymentStatus, p utils.Pagination) ([]*entities.PaymentSession, int64, error) {
	sessions, total, err := uc.paymentRepo.GetByMerchant(ctx, entities.NormalizeAddress(merchantAddress), status, p)
	if err != nil {
		return nil, 0, errors.InternalError(err)
	}
	return sessions, total, nil
}

// parseLedgerTimestamp converts the fullnode's microsecond timestamp string.
// Falls back to the local clock when the node gives nothing usable.
func parseLedgerTimestamp(ts string, fallback time.Time) time.Time {
	micros, err := strconv.ParseInt(ts, 10, 64)
	if err != nil || micros <= 0 {
		return fallback
	}
	return time.UnixMicro(micros).UTC()
}
