package entities

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// PaymentStatus represents the status of a payment session
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusSubmitted  PaymentStatus = "submitted"
	PaymentStatusConfirmed  PaymentStatus = "confirmed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusExpired    PaymentStatus = "expired"
	PaymentStatusRefunded   PaymentStatus = "refunded"
)

// IsTerminal reports whether no further transition is permitted.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusConfirmed, PaymentStatusFailed, PaymentStatusExpired, PaymentStatusRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine permits moving from s to
// next. Transitions are monotonic: a session never returns to pending, and
// any non-terminal state may fail.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == PaymentStatusFailed {
		return true
	}
	switch s {
	case PaymentStatusPending:
		return next == PaymentStatusProcessing || next == PaymentStatusSubmitted || next == PaymentStatusExpired
	case PaymentStatusProcessing:
		return next == PaymentStatusSubmitted
	case PaymentStatusSubmitted:
		return next == PaymentStatusConfirmed
	}
	return false
}

// PaymentSession represents a single payment request tracked through the
// state machine. Amount, AmountRaw, Memo, PaymentURI and ExpiresAt are fixed
// at creation; SenderAddress and TxHash are set at most once during
// settlement.
type PaymentSession struct {
	ID              string        `json:"id"`
	MerchantAddress string        `json:"merchantAddress"`
	Amount          string        `json:"amount"`
	AmountRaw       string        `json:"amountRaw"`
	Memo            string        `json:"memo,omitempty"`
	Status          PaymentStatus `json:"status"`
	PaymentURI      string        `json:"paymentUri"`
	SenderAddress   null.String   `json:"senderAddress,omitempty"`
	TxHash          null.String   `json:"txHash,omitempty"`
	ExpiresAt       time.Time     `json:"expiresAt"`
	ConfirmedAt     null.Time     `json:"confirmedAt,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// IsExpired reports whether the session's deadline has passed.
func (p *PaymentSession) IsExpired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
