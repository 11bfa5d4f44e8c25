package entities

import "time"

// Transaction is the immutable settlement record written when a submission
// reaches the ledger. Merchant, sender, amount and memo are denormalized
// copies captured at settlement time so the audit trail survives session
// cleanup.
type Transaction struct {
	Hash            string    `json:"hash"`
	PaymentID       string    `json:"paymentId"`
	MerchantAddress string    `json:"merchantAddress"`
	SenderAddress   string    `json:"senderAddress"`
	Amount          string    `json:"amount"`
	Memo            string    `json:"memo,omitempty"`
	VMStatus        string    `json:"vmStatus"`
	CreatedAt       time.Time `json:"createdAt"`
}
