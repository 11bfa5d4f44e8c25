package entities

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Merchant represents a registered merchant. Address is the identity and is
// stored lowercased with a 0x prefix. The plaintext API key is never
// persisted, only its hash.
type Merchant struct {
	Address           string      `json:"address"`
	Name              string      `json:"name"`
	Category          string      `json:"category"`
	LogoURL           null.String `json:"logoUrl,omitempty"`
	WebhookURL        null.String `json:"webhookUrl,omitempty"`
	APIKeyHash        string      `json:"-"`
	Verified          bool        `json:"verified"`
	IsActive          bool        `json:"isActive"`
	TotalVolume       string      `json:"totalVolume"`
	TotalTransactions int64       `json:"totalTransactions"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// MerchantStats summarizes a merchant's payment sessions by status together
// with the advisory aggregate counters. The aggregates lag the transaction
// table and are recomputable from it.
type MerchantStats struct {
	TotalPayments     int64  `json:"totalPayments"`
	Pending           int64  `json:"pending"`
	Completed         int64  `json:"completed"`
	Failed            int64  `json:"failed"`
	Expired           int64  `json:"expired"`
	TotalVolume       string `json:"totalVolume"`
	TotalTransactions int64  `json:"totalTransactions"`
}
