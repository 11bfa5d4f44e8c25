package models

import "time"

type PaymentSession struct {
	ID              string    `gorm:"type:varchar(32);primaryKey"`
	MerchantAddress string    `gorm:"type:varchar(66);not null;index"`
	Amount          string    `gorm:"type:varchar(64);not null"`
	AmountRaw       string    `gorm:"type:varchar(64);not null"`
	Memo            string    `gorm:"type:text"`
	Status          string    `gorm:"type:varchar(20);not null;index"`
	PaymentURI      string    `gorm:"type:text;not null"`
	SenderAddress   *string   `gorm:"type:varchar(66)"`
	TxHash          *string   `gorm:"type:varchar(70);index"`
	ExpiresAt       time.Time `gorm:"not null;index"`
	ConfirmedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (PaymentSession) TableName() string {
	return "payment_sessions"
}
