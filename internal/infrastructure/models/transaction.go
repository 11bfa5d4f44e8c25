package models

import "time"

type Transaction struct {
	Hash            string `gorm:"type:varchar(70);primaryKey"`
	PaymentID       string `gorm:"type:varchar(32);not null;index"`
	MerchantAddress string `gorm:"type:varchar(66);not null;index"`
	SenderAddress   string `gorm:"type:varchar(66);not null"`
	Amount          string `gorm:"type:varchar(64);not null"`
	Memo            string `gorm:"type:text"`
	VMStatus        string `gorm:"type:varchar(255)"`
	CreatedAt       time.Time
}

func (Transaction) TableName() string {
	return "transactions"
}
