package models

import "time"

type Merchant struct {
	Address           string  `gorm:"type:varchar(66);primaryKey"`
	Name              string  `gorm:"type:varchar(255);not null"`
	Category          string  `gorm:"type:varchar(100);not null"`
	LogoURL           *string `gorm:"type:text"`
	WebhookURL        *string `gorm:"type:text"`
	APIKeyHash        string  `gorm:"type:varchar(64);not null;uniqueIndex"`
	Verified          bool    `gorm:"not null;default:false"`
	IsActive          bool    `gorm:"not null;default:true"`
	TotalVolume       string  `gorm:"type:varchar(64);not null;default:'0'"`
	TotalTransactions int64   `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Merchant) TableName() string {
	return "merchants"
}
