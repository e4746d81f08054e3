package model

import "time"

// Click records one click on a delivered notification. The operator id is
// denormalized from the campaign at write time for fast reporting.
type Click struct {
	ID         int64     `gorm:"primaryKey"`
	CampaignID int64     `gorm:"index;not null"`
	DeliveryID *int64    `gorm:"index"`
	OperatorID int64     `gorm:"index;not null"`
	TargetURL  string    `gorm:"size:512;not null"`
	IP         string    `gorm:"size:64"`
	UserAgent  string    `gorm:"size:512"`
	Device     string    `gorm:"size:32"`
	Browser    string    `gorm:"size:32"`
	CreatedAt  time.Time `gorm:"not null"`
}
