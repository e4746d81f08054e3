package model

import "time"

// DeliveryStatus enumerates the terminal states of a single send attempt.
type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliverySuccess DeliveryStatus = "success"
	DeliveryFailed  DeliveryStatus = "failed"
	DeliveryExpired DeliveryStatus = "expired"
)

// Delivery is one attempted send of one campaign to one subscriber. Rows are
// owned exclusively by their campaign; the terminal status is written once.
type Delivery struct {
	ID           int64          `gorm:"primaryKey"`
	CampaignID   int64          `gorm:"index;not null"`
	SubscriberID int64          `gorm:"index;not null"`
	Status       DeliveryStatus `gorm:"size:16;not null"`
	Error        string         `gorm:"size:512"`
	CreatedAt    time.Time      `gorm:"not null"`
}
