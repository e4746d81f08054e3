package model

import "time"

// Operator represents an account that owns subscribers and campaigns.
type Operator struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"uniqueIndex;size:128;not null"`
	Token     string    `gorm:"uniqueIndex;size:64;not null"`
	Email     string    `gorm:"size:256"`
	CreatedAt time.Time `gorm:"not null"`
}
