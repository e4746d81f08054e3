package model

import "time"

// Subscriber holds a browser push subscription. The endpoint URL issued by
// the browser's push service is the durable identity: a re-subscribe from the
// same endpoint updates the row in place.
type Subscriber struct {
	ID         int64     `gorm:"primaryKey"`
	Endpoint   string    `gorm:"uniqueIndex;not null"`
	P256DH     string    `gorm:"column:p256dh;not null"`
	Auth       string    `gorm:"not null"`
	OperatorID *int64    `gorm:"index"`
	UserAgent  string    `gorm:"size:512"`
	Device     string    `gorm:"size:32"`
	Browser    string    `gorm:"size:32"`
	Active     bool      `gorm:"not null;index"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}
