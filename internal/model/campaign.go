package model

import "time"

// Campaign is one row per send action: the resolved payload plus aggregate
// outcome counters. After dispatch completes the counters must equal the
// status tally of the campaign's delivery rows.
type Campaign struct {
	ID         int64  `gorm:"primaryKey"`
	OperatorID int64  `gorm:"index;not null"`
	Title      string `gorm:"size:256;not null"`
	Body       string `gorm:"size:1024"`
	Icon       string `gorm:"size:512"`
	URL        string `gorm:"size:512"`
	// Extras carries the remaining payload fields (image, badge, tag,
	// requireInteraction, vibrate, custom data) as serialized JSON.
	Extras          string    `gorm:"type:text"`
	TotalRecipients int       `gorm:"not null"`
	SuccessCount    int       `gorm:"not null"`
	FailedCount     int       `gorm:"not null"`
	ExpiredCount    int       `gorm:"not null"`
	ClickCount      int       `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null"`
}
