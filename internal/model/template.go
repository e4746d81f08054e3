package model

import "time"

// Template holds reusable notification content owned by an operator.
type Template struct {
	ID                 int64  `gorm:"primaryKey"`
	OperatorID         int64  `gorm:"index;not null"`
	Name               string `gorm:"size:128;not null"`
	Title              string `gorm:"size:256;not null"`
	Body               string `gorm:"size:1024"`
	Icon               string `gorm:"size:512"`
	Image              string `gorm:"size:512"`
	Badge              string `gorm:"size:512"`
	Tag                string `gorm:"size:64"`
	URL                string `gorm:"size:512"`
	RequireInteraction bool
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}
