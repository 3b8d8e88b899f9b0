package models

import (
	"time"

	"gorm.io/gorm"
)

// Certificate is issued at most once per (user, course) pair.
type Certificate struct {
	gorm.Model
	UserID       uint `gorm:"index:idx_cert_user_course,unique"`
	CourseID     uint `gorm:"index:idx_cert_user_course,unique"`
	CourseTitle  string
	Thumbnail    string
	SerialNumber string `gorm:"unique"`
	IssuedAt     time.Time
	ImageData    string // data:image/png;base64 URL
}
