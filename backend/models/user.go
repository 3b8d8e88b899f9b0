package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name         string `gorm:"not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	Avatar       string
	Bio          string

	XP    int `gorm:"default:0"`
	Level int `gorm:"default:1"`

	Streak        int `gorm:"default:0"`
	LastStudyDate *time.Time

	Stats        UserStats `gorm:"embedded;embeddedPrefix:stats_"`
	ActivityLog  []ActivityEntry
	Certificates []Certificate
}

type UserStats struct {
	TotalMinutes     int `json:"total_minutes" gorm:"default:0"`
	LessonsCompleted int `json:"lessons_completed" gorm:"default:0"`
	QuizzesPassed    int `json:"quizzes_passed" gorm:"default:0"`
}

// ActivityEntry is one cell of the contribution heatmap: a calendar day
// with at least one recorded completion. Days without activity have no row.
type ActivityEntry struct {
	gorm.Model
	UserID uint   `gorm:"index:idx_activity_user_date,unique"`
	Date   string `gorm:"index:idx_activity_user_date,unique"` // YYYY-MM-DD
	Count  int    `gorm:"default:0"`
}
