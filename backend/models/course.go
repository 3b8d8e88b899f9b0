package models

import "gorm.io/gorm"

type Course struct {
	gorm.Model
	UserID      uint `gorm:"index;not null"`
	Title       string
	PlaylistURL string
	Thumbnail   string
	Instructor  string

	TotalLessons     int `gorm:"default:0"`
	CompletedLessons int `gorm:"default:0"`
	Progress         int `gorm:"default:0"` // 0-100, round(completed/total*100)

	// CurrentIndex is the position of the lesson the learner is on.
	// -1 once every lesson is watched.
	CurrentIndex int `gorm:"default:0"`

	Lessons []Lesson
}

type Lesson struct {
	gorm.Model
	CourseID  uint `gorm:"index"`
	YoutubeID string
	Title     string
	Thumbnail string
	Duration  int `gorm:"default:10"` // minutes
	Position  int
	Watched   bool `gorm:"default:false"`
	Notes     string

	Quiz       []QuizQuestion
	Flashcards []Flashcard
}

type QuizQuestion struct {
	gorm.Model
	LessonID      uint   `gorm:"index"`
	Question      string
	Options       string // JSON array of 4 option strings
	CorrectAnswer string // exact copy of one of the options
}

type Flashcard struct {
	gorm.Model
	LessonID uint `gorm:"index"`
	Front    string
	Back     string
}
