package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"learntube/backend/models"
	"learntube/backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressService owns the lesson-completion state transition: course
// progress, XP/level, the daily activity log, streaks and certificate
// issuance all move together inside one transaction.
type ProgressService struct {
	DB          *gorm.DB
	Renderer    CertificateRenderer
	Leaderboard *LeaderboardService
	Logger      *log.Logger

	// Now is swappable so date-sensitive streak rules can be tested.
	Now func() time.Time
}

func NewProgressService(db *gorm.DB, renderer CertificateRenderer, leaderboard *LeaderboardService, logger *log.Logger) *ProgressService {
	return &ProgressService{
		DB:          db,
		Renderer:    renderer,
		Leaderboard: leaderboard,
		Logger:      logger,
		Now:         time.Now,
	}
}

const (
	xpPerLesson        = 50
	xpCompletionBonus  = 500
	defaultDurationMin = 10
)

// CompleteLesson marks a lesson watched for the owning user and applies
// every downstream effect: unlock the next lesson, recompute course
// progress, bump user stats/XP/level, log today's activity, maintain the
// streak and, at 100%, issue the completion certificate. Completing an
// already-watched lesson is a no-op, which makes blind client retries safe.
func (ps *ProgressService) CompleteLesson(userID, courseID, lessonID uint) (*models.Course, error) {
	var course models.Course
	var user models.User
	touched := false

	err := ps.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).First(&course, courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("course %d: %w", courseID, utils.ErrNotFound)
			}
			return fmt.Errorf("load course: %v: %w", err, utils.ErrPersistence)
		}

		if course.UserID != userID {
			return fmt.Errorf("course %d does not belong to user %d: %w", courseID, userID, utils.ErrForbidden)
		}

		idx := -1
		for i := range course.Lessons {
			if course.Lessons[i].ID == lessonID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return fmt.Errorf("lesson %d in course %d: %w", lessonID, courseID, utils.ErrNotFound)
		}

		lesson := &course.Lessons[idx]
		if lesson.Watched {
			return nil // already counted, nothing to do
		}
		touched = true

		lesson.Watched = true
		if err := tx.Model(lesson).Update("watched", true).Error; err != nil {
			return fmt.Errorf("save lesson: %v: %w", err, utils.ErrPersistence)
		}

		// Unlock the next lesson, or close out the course pointer.
		if idx+1 < len(course.Lessons) {
			course.CurrentIndex = course.Lessons[idx+1].Position
		} else {
			course.CurrentIndex = -1
		}

		course.CompletedLessons++
		course.Progress = progressPercent(course.CompletedLessons, course.TotalLessons)

		if err := tx.Omit("Lessons").Save(&course).Error; err != nil {
			return fmt.Errorf("save course: %v: %w", err, utils.ErrPersistence)
		}

		if err := tx.Preload("Certificates").First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user %d: %w", userID, utils.ErrNotFound)
			}
			return fmt.Errorf("load user: %v: %w", err, utils.ErrPersistence)
		}

		// Passing the gating quiz is part of completing a lesson, so both
		// counters move together.
		user.Stats.LessonsCompleted++
		user.Stats.QuizzesPassed++
		user.Stats.TotalMinutes += lessonMinutes(lesson.Duration)

		awardXP(&user, xpPerLesson)

		today := ps.Now()
		if err := ps.recordActivity(tx, &user, today); err != nil {
			return err
		}
		updateStreak(&user, today)

		if course.Progress == 100 && !hasCertificate(user, course.ID) {
			if err := ps.issueCertificate(tx, &user, &course, today); err != nil {
				return err
			}
		}

		if err := tx.Omit("ActivityLog", "Certificates").Save(&user).Error; err != nil {
			return fmt.Errorf("save user: %v: %w", err, utils.ErrPersistence)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if touched {
		ps.refreshLeaderboard(&user)
	}

	return &course, nil
}

// AddXP grants XP outside the lesson flow (standalone quizzes, revision
// sessions) with the same level, streak and activity-log rules.
func (ps *ProgressService) AddXP(userID uint, amount int, xpType string, timeSpent int) (*models.User, error) {
	if amount < 0 {
		return nil, fmt.Errorf("xp amount must be non-negative: %w", utils.ErrValidation)
	}

	var user models.User
	err := ps.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("user %d: %w", userID, utils.ErrNotFound)
			}
			return fmt.Errorf("load user: %v: %w", err, utils.ErrPersistence)
		}

		awardXP(&user, amount)

		if xpType == "quiz" {
			user.Stats.QuizzesPassed++
		}
		if timeSpent > 0 {
			user.Stats.TotalMinutes += timeSpent
			user.Stats.LessonsCompleted++
		}

		today := ps.Now()
		if err := ps.recordActivity(tx, &user, today); err != nil {
			return err
		}
		updateStreak(&user, today)

		if err := tx.Omit("ActivityLog", "Certificates").Save(&user).Error; err != nil {
			return fmt.Errorf("save user: %v: %w", err, utils.ErrPersistence)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	ps.refreshLeaderboard(&user)

	return &user, nil
}

func (ps *ProgressService) issueCertificate(tx *gorm.DB, user *models.User, course *models.Course, issuedAt time.Time) error {
	image, err := ps.Renderer.Render(user.Name, course.Title, issuedAt)
	if err != nil {
		// Certificate issuance is best-effort: never hold up progress.
		ps.Logger.Printf("certificate render failed for course %d: %v", course.ID, err)
		return nil
	}

	cert := models.Certificate{
		UserID:       user.ID,
		CourseID:     course.ID,
		CourseTitle:  course.Title,
		Thumbnail:    course.Thumbnail,
		SerialNumber: uuid.NewString(),
		IssuedAt:     issuedAt,
		ImageData:    image,
	}
	if err := tx.Create(&cert).Error; err != nil {
		return fmt.Errorf("save certificate: %v: %w", err, utils.ErrPersistence)
	}

	user.Certificates = append(user.Certificates, cert)
	awardXP(user, xpCompletionBonus)
	return nil
}

// recordActivity bumps today's heatmap cell, creating it on first activity
// of the day. The log stays sparse: days without activity have no row.
func (ps *ProgressService) recordActivity(tx *gorm.DB, user *models.User, today time.Time) error {
	dateStr := today.Format("2006-01-02")

	var entry models.ActivityEntry
	err := tx.Where("user_id = ? AND date = ?", user.ID, dateStr).First(&entry).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		entry = models.ActivityEntry{UserID: user.ID, Date: dateStr, Count: 1}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("create activity entry: %v: %w", err, utils.ErrPersistence)
		}
	case err != nil:
		return fmt.Errorf("load activity entry: %v: %w", err, utils.ErrPersistence)
	default:
		entry.Count++
		if err := tx.Save(&entry).Error; err != nil {
			return fmt.Errorf("save activity entry: %v: %w", err, utils.ErrPersistence)
		}
	}

	return nil
}

func (ps *ProgressService) refreshLeaderboard(user *models.User) {
	if ps.Leaderboard == nil {
		return
	}
	if err := ps.Leaderboard.Record(context.Background(), user.ID, user.XP); err != nil {
		ps.Logger.Printf("leaderboard refresh failed for user %d: %v", user.ID, err)
	}
}

// awardXP adds XP and recomputes the level, which only ever moves up.
func awardXP(user *models.User, amount int) {
	user.XP += amount
	if level := user.XP/100 + 1; level > user.Level {
		user.Level = level
	}
}

// updateStreak applies the calendar-day streak rules against today:
// already studied today leaves everything untouched, exactly one day since
// the last study extends the streak, any longer gap restarts it at 1.
func updateStreak(user *models.User, today time.Time) {
	todayStr := today.Format("2006-01-02")

	last := ""
	if user.LastStudyDate != nil {
		last = user.LastStudyDate.Format("2006-01-02")
	}
	if last == todayStr {
		return
	}

	yesterdayStr := today.AddDate(0, 0, -1).Format("2006-01-02")
	if last == yesterdayStr {
		user.Streak++
	} else {
		user.Streak = 1
	}

	studiedAt := today
	user.LastStudyDate = &studiedAt
}

func progressPercent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

func lessonMinutes(duration int) int {
	if duration <= 0 {
		return defaultDurationMin
	}
	return duration
}

func hasCertificate(user models.User, courseID uint) bool {
	for _, cert := range user.Certificates {
		if cert.CourseID == courseID {
			return true
		}
	}
	return false
}
