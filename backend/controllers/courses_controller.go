package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"learntube/backend/config"
	"learntube/backend/models"
	"learntube/backend/services"
	"learntube/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CoursesController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Progress *services.ProgressService
	AI       *services.AIService
}

func NewCoursesController(db *gorm.DB, cfg *config.Config, progress *services.ProgressService, ai *services.AIService) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg, Progress: progress, AI: ai}
}

// GetCourses godoc
// @Summary List the learner's courses
// @Tags courses
// @Produce json
// @Success 200 {array} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses [get]
func (cc *CoursesController) GetCourses(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var courses []models.Course
	if err := cc.DB.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		result = append(result, fiber.Map{
			"id":                course.ID,
			"title":             course.Title,
			"playlist_url":      course.PlaylistURL,
			"thumbnail":         course.Thumbnail,
			"instructor":        course.Instructor,
			"total_lessons":     course.TotalLessons,
			"completed_lessons": course.CompletedLessons,
			"progress":          course.Progress,
		})
	}

	return c.JSON(result)
}

func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	course, err := cc.loadOwnedCourse(c, userID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	return c.JSON(courseJSON(course))
}

// CreateCourse godoc
// @Summary Import a playlist as a course
// @Description Builds a sequential course from ordered lesson metadata
// @Tags courses
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses [post]
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Title       string                    `json:"title"`
		PlaylistURL string                    `json:"playlistUrl"`
		Thumbnail   string                    `json:"thumbnail"`
		Instructor  string                    `json:"instructor"`
		Lessons     []services.ImportedLesson `json:"lessons"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Title == "" || len(input.Lessons) == 0 {
		return utils.BadRequest(c, "Invalid course data")
	}

	course := models.Course{
		UserID:       userID,
		Title:        input.Title,
		PlaylistURL:  input.PlaylistURL,
		Thumbnail:    input.Thumbnail,
		Instructor:   input.Instructor,
		TotalLessons: len(input.Lessons),
		CurrentIndex: 0,
	}

	for i, lesson := range input.Lessons {
		duration := lesson.Duration
		if duration <= 0 {
			duration = 10
		}
		course.Lessons = append(course.Lessons, models.Lesson{
			YoutubeID: lesson.YoutubeID,
			Title:     lesson.Title,
			Thumbnail: lesson.Thumbnail,
			Duration:  duration,
			Position:  i,
		})
	}

	if err := cc.DB.Create(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}

	return c.Status(fiber.StatusCreated).JSON(courseJSON(&course))
}

// UpdateProgress godoc
// @Summary Complete a lesson
// @Description Marks a lesson watched and applies progress, XP, streak and certificate effects
// @Tags courses
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /courses/{id}/progress [patch]
func (cc *CoursesController) UpdateProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input struct {
		LessonID uint `json:"lesson_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	course, err := cc.Progress.CompleteLesson(userID, uint(courseID), input.LessonID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	return c.JSON(courseJSON(course))
}

// UpdateNotes overwrites a lesson's notes. Last write wins, no rules.
func (cc *CoursesController) UpdateNotes(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		LessonID uint   `json:"lesson_id"`
		Notes    string `json:"notes"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	course, err := cc.loadOwnedCourse(c, userID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	lesson := findLesson(course, input.LessonID)
	if lesson == nil {
		return utils.NotFound(c, "Lesson not found")
	}

	if err := cc.DB.Model(lesson).Update("notes", input.Notes).Error; err != nil {
		return utils.InternalServerError(c, "Could not save notes")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"notes":   input.Notes,
	})
}

func (cc *CoursesController) DeleteCourse(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	course, err := cc.loadOwnedCourse(c, userID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	if err := cc.DB.Select("Lessons").Delete(course).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete course")
	}

	return c.JSON(fiber.Map{
		"message": "Course removed",
	})
}

// GenerateLessonQuiz creates the gating quiz for a lesson and stores it,
// replacing any previous generation.
func (cc *CoursesController) GenerateLessonQuiz(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	course, err := cc.loadOwnedCourse(c, userID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	lessonID, err := strconv.Atoi(c.Params("lessonId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	lesson := findLesson(course, uint(lessonID))
	if lesson == nil {
		return utils.NotFound(c, "Lesson not found")
	}

	questions, err := cc.AI.GenerateQuiz(lesson.Title, "")
	if err != nil {
		return utils.RespondError(c, err)
	}

	if err := cc.DB.Where("lesson_id = ?", lesson.ID).Delete(&models.QuizQuestion{}).Error; err != nil {
		return utils.InternalServerError(c, "Could not replace quiz")
	}

	stored := make([]models.QuizQuestion, 0, len(questions))
	for _, q := range questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return utils.InternalServerError(c, "Could not encode quiz options")
		}
		stored = append(stored, models.QuizQuestion{
			LessonID:      lesson.ID,
			Question:      q.Question,
			Options:       string(options),
			CorrectAnswer: q.CorrectAnswer,
		})
	}

	if len(stored) > 0 {
		if err := cc.DB.Create(&stored).Error; err != nil {
			return utils.InternalServerError(c, "Could not save quiz")
		}
	}

	return c.JSON(questions)
}

// GenerateLessonFlashcards creates and stores the lesson's flashcard set.
func (cc *CoursesController) GenerateLessonFlashcards(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	course, err := cc.loadOwnedCourse(c, userID)
	if err != nil {
		return utils.RespondError(c, err)
	}

	lessonID, err := strconv.Atoi(c.Params("lessonId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	lesson := findLesson(course, uint(lessonID))
	if lesson == nil {
		return utils.NotFound(c, "Lesson not found")
	}

	cards, err := cc.AI.GenerateFlashcards(lesson.Title)
	if err != nil {
		return utils.RespondError(c, err)
	}

	if err := cc.DB.Where("lesson_id = ?", lesson.ID).Delete(&models.Flashcard{}).Error; err != nil {
		return utils.InternalServerError(c, "Could not replace flashcards")
	}

	stored := make([]models.Flashcard, 0, len(cards))
	for _, card := range cards {
		stored = append(stored, models.Flashcard{
			LessonID: lesson.ID,
			Front:    card.Front,
			Back:     card.Back,
		})
	}

	if len(stored) > 0 {
		if err := cc.DB.Create(&stored).Error; err != nil {
			return utils.InternalServerError(c, "Could not save flashcards")
		}
	}

	return c.JSON(cards)
}

// loadOwnedCourse fetches the course in the :id param with its lessons and
// verifies the requesting learner owns it. Failures come back as the
// sentinel error kinds so handlers respond with utils.RespondError.
func (cc *CoursesController) loadOwnedCourse(c *fiber.Ctx, userID uint) (*models.Course, error) {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return nil, fmt.Errorf("invalid course id %q: %w", c.Params("id"), utils.ErrValidation)
	}

	var course models.Course
	if err := cc.DB.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Preload("Lessons.Quiz").Preload("Lessons.Flashcards").
		First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("course %d: %w", courseID, utils.ErrNotFound)
		}
		return nil, fmt.Errorf("load course: %v: %w", err, utils.ErrPersistence)
	}

	if course.UserID != userID {
		return nil, fmt.Errorf("course %d does not belong to user %d: %w", courseID, userID, utils.ErrForbidden)
	}

	return &course, nil
}

func findLesson(course *models.Course, lessonID uint) *models.Lesson {
	for i := range course.Lessons {
		if course.Lessons[i].ID == lessonID {
			return &course.Lessons[i]
		}
	}
	return nil
}

// courseJSON shapes a course for the client. A lesson's is_current flag is
// derived from the course's single current-lesson pointer, so at most one
// lesson can ever carry it.
func courseJSON(course *models.Course) fiber.Map {
	lessons := make([]fiber.Map, 0, len(course.Lessons))
	for _, lesson := range course.Lessons {
		entry := fiber.Map{
			"id":         lesson.ID,
			"youtube_id": lesson.YoutubeID,
			"title":      lesson.Title,
			"thumbnail":  lesson.Thumbnail,
			"duration":   lesson.Duration,
			"position":   lesson.Position,
			"watched":    lesson.Watched,
			"is_current": !lesson.Watched && lesson.Position == course.CurrentIndex,
			"notes":      lesson.Notes,
		}

		if len(lesson.Quiz) > 0 {
			quiz := make([]fiber.Map, 0, len(lesson.Quiz))
			for _, q := range lesson.Quiz {
				var options []string
				_ = json.Unmarshal([]byte(q.Options), &options)
				quiz = append(quiz, fiber.Map{
					"question":       q.Question,
					"options":        options,
					"correct_answer": q.CorrectAnswer,
				})
			}
			entry["quiz"] = quiz
		}

		if len(lesson.Flashcards) > 0 {
			cards := make([]fiber.Map, 0, len(lesson.Flashcards))
			for _, card := range lesson.Flashcards {
				cards = append(cards, fiber.Map{
					"front": card.Front,
					"back":  card.Back,
				})
			}
			entry["flashcards"] = cards
		}

		lessons = append(lessons, entry)
	}

	return fiber.Map{
		"id":                course.ID,
		"title":             course.Title,
		"playlist_url":      course.PlaylistURL,
		"thumbnail":         course.Thumbnail,
		"instructor":        course.Instructor,
		"total_lessons":     course.TotalLessons,
		"completed_lessons": course.CompletedLessons,
		"progress":          course.Progress,
		"current_index":     course.CurrentIndex,
		"lessons":           lessons,
	}
}
