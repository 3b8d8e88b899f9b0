package controllers

import (
	"strconv"

	"learntube/backend/config"
	"learntube/backend/models"
	"learntube/backend/services"
	"learntube/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB          *gorm.DB
	Cfg         *config.Config
	Progress    *services.ProgressService
	Leaderboard *services.LeaderboardService
}

func NewUserController(db *gorm.DB, cfg *config.Config, progress *services.ProgressService, leaderboard *services.LeaderboardService) *UserController {
	return &UserController{DB: db, Cfg: cfg, Progress: progress, Leaderboard: leaderboard}
}

// GetProfile godoc
// @Summary Get learner profile
// @Description Returns the profile with stats, activity log and certificates
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := uc.DB.Preload("ActivityLog").Preload("Certificates").
		First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	// Sparse per-date map: only days with activity appear.
	activity := make(map[string]int, len(user.ActivityLog))
	for _, entry := range user.ActivityLog {
		activity[entry.Date] = entry.Count
	}

	certificates := make([]fiber.Map, 0, len(user.Certificates))
	for _, cert := range user.Certificates {
		certificates = append(certificates, fiber.Map{
			"course_id":     cert.CourseID,
			"course_title":  cert.CourseTitle,
			"thumbnail":     cert.Thumbnail,
			"serial_number": cert.SerialNumber,
			"issued_at":     cert.IssuedAt,
			"image_data":    cert.ImageData,
		})
	}

	return c.JSON(fiber.Map{
		"id":              user.ID,
		"name":            user.Name,
		"email":           user.Email,
		"avatar":          user.Avatar,
		"bio":             user.Bio,
		"xp":              user.XP,
		"level":           user.Level,
		"streak":          user.Streak,
		"last_study_date": user.LastStudyDate,
		"stats":           user.Stats,
		"activity_log":    activity,
		"certificates":    certificates,
	})
}

// UpdateProfile replaces the mutable profile fields (name, avatar, bio).
func (uc *UserController) UpdateProfile(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Name   *string `json:"name"`
		Avatar *string `json:"avatar"`
		Bio    *string `json:"bio"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	// Pointers distinguish "leave alone" from "clear with empty string".
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Avatar != nil {
		user.Avatar = *input.Avatar
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not update user")
	}

	return c.JSON(fiber.Map{
		"id":     user.ID,
		"name":   user.Name,
		"email":  user.Email,
		"avatar": user.Avatar,
		"bio":    user.Bio,
		"xp":     user.XP,
		"level":  user.Level,
		"streak": user.Streak,
		"stats":  user.Stats,
	})
}

// AddXP godoc
// @Summary Grant XP outside the lesson flow
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /users/add-xp [patch]
func (uc *UserController) AddXP(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, uc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Amount    int    `json:"amount"`
		Type      string `json:"type"`
		TimeSpent int    `json:"timeSpent"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	user, err := uc.Progress.AddXP(userID, input.Amount, input.Type, input.TimeSpent)
	if err != nil {
		return utils.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"id":     user.ID,
		"name":   user.Name,
		"xp":     user.XP,
		"level":  user.Level,
		"streak": user.Streak,
		"stats":  user.Stats,
	})
}

// GetLeaderboard returns the top learners by XP.
func (uc *UserController) GetLeaderboard(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, uc.Cfg); err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	entries, err := uc.Leaderboard.Top(c.Context(), limit)
	if err != nil {
		return utils.RespondError(c, err)
	}

	return c.JSON(fiber.Map{
		"leaderboard": entries,
	})
}
