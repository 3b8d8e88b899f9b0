package controllers

import (
	"learntube/backend/config"
	"learntube/backend/services"
	"learntube/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AIController exposes generate-only endpoints; the course routes persist
// generated content onto lessons.
type AIController struct {
	Cfg *config.Config
	AI  *services.AIService
}

func NewAIController(cfg *config.Config, ai *services.AIService) *AIController {
	return &AIController{Cfg: cfg, AI: ai}
}

// GenerateQuiz godoc
// @Summary Generate a quiz for a topic
// @Tags ai
// @Accept json
// @Produce json
// @Success 200 {array} services.GeneratedQuestion
// @Failure 400 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /ai/quiz [post]
func (aic *AIController) GenerateQuiz(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, aic.Cfg); err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		VideoTitle  string `json:"videoTitle"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.VideoTitle == "" {
		return utils.BadRequest(c, "videoTitle is required")
	}

	questions, err := aic.AI.GenerateQuiz(input.VideoTitle, input.Description)
	if err != nil {
		return utils.RespondError(c, err)
	}

	return c.JSON(questions)
}

func (aic *AIController) GenerateFlashcards(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, aic.Cfg); err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		VideoTitle string `json:"videoTitle"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.VideoTitle == "" {
		return utils.BadRequest(c, "videoTitle is required")
	}

	cards, err := aic.AI.GenerateFlashcards(input.VideoTitle)
	if err != nil {
		return utils.RespondError(c, err)
	}

	return c.JSON(cards)
}
