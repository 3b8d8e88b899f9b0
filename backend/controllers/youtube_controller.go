package controllers

import (
	"learntube/backend/config"
	"learntube/backend/services"
	"learntube/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type YouTubeController struct {
	Cfg     *config.Config
	YouTube *services.YouTubeService
}

func NewYouTubeController(cfg *config.Config, youtube *services.YouTubeService) *YouTubeController {
	return &YouTubeController{Cfg: cfg, YouTube: youtube}
}

// GetPlaylist godoc
// @Summary Resolve a YouTube playlist
// @Description Returns ordered lesson metadata for a playlist URL or ID
// @Tags youtube
// @Produce json
// @Param url query string true "Playlist URL or ID"
// @Success 200 {object} services.ImportedPlaylist
// @Failure 400 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /youtube/playlist [get]
func (yc *YouTubeController) GetPlaylist(c *fiber.Ctx) error {
	if _, err := utils.ExtractUserIDFromToken(c, yc.Cfg); err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	url := c.Query("url")
	if url == "" {
		return utils.BadRequest(c, "URL is required")
	}

	playlist, err := yc.YouTube.ImportPlaylist(url)
	if err != nil {
		return utils.RespondError(c, err)
	}

	return c.JSON(playlist)
}
