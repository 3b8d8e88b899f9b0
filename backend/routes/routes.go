package routes

import (
	"learntube/backend/config"
	"learntube/backend/controllers"
	"learntube/backend/middleware"
	"learntube/backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Services bundles the collaborators handed to the controllers.
type Services struct {
	Progress    *services.ProgressService
	Leaderboard *services.LeaderboardService
	AI          *services.AIService
	YouTube     *services.YouTubeService
}

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, svc Services) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	authMiddleware := middleware.AuthMiddleware(cfg)
	app.Get("/api/auth/me", authMiddleware, authController.Me)

	// User routes
	userController := controllers.NewUserController(db, cfg, svc.Progress, svc.Leaderboard)
	users := app.Group("/api/users", authMiddleware)
	users.Get("/profile", userController.GetProfile)
	users.Put("/profile", userController.UpdateProfile)
	users.Patch("/add-xp", userController.AddXP)
	users.Get("/leaderboard", userController.GetLeaderboard)

	// Course routes
	coursesController := controllers.NewCoursesController(db, cfg, svc.Progress, svc.AI)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", coursesController.GetCourses)
	courses.Post("/", coursesController.CreateCourse)
	courses.Get("/:id", coursesController.GetCourseDetails)
	courses.Delete("/:id", coursesController.DeleteCourse)
	courses.Patch("/:id/progress", coursesController.UpdateProgress)
	courses.Patch("/:id/notes", coursesController.UpdateNotes)
	courses.Post("/:id/lessons/:lessonId/quiz", coursesController.GenerateLessonQuiz)
	courses.Post("/:id/lessons/:lessonId/flashcards", coursesController.GenerateLessonFlashcards)

	// Collaborator routes
	aiController := controllers.NewAIController(cfg, svc.AI)
	ai := app.Group("/api/ai", authMiddleware)
	ai.Post("/quiz", aiController.GenerateQuiz)
	ai.Post("/flashcards", aiController.GenerateFlashcards)

	youtubeController := controllers.NewYouTubeController(cfg, svc.YouTube)
	app.Get("/api/youtube/playlist", authMiddleware, youtubeController.GetPlaylist)
}
