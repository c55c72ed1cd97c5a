package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/trailfeed/trailfeed-backend/internal/handlers"
	"github.com/trailfeed/trailfeed-backend/internal/middleware"
	"github.com/trailfeed/trailfeed-backend/internal/services"
)

// Handlers bundles everything SetupRoutes mounts.
type Handlers struct {
	Users       *handlers.UserHandler
	Experiences *handlers.ExperienceHandler
	Comments    *handlers.CommentHandler
	Upload      *handlers.UploadHandler
	CommentFeed *handlers.CommentFeedHandler

	UserService *services.UserService
}

// SetupRoutes mounts the API. Reads are public; mutations sit behind the
// auth middleware.
func SetupRoutes(r chi.Router, h Handlers) {
	protect := middleware.Protect(h.UserService)

	// User routes
	r.Post("/api/users", h.Users.Register)
	r.Post("/api/users/login", h.Users.Login)
	r.Post("/api/users/forgot-password", h.Users.ForgotPassword)
	r.Post("/api/users/reset-password", h.Users.ResetPassword)
	r.Group(func(r chi.Router) {
		r.Use(protect)
		r.Get("/api/users/me", h.Users.GetMe)
		r.Put("/api/users/profile", h.Users.UpdateProfile)
	})
	r.Get("/api/users/{id}", h.Users.GetUser)

	// Experience routes
	r.Get("/api/experiences", h.Experiences.List)
	r.Get("/api/experiences/{id}", h.Experiences.Get)
	r.Group(func(r chi.Router) {
		r.Use(protect)
		r.Post("/api/experiences", h.Experiences.Create)
		r.Put("/api/experiences/{id}", h.Experiences.Update)
		r.Delete("/api/experiences/{id}", h.Experiences.Delete)
		r.Put("/api/experiences/{id}/like", h.Experiences.ToggleLike)
	})

	// Comment routes
	r.Get("/api/comments/experience/{id}", h.Comments.ListByExperience)
	r.Group(func(r chi.Router) {
		r.Use(protect)
		r.Post("/api/comments", h.Comments.Create)
		r.Delete("/api/comments/{id}", h.Comments.Delete)
	})

	// File upload routes
	r.Group(func(r chi.Router) {
		r.Use(protect)
		r.Post("/api/upload", h.Upload.Upload)
	})

	// Live comment feed
	r.Get("/ws/comments", h.CommentFeed.Stream)
}
