package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"

	"github.com/splatseries/bracket-system/handlers"
	"github.com/splatseries/bracket-system/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/login", authHandler.Login)

	router.Route("/tournaments/{tournamentID}/matches/{matchID}", func(r chi.Router) {
		r.Get("/", matchHandler.GetMatchDetail)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Post("/actions", matchHandler.HandleMatchAction)
			r.Post("/screenshot", matchHandler.UploadScreenshot)
		})
	})

	router.Get("/ws/matches/{matchID}", webSocketHandler.ServeMatch)
	router.Get("/ws/brackets/{tournamentID}", webSocketHandler.ServeBracket)
}
