package routes

import (
	"github.com/arenahub/tournament-ops/handlers"
	"github.com/arenahub/tournament-ops/middleware"
	"github.com/arenahub/tournament-ops/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	eventHandler *handlers.EventHandler,
	teamHandler *handlers.TeamHandler,
	registrationHandler *handlers.RegistrationHandler,
	scheduleHandler *handlers.ScheduleHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.Get("/{eventID}", eventHandler.GetEvent)
		r.Get("/{eventID}/registrations", registrationHandler.ListByEvent)
		r.Get("/{eventID}/conflicts", scheduleHandler.ScheduleConflicts)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.With(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin)).
				Post("/", eventHandler.CreateEvent)
			r.Put("/{eventID}/config", eventHandler.UpdateTournamentConfig)
			r.Post("/{eventID}/banner", eventHandler.UploadBanner)
			r.Post("/{eventID}/registrations", registrationHandler.RegisterTeam)
			r.Post("/{eventID}/schedule", scheduleHandler.GenerateSchedule)
			r.Post("/{eventID}/schedule/next", scheduleHandler.GenerateNextRound)
		})
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", teamHandler.ListTeams)
		r.Get("/{teamID}", teamHandler.GetTeam)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", teamHandler.CreateTeam)
			r.Post("/{teamID}/logo", teamHandler.UploadLogo)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Put("/registrations/{registrationID}/status", registrationHandler.SetStatus)
		r.Put("/matches/{matchID}/scores", scheduleHandler.SubmitScores)
	})

	router.Get("/ws/events/{eventID}", webSocketHandler.ServeWs)
}
