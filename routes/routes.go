package routes

import (
	"github.com/arenagg/tournament-core/handlers"
	"github.com/arenagg/tournament-core/middleware"
	"github.com/arenagg/tournament-core/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	tournamentHandler *handlers.TournamentHandler,
	invitationHandler *handlers.InvitationHandler,
	dashboardHandler *handlers.DashboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler())

	router.Get("/stats", dashboardHandler.StatsHandler)

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты для просмотра турниров. Зритель опционален:
		// фильтр mine работает только с токеном.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuthenticate(jwtSecret))
			r.Get("/", tournamentHandler.ListHandler)
		})
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
		r.Get("/{tournamentID}/participants", tournamentHandler.ListParticipantsHandler)

		// Маршруты, требующие аутентификации
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/", tournamentHandler.CreateHandler)
			r.Post("/{tournamentID}/join", tournamentHandler.JoinHandler)
			r.Post("/{tournamentID}/leave", tournamentHandler.LeaveHandler)
			r.Post("/{tournamentID}/invites", tournamentHandler.SendInvitesHandler)
			r.Post("/{tournamentID}/banner", tournamentHandler.UploadBannerHandler)
		})

		// Модерация — только для админов
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize(models.RoleAdmin))

			r.Post("/{tournamentID}/approve", tournamentHandler.ApproveHandler)
			r.Post("/{tournamentID}/reject", tournamentHandler.RejectHandler)
			r.Post("/{tournamentID}/featured", tournamentHandler.ToggleFeaturedHandler)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Get("/users/{userID}/invitations", invitationHandler.ListUserInvitationsHandler)
		r.Get("/ws", webSocketHandler.ServeWS)
	})
}
