package routes

import (
	"net/http"

	"github.com/Dosada05/esport-arena/handlers"
	"github.com/Dosada05/esport-arena/middleware"
	"github.com/Dosada05/esport-arena/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handlers собирает все HTTP-обработчики приложения.
type Handlers struct {
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Team        *handlers.TeamHandler
	Tournament  *handlers.TournamentHandler
	Phase       *handlers.PhaseHandler
	Participant *handlers.ParticipantHandler
	Admin       *handlers.AdminHandler
	Match       *handlers.MatchHandler
	Chat        *handlers.ChatHandler
	Veto        *handlers.VetoHandler
	WebSocket   *handlers.WebSocketHandler
}

func SetupRoutes(router chi.Router, h Handlers, tokens middleware.TokenParser, allowedOrigins []string) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	authenticate := middleware.Authenticate(tokens)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
	})
	router.With(authenticate).Get("/me", h.Auth.Me)
	router.Get("/users/{userID}", h.User.GetUser)

	router.Route("/teams", func(r chi.Router) {
		r.Get("/{teamID}", h.Team.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/", h.Team.Create)
			r.Get("/mine", h.Team.ListMine)
			r.Post("/{teamID}/members", h.Team.AddMember)
			r.Delete("/{teamID}/members/{userID}", h.Team.RemoveMember)
			r.Post("/{teamID}/logo", h.Team.UploadLogo)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты для просмотра турниров
		r.Get("/", h.Tournament.List)
		r.Get("/{tournamentID}", h.Tournament.Get)
		r.Get("/{tournamentID}/phases", h.Phase.List)
		r.Get("/{tournamentID}/participants", h.Participant.List)
		r.Get("/{tournamentID}/matches", h.Match.List)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/{tournamentID}/participants", h.Participant.Register)

			// Создание и управление турниром: только организаторы и админы
			r.Group(func(r chi.Router) {
				r.Use(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin))
				r.Post("/", h.Tournament.Create)
				r.Patch("/{tournamentID}", h.Tournament.Update)
				r.Delete("/{tournamentID}", h.Tournament.Delete)
				r.Patch("/{tournamentID}/status", h.Tournament.ChangeStatus)
				r.Post("/{tournamentID}/start", h.Tournament.Start)
				r.Post("/{tournamentID}/logo", h.Tournament.UploadLogo)
				r.Post("/{tournamentID}/phases", h.Phase.Create)
			})
		})
	})

	router.Route("/phases/{phaseID}", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin))
		r.Patch("/", h.Phase.Update)
		r.Delete("/", h.Phase.Delete)
	})

	router.Route("/participants/{participantID}", func(r chi.Router) {
		r.Use(authenticate)
		r.Delete("/", h.Participant.Unregister)
		r.Post("/check-in", h.Participant.CheckIn)
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/", h.Match.Get)
		r.Get("/chat", h.Chat.List)
		r.Get("/veto", h.Veto.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Post("/chat", h.Chat.Send)
			r.Post("/veto", h.Veto.AddAction)
			r.Delete("/veto", h.Veto.Reset)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin))
				r.Patch("/schedule", h.Match.Schedule)
				r.Post("/start", h.Match.Start)
			})
		})
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.Authorize(models.RoleOrganizer, models.RoleAdmin))

		r.Patch("/participants/{participantID}/check-in", h.Admin.SetCheckIn)
		r.Patch("/participants/{participantID}/disqualification", h.Admin.SetDisqualified)
		r.Patch("/participants/{participantID}/seed", h.Admin.SetSeed)
		r.Patch("/matches/{matchID}/score", h.Admin.UpdateScore)
	})

	// Подписка открыта всем, токен в ?token= необязателен.
	router.Route("/ws", func(r chi.Router) {
		r.Use(middleware.OptionalAuthenticate(tokens))
		r.Get("/matches/{matchID}", h.WebSocket.ServeMatch)
		r.Get("/tournaments/{tournamentID}", h.WebSocket.ServeTournament)
	})
}
