package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterDeps defines router construction dependencies.
type RouterDeps struct {
	HealthHandler       http.HandlerFunc
	AuthHandlers        AuthHandlers
	AccessLogHandlers   AccessLogHandlers
	OccurrenceHandlers  OccurrenceHandlers
	RegistryHandlers    RegistryHandlers
	ReportHandlers      ReportHandlers
	RequireAuthHandler  func(http.Handler) http.Handler
	RequireAdminHandler func(http.Handler) http.Handler
}

// AuthHandlers groups the HTTP handlers for auth routes.
type AuthHandlers struct {
	Login      http.HandlerFunc
	Refresh    http.HandlerFunc
	Logout     http.HandlerFunc
	Me         http.HandlerFunc
	CreateUser http.HandlerFunc
}

// AccessLogHandlers groups the gate access-log routes.
type AccessLogHandlers struct {
	Create http.HandlerFunc
	List   http.HandlerFunc
	Import http.HandlerFunc
	Export http.HandlerFunc
	Stats  http.HandlerFunc
	Lookup http.HandlerFunc
}

// OccurrenceHandlers groups the occurrence lifecycle routes.
type OccurrenceHandlers struct {
	Create     http.HandlerFunc
	List       http.HandlerFunc
	Get        http.HandlerFunc
	Transition http.HandlerFunc
	Note       http.HandlerFunc
	Update     http.HandlerFunc
	Summary    http.HandlerFunc
}

// RegistryHandlers groups the suggestion, parking and mission routes.
type RegistryHandlers struct {
	CreateSuggestion       http.HandlerFunc
	ListSuggestions        http.HandlerFunc
	UpdateSuggestionStatus http.HandlerFunc
	DeleteSuggestion       http.HandlerFunc
	CreateParkingRequest   http.HandlerFunc
	ListParkingRequests    http.HandlerFunc
	UpdateParkingRequest   http.HandlerFunc
	CreateMissionOrder     http.HandlerFunc
	ListMissionOrders      http.HandlerFunc
	UpdateMissionOrder     http.HandlerFunc
	DeleteMissionOrder     http.HandlerFunc
}

// ReportHandlers groups the aggregate reporting routes.
type ReportHandlers struct {
	OccurrenceStats   http.HandlerFunc
	OccurrenceSummary http.HandlerFunc
}

// NewRouter wires HTTP routes.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		Error(w, http.StatusNotFound, "not_found", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		Error(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})

	if deps.HealthHandler != nil {
		r.Get("/healthz", deps.HealthHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", deps.AuthHandlers.Login)
			r.Post("/refresh", deps.AuthHandlers.Refresh)

			r.Group(func(r chi.Router) {
				if deps.RequireAuthHandler != nil {
					r.Use(deps.RequireAuthHandler)
				}
				r.Get("/me", deps.AuthHandlers.Me)
				r.Post("/logout", deps.AuthHandlers.Logout)
			})
		})

		r.Group(func(r chi.Router) {
			if deps.RequireAuthHandler != nil {
				r.Use(deps.RequireAuthHandler)
			}

			r.Route("/access-logs", func(r chi.Router) {
				r.Post("/", deps.AccessLogHandlers.Create)
				r.Get("/", deps.AccessLogHandlers.List)
				r.Post("/import", deps.AccessLogHandlers.Import)
				r.Get("/export", deps.AccessLogHandlers.Export)
				r.Get("/stats", deps.AccessLogHandlers.Stats)
				r.Get("/lookup", deps.AccessLogHandlers.Lookup)
			})

			r.Route("/occurrences", func(r chi.Router) {
				r.Post("/", deps.OccurrenceHandlers.Create)
				r.Get("/", deps.OccurrenceHandlers.List)
				r.Get("/stats", deps.ReportHandlers.OccurrenceStats)
				r.Get("/report", deps.ReportHandlers.OccurrenceSummary)
				r.Get("/{id}", deps.OccurrenceHandlers.Get)
				r.Post("/{id}/transition", deps.OccurrenceHandlers.Transition)
				r.Post("/{id}/notes", deps.OccurrenceHandlers.Note)
				r.Get("/{id}/summary", deps.OccurrenceHandlers.Summary)
				if deps.RequireAdminHandler != nil {
					r.With(deps.RequireAdminHandler).Patch("/{id}", deps.OccurrenceHandlers.Update)
				} else {
					r.Patch("/{id}", deps.OccurrenceHandlers.Update)
				}
			})

			r.Route("/suggestions", func(r chi.Router) {
				r.Post("/", deps.RegistryHandlers.CreateSuggestion)
				r.Get("/", deps.RegistryHandlers.ListSuggestions)
				r.Patch("/{id}", deps.RegistryHandlers.UpdateSuggestionStatus)
				r.Delete("/{id}", deps.RegistryHandlers.DeleteSuggestion)
			})

			r.Route("/parking-requests", func(r chi.Router) {
				r.Post("/", deps.RegistryHandlers.CreateParkingRequest)
				r.Get("/", deps.RegistryHandlers.ListParkingRequests)
				r.Patch("/{id}", deps.RegistryHandlers.UpdateParkingRequest)
			})

			r.Route("/mission-orders", func(r chi.Router) {
				r.Post("/", deps.RegistryHandlers.CreateMissionOrder)
				r.Get("/", deps.RegistryHandlers.ListMissionOrders)
				r.Patch("/{id}", deps.RegistryHandlers.UpdateMissionOrder)
				r.Delete("/{id}", deps.RegistryHandlers.DeleteMissionOrder)
			})

			r.Route("/admin", func(r chi.Router) {
				if deps.RequireAdminHandler != nil {
					r.Use(deps.RequireAdminHandler)
				}
				r.Post("/users", deps.AuthHandlers.CreateUser)
			})
		})
	})

	return r
}
