// Package api wires the HTTP boundary: routing, CORS and the translation
// of service failure kinds into status codes lives here and nowhere else.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/divvyup/divvy/internal/api/handlers"
	"github.com/divvyup/divvy/internal/auth"
	"github.com/divvyup/divvy/internal/middleware"
	"github.com/divvyup/divvy/internal/service"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	jwtManager *auth.JWTManager,
	authService *service.AuthService,
	groupService *service.GroupService,
	expenseService *service.ExpenseService,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(middleware.RequestLogger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(authService)
	groupHandler := handlers.NewGroupHandler(groupService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.With(middleware.RequireAuth(jwtManager)).Get("/me", authHandler.Me)
		})

		r.Route("/groups", func(r chi.Router) {
			r.Use(middleware.RequireAuth(jwtManager))

			r.Post("/", groupHandler.Create)
			r.Get("/", groupHandler.List)
			r.Post("/join", groupHandler.Join)

			r.Route("/{groupID}", func(r chi.Router) {
				r.Get("/", groupHandler.Get)
				r.Post("/invites", groupHandler.CreateInvite)

				r.Route("/expenses", func(r chi.Router) {
					r.Post("/", expenseHandler.Create)
					r.Put("/{expenseID}", expenseHandler.Update)
					r.Delete("/{expenseID}", expenseHandler.Delete)
				})
			})
		})
	})

	return r
}
