package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/findmypet-api/internal/api"
	apiMiddleware "github.com/phrazzld/findmypet-api/internal/api/middleware"
	"github.com/phrazzld/findmypet-api/internal/api/shared"
)

// idPattern restricts {id} to digits so other values fall through to 404.
const idPattern = "/{id:[0-9]+}"

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(app.metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.config.Server.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{apiMiddleware.TraceHeader},
		MaxAge:         300,
	}))

	authHandler := api.NewAuthHandler(app.accountService, app.jwtService)
	petPostHandler := api.NewPetPostHandler(app.petPostService, app.config.Uploads.MaxSizeBytes, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.logger)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.With(authMiddleware.Authenticate).Get("/profile", authHandler.Profile)
	})

	r.Route("/api/pets", func(r chi.Router) {
		r.Get("/", petPostHandler.ListPetPosts)
		r.Get(idPattern, petPostHandler.GetPetPost)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/", petPostHandler.CreatePetPost)
			r.Get("/user", petPostHandler.ListOwnPetPosts)
			r.Put(idPattern, petPostHandler.UpdatePetPost)
			r.Delete(idPattern, petPostHandler.DeletePetPost)
		})
	})

	prefix := strings.TrimSuffix(app.config.Uploads.URLPrefix, "/")
	r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", noDirListing(http.FileServer(http.Dir(app.config.Uploads.Dir)))))

	r.Handle("/metrics", app.metrics.Handler())
	r.Get("/health", app.health)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusNotFound, "Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}

// health reports liveness, and database reachability when a database is attached.
func (app *application) health(w http.ResponseWriter, r *http.Request) {
	if app.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := app.db.PingContext(ctx); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
			return
		}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// noDirListing hides directory indexes of the upload root.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
