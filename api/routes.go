package api

import (
	"github.com/azeasycpa/askcpa/internal/config"
	"github.com/azeasycpa/askcpa/internal/db"
	"github.com/azeasycpa/askcpa/internal/lifecycle"
	"github.com/azeasycpa/askcpa/internal/repository/sqlite"
	"github.com/gorilla/mux"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, d *db.DB, queue lifecycle.Enqueuer) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository and lifecycle engine
	repo := sqlite.New(d, nil)
	engine := lifecycle.NewEngine(repo, queue, cfg.AdminEmail, cfg.Draft.Model != "", nil)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(cfg.AdminEmail, cfg.AdminPasswordHash, cfg.JWTSecret, cfg.TokenDuration)
	questionsHandler := NewQuestionsHandler(engine)
	statusHandler := NewStatusHandler(engine)

	// Open endpoints: submission and status lookup are public by design
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")
	r.HandleFunc("/v1/questions", questionsHandler.SubmitQuestion).Methods("POST")
	r.HandleFunc("/v1/status", statusHandler.StatusByEmail).Methods("GET")

	// Dashboard routes behind the session gate
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	apiV1.HandleFunc("/auth/signout", authHandler.Signout).Methods("POST")
	apiV1.HandleFunc("/questions", questionsHandler.ListQuestions).Methods("GET")
	apiV1.HandleFunc("/questions/{id}/review", questionsHandler.MarkReviewed).Methods("PATCH")
	apiV1.HandleFunc("/questions/{id}/answer", questionsHandler.SubmitAnswer).Methods("PATCH")
	apiV1.HandleFunc("/usage", questionsHandler.Usage).Methods("GET")

	return r
}
