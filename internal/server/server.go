// Package server assembles services and handlers into the HTTP surface.
package server

import (
	"net/http"
	"time"

	"quiz-event/internal/admin"
	"quiz-event/internal/answer"
	"quiz-event/internal/auth"
	"quiz-event/internal/httpx"
	"quiz-event/internal/question"
	"quiz-event/internal/repository"
	"quiz-event/internal/score"
	"quiz-event/internal/settings"
	"quiz-event/pkg/websocket"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

type Options struct {
	JWTSecret        string
	TokenTTL         time.Duration
	AllowAdminSignup bool
	PublicBaseURL    string
	CORSOrigins      []string
	RateLimit        int
	RateWindow       time.Duration
}

// Server holds the wired services. Construct it once per process.
type Server struct {
	Auth      *auth.Service
	Questions *question.Service
	Answers   *answer.Service
	Scores    *score.Service
	Admin     *admin.Service
	Settings  *settings.Service
	Hub       *websocket.Hub

	opts Options
}

// New wires every service on top of store. cache may be nil, in which case
// code lookups always hit the store.
func New(store repository.Store, cache question.CodeCache, opts Options) *Server {
	s := &Server{opts: opts}

	s.Auth = auth.NewService(store.Users(), auth.Options{
		Secret:           opts.JWTSecret,
		TokenTTL:         opts.TokenTTL,
		AllowAdminSignup: opts.AllowAdminSignup,
	})
	s.Hub = websocket.NewHub(s.verifySocket)
	s.Settings = settings.NewService(store.Settings())
	s.Scores = score.NewService(store.Scores())
	s.Questions = question.NewService(store, cache, s.Hub, s.Settings, opts.PublicBaseURL)
	s.Answers = answer.NewService(store, s.Scores, s.Hub)
	s.Admin = admin.NewService(store, s.Hub)
	return s
}

func (s *Server) verifySocket(token string) (websocket.Identity, error) {
	claims, err := s.Auth.ParseToken(token)
	if err != nil {
		return websocket.Identity{}, err
	}
	return websocket.Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
		IsAdmin:  claims.IsAdmin(),
	}, nil
}

// Handler returns the root handler with CORS and access logging applied.
func (s *Server) Handler() http.Handler {
	authHandler := auth.NewHandler(s.Auth)
	questionHandler := question.NewHandler(s.Questions)
	answerHandler := answer.NewHandler(s.Answers)
	scoreHandler := score.NewHandler(s.Scores)
	adminHandler := admin.NewHandler(s.Admin)
	settingsHandler := settings.NewHandler(s.Settings)

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	router.HandleFunc("/healthz", health).Methods("GET")
	router.HandleFunc("/ws", s.Hub.HandleWebSocket)

	limiter := httpx.NewRateLimiter(s.opts.RateLimit, s.opts.RateWindow)

	// Auth routes - no JWT required
	public := router.PathPrefix("/api/auth").Subrouter()
	public.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	public.Use(limiter.Middleware)
	public.HandleFunc("/register", authHandler.Register).Methods("POST", "OPTIONS")
	public.HandleFunc("/login", authHandler.Login).Methods("POST", "OPTIONS")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(limiter.Middleware)
	api.Use(auth.JWTMiddleware(s.Auth))

	api.HandleFunc("/auth/me", authHandler.Me).Methods("GET")

	api.HandleFunc("/questions", questionHandler.List).Methods("GET")
	api.HandleFunc("/questions/code/{code}", questionHandler.GetByCode).Methods("GET")
	api.HandleFunc("/questions/{id}", questionHandler.Get).Methods("GET")

	api.HandleFunc("/answers", answerHandler.Submit).Methods("POST", "OPTIONS")
	api.HandleFunc("/answers/me", answerHandler.Mine).Methods("GET")

	api.HandleFunc("/scores", scoreHandler.Scoreboard).Methods("GET")
	api.HandleFunc("/scores/me", scoreHandler.Mine).Methods("GET")

	admins := api.NewRoute().Subrouter()
	admins.Use(auth.RequireAdmin)

	admins.HandleFunc("/questions", questionHandler.Create).Methods("POST", "OPTIONS")
	admins.HandleFunc("/questions/visibility/all", questionHandler.SetVisibilityAll).Methods("PATCH", "OPTIONS")
	admins.HandleFunc("/questions/{id}", questionHandler.Update).Methods("PUT", "OPTIONS")
	admins.HandleFunc("/questions/{id}", questionHandler.Delete).Methods("DELETE", "OPTIONS")
	admins.HandleFunc("/questions/{id}/visibility", questionHandler.SetVisibility).Methods("PATCH", "OPTIONS")
	admins.HandleFunc("/questions/{id}/lock", questionHandler.SetLocked).Methods("PATCH", "OPTIONS")

	admins.HandleFunc("/answers/question/{id}", answerHandler.ForQuestion).Methods("GET")

	admins.HandleFunc("/admin/reset-questions", adminHandler.ResetQuestions).Methods("POST", "OPTIONS")
	admins.HandleFunc("/admin/reset-scores", adminHandler.ResetScores).Methods("POST", "OPTIONS")
	admins.HandleFunc("/admin/finalize-event", adminHandler.Finalize).Methods("POST", "OPTIONS")
	admins.HandleFunc("/admin/dashboard", adminHandler.Dashboard).Methods("GET")
	admins.HandleFunc("/admin/config", settingsHandler.GetAll).Methods("GET")
	admins.HandleFunc("/admin/config/{key}", settingsHandler.Get).Methods("GET")
	admins.HandleFunc("/admin/config/{key}", settingsHandler.Update).Methods("PUT", "OPTIONS")

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return httpx.RequestLogger(corsMiddleware.Handler(router))
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httpx.Message(w, http.StatusNotFound, "Route not found")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httpx.Message(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func health(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}
