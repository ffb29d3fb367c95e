package api

import (
	"net/http"

	"financetracker/backend/config"
	"financetracker/backend/handlers"
	"financetracker/backend/middleware"
	"financetracker/backend/services"
	"financetracker/backend/web"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Store is what the server needs from the transaction store directly.
type Store interface {
	handlers.Pinger
}

// Server represents the HTTP server: JSON API, health check and web views.
type Server struct {
	cfg          *config.Config
	logger       zerolog.Logger
	router       *mux.Router
	verifier     middleware.TokenVerifier
	store        Store
	transactions *handlers.TransactionHandler
	chat         *handlers.ChatHandler
	views        *web.Views
}

// NewServer wires the handlers over the given services. A nil verifier leaves
// the API unauthenticated.
func NewServer(
	cfg *config.Config,
	logger zerolog.Logger,
	store Store,
	transactions *services.TransactionService,
	chat *services.ChatService,
	verifier middleware.TokenVerifier,
) (*Server, error) {
	views, err := web.NewViews(transactions, chat)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:          cfg,
		logger:       logger,
		router:       mux.NewRouter(),
		verifier:     verifier,
		store:        store,
		transactions: handlers.NewTransactionHandler(transactions),
		chat:         handlers.NewChatHandler(chat),
		views:        views,
	}
	s.RegisterRoutes()
	return s, nil
}

// RegisterRoutes registers the API both at the root and under /api, then the
// web views.
func (s *Server) RegisterRoutes() {
	s.router.NotFoundHandler = http.HandlerFunc(handlers.NotFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(handlers.MethodNotAllowed)

	s.registerAPI(s.router.PathPrefix("/api").Subrouter())
	s.registerAPI(s.router)

	// HTML forms carry no ID token, so the views are only served while the
	// API is open.
	if s.verifier == nil {
		s.views.Register(s.router)
	} else {
		s.logger.Info().Msg("API authentication enabled, web views disabled")
	}
}

func (s *Server) registerAPI(r *mux.Router) {
	r.HandleFunc("/health", handlers.HealthCheck(s.store, s.cfg.Server.HealthTimeout)).Methods("GET")

	protected := r.NewRoute().Subrouter()
	protected.Use(middleware.Auth(s.verifier))

	protected.HandleFunc("/transactions", s.transactions.GetTransactions).Methods("GET")
	protected.HandleFunc("/transactions", s.transactions.AddTransaction).Methods("POST")
	protected.HandleFunc("/transactions/{id}", s.transactions.DeleteTransaction).Methods("DELETE")
	protected.HandleFunc("/summary", s.transactions.GetSummary).Methods("GET")
	protected.HandleFunc("/categories", handlers.GetCategories).Methods("GET")
	protected.HandleFunc("/chat", s.chat.Chat).Methods("POST")
}

// Handler returns the router wrapped in the request logger and CORS, which
// run ahead of route matching so preflight requests are answered.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = middleware.CORS(s.cfg.CORS.AllowedOrigins, s.cfg.IsDevelopment())(h)
	h = middleware.RequestLogger(s.logger)(h)
	return h
}
