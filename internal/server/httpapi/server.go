// Package httpapi exposes the todo service as a JSON REST API under /api/v1.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
)

const shutdownTimeout = 30 * time.Second

// UserService is what the auth endpoints need from services.UserService.
type UserService interface {
	Register(ctx context.Context, email, username, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// TodoService is what the todo endpoints need from services.TodoService.
type TodoService interface {
	Create(ctx context.Context, ownerID int64, in models.TodoCreate) (*models.Todo, error)
	Get(ctx context.Context, id, ownerID int64) (*models.Todo, error)
	Update(ctx context.Context, id, ownerID int64, patch models.TodoPatch) (*models.Todo, error)
	Toggle(ctx context.Context, id, ownerID int64) (*models.Todo, error)
	Delete(ctx context.Context, id, ownerID int64) (bool, error)
	List(ctx context.Context, ownerID int64, q models.ListQuery) (*models.TodoPage, error)
}

// Pinger reports database reachability for the health endpoint.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HTTPServer struct {
	address string
	logger  logging.Logger
	handler http.Handler
}

// handler holds the dependencies shared by every endpoint.
type handler struct {
	users     UserService
	todos     TodoService
	db        Pinger
	logger    logging.Logger
	validate  *validator.Validate
	jwtSecret []byte
}

func NewHTTPServer(addr string, l logging.Logger, us UserService, ts TodoService, db Pinger, cfg *config.Config) *HTTPServer {
	l = l.With("module", "http_server")
	h := &handler{
		users:     us,
		todos:     ts,
		db:        db,
		logger:    l,
		validate:  newValidator(),
		jwtSecret: []byte(cfg.SecretKey),
	}
	return &HTTPServer{
		address: addr,
		logger:  l,
		handler: h.routes(cfg),
	}
}

// Handler returns the fully wired router.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *HTTPServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "graceful shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}

func (h *handler) routes(cfg *config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.logger))
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.respondWithError(w, http.StatusNotFound, codeNotFound, "Resource not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.respondWithError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "Method not allowed", nil)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.Post("/refresh", h.refresh)
			r.With(h.authenticate).Get("/me", h.me)
		})

		r.Route("/todos", func(r chi.Router) {
			r.Use(h.authenticate)
			r.Get("/", h.listTodos)
			r.Post("/", h.createTodo)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getTodo)
				r.Put("/", h.updateTodo)
				r.Patch("/", h.updateTodo)
				r.Delete("/", h.deleteTodo)
				r.Post("/toggle", h.toggleTodo)
			})
		})
	})

	return r
}
