// Package http wires the budgeting routes: public landing/signup/login pages
// and the session-gated dashboard and ledger forms.
package http

import (
	"context"
	"html/template"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"budgeting/internal/amqp"
	"budgeting/internal/auth"
	"budgeting/internal/core"
	applog "budgeting/internal/log"
	appweb "budgeting/web"
)

// LedgerStore is the slice of the repository the handlers need.
type LedgerStore interface {
	CreateIncome(ctx context.Context, e core.IncomeEntry) (int64, error)
	CreateExpense(ctx context.Context, e core.ExpenseEntry) (int64, error)
	ListIncomes(ctx context.Context, userID int64) ([]core.IncomeEntry, error)
	ListExpenses(ctx context.Context, userID int64) ([]core.ExpenseEntry, error)
	Ping(ctx context.Context) error
}

type Server struct {
	http.Server
	templates *template.Template
	creds     *auth.Credentials
	sessions  *auth.Manager
	ledger    LedgerStore
	events    amqp.EntryPublisher
	logger    *applog.Logger

	loginLimiter *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, creds *auth.Credentials, sessions *auth.Manager, ledger LedgerStore, events amqp.EntryPublisher, logger *applog.Logger) (*Server, error) {
	if events == nil {
		events = amqp.NoopPublisher{}
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	mux := chi.NewRouter()
	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		templates:    t,
		creds:        creds,
		sessions:     sessions,
		ledger:       ledger,
		events:       events,
		logger:       logger.WithComponent(applog.ComponentHTTP),
		loginLimiter: newRateLimiter(),
	}

	mux.Use(chimw.RealIP)
	mux.Use(s.requestLogger)
	mux.Use(s.securityHeaders)
	mux.Use(chimw.Recoverer)

	mux.Get("/", s.handleIndex)
	mux.Get("/healthz", s.handleHealth)
	mux.Get("/readyz", s.handleReady)

	mux.Get("/signup", s.handleSignupForm)
	mux.With(s.throttleAuth).Post("/signup", s.handleSignup)
	mux.Get("/login", s.handleLoginForm)
	mux.With(s.throttleAuth).Post("/login", s.handleLogin)
	mux.Get("/logout", s.handleLogout)

	mux.Group(func(r chi.Router) {
		r.Use(s.requireUser)
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/add_income", s.handleAddIncomeForm)
		r.Post("/add_income", s.handleAddIncome)
		r.Get("/add_expense", s.handleAddExpenseForm)
		r.Post("/add_expense", s.handleAddExpense)
	})

	return s, nil
}

// Shutdown stops the rate limiter cleanup goroutine and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.loginLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Ping(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "Readiness check failed", applog.FieldError, err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	// chi routes "/" exactly; anything else under it is a 404.
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.render(w, r, "index.html", nil)
}

// render executes a template, answering with a generic 500 on failure.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err, "template", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
