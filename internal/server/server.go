// Package server provides the HTTP API for CV content generation, accounts and saved CVs.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/editor"
	"github.com/jonathan/cv-builder/internal/server/middleware"
	"github.com/jonathan/cv-builder/internal/server/ratelimit"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// shutdownTimeout is how long in-flight requests get to finish on shutdown.
const shutdownTimeout = 30 * time.Second

// DBClient is the subset of *db.DB the server uses.
type DBClient interface {
	Ping(ctx context.Context) error
	CreateUser(ctx context.Context, name, email, passwordHash string) (uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	SaveCV(ctx context.Context, cv *db.SavedCV) (*db.SavedCV, error)
	GetCV(ctx context.Context, userID, id uuid.UUID) (*db.SavedCV, error)
	ListCVs(ctx context.Context, userID uuid.UUID) ([]db.SavedCVSummary, error)
	DeleteCV(ctx context.Context, userID, id uuid.UUID) error
	RecordUsage(ctx context.Context, rec db.UsageRecord) error
	CountUsageSince(ctx context.Context, userID *uuid.UUID, ip string, since time.Time) (int, error)
}

// JobFetcher resolves a job posting URL to its description text.
type JobFetcher interface {
	FetchJobDescription(ctx context.Context, url string) (string, error)
}

// Deps are the collaborators of a Server. DB, JWT and Passwords are optional;
// without them the account and saved-CV endpoints report themselves unavailable.
type Deps struct {
	Config    *config.Config
	Generator editor.Generator
	IDs       cv.IDGenerator
	DB        DBClient
	JWT       *config.JWTConfig
	Passwords *config.PasswordConfig
	Jobs      JobFetcher
	Logger    *zap.Logger
}

// Server is the HTTP API server.
type Server struct {
	cfg       *config.Config
	generator editor.Generator
	ids       cv.IDGenerator
	db        DBClient
	jobs      JobFetcher
	logger    *zap.Logger

	users       *UserService
	jwtService  *JWTService
	authHandler *AuthHandler
	auth        *middleware.Authenticator
	limiter     *ratelimit.Limiter
	validate    *validator.Validate

	handler http.Handler
}

// New creates a server and registers its routes.
func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.IDs == nil {
		deps.IDs = cv.UUIDGenerator{}
	}

	s := &Server{
		cfg:       deps.Config,
		generator: deps.Generator,
		ids:       deps.IDs,
		db:        deps.DB,
		jobs:      deps.Jobs,
		logger:    deps.Logger,
		limiter:   ratelimit.NewLimiter(ratelimit.PerHour(deps.Config.RateLimit)),
		validate:  validator.New(),
	}

	if deps.DB != nil && deps.JWT != nil && deps.Passwords != nil {
		s.users = NewUserService(deps.DB, deps.Passwords)
		s.jwtService = NewJWTService(deps.JWT)
		s.authHandler = NewAuthHandler(s.users, s.jwtService, s.logger)
		s.auth = middleware.NewAuthenticator(s.jwtService.AsTokenValidator(), s.unauthorized)
	} else {
		s.logger.Info("accounts disabled", zap.Bool("database", deps.DB != nil), zap.Bool("jwt", deps.JWT != nil))
	}

	mux := http.NewServeMux()

	generate := func(h http.HandlerFunc) http.Handler {
		return s.optionalAuth(s.withGuestPolicy(s.withRateLimit(h)))
	}
	mux.Handle("POST /api/v1/generate", generate(s.handleGenerate))
	mux.Handle("POST /ajax", generate(s.handleAjax))
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/v1/auth/register", s.accountsOnly(s.handleRegister))
	mux.HandleFunc("POST /api/v1/auth/login", s.accountsOnly(s.handleLogin))
	mux.Handle("GET /api/v1/usage", s.requireAuth(s.handleUsage))

	mux.Handle("GET /api/v1/cvs", s.requireSave(s.handleListCVs))
	mux.Handle("POST /api/v1/cvs", s.requireSave(s.handleSaveCV))
	mux.Handle("GET /api/v1/cvs/{id}", s.requireSave(s.handleGetCV))
	mux.Handle("DELETE /api/v1/cvs/{id}", s.requireSave(s.handleDeleteCV))

	s.handler = s.withLogging(s.withCORS(http.MaxBytesHandler(mux, maxBodyBytes)))
	return s, nil
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		// Generation calls may take up to the configured model timeout.
		WriteTimeout: s.cfg.Timeout() + 30*time.Second,
		IdleTimeout:  2 * time.Minute,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server starting", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.Close()
	s.logger.Info("server stopped")
	return err
}

// Close releases background resources.
func (s *Server) Close() {
	s.limiter.Stop()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.String("client", clientIP(r)),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// optionalAuth attaches the user of a bearer token when accounts are enabled.
func (s *Server) optionalAuth(next http.Handler) http.Handler {
	if s.auth == nil {
		return next
	}
	return s.auth.Optional(next)
}

// withGuestPolicy rejects anonymous generation when guest usage is disabled.
func (s *Server) withGuestPolicy(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.UserID(r.Context()); !ok && !s.cfg.GuestsAllowed() {
			s.writeError(w, r, &ErrAuthRequired{Reason: "please log in to use the AI features"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit limits generation per user, or per IP for guests.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.limiter.Allow(clientKey(r))
		setRateLimitHeaders(w, info)
		if !allowed {
			s.writeError(w, r, &ErrRateLimited{Limit: info.Limit, RetryAfter: info.RetryAfter})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth rejects anonymous requests, or every request when accounts are disabled.
func (s *Server) requireAuth(h http.HandlerFunc) http.Handler {
	if s.auth == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.writeError(w, r, &ErrFeatureDisabled{Feature: "user accounts"})
		})
	}
	return s.auth.Require(h)
}

// requireSave guards the saved-CV endpoints.
func (s *Server) requireSave(h http.HandlerFunc) http.Handler {
	if !s.cfg.SaveEnabled() {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.writeError(w, r, &ErrFeatureDisabled{Feature: "saving CVs"})
		})
	}
	return s.requireAuth(h)
}

func (s *Server) accountsOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authHandler == nil {
			s.writeError(w, r, &ErrFeatureDisabled{Feature: "user accounts"})
			return
		}
		h(w, r)
	}
}

func (s *Server) unauthorized(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, &ErrAuthRequired{})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "database": "disabled"}
	code := http.StatusOK
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			s.logger.Warn("database health check failed", zap.Error(err))
			status["status"] = "degraded"
			status["database"] = "unavailable"
			code = http.StatusServiceUnavailable
		} else {
			status["database"] = "ok"
		}
	}
	s.jsonResponse(w, code, status)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	s.authHandler.Register(w, r)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.authHandler.Login(w, r)
}

// envelope is the response shape of every API endpoint except /health.
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, s.logger, status, data)
}

// writeSuccess writes {"success": true, "data": data}.
func (s *Server) writeSuccess(w http.ResponseWriter, status int, data any) {
	s.jsonResponse(w, status, envelope{Success: true, Data: data})
}

// writeError maps err to a status and writes {"success": false, "data": {...}}.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	} else {
		s.logger.Debug("request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	}
	var limited *ErrRateLimited
	if errors.As(err, &limited) && limited.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(limited.RetryAfter.Seconds())))
	}
	s.jsonResponse(w, status, envelope{Success: false, Data: failureFor(err, status)})
}

// decodeJSON decodes the request body into dst, rejecting unknown trailing data.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if dec.More() {
		return &ErrValidation{Field: "body", Message: "unexpected data after JSON object"}
	}
	return nil
}

// clientIP returns the IP part of RemoteAddr.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// clientKey identifies the caller for rate limiting: the user when logged in, else the IP.
func clientKey(r *http.Request) string {
	if userID, ok := middleware.UserID(r.Context()); ok {
		return "user:" + userID.String()
	}
	return "ip:" + clientIP(r)
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}
