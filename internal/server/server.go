// Package server provides the HTTP REST API for the resume builder.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/fetch"
	"github.com/jonathan/resume-builder/internal/generate"
	"github.com/jonathan/resume-builder/internal/pipeline"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
	"github.com/jonathan/resume-builder/internal/session"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Optimizer runs the optimization pipeline. *pipeline.Orchestrator implements it.
type Optimizer interface {
	Run(ctx context.Context, opts pipeline.RunOptions) (*pipeline.CandidateResume, error)
}

// Generator drafts single resume fields. *generate.Generator implements it.
type Generator interface {
	GenerateAbout(ctx context.Context, profile *types.Profile) (*generate.AboutResult, error)
	GenerateBulletPoints(ctx context.Context, req generate.BulletRequest) (*generate.BulletsResult, error)
	GenerateSkills(ctx context.Context, profile *types.Profile) (*generate.SkillsResult, error)
}

// Assistant answers chat turns. *assistant.Assistant implements it.
type Assistant interface {
	Chat(ctx context.Context, profile *types.Profile, messages []types.ChatMessage) (*types.ChatReply, error)
}

// Compiler turns LaTeX into PDF bytes. *export.Compiler implements it.
type Compiler interface {
	Compile(ctx context.Context, latex string) ([]byte, error)
}

// Archiver stores exported documents. *export.Archiver implements it.
type Archiver interface {
	Archive(ctx context.Context, userID, latex string, pdf []byte) (*export.Archived, error)
}

// RunStore lists persisted optimization runs. db.DB implements it.
type RunStore interface {
	GetRun(ctx context.Context, runID uuid.UUID) (*db.Run, error)
	ListRuns(ctx context.Context, userID string, limit int) ([]db.Run, error)
	ListArtifacts(ctx context.Context, runID uuid.UUID) ([]db.Artifact, error)
}

// SubscriptionChecker backs the billing gate. db.DB implements it.
type SubscriptionChecker interface {
	HasActiveOrTrialingSubscription(ctx context.Context, email string) (bool, error)
}

// Deps are the services the API is built on. Runs, Subscriptions and
// Archiver may be nil; the matching feature is then disabled.
type Deps struct {
	Profiles      store.ProfileStore
	Jobs          store.JobPostingStore
	Sessions      session.Store
	Pipeline      Optimizer
	Generator     Generator
	Assistant     Assistant
	Importer      fetch.JobImporter
	Compiler      Compiler
	Archiver      Archiver
	Users         UserStore
	Runs          RunStore
	Subscriptions SubscriptionChecker
	JWT           *JWTService
	Passwords     *config.PasswordConfig
}

// Options holds listener and middleware settings.
type Options struct {
	Port        int
	CORSOrigins []string
	RateLimit   *ratelimit.Config
}

// Server represents the HTTP server
type Server struct {
	deps        Deps
	opts        Options
	httpServer  *http.Server
	rateLimiter *ratelimit.Limiter
	authHandler *AuthHandler
	handler     http.Handler
	onShutdown  []func()
}

// New creates a new server instance
func New(deps Deps, opts Options) (*Server, error) {
	switch {
	case deps.Profiles == nil:
		return nil, errors.New("server: profile store is required")
	case deps.Sessions == nil:
		return nil, errors.New("server: session store is required")
	case deps.Pipeline == nil || deps.Generator == nil || deps.Assistant == nil:
		return nil, errors.New("server: pipeline, generator and assistant are required")
	case deps.Users == nil || deps.JWT == nil || deps.Passwords == nil:
		return nil, errors.New("server: user store, JWT service and password config are required")
	}
	if opts.RateLimit == nil {
		opts.RateLimit = ratelimit.LoadConfig()
	}

	s := &Server{
		deps:        deps,
		opts:        opts,
		rateLimiter: ratelimit.NewLimiter(opts.RateLimit),
		authHandler: NewAuthHandler(NewUserService(deps.Users, deps.Passwords), deps.JWT),
	}

	authed := middleware.AuthMiddleware(deps.JWT.AsTokenValidator())
	protect := func(h http.HandlerFunc) http.Handler { return authed(h) }
	recruiter := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireRole(types.RoleRecruiter)(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /v1/auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /v1/auth/login", s.authHandler.Login)
	mux.Handle("GET /v1/auth/me", protect(s.authHandler.Me))

	mux.Handle("GET /v1/profile", protect(s.handleGetProfile))
	mux.Handle("PUT /v1/profile", protect(s.handlePutProfile))
	mux.Handle("POST /v1/profile/{section}", protect(s.handleAppendSection))

	mux.Handle("POST /v1/latex", protect(s.handleCreateLatex))
	mux.HandleFunc("GET /v1/latex/{id}", s.handleGetLatex)
	mux.Handle("POST /v1/pdf", protect(s.handlePDF))

	mux.Handle("POST /v1/optimize", protect(s.billed(s.handleOptimize)))
	mux.Handle("POST /v1/optimize/stream", protect(s.billed(s.handleOptimizeStream)))

	mux.Handle("POST /v1/generate/about", protect(s.billed(s.handleGenerateAbout)))
	mux.Handle("POST /v1/generate/bullets", protect(s.billed(s.handleGenerateBullets)))
	mux.Handle("POST /v1/generate/skills", protect(s.billed(s.handleGenerateSkills)))

	mux.Handle("POST /v1/assistant/chat", protect(s.billed(s.handleAssistantChat)))

	mux.Handle("POST /v1/jobs", recruiter(s.handleCreateJob))
	mux.Handle("GET /v1/jobs", recruiter(s.handleListJobs))
	mux.Handle("GET /v1/jobs/{id}", protect(s.handleGetJob))
	mux.Handle("POST /v1/jobs/import", protect(s.handleImportJob))

	mux.Handle("GET /v1/runs", protect(s.handleListRuns))
	mux.Handle("GET /v1/runs/{id}", protect(s.handleGetRun))
	mux.Handle("GET /v1/runs/{id}/artifacts", protect(s.handleRunArtifacts))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for pipeline runs
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// OnShutdown registers fn to run after the listener has drained.
func (s *Server) OnShutdown(fn func()) {
	s.onShutdown = append(s.onShutdown, fn)
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("[server] shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.Close()
	log.Println("[server] stopped")
	return nil
}

// Close stops background work and runs shutdown hooks.
func (s *Server) Close() {
	s.rateLimiter.Stop()
	for _, fn := range s.onShutdown {
		fn()
	}
	s.onShutdown = nil
}

// withCORS adds CORS headers for the configured origins.
func (s *Server) withCORS(next http.Handler) http.Handler {
	allowAll := len(s.opts.CORSOrigins) == 0 || slices.Contains(s.opts.CORSOrigins, "*")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(s.opts.CORSOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logs.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Flush keeps SSE streaming working through the logging middleware.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[%s] %s %d in %v", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

// billed enforces the subscription gate when one is configured.
func (s *Server) billed(next http.HandlerFunc) http.HandlerFunc {
	if s.deps.Subscriptions == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := middleware.PrincipalFrom(r.Context())
		if !ok {
			errorResponse(w, http.StatusUnauthorized, "unauthorized", "authentication required")
			return
		}
		active, err := s.deps.Subscriptions.HasActiveOrTrialingSubscription(r.Context(), p.GetEmail())
		if err != nil {
			log.Printf("[server] subscription lookup for %s failed: %v", p.GetEmail(), err)
			writeError(w, err)
			return
		}
		if !active {
			writeError(w, ErrSubscriptionRequired)
			return
		}
		next(w, r)
	}
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// userKey is the store key of the authenticated caller.
func userKey(r *http.Request) (string, bool) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		return "", false
	}
	return p.GetUserID().String(), true
}

// jsonResponse writes a JSON response
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func errorResponse(w http.ResponseWriter, status int, code, message string) {
	jsonResponse(w, status, map[string]string{"error": message, "code": code})
}

// writeError maps err to a status and reason code.
func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("[server] internal error: %v", err)
		message = "internal server error"
	}
	errorResponse(w, status, code, message)
}

// decodeJSON reads a JSON body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		msg := "Invalid request body"
		if errors.Is(err, io.EOF) {
			msg = "Request body is empty"
		}
		errorResponse(w, http.StatusBadRequest, "invalid_request", msg)
		return false
	}
	return true
}

// extractClientID returns the caller's IP from RemoteAddr.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "Rate limit exceeded. Please try again later.",
		"code":      "rate_limit_exceeded",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] exceeded: limit=%d reset=%s", info.Limit, info.ResetTime.Format(time.RFC3339))
	jsonResponse(w, http.StatusTooManyRequests, response)
}

// pathID parses the {id} path value as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(r.PathValue("id")))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}
