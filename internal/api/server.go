// Package api exposes the safety core over HTTP for the surrounding
// platform: registration and tier reads, the guardian consent lifecycle,
// content screening at publish time, crisis reports, responder actions,
// and the audit feed.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/trygglabs/trygg/internal/classify"
	"github.com/trygglabs/trygg/internal/database/service"
	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/database/types/enum"
	"github.com/trygglabs/trygg/internal/setup/config"
	"go.uber.org/zap"
)

// Service interfaces consumed by the handlers. The concrete database
// services satisfy them; tests substitute stubs.

// UserService covers registration and age input management.
type UserService interface {
	Register(ctx context.Context, params service.RegisterParams) (*types.User, enum.Tier, error)
	Get(ctx context.Context, userID uuid.UUID, now time.Time) (*types.User, enum.Tier, error)
	CorrectBirthDate(ctx context.Context, userID uuid.UUID, birthDate time.Time) (*types.User, enum.Tier, error)
}

// ConsentService covers the guardian consent lifecycle.
type ConsentService interface {
	Request(ctx context.Context, userID uuid.UUID, guardianContact string, method enum.ConsentMethod) (*types.ConsentRecord, error)
	Decide(ctx context.Context, recordID uuid.UUID, approve bool, actorID string) (*types.ConsentRecord, error)
	Revoke(ctx context.Context, userID uuid.UUID, actorID string) error
	IsGated(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error)
}

// SafetyService covers the crisis state machine and responder actions.
type SafetyService interface {
	Trigger(ctx context.Context, params service.TriggerParams) (*service.TriggerResult, error)
	Accept(ctx context.Context, alertID uuid.UUID, responderID string) (*types.Alert, error)
	Resolve(ctx context.Context, userID uuid.UUID, responderID string, disposition enum.Disposition) (*types.SafetyState, error)
	GetState(ctx context.Context, userID uuid.UUID, now time.Time) (*types.SafetyState, error)
	IsRestricted(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error)
}

// AuditLog covers the read side of the audit feed.
type AuditLog interface {
	GetEntries(ctx context.Context, filter types.AuditFilter, cursor *types.AuditCursor, limit int) ([]*types.AuditEntry, *types.AuditCursor, error)
}

// Screener classifies submitted content. A nil result means no finding;
// classifier failures are absorbed behind it.
type Screener interface {
	Screen(ctx context.Context, userID uuid.UUID, contentRef, text string) *classify.Classification
}

// Server is the HTTP API server.
type Server struct {
	router   *mux.Router
	http     *http.Server
	users    UserService
	consents ConsentService
	safety   SafetyService
	audit    AuditLog
	screener Screener
	cfg      *config.ServerConfig
	logger   *zap.Logger
}

// NewServer creates the API server with its routes and middleware wired.
func NewServer(
	cfg *config.ServerConfig,
	users UserService,
	consents ConsentService,
	safety SafetyService,
	audit AuditLog,
	screener Screener,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		users:    users,
		consents: consents,
		safety:   safety,
		audit:    audit,
		screener: screener,
		cfg:      cfg,
		logger:   logger.Named("api"),
	}

	s.setupRouter()

	return s
}

// setupRouter configures middleware and routes, then builds the HTTP
// server around them.
func (s *Server) setupRouter() {
	// Middleware order matters: logging wraps everything so even a
	// recovered panic is logged with its final status.
	s.router.Use(loggingMiddleware(s.logger))
	s.router.Use(recoveryMiddleware(s.logger))
	s.router.Use(rateLimitMiddleware(newRateLimiter(&s.cfg.RateLimit)))
	s.router.Use(contentTypeMiddleware)

	s.setupRoutes()

	requestTimeout := time.Duration(s.cfg.RequestTimeout) * time.Millisecond
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	s.http = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  requestTimeout,
		WriteTimeout: requestTimeout,
		IdleTimeout:  60 * time.Second,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/v1").Subrouter()

	// Accounts and tiers
	v1.HandleFunc("/users", s.handleRegisterUser).Methods(http.MethodPost)
	v1.HandleFunc("/users/{id}/access", s.handleAccessProfile).Methods(http.MethodGet)
	v1.HandleFunc("/users/{id}/birthdate", s.handleCorrectBirthDate).Methods(http.MethodPut)

	// Guardian consent
	v1.HandleFunc("/users/{id}/consent", s.handleRequestConsent).Methods(http.MethodPost)
	v1.HandleFunc("/users/{id}/consent", s.handleRevokeConsent).Methods(http.MethodDelete)
	v1.HandleFunc("/consents/{id}/decision", s.handleDecideConsent).Methods(http.MethodPost)

	// Content screening and crisis flow
	v1.HandleFunc("/content", s.handleSubmitContent).Methods(http.MethodPost)
	v1.HandleFunc("/reports", s.handleSubmitReport).Methods(http.MethodPost)
	v1.HandleFunc("/alerts/{id}/accept", s.handleAcceptAlert).Methods(http.MethodPost)
	v1.HandleFunc("/users/{id}/safety/resolve", s.handleResolveSafety).Methods(http.MethodPost)
	v1.HandleFunc("/users/{id}/safety", s.handleSafetyState).Methods(http.MethodGet)

	// Audit feed
	v1.HandleFunc("/audit", s.handleListAudit).Methods(http.MethodGet)
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "trygg",
	})
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("Starting API server", zap.String("addr", s.http.Addr))

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server failed: %w", err)
	}

	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.http.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// pathUUID extracts a UUID path variable.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)[name])
}
