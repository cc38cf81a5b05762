package api_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trygglabs/trygg/internal/api"
	"github.com/trygglabs/trygg/internal/classify"
	"github.com/trygglabs/trygg/internal/database/service"
	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/database/types/enum"
	"github.com/trygglabs/trygg/internal/setup/config"
	"go.uber.org/zap"
)

// Stub services with overridable behavior. The defaults describe a
// healthy adult account with nothing on file.

type stubUserService struct {
	registerFunc func(ctx context.Context, params service.RegisterParams) (*types.User, enum.Tier, error)
	getFunc      func(ctx context.Context, userID uuid.UUID, now time.Time) (*types.User, enum.Tier, error)
	correctFunc  func(ctx context.Context, userID uuid.UUID, birthDate time.Time) (*types.User, enum.Tier, error)
}

func (s *stubUserService) Register(ctx context.Context, params service.RegisterParams) (*types.User, enum.Tier, error) {
	if s.registerFunc != nil {
		return s.registerFunc(ctx, params)
	}

	now := time.Now().UTC()

	return &types.User{
		ID:          uuid.New(),
		ExternalRef: params.ExternalRef,
		BirthDate:   params.BirthDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, enum.TierAdult, nil
}

func (s *stubUserService) Get(ctx context.Context, userID uuid.UUID, now time.Time) (*types.User, enum.Tier, error) {
	if s.getFunc != nil {
		return s.getFunc(ctx, userID, now)
	}

	birth := now.AddDate(-30, 0, 0)

	return &types.User{
		ID:          userID,
		ExternalRef: "user-" + userID.String()[:8],
		BirthDate:   &birth,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, enum.TierAdult, nil
}

func (s *stubUserService) CorrectBirthDate(ctx context.Context, userID uuid.UUID, birthDate time.Time) (*types.User, enum.Tier, error) {
	if s.correctFunc != nil {
		return s.correctFunc(ctx, userID, birthDate)
	}

	now := time.Now().UTC()

	return &types.User{
		ID:        userID,
		BirthDate: &birthDate,
		CreatedAt: now,
		UpdatedAt: now,
	}, enum.TierAdult, nil
}

type stubConsentService struct {
	requestFunc func(ctx context.Context, userID uuid.UUID, guardianContact string, method enum.ConsentMethod) (*types.ConsentRecord, error)
	decideFunc  func(ctx context.Context, recordID uuid.UUID, approve bool, actorID string) (*types.ConsentRecord, error)
	revokeFunc  func(ctx context.Context, userID uuid.UUID, actorID string) error
	isGatedFunc func(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error)
}

func (s *stubConsentService) Request(ctx context.Context, userID uuid.UUID, guardianContact string, method enum.ConsentMethod) (*types.ConsentRecord, error) {
	if s.requestFunc != nil {
		return s.requestFunc(ctx, userID, guardianContact, method)
	}

	return &types.ConsentRecord{
		ID:              uuid.New(),
		UserID:          userID,
		GuardianContact: guardianContact,
		Method:          method,
		Status:          enum.ConsentStatusPending,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

func (s *stubConsentService) Decide(ctx context.Context, recordID uuid.UUID, approve bool, actorID string) (*types.ConsentRecord, error) {
	if s.decideFunc != nil {
		return s.decideFunc(ctx, recordID, approve, actorID)
	}

	now := time.Now().UTC()
	record := &types.ConsentRecord{
		ID:        recordID,
		UserID:    uuid.New(),
		Status:    enum.ConsentStatusDenied,
		CreatedAt: now.Add(-time.Hour),
		DecidedAt: &now,
	}

	if approve {
		expires := now.Add(types.ConsentValidity)
		record.Status = enum.ConsentStatusApproved
		record.ExpiresAt = &expires
	}

	return record, nil
}

func (s *stubConsentService) Revoke(ctx context.Context, userID uuid.UUID, actorID string) error {
	if s.revokeFunc != nil {
		return s.revokeFunc(ctx, userID, actorID)
	}

	return nil
}

func (s *stubConsentService) IsGated(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	if s.isGatedFunc != nil {
		return s.isGatedFunc(ctx, userID, now)
	}

	return false, nil
}

type stubSafetyService struct {
	triggerFunc      func(ctx context.Context, params service.TriggerParams) (*service.TriggerResult, error)
	acceptFunc       func(ctx context.Context, alertID uuid.UUID, responderID string) (*types.Alert, error)
	resolveFunc      func(ctx context.Context, userID uuid.UUID, responderID string, disposition enum.Disposition) (*types.SafetyState, error)
	getStateFunc     func(ctx context.Context, userID uuid.UUID, now time.Time) (*types.SafetyState, error)
	isRestrictedFunc func(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error)
}

func (s *stubSafetyService) Trigger(ctx context.Context, params service.TriggerParams) (*service.TriggerResult, error) {
	if s.triggerFunc != nil {
		return s.triggerFunc(ctx, params)
	}

	now := time.Now().UTC()
	incident := &types.Incident{
		ID:         uuid.New(),
		UserID:     params.UserID,
		ContentRef: params.ContentRef,
		Severity:   params.Severity,
		Category:   params.Category,
		Source:     params.Source,
		ReportedBy: params.ReportedBy,
		CreatedAt:  now,
	}
	state := &types.SafetyState{
		UserID:            params.UserID,
		Status:            enum.SafetyStatusLocked,
		TriggerIncidentID: &incident.ID,
		LockedAt:          &now,
		ChannelID:         "channel-" + params.UserID.String()[:8],
		UpdatedAt:         now,
	}
	alert := &types.Alert{
		ID:         uuid.New(),
		IncidentID: incident.ID,
		UserID:     params.UserID,
		Status:     enum.AlertStatusPending,
		Scope:      1,
		DeadlineAt: now.Add(types.DefaultInitialSLA),
		CreatedAt:  now,
	}

	return &service.TriggerResult{State: state, Incident: incident, Alert: alert, Locked: true}, nil
}

func (s *stubSafetyService) Accept(ctx context.Context, alertID uuid.UUID, responderID string) (*types.Alert, error) {
	if s.acceptFunc != nil {
		return s.acceptFunc(ctx, alertID, responderID)
	}

	now := time.Now().UTC()

	return &types.Alert{
		ID:         alertID,
		IncidentID: uuid.New(),
		UserID:     uuid.New(),
		Status:     enum.AlertStatusAccepted,
		Scope:      1,
		AcceptedBy: responderID,
		AcceptedAt: &now,
		CreatedAt:  now.Add(-time.Minute),
	}, nil
}

func (s *stubSafetyService) Resolve(ctx context.Context, userID uuid.UUID, responderID string, disposition enum.Disposition) (*types.SafetyState, error) {
	if s.resolveFunc != nil {
		return s.resolveFunc(ctx, userID, responderID, disposition)
	}

	now := time.Now().UTC()
	until := now.Add(types.WatchlistWindow)

	return &types.SafetyState{
		UserID:         userID,
		Status:         enum.SafetyStatusWatchlisted,
		ResponderID:    responderID,
		WatchlistUntil: &until,
		UpdatedAt:      now,
	}, nil
}

func (s *stubSafetyService) GetState(ctx context.Context, userID uuid.UUID, now time.Time) (*types.SafetyState, error) {
	if s.getStateFunc != nil {
		return s.getStateFunc(ctx, userID, now)
	}

	return &types.SafetyState{UserID: userID, Status: enum.SafetyStatusNormal, UpdatedAt: now}, nil
}

func (s *stubSafetyService) IsRestricted(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	if s.isRestrictedFunc != nil {
		return s.isRestrictedFunc(ctx, userID, now)
	}

	return false, nil
}

type stubAuditLog struct {
	getEntriesFunc func(ctx context.Context, filter types.AuditFilter, cursor *types.AuditCursor, limit int) ([]*types.AuditEntry, *types.AuditCursor, error)
}

func (s *stubAuditLog) GetEntries(ctx context.Context, filter types.AuditFilter, cursor *types.AuditCursor, limit int) ([]*types.AuditEntry, *types.AuditCursor, error) {
	if s.getEntriesFunc != nil {
		return s.getEntriesFunc(ctx, filter, cursor, limit)
	}

	return nil, nil, nil
}

type stubScreener struct {
	screenFunc func(ctx context.Context, userID uuid.UUID, contentRef, text string) *classify.Classification
}

func (s *stubScreener) Screen(ctx context.Context, userID uuid.UUID, contentRef, text string) *classify.Classification {
	if s.screenFunc != nil {
		return s.screenFunc(ctx, userID, contentRef, text)
	}

	return nil
}

// testBackend bundles the stubs behind one server.
type testBackend struct {
	users    *stubUserService
	consents *stubConsentService
	safety   *stubSafetyService
	audit    *stubAuditLog
	screener *stubScreener
}

func newTestBackend() *testBackend {
	return &testBackend{
		users:    &stubUserService{},
		consents: &stubConsentService{},
		safety:   &stubSafetyService{},
		audit:    &stubAuditLog{},
		screener: &stubScreener{},
	}
}

func newTestServer(backend *testBackend) *api.Server {
	cfg := &config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            8080,
		RequestTimeout:  5000,
		ShutdownTimeout: 1000,
		RateLimit:       config.RateLimit{RequestsPerSecond: 500, Burst: 500},
	}

	return api.NewServer(cfg, backend.users, backend.consents, backend.safety, backend.audit, backend.screener, zap.NewNop())
}

// doJSON performs one request against the server and records the
// response.
func doJSON(t *testing.T, srv *api.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader

	if body != nil {
		raw, err := sonic.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, sonic.ConfigDefault.NewDecoder(w.Body).Decode(&v))

	return v
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	srv := newTestServer(newTestBackend())

	w := doJSON(t, srv, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody[map[string]string](t, w)
	assert.Equal(t, "healthy", body["status"])
}

func TestRegisterUser(t *testing.T) {
	t.Parallel()

	t.Run("creates account with derived tier", func(t *testing.T) {
		t.Parallel()

		backend := newTestBackend()
		backend.users.registerFunc = func(_ context.Context, params service.RegisterParams) (*types.User, enum.Tier, error) {
			require.Equal(t, "platform:42", params.ExternalRef)
			require.NotNil(t, params.BirthDate)
			assert.Equal(t, 2011, params.BirthDate.Year())

			return &types.User{ID: uuid.New(), ExternalRef: params.ExternalRef, BirthDate: params.BirthDate}, enum.TierMinorJunior, nil
		}
		srv := newTestServer(backend)

		w := doJSON(t, srv, http.MethodPost, "/v1/users", map[string]string{
			"externalRef": "platform:42",
			"birthDate":   "2011-06-15",
		})

		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody[struct {
			User *types.User `json:"user"`
			Tier string      `json:"tier"`
		}](t, w)
		assert.Equal(t, "MinorJunior", body.Tier)
		assert.Equal(t, "platform:42", body.User.ExternalRef)
	})

	t.Run("rejects malformed birth date", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(newTestBackend())

		w := doJSON(t, srv, http.MethodPost, "/v1/users", map[string]string{
			"externalRef": "platform:42",
			"birthDate":   "15/06/2011",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps duplicate registration to conflict", func(t *testing.T) {
		t.Parallel()

		backend := newTestBackend()
		backend.users.registerFunc = func(context.Context, service.RegisterParams) (*types.User, enum.Tier, error) {
			return nil, enum.TierIneligible, types.ErrUserExists
		}
		srv := newTestServer(backend)

		w := doJSON(t, srv, http.MethodPost, "/v1/users", map[string]string{
			"externalRef": "platform:42",
			"birthDate":   "2011-06-15",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(newTestBackend())

		w := doJSON(t, srv, http.MethodPost, "/v1/users", map[string]string{
			"externalRef": "platform:42",
			"birthdate":   "2011-06-15",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAccessProfile(t *testing.T) {
	t.Parallel()

	t.Run("adult with clean state has full access", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(newTestBackend())

		w := doJSON(t, srv, http.MethodGet, "/v1/users/"+uuid.NewString()+"/access", nil)

		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody[struct {
			Tier        string `json:"tier"`
			Gated       bool   `json:"gated"`
			Restricted  bool   `json:"restricted"`
			CanPublish  bool   `json:"canPublish"`
			CanUseGated bool   `json:"canUseGatedFeatures"`
		}](t, w)
		assert.Equal(t, "Adult", body.Tier)
		assert.False(t, body.Gated)
		assert.True(t, body.CanPublish)
		assert.True(t, body.CanUseGated)
	})

	t.Run("unconsented minor is gated but may publish", func(t *testing.T) {
		t.Parallel()

		backend := newTestBackend()
		backend.users.getFunc = func(_ context.Context, userID uuid.UUID, now time.Time) (*types.User, enum.Tier, error) {
			birth := now.AddDate(-14, 0, 0)
			return &types.User{ID: userID, BirthDate: &birth}, enum.TierMinorJunior, nil
		}
		backend.consents.isGatedFunc = func(context.Context, uuid.UUID, time.Time) (bool, error) {
			return true, nil
		}
		srv := newTestServer(backend)

		w := doJSON(t, srv, http.MethodGet, "/v1/users/"+uuid.NewString()+"/access", nil)

		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody[struct {
			Tier        string `json:"tier"`
			Gated       bool   `json:"gated"`
			CanPublish  bool   `json:"canPublish"`
			CanUseGated bool   `json:"canUseGatedFeatures"`
		}](t, w)
		assert.Equal(t, "MinorJunior", body.Tier)
		assert.True(t, body.Gated)
		assert.True(t, body.CanPublish, "gating blocks features, not publishing")
		assert.False(t, body.CanUseGated)
	})

	t.Run("locked user cannot publish", func(t *testing.T) {
		t.Parallel()

		backend := newTestBackend()
		backend.safety.getStateFunc = func(_ context.Context, userID uuid.UUID, now time.Time) (*types.SafetyState, error) {
			return &types.SafetyState{UserID: userID, Status: enum.SafetyStatusLocked, UpdatedAt: now}, nil
		}
		srv := newTestServer(backend)

		w := doJSON(t, srv, http.MethodGet, "/v1/users/"+uuid.NewString()+"/access", nil)

		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody[struct {
			SafetyStatus string `json:"safetyStatus"`
			Restricted   bool   `json:"restricted"`
			CanPublish   bool   `json:"canPublish"`
		}](t, w)
		assert.Equal(t, "Locked", body.SafetyStatus)
		assert.True(t, body.Restricted)
		assert.False(t, body.CanPublish)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		t.Parallel()

		backend := newTestBackend()
		backend.users.getFunc = func(context.Context, uuid.UUID, time.Time) (*types.User, enum.Tier, error) {
			return nil, enum.TierIneligible, types.ErrUserNotFound
		}
		srv := newTestServer(backend)

		w := doJSON(t, srv, http.MethodGet, "/v1/users/"+uuid.NewString()+"/access", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCorrectBirthDate(t *testing.T) {
	t.Parallel()

	t.Run("recomputes tier from new date", func(t *testing.T) {
		t.Parallel()

		backend := newTestBackend()
		backend.users.correctFunc = func(_ context.Context, userID uuid.UUID, birthDate time.Time) (*types.User, enum.Tier, error) {
			return &types.User{ID: userID, BirthDate: &birthDate}, enum.TierMinorSenior, nil
		}
		srv := newTestServer(backend)

		w := doJSON(t, srv, http.MethodPut, "/v1/users/"+uuid.NewString()+"/birthdate",
			map[string]string{"birthDate": "2009-03-01"})

		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody[struct {
			Tier string `json:"tier"`
		}](t, w)
		assert.Equal(t, "MinorSenior", body.Tier)
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(newTestBackend())

		w := doJSON(t, srv, http.MethodPut, "/v1/users/"+uuid.NewString()+"/birthdate",
			map[string]string{"birthDate": "not-a-date"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects invalid user id", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(newTestBackend())

		w := doJSON(t, srv, http.MethodPut, "/v1/users/not-a-uuid/birthdate",
			map[string]string{"birthDate": "2009-03-01"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRequestConsent(t *testing.T) {
	t.Parallel()

	t.Run("opens request", func(t *testing.T) {
		t.Parallel()

		backend := newTestBackend()
		backend.consents.requestFunc = func(_ context.Context, userID uuid.UUID, contact string, method enum.ConsentMethod) (*types.ConsentRecord, error) {
			assert.Equal(t, "guardian@example.com", contact)
			assert.Equal(t, enum.ConsentMethodBankID, method)

			return &types.ConsentRecord{
				ID:              uuid.New(),
				UserID:          userID,
				GuardianContact: contact,
				Method:          method,
				Status:          enum.ConsentStatusPending,
				CreatedAt:       time.Now().UTC(),
			}, nil
		}
		srv := newTestServer(backend)

		w := doJSON(t, srv, http.MethodPost, "/v1/users/"+uuid.NewString()+"/consent", map[string]string{
			"guardianContact": "guardian@example.com",
			"method":          "BankID",
		})

		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody[struct {
			Status string `json:"status"`
			Method string `json:"method"`
		}](t, w)
		assert.Equal(t, "Pending", body.Status)
		assert.Equal(t, "BankID", body.Method)
	})

	t.Run("rejects unknown method", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(newTestBackend())

		w := doJSON(t, srv, http.MethodPost, "/v1/users/"+uuid.NewString()+"/consent", map[string]string{
			"guardianContact": "guardian@example.com",
			"method":          "carrier_pigeon",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps duplicate request to conflict", func(t *testing.T) {
		t.Parallel()

		backend := newTestBackend()
		backend.consents.requestFunc = func(context.Context, uuid.UUID, string, enum.ConsentMethod) (*types.ConsentRecord, error) {
			return nil, types.ErrDuplicateActiveRequest
		}
		srv := newTestServer(backend)

		w := doJSON(t, srv, http.MethodPost, "/v1/users/"+uuid.NewString()+"/consent", map[string]string{
			"guardianContact": "guardian@example.com",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestDecideConsent(t *testing.T) {
	t.Parallel()

	t.Run("approval comes back approved", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(newTestBackend())

		w := doJSON(t, srv, http.MethodPost, "/v1/consents/"+uuid.NewString()+"/decision", map[string]any{
			"approve": true,
			"actorId": "guardian-1",
		})

		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody[struct {
			Status string `json:"status"`
		}](t, w)
		assert.Equal(t, "Approved", body.Status)
	})

	t.Run("requires actor id", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(newTestBackend())

		w := doJSON(t, srv, http.MethodPost, "/v1/consents/"+uuid.NewString()+"/decision", map[string]any{
			"approve": true,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps closed window to conflict", func(t *testing.T) {
		t.Parallel()

		backend := newTestBackend()
		backend.consents.decideFunc = func(context.Context, uuid.UUID, bool, string) (*types.ConsentRecord, error) {
			return nil, types.ErrConsentWindowClosed
		}
		srv := newTestServer(backend)

		w := doJSON(t, srv, http.MethodPost, "/v1/consents/"+uuid.NewString()+"/decision", map[string]any{
			"approve": true,
			"actorId": "guardian-1",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestRevokeConsent(t *testing.T) {
	t.Parallel()

	t.Run("revokes with actor from query", func(t *testing.T) {
		t.Parallel()

		var gotActor string

		backend := newTestBackend()
		backend.consents.revokeFunc = func(_ context.Context, _ uuid.UUID, actorID string) error {
			gotActor = actorID
			return nil
		}
		srv := newTestServer(backend)

		w := doJSON(t, srv, http.MethodDelete, "/v1/users/"+uuid.NewString()+"/consent?guardian=guardian-7", nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "guardian-7", gotActor)
	})

	t.Run("requires the guardian parameter", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(newTestBackend())

		w := doJSON(t, srv, http.MethodDelete, "/v1/users/"+uuid.NewString()+"/consent", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSubmitContent(t *testing.T) {
	t.Parallel()

	t.Run("clean content publishes", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(newTestBackend())

		w := doJSON(t, srv, http.MethodPost, "/v1/content", map[string]string{
			"userId":     uuid.NewString(),
			"contentRef": "post:100",
			"text":       "having a nice day",
		})

		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody[struct {
			Severity string `json:"severity"`
			Locked   bool   `json:"locked"`
			Publish  bool   `json:"publish"`
		}](t, w)
		assert.Equal(t, "None", body.Severity)
		assert.False(t, body.Locked)
		assert.True(t, body.Publish)
	})

	t.Run("critical finding locks and denies publish", func(t *testing.T) {
		t.Parallel()

		var captured service.TriggerParams

		backend := newTestBackend()
		backend.screener.screenFunc = func(context.Context, uuid.UUID, string, string) *classify.Classification {
			return &classify.Classification{
				Severity:   enum.SeverityCritical,
				Category:   classify.CategorySelfHarm,
				Confidence: 0.95,
			}
		}
		backend.safety.triggerFunc = func(_ context.Context, params service.TriggerParams) (*service.TriggerResult, error) {
			captured = params
			now := time.Now().UTC()
			incident := &types.Incident{ID: uuid.New(), UserID: params.UserID, ContentRef: params.ContentRef}

			return &service.TriggerResult{
				State:    &types.SafetyState{UserID: params.UserID, Status: enum.SafetyStatusLocked, UpdatedAt: now},
				Incident: incident,
				Alert:    &types.Alert{ID: uuid.New(), IncidentID: incident.ID, UserID: params.UserID},
				Locked:   true,
			}, nil
		}
		backend.safety.getStateFunc = func(_ context.Context, userID uuid.UUID, now time.Time) (*types.SafetyState, error) {
			return &types.SafetyState{UserID: userID, Status: enum.SafetyStatusLocked, UpdatedAt: now}, nil
		}
		srv := newTestServer(backend)

		userID := uuid.New()
		w := doJSON(t, srv, http.MethodPost, "/v1/content", map[string]string{
			"userId":     userID.String(),
			"contentRef": "post:13",
			"text":       "I want to kill myself",
		})

		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody[struct {
			Severity string `json:"severity"`
			Category string `json:"category"`
			Locked   bool   `json:"locked"`
			Publish  bool   `json:"publish"`
		}](t, w)
		assert.Equal(t, "Critical", body.Severity)
		assert.Equal(t, classify.CategorySelfHarm, body.Category)
		assert.True(t, body.Locked)
		assert.False(t, body.Publish)

		assert.Equal(t, userID, captured.UserID)
		assert.Equal(t, "post:13", captured.ContentRef)
		assert.Equal(t, enum.IncidentSourceClassifier, captured.Source)
	})

	t.Run("screening still runs for ineligible users", func(t *testing.T) {
		t.Parallel()

		triggered := false

		backend := newTestBackend()
		backend.users.getFunc = func(_ context.Context, userID uuid.UUID, _ time.Time) (*types.User, enum.Tier, error) {
			return &types.User{ID: userID}, enum.TierIneligible, nil
		}
		backend.screener.screenFunc = func(context.Context, uuid.UUID, string, string) *classify.Classification {
			return &classify.Classification{Severity: enum.SeverityCritical, Category: classify.CategorySelfHarm}
		}
		backend.safety.triggerFunc = func(_ context.Context, params service.TriggerParams) (*service.TriggerResult, error) {
			triggered = true
			now := time.Now().UTC()
			incident := &types.Incident{ID: uuid.New(), UserID: params.UserID}

			return &service.TriggerResult{
				State:    &types.SafetyState{UserID: params.UserID, Status: enum.SafetyStatusLocked, UpdatedAt: now},
				Incident: incident,
				Locked:   true,
			}, nil
		}
		srv := newTestServer(backend)

		w := doJSON(t, srv, http.MethodPost, "/v1/content", map[string]string{
			"userId":     uuid.NewString(),
			"contentRef": "post:66",
			"text":       "I want to kill myself",
		})

		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody[struct {
			Publish bool `json:"publish"`
		}](t, w)
		assert.True(t, triggered, "the publish denial must not short-circuit crisis screening")
		assert.False(t, body.Publish)
	})

	t.Run("requires content ref", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(newTestBackend())

		w := doJSON(t, srv, http.MethodPost, "/v1/content", map[string]string{
			"userId": uuid.NewString(),
			"text":   "hello",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSubmitReport(t *testing.T) {
	t.Parallel()

	t.Run("report locks and returns the responder channel", func(t *testing.T) {
		t.Parallel()

		var captured service.TriggerParams

		backend := newTestBackend()
		backend.safety.triggerFunc = func(_ context.Context, params service.TriggerParams) (*service.TriggerResult, error) {
			captured = params
			now := time.Now().UTC()
			incident := &types.Incident{ID: uuid.New(), UserID: params.UserID, CreatedAt: now}

			return &service.TriggerResult{
				State: &types.SafetyState{
					UserID:    params.UserID,
					Status:    enum.SafetyStatusLocked,
					ChannelID: "channel-99",
					UpdatedAt: now,
				},
				Incident: incident,
				Alert:    &types.Alert{ID: uuid.New(), IncidentID: incident.ID, UserID: params.UserID},
				Locked:   true,
			}, nil
		}
		srv := newTestServer(backend)

		w := doJSON(t, srv, http.MethodPost, "/v1/reports", map[string]string{
			"userId":     uuid.NewString(),
			"contentRef": "profile:55",
			"reporterId": "user:9",
			"note":       "friend posted a goodbye message",
		})

		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody[struct {
			IncidentID string `json:"incidentId"`
			ChannelID  string `json:"channelId"`
			Locked     bool   `json:"locked"`
		}](t, w)
		assert.NotEmpty(t, body.IncidentID)
		assert.Equal(t, "channel-99", body.ChannelID)
		assert.True(t, body.Locked)

		assert.Equal(t, enum.SeverityCritical, captured.Severity)
		assert.Equal(t, enum.IncidentSourceUserReport, captured.Source)
		assert.Equal(t, "user:9", captured.ReportedBy)
	})

	t.Run("requires reporter", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(newTestBackend())

		w := doJSON(t, srv, http.MethodPost, "/v1/reports", map[string]string{
			"userId":     uuid.NewString(),
			"contentRef": "profile:55",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects notes with unsupported characters", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(newTestBackend())

		w := doJSON(t, srv, http.MethodPost, "/v1/reports", map[string]string{
			"userId":     uuid.NewString(),
			"contentRef": "profile:55",
			"reporterId": "user:9",
			"note":       "look at this <script>",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAcceptAlert(t *testing.T) {
	t.Parallel()

	t.Run("first accept wins", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(newTestBackend())

		w := doJSON(t, srv, http.MethodPost, "/v1/alerts/"+uuid.NewString()+"/accept",
			map[string]string{"responderId": "responder-1"})

		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody[struct {
			Status string       `json:"status"`
			Alert  *types.Alert `json:"alert"`
		}](t, w)
		assert.Equal(t, "Accepted", body.Status)
		assert.Equal(t, "responder-1", body.Alert.AcceptedBy)
	})

	t.Run("second accept reads as already handled", func(t *testing.T) {
		t.Parallel()

		backend := newTestBackend()
		backend.safety.acceptFunc = func(context.Context, uuid.UUID, string) (*types.Alert, error) {
			return nil, types.ErrAlreadyAccepted
		}
		srv := newTestServer(backend)

		w := doJSON(t, srv, http.MethodPost, "/v1/alerts/"+uuid.NewString()+"/accept",
			map[string]string{"responderId": "responder-2"})

		require.Equal(t, http.StatusConflict, w.Code)

		body := decodeBody[struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}](t, w)
		assert.Equal(t, "CONFLICT", body.Error.Code)
		assert.Contains(t, body.Error.Message, "already been accepted")
	})

	t.Run("missing responder is invalid", func(t *testing.T) {
		t.Parallel()

		backend := newTestBackend()
		backend.safety.acceptFunc = func(_ context.Context, _ uuid.UUID, responderID string) (*types.Alert, error) {
			if responderID == "" {
				return nil, types.ErrMissingResponderID
			}

			return nil, types.ErrAlertNotFound
		}
		srv := newTestServer(backend)

		w := doJSON(t, srv, http.MethodPost, "/v1/alerts/"+uuid.NewString()+"/accept", map[string]string{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestResolveSafety(t *testing.T) {
	t.Parallel()

	t.Run("resolution lands on the watchlist", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(newTestBackend())

		w := doJSON(t, srv, http.MethodPost, "/v1/users/"+uuid.NewString()+"/safety/resolve", map[string]string{
			"responderId": "responder-1",
			"disposition": "HandedOff",
		})

		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody[struct {
			Status string `json:"status"`
		}](t, w)
		assert.Equal(t, "Watchlisted", body.Status)
	})

	t.Run("rejects unknown disposition", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(newTestBackend())

		w := doJSON(t, srv, http.MethodPost, "/v1/users/"+uuid.NewString()+"/safety/resolve", map[string]string{
			"responderId": "responder-1",
			"disposition": "shrug",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("maps non-escalated state to conflict", func(t *testing.T) {
		t.Parallel()

		backend := newTestBackend()
		backend.safety.resolveFunc = func(context.Context, uuid.UUID, string, enum.Disposition) (*types.SafetyState, error) {
			return nil, types.ErrNotEscalated
		}
		srv := newTestServer(backend)

		w := doJSON(t, srv, http.MethodPost, "/v1/users/"+uuid.NewString()+"/safety/resolve", map[string]string{
			"responderId": "responder-1",
			"disposition": "Safe",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestSafetyState(t *testing.T) {
	t.Parallel()

	t.Run("lapsed watchlist reads as normal", func(t *testing.T) {
		t.Parallel()

		backend := newTestBackend()
		backend.safety.getStateFunc = func(_ context.Context, userID uuid.UUID, now time.Time) (*types.SafetyState, error) {
			until := now.Add(-time.Hour)
			return &types.SafetyState{
				UserID:         userID,
				Status:         enum.SafetyStatusWatchlisted,
				WatchlistUntil: &until,
				UpdatedAt:      now,
			}, nil
		}
		srv := newTestServer(backend)

		w := doJSON(t, srv, http.MethodGet, "/v1/users/"+uuid.NewString()+"/safety", nil)

		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody[struct {
			Status string `json:"status"`
		}](t, w)
		assert.Equal(t, "Normal", body.Status)
	})
}

func TestListAudit(t *testing.T) {
	t.Parallel()

	t.Run("pages with an opaque cursor", func(t *testing.T) {
		t.Parallel()

		pageTime := time.Unix(1700000000, 123456789).UTC()
		var gotCursor *types.AuditCursor

		backend := newTestBackend()
		backend.audit.getEntriesFunc = func(_ context.Context, _ types.AuditFilter, cursor *types.AuditCursor, _ int) ([]*types.AuditEntry, *types.AuditCursor, error) {
			if cursor != nil {
				gotCursor = cursor
				return nil, nil, nil
			}

			entries := []*types.AuditEntry{
				{
					ID:         2,
					EntityKind: enum.EntityKindSafety,
					EntityID:   uuid.NewString(),
					ToState:    "Locked",
					ActorKind:  enum.ActorKindSystem,
					Reason:     enum.ReasonCodeCriticalContent,
					CreatedAt:  pageTime,
				},
				{
					ID:         1,
					EntityKind: enum.EntityKindConsent,
					EntityID:   uuid.NewString(),
					ToState:    "Pending",
					ActorKind:  enum.ActorKindSystem,
					Reason:     enum.ReasonCodeConsentRequested,
					CreatedAt:  pageTime.Add(-time.Minute),
				},
			}

			return entries, &types.AuditCursor{Timestamp: pageTime.Add(-time.Hour), ID: 7}, nil
		}
		srv := newTestServer(backend)

		w := doJSON(t, srv, http.MethodGet, "/v1/audit?limit=2", nil)

		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody[struct {
			Entries []struct {
				Reason     string `json:"reason"`
				EntityKind string `json:"entityKind"`
			} `json:"entries"`
			NextCursor string `json:"nextCursor"`
		}](t, w)
		require.Len(t, body.Entries, 2)
		assert.Equal(t, "CriticalContent", body.Entries[0].Reason)
		assert.Equal(t, "Safety", body.Entries[0].EntityKind)
		require.NotEmpty(t, body.NextCursor)

		w = doJSON(t, srv, http.MethodGet, "/v1/audit?cursor="+body.NextCursor, nil)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, gotCursor, "the returned cursor must decode back to a position")
		assert.Equal(t, pageTime.Add(-time.Hour), gotCursor.Timestamp)
		assert.Equal(t, int64(7), gotCursor.ID)
	})

	t.Run("rejects unknown entity kind", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(newTestBackend())

		w := doJSON(t, srv, http.MethodGet, "/v1/audit?entityKind=Spaceship", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects a lone time bound", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(newTestBackend())

		w := doJSON(t, srv, http.MethodGet, "/v1/audit?start=2026-01-01T00:00:00Z", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects a garbage cursor", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(newTestBackend())

		w := doJSON(t, srv, http.MethodGet, "/v1/audit?cursor=%2Fnot-base64%2F", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRateLimiting(t *testing.T) {
	t.Parallel()

	cfg := &config.ServerConfig{
		Host:           "127.0.0.1",
		Port:           8080,
		RequestTimeout: 5000,
		RateLimit:      config.RateLimit{RequestsPerSecond: 1, Burst: 2},
	}
	backend := newTestBackend()
	srv := api.NewServer(cfg, backend.users, backend.consents, backend.safety, backend.audit, backend.screener, zap.NewNop())

	// httptest requests share a remote address, so they share a bucket.
	for range 2 {
		w := doJSON(t, srv, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestContentTypeEnforced(t *testing.T) {
	t.Parallel()

	srv := newTestServer(newTestBackend())

	req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader([]byte("externalRef=platform:42")))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}
