package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trygglabs/trygg/internal/database/dbretry"
	"github.com/trygglabs/trygg/internal/database/models"
	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// SafetyService owns the crisis state machine. Every transition runs in
// one transaction that locks the user row first, so concurrent triggers
// for the same user collapse into a single lock with every incident
// attached and no partial entry effects are ever visible.
type SafetyService struct {
	db     *bun.DB
	users  *models.UserModel
	model  *models.SafetyModel
	alerts *models.AlertModel
	audit  *models.AuditModel
	logger *zap.Logger
}

// NewSafety creates a new safety service.
func NewSafety(
	db *bun.DB,
	users *models.UserModel,
	model *models.SafetyModel,
	alerts *models.AlertModel,
	audit *models.AuditModel,
	logger *zap.Logger,
) *SafetyService {
	return &SafetyService{
		db:     db,
		users:  users,
		model:  model,
		alerts: alerts,
		audit:  audit,
		logger: logger.Named("safety_service"),
	}
}

// TriggerParams describes one crisis signal against a user.
type TriggerParams struct {
	UserID     uuid.UUID
	ContentRef string
	Severity   enum.Severity
	Category   string
	Source     enum.IncidentSource
	// ReportedBy identifies the reporting user for report-sourced
	// incidents; empty for classifier detections.
	ReportedBy string
	// InitialSLA is the accept window stamped on a new alert. Zero falls
	// back to types.DefaultInitialSLA.
	InitialSLA time.Duration
}

// TriggerResult reports what a trigger call did.
type TriggerResult struct {
	State    *types.SafetyState
	Incident *types.Incident
	// Alert is set only when this call opened the lock; coalesced
	// triggers ride the already-open alert.
	Alert *types.Alert
	// Locked is true when this call performed the lock transition rather
	// than attaching to an existing one.
	Locked bool
}

// Trigger records a crisis signal. A critical signal locks the account
// with its entry effects (content hidden, posting suspended via the
// state itself, responder channel opened, alert enqueued) as one atomic
// unit. A signal against an already locked or escalated account attaches
// a new incident without relocking. Sensitive signals record an incident
// for review and change nothing else.
func (s *SafetyService) Trigger(ctx context.Context, params TriggerParams) (*TriggerResult, error) {
	if params.ContentRef == "" {
		return nil, types.ErrMissingContentRef
	}
	if params.Severity != enum.SeveritySensitive && params.Severity != enum.SeverityCritical {
		return nil, types.ErrInvalidSeverity
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

	var result *TriggerResult

	err := dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.users.LockUser(ctx, tx, params.UserID); err != nil {
			return err
		}

		if err := s.model.InsertIncident(ctx, tx, incident); err != nil {
			return err
		}

		if params.Severity != enum.SeverityCritical {
			result = &TriggerResult{Incident: incident}
			return nil
		}

		state, err := s.model.GetStateForUpdate(ctx, tx, params.UserID)
		if err != nil {
			return err
		}

		from := enum.SafetyStatusNormal

		if state != nil {
			if state.WatchlistLapsed(now) {
				// The lapse is its own transition; record it before the
				// lock so the trail reads in order.
				lapseEntry := &types.AuditEntry{
					EntityKind: enum.EntityKindSafety,
					EntityID:   params.UserID.String(),
					FromState:  enum.SafetyStatusWatchlisted.String(),
					ToState:    enum.SafetyStatusNormal.String(),
					ActorKind:  enum.ActorKindSystem,
					Reason:     enum.ReasonCodeWatchlistLapsed,
					CreatedAt:  now,
				}
				if err := s.audit.AppendTx(ctx, tx, lapseEntry); err != nil {
					return err
				}
			}

			from = state.EffectiveStatus(now)
		}

		if from.ActiveIncident() {
			// Already locked or in hand-off; the new incident attaches to
			// the open case instead of starting a parallel one.
			result = &TriggerResult{State: state, Incident: incident}
			return nil
		}

		sla := params.InitialSLA
		if sla <= 0 {
			sla = types.DefaultInitialSLA
		}

		newState := &types.SafetyState{
			UserID:            params.UserID,
			Status:            enum.SafetyStatusLocked,
			TriggerIncidentID: &incident.ID,
			LockedAt:          &now,
			ChannelID:         uuid.New().String(),
			UpdatedAt:         now,
		}
		if err := s.model.UpsertState(ctx, tx, newState); err != nil {
			return err
		}

		restriction := &types.ContentRestriction{
			ContentRef: params.ContentRef,
			UserID:     params.UserID,
			IncidentID: incident.ID,
			HiddenAt:   now,
		}
		if err := s.model.InsertRestrictions(ctx, tx, []*types.ContentRestriction{restriction}); err != nil {
			return err
		}

		alert := &types.Alert{
			ID:         uuid.New(),
			IncidentID: incident.ID,
			UserID:     params.UserID,
			Status:     enum.AlertStatusPending,
			Scope:      1,
			DeadlineAt: now.Add(sla),
			CreatedAt:  now,
		}
		if err := s.alerts.InsertAlert(ctx, tx, alert); err != nil {
			return err
		}

		reason := enum.ReasonCodeCriticalContent
		actorID := ""

		switch {
		case from == enum.SafetyStatusWatchlisted:
			reason = enum.ReasonCodeRepeatTrigger
		case params.Source == enum.IncidentSourceUserReport:
			reason = enum.ReasonCodeUserReport
			actorID = params.ReportedBy
		}

		lockEntry := &types.AuditEntry{
			EntityKind: enum.EntityKindSafety,
			EntityID:   params.UserID.String(),
			FromState:  from.String(),
			ToState:    enum.SafetyStatusLocked.String(),
			ActorKind:  enum.ActorKindSystem,
			ActorID:    actorID,
			Reason:     reason,
			Detail:     fmt.Sprintf("incident %s category %s", incident.ID, params.Category),
			CreatedAt:  now,
		}
		if err := s.audit.AppendTx(ctx, tx, lockEntry); err != nil {
			return err
		}

		result = &TriggerResult{State: newState, Incident: incident, Alert: alert, Locked: true}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Locked {
		s.logger.Warn("Locked account on critical signal",
			zap.String("userID", params.UserID.String()),
			zap.String("incidentID", incident.ID.String()),
			zap.String("category", params.Category),
			zap.String("source", params.Source.String()))
	} else {
		s.logger.Info("Recorded incident",
			zap.String("userID", params.UserID.String()),
			zap.String("incidentID", incident.ID.String()),
			zap.String("severity", params.Severity.String()))
	}

	return result, nil
}

// Accept records the first responder to take an alert; later attempts get
// types.ErrAlreadyAccepted so consoles can show "already handled" without
// treating it as a failure. Accepting moves a locked account into
// hand-off. An accept after the escalation ladder gave up still counts
// and clears the unstaffed flag.
func (s *SafetyService) Accept(ctx context.Context, alertID uuid.UUID, responderID string) (*types.Alert, error) {
	if responderID == "" {
		return nil, types.ErrMissingResponderID
	}

	now := time.Now().UTC()

	var accepted *types.Alert

	err := dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		// Find the owning user before taking locks so every safety
		// transaction acquires user first, then alert.
		peek, err := s.alerts.GetAlert(ctx, alertID)
		if err != nil {
			return err
		}

		if _, err := s.users.LockUser(ctx, tx, peek.UserID); err != nil {
			return err
		}

		alert, err := s.alerts.GetAlertForUpdate(ctx, tx, alertID)
		if err != nil {
			return err
		}

		if alert.Status == enum.AlertStatusAccepted {
			return types.ErrAlreadyAccepted
		}

		fromAlert := alert.Status
		reason := enum.ReasonCodeResponderAccepted
		if fromAlert == enum.AlertStatusUnstaffed {
			reason = enum.ReasonCodeLateAccept
		}

		alert.Status = enum.AlertStatusAccepted
		alert.AcceptedBy = responderID
		alert.AcceptedAt = &now

		if err := s.alerts.UpdateAccepted(ctx, tx, alert); err != nil {
			return err
		}

		alertEntry := &types.AuditEntry{
			EntityKind: enum.EntityKindAlert,
			EntityID:   alert.ID.String(),
			FromState:  fromAlert.String(),
			ToState:    enum.AlertStatusAccepted.String(),
			ActorKind:  enum.ActorKindResponder,
			ActorID:    responderID,
			Reason:     reason,
			CreatedAt:  now,
		}
		if err := s.audit.AppendTx(ctx, tx, alertEntry); err != nil {
			return err
		}

		state, err := s.model.GetStateForUpdate(ctx, tx, peek.UserID)
		if err != nil {
			return err
		}

		if state != nil && state.Status == enum.SafetyStatusLocked {
			state.Status = enum.SafetyStatusEscalated
			state.ResponderID = responderID
			state.UpdatedAt = now

			if err := s.model.UpsertState(ctx, tx, state); err != nil {
				return err
			}

			stateEntry := &types.AuditEntry{
				EntityKind: enum.EntityKindSafety,
				EntityID:   peek.UserID.String(),
				FromState:  enum.SafetyStatusLocked.String(),
				ToState:    enum.SafetyStatusEscalated.String(),
				ActorKind:  enum.ActorKindResponder,
				ActorID:    responderID,
				Reason:     reason,
				CreatedAt:  now,
			}
			if err := s.audit.AppendTx(ctx, tx, stateEntry); err != nil {
				return err
			}
		}

		accepted = alert

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Responder accepted alert",
		zap.String("alertID", alertID.String()),
		zap.String("responderID", responderID))

	return accepted, nil
}

// Resolve closes an escalated case: the responder records the user as
// safe or handed off, every open incident gets the disposition, posting
// suspension lifts, and the account moves onto the watchlist for a week.
// A false alarm also unhides the content the lock had restricted.
func (s *SafetyService) Resolve(
	ctx context.Context, userID uuid.UUID, responderID string, disposition enum.Disposition,
) (*types.SafetyState, error) {
	if responderID == "" {
		return nil, types.ErrMissingResponderID
	}

	now := time.Now().UTC()

	var resolved *types.SafetyState

	err := dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.users.LockUser(ctx, tx, userID); err != nil {
			return err
		}

		state, err := s.model.GetStateForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if state == nil || state.Status != enum.SafetyStatusEscalated {
			return types.ErrNotEscalated
		}

		closed, err := s.model.ResolveOpenIncidents(ctx, tx, userID, disposition, responderID, now)
		if err != nil {
			return err
		}

		if disposition == enum.DispositionFalseAlarm {
			if _, err := s.model.DeleteRestrictionsByUser(ctx, tx, userID); err != nil {
				return err
			}
		}

		resolveEntry := &types.AuditEntry{
			EntityKind: enum.EntityKindSafety,
			EntityID:   userID.String(),
			FromState:  enum.SafetyStatusEscalated.String(),
			ToState:    enum.SafetyStatusResolved.String(),
			ActorKind:  enum.ActorKindResponder,
			ActorID:    responderID,
			Reason:     enum.ReasonCodeResolved,
			Detail:     fmt.Sprintf("disposition %s closing %d incidents", disposition, closed),
			CreatedAt:  now,
		}
		if err := s.audit.AppendTx(ctx, tx, resolveEntry); err != nil {
			return err
		}

		until := now.Add(types.WatchlistWindow)
		state.Status = enum.SafetyStatusWatchlisted
		state.WatchlistUntil = &until
		state.UpdatedAt = now

		if err := s.model.UpsertState(ctx, tx, state); err != nil {
			return err
		}

		watchEntry := &types.AuditEntry{
			EntityKind: enum.EntityKindSafety,
			EntityID:   userID.String(),
			FromState:  enum.SafetyStatusResolved.String(),
			ToState:    enum.SafetyStatusWatchlisted.String(),
			ActorKind:  enum.ActorKindSystem,
			Reason:     enum.ReasonCodeWatchlistStart,
			CreatedAt:  now,
		}
		if err := s.audit.AppendTx(ctx, tx, watchEntry); err != nil {
			return err
		}

		resolved = state

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Resolved crisis case",
		zap.String("userID", userID.String()),
		zap.String("responderID", responderID),
		zap.String("disposition", disposition.String()))

	return resolved, nil
}

// GetState returns the user's safety state with lazy transitions applied:
// observing a lapsed watchlist flips the row back to Normal before
// returning. Users who were never locked read as Normal.
func (s *SafetyService) GetState(ctx context.Context, userID uuid.UUID, now time.Time) (*types.SafetyState, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	state, err := s.model.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return &types.SafetyState{UserID: userID, Status: enum.SafetyStatusNormal, UpdatedAt: now}, nil
	}
	if !state.WatchlistLapsed(now) {
		return state, nil
	}

	err = dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.users.LockUser(ctx, tx, userID); err != nil {
			return err
		}

		locked, err := s.model.GetStateForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if locked == nil || !locked.WatchlistLapsed(now) {
			// Someone else already flipped it, or a re-lock landed first.
			state = locked
			return nil
		}

		locked.Status = enum.SafetyStatusNormal
		locked.TriggerIncidentID = nil
		locked.ResponderID = ""
		locked.ChannelID = ""
		locked.WatchlistUntil = nil
		locked.UpdatedAt = now

		if err := s.model.UpsertState(ctx, tx, locked); err != nil {
			return err
		}

		entry := &types.AuditEntry{
			EntityKind: enum.EntityKindSafety,
			EntityID:   userID.String(),
			FromState:  enum.SafetyStatusWatchlisted.String(),
			ToState:    enum.SafetyStatusNormal.String(),
			ActorKind:  enum.ActorKindSystem,
			Reason:     enum.ReasonCodeWatchlistLapsed,
			CreatedAt:  now,
		}
		if err := s.audit.AppendTx(ctx, tx, entry); err != nil {
			return err
		}

		state = locked

		return nil
	})
	if err != nil {
		return nil, err
	}

	if state == nil {
		return &types.SafetyState{UserID: userID, Status: enum.SafetyStatusNormal, UpdatedAt: now}, nil
	}

	return state, nil
}

// IsRestricted reports whether the user's posting and messaging are
// currently suspended by an active lock.
func (s *SafetyService) IsRestricted(ctx context.Context, userID uuid.UUID, now time.Time) (bool, error) {
	state, err := s.model.GetState(ctx, userID)
	if err != nil {
		return false, err
	}
	if state == nil {
		return false, nil
	}

	return state.EffectiveStatus(now).Restricted(), nil
}

// EscalateAlert advances the SLA ladder for an overdue alert: widen the
// scope and restart a shorter window, or mark the alert unstaffed once
// the configured bound is exhausted. The unstaffed return is true in
// that case and the caller must raise it to operations; a crisis nobody
// answered is never silently dropped. Alerts accepted or escalated by
// another monitor in the meantime return unchanged.
func (s *SafetyService) EscalateAlert(
	ctx context.Context, alertID uuid.UUID, followup time.Duration, maxEscalations int,
) (*types.Alert, bool, error) {
	now := time.Now().UTC()

	var (
		escalated *types.Alert
		unstaffed bool
	)

	err := dbretry.Transaction(ctx, s.db, func(ctx context.Context, tx bun.Tx) error {
		peek, err := s.alerts.GetAlert(ctx, alertID)
		if err != nil {
			return err
		}

		if _, err := s.users.LockUser(ctx, tx, peek.UserID); err != nil {
			return err
		}

		alert, err := s.alerts.GetAlertForUpdate(ctx, tx, alertID)
		if err != nil {
			return err
		}

		escalated = alert
		unstaffed = false

		if !alert.Overdue(now) {
			return nil
		}

		if alert.Escalations >= maxEscalations {
			alert.Status = enum.AlertStatusUnstaffed

			if err := s.alerts.UpdateEscalation(ctx, tx, alert); err != nil {
				return err
			}

			entry := &types.AuditEntry{
				EntityKind: enum.EntityKindAlert,
				EntityID:   alert.ID.String(),
				FromState:  enum.AlertStatusPending.String(),
				ToState:    enum.AlertStatusUnstaffed.String(),
				ActorKind:  enum.ActorKindSystem,
				Reason:     enum.ReasonCodeUnstaffedCrisis,
				Detail:     fmt.Sprintf("no accept after %d escalations", alert.Escalations),
				CreatedAt:  now,
			}
			if err := s.audit.AppendTx(ctx, tx, entry); err != nil {
				return err
			}

			unstaffed = true

			return nil
		}

		alert.Scope++
		alert.Escalations++
		alert.DeadlineAt = now.Add(followup)
		alert.BroadcastAt = nil

		if err := s.alerts.UpdateEscalation(ctx, tx, alert); err != nil {
			return err
		}

		entry := &types.AuditEntry{
			EntityKind: enum.EntityKindAlert,
			EntityID:   alert.ID.String(),
			FromState:  enum.AlertStatusPending.String(),
			ToState:    enum.AlertStatusPending.String(),
			ActorKind:  enum.ActorKindSystem,
			Reason:     enum.ReasonCodeScopeEscalated,
			Detail:     fmt.Sprintf("scope %d escalation %d", alert.Scope, alert.Escalations),
			CreatedAt:  now,
		}

		return s.audit.AppendTx(ctx, tx, entry)
	})
	if err != nil {
		return nil, false, err
	}

	return escalated, unstaffed, nil
}
