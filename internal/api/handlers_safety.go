package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/trygglabs/trygg/internal/database/service"
	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/database/types/enum"
	"github.com/trygglabs/trygg/pkg/utils"
)

// contentDecision tells the content pipeline what to do with a
// submission. Publish folds in the safety restriction and tier
// eligibility; gating is reported separately because which features it
// blocks is the platform's call.
type contentDecision struct {
	UserID     string `json:"userId"`
	ContentRef string `json:"contentRef"`
	Severity   string `json:"severity"`
	Category   string `json:"category,omitempty"`
	Locked     bool   `json:"locked"`
	Restricted bool   `json:"restricted"`
	Gated      bool   `json:"gated"`
	Publish    bool   `json:"publish"`
}

// reportResponse describes what an immediate-danger report did. The
// channel id lets the reporting surface forward the reporter's note to
// the responder channel; the note itself is never stored here.
type reportResponse struct {
	IncidentID string `json:"incidentId"`
	AlertID    string `json:"alertId,omitempty"`
	ChannelID  string `json:"channelId,omitempty"`
	Locked     bool   `json:"locked"`
}

// alertResponse is an alert plus the string form of its status.
type alertResponse struct {
	Alert  *types.Alert `json:"alert"`
	Status string       `json:"status"`
}

// safetyStateResponse is a safety state plus its effective status, with
// a lapsed watchlist already folded into Normal.
type safetyStateResponse struct {
	State  *types.SafetyState `json:"state"`
	Status string             `json:"status"`
}

// handleSubmitContent handles POST /v1/content. Screening runs before
// the publish decision so critical content from a restricted or
// ineligible user still locks and pages rather than being dropped with
// the denial.
func (s *Server) handleSubmitContent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID     string `json:"userId"`
		ContentRef string `json:"contentRef"`
		Text       string `json:"text"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid user id")
		return
	}

	if req.ContentRef == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "contentRef is required")
		return
	}

	now := time.Now().UTC()

	_, userTier, err := s.users.Get(r.Context(), userID, now)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	decision := contentDecision{
		UserID:     userID.String(),
		ContentRef: req.ContentRef,
		Severity:   enum.SeverityNone.String(),
	}

	if finding := s.screener.Screen(r.Context(), userID, req.ContentRef, req.Text); finding != nil {
		decision.Severity = finding.Severity.String()
		decision.Category = finding.Category

		result, err := s.safety.Trigger(r.Context(), service.TriggerParams{
			UserID:     userID,
			ContentRef: req.ContentRef,
			Severity:   finding.Severity,
			Category:   finding.Category,
			Source:     enum.IncidentSourceClassifier,
		})
		if err != nil {
			respondServiceError(w, err)
			return
		}

		decision.Locked = result.Locked
	}

	state, err := s.safety.GetState(r.Context(), userID, now)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	gated, err := s.consents.IsGated(r.Context(), userID, now)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	decision.Restricted = state.EffectiveStatus(now).Restricted()
	decision.Gated = gated
	decision.Publish = !decision.Restricted && userTier != enum.TierIneligible

	respondJSON(w, http.StatusOK, decision)
}

// handleSubmitReport handles POST /v1/reports, the immediate-danger
// report path. Reports always carry critical severity; triage happens in
// the responder channel, not here.
func (s *Server) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID     string `json:"userId"`
		ContentRef string `json:"contentRef"`
		ReporterID string `json:"reporterId"`
		Note       string `json:"note"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid user id")
		return
	}

	if req.ReporterID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "reporterId is required")
		return
	}

	if req.Note != "" && !utils.ValidateNoteText(req.Note) {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput,
			"note contains unsupported characters")
		return
	}

	result, err := s.safety.Trigger(r.Context(), service.TriggerParams{
		UserID:     userID,
		ContentRef: req.ContentRef,
		Severity:   enum.SeverityCritical,
		Source:     enum.IncidentSourceUserReport,
		ReportedBy: req.ReporterID,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	resp := reportResponse{
		IncidentID: result.Incident.ID.String(),
		ChannelID:  result.State.ChannelID,
		Locked:     result.Locked,
	}
	if result.Alert != nil {
		resp.AlertID = result.Alert.ID.String()
	}

	respondJSON(w, http.StatusCreated, resp)
}

// handleAcceptAlert handles POST /v1/alerts/{id}/accept. A losing racer
// gets a conflict, which the responder console renders as "already
// handled" rather than an error.
func (s *Server) handleAcceptAlert(w http.ResponseWriter, r *http.Request) {
	alertID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid alert id")
		return
	}

	var req struct {
		ResponderID string `json:"responderId"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}

	alert, err := s.safety.Accept(r.Context(), alertID, req.ResponderID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, alertResponse{Alert: alert, Status: alert.Status.String()})
}

// handleResolveSafety handles POST /v1/users/{id}/safety/resolve.
func (s *Server) handleResolveSafety(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid user id")
		return
	}

	var req struct {
		ResponderID string `json:"responderId"`
		Disposition string `json:"disposition"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}

	disposition, err := enum.DispositionString(req.Disposition)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput,
			"disposition must be one of: "+strings.Join(enum.DispositionStrings(), ", "))
		return
	}

	state, err := s.safety.Resolve(r.Context(), userID, req.ResponderID, disposition)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	now := time.Now().UTC()

	respondJSON(w, http.StatusOK, safetyStateResponse{
		State:  state,
		Status: state.EffectiveStatus(now).String(),
	})
}

// handleSafetyState handles GET /v1/users/{id}/safety.
func (s *Server) handleSafetyState(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid user id")
		return
	}

	now := time.Now().UTC()

	state, err := s.safety.GetState(r.Context(), userID, now)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, safetyStateResponse{
		State:  state,
		Status: state.EffectiveStatus(now).String(),
	})
}
