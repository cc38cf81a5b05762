package api

import (
	"net/http"
	"strings"

	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/database/types/enum"
)

// consentResponse is a consent record plus the string forms of its enum
// fields.
type consentResponse struct {
	Record *types.ConsentRecord `json:"record"`
	Status string               `json:"status"`
	Method string               `json:"method"`
}

func newConsentResponse(record *types.ConsentRecord) consentResponse {
	return consentResponse{
		Record: record,
		Status: record.Status.String(),
		Method: record.Method.String(),
	}
}

// handleRequestConsent handles POST /v1/users/{id}/consent.
func (s *Server) handleRequestConsent(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid user id")
		return
	}

	var req struct {
		GuardianContact string `json:"guardianContact"`
		Method          string `json:"method"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}

	method := enum.ConsentMethodEmail
	if req.Method != "" {
		parsed, err := enum.ConsentMethodString(req.Method)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput,
				"method must be one of: "+strings.Join(enum.ConsentMethodStrings(), ", "))
			return
		}

		method = parsed
	}

	record, err := s.consents.Request(r.Context(), userID, req.GuardianContact, method)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, newConsentResponse(record))
}

// handleDecideConsent handles POST /v1/consents/{id}/decision. This is
// the callback target for the out-of-band guardian channel.
func (s *Server) handleDecideConsent(w http.ResponseWriter, r *http.Request) {
	recordID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid consent id")
		return
	}

	var req struct {
		Approve bool   `json:"approve"`
		ActorID string `json:"actorId"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}

	if req.ActorID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "actorId is required")
		return
	}

	record, err := s.consents.Decide(r.Context(), recordID, req.Approve, req.ActorID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, newConsentResponse(record))
}

// handleRevokeConsent handles DELETE /v1/users/{id}/consent. The guardian
// query parameter names the actor for the audit trail.
func (s *Server) handleRevokeConsent(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid user id")
		return
	}

	actorID := r.URL.Query().Get("guardian")
	if actorID == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "guardian query parameter is required")
		return
	}

	if err := s.consents.Revoke(r.Context(), userID, actorID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
