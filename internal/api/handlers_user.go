package api

import (
	"net/http"
	"time"

	"github.com/trygglabs/trygg/internal/database/service"
	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/database/types/enum"
)

// userResponse is an account plus its derived tier. The tier is computed
// per response, never stored, so it is always current for the request.
type userResponse struct {
	User *types.User `json:"user"`
	Tier string      `json:"tier"`
}

// accessProfileResponse is the per-request gating view the platform
// consults before serving tier-sensitive features.
type accessProfileResponse struct {
	UserID       string `json:"userId"`
	ExternalRef  string `json:"externalRef"`
	Tier         string `json:"tier"`
	SafetyStatus string `json:"safetyStatus"`
	Restricted   bool   `json:"restricted"`
	Gated        bool   `json:"gated"`
	CanPublish   bool   `json:"canPublish"`
	CanUseGated  bool   `json:"canUseGatedFeatures"`
}

// handleRegisterUser handles POST /v1/users.
func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ExternalRef    string `json:"externalRef"`
		BirthDate      string `json:"birthDate"`
		LegacyCategory string `json:"legacyCategory"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}

	params := service.RegisterParams{
		ExternalRef:    req.ExternalRef,
		LegacyCategory: req.LegacyCategory,
	}

	if req.BirthDate != "" {
		birth, err := time.Parse(time.DateOnly, req.BirthDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "birthDate must be a YYYY-MM-DD date")
			return
		}

		params.BirthDate = &birth
	}

	user, userTier, err := s.users.Register(r.Context(), params)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, userResponse{User: user, Tier: userTier.String()})
}

// handleAccessProfile handles GET /v1/users/{id}/access.
func (s *Server) handleAccessProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid user id")
		return
	}

	now := time.Now().UTC()

	user, userTier, err := s.users.Get(r.Context(), userID, now)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	gated, err := s.consents.IsGated(r.Context(), userID, now)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	state, err := s.safety.GetState(r.Context(), userID, now)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	status := state.EffectiveStatus(now)
	restricted := status.Restricted()
	eligible := userTier != enum.TierIneligible

	respondJSON(w, http.StatusOK, accessProfileResponse{
		UserID:       user.ID.String(),
		ExternalRef:  user.ExternalRef,
		Tier:         userTier.String(),
		SafetyStatus: status.String(),
		Restricted:   restricted,
		Gated:        gated,
		CanPublish:   eligible && !restricted,
		CanUseGated:  eligible && !restricted && !gated,
	})
}

// handleCorrectBirthDate handles PUT /v1/users/{id}/birthdate.
func (s *Server) handleCorrectBirthDate(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid user id")
		return
	}

	var req struct {
		BirthDate string `json:"birthDate"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}

	birth, err := time.Parse(time.DateOnly, req.BirthDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "birthDate must be a YYYY-MM-DD date")
		return
	}

	user, userTier, err := s.users.CorrectBirthDate(r.Context(), userID, birth)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, userResponse{User: user, Tier: userTier.String()})
}
