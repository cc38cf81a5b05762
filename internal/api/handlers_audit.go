package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/trygglabs/trygg/internal/database/types"
	"github.com/trygglabs/trygg/internal/database/types/enum"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 200
)

var errMalformedCursor = errors.New("malformed audit cursor")

// auditEntryResponse is the reporting view of one audit entry, with enum
// fields rendered as strings.
type auditEntryResponse struct {
	ID         int64     `json:"id"`
	EntityKind string    `json:"entityKind"`
	EntityID   string    `json:"entityId"`
	FromState  string    `json:"fromState,omitempty"`
	ToState    string    `json:"toState,omitempty"`
	ActorKind  string    `json:"actorKind"`
	ActorID    string    `json:"actorId,omitempty"`
	Reason     string    `json:"reason"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// auditPageResponse is one page of the audit feed. NextCursor is present
// only when another page exists.
type auditPageResponse struct {
	Entries    []auditEntryResponse `json:"entries"`
	NextCursor string               `json:"nextCursor,omitempty"`
}

// handleListAudit handles GET /v1/audit with optional entityKind,
// entityId, actorId, reason, start, end, cursor and limit parameters.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := types.AuditFilter{
		EntityID: query.Get("entityId"),
		ActorID:  query.Get("actorId"),
	}

	if v := query.Get("entityKind"); v != "" {
		kind, err := enum.EntityKindString(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput,
				"entityKind must be one of: "+strings.Join(enum.EntityKindStrings(), ", "))
			return
		}

		filter.EntityKind = &kind
	}

	if v := query.Get("reason"); v != "" {
		reason, err := enum.ReasonCodeString(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "unknown reason code")
			return
		}

		filter.Reason = &reason
	}

	if v := query.Get("start"); v != "" {
		start, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "start must be an RFC 3339 timestamp")
			return
		}

		filter.StartTime = start
	}

	if v := query.Get("end"); v != "" {
		end, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "end must be an RFC 3339 timestamp")
			return
		}

		filter.EndTime = end
	}

	// The time filter is a closed range; a lone bound would be ignored.
	if filter.StartTime.IsZero() != filter.EndTime.IsZero() {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "start and end must be provided together")
		return
	}

	limit := defaultAuditPageSize
	if v := query.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "limit must be a positive integer")
			return
		}

		limit = min(parsed, maxAuditPageSize)
	}

	var cursor *types.AuditCursor

	if v := query.Get("cursor"); v != "" {
		parsed, err := decodeAuditCursor(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid cursor")
			return
		}

		cursor = parsed
	}

	entries, nextCursor, err := s.audit.GetEntries(r.Context(), filter, cursor, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	page := auditPageResponse{Entries: make([]auditEntryResponse, 0, len(entries))}
	for _, entry := range entries {
		page.Entries = append(page.Entries, auditEntryResponse{
			ID:         entry.ID,
			EntityKind: entry.EntityKind.String(),
			EntityID:   entry.EntityID,
			FromState:  entry.FromState,
			ToState:    entry.ToState,
			ActorKind:  entry.ActorKind.String(),
			ActorID:    entry.ActorID,
			Reason:     entry.Reason.String(),
			Detail:     entry.Detail,
			CreatedAt:  entry.CreatedAt,
		})
	}

	if nextCursor != nil {
		page.NextCursor = encodeAuditCursor(nextCursor)
	}

	respondJSON(w, http.StatusOK, page)
}

// encodeAuditCursor packs a cursor into an opaque token so clients pass
// it back verbatim instead of constructing positions themselves.
func encodeAuditCursor(cursor *types.AuditCursor) string {
	raw := fmt.Sprintf("%d:%d", cursor.Timestamp.UnixNano(), cursor.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// decodeAuditCursor unpacks a cursor token.
func decodeAuditCursor(token string) (*types.AuditCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedCursor, err)
	}

	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return nil, errMalformedCursor
	}

	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedCursor, err)
	}

	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedCursor, err)
	}

	return &types.AuditCursor{Timestamp: time.Unix(0, nanos).UTC(), ID: id}, nil
}
