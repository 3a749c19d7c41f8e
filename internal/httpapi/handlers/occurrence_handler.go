package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/guardiao/base-security-service/internal/services/assistant"
	"github.com/guardiao/base-security-service/internal/services/occurrence"
	"github.com/guardiao/base-security-service/internal/store"
	"go.uber.org/zap"
)

// OccurrenceHandler exposes the occurrence lifecycle over HTTP.
type OccurrenceHandler struct {
	service   *occurrence.Service
	assistant *assistant.Client
	logger    *zap.Logger
}

// NewOccurrenceHandler constructs a handler.
func NewOccurrenceHandler(service *occurrence.Service, assistantClient *assistant.Client, logger *zap.Logger) *OccurrenceHandler {
	return &OccurrenceHandler{
		service:   service,
		assistant: assistantClient,
		logger:    logger,
	}
}

type createOccurrenceRequest struct {
	Title       string     `json:"title"`
	Type        string     `json:"type"`
	Category    string     `json:"category"`
	Urgency     string     `json:"urgency"`
	Date        *time.Time `json:"date"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	Sector      string     `json:"sector"`
}

// Create registers a new occurrence.
func (h *OccurrenceHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing auth context", nil)
		return
	}

	var req createOccurrenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}

	in := occurrence.CreateInput{
		Title:       req.Title,
		Type:        req.Type,
		Category:    req.Category,
		Urgency:     req.Urgency,
		Location:    req.Location,
		Description: req.Description,
		Sector:      req.Sector,
	}
	if req.Date != nil {
		in.Date = *req.Date
	}

	occ, err := h.service.Create(r.Context(), actor, in)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, occ)
}

// List returns occurrences matching the query filters.
func (h *OccurrenceHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from, to := timeRangeFromQuery(r)
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	occurrences, total, err := h.service.List(r.Context(), store.OccurrenceFilter{
		Status:  query.Get("status"),
		Urgency: query.Get("urgency"),
		Sector:  query.Get("sector"),
		Creator: query.Get("creator"),
		From:    from,
		To:      to,
		Search:  query.Get("search"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"occurrences": occurrences,
		"total":       total,
	})
}

// Get loads one occurrence with its timeline.
func (h *OccurrenceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idFromRequest(w, r)
	if !ok {
		return
	}
	occ, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, occ)
}

type transitionRequest struct {
	Target  string `json:"target"`
	Comment string `json:"comment"`
}

// Transition applies a gated status change.
func (h *OccurrenceHandler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing auth context", nil)
		return
	}
	id, ok := h.idFromRequest(w, r)
	if !ok {
		return
	}

	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}

	occ, err := h.service.Transition(r.Context(), actor, id, occurrence.Status(req.Target), req.Comment)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, occ)
}

type noteRequest struct {
	Comment string `json:"comment"`
}

// Note appends a comment to the timeline without advancing state.
func (h *OccurrenceHandler) Note(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing auth context", nil)
		return
	}
	id, ok := h.idFromRequest(w, r)
	if !ok {
		return
	}

	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}

	occ, err := h.service.AddNote(r.Context(), actor, id, req.Comment)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, occ)
}

type updateOccurrenceRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Urgency     *string `json:"urgency"`
	Sector      *string `json:"sector"`
	AssignedTo  *string `json:"assigned_to"`
}

// Update edits occurrence fields directly (admin only, not timeline-logged).
func (h *OccurrenceHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing auth context", nil)
		return
	}
	id, ok := h.idFromRequest(w, r)
	if !ok {
		return
	}

	var req updateOccurrenceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}

	occ, err := h.service.UpdateDetails(r.Context(), actor, id, occurrence.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Urgency:     req.Urgency,
		Sector:      req.Sector,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, occ)
}

// Summary asks the generative collaborator for a free-text summary. The
// collaborator never fails: degraded responses carry the fixed fallback text.
func (h *OccurrenceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idFromRequest(w, r)
	if !ok {
		return
	}
	occ, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	text := h.assistant.Generate(r.Context(), assistant.OccurrencePrompt(occ))
	writeJSON(w, http.StatusOK, map[string]string{"summary": text})
}

func (h *OccurrenceHandler) idFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid occurrence id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *OccurrenceHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "occurrence not found", nil)
	case errors.Is(err, occurrence.ErrOccurrenceClosed):
		writeError(w, http.StatusConflict, "occurrence_closed", "occurrence is closed and immutable", nil)
	case errors.Is(err, occurrence.ErrTransitionNotAllowed):
		writeError(w, http.StatusForbidden, "transition_not_allowed", "transition not allowed for this actor", nil)
	case errors.Is(err, occurrence.ErrSectorRequired):
		writeError(w, http.StatusUnprocessableEntity, "sector_required", "assign a sector before resolving", nil)
	case errors.Is(err, occurrence.ErrCommentRequired):
		writeError(w, http.StatusUnprocessableEntity, "comment_required", "a comment is required", nil)
	case errors.Is(err, occurrence.ErrAlreadyPending):
		writeError(w, http.StatusConflict, "already_pending", "occurrence is already pending", nil)
	case errors.Is(err, occurrence.ErrUnknownStatus):
		writeError(w, http.StatusUnprocessableEntity, "unknown_status", "target status outside the closed set", nil)
	case errors.Is(err, occurrence.ErrInvalidUrgency):
		writeError(w, http.StatusUnprocessableEntity, "invalid_urgency", "urgency must be Baixa, Média, Alta or Crítica", nil)
	case errors.Is(err, occurrence.ErrTitleRequired):
		writeError(w, http.StatusUnprocessableEntity, "title_required", "title is required", nil)
	default:
		reqID := middleware.GetReqID(r.Context())
		h.logger.Error("occurrence handler error", zap.String("request_id", reqID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server_error", "internal server error", map[string]any{"request_id": reqID})
	}
}
