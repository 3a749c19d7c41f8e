package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/guardiao/base-security-service/internal/models"
	"github.com/guardiao/base-security-service/internal/store"
	"go.uber.org/zap"
)

// RegistryHandler exposes the thin CRUD surfaces of the surrounding app:
// suggestions inbox, parking requests and mission orders.
type RegistryHandler struct {
	store  *store.Store
	logger *zap.Logger
}

// NewRegistryHandler constructs a handler.
func NewRegistryHandler(s *store.Store, logger *zap.Logger) *RegistryHandler {
	return &RegistryHandler{store: s, logger: logger}
}

type suggestionRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// CreateSuggestion files a suggestion.
func (h *RegistryHandler) CreateSuggestion(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing auth context", nil)
		return
	}
	var req suggestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}
	if req.Subject == "" || req.Message == "" {
		writeError(w, http.StatusUnprocessableEntity, "missing_fields", "subject and message are required", nil)
		return
	}

	suggestion := &models.Suggestion{
		Subject: req.Subject,
		Message: req.Message,
		Author:  actor.Name,
	}
	if err := h.store.Suggestions.Create(r.Context(), suggestion); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, suggestion)
}

// ListSuggestions returns the inbox, optionally filtered by status.
func (h *RegistryHandler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.store.Suggestions.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestions)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateSuggestionStatus marks a suggestion as read/answered.
func (h *RegistryHandler) UpdateSuggestionStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idFromRequest(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "status is required", nil)
		return
	}
	if err := h.store.Suggestions.UpdateStatus(r.Context(), id, req.Status); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteSuggestion removes a suggestion.
func (h *RegistryHandler) DeleteSuggestion(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idFromRequest(w, r)
	if !ok {
		return
	}
	if err := h.store.Suggestions.Delete(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type parkingRequest struct {
	OwnerName    string `json:"owner_name"`
	Saram        string `json:"saram"`
	Sector       string `json:"sector"`
	VehicleModel string `json:"vehicle_model"`
	VehiclePlate string `json:"vehicle_plate"`
}

// CreateParkingRequest files a parking-space request.
func (h *RegistryHandler) CreateParkingRequest(w http.ResponseWriter, r *http.Request) {
	var req parkingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}
	if req.OwnerName == "" || req.VehiclePlate == "" {
		writeError(w, http.StatusUnprocessableEntity, "missing_fields", "owner_name and vehicle_plate are required", nil)
		return
	}

	request := &models.ParkingRequest{
		OwnerName:    req.OwnerName,
		Saram:        req.Saram,
		Sector:       req.Sector,
		VehicleModel: req.VehicleModel,
		VehiclePlate: req.VehiclePlate,
	}
	if err := h.store.Parking.Create(r.Context(), request); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

// ListParkingRequests returns requests, optionally filtered by status.
func (h *RegistryHandler) ListParkingRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.store.Parking.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

type parkingUpdateRequest struct {
	Slot   *string `json:"slot"`
	Status *string `json:"status"`
}

// UpdateParkingRequest allocates a slot or changes the request status.
func (h *RegistryHandler) UpdateParkingRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idFromRequest(w, r)
	if !ok {
		return
	}
	var req parkingUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}

	fields := map[string]any{}
	if req.Slot != nil {
		fields["slot"] = *req.Slot
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if err := h.store.Parking.Update(r.Context(), id, fields); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type missionRequest struct {
	OmisNumber  string     `json:"omis_number"`
	Destination string     `json:"destination"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Personnel   string     `json:"personnel"`
}

// CreateMissionOrder registers a mission order.
func (h *RegistryHandler) CreateMissionOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing auth context", nil)
		return
	}
	var req missionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}
	if req.OmisNumber == "" {
		writeError(w, http.StatusUnprocessableEntity, "missing_fields", "omis_number is required", nil)
		return
	}

	mission := &models.MissionOrder{
		OmisNumber:  req.OmisNumber,
		Destination: req.Destination,
		Personnel:   req.Personnel,
		CreatedBy:   actor.Name,
	}
	if req.StartDate != nil {
		mission.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		mission.EndDate = *req.EndDate
	}
	if err := h.store.Missions.Create(r.Context(), mission); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mission)
}

// ListMissionOrders returns mission orders, optionally filtered by status.
func (h *RegistryHandler) ListMissionOrders(w http.ResponseWriter, r *http.Request) {
	missions, err := h.store.Missions.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, missions)
}

type missionUpdateRequest struct {
	Destination *string    `json:"destination"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Personnel   *string    `json:"personnel"`
	Status      *string    `json:"status"`
}

// UpdateMissionOrder edits mission fields.
func (h *RegistryHandler) UpdateMissionOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idFromRequest(w, r)
	if !ok {
		return
	}
	var req missionUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}

	fields := map[string]any{}
	if req.Destination != nil {
		fields["destination"] = *req.Destination
	}
	if req.StartDate != nil {
		fields["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		fields["end_date"] = *req.EndDate
	}
	if req.Personnel != nil {
		fields["personnel"] = *req.Personnel
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if err := h.store.Missions.Update(r.Context(), id, fields); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteMissionOrder removes a mission order.
func (h *RegistryHandler) DeleteMissionOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idFromRequest(w, r)
	if !ok {
		return
	}
	if err := h.store.Missions.Delete(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *RegistryHandler) idFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *RegistryHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "record not found", nil)
		return
	}
	reqID := middleware.GetReqID(r.Context())
	h.logger.Error("registry handler error", zap.String("request_id", reqID), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "server_error", "internal server error", map[string]any{"request_id": reqID})
}
