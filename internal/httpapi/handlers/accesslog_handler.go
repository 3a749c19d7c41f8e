package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/guardiao/base-security-service/internal/models"
	"github.com/guardiao/base-security-service/internal/services/importer"
	"github.com/guardiao/base-security-service/internal/services/lookup"
	"github.com/guardiao/base-security-service/internal/store"
	"go.uber.org/zap"
)

// AccessLogHandler exposes gate access-log endpoints: manual registration,
// listing, spreadsheet import/export, aggregates and autofill lookups.
type AccessLogHandler struct {
	accessLogs *store.AccessLogRepository
	importer   *importer.Service
	lookups    *lookup.Service
	logger     *zap.Logger
}

// NewAccessLogHandler constructs a handler.
func NewAccessLogHandler(accessLogs *store.AccessLogRepository, imp *importer.Service, lookups *lookup.Service, logger *zap.Logger) *AccessLogHandler {
	return &AccessLogHandler{
		accessLogs: accessLogs,
		importer:   imp,
		lookups:    lookups,
		logger:     logger,
	}
}

type createEntryRequest struct {
	Timestamp      *time.Time `json:"timestamp"`
	GuardGate      string     `json:"guard_gate"`
	Name           string     `json:"name"`
	Characteristic string     `json:"characteristic"`
	Identification string     `json:"identification"`
	AccessMode     string     `json:"access_mode"`
	AccessCategory string     `json:"access_category"`
	VehicleModel   string     `json:"vehicle_model"`
	VehiclePlate   string     `json:"vehicle_plate"`
	Destination    string     `json:"destination"`
	Authorizer     string     `json:"authorizer"`
}

// Create registers a single entry from the gate form. Names are uppercased on
// manual entry; imports pass raw case through.
func (h *AccessLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing auth context", nil)
		return
	}

	var req createEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}
	if req.Name == "" || req.GuardGate == "" {
		writeError(w, http.StatusUnprocessableEntity, "missing_fields", "name and guard_gate are required", nil)
		return
	}

	ts := time.Now()
	if req.Timestamp != nil {
		ts = *req.Timestamp
	}
	category := req.AccessCategory
	if category == "" {
		category = models.CategoryEntrada
	}
	mode := req.AccessMode
	if mode == "" {
		mode = models.ModePedestre
	}

	entry := &models.AccessLogEntry{
		Timestamp:      ts,
		GuardGate:      req.GuardGate,
		Name:           strings.ToUpper(req.Name),
		Characteristic: req.Characteristic,
		Identification: req.Identification,
		AccessMode:     mode,
		AccessCategory: category,
		VehicleModel:   req.VehicleModel,
		VehiclePlate:   strings.ToUpper(req.VehiclePlate),
		Destination:    req.Destination,
		Authorizer:     req.Authorizer,
		RegisteredBy:   actor.Name,
	}
	if err := h.accessLogs.Create(r.Context(), entry); err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// List returns entries matching the query filters.
func (h *AccessLogHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := accessLogFilterFromQuery(r)
	entries, total, err := h.accessLogs.List(r.Context(), filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"total":   total,
	})
}

type importRequest struct {
	Text string `json:"text"`
}

// Import parses pasted spreadsheet text and inserts the extracted entries.
func (h *AccessLogHandler) Import(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing auth context", nil)
		return
	}

	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON payload", nil)
		return
	}

	result, err := h.importer.Import(r.Context(), req.Text, actor.Name)
	if err != nil {
		if errors.Is(err, importer.ErrNoRecords) {
			writeError(w, http.StatusUnprocessableEntity, "no_records",
				"nenhum registro encontrado; verifique se o cabeçalho foi copiado junto com os dados", nil)
			return
		}
		// Batches already inserted stay committed; surface the store error
		// with the partial count.
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":    err.Error(),
			"code":     "import_aborted",
			"inserted": result.Inserted,
			"parsed":   result.Parsed,
		})
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// Export renders the filtered entries as tab-separated text.
func (h *AccessLogHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter := accessLogFilterFromQuery(r)
	entries, _, err := h.accessLogs.List(r.Context(), filter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="controle_acesso.tsv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(importer.Export(entries)))
}

// Stats aggregates entry counts for charting.
func (h *AccessLogHandler) Stats(w http.ResponseWriter, r *http.Request) {
	from, to := timeRangeFromQuery(r)
	groups := map[string][]store.CountRow{}
	for _, column := range []string{"guard_gate", "access_category", "characteristic"} {
		rows, err := h.accessLogs.CountBy(r.Context(), column, from, to)
		if err != nil {
			h.handleError(w, r, err)
			return
		}
		groups[column] = rows
	}
	writeJSON(w, http.StatusOK, groups)
}

// Lookup returns the latest entry for a document number or plate, feeding
// the autofill on the gate form. Requests wait out the debounce settle delay;
// a request superseded by newer input answers 204 so the form applies nothing.
func (h *AccessLogHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	identification := r.URL.Query().Get("identification")
	plate := r.URL.Query().Get("plate")
	if identification == "" && plate == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "identification or plate query param is required", nil)
		return
	}

	entry, err := h.lookups.Resolve(r.Context(), identification, strings.ToUpper(plate))
	if err != nil {
		switch {
		case errors.Is(err, lookup.ErrSuperseded):
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "no previous entry found", nil)
		default:
			h.handleError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *AccessLogHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetReqID(r.Context())
	h.logger.Error("access log handler error", zap.String("request_id", reqID), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "server_error", "internal server error", map[string]any{"request_id": reqID})
}

func accessLogFilterFromQuery(r *http.Request) store.AccessLogFilter {
	query := r.URL.Query()
	from, to := timeRangeFromQuery(r)
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))
	return store.AccessLogFilter{
		GuardGate:      query.Get("gate"),
		AccessCategory: query.Get("category"),
		Characteristic: query.Get("characteristic"),
		From:           from,
		To:             to,
		Search:         query.Get("search"),
		Limit:          limit,
		Offset:         offset,
	}
}

func timeRangeFromQuery(r *http.Request) (time.Time, time.Time) {
	var from, to time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			from = parsed
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			to = parsed
		}
	}
	return from, to
}
