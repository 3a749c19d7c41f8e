package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/guardiao/base-security-service/internal/services/assistant"
	"github.com/guardiao/base-security-service/internal/store"
	"go.uber.org/zap"
)

// ReportHandler aggregates occurrence counters for dashboards and produces
// the AI-written analytical summary.
type ReportHandler struct {
	occurrences *store.OccurrenceRepository
	assistant   *assistant.Client
	logger      *zap.Logger
}

// NewReportHandler constructs a handler.
func NewReportHandler(occurrences *store.OccurrenceRepository, assistantClient *assistant.Client, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		occurrences: occurrences,
		assistant:   assistantClient,
		logger:      logger,
	}
}

// OccurrenceStats returns occurrence counts grouped by status and urgency.
func (h *ReportHandler) OccurrenceStats(w http.ResponseWriter, r *http.Request) {
	groups, err := h.collect(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// OccurrenceSummary returns a free-text reading of the same counters. The
// collaborator degrades to its fixed fallback text instead of failing.
func (h *ReportHandler) OccurrenceSummary(w http.ResponseWriter, r *http.Request) {
	groups, err := h.collect(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	text := h.assistant.Generate(r.Context(), assistant.StatsPrompt("Ocorrências de segurança", groups))
	writeJSON(w, http.StatusOK, map[string]string{"summary": text})
}

func (h *ReportHandler) collect(r *http.Request) (map[string][]store.CountRow, error) {
	from, to := timeRangeFromQuery(r)
	groups := map[string][]store.CountRow{}
	for _, column := range []string{"status", "urgency"} {
		rows, err := h.occurrences.CountBy(r.Context(), column, from, to)
		if err != nil {
			return nil, err
		}
		groups[column] = rows
	}
	return groups, nil
}

func (h *ReportHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetReqID(r.Context())
	h.logger.Error("report handler error", zap.String("request_id", reqID), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "server_error", "internal server error", map[string]any{"request_id": reqID})
}
