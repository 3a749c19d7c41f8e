package handlers

import (
	"net/http"
	"time"
)

// NewHealth returns the liveness handler. It names the service and
// environment so probes can tell which deployment answered.
func NewHealth(service, environment string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"service":     service,
			"environment": environment,
			"time":        time.Now().UTC(),
		})
	}
}
