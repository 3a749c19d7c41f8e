package handlers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	authmiddleware "github.com/guardiao/base-security-service/internal/httpapi/middleware"
	"github.com/guardiao/base-security-service/internal/services/occurrence"
)

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close() //nolint:errcheck
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func userAgent(r *http.Request) string {
	return r.Header.Get("User-Agent")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string, message string, details map[string]any) {
	writeJSON(w, status, map[string]any{
		"error":   message,
		"code":    code,
		"details": details,
	})
}

// actorFromContext converts the JWT claims stored by the auth middleware into
// the explicit actor passed to every mutating call.
func actorFromContext(ctx context.Context) (occurrence.Actor, bool) {
	claims, ok := authmiddleware.ClaimsFromContext(ctx)
	if !ok {
		return occurrence.Actor{}, false
	}
	name := claims.Name
	if name == "" {
		name = claims.Email
	}
	return occurrence.Actor{
		ID:          claims.Subject,
		Name:        name,
		AccessLevel: claims.AccessLevel,
		IsAdmin:     claims.IsAdmin,
	}, true
}
