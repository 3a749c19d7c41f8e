package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/guardiao/base-security-service/internal/config"
	authmiddleware "github.com/guardiao/base-security-service/internal/httpapi/middleware"
	"github.com/guardiao/base-security-service/internal/models"
	"github.com/guardiao/base-security-service/internal/services/importer"
	"github.com/guardiao/base-security-service/internal/services/lookup"
	"github.com/guardiao/base-security-service/internal/store"
	"github.com/guardiao/base-security-service/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return store.New(db)
}

// withClaims injects auth claims the way RequireAuth does, so handlers can be
// exercised without minting real tokens.
func withClaims(claims *token.Claims) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := authmiddleware.ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func operatorClaims(level string, isAdmin bool) *token.Claims {
	return &token.Claims{
		Name:        "Operador de Teste",
		AccessLevel: level,
		IsAdmin:     isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "7e6f3f9e-0000-0000-0000-000000000001",
		},
	}
}

func newAccessLogRouter(t *testing.T, st *store.Store, claims *token.Claims) chi.Router {
	t.Helper()
	imp := importer.New(st.AccessLogs, config.ImporterConfig{BatchSize: 100}, zap.NewNop())
	lookups := lookup.New(st.AccessLogs, nil, config.LookupConfig{}, "test", zap.NewNop())
	handler := NewAccessLogHandler(st.AccessLogs, imp, lookups, zap.NewNop())

	r := chi.NewRouter()
	r.Use(withClaims(claims))
	r.Post("/access-logs", handler.Create)
	r.Get("/access-logs", handler.List)
	r.Post("/access-logs/import", handler.Import)
	r.Get("/access-logs/lookup", handler.Lookup)
	return r
}

func TestAccessLogHandler_Import(t *testing.T) {
	st := setupStore(t)
	router := newAccessLogRouter(t, st, operatorClaims(models.LevelN1, false))

	body, _ := json.Marshal(map[string]string{
		"text": "NOME\tIDENTIDADE\tPLACA\nSGT FULANO\t111\t\nMARIA\t222\tABC1D23\n",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/access-logs/import", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result importer.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.Parsed)
	assert.Equal(t, 2, result.Inserted)

	entries, total, err := st.AccessLogs.List(context.Background(), store.AccessLogFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, entry := range entries {
		assert.Equal(t, "Operador de Teste", entry.RegisteredBy)
	}
}

func TestAccessLogHandler_ImportHeaderOnly(t *testing.T) {
	st := setupStore(t)
	router := newAccessLogRouter(t, st, operatorClaims(models.LevelN1, false))

	body, _ := json.Marshal(map[string]string{"text": "NOME\tIDENTIDADE\n"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/access-logs/import", bytes.NewReader(body)))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "no_records")
	assert.Contains(t, rec.Body.String(), "cabeçalho")

	_, total, err := st.AccessLogs.List(context.Background(), store.AccessLogFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestAccessLogHandler_CreateUppercasesName(t *testing.T) {
	st := setupStore(t)
	router := newAccessLogRouter(t, st, operatorClaims(models.LevelN1, false))

	body, _ := json.Marshal(map[string]any{
		"guard_gate":    models.GateG1,
		"name":          "maria da silva",
		"vehicle_plate": "abc1d23",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/access-logs", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var entry models.AccessLogEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, "MARIA DA SILVA", entry.Name)
	assert.Equal(t, "ABC1D23", entry.VehiclePlate)
	assert.Equal(t, models.CategoryEntrada, entry.AccessCategory)
	assert.Equal(t, models.ModePedestre, entry.AccessMode)
}

func TestAccessLogHandler_LookupNotFound(t *testing.T) {
	st := setupStore(t)
	router := newAccessLogRouter(t, st, operatorClaims(models.LevelN1, false))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/access-logs/lookup?identification=999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/access-logs/lookup", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAccessLogHandler_LookupReturnsLatestEntry(t *testing.T) {
	st := setupStore(t)
	router := newAccessLogRouter(t, st, operatorClaims(models.LevelN1, false))

	body, _ := json.Marshal(map[string]any{
		"guard_gate":     models.GateG1,
		"name":           "maria da silva",
		"identification": "222",
		"vehicle_plate":  "abc1d23",
	})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/access-logs", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/access-logs/lookup?identification=222", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var entry models.AccessLogEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, "MARIA DA SILVA", entry.Name)
	assert.Equal(t, "ABC1D23", entry.VehiclePlate)
}
