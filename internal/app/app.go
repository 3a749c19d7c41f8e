package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/guardiao/base-security-service/internal/audit"
	"github.com/guardiao/base-security-service/internal/cache"
	"github.com/guardiao/base-security-service/internal/config"
	"github.com/guardiao/base-security-service/internal/database"
	"github.com/guardiao/base-security-service/internal/httpapi"
	"github.com/guardiao/base-security-service/internal/httpapi/handlers"
	httpmiddleware "github.com/guardiao/base-security-service/internal/httpapi/middleware"
	"github.com/guardiao/base-security-service/internal/password"
	"github.com/guardiao/base-security-service/internal/revocation"
	"github.com/guardiao/base-security-service/internal/services/assistant"
	"github.com/guardiao/base-security-service/internal/services/auth"
	"github.com/guardiao/base-security-service/internal/services/importer"
	"github.com/guardiao/base-security-service/internal/services/lookup"
	"github.com/guardiao/base-security-service/internal/services/occurrence"
	"github.com/guardiao/base-security-service/internal/store"
	"github.com/guardiao/base-security-service/internal/token"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App wires core dependencies and exposes server lifecycle controls.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	db         *gorm.DB
	redis      *redis.Client
	lookups    *lookup.Service
	httpServer *http.Server
}

// New constructs the application.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(ctx, db); err != nil {
			return nil, err
		}
	}

	redisClient, err := cache.New(cfg.Redis)
	if err != nil {
		return nil, err
	}

	tokenSvc, err := token.NewService(cfg.Token)
	if err != nil {
		return nil, err
	}

	st := store.New(db)
	hasher := password.NewHasher(cfg.Security)
	auditor := audit.New(db, logger)
	revocationStore := revocation.New(redisClient, cfg.Redis.Namespace)

	authService := auth.New(auth.Dependencies{
		Store:    st,
		TokenSvc: tokenSvc,
		Hasher:   hasher,
		Revoker:  revocationStore,
		Config:   cfg,
		Auditor:  auditor,
		Logger:   logger,
	})
	occurrenceService := occurrence.New(occurrence.Dependencies{
		Occurrences: st.Occurrences,
		Auditor:     auditor,
		Logger:      logger,
	})
	importService := importer.New(st.AccessLogs, cfg.Importer, logger)
	lookupService := lookup.New(st.AccessLogs, redisClient, cfg.Lookup, cfg.Redis.Namespace, logger)
	assistantClient := assistant.NewClient(cfg.Assistant, logger)

	authHandler := handlers.NewAuthHandler(authService, logger)
	accessLogHandler := handlers.NewAccessLogHandler(st.AccessLogs, importService, lookupService, logger)
	occurrenceHandler := handlers.NewOccurrenceHandler(occurrenceService, assistantClient, logger)
	registryHandler := handlers.NewRegistryHandler(st, logger)
	reportHandler := handlers.NewReportHandler(st.Occurrences, assistantClient, logger)
	authMiddleware := httpmiddleware.NewAuth(authService)

	router := httpapi.NewRouter(httpapi.RouterDeps{
		HealthHandler: handlers.NewHealth(cfg.App.ServiceName, cfg.App.Environment),
		AuthHandlers: httpapi.AuthHandlers{
			Login:      authHandler.Login,
			Refresh:    authHandler.Refresh,
			Logout:     authHandler.Logout,
			Me:         authHandler.Me,
			CreateUser: authHandler.CreateUser,
		},
		AccessLogHandlers: httpapi.AccessLogHandlers{
			Create: accessLogHandler.Create,
			List:   accessLogHandler.List,
			Import: accessLogHandler.Import,
			Export: accessLogHandler.Export,
			Stats:  accessLogHandler.Stats,
			Lookup: accessLogHandler.Lookup,
		},
		OccurrenceHandlers: httpapi.OccurrenceHandlers{
			Create:     occurrenceHandler.Create,
			List:       occurrenceHandler.List,
			Get:        occurrenceHandler.Get,
			Transition: occurrenceHandler.Transition,
			Note:       occurrenceHandler.Note,
			Update:     occurrenceHandler.Update,
			Summary:    occurrenceHandler.Summary,
		},
		RegistryHandlers: httpapi.RegistryHandlers{
			CreateSuggestion:       registryHandler.CreateSuggestion,
			ListSuggestions:        registryHandler.ListSuggestions,
			UpdateSuggestionStatus: registryHandler.UpdateSuggestionStatus,
			DeleteSuggestion:       registryHandler.DeleteSuggestion,
			CreateParkingRequest:   registryHandler.CreateParkingRequest,
			ListParkingRequests:    registryHandler.ListParkingRequests,
			UpdateParkingRequest:   registryHandler.UpdateParkingRequest,
			CreateMissionOrder:     registryHandler.CreateMissionOrder,
			ListMissionOrders:      registryHandler.ListMissionOrders,
			UpdateMissionOrder:     registryHandler.UpdateMissionOrder,
			DeleteMissionOrder:     registryHandler.DeleteMissionOrder,
		},
		ReportHandlers: httpapi.ReportHandlers{
			OccurrenceStats:   reportHandler.OccurrenceStats,
			OccurrenceSummary: reportHandler.OccurrenceSummary,
		},
		RequireAuthHandler:  authMiddleware.RequireAuth,
		RequireAdminHandler: authMiddleware.RequireAdmin,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		db:         db,
		redis:      redisClient,
		lookups:    lookupService,
		httpServer: server,
	}, nil
}

// Run starts the HTTP server.
func (a *App) Run() error {
	a.logger.Info("starting HTTP server", zap.String("addr", a.httpServer.Addr))
	return a.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server and closes resources.
func (a *App) Shutdown(ctx context.Context) error {
	shutdownErr := a.httpServer.Shutdown(ctx)
	a.lookups.Close()

	if err := database.Close(a.db); err != nil {
		a.logger.Warn("failed to close database handle", zap.Error(err))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Warn("failed to close redis client", zap.Error(err))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}
	return shutdownErr
}
