// Package app wires the data layer together and owns its lifecycle.
//
// The App is the explicit connection object for the whole module: it is
// opened once at process start, handed by reference to whatever consumes
// the catalog (UI layer, tests), and closed explicitly at shutdown. No
// package-level database state exists anywhere; every store receives its
// handle from here.
package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/nezarts/jewelry-catalog/internal/config"
	"github.com/nezarts/jewelry-catalog/internal/domain"
	"github.com/nezarts/jewelry-catalog/internal/observability"
	"github.com/nezarts/jewelry-catalog/internal/repo"
	"github.com/nezarts/jewelry-catalog/internal/services"
	"github.com/nezarts/jewelry-catalog/internal/sysutil"
)

// Version is reported to the tracing backend.
const Version = "1.0.0"

// App holds the two database handles and the services built on them.
// Catalog and Audit never share a connection: the product stores and the
// log store are independent schema domains.
type App struct {
	Catalog *services.CatalogService
	Audit   *services.AuditService

	Log zerolog.Logger

	catalogDB       *gorm.DB
	logsDB          *gorm.DB
	shutdownTracing func(context.Context) error
}

// New opens both databases, migrates their schemas, and wires the
// services. On any failure it releases whatever it had already opened
// and returns the error; a half-initialized App is never returned.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	sysutil.SetLogLevel(cfg.LogLevel)
	logger := sysutil.NewLogger(cfg.LogPretty)

	shutdownTracing, err := observability.SetupOTel(ctx, cfg.OTEL, Version)
	if err != nil {
		return nil, err
	}

	catalogDB, err := repo.OpenCatalog(cfg.CatalogDBPath)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, err
	}

	logsDB, err := repo.OpenLogs(cfg.LogsDBPath)
	if err != nil {
		_ = repo.CloseDB(catalogDB)
		_ = shutdownTracing(ctx)
		return nil, err
	}

	if cfg.OTEL.Enabled {
		plugin := tracing.NewPlugin(tracing.WithoutMetrics())
		if err := catalogDB.Use(plugin); err != nil {
			logger.Warn().Err(err).Msg("catalog query tracing unavailable")
		}
		if err := logsDB.Use(plugin); err != nil {
			logger.Warn().Err(err).Msg("log query tracing unavailable")
		}
	}

	audit := services.NewAuditService(logsDB, logger, cfg.Audit.DiagRPS, cfg.Audit.DiagBurst)
	audit.MaxQueryLimit = cfg.Audit.MaxQueryLimit

	a := &App{
		Catalog:         services.NewCatalogService(catalogDB, audit),
		Audit:           audit,
		Log:             logger,
		catalogDB:       catalogDB,
		logsDB:          logsDB,
		shutdownTracing: shutdownTracing,
	}

	audit.Append(ctx, domain.LogLevelInfo, "System", "Application started", map[string]any{
		"version": Version,
	})
	return a, nil
}

// Close releases both connection pools and shuts down tracing. Safe to
// call once at process shutdown; errors are joined so none is lost.
func (a *App) Close(ctx context.Context) error {
	a.Audit.Append(ctx, domain.LogLevelInfo, "System", "Application shutting down", nil)

	var errs []error
	if err := repo.CloseDB(a.catalogDB); err != nil {
		errs = append(errs, err)
	}
	if err := repo.CloseDB(a.logsDB); err != nil {
		errs = append(errs, err)
	}
	if a.shutdownTracing != nil {
		if err := a.shutdownTracing(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
