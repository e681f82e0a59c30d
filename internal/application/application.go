package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/returns-service/internal/config"
	"github.com/psds-microservice/returns-service/internal/database"
	"github.com/psds-microservice/returns-service/internal/handler"
	"github.com/psds-microservice/returns-service/internal/logger"
	"github.com/psds-microservice/returns-service/internal/router"
	"github.com/psds-microservice/returns-service/internal/service"
	"github.com/psds-microservice/returns-service/internal/table"
	"gorm.io/gorm"
)

// API is the HTTP server together with the pool it owns.
type API struct {
	cfg     *config.Config
	log     *slog.Logger
	db      *gorm.DB
	httpSrv *http.Server
}

// NewAPI wires the HTTP server. Without DATABASE_URL it still starts and the
// data endpoints answer 503.
func NewAPI(cfg *config.Config, log *slog.Logger) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, svc, err := OpenService(cfg, log)
	if err != nil {
		return nil, err
	}
	var ready handler.Pinger
	if svc != nil {
		ready = svc
	} else {
		log.Warn("DATABASE_URL is not set; data endpoints will answer 503")
	}

	returns := handler.NewReturnHandler(svc, log)
	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.New(returns, ready, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{cfg: cfg, log: log, db: db, httpSrv: httpSrv}, nil
}

// OpenService opens the pool and builds the return service. Both results are
// nil when no data store is configured.
func OpenService(cfg *config.Config, log *slog.Logger) (*gorm.DB, service.ReturnServicer, error) {
	if !cfg.HasDatabase() {
		return nil, nil, nil
	}
	db, err := database.Open(cfg.DSN(), database.PoolOptions{
		MaxConns:    cfg.DB.MaxConns,
		IdleTimeout: cfg.DB.IdleTimeout,
	}, logger.NewGorm(log, cfg.LogLevel))
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	tbl := table.Resolve(cfg.TableName, cfg.TableSchema)
	svc, err := service.NewReturnService(db, tbl)
	if err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}
	log.Info("database pool ready", "table", tbl.Qualified(), "max_conns", cfg.DB.MaxConns)
	return db, svc, nil
}

// Run serves until ctx is cancelled, then shuts down and closes the pool.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	a.log.Info("HTTP server listening", "addr", a.httpSrv.Addr)
	a.log.Info("endpoints",
		"api", base+"/api/returns",
		"filters", base+"/api/filters",
		"swagger", base+router.PathSwagger,
		"health", base+router.PathHealth,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		runErr = fmt.Errorf("http: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("http shutdown: %w", err)
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.log.Error("close database", "err", err)
		}
	}
	return runErr
}
