package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"devicesapi/config"
	"devicesapi/internal/admin"
	"devicesapi/internal/api"
	"devicesapi/internal/db"
	"devicesapi/internal/device"
	"devicesapi/internal/health"
	"devicesapi/internal/logs"
	"devicesapi/internal/middleware"
	"devicesapi/internal/repo"
)

type App struct {
	cfg        *config.Config
	db         *gorm.DB
	Devices    *device.Service
	Router     *mux.Router
	httpServer *http.Server
}

// Initialize sets up logging, storage, the device service and the router.
func (a *App) Initialize(cfg *config.Config) error {
	a.cfg = cfg

	if err := logs.Init(logs.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
	}); err != nil {
		return err
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	a.Devices = device.NewService(store)

	a.Router = mux.NewRouter().StrictSlash(true)
	a.Router.Use(
		middleware.RequestID,
		middleware.Recoverer,
		middleware.LoggerMW,
	)

	health.RegisterRoutes(a.Router, a.db)
	api.RegisterRoutes(a.Router, api.NewHandler(a.Devices), cfg.Server.APIToken)
	admin.Attach(a.Router, admin.Dependencies{Devices: a.Devices})

	_ = a.Router.Walk(func(rt *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := rt.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, _ := rt.GetMethods()
		if len(methods) == 0 {
			methods = []string{"ANY"}
		}
		logs.Logger.Debugf("route: %-8v %s", methods, path)
		return nil
	})

	return nil
}

// openStore picks the gorm store when a driver is configured and the
// in-memory store otherwise.
func (a *App) openStore() (device.Store, error) {
	if a.cfg.Database.Driver == "" {
		logs.Logger.Warn("no database configured, devices are kept in memory")
		return repo.NewMemoryStore(), nil
	}

	d, err := db.Open(a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("db open failed: %w", err)
	}
	if err := repo.Migrate(d); err != nil {
		return nil, fmt.Errorf("db migrate failed: %w", err)
	}
	a.db = d

	return repo.NewDeviceStore(d)
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a.Router == nil || a.cfg == nil {
		return fmt.Errorf("server not initialized")
	}

	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.httpServer = &http.Server{
		Addr:              bind,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logs.Logger.Infof("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logs.Logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		logs.Logger.Errorf("http shutdown: %v", err)
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return nil
}
