package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/role_gate/internal/config"
	"github.com/Skotchmaster/role_gate/internal/directory"
	"github.com/Skotchmaster/role_gate/internal/events"
	"github.com/Skotchmaster/role_gate/internal/httpserver"
	"github.com/Skotchmaster/role_gate/internal/repo"
	"github.com/Skotchmaster/role_gate/internal/roles"
	"github.com/Skotchmaster/role_gate/internal/service"
	"github.com/Skotchmaster/role_gate/pkg/db"
	"github.com/Skotchmaster/role_gate/pkg/logging"
	loggingmw "github.com/Skotchmaster/role_gate/pkg/middleware/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := config.InitDB(initCtx, cfg)
	if err != nil {
		cancel()
		logger.Error("db init error", "error", err)
		os.Exit(1)
	}

	dir, err := newDirectory(initCtx, cfg, gdb)
	cancel()
	if err != nil {
		logger.Error("directory init error", "error", err)
		os.Exit(1)
	}

	pub := events.New(cfg.KafkaBrokers)

	svc := &service.AuthService{
		Repo:       repo.GormRepo{DB: gdb},
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		BcryptCost: cfg.BcryptCost,
		Events:     pub,
		Directory:  dir,
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger, requestIdentity))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:      &httpserver.AuthHTTP{Svc: svc},
		DashboardHandler: &httpserver.DashboardHTTP{Directory: dir},
		DB:               gdb,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	go func() {
		<-quit
		logger.Warn("force exit")
		os.Exit(1)
	}()

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db close error", "error", err)
	}
	if err := pub.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}

func newDirectory(ctx context.Context, cfg *config.Config, gdb *gorm.DB) (directory.Directory, error) {
	if cfg.ESURL == "" {
		return &directory.GormDirectory{DB: gdb}, nil
	}

	client, err := directory.NewESClient(ctx, cfg.ESURL, cfg.ESUser, cfg.ESPassword)
	if err != nil {
		return nil, err
	}
	d := &directory.ESDirectory{ES: client, IndexName: cfg.ESIndex}
	if err := d.EnsureIndex(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

func requestIdentity(ctx context.Context) (string, string, bool) {
	id, ok := roles.IdentityFromContext(ctx)
	if !ok {
		return "", "", false
	}
	return id.UserID, string(id.Role), true
}
