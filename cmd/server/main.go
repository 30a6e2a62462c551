package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/adesina-femi/staffcore/internal/config"
	"github.com/adesina-femi/staffcore/internal/server"
	"github.com/adesina-femi/staffcore/pkg/authz"
	"github.com/adesina-femi/staffcore/pkg/conjuss"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	mode, err := authz.ModeFromEnv()
	if err != nil {
		log.WithError(err).Fatal("authz mode")
	}
	authorizer, err := authz.NewAuthorizer(cfg.AuthzModelPath, cfg.AuthzPolicyPath, mode)
	if err != nil {
		log.WithError(err).Fatal("load authz policy")
	}

	table, err := conjuss.Load(cfg.ConjussTable)
	if err != nil {
		log.WithError(err).Fatal("load salary table")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if p, err := connect(ctx, cfg.DatabaseURL); err != nil {
		log.WithError(err).Warn("database unreachable, using in-memory stores")
	} else {
		pool = p
		defer pool.Close()
		log.Info("database connected")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.New(server.Deps{Pool: pool, Authorizer: authorizer, Conjuss: table, Log: log}).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).WithField("authz_mode", string(mode)).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown")
		os.Exit(1)
	}
}

func connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
