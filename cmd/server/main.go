package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yahyalegrini24/AttendEase/internal/api"
	"github.com/yahyalegrini24/AttendEase/internal/attendance"
	"github.com/yahyalegrini24/AttendEase/internal/auth"
	"github.com/yahyalegrini24/AttendEase/internal/config"
	"github.com/yahyalegrini24/AttendEase/internal/cron"
	"github.com/yahyalegrini24/AttendEase/internal/db"
	"github.com/yahyalegrini24/AttendEase/internal/excel"
	"github.com/yahyalegrini24/AttendEase/internal/groups"
	"github.com/yahyalegrini24/AttendEase/internal/history"
	"github.com/yahyalegrini24/AttendEase/internal/identity"
	"github.com/yahyalegrini24/AttendEase/internal/logger"
	"github.com/yahyalegrini24/AttendEase/internal/report"
	"github.com/yahyalegrini24/AttendEase/internal/roster"
	"github.com/yahyalegrini24/AttendEase/internal/timetable"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLvl, cfg.LogFmt)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func revoker(cfg *config.Config, zl *zap.Logger) (auth.Revoker, func()) {
	if cfg.Redis == "" {
		zl.Info("no REDIS_ADDR, keeping signed-out sessions in memory")
		return auth.NewMemoryRevoker(), func() {}
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.Redis})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		zl.Warn("redis unreachable, keeping signed-out sessions in memory", zap.Error(err))
		_ = rdb.Close()
		return auth.NewMemoryRevoker(), func() {}
	}
	zl.Info("redis connected", zap.String("addr", cfg.Redis))
	return auth.NewRedisRevoker(rdb), func() { _ = rdb.Close() }
}

func run(cfg *config.Config, zl *zap.Logger) error {
	gdb, err := db.InitDB(cfg.DBUrl, zl)
	if err != nil {
		return err
	}
	store := db.New(gdb)
	defer store.Close()

	rev, closeRedis := revoker(cfg, zl)
	defer closeRedis()

	authSvc := auth.NewService(cfg, store, rev, auth.NewBus(), zl)
	contexts := identity.NewRegistry(store, zl)
	runs := attendance.NewRuns(zl)
	syncer := roster.NewSyncer(store, cfg.RosterDir, zl)

	r := api.SetupRouter(api.Deps{
		Logger:    zl,
		DB:        store,
		Auth:      authSvc,
		Contexts:  contexts,
		Manager:   attendance.NewManager(store, zl),
		Runs:      runs,
		Timetable: timetable.NewService(store),
		History:   history.NewService(store),
		Reports:   report.NewService(store, zl),
		Groups:    groups.NewService(store),
		Download:  excel.NewDownloadClient(cfg.DownloadURL),
		RosterDir: cfg.RosterDir,
	})

	jobs, err := cron.StartJobs(cfg, runs, contexts, syncer, zl)
	if err != nil {
		return fmt.Errorf("start cron jobs: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		zl.Info("server running", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case sig := <-quit:
		zl.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	<-jobs.Stop().Done()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("http shutdown", zap.Error(err))
	}
	if n := runs.AbandonAll(ctx); n > 0 {
		zl.Info("discarded unfinished sessions", zap.Int("count", n))
	}
	contexts.Close()
	return nil
}
