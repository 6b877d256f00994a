package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/app"
	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	http_controllers "github.com/mrlokans/library/internal/http"
	"github.com/mrlokans/library/internal/logger"
	"github.com/mrlokans/library/internal/scheduler"
	"github.com/mrlokans/library/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, log *zap.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT; SIGKILL cannot be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so no sweep starts mid-shutdown.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}

	log.Info("server exiting")
}

func Run(cfg *config.Config, version string) {
	log := logger.New(cfg.Log.Level, "library")
	defer func() { _ = log.Sync() }()

	log.Info("starting library", zap.String("version", version))

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := EnsureDataDir(cfg.Database.Path); err != nil {
		log.Fatal("failed to create data directory", zap.Error(err))
	}

	db, err := database.NewDatabase(cfg.Database.Path, database.Options{Debug: cfg.Database.Debug, Logger: log})
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()

	services := app.NewServices(db, app.OptionsFromConfig(cfg), log)

	var archive *audit.Archive
	if cfg.FineSweep.ReportDir != "" {
		archive = audit.NewArchive(cfg.FineSweep.ReportDir)
		log.Info("sweep reports will be archived", zap.String("dir", cfg.FineSweep.ReportDir))
	}

	// Without the queue, scheduled runs call the services directly.
	sweepTrigger := func(ctx context.Context) error {
		report, err := services.Fines.GenerateFinesForOverdueBooks(ctx)
		if err != nil {
			return err
		}
		if archive != nil {
			if _, err := archive.SaveJSON("fine-sweep", report.RunID, report.StartedAt, report); err != nil {
				log.Error("failed to archive sweep report", zap.Error(err))
			}
		}
		return nil
	}
	cleanupTask := tasks.CleanupAuditEventsTask{RetentionDays: cfg.Audit.RetentionDays, Trigger: "schedule"}
	pruneAudit := tasks.CleanupAuditEventsProcessor(services.Audit, log.Named("tasks"))
	cleanupTrigger := func(ctx context.Context) error {
		return pruneAudit(ctx, cleanupTask)
	}

	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromAppConfig(cfg.Tasks), log)
		if err != nil {
			log.Fatal("failed to initialize task queue", zap.Error(err))
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error("error closing task client", zap.Error(err))
			}
		}()

		taskLog := log.Named("tasks")
		var archiver tasks.ReportArchiver
		if archive != nil {
			archiver = archive
		}
		taskClient.Register(
			tasks.NewGenerateFinesQueue(services.Fines, archiver, taskLog),
			tasks.NewCleanupAuditEventsQueue(services.Audit, taskLog),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		sweepTrigger = func(ctx context.Context) error {
			_, err := taskClient.Enqueue(ctx, tasks.GenerateFinesTask{Trigger: "schedule"})
			return err
		}
		cleanupTrigger = func(ctx context.Context) error {
			_, err := taskClient.Enqueue(ctx, cleanupTask)
			return err
		}
	}

	sweepScheduler := scheduler.NewFineSweepScheduler(scheduler.Config{
		Enabled:         cfg.FineSweep.Enabled,
		Schedule:        cfg.FineSweep.Schedule,
		CleanupSchedule: cfg.Audit.CleanupSchedule,
	}, sweepTrigger, cleanupTrigger, log)

	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()
	if err := sweepScheduler.Start(schedCtx); err != nil {
		log.Fatal("failed to start fine sweep scheduler", zap.Error(err))
	}

	routerCfg := http_controllers.RouterConfig{
		Catalog:     services.Catalog,
		Circulation: services.Circulation,
		Fines:       services.Fines,
		Audit:       services.Audit,
		Database:    db,
		Scheduler:   sweepScheduler,
		Version:     version,
		Logger:      log,
	}
	if taskClient != nil {
		routerCfg.TaskClient = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		sweepScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, log, onShutdown)
}

// EnsureDataDir creates the directory that will hold the database file.
func EnsureDataDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
