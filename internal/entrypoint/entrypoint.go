package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/comicshelf/internal/config"
	http_controllers "github.com/mrlokans/comicshelf/internal/http"
	"github.com/mrlokans/comicshelf/internal/scheduler"
	"github.com/mrlokans/comicshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// checkWritableDir fails unless dir exists and a file can be created in it.
func checkWritableDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("library directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("library directory %s is not a directory", dir)
	}

	marker := filepath.Join(dir, ".comicshelf")
	f, err := os.Create(marker)
	if err != nil {
		return fmt.Errorf("library directory %s is not writable: %w", dir, err)
	}
	f.Close()
	return os.Remove(marker)
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	log.Printf("Checking library directory: %s\n", cfg.Library.Dir)
	if err := checkWritableDir(cfg.Library.Dir); err != nil {
		log.Fatalf("%v", err)
	}

	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting requests before the background workers go away
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// maintenanceJobs builds the periodic jobs. With a task queue they only
// enqueue work; otherwise they run inline on the scheduler goroutine.
func maintenanceJobs(cfg *config.Config, app *App, taskClient *tasks.Client) []scheduler.Job {
	var jobs []scheduler.Job

	if cfg.OrphanSweep.Enabled {
		run := func(ctx context.Context) error {
			_, err := app.Sweeper.SweepOrphans(ctx)
			return err
		}
		if taskClient != nil {
			run = taskClient.SweepOrphans
		}
		jobs = append(jobs, scheduler.Job{Name: "orphan-sweep", Schedule: cfg.OrphanSweep.Schedule, Run: run})
	}

	if cfg.Audit.RetentionDays > 0 && cfg.Audit.Schedule != "" {
		run := func(ctx context.Context) error {
			return app.CleanupAuditEvents(ctx, cfg.Audit.RetentionDays)
		}
		if taskClient != nil {
			run = taskClient.CleanupAuditEvents
		}
		jobs = append(jobs, scheduler.Job{Name: "audit-cleanup", Schedule: cfg.Audit.Schedule, Run: run})
	}

	return jobs
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting comicshelf v%s", version)

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize library: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:            cfg.Tasks.Workers,
			ReleaseAfter:       cfg.Tasks.ReleaseAfter,
			CleanupInterval:    cfg.Tasks.CleanupInterval,
			AuditRetentionDays: cfg.Audit.RetentionDays,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.RegisterLibraryQueues(tasks.Handlers{
			Directories: app.Sweeper,
			Sweeper:     app.Sweeper,
			AuditEvents: app.Audit,
		})
		app.Library.SetPurger(taskClient)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	maintenance := scheduler.NewMaintenanceScheduler(maintenanceJobs(cfg, app, taskClient)...)
	if err := maintenance.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start maintenance scheduler: %v", err)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Library:        app.Library,
		Ingester:       app.Ingester,
		Database:       app.DB,
		AuditService:   app.Audit,
		TaskClient:     taskClient,
		ViewerPath:     cfg.Library.ViewerPath,
		MaxUploadBytes: cfg.HTTP.MaxUploadMB << 20,
		UploadLimits: http_controllers.UploadLimitConfig{
			MaxFailures:     cfg.HTTP.UploadMaxFailures,
			WindowDuration:  cfg.HTTP.UploadFailureWindow,
			LockoutDuration: cfg.HTTP.UploadLockout,
		},
		AllowedOrigins:     cfg.HTTP.AllowedOrigins,
		AuditRetentionDays: cfg.Audit.RetentionDays,
		Version:            version,
	})

	onShutdown := func(ctx context.Context) {
		maintenance.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
