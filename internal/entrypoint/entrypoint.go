package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"

	"github.com/Sa-tya/shelf-manager/internal/audit"
	"github.com/Sa-tya/shelf-manager/internal/config"
	"github.com/Sa-tya/shelf-manager/internal/database"
	auditrepo "github.com/Sa-tya/shelf-manager/internal/database/audit"
	"github.com/Sa-tya/shelf-manager/internal/database/booklists"
	"github.com/Sa-tya/shelf-manager/internal/database/booknames"
	"github.com/Sa-tya/shelf-manager/internal/database/books"
	"github.com/Sa-tya/shelf-manager/internal/database/publications"
	"github.com/Sa-tya/shelf-manager/internal/database/schools"
	"github.com/Sa-tya/shelf-manager/internal/database/subjects"
	http_controllers "github.com/Sa-tya/shelf-manager/internal/http"
	"github.com/Sa-tya/shelf-manager/internal/metrics"
	"github.com/Sa-tya/shelf-manager/internal/scheduler"
	"github.com/Sa-tya/shelf-manager/internal/services"
	"github.com/Sa-tya/shelf-manager/internal/tasks"
	"github.com/Sa-tya/shelf-manager/internal/workflow"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
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

	// kill (no param) sends SIGTERM, kill -2 sends SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work before the listener goes away
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Shelf Manager v%s", version)

	db, err := database.Open(database.Options{
		Driver:       cfg.Database.Driver,
		Path:         cfg.Database.Path,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		LogLevel:     logger.Info,
	})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	schoolRepo := schools.NewRepository(db.DB)
	subjectRepo := subjects.NewRepository(db.DB)
	pubRepo := publications.NewRepository(db.DB)
	nameRepo := booknames.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	listRepo := booklists.NewRepository(db.DB)

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	defer auditService.Wait()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		log.Printf("Prometheus metrics enabled at /metrics")
	}

	catalog := services.NewCatalog(subjectRepo, pubRepo, nameRepo, bookRepo, listRepo)
	committer := services.NewCommitter(cfg.Booklist.CommitMode, cfg.Booklist.CommitConcurrency, listRepo, m, auditService)
	builders := workflow.NewRegistry(catalog, committer)
	log.Printf("Booklist builder commit mode: %s", cfg.Booklist.CommitMode)
	if cfg.Global.ReadOnly {
		log.Printf("Read-only mode enabled - write operations will be blocked")
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:            cfg.Tasks.Workers,
			ReleaseAfter:       cfg.Tasks.ReleaseAfter,
			CleanupInterval:    cfg.Tasks.CleanupInterval,
			GracePeriod:        cfg.Cleanup.GracePeriod,
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

		report := func(queue string, removed int64, err error) {
			if err == nil {
				m.ObserveCleanup(queue, removed)
			}
			auditService.LogCleanup(queue, removed, err)
		}
		taskClient.Register(
			tasks.NewCleanupBooklistsQueue(listRepo, report),
			tasks.NewCleanupAuditEventsQueue(auditService, report),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	var cleanupScheduler *scheduler.CleanupScheduler
	if cfg.Cleanup.Enabled && taskClient != nil {
		cleanupScheduler = scheduler.NewCleanupScheduler(taskClient, cfg.Cleanup.Schedule, taskClient.SweepTasks()...)
		if err := cleanupScheduler.Start(context.Background()); err != nil {
			log.Printf("WARNING: cleanup scheduler not started: %v", err)
			cleanupScheduler = nil
		}
	} else if cfg.Cleanup.Enabled {
		log.Printf("WARNING: cleanup schedule ignored because the task queue is disabled")
	}

	var csrfKey []byte
	if cfg.CSRF.Enabled {
		csrfKey, err = cfg.CSRF.Key()
		if err != nil {
			log.Fatalf("Invalid CSRF configuration: %v", err)
		}
		if cfg.CSRF.Secret == "" {
			log.Printf("Generated CSRF key (set CSRF_SECRET to persist)")
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:           db,
		Audit:              auditService,
		Schools:            schoolRepo,
		Subjects:           subjectRepo,
		Publications:       pubRepo,
		BookNames:          nameRepo,
		Books:              bookRepo,
		Booklists:          listRepo,
		Builders:           builders,
		TemplatesPath:      cfg.UI.TemplatesPath,
		ItemsPerPage:       cfg.UI.ItemsPerPage,
		Version:            version,
		Metrics:            m,
		ReadOnly:           cfg.Global.ReadOnly,
		CSRFSecret:         csrfKey,
		SecureCookies:      cfg.CSRF.SecureCookies,
		CleanupGracePeriod: cfg.Cleanup.GracePeriod,
		AuditRetentionDays: cfg.Audit.RetentionDays,
	}
	// Leave the interface nil rather than holding a nil *tasks.Client
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}

	router, err := http_controllers.NewRouter(routerCfg)
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
