package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"projectsync/collections"
	"projectsync/config"
	"projectsync/handlers"
	"projectsync/metrics"
	"projectsync/services"
	"projectsync/store"
)

func main() {
	app := pocketbase.New()

	var standardsConfig string
	var syncWorkers int
	app.RootCmd.PersistentFlags().StringVar(&standardsConfig, "standards-config", "",
		"path to a YAML file overriding the rate tables, category mapping and thresholds")
	app.RootCmd.PersistentFlags().IntVar(&syncWorkers, "sync-workers", 0,
		"number of parallel workers used by a full project resync (0 uses the config value)")
	app.RootCmd.ParseFlags(os.Args[1:])

	cfg, err := config.Load(standardsConfig)
	if err != nil {
		log.Fatal(err)
	}
	if syncWorkers > 0 {
		cfg.SyncWorkers = syncWorkers
	}

	promRegistry, recorder := metrics.NewRegistry()

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		integrator := services.NewIntegrator(cfg, app.Logger())
		repo := collections.NewRepository(app)
		registry := store.NewRegistry(repo, store.Options{
			Integrator: integrator,
			Persister:  repo,
			Metrics:    recorder,
			Logger:     app.Logger(),
			Workers:    cfg.SyncWorkers,
		})

		// Create collections, seed demo data and heal anything left unsynced
		collections.Setup(app)
		collections.BindProjectHooks(app, registry)
		if err := collections.Seed(app, registry); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.ResyncStaleProjects(context.Background(), app, registry); err != nil {
			log.Printf("Warning: stale project resync failed: %v", err)
		}

		app.Cron().MustAdd("projectsync-resync", cfg.ResyncSchedule, func() {
			if err := collections.ResyncAllProjects(context.Background(), app, registry); err != nil {
				log.Printf("cron: nightly resync failed: %v", err)
			}
		})

		// ── Project-scoped API ───────────────────────────────────
		project := se.Router.Group("/api/projects/{projectId}")
		project.BindFunc(handlers.ProjectStoreMiddleware(app, registry))

		// BOQ items (import must be before {id})
		project.GET("/boq-items", handlers.HandleBOQItemList())
		project.POST("/boq-items", handlers.HandleBOQItemCreate())
		project.POST("/boq-items/import", handlers.HandleFinancialItemImport())
		project.GET("/boq-items/{id}", handlers.HandleBOQItemView())
		project.PATCH("/boq-items/{id}", handlers.HandleBOQItemUpdate())
		project.DELETE("/boq-items/{id}", handlers.HandleBOQItemDelete())
		project.GET("/boq-items/{id}/variance", handlers.HandleBOQItemVariance())

		// Schedule tasks
		project.GET("/tasks", handlers.HandleTaskList())
		project.POST("/tasks", handlers.HandleTaskCreate())
		project.GET("/tasks/{id}", handlers.HandleTaskView())
		project.PATCH("/tasks/{id}", handlers.HandleTaskUpdate())
		project.POST("/tasks/{id}/progress", handlers.HandleProgressUpdate())
		project.PUT("/tasks/{id}/costs", handlers.HandleActualCosts())
		project.POST("/tasks/{id}/payments", handlers.HandlePayment())
		project.POST("/tasks/{id}/reschedule/approve", handlers.HandleReScheduleApprove())
		project.POST("/tasks/{id}/reschedule/reject", handlers.HandleReScheduleReject())

		// Whole-project operations
		project.POST("/sync", handlers.HandleProjectSync())
		project.GET("/summary", handlers.HandleProjectSummary())

		// ── Engineering standards lookups ────────────────────────
		se.Router.GET("/api/standards/duration", handlers.HandleStandardsDuration())
		se.Router.POST("/api/standards/compliance", handlers.HandleStandardsCompliance())
		se.Router.GET("/api/standards/waste", handlers.HandleStandardsWaste())
		se.Router.GET("/api/standards/plastering", handlers.HandleStandardsPlastering(cfg))

		se.Router.GET("/metrics", apis.WrapStdHandler(metrics.HandlerFor(promRegistry)))

		se.Router.GET("/healthz", func(e *core.RequestEvent) error {
			return e.JSON(http.StatusOK, map[string]any{"status": "ok", "projects": registry.Loaded()})
		})

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
