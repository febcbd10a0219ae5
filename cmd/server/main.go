package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"neuromesh/internal/config"
	"neuromesh/internal/handler"
	"neuromesh/internal/hub"
	"neuromesh/internal/meshsource"
	"neuromesh/internal/repository/sqlite"
	"neuromesh/internal/segmentgraph"
	"neuromesh/internal/service"
	"neuromesh/internal/source"
	"neuromesh/internal/watcher"
)

func main() {
	configPath := flag.String("config", "", "Config file path (default: search standard locations)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting neuromesh server...")

	// Load configuration
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if *configPath != "" {
		cfg, path, err = config.LoadFromPath(*configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if path != "" {
		log.Printf("Config loaded from %s", path)
	} else {
		log.Println("No config file found, using defaults")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	log.Println(cfg.Summary())

	// Initialize SQLite manifest
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()
	log.Printf("Manifest database opened: %s", cfg.Database.Path)

	// Initialize mesh source client
	var sourceOpts []meshsource.Option
	if cfg.Download.Timeout != nil {
		sourceOpts = append(sourceOpts, meshsource.WithHTTPClient(&http.Client{
			Timeout: cfg.Download.Timeout.Duration(),
		}))
	}
	meshClient, err := meshsource.New(cfg.Source.BaseURL, cfg.Source.CacheDir, sourceOpts...)
	if err != nil {
		log.Fatalf("Failed to initialize mesh source: %v", err)
	}

	// Initialize segmentation-graph client (optional)
	var graphClient *segmentgraph.Client
	if cfg.HealingEnabled() {
		graphClient = segmentgraph.New(cfg.SegmentGraph.BaseURL)
	}

	// Initialize event bus
	eventBus := service.NewEventBus()

	// Initialize SSE hub
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	sseHub := hub.New()
	go sseHub.Run(rootCtx)

	// Connect event bus to SSE hub
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for event := range eventChan {
			sseHub.Broadcast(event)
		}
	}()

	// Initialize service
	meshSvc := service.NewMeshService(repo, meshClient, graphClient, eventBus)

	// Bring manifest and cache directory in step before serving
	if result, err := meshSvc.ReconcileCache(rootCtx); err != nil {
		log.Printf("Warning: cache reconciliation failed: %v", err)
	} else if result.Adopted > 0 || result.Missing > 0 {
		log.Printf("Cache reconciled: %d adopted, %d missing", result.Adopted, result.Missing)
	}

	// Initialize adapter registry with reconcile function
	registry := source.NewRegistry(func(ctx context.Context, name string, report *source.Report) error {
		recorded, err := meshSvc.RecordFindings(ctx, report.Findings)
		if err != nil {
			return err
		}
		if recorded > 0 {
			log.Printf("Recorded %d new findings from %s", recorded, name)
		}
		return nil
	})
	registry.SetMaintenanceEventHandler(func(eventType string, payload interface{}) {
		eventBus.Publish(service.Event{
			Type:    service.EventType(eventType),
			Payload: payload,
		})
	})

	verifier := source.NewVerifier(repo, source.DefaultVerifierConfig())
	registry.Register(verifier, source.AdapterConfig{
		Enabled:      cfg.Integrity.Enabled,
		PollInterval: cfg.Integrity.PollInterval,
	})

	if err := registry.Start(rootCtx); err != nil {
		log.Printf("Warning: failed to start adapter registry: %v", err)
	}

	// Re-reconcile when cache files appear or disappear externally
	go func() {
		err := watcher.WatchCacheDir(rootCtx, meshClient.CacheDir(), func() {
			if _, err := meshSvc.ReconcileCache(context.Background()); err != nil {
				log.Printf("Cache reconciliation failed: %v", err)
			}
		})
		if err != nil && rootCtx.Err() == nil {
			log.Printf("Cache watcher stopped: %v", err)
		}
	}()

	// Initialize HTTP handlers
	meshHandler := handler.NewMeshHandler(meshSvc)
	meshHandler.SetMaintenanceTrigger(registry)
	sceneHandler := handler.NewSceneHandler(meshSvc)

	// Setup routes
	mux := http.NewServeMux()

	// Mesh endpoints
	mux.HandleFunc("GET /api/meshes", meshHandler.ListMeshes)
	mux.HandleFunc("GET /api/meshes/{id}", meshHandler.GetMesh)
	mux.HandleFunc("DELETE /api/meshes/{id}", meshHandler.DeleteMesh)
	mux.HandleFunc("POST /api/meshes/fetch", meshHandler.FetchBulk)
	mux.HandleFunc("POST /api/meshes/{id}/fetch", meshHandler.FetchMesh)
	mux.HandleFunc("POST /api/meshes/{id}/heal", meshHandler.HealMesh)
	mux.HandleFunc("POST /api/meshes/{id}/mask", meshHandler.MaskMesh)
	mux.HandleFunc("GET /api/meshes/{id}/stats", meshHandler.GetStats)

	// Integrity endpoints
	mux.HandleFunc("GET /api/integrity", meshHandler.ListIntegrity)
	mux.HandleFunc("POST /api/integrity/{id}/resolve", meshHandler.ResolveIntegrity)
	mux.HandleFunc("POST /api/verify", meshHandler.TriggerVerify)

	// Scene endpoints
	mux.HandleFunc("GET /api/scene", sceneHandler.GetScene)
	mux.HandleFunc("POST /api/scene/actors", sceneHandler.AddActor)
	mux.HandleFunc("DELETE /api/scene/actors/{id}", sceneHandler.RemoveActor)
	mux.HandleFunc("GET /api/scene/export", sceneHandler.ExportScene)

	// SSE events endpoint
	mux.Handle("GET /events", sseHub)

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute, // Bulk fetches and SSE streams are long-lived
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	rootCancel()
	if err := registry.Stop(); err != nil {
		log.Printf("Adapter registry shutdown error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
