package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"google.golang.org/grpc"

	"github.com/lcalzada-xor/factmap/internal/adapters/factsapi"
	"github.com/lcalzada-xor/factmap/internal/adapters/reporting"
	"github.com/lcalzada-xor/factmap/internal/adapters/storage"
	webserver "github.com/lcalzada-xor/factmap/internal/adapters/web/server"
	"github.com/lcalzada-xor/factmap/internal/config"
	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/lcalzada-xor/factmap/internal/core/ports"
	"github.com/lcalzada-xor/factmap/internal/core/services/facts"
	grpcserver "github.com/lcalzada-xor/factmap/internal/core/services/grpc"
	"github.com/lcalzada-xor/factmap/internal/core/services/mapview"
	"github.com/lcalzada-xor/factmap/internal/core/services/navigation"
	"github.com/lcalzada-xor/factmap/internal/core/services/persistence"
	"github.com/lcalzada-xor/factmap/internal/core/services/stats"
	"github.com/lcalzada-xor/factmap/internal/geo"
	"github.com/lcalzada-xor/factmap/internal/telemetry"
)

const (
	// persistQueueSize bounds the fetch run queue between the facts screen and SQLite.
	persistQueueSize = 1000
	statsTTL         = 5 * time.Second
)

// Application holds the core components of the application.
// It acts as the Facade for the entire system, orchestrating services and infrastructure.
type Application struct {
	Config             *config.Config
	Store              *storage.SQLiteAdapter
	PersistenceManager *persistence.PersistenceManager
	FactsService       *facts.Service
	MapService         *mapview.Service
	Navigator          *navigation.Navigator
	WebServer          *webserver.Server
	GrpcServer         *grpc.Server
	Health             *grpcserver.HealthReporter

	// locationSink is set when device fixes are reported by clients
	locationSink *geo.CachedProvider
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	// 1. Foundation & Infrastructure
	telemetry.InitMetrics()

	store, err := app.initStorage()
	if err != nil {
		return err
	}
	app.Store = store
	app.PersistenceManager = persistence.NewPersistenceManager(store, persistQueueSize)

	// 2. Screens
	if err := app.initScreens(); err != nil {
		store.Close()
		return err
	}

	// 3. Servers & Integration
	app.initServers()

	return nil
}

func (app *Application) initStorage() (*storage.SQLiteAdapter, error) {
	if err := os.MkdirAll(filepath.Dir(app.Config.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	store, err := storage.NewSQLiteAdapter(app.Config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init run log storage: %w", err)
	}
	return store, nil
}

func (app *Application) initScreens() error {
	client, err := factsapi.NewClient(app.Config.FactsURL, app.Config.FetchTimeout)
	if err != nil {
		return fmt.Errorf("failed to init facts client: %w", err)
	}
	app.FactsService = facts.NewService(client, app.Config.FactsCount, app.PersistenceManager)

	app.MapService = mapview.NewService(app.initLocationProvider(), app.Config.LocationGrant, app.Config.MapLoadGrace)

	app.Navigator = navigation.NewNavigator(map[domain.Destination]navigation.Screen{
		domain.DestinationMap: navigation.ScreenFunc(func(ctx context.Context) {
			app.MapService.Start(ctx)
		}),
		domain.DestinationFacts: navigation.ScreenHooks{
			OnEnter: func(ctx context.Context) { app.FactsService.Open(ctx) },
			OnLeave: func(context.Context) { app.FactsService.Reset() },
		},
	})
	return nil
}

// initLocationProvider prefers a configured coordinate; otherwise clients report fixes.
func (app *Application) initLocationProvider() ports.LocationProvider {
	if loc, ok := app.Config.StaticLocation(); ok {
		log.Printf("Using static device location %.6f,%.6f", loc.Latitude, loc.Longitude)
		return geo.NewStaticProvider(loc.Latitude, loc.Longitude)
	}
	app.locationSink = geo.NewCachedProvider()
	return app.locationSink
}

func (app *Application) initServers() {
	deps := webserver.Deps{
		Facts:       app.FactsService,
		Map:         app.MapService,
		Navigator:   app.Navigator,
		Runs:        app.Store,
		Stats:       stats.NewStatsService(app.Store, app.FactsService, statsTTL),
		Persistence: app.PersistenceManager,
		PDFExporter: reporting.NewPDFExporter(),
	}
	if app.locationSink != nil {
		deps.LocationSink = app.locationSink
	}

	app.WebServer = webserver.NewServer(app.Config.Addr, deps, webserver.Options{
		RefreshLimit:   app.Config.RefreshLimit,
		RefreshWindow:  app.Config.RefreshWindow,
		AllowedOrigins: app.Config.AllowedOrigins,
	})
	app.GrpcServer, app.Health = grpcserver.NewGrpcServer()

	notifier := fanout{app.WebServer.WSManager, app.Health}
	app.FactsService.SetNotifier(notifier)
	app.MapService.SetNotifier(notifier)
	app.Navigator.SetNotifier(notifier)
}

// Run starts the application components and manages their execution lifecycle.
func (app *Application) Run(ctx context.Context) error {
	slog.Info("Starting factmap components...")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 1. Auxiliary Loops
	app.PersistenceManager.Start(ctx)

	// 2. Servers
	errChan := make(chan error, 2)

	go func() {
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	go func() {
		log.Printf("gRPC Server listening on :%d", app.Config.GRPCPort)
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", app.Config.GRPCPort))
		if err != nil {
			errChan <- fmt.Errorf("grpc listen error: %w", err)
			return
		}

		go func() {
			<-ctx.Done()
			app.Health.Shutdown()
			app.GrpcServer.GracefulStop()
		}()

		if err := app.GrpcServer.Serve(lis); err != nil {
			errChan <- fmt.Errorf("grpc server error: %w", err)
		}
	}()

	// 3. Start destination
	app.Navigator.Start(ctx)

	slog.Info("factmap Ready. Press Ctrl+C to terminate.")

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("Termination signal received")
	case runErr = <-errChan:
	}

	if err := app.cleanup(cancel); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// cleanup stops the screens before cancelling the run context so the last
// fetch run is queued ahead of the final persistence flush.
func (app *Application) cleanup(cancel context.CancelFunc) error {
	slog.Info("Shutting down...")

	app.FactsService.Close()
	app.MapService.Close()
	cancel()

	select {
	case <-app.PersistenceManager.Done():
	case <-time.After(10 * time.Second):
		slog.Warn("Timed out waiting for fetch run flush")
	}

	if err := app.Store.Close(); err != nil {
		return fmt.Errorf("failed to close storage: %w", err)
	}
	return nil
}

// fanout forwards every state change to each notifier in order.
type fanout []ports.StateNotifier

func (f fanout) NotifyFacts(state domain.FactsState) {
	for _, n := range f {
		n.NotifyFacts(state)
	}
}

func (f fanout) NotifyMap(state domain.MapState) {
	for _, n := range f {
		n.NotifyMap(state)
	}
}

func (f fanout) NotifyNav(state domain.NavState) {
	for _, n := range f {
		n.NotifyNav(state)
	}
}
