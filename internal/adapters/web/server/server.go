package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/lcalzada-xor/factmap/internal/adapters/reporting"
	"github.com/lcalzada-xor/factmap/internal/adapters/web"
	"github.com/lcalzada-xor/factmap/internal/adapters/web/handlers"
	"github.com/lcalzada-xor/factmap/internal/adapters/web/middleware"
	"github.com/lcalzada-xor/factmap/internal/core/ports"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options carries the server knobs that come from configuration.
type Options struct {
	RefreshLimit   int
	RefreshWindow  time.Duration
	AllowedOrigins []string
}

// Deps are the screens and stores the HTTP surface drives.
type Deps struct {
	Facts       ports.FactsService
	Map         ports.MapService
	Navigator   ports.Navigator
	Runs        ports.RunRepository
	Stats       ports.StatsProvider
	Persistence ports.PersistenceToggle
	// LocationSink is nil when the device location is static.
	LocationSink ports.LocationSink
	PDFExporter  *reporting.PDFExporter
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr           string
	WSManager      *web.WSManager
	RefreshLimiter *middleware.RateLimiter

	NavHandler    *handlers.NavHandler
	FactsHandler  *handlers.FactsHandler
	MapHandler    *handlers.MapHandler
	ConfigHandler *handlers.ConfigHandler
	srv           *http.Server
}

// NewServer creates a new web server.
func NewServer(addr string, deps Deps, opts Options) *Server {
	s := &Server{
		Addr:           addr,
		WSManager:      web.NewWSManager(deps.Facts, deps.Map, deps.Navigator, opts.AllowedOrigins),
		RefreshLimiter: middleware.NewRateLimiter(opts.RefreshLimit, opts.RefreshWindow),
		NavHandler:     handlers.NewNavHandler(deps.Navigator),
		FactsHandler:   handlers.NewFactsHandler(deps.Facts, deps.Runs, deps.Stats, deps.PDFExporter),
		MapHandler:     handlers.NewMapHandler(deps.Map, deps.LocationSink),
	}
	if deps.Persistence != nil {
		s.ConfigHandler = handlers.NewConfigHandler(deps.Persistence)
	}
	return s
}

// Handler returns the instrumented route tree.
func (s *Server) Handler() http.Handler {
	// "factmap-server" is the name of the operation (span)
	return otelhttp.NewHandler(SetupRoutes(s), "factmap-server")
}

// Run starts the server and the WebSocket keepalive.
func (s *Server) Run(ctx context.Context) error {
	s.WSManager.Start(ctx)
	defer s.RefreshLimiter.Stop()

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown implementation
	go func() {
		<-ctx.Done()
		log.Println("Web Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Web Server shutdown error: %v", err)
		}
	}()

	log.Printf("Web server listening on %s", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
