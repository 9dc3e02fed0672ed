package portal

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/semaphore"

	"github.com/nao1215/lanscan/internal/config"
	"github.com/nao1215/lanscan/internal/model"
	"github.com/nao1215/lanscan/internal/scan"
)

// shutdownTimeout bounds how long a stopping server waits for in-flight
// requests, including a scan that is still sweeping its subnet.
const shutdownTimeout = 10 * time.Second

// defaultMaxConns caps concurrent portal connections. Scan requests hold
// their connection for the full sweep, so the cap keeps a dashboard that
// polls too eagerly from piling up sockets.
const defaultMaxConns = 64

// scanFunc runs one subnet scan. The portal uses scan.ScanNetwork; tests
// substitute instrumented fakes.
type scanFunc func(ctx context.Context, network string, opts ...scan.Option) (model.Devices, error)

// Server is the portal HTTP server. It owns the result cache and the
// single-flight gate that keeps concurrent requests from starting more
// than one scan at a time.
//
// Design decision: scans run synchronously inside the request that needs
// them instead of on a background schedule. The portal exists so dashboard
// refreshes don't hammer the subnet; scanning only on demand, behind the
// cache and the gate, keeps SNMP traffic proportional to actual interest
// in the data.
type Server struct {
	addr        string
	version     string
	cacheTTL    time.Duration
	maxConns    int
	networks    []string
	configured  map[string]struct{}
	cache       *resultCache
	gate        *semaphore.Weighted
	scanOpts    []scan.Option
	scanNetwork scanFunc
	logger      *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithListenAddr sets the listen address, e.g. ":8130" or "127.0.0.1:8130".
// Default is config.DefaultPortalListen.
func WithListenAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithNetworks sets the subnets the portal offers for scanning. Each entry
// may be a plain address or a CIDR; NewServer rejects entries that do not
// parse rather than silently dropping them.
func WithNetworks(networks ...string) Option {
	return func(s *Server) {
		s.networks = networks
	}
}

// WithCacheTTL sets how long scan results are served from cache before a
// rescan of the same network is allowed. Non-positive values are ignored.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithScanOptions sets the probe options applied to every scan the portal
// runs: community, OID, timeout, retries, threads.
func WithScanOptions(opts ...scan.Option) Option {
	return func(s *Server) {
		s.scanOpts = opts
	}
}

// WithMaxConns caps how many connections the portal accepts at once.
// Non-positive values keep the default.
func WithMaxConns(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxConns = n
		}
	}
}

// WithVersion sets the version string the health endpoint reports.
func WithVersion(version string) Option {
	return func(s *Server) {
		if version != "" {
			s.version = version
		}
	}
}

// WithLogger sets a custom logger for request and refresh logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// withScanFunc replaces scan execution. Tests use this to observe refresh
// scheduling without probing real networks.
func withScanFunc(fn scanFunc) Option {
	return func(s *Server) {
		s.scanNetwork = fn
	}
}

// NewServer creates a portal Server. Without options it listens on
// config.DefaultPortalListen with no configured networks, the default
// cache TTL, and default scan settings.
//
// A configured network that is not a valid IPv4 subnet is a configuration
// mistake, so NewServer fails instead of serving a partial list.
func NewServer(opts ...Option) (*Server, error) {
	s := &Server{
		addr:     config.DefaultPortalListen,
		version:  "(devel)",
		cacheTTL: config.DefaultCacheTTL,
		maxConns: defaultMaxConns,
		gate:     semaphore.NewWeighted(1),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.scanNetwork == nil {
		s.scanNetwork = scan.ScanNetwork
	}
	s.cache = newResultCache(s.cacheTTL)

	// Normalize the configured networks up front so "172.16.40.7" and
	// "172.16.40.0/24" land on the same cache key.
	normalized := make([]string, 0, len(s.networks))
	s.configured = make(map[string]struct{}, len(s.networks))
	for _, network := range s.networks {
		subnet, err := model.NewSubnet(network)
		if err != nil {
			return nil, fmt.Errorf("portal network %q: %w", network, err)
		}
		key := subnet.String()
		if _, ok := s.configured[key]; ok {
			continue
		}
		s.configured[key] = struct{}{}
		normalized = append(normalized, key)
	}
	s.networks = normalized

	return s, nil
}

// ListenAndServe starts the portal on the configured address and blocks
// until ctx is canceled or the listener fails. Cancellation triggers a
// graceful shutdown that lets in-flight requests finish.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("portal listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the portal on an existing listener. See ListenAndServe.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// Connections beyond the cap wait in the kernel backlog instead of
	// reaching the handler.
	ln = netutil.LimitListener(ln, s.maxConns)

	server := &http.Server{
		Handler: s.Handler(),
		// Scan requests block until the sweep finishes, so only the read
		// side gets a deadline; a write deadline would cut a slow scan off
		// mid-response.
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(ln)
	}()

	s.logger.Info("portal listening",
		"addr", ln.Addr().String(),
		"networks", len(s.networks),
		"cache_ttl", s.cacheTTL,
	)

	select {
	case err := <-errCh:
		return fmt.Errorf("portal server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("portal shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("portal shutdown: %w", err)
	}
	return nil
}

// refresh runs one scan of network under the process-wide single-flight
// gate and stores the result. It returns ErrScanRunning without scanning
// when another refresh already holds the gate.
func (s *Server) refresh(ctx context.Context, network string) (cacheEntry, error) {
	if !s.gate.TryAcquire(1) {
		return cacheEntry{}, ErrScanRunning
	}
	defer s.gate.Release(1)

	scanID := uuid.NewString()
	s.logger.Info("refreshing network", "network", network, "scan_id", scanID)
	startTime := time.Now()

	devices, err := s.scanNetwork(ctx, network, s.scanOpts...)
	if err != nil {
		return cacheEntry{}, fmt.Errorf("refresh of %s failed: %w", network, err)
	}

	entry := cacheEntry{
		Devices:     devices,
		RefreshedAt: time.Now(),
		ScanID:      scanID,
	}
	s.cache.put(network, entry)

	s.logger.Info("network refreshed",
		"network", network,
		"scan_id", scanID,
		"devices", len(devices),
		"elapsed", time.Since(startTime),
	)
	return entry, nil
}
