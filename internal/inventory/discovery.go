package inventory

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/lanscan/internal/config"
	"github.com/nao1215/lanscan/internal/model"
)

// Console server discovery ports. The RealPort management service listens on
// a port that encodes the chassis size: a server that accepts connections on
// DiscoveryPort32 carries 32 serial lines, one that only accepts
// DiscoveryPort16 carries 16.
const (
	// DiscoveryPort16 identifies a 16-line chassis.
	DiscoveryPort16 = 2016

	// DiscoveryPort32 identifies a 32-line chassis.
	DiscoveryPort32 = 2017
)

// DefaultDiscoveryConcurrency caps parallel discovery probes. Discovery is a
// pair of cheap TCP connects per host, so a modest cap keeps a sweep fast
// without flooding the management switch with SYNs.
const DefaultDiscoveryConcurrency = 32

// dialFunc establishes TCP connections. It exists so tests can substitute
// a fake network.
type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Discoverer finds console servers by probing the discovery ports of every
// address in the configured ranges.
type Discoverer struct {
	// timeout bounds each TCP connect.
	timeout time.Duration

	// concurrency is the maximum number of hosts probed at once.
	concurrency int

	// logger for structured logging.
	logger *slog.Logger

	// dial establishes connections; swapped in tests.
	dial dialFunc
}

// DiscovererOption configures a Discoverer.
type DiscovererOption func(*Discoverer)

// WithDiscoveryTimeout sets the TCP connect timeout per probe.
// Non-positive values are ignored.
func WithDiscoveryTimeout(timeout time.Duration) DiscovererOption {
	return func(d *Discoverer) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithDiscoveryConcurrency sets the maximum number of hosts probed at once.
// Non-positive values are ignored.
func WithDiscoveryConcurrency(n int) DiscovererOption {
	return func(d *Discoverer) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// WithDiscoveryLogger sets a custom logger for the discoverer.
func WithDiscoveryLogger(logger *slog.Logger) DiscovererOption {
	return func(d *Discoverer) {
		d.logger = logger
	}
}

// withDiscoveryDial substitutes the network dialer. Used by tests.
func withDiscoveryDial(dial dialFunc) DiscovererOption {
	return func(d *Discoverer) {
		d.dial = dial
	}
}

// NewDiscoverer creates a Discoverer with default settings: a 500ms connect
// timeout and DefaultDiscoveryConcurrency parallel probes.
func NewDiscoverer(opts ...DiscovererOption) *Discoverer {
	d := &Discoverer{
		timeout:     config.DefaultDiscoveryTimeout,
		concurrency: DefaultDiscoveryConcurrency,
		logger:      slog.Default(),
	}
	d.dial = d.netDial

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// netDial is the production dialer.
func (d *Discoverer) netDial(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: d.timeout}
	return dialer.DialContext(ctx, network, addr)
}

// Discover probes every address in the given ranges and returns the console
// servers found, in range walk order. Hosts that answer neither discovery
// port are silently skipped; only an invalid range or a canceled context
// aborts the sweep.
func (d *Discoverer) Discover(ctx context.Context, ranges []Range) ([]model.ConsoleServer, error) {
	var hosts []string
	for _, r := range ranges {
		expanded, err := r.Hosts()
		if err != nil {
			return nil, err
		}
		hosts = append(hosts, expanded...)
	}

	d.logger.Debug("starting console discovery",
		"ranges", len(ranges),
		"hosts", len(hosts),
		"concurrency", d.concurrency)

	// Results are index-aligned with hosts so the walk order survives the
	// concurrent fan-out.
	found := make([]*model.ConsoleServer, len(hosts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for i, host := range hosts {
		i, host := i, host
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if server, ok := d.probe(ctx, host); ok {
				d.logger.Debug("console server found", "console", server.Addr, "lines", server.Lines)
				found[i] = &server
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	servers := make([]model.ConsoleServer, 0)
	for _, s := range found {
		if s != nil {
			servers = append(servers, *s)
		}
	}

	d.logger.Debug("console discovery finished", "found", len(servers))
	return servers, nil
}

// probe checks the discovery ports of one host. The 32-line port decides
// first because a 32-line chassis may answer on both.
func (d *Discoverer) probe(ctx context.Context, host string) (model.ConsoleServer, bool) {
	if d.portOpen(ctx, host, DiscoveryPort32) {
		return model.ConsoleServer{Addr: host, Lines: model.ConsoleLines32}, true
	}
	if d.portOpen(ctx, host, DiscoveryPort16) {
		return model.ConsoleServer{Addr: host, Lines: model.ConsoleLines16}, true
	}
	return model.ConsoleServer{}, false
}

// portOpen reports whether a TCP connect to host:port succeeds within the
// discovery timeout. The connection is closed immediately; reaching the
// accept queue is all the probe needs to know.
func (d *Discoverer) portOpen(ctx context.Context, host string, port int) bool {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	conn, err := d.dial(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
