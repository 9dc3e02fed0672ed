package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/lanscan/internal/model"
	"github.com/nao1215/lanscan/internal/protocol"
	"github.com/nao1215/lanscan/internal/security"
)

// DefaultThreads is the default probe concurrency cap.
const DefaultThreads = 100

// probeSession is what the scanner needs from a protocol session: probing
// and exactly-once teardown. Tests substitute instrumented fakes.
type probeSession interface {
	protocol.Prober
	Close()
}

// Scanner sweeps /24 subnets with one SNMP read query per host under a
// concurrency cap. A Scanner is cheap and stateless between scans; every
// Scan opens a fresh session and discards it before returning.
type Scanner struct {
	security security.Context
	query    protocol.Query
	threads  int
	logger   *slog.Logger

	// newSession creates the shared session for one batch. Overridable so
	// tests can observe probe scheduling without sockets.
	newSession func() probeSession
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithSecurity sets the security context used for every probe.
// Default is v2c with community "admin".
func WithSecurity(sec security.Context) Option {
	return func(s *Scanner) {
		s.security = sec
	}
}

// WithCommunity is shorthand for WithSecurity with a v2c community context.
func WithCommunity(community string) Option {
	return func(s *Scanner) {
		s.security = security.NewCommunity(community)
	}
}

// WithQuery sets the full query description.
func WithQuery(query protocol.Query) Option {
	return func(s *Scanner) {
		s.query = query
	}
}

// WithOID sets the queried OID, keeping the query's other parameters.
func WithOID(oid string) Option {
	return func(s *Scanner) {
		if oid != "" {
			s.query.OID = oid
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Scanner) {
		if timeout > 0 {
			s.query.Timeout = timeout
		}
	}
}

// WithRetries sets the per-request retry count. Negative values are ignored.
func WithRetries(retries int) Option {
	return func(s *Scanner) {
		if retries >= 0 {
			s.query.Retries = retries
		}
	}
}

// WithThreads sets the maximum number of concurrent probes.
// Default is DefaultThreads if not specified or not positive.
func WithThreads(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.threads = n
		}
	}
}

// WithLogger sets a custom logger for scan progress and probe diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// withSessionFactory replaces session creation. Tests use this to inject
// instrumented probers.
func withSessionFactory(factory func() probeSession) Option {
	return func(s *Scanner) {
		s.newSession = factory
	}
}

// NewScanner creates a Scanner. Without options it probes with SNMP v2c,
// community "admin", the default query, and DefaultThreads concurrency.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		security: security.NewCommunity(security.DefaultCommunity),
		query:    protocol.NewQuery(""),
		threads:  DefaultThreads,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.newSession == nil {
		s.newSession = func() probeSession {
			return protocol.NewSession(s.security, s.query, protocol.WithLogger(s.logger))
		}
	}

	return s
}

// Scan probes every host of the subnet and returns the devices that
// answered, sorted ascending by numeric dotted-quad address.
//
// The shared session is torn down exactly once on every exit path. The
// batch blocks until all probes resolve; the returned error is non-nil only
// when the context was canceled or the session could not be set up, never
// for per-host outcomes.
func (s *Scanner) Scan(ctx context.Context, subnet model.Subnet) (model.Devices, error) {
	session := s.newSession()
	defer session.Close()

	hosts := subnet.Hosts()

	s.logger.Info("starting subnet scan",
		"subnet", subnet.String(),
		"hosts", len(hosts),
		"threads", s.threads,
		"security", s.security.String(),
	)
	startTime := time.Now()

	// Pre-allocated result slots: each probe goroutine writes only its own
	// index, so collection needs no lock.
	results := make([]*model.Device, len(hosts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.threads)

	for i, addr := range hosts {
		i, addr := i, addr
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if value, ok := session.Probe(ctx, addr); ok {
				results[i] = &model.Device{Addr: addr, Product: value}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("subnet scan aborted: %w", err)
	}

	devices := make(model.Devices, 0, len(hosts))
	for _, device := range results {
		if device != nil {
			devices = append(devices, *device)
		}
	}
	devices.Sort()

	s.logger.Info("subnet scan complete",
		"subnet", subnet.String(),
		"devices", len(devices),
		"elapsed", time.Since(startTime),
	)

	return devices, nil
}
