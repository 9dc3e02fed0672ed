package protocol

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gosnmp/gosnmp"

	"github.com/nao1215/lanscan/internal/security"
)

// Prober issues one read query against one host address. ok is false when
// the host produced no usable answer, whatever the reason.
//
// Design decision: We use an interface rather than the concrete Session
// because:
//  1. The scanner only needs this one method
//  2. Tests can drive the fan-out with instrumented fakes
//  3. Concurrency behavior stays observable without real sockets
type Prober interface {
	Probe(ctx context.Context, addr string) (value string, ok bool)
}

// transport is the minimal connection surface a probe uses. The production
// implementation wraps a gosnmp client; tests substitute fakes.
type transport interface {
	get(oids []string) (*gosnmp.SnmpPacket, error)
	close() error
}

// dialFunc opens a transport to one host.
type dialFunc func(ctx context.Context, addr string) (transport, error)

// Session is the shared engine of one scan batch. It carries the immutable
// probe template (security context, query, port) that all concurrent probes
// read, and it counts in-flight probes so Close can drain them.
//
// The session owns no socket itself. SNMP over UDP needs request/response
// matching per target, and the underlying client is not safe for concurrent
// use, so each probe opens its own transport from the template. What is
// shared, exactly once per scan, is the validated configuration and the
// teardown barrier.
type Session struct {
	security security.Context
	query    Query
	port     uint16
	logger   *slog.Logger
	dial     dialFunc

	mu       sync.Mutex
	closed   bool
	inFlight sync.WaitGroup
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the logger used for debug-level probe diagnostics.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPort overrides the SNMP agent port. Default is 161.
func WithPort(port uint16) SessionOption {
	return func(s *Session) {
		if port != 0 {
			s.port = port
		}
	}
}

// withDial replaces the transport dialer. Tests use this to probe fakes.
func withDial(dial dialFunc) SessionOption {
	return func(s *Session) {
		s.dial = dial
	}
}

// NewSession creates the shared session for one scan batch. The query is
// normalized (empty OID, non-positive timeout and negative retries fall back
// to defaults) so a session can always probe.
func NewSession(sec security.Context, query Query, opts ...SessionOption) *Session {
	s := &Session{
		security: sec,
		query:    query.normalized(),
		port:     DefaultPort,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.dial == nil {
		s.dial = s.dialSNMP
	}

	return s
}

// Query returns the normalized query the session probes with.
func (s *Session) Query() Query {
	return s.query
}

// Probe sends one read request to addr and classifies the outcome. It never
// returns an error: every per-host failure mode, including a panic inside
// the probe, collapses to ok == false. Probing a closed session is also a
// no-answer.
func (s *Session) Probe(ctx context.Context, addr string) (value string, ok bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", false
	}
	s.inFlight.Add(1)
	s.mu.Unlock()
	defer s.inFlight.Done()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("probe recovered from panic",
				"addr", addr,
				"panic", fmt.Sprintf("%v", r),
			)
			value = ""
			ok = false
		}
	}()

	if ctx.Err() != nil {
		return "", false
	}

	conn, err := s.dial(ctx, addr)
	if err != nil {
		// Includes invalid v3 parameter combinations the transport
		// rejects at connect time; the legacy tool surfaced those as
		// silent per-host misses too.
		s.logger.Debug("probe dial failed", "addr", addr, "error", err)
		return "", false
	}
	defer conn.close() //nolint:errcheck // nothing useful to do with a close error here

	packet, err := conn.get([]string{s.query.OID})
	if err != nil {
		// Timeout after retries is the common case on an empty subnet.
		return "", false
	}

	return classify(packet)
}

// Close tears the session down exactly once. It marks the session closed so
// no new probe can start, then blocks until in-flight probes drain. Calling
// Close again is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.inFlight.Wait()
}

// dialSNMP builds a gosnmp client from the session template and connects it.
func (s *Session) dialSNMP(ctx context.Context, addr string) (transport, error) {
	client := &gosnmp.GoSNMP{
		Target:    addr,
		Port:      s.port,
		Transport: "udp",
		Timeout:   s.query.Timeout,
		Retries:   s.query.Retries,
		MaxOids:   gosnmp.MaxOids,
		Context:   ctx,
	}
	s.security.Apply(client)

	if err := client.Connect(); err != nil {
		return nil, err
	}
	return &gosnmpTransport{client: client}, nil
}

// gosnmpTransport adapts *gosnmp.GoSNMP to the transport interface.
type gosnmpTransport struct {
	client *gosnmp.GoSNMP
}

func (t *gosnmpTransport) get(oids []string) (*gosnmp.SnmpPacket, error) {
	return t.client.Get(oids)
}

func (t *gosnmpTransport) close() error {
	if t.client.Conn == nil {
		return nil
	}
	return t.client.Conn.Close()
}

// classify reduces an SNMP GET response to the probe outcome. Only the first
// variable binding matters; the scan sends exactly one OID per request.
func classify(packet *gosnmp.SnmpPacket) (string, bool) {
	if packet == nil || packet.Error != gosnmp.NoError {
		return "", false
	}

	for _, variable := range packet.Variables {
		switch variable.Type {
		case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView:
			return "", false
		}

		rendered := renderValue(variable)
		lower := strings.ToLower(rendered)
		if strings.Contains(lower, "no such object") || strings.Contains(lower, "nosuchobject") {
			return "", false
		}

		// Whitespace first, then surrounding quotes: agents that return
		// the product name as a quoted literal still yield a bare value.
		trimmed := strings.Trim(strings.TrimSpace(rendered), `"`)
		if trimmed == "" {
			return "", false
		}
		return trimmed, true
	}

	// A response with no bindings is a miss, not a malfunction.
	return "", false
}

// renderValue converts a PDU value to its display string the way the result
// table shows it. OctetString values arrive as raw bytes.
func renderValue(variable gosnmp.SnmpPDU) string {
	switch v := variable.Value.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
