package inventory

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/nao1215/lanscan/internal/config"
)

// Serial line port layout. Console servers expose each serial line twice:
// line N is a raw telnet socket at TelnetBasePort+N and an SSH endpoint at
// SSHBasePort+N.
const (
	// TelnetBasePort is the base of the telnet line ports (line 1 is 2001).
	TelnetBasePort = 2000

	// SSHBasePort is the base of the SSH line ports (line 1 is 2501).
	SSHBasePort = 2500
)

// Transport opens an interactive byte stream to one serial line of a
// console server.
type Transport interface {
	// Name identifies the transport in logs.
	Name() string

	// LinePort returns the TCP port of the given 1-based serial line.
	LinePort(line int) int

	// Open connects to the given 1-based serial line. The returned stream
	// carries whatever the attached device prints; Close releases the line.
	Open(ctx context.Context, consoleAddr string, line int) (io.ReadWriteCloser, error)
}

// TelnetTransport reaches serial lines over the console server's raw
// telnet ports.
//
// Design decision: We use a raw TCP connection with an in-band command
// filter instead of a telnet library because:
//  1. The line ports are serial passthrough; servers rarely negotiate options
//  2. We never send options, we only tolerate receiving them
//  3. The dialog itself is plain ASCII either way
type TelnetTransport struct {
	// timeout bounds the TCP connect.
	timeout time.Duration

	// dial establishes connections; swapped in tests.
	dial dialFunc
}

// TelnetOption configures a TelnetTransport.
type TelnetOption func(*TelnetTransport)

// WithTelnetTimeout sets the connect timeout. Non-positive values are ignored.
func WithTelnetTimeout(timeout time.Duration) TelnetOption {
	return func(t *TelnetTransport) {
		if timeout > 0 {
			t.timeout = timeout
		}
	}
}

// withTelnetDial substitutes the network dialer. Used by tests.
func withTelnetDial(dial dialFunc) TelnetOption {
	return func(t *TelnetTransport) {
		t.dial = dial
	}
}

// NewTelnetTransport creates a telnet transport with the default connect
// timeout.
func NewTelnetTransport(opts ...TelnetOption) *TelnetTransport {
	t := &TelnetTransport{
		timeout: config.DefaultLoginTimeout,
	}
	t.dial = t.netDial

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// netDial is the production dialer.
func (t *TelnetTransport) netDial(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: t.timeout}
	return dialer.DialContext(ctx, network, addr)
}

// Name returns the transport name.
func (t *TelnetTransport) Name() string { return "telnet" }

// LinePort returns the telnet port of the given serial line.
func (t *TelnetTransport) LinePort(line int) int { return TelnetBasePort + line }

// Open connects to a serial line's telnet port.
func (t *TelnetTransport) Open(ctx context.Context, consoleAddr string, line int) (io.ReadWriteCloser, error) {
	addr := net.JoinHostPort(consoleAddr, strconv.Itoa(t.LinePort(line)))

	conn, err := t.dial(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to open console line %s: %w", addr, err)
	}

	return &telnetConn{conn: conn}, nil
}

// Telnet in-band command bytes (RFC 854).
const (
	telnetSE   = 240
	telnetSB   = 250
	telnetWill = 251
	telnetWont = 252
	telnetDo   = 253
	telnetDont = 254
	telnetIAC  = 255
)

// telnetFilterState tracks a command sequence across reads.
type telnetFilterState int

const (
	telnetStateData telnetFilterState = iota
	telnetStateIAC
	telnetStateOption
	telnetStateSub
	telnetStateSubIAC
)

// telnetConn strips in-band telnet command sequences from the byte stream.
// IAC IAC escapes a literal 0xFF data byte; option negotiations and
// subnegotiations are dropped without a reply.
type telnetConn struct {
	conn net.Conn

	// state is the filter position within a command sequence, kept across
	// reads because a sequence can split between packets.
	state telnetFilterState

	// pending holds filtered bytes not yet delivered to the caller.
	pending []byte
}

// Read delivers filtered data bytes, reading more from the connection as
// needed. A read that yields only command bytes loops rather than returning
// a zero-byte success.
func (c *telnetConn) Read(p []byte) (int, error) {
	for len(c.pending) == 0 {
		buf := make([]byte, 1024)
		n, err := c.conn.Read(buf)
		if n > 0 {
			c.pending = append(c.pending, c.filter(buf[:n])...)
		}
		if err != nil {
			if len(c.pending) > 0 {
				break
			}
			return 0, err
		}
	}

	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

// Write passes through unchanged. The dialog only sends ASCII, so no IAC
// escaping is needed on the way out.
func (c *telnetConn) Write(p []byte) (int, error) {
	return c.conn.Write(p)
}

// Close closes the underlying connection.
func (c *telnetConn) Close() error {
	return c.conn.Close()
}

// filter removes telnet command sequences from a chunk, advancing the
// filter state.
func (c *telnetConn) filter(in []byte) []byte {
	out := make([]byte, 0, len(in))
	for _, b := range in {
		switch c.state {
		case telnetStateData:
			if b == telnetIAC {
				c.state = telnetStateIAC
			} else {
				out = append(out, b)
			}
		case telnetStateIAC:
			switch b {
			case telnetIAC:
				// Escaped literal 0xFF
				out = append(out, b)
				c.state = telnetStateData
			case telnetWill, telnetWont, telnetDo, telnetDont:
				c.state = telnetStateOption
			case telnetSB:
				c.state = telnetStateSub
			default:
				// Two-byte command, dropped
				c.state = telnetStateData
			}
		case telnetStateOption:
			// Option byte of a three-byte negotiation, dropped
			c.state = telnetStateData
		case telnetStateSub:
			if b == telnetIAC {
				c.state = telnetStateSubIAC
			}
		case telnetStateSubIAC:
			if b == telnetSE {
				c.state = telnetStateData
			} else {
				c.state = telnetStateSub
			}
		}
	}
	return out
}

// SSHTransport reaches serial lines over the console server's per-line SSH
// ports. The console server authenticates the SSH layer with the same
// management credentials used for the device login behind it.
//
// Design decision: We accept any host key because:
//  1. Console servers regenerate factory host keys on every reset
//  2. Operators reach them by management address, not by trust anchor
//  3. The collected data is an inventory, not a secret channel
type SSHTransport struct {
	// username authenticates the SSH connection to the console server.
	username string

	// password authenticates the SSH connection to the console server.
	password string

	// timeout bounds the TCP connect and SSH handshake.
	timeout time.Duration

	// dial establishes connections; swapped in tests.
	dial dialFunc
}

// SSHOption configures an SSHTransport.
type SSHOption func(*SSHTransport)

// WithSSHTimeout sets the connect and handshake timeout.
// Non-positive values are ignored.
func WithSSHTimeout(timeout time.Duration) SSHOption {
	return func(t *SSHTransport) {
		if timeout > 0 {
			t.timeout = timeout
		}
	}
}

// NewSSHTransport creates an SSH transport that authenticates with the
// given credentials.
func NewSSHTransport(username, password string, opts ...SSHOption) *SSHTransport {
	t := &SSHTransport{
		username: username,
		password: password,
		timeout:  config.DefaultLoginTimeout,
	}
	t.dial = t.netDial

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// netDial is the production dialer.
func (t *SSHTransport) netDial(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: t.timeout}
	return dialer.DialContext(ctx, network, addr)
}

// Name returns the transport name.
func (t *SSHTransport) Name() string { return "ssh" }

// LinePort returns the SSH port of the given serial line.
func (t *SSHTransport) LinePort(line int) int { return SSHBasePort + line }

// Open connects to a serial line's SSH port and starts a shell session.
// The shell is the serial passthrough; the device dialog runs over it.
func (t *SSHTransport) Open(ctx context.Context, consoleAddr string, line int) (io.ReadWriteCloser, error) {
	addr := net.JoinHostPort(consoleAddr, strconv.Itoa(t.LinePort(line)))

	sshConfig := &ssh.ClientConfig{
		User:            t.username,
		Auth:            []ssh.AuthMethod{ssh.Password(t.password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // factory host keys change on every reset
		Timeout:         t.timeout,
	}

	conn, err := t.dial(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to open console line %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s failed: %w", addr, err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)

	session, err := client.NewSession()
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to open ssh session on %s: %w", addr, err)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		_ = session.Close()
		_ = client.Close()
		return nil, fmt.Errorf("failed to attach stdin on %s: %w", addr, err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		_ = session.Close()
		_ = client.Close()
		return nil, fmt.Errorf("failed to attach stdout on %s: %w", addr, err)
	}

	if err := session.Shell(); err != nil {
		_ = session.Close()
		_ = client.Close()
		return nil, fmt.Errorf("failed to start shell on %s: %w", addr, err)
	}

	return &sshLine{
		stdin:   stdin,
		stdout:  stdout,
		session: session,
		client:  client,
	}, nil
}

// sshLine adapts an SSH shell session to the byte stream the dialog expects.
type sshLine struct {
	stdin   io.WriteCloser
	stdout  io.Reader
	session *ssh.Session
	client  *ssh.Client
}

// Read reads from the shell's stdout.
func (l *sshLine) Read(p []byte) (int, error) { return l.stdout.Read(p) }

// Write writes to the shell's stdin.
func (l *sshLine) Write(p []byte) (int, error) { return l.stdin.Write(p) }

// Close tears down the session and the SSH connection.
func (l *sshLine) Close() error {
	_ = l.stdin.Close()
	_ = l.session.Close()
	return l.client.Close()
}
