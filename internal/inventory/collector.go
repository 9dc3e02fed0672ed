package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/lanscan/internal/config"
	"github.com/nao1215/lanscan/internal/model"
)

// Console dialog prompts. The attached devices present a menu-driven CLI;
// ">>" closes every redraw of the menu prompt.
const (
	menuPrompt     = ">>"
	usernamePrompt = "User: "
	passwordPrompt = "Password: "
)

// placeholderNone marks a field the line answered but we could not parse.
const placeholderNone = "None"

// DefaultCollectConcurrency caps how many console servers are walked at
// once. Lines within one console are read serially; a console server's CPU
// handles one slow dialog at a time much better than thirty-two.
const DefaultCollectConcurrency = 4

// productPattern extracts the product name from the menu banner. The device
// prints its model at the top of the root menu, e.g. "PL-1000GT:configuration".
var productPattern = regexp.MustCompile(`([A-Z0-9-]+):`)

// addrPattern extracts the management address from the Ethernet status
// screen, e.g. "IP Addr is 10.30.6.101".
var addrPattern = regexp.MustCompile(`Addr is\s+(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})`)

// Collector walks the serial lines of discovered console servers and reads
// the product name and management address of each attached device.
type Collector struct {
	// transport opens the serial lines, over telnet or SSH.
	transport Transport

	// username is the device login sent during the dialog.
	username string

	// password is the device password sent during the dialog.
	password string

	// stepTimeout bounds each prompt wait in the dialog.
	stepTimeout time.Duration

	// concurrency is the maximum number of consoles walked at once.
	concurrency int

	// logger for structured logging.
	logger *slog.Logger
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithTransport sets the transport used to reach serial lines.
func WithTransport(transport Transport) CollectorOption {
	return func(c *Collector) {
		if transport != nil {
			c.transport = transport
		}
	}
}

// WithCredentials sets the device login credentials.
// Empty values are ignored so partial overrides keep the factory defaults.
func WithCredentials(username, password string) CollectorOption {
	return func(c *Collector) {
		if username != "" {
			c.username = username
		}
		if password != "" {
			c.password = password
		}
	}
}

// WithStepTimeout bounds each prompt wait in the dialog.
// Non-positive values are ignored.
func WithStepTimeout(timeout time.Duration) CollectorOption {
	return func(c *Collector) {
		if timeout > 0 {
			c.stepTimeout = timeout
		}
	}
}

// WithCollectConcurrency sets the maximum number of consoles walked at once.
// Non-positive values are ignored.
func WithCollectConcurrency(n int) CollectorOption {
	return func(c *Collector) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithCollectorLogger sets a custom logger for the collector.
func WithCollectorLogger(logger *slog.Logger) CollectorOption {
	return func(c *Collector) {
		c.logger = logger
	}
}

// NewCollector creates a Collector with default settings: the telnet
// transport, factory credentials, and five-second dialog steps.
func NewCollector(opts ...CollectorOption) *Collector {
	c := &Collector{
		transport:   NewTelnetTransport(),
		username:    config.DefaultConsoleUsername,
		password:    config.DefaultConsolePassword,
		stepTimeout: config.DefaultLoginTimeout,
		concurrency: DefaultCollectConcurrency,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Collect walks every console server and returns the collected line states
// in walk order. Only context cancellation aborts the walk; lines that fail
// their dialog are logged and skipped.
func (c *Collector) Collect(ctx context.Context, consoles []model.ConsoleServer) (model.InventoryEntries, error) {
	// Results are index-aligned with consoles so the walk order survives
	// the concurrent fan-out.
	perConsole := make([]model.InventoryEntries, len(consoles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, console := range consoles {
		i, console := i, console
		g.Go(func() error {
			entries, err := c.CollectConsole(ctx, console)
			if err != nil {
				return err
			}
			perConsole[i] = entries
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all model.InventoryEntries
	for _, entries := range perConsole {
		all = append(all, entries...)
	}
	return all, nil
}

// CollectConsole reads every serial line of one console server, in line
// order. A line whose dialog fails is skipped so one dark line cannot hide
// the rest of the chassis.
func (c *Collector) CollectConsole(ctx context.Context, console model.ConsoleServer) (model.InventoryEntries, error) {
	c.logger.Debug("collecting console",
		"console", console.Addr,
		"lines", console.Lines,
		"transport", c.transport.Name())

	entries := make(model.InventoryEntries, 0, console.Lines)
	for line := 1; line <= console.Lines; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry, err := c.collectLine(ctx, console.Addr, line)
		if err != nil {
			c.logger.Debug("skipping console line",
				"console", console.Addr,
				"line", line,
				"error", err)
			continue
		}
		entries = append(entries, entry)
	}

	c.logger.Debug("console collected",
		"console", console.Addr,
		"entries", len(entries))
	return entries, nil
}

// collectLine runs the login dialog on one serial line and parses the
// product name and management address out of the menu screens.
func (c *Collector) collectLine(ctx context.Context, consoleAddr string, line int) (model.InventoryEntry, error) {
	conn, err := c.transport.Open(ctx, consoleAddr, line)
	if err != nil {
		return model.InventoryEntry{}, err
	}
	defer conn.Close()

	d := newDialog(conn, c.stepTimeout)
	defer d.stop()

	// Wake the line and wait for the menu prompt.
	if _, err := d.exchange(ctx, "/\n", menuPrompt); err != nil {
		return model.InventoryEntry{}, fmt.Errorf("line did not answer: %w", err)
	}

	// Log in with the device credentials.
	if _, err := d.exchange(ctx, "login\n", usernamePrompt); err != nil {
		return model.InventoryEntry{}, fmt.Errorf("login prompt missing: %w", err)
	}
	if _, err := d.exchange(ctx, c.username+"\n", passwordPrompt); err != nil {
		return model.InventoryEntry{}, fmt.Errorf("password prompt missing: %w", err)
	}
	if _, err := d.exchange(ctx, c.password+"\n", menuPrompt); err != nil {
		return model.InventoryEntry{}, fmt.Errorf("login rejected: %w", err)
	}

	// The root menu banner names the product.
	banner, err := d.exchange(ctx, "/\n", menuPrompt)
	if err != nil {
		return model.InventoryEntry{}, fmt.Errorf("menu did not redraw: %w", err)
	}
	product := placeholderNone
	if m := productPattern.FindStringSubmatch(banner); m != nil {
		product = m[1]
	}

	// The Ethernet status screen names the management address.
	status, err := d.exchange(ctx, "c i eth ip\n", menuPrompt)
	if err != nil {
		return model.InventoryEntry{}, fmt.Errorf("ethernet status missing: %w", err)
	}
	deviceAddr := placeholderNone
	if m := addrPattern.FindStringSubmatch(status); m != nil {
		deviceAddr = m[1]
	}

	return model.InventoryEntry{
		ConsoleAddr: consoleAddr,
		ConsolePort: c.transport.LinePort(line),
		DeviceAddr:  deviceAddr,
		Product:     product,
		CollectedAt: time.Now().UTC(),
	}, nil
}
