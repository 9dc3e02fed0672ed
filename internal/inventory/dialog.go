package inventory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/text/encoding/charmap"
)

// dialog drives a prompt-response exchange over one console line.
//
// Design decision: A single goroutine owns the read side and feeds bytes
// through a channel because:
//  1. Each step needs its own timeout, and pipe readers have no deadlines
//  2. A timed-out step must not abandon bytes mid-buffer for the next step
//  3. Closing the line or stopping the dialog ends the goroutine cleanly
type dialog struct {
	// conn is the console line the dialog runs over.
	conn io.ReadWriteCloser

	// stepTimeout bounds each individual prompt wait, not the whole dialog.
	stepTimeout time.Duration

	// incoming carries bytes from the reader goroutine.
	incoming chan byte

	// readErr delivers the error that ended the reader goroutine.
	readErr chan error

	// done releases the reader goroutine when the dialog is abandoned.
	done     chan struct{}
	stopOnce sync.Once
}

// newDialog starts the reader goroutine for a console line.
// Callers must stop the dialog when finished with it.
func newDialog(conn io.ReadWriteCloser, stepTimeout time.Duration) *dialog {
	d := &dialog{
		conn:        conn,
		stepTimeout: stepTimeout,
		incoming:    make(chan byte, 4096),
		readErr:     make(chan error, 1),
		done:        make(chan struct{}),
	}
	go d.readLoop()
	return d
}

// stop releases the reader goroutine. The underlying line is closed by the
// caller; stop only unblocks a reader stuck delivering bytes nobody wants.
func (d *dialog) stop() {
	d.stopOnce.Do(func() { close(d.done) })
}

// readLoop pumps the line into the byte channel until the line closes or
// the dialog is stopped.
func (d *dialog) readLoop() {
	buf := make([]byte, 1024)
	for {
		n, err := d.conn.Read(buf)
		for _, b := range buf[:n] {
			select {
			case d.incoming <- b:
			case <-d.done:
				return
			}
		}
		if err != nil {
			select {
			case d.readErr <- err:
			case <-d.done:
			}
			return
		}
	}
}

// exchange writes a command and reads until the expected prompt appears.
// It returns everything read up to and including the prompt.
func (d *dialog) exchange(ctx context.Context, command, prompt string) (string, error) {
	if _, err := d.conn.Write([]byte(command)); err != nil {
		return "", fmt.Errorf("console write failed: %w", err)
	}
	return d.readUntil(ctx, prompt)
}

// readUntil accumulates bytes until the marker appears, the step times out,
// or the line closes.
func (d *dialog) readUntil(ctx context.Context, marker string) (string, error) {
	timer := time.NewTimer(d.stepTimeout)
	defer timer.Stop()

	markerBytes := []byte(marker)
	var buf []byte
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
			return "", fmt.Errorf("%w: %q", ErrPromptTimeout, marker)
		case err := <-d.readErr:
			return "", fmt.Errorf("%w: %s", ErrLineClosed, err)
		case b := <-d.incoming:
			buf = append(buf, b)
			if bytes.HasSuffix(buf, markerBytes) {
				return decodeConsole(buf), nil
			}
		}
	}
}

// decodeConsole converts raw console bytes to a UTF-8 string. The attached
// devices draw their menus with ISO 8859-1 box characters; decoding
// byte-for-byte keeps the prompts and fields intact where a direct UTF-8
// interpretation would reject them.
func decodeConsole(raw []byte) string {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		// Latin-1 maps every byte, so this cannot happen in practice.
		return string(raw)
	}
	return string(decoded)
}
