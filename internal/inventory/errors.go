package inventory

import "errors"

// Sentinel errors for inventory collection.
// These can be checked with errors.Is() to handle specific failures.
var (
	// ErrInvalidRange is returned when a range bound is not an IPv4 address.
	// Ranges come from the configuration file, so this usually means a typo
	// in a start or end entry.
	ErrInvalidRange = errors.New("invalid address range: bounds must be IPv4 addresses")

	// ErrPromptTimeout is returned when a console line stops echoing the
	// expected prompt within the step timeout. Lines with nothing attached
	// fail this way on the first exchange.
	ErrPromptTimeout = errors.New("timed out waiting for console prompt")

	// ErrLineClosed is returned when the console server drops the connection
	// in the middle of the login dialog.
	ErrLineClosed = errors.New("console line closed during dialog")
)
