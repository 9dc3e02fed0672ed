package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoNetwork is returned when no subnet to scan is specified.
	// This error occurs when the --network flag is missing or empty.
	ErrNoNetwork = errors.New("no network specified: provide a subnet like 172.16.40.0 or 172.16.40.0/24")

	// ErrInvalidTimeout is returned when the probe timeout is not positive.
	// A timeout of zero or negative would cause immediate probe failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidThreads is returned when the concurrency cap is not positive.
	// A cap of zero would mean no host is ever probed.
	ErrInvalidThreads = errors.New("invalid thread count: must be positive")

	// ErrConflictingReportFormats is returned when both JSONReport and
	// MarkdownReport are enabled. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: json and markdown cannot be combined")
)
