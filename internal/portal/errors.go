package portal

import "errors"

// ErrScanRunning is returned when a refresh is requested while another scan
// holds the single-flight gate. Handlers translate it into a 409 for forced
// refreshes and a 503 when there is no cached data to fall back on.
var ErrScanRunning = errors.New("a scan is already running")
