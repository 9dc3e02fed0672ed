// Package scan drives one bounded-concurrency sweep over a /24 subnet.
//
// A scan is one linear pipeline: open the shared protocol session, enumerate
// the 254 candidate hosts, fan one probe per host out through an errgroup
// capped at the configured thread count, wait for the full batch, keep the
// hosts that answered, close the session, and return the devices sorted in
// numeric dotted-quad order.
//
// There is deliberately no early exit: a batch is done only when every probe
// has resolved, because "host did not answer" is a result, not a failure.
// The only thing that aborts a batch is cancellation of the caller's context.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each host gets its own goroutine, but only 'threads' goroutines run
// simultaneously, which bounds sockets and memory on any subnet.
package scan
