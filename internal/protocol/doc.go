// Package protocol issues single SNMP read queries against individual hosts
// and classifies their responses.
//
// # Architecture
//
// A Session is the shared engine for one scan: it holds the validated
// security configuration and query parameters that every probe of the batch
// uses, and it tracks in-flight probes so teardown can drain them. Probes
// themselves are independent; each one opens its own UDP transport from the
// session template, sends one GET, and reduces whatever happened to a
// (value, answered) pair.
//
// # Response classification
//
// A host is "answered" only when the response carries a usable value. All of
// the following collapse to "no answer" and are never reported as errors,
// because they are the normal, frequent outcomes of probing a mostly-empty
// subnet:
//   - transport errors (timeout after retries, unreachable, send failure)
//   - an SNMP error status in the response
//   - a response without variable bindings
//   - noSuchObject / noSuchInstance / endOfMibView exception values
//   - values that are empty once whitespace and surrounding quotes are stripped
//
// Even a panic inside a single probe is recovered and treated as "no answer"
// for that host alone, so one misbehaving device can never abort a batch.
//
// Design decision: probes deliberately return (string, bool) instead of an
// error. Per-host failure is an expected outcome, not an exceptional one,
// and giving it an error channel invites callers to abort batches on it.
package protocol
