package protocol

import "time"

// Query defaults. The default OID is the product-name object of the managed
// optical transport devices this tool was built around; any other readable
// OID works the same way.
const (
	// DefaultOID is the object queried when none is given.
	DefaultOID = "1.3.6.1.4.1.4515.1.3.6.1.1.1.2.0"
	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 1 * time.Second
	// DefaultRetries is the per-request retry count.
	DefaultRetries = 1
	// DefaultPort is the SNMP agent port.
	DefaultPort = 161
)

// Query describes the one read request a scan sends to every candidate
// address: which object to read and how patient to be about it.
type Query struct {
	// OID is the object identifier to read.
	OID string
	// Timeout bounds one request attempt.
	Timeout time.Duration
	// Retries is how many times the transport re-sends after a timeout.
	// Negative values behave like zero.
	Retries int
}

// NewQuery returns a Query with the given OID and the default timeout and
// retry count. An empty oid falls back to DefaultOID.
func NewQuery(oid string) Query {
	if oid == "" {
		oid = DefaultOID
	}
	return Query{
		OID:     oid,
		Timeout: DefaultTimeout,
		Retries: DefaultRetries,
	}
}

// normalized returns a copy with out-of-range fields clamped to usable
// values, mirroring how the legacy tool tolerated odd CLI inputs.
func (q Query) normalized() Query {
	if q.OID == "" {
		q.OID = DefaultOID
	}
	if q.Timeout <= 0 {
		q.Timeout = DefaultTimeout
	}
	if q.Retries < 0 {
		q.Retries = 0
	}
	return q
}
