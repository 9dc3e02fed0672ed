package scan

import (
	"context"

	"github.com/nao1215/lanscan/internal/model"
)

// ScanNetwork probes every host of a /24 network with SNMP and returns the
// devices that answered, sorted by address. It is the programmatic entry
// point the portal layer calls; by default it scans with v2c community
// "admin", the default OID, a 1s timeout, 1 retry and 100 concurrent probes,
// all adjustable through options.
//
// The network may be a plain address ("172.16.40.0") or a CIDR
// ("172.16.40.0/24"). A malformed network fails before any probe is sent.
func ScanNetwork(ctx context.Context, network string, opts ...Option) (model.Devices, error) {
	subnet, err := model.NewSubnet(network)
	if err != nil {
		return nil, err
	}
	return NewScanner(opts...).Scan(ctx, subnet)
}
