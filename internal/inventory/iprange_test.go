package inventory

import (
	"errors"
	"reflect"
	"testing"
)

// TestRangeHosts tests expansion of inclusive address ranges.
func TestRangeHosts(t *testing.T) {
	t.Parallel()

	t.Run("single address range", func(t *testing.T) {
		t.Parallel()

		r := Range{Start: "172.16.10.2", End: "172.16.10.2"}
		hosts, err := r.Hosts()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(hosts, []string{"172.16.10.2"}) {
			t.Errorf("unexpected hosts: %v", hosts)
		}
	})

	t.Run("small span includes both bounds", func(t *testing.T) {
		t.Parallel()

		r := Range{Start: "172.16.10.1", End: "172.16.10.4"}
		hosts, err := r.Hosts()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"172.16.10.1", "172.16.10.2", "172.16.10.3", "172.16.10.4"}
		if !reflect.DeepEqual(hosts, want) {
			t.Errorf("expected %v, got %v", want, hosts)
		}
	})

	t.Run("span crossing an octet boundary", func(t *testing.T) {
		t.Parallel()

		r := Range{Start: "10.0.0.254", End: "10.0.1.2"}
		hosts, err := r.Hosts()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Console servers are assigned by hand; the walk is a plain integer
		// sweep that does not skip network or broadcast addresses.
		want := []string{"10.0.0.254", "10.0.0.255", "10.0.1.0", "10.0.1.1", "10.0.1.2"}
		if !reflect.DeepEqual(hosts, want) {
			t.Errorf("expected %v, got %v", want, hosts)
		}
	})

	t.Run("reversed range expands to nothing", func(t *testing.T) {
		t.Parallel()

		r := Range{Start: "172.16.10.10", End: "172.16.10.1"}
		hosts, err := r.Hosts()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hosts) != 0 {
			t.Errorf("expected no hosts, got %v", hosts)
		}
	})

	t.Run("invalid start returns ErrInvalidRange", func(t *testing.T) {
		t.Parallel()

		r := Range{Start: "not-an-address", End: "172.16.10.1"}
		_, err := r.Hosts()
		if !errors.Is(err, ErrInvalidRange) {
			t.Errorf("expected ErrInvalidRange, got %v", err)
		}
	})

	t.Run("invalid end returns ErrInvalidRange", func(t *testing.T) {
		t.Parallel()

		r := Range{Start: "172.16.10.1", End: "172.16.10"}
		_, err := r.Hosts()
		if !errors.Is(err, ErrInvalidRange) {
			t.Errorf("expected ErrInvalidRange, got %v", err)
		}
	})

	t.Run("IPv6 bound returns ErrInvalidRange", func(t *testing.T) {
		t.Parallel()

		r := Range{Start: "::1", End: "::2"}
		_, err := r.Hosts()
		if !errors.Is(err, ErrInvalidRange) {
			t.Errorf("expected ErrInvalidRange, got %v", err)
		}
	})
}
