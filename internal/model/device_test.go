package model

import (
	"reflect"
	"testing"
	"time"
)

func TestDevices_Sort(t *testing.T) {
	t.Parallel()

	t.Run("numeric dotted-quad order, not lexical", func(t *testing.T) {
		t.Parallel()

		devices := Devices{
			{Addr: "10.0.0.100", Product: "PL-1000IL"},
			{Addr: "10.0.0.2", Product: "PL-4000T"},
			{Addr: "10.0.0.9", Product: "PL-2000"},
		}
		devices.Sort()

		want := []string{"10.0.0.2", "10.0.0.9", "10.0.0.100"}
		if got := devices.Addrs(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected order %v, got %v", want, got)
		}
	})

	t.Run("higher octets dominate lower ones", func(t *testing.T) {
		t.Parallel()

		devices := Devices{
			{Addr: "172.16.40.1"},
			{Addr: "172.16.39.254"},
			{Addr: "172.16.40.0"},
		}
		devices.Sort()

		want := []string{"172.16.39.254", "172.16.40.0", "172.16.40.1"}
		if got := devices.Addrs(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected order %v, got %v", want, got)
		}
	})

	t.Run("unparseable addresses fall back to lexical order", func(t *testing.T) {
		t.Parallel()

		devices := Devices{
			{Addr: "zzz"},
			{Addr: "abc"},
		}
		devices.Sort()

		want := []string{"abc", "zzz"}
		if got := devices.Addrs(); !reflect.DeepEqual(got, want) {
			t.Errorf("expected order %v, got %v", want, got)
		}
	})

	t.Run("empty collection is a no-op", func(t *testing.T) {
		t.Parallel()

		var devices Devices
		devices.Sort()
		if len(devices) != 0 {
			t.Errorf("expected empty collection, got %v", devices)
		}
	})
}

func TestDevices_GroupByProduct(t *testing.T) {
	t.Parallel()

	devices := Devices{
		{Addr: "172.16.40.5", Product: "PL-4000T"},
		{Addr: "172.16.40.9", Product: "PL-1000IL"},
		{Addr: "172.16.40.200", Product: "PL-1000IL"},
	}
	devices.Sort()

	groups := devices.GroupByProduct()

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if got := groups["PL-4000T"]; !reflect.DeepEqual(got, []string{"172.16.40.5"}) {
		t.Errorf("unexpected PL-4000T group: %v", got)
	}
	if got := groups["PL-1000IL"]; !reflect.DeepEqual(got, []string{"172.16.40.9", "172.16.40.200"}) {
		t.Errorf("unexpected PL-1000IL group: %v", got)
	}
}

func TestInventoryEntries_GroupByConsole(t *testing.T) {
	t.Parallel()

	now := time.Now()
	entries := InventoryEntries{
		{ConsoleAddr: "172.16.10.1", ConsolePort: 2001, Product: "PL-1000IL", CollectedAt: now},
		{ConsoleAddr: "172.16.10.1", ConsolePort: 2002, Product: "PL-4000T", CollectedAt: now},
		{ConsoleAddr: "172.16.20.1", ConsolePort: 2001, Product: "PL-2000", CollectedAt: now},
	}

	groups := entries.GroupByConsole()

	if len(groups) != 2 {
		t.Fatalf("expected 2 console groups, got %d", len(groups))
	}
	if got := len(groups["172.16.10.1"]); got != 2 {
		t.Errorf("expected 2 entries for 172.16.10.1, got %d", got)
	}
	if got := groups["172.16.10.1"][0].ConsolePort; got != 2001 {
		t.Errorf("expected order preserved within a group, got first port %d", got)
	}
}

func TestConsoleServer_String(t *testing.T) {
	t.Parallel()

	server := ConsoleServer{Addr: "172.16.10.2", Lines: ConsoleLines32}
	if got := server.String(); got != "172.16.10.2 (32 lines)" {
		t.Errorf("unexpected string: %q", got)
	}
}
