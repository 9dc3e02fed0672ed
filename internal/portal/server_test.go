package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/nao1215/lanscan/internal/config"
	"github.com/nao1215/lanscan/internal/model"
	"github.com/nao1215/lanscan/internal/scan"
)

func TestNewServer(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		s, err := NewServer()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.addr != config.DefaultPortalListen {
			t.Errorf("expected listen address %q, got %q", config.DefaultPortalListen, s.addr)
		}
		if s.cacheTTL != config.DefaultCacheTTL {
			t.Errorf("expected cache TTL %v, got %v", config.DefaultCacheTTL, s.cacheTTL)
		}
		if s.maxConns != defaultMaxConns {
			t.Errorf("expected connection cap %d, got %d", defaultMaxConns, s.maxConns)
		}
		if s.version != "(devel)" {
			t.Errorf("expected version %q, got %q", "(devel)", s.version)
		}
		if s.networks == nil || len(s.networks) != 0 {
			t.Errorf("expected an empty network list, got %v", s.networks)
		}
		if s.scanNetwork == nil {
			t.Error("expected a default scan function")
		}
		if s.logger == nil {
			t.Error("expected a default logger")
		}
	})

	t.Run("networks are normalized and deduplicated", func(t *testing.T) {
		t.Parallel()

		s, err := NewServer(WithNetworks("172.16.40.7", "172.16.40.0/24", "10.30.6.0"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"172.16.40.0/24", "10.30.6.0/24"}
		if len(s.networks) != len(want) {
			t.Fatalf("expected %d networks, got %v", len(want), s.networks)
		}
		for i, network := range want {
			if s.networks[i] != network {
				t.Errorf("expected network %q at position %d, got %q", network, i, s.networks[i])
			}
		}
	})

	t.Run("malformed configured network", func(t *testing.T) {
		t.Parallel()

		_, err := NewServer(WithNetworks("172.16.40.0/24", "not-a-subnet"))
		if !errors.Is(err, model.ErrInvalidNetwork) {
			t.Errorf("expected ErrInvalidNetwork, got %v", err)
		}
	})

	t.Run("options apply", func(t *testing.T) {
		t.Parallel()

		s, err := NewServer(
			WithListenAddr("127.0.0.1:9000"),
			WithCacheTTL(30*time.Second),
			WithMaxConns(8),
			WithVersion("1.2.3"),
			WithScanOptions(scan.WithThreads(5), scan.WithCommunity("public")),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.addr != "127.0.0.1:9000" {
			t.Errorf("expected the configured listen address, got %q", s.addr)
		}
		if s.cacheTTL != 30*time.Second {
			t.Errorf("expected a 30s cache TTL, got %v", s.cacheTTL)
		}
		if s.maxConns != 8 {
			t.Errorf("expected a connection cap of 8, got %d", s.maxConns)
		}
		if s.version != "1.2.3" {
			t.Errorf("expected version %q, got %q", "1.2.3", s.version)
		}
		if len(s.scanOpts) != 2 {
			t.Errorf("expected 2 scan options, got %d", len(s.scanOpts))
		}
	})

	t.Run("zero values keep the defaults", func(t *testing.T) {
		t.Parallel()

		s, err := NewServer(
			WithListenAddr(""),
			WithCacheTTL(0),
			WithCacheTTL(-time.Second),
			WithMaxConns(0),
			WithMaxConns(-5),
			WithVersion(""),
			WithLogger(nil),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.addr != config.DefaultPortalListen {
			t.Errorf("expected the default listen address, got %q", s.addr)
		}
		if s.cacheTTL != config.DefaultCacheTTL {
			t.Errorf("expected the default cache TTL, got %v", s.cacheTTL)
		}
		if s.maxConns != defaultMaxConns {
			t.Errorf("expected the default connection cap, got %d", s.maxConns)
		}
		if s.version != "(devel)" {
			t.Errorf("expected the default version, got %q", s.version)
		}
		if s.logger == nil {
			t.Error("expected a default logger")
		}
	})
}

func TestServer_Serve(t *testing.T) {
	t.Parallel()

	t.Run("serves requests and shuts down on cancellation", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, newFakeScan(nil))

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- s.Serve(ctx, ln)
		}()

		resp, err := http.Get(fmt.Sprintf("http://%s/api/health", ln.Addr()))
		if err != nil {
			cancel()
			t.Fatalf("health request failed: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected status 200, got %d (%s)", resp.StatusCode, body)
		}

		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("expected a clean shutdown, got %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("Serve did not stop after context cancellation")
		}
	})

	t.Run("listen failure", func(t *testing.T) {
		t.Parallel()

		s := newTestServer(t, newFakeScan(nil), WithListenAddr("127.0.0.1:-1"))
		if err := s.ListenAndServe(context.Background()); err == nil {
			t.Error("expected an error for an invalid listen address")
		}
	})
}
