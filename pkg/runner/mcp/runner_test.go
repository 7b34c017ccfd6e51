package mcp

import (
	"context"
	"net"
	"testing"
	"time"

	"tableflip.dev/nbook/pkg/app"
	"tableflip.dev/nbook/pkg/store"
)

func TestEndpointPath(t *testing.T) {
	for in, want := range map[string]string{
		"":        "/mcp",
		"  ":      "/mcp",
		"rpc":     "/rpc",
		"/nb/mcp": "/nb/mcp",
	} {
		if got := EndpointPath(in); got != want {
			t.Errorf("EndpointPath(%q) = %q, expected %q", in, got, want)
		}
	}
}

func TestRunnerHTTPStopsWithContext(t *testing.T) {
	p, err := store.Load(&store.FileConfig{Path: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listening := make(chan net.Addr, 1)
	r := Runner{
		Service:         &app.Service{Persistence: p},
		Transport:       TransportHTTP,
		HTTPListenAddr:  "127.0.0.1:0",
		OnHTTPListening: func(a net.Addr) { listening <- a },
	}
	done := make(chan error, 1)
	go func() { done <- r.Do(ctx) }()

	select {
	case a := <-listening:
		if a.(*net.TCPAddr).Port == 0 {
			t.Fatalf("expected a bound port, got %v", a)
		}
	case err := <-done:
		t.Fatalf("runner exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server never started listening")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected a clean shutdown, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRunnerUnknownTransport(t *testing.T) {
	p, err := store.Load(&store.FileConfig{Path: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	r := Runner{Service: &app.Service{Persistence: p}, Transport: "carrier-pigeon"}
	if err := r.Do(context.Background()); err == nil {
		t.Fatal("expected an error for an unknown transport")
	}
}
