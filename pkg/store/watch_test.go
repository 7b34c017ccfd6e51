package store

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"

	"tableflip.dev/nbook/pkg/cell"
	"tableflip.dev/nbook/pkg/notebook"
)

type testConfig struct {
	path string
}

func (t testConfig) BasePath() string {
	return t.path
}

func oneCell(t *testing.T, source string) notebook.Document {
	t.Helper()
	d, err := notebook.AppendCell(notebook.New(nil), cell.New(cell.Code, source), "c1")
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestPersistenceWatchEmitsNotebookChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	base := t.TempDir()
	p, err := Load(testConfig{path: base}, nil)
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe to directories before storing.
	time.Sleep(50 * time.Millisecond)

	if err := p.Store("scratch", oneCell(t, "1+1")); err != nil {
		t.Fatalf("store notebook: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type == EventCatalogInvalidated {
				cancel()
				drain(t, ch)
				return
			}
			if evt.Type == EventNotebookChanged {
				if evt.Name != "scratch" {
					t.Fatalf("expected notebook 'scratch', got %q", evt.Name)
				}
				cancel()
				drain(t, ch)
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for notebook change event")
		}
	}
}

func TestWatchClosesOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	p, err := Load(testConfig{path: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	cancel()
	drain(t, ch)
}

func drain(t *testing.T, ch <-chan Event) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for watch channel to close")
		}
	}
}

func TestEventThrottleCoalesces(t *testing.T) {
	th := newEventThrottle(20 * time.Millisecond)
	defer th.Stop()

	for i := 0; i < 10; i++ {
		th.Enqueue(Event{Type: EventNotebookChanged, Name: "a"})
	}
	th.Enqueue(Event{Type: EventCatalogInvalidated})

	select {
	case batch := <-th.Batches():
		if len(batch) != 2 {
			t.Fatalf("expected 2 coalesced events, got %d: %+v", len(batch), batch)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for batch")
	}
}
