package events

import (
	"context"
	"errors"
	"testing"
)

type fakeCounter struct {
	count int64
	err   error
}

func (f *fakeCounter) CountEvents(ctx context.Context) (int64, error) {
	return f.count, f.err
}

func TestProbeStartsInChecking(t *testing.T) {
	p := NewProbe(&fakeCounter{}, nil)
	if got := p.Last().State; got != ProbeChecking {
		t.Fatalf("initial state = %v, want checking", got)
	}
}

func TestProbeConnected(t *testing.T) {
	p := NewProbe(&fakeCounter{count: 7}, nil)

	res := p.Run(context.Background())
	if res.State != ProbeConnected {
		t.Fatalf("state = %v, want connected", res.State)
	}
	if res.Count != 7 {
		t.Fatalf("count = %d, want 7", res.Count)
	}
	if res.CheckedAt.IsZero() {
		t.Fatal("checked-at must be set")
	}
}

func TestProbeErrorAndManualRetry(t *testing.T) {
	counter := &fakeCounter{err: errors.New("no route to host")}
	p := NewProbe(counter, nil)

	res := p.Run(context.Background())
	if res.State != ProbeError || res.Error == "" {
		t.Fatalf("expected error result, got %+v", res)
	}

	counter.err = nil
	counter.count = 2

	res = p.Run(context.Background())
	if res.State != ProbeConnected || res.Count != 2 {
		t.Fatalf("retry should reconnect, got %+v", res)
	}
	if p.Last().State != ProbeConnected {
		t.Fatal("last result not stored")
	}
}
