package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Counter is the probe's view of the data service: a count-only read.
type Counter interface {
	CountEvents(ctx context.Context) (int64, error)
}

// ProbeState classifies connectivity to the data service.
type ProbeState int

const (
	ProbeChecking ProbeState = iota
	ProbeConnected
	ProbeError
)

func (s ProbeState) String() string {
	switch s {
	case ProbeChecking:
		return "checking"
	case ProbeConnected:
		return "connected"
	case ProbeError:
		return "error"
	default:
		return "unknown"
	}
}

// ProbeResult is the outcome of one connectivity check.
type ProbeResult struct {
	State     ProbeState
	Count     int64
	Error     string
	CheckedAt time.Time
}

// Probe issues a single lightweight count query against the event collection
// to classify connectivity. Purely diagnostic: nothing else gates on it.
type Probe struct {
	counter Counter
	log     *slog.Logger

	mu   sync.Mutex
	last ProbeResult
}

func NewProbe(counter Counter, logger *slog.Logger) *Probe {
	if logger == nil {
		logger = slog.Default()
	}
	return &Probe{counter: counter, log: logger, last: ProbeResult{State: ProbeChecking}}
}

// Run executes the probe and stores the result. Manual retry is just
// another Run.
func (p *Probe) Run(ctx context.Context) ProbeResult {
	p.mu.Lock()
	p.last = ProbeResult{State: ProbeChecking}
	p.mu.Unlock()

	count, err := p.counter.CountEvents(ctx)

	res := ProbeResult{CheckedAt: time.Now()}
	if err != nil {
		p.log.Error("connection probe failed", "err", err)
		res.State = ProbeError
		res.Error = err.Error()
	} else {
		res.State = ProbeConnected
		res.Count = count
	}

	p.mu.Lock()
	p.last = res
	p.mu.Unlock()
	return res
}

// Last returns the most recent result; State is ProbeChecking until the
// first Run completes.
func (p *Probe) Last() ProbeResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
