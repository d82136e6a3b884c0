package metrics

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"ragdesk/internal/models"
	"ragdesk/internal/types"
)

// Snapshot is one dashboard refresh: counts plus the four telemetry families.
type Snapshot struct {
	Stats        models.Stats
	Quantum      models.QuantumCoherence
	Swarm        models.SwarmStatistics
	Holographic  models.HolographicEfficiency
	Neuromorphic models.NeuromorphicMemory
	FetchedAt    time.Time
}

// PollerConfig configures a dashboard Poller.
type PollerConfig struct {
	Source    types.MetricsSource
	Interval  time.Duration // delay between refreshes
	RateLimit float64       // requests per second across all families
	OnUpdate  func(Snapshot)
}

// Poller refreshes dashboard metrics on an interval. Requests for the
// families run sequentially and the next refresh is scheduled only after the
// previous one settles, so polls never stack.
type Poller struct {
	config  PollerConfig
	limiter *rate.Limiter

	mu   sync.Mutex
	last Snapshot
}

// NewPoller creates a Poller, defaulting unset fields.
func NewPoller(config PollerConfig) *Poller {
	if config.Interval == 0 {
		config.Interval = 5 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 5
	}
	return &Poller{
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

// FetchOnce refreshes every family sequentially and returns the snapshot.
// Telemetry families degrade to fallbacks inside the gateway; a failed stats
// read keeps the previous counts.
func (p *Poller) FetchOnce(ctx context.Context) Snapshot {
	snap := Snapshot{FetchedAt: time.Now()}

	p.mu.Lock()
	snap.Stats = p.last.Stats
	p.mu.Unlock()

	if err := p.limiter.Wait(ctx); err == nil {
		if stats, err := p.config.Source.Stats(ctx); err == nil {
			snap.Stats = *stats
		}
	}
	if err := p.limiter.Wait(ctx); err == nil {
		snap.Quantum = p.config.Source.QuantumCoherence(ctx)
	}
	if err := p.limiter.Wait(ctx); err == nil {
		snap.Swarm = p.config.Source.SwarmStatistics(ctx)
	}
	if err := p.limiter.Wait(ctx); err == nil {
		snap.Holographic = p.config.Source.HolographicEfficiency(ctx)
	}
	if err := p.limiter.Wait(ctx); err == nil {
		snap.Neuromorphic = p.config.Source.NeuromorphicMemory(ctx)
	}

	p.mu.Lock()
	p.last = snap
	p.mu.Unlock()

	if p.config.OnUpdate != nil {
		p.config.OnUpdate(snap)
	}
	return snap
}

// Last returns the most recent snapshot.
func (p *Poller) Last() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Run refreshes until the context is cancelled. The interval is measured from
// the end of one refresh to the start of the next.
func (p *Poller) Run(ctx context.Context) {
	for {
		p.FetchOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.config.Interval):
		}
	}
}
