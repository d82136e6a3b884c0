package metrics_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ragdesk/internal/models"
	"ragdesk/pkg/metrics"
)

type fakeSource struct {
	statsErr error
	fetches  int32
	delay    time.Duration
}

func (f *fakeSource) Stats(ctx context.Context) (*models.Stats, error) {
	atomic.AddInt32(&f.fetches, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return &models.Stats{Documents: 4, Chunks: 120}, nil
}

func (f *fakeSource) QuantumCoherence(ctx context.Context) models.QuantumCoherence {
	return models.QuantumCoherence{CoherenceThreshold: 0.9}
}

func (f *fakeSource) SwarmStatistics(ctx context.Context) models.SwarmStatistics {
	return models.SwarmStatistics{TotalAgents: 12, Status: "active"}
}

func (f *fakeSource) HolographicEfficiency(ctx context.Context) models.HolographicEfficiency {
	return models.HolographicEfficiency{DocumentsStored: 4, Status: "active"}
}

func (f *fakeSource) NeuromorphicMemory(ctx context.Context) models.NeuromorphicMemory {
	return models.NeuromorphicMemory{SynapticWeights: 300, Status: "active"}
}

func TestFetchOnce(t *testing.T) {
	src := &fakeSource{}
	p := metrics.NewPoller(metrics.PollerConfig{Source: src, RateLimit: 1000})

	snap := p.FetchOnce(context.Background())

	assert.Equal(t, 4, snap.Stats.Documents)
	assert.Equal(t, 0.9, snap.Quantum.CoherenceThreshold)
	assert.Equal(t, 12, snap.Swarm.TotalAgents)
	assert.Equal(t, 300, snap.Neuromorphic.SynapticWeights)
	assert.False(t, snap.FetchedAt.IsZero())
	assert.Equal(t, snap, p.Last())
}

func TestStatsFailureKeepsLastCounts(t *testing.T) {
	src := &fakeSource{}
	p := metrics.NewPoller(metrics.PollerConfig{Source: src, RateLimit: 1000})

	first := p.FetchOnce(context.Background())
	require.Equal(t, 4, first.Stats.Documents)

	src.statsErr = errors.New("stats endpoint down")
	second := p.FetchOnce(context.Background())
	assert.Equal(t, 4, second.Stats.Documents)
}

func TestRunStopsOnCancelAndNeverStacks(t *testing.T) {
	src := &fakeSource{delay: 10 * time.Millisecond}
	updates := make(chan metrics.Snapshot, 64)
	p := metrics.NewPoller(metrics.PollerConfig{
		Source:    src,
		Interval:  5 * time.Millisecond,
		RateLimit: 1000,
		OnUpdate:  func(s metrics.Snapshot) { updates <- s },
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx)
	}()

	// Let a few refresh cycles happen, then stop.
	require.Eventually(t, func() bool { return len(updates) >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on cancel")
	}

	// Sequential refreshes: at most one stats call per snapshot. A refresh
	// interrupted by cancel may skip its stats call, hence the ±1.
	fetches := int(atomic.LoadInt32(&src.fetches))
	assert.InDelta(t, len(updates), fetches, 1)
}
