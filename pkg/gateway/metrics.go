package gateway

import (
	"context"

	"ragdesk/internal/models"
)

// Static fallbacks for the telemetry widgets. The dashboard renders these
// when an endpoint is down so non-critical metrics never become hard errors.
var (
	FallbackQuantumCoherence = models.QuantumCoherence{
		CoherenceThreshold: 0.85,
	}
	FallbackSwarmStatistics = models.SwarmStatistics{
		ConsensusThreshold: 0.7,
		Status:             "offline",
	}
	FallbackHolographicEfficiency = models.HolographicEfficiency{
		CompressionRatio: 1.0,
		HologramDensity:  "0.00%",
		Status:           "offline",
	}
	FallbackNeuromorphicMemory = models.NeuromorphicMemory{
		DecayRate:        0.05,
		PlasticityWindow: "60 minutes",
		Status:           "offline",
	}
)

// QuantumCoherence reads the quantum retrieval coherence threshold.
func (g *Gateway) QuantumCoherence(ctx context.Context) models.QuantumCoherence {
	var out models.QuantumCoherence
	if err := g.get(ctx, "/quantum/coherence", &out, g.config.MetricsTimeout); err != nil {
		return FallbackQuantumCoherence
	}
	return out
}

// SwarmStatistics reads the swarm retrieval agent statistics.
func (g *Gateway) SwarmStatistics(ctx context.Context) models.SwarmStatistics {
	var out models.SwarmStatistics
	if err := g.get(ctx, "/swarm/statistics", &out, g.config.MetricsTimeout); err != nil {
		return FallbackSwarmStatistics
	}
	return out
}

// HolographicEfficiency reads holographic storage efficiency figures.
func (g *Gateway) HolographicEfficiency(ctx context.Context) models.HolographicEfficiency {
	var out models.HolographicEfficiency
	if err := g.get(ctx, "/holographic/efficiency", &out, g.config.MetricsTimeout); err != nil {
		return FallbackHolographicEfficiency
	}
	return out
}

// NeuromorphicMemory reads the neuromorphic memory state.
func (g *Gateway) NeuromorphicMemory(ctx context.Context) models.NeuromorphicMemory {
	var out models.NeuromorphicMemory
	if err := g.get(ctx, "/neuromorphic/memory", &out, g.config.MetricsTimeout); err != nil {
		return FallbackNeuromorphicMemory
	}
	return out
}
