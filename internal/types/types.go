package types

import (
	"context"

	"ragdesk/internal/models"
)

// KeyValue is the persistence layer behind the session state container.
// Load and Save never fail observably: a missing or unreadable key leaves the
// destination at its caller-provided default, and a failed write is dropped.
type KeyValue interface {
	Load(key string, into interface{}) bool
	Save(key string, value interface{})
	Close() error
}

// Gateway is the boundary translating client operations into backend HTTP calls.
type Gateway interface {
	SubmitQuery(ctx context.Context, query string, maxResults int, documentIDs []int64) (*models.QueryResponse, error)
	UploadDocument(ctx context.Context, path string) (*models.UploadResponse, error)
	ListDocuments(ctx context.Context) ([]models.DocumentRef, error)
	DeleteDocument(ctx context.Context, id int64) error
	SubmitFeedback(ctx context.Context, req models.FeedbackRequest) error
	AnalyzeResume(ctx context.Context, path, jobDescription string) (*models.ResumeAnalysis, error)
}

// MetricsSource provides the dashboard telemetry families. The feature-metric
// reads degrade to static fallbacks internally, so only Stats can fail.
type MetricsSource interface {
	Stats(ctx context.Context) (*models.Stats, error)
	QuantumCoherence(ctx context.Context) models.QuantumCoherence
	SwarmStatistics(ctx context.Context) models.SwarmStatistics
	HolographicEfficiency(ctx context.Context) models.HolographicEfficiency
	NeuromorphicMemory(ctx context.Context) models.NeuromorphicMemory
}
