package models

// Wire shapes exchanged with the backend REST API.

type QueryRequest struct {
	Query       string  `json:"query"`
	MaxResults  int     `json:"max_results"`
	DocumentIDs []int64 `json:"document_ids,omitempty"`
}

type QueryResponse struct {
	Answer     string                 `json:"answer"`
	Sources    []Source               `json:"sources"`
	QueryType  string                 `json:"query_type,omitempty"`
	Confidence float64                `json:"confidence"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

type Source struct {
	ContentPreview string `json:"content_preview"`
}

type UploadResponse struct {
	Message    string `json:"message"`
	DocumentID int64  `json:"document_id"`
	Filename   string `json:"filename,omitempty"`
}

type FeedbackRequest struct {
	MessageID    int64  `json:"message_id"`
	FeedbackType string `json:"feedback_type"`
	Comment      string `json:"comment,omitempty"`
}

type Stats struct {
	Documents int    `json:"documents"`
	Chunks    int    `json:"chunks"`
	System    string `json:"system,omitempty"`
}

// Feature-metric families rendered by the dashboard. Each has a static
// fallback in pkg/gateway so telemetry failures never surface as hard errors.

type QuantumCoherence struct {
	CoherenceThreshold float64 `json:"coherence_threshold"`
}

type SwarmStatistics struct {
	TotalAgents                int            `json:"total_agents"`
	SpecializationDistribution map[string]int `json:"specialization_distribution,omitempty"`
	ConsensusThreshold         float64        `json:"consensus_threshold"`
	Status                     string         `json:"status,omitempty"`
}

type HolographicEfficiency struct {
	DocumentsStored  int     `json:"documents_stored"`
	MatrixSizeMB     float64 `json:"matrix_size_mb"`
	CompressionRatio float64 `json:"compression_ratio"`
	HologramDensity  string  `json:"hologram_density"`
	Status           string  `json:"status,omitempty"`
}

type NeuromorphicMemory struct {
	SynapticWeights  int     `json:"synaptic_weights"`
	Associations     int     `json:"associations"`
	DecayRate        float64 `json:"decay_rate"`
	PlasticityWindow string  `json:"plasticity_window"`
	Status           string  `json:"status,omitempty"`
}
