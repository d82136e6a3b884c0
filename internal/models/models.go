package models

import "time"

// Turn roles.
const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// Feedback kinds.
const (
	FeedbackPositive = "positive"
	FeedbackNegative = "negative"
)

// Turn is one message in a conversation, either the user's question or the
// assistant's answer. Turns are append-only; only Feedback mutates after creation.
type Turn struct {
	ID          int64      `json:"id"`
	Role        string     `json:"role"`
	Text        string     `json:"text"`
	CreatedAt   time.Time  `json:"created_at"`
	SourceCount int        `json:"source_count,omitempty"`
	Confidence  float64    `json:"confidence,omitempty"`
	Citations   []Citation `json:"citations,omitempty"`
	LatencyMs   int64      `json:"latency_ms,omitempty"`
	Feedback    *Feedback  `json:"feedback,omitempty"`
	IsError     bool       `json:"is_error,omitempty"`
}

// Citation is a short preview of a source chunk backing an answer.
type Citation struct {
	Preview string `json:"preview"`
}

// Feedback is the user's rating of an AI turn.
type Feedback struct {
	Kind string `json:"kind"`
}

// DocumentRef mirrors a document known to the backend. The client copy is
// authoritative only immediately after a successful list refresh.
type DocumentRef struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	CreatedAt  time.Time `json:"created_at"`
	FileType   string    `json:"file_type,omitempty"`
	ChunkCount int       `json:"chunk_count,omitempty"`
}

// Notification kinds.
const (
	NotifySuccess = "success"
	NotifyError   = "error"
	NotifyInfo    = "info"
	NotifyWarning = "warning"
)

// Notification records the outcome of a completed async operation.
type Notification struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}

// ComparisonResult is derived wholesale from one backend answer by the
// section extractor. Category lists are never empty and never exceed 5 items.
type ComparisonResult struct {
	Similarities        []string `json:"similarities"`
	Differences         []string `json:"differences"`
	Insights            []string `json:"insights"`
	OverlapScorePercent int      `json:"overlap_score_percent"`
	RawResponse         string   `json:"raw_response"`
}

// Upload statuses for one file in a batch.
const (
	UploadSuccess = "success"
	UploadError   = "error"
)

// UploadResult is the outcome of one file in an upload batch, in input order.
type UploadResult struct {
	Filename   string `json:"filename"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	DocumentID int64  `json:"document_id,omitempty"`
}

// ResumeAnalysis is the canonical, normalized form of the backend's
// resume-analysis payload.
type ResumeAnalysis struct {
	OverallScore    int          `json:"overall_score"`
	Summary         string       `json:"analysis_summary"`
	MatchedSkills   []SkillMatch `json:"matched_skills"`
	MissingSkills   []SkillGap   `json:"missing_skills"`
	Strengths       []string     `json:"strengths"`
	Weaknesses      []string     `json:"weaknesses"`
	Recommendations []string     `json:"recommendations"`
	ATS             ATSScore     `json:"ats_score"`
}

// SkillMatch is a skill found in the resume with the model's confidence.
type SkillMatch struct {
	Skill      string `json:"skill"`
	Confidence int    `json:"confidence"`
}

// SkillGap is a skill the job asks for that the resume lacks.
type SkillGap struct {
	Skill      string `json:"skill"`
	Importance string `json:"importance"`
}

// ATSScore groups applicant-tracking-system style scores, each in [0,100].
type ATSScore struct {
	KeywordMatch int `json:"keyword_match"`
	FormatScore  int `json:"format_score"`
	Readability  int `json:"readability"`
}
