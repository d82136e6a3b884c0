package chat

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ragdesk/internal/models"
	"ragdesk/internal/types"
	"ragdesk/pkg/compare"
	"ragdesk/pkg/gateway"
	"ragdesk/pkg/state"
)

// Input gating errors. These are the only errors Submit returns; gateway
// failures are converted into error turns instead.
var (
	ErrEmptyQuery = errors.New("query is empty")
	ErrBusy       = errors.New("a query is already in flight")
	ErrDeclined   = errors.New("unscoped query declined")
)

// ErrCompareSelection is returned when a comparison is run without 2-3
// selected documents.
var ErrCompareSelection = errors.New("select 2 or 3 documents to compare")

const apologyText = "I'm sorry - I ran into a problem answering that. Please try again."

var defaultStatusMessages = []string{
	"Searching your documents...",
	"Reading the best matches...",
	"Drafting an answer...",
	"Almost there...",
}

// Config configures a conversation Orchestrator.
type Config struct {
	Gateway    types.Gateway
	State      *state.Container
	MaxResults int

	// Cosmetic status-text rotation shown while a query is in flight. Purely
	// perceived-latency feedback, no semantic contract.
	StatusMessages []string
	StatusInterval time.Duration
	OnStatus       func(string)

	// ConfirmAll gates queries with an empty selection set: such a query
	// searches all documents, and the user must say so explicitly. Nil means
	// no gate.
	ConfirmAll func() bool
}

// Orchestrator drives the ask-a-question flow: optimistic user turn, gateway
// call, AI turn (answer or error), notification. At most one query is in
// flight at a time; concurrent submits are rejected as no-ops.
type Orchestrator struct {
	config Config

	mu         sync.Mutex
	submitting bool
}

// NewWithConfig creates an Orchestrator, defaulting unset fields.
func NewWithConfig(config Config) (*Orchestrator, error) {
	if config.Gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if config.State == nil {
		return nil, fmt.Errorf("state container is required")
	}
	if config.MaxResults == 0 {
		config.MaxResults = 10
	}
	if len(config.StatusMessages) == 0 {
		config.StatusMessages = defaultStatusMessages
	}
	if config.StatusInterval == 0 {
		config.StatusInterval = 2 * time.Second
	}
	return &Orchestrator{config: config}, nil
}

// Submit runs one question through the backend. The user turn is appended
// optimistically before any I/O; the returned turn is the AI answer, which on
// gateway failure is an error turn rather than a propagated error.
func (o *Orchestrator) Submit(ctx context.Context, text string) (*models.Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}

	o.mu.Lock()
	if o.submitting {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	o.submitting = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.submitting = false
		o.mu.Unlock()
	}()

	selected := o.config.State.Selected()
	if len(selected) == 0 && o.config.ConfirmAll != nil && !o.config.ConfirmAll() {
		return nil, ErrDeclined
	}

	o.config.State.AppendTurn(models.Turn{
		ID:        models.NextID(),
		Role:      models.RoleUser,
		Text:      text,
		CreatedAt: time.Now(),
	})

	stopStatus := o.startStatusRotation()
	defer stopStatus()

	start := time.Now()
	resp, err := o.config.Gateway.SubmitQuery(ctx, text, o.config.MaxResults, selected)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		turn := models.Turn{
			ID:        models.NextID(),
			Role:      models.RoleAI,
			Text:      apologyText,
			CreatedAt: time.Now(),
			LatencyMs: latency,
			IsError:   true,
		}
		o.config.State.AppendTurn(turn)
		o.config.State.AddNotification(models.NotifyError, "Query failed", gateway.Detail(err))
		return &turn, nil
	}

	citations := make([]models.Citation, 0, len(resp.Sources))
	for _, s := range resp.Sources {
		citations = append(citations, models.Citation{Preview: s.ContentPreview})
	}
	turn := models.Turn{
		ID:          models.NextID(),
		Role:        models.RoleAI,
		Text:        resp.Answer,
		CreatedAt:   time.Now(),
		SourceCount: len(resp.Sources),
		Confidence:  resp.Confidence,
		Citations:   citations,
		LatencyMs:   latency,
	}
	o.config.State.AppendTurn(turn)
	o.config.State.AddNotification(models.NotifySuccess, "Query answered",
		fmt.Sprintf("Answered from %d sources in %dms", len(resp.Sources), latency))
	return &turn, nil
}

// startStatusRotation cycles the status messages through OnStatus until the
// returned stop function runs.
func (o *Orchestrator) startStatusRotation() func() {
	if o.config.OnStatus == nil {
		return func() {}
	}
	o.config.OnStatus(o.config.StatusMessages[0])

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(o.config.StatusInterval)
		defer ticker.Stop()
		for i := 1; ; i++ {
			select {
			case <-stop:
				return
			case <-ticker.C:
				o.config.OnStatus(o.config.StatusMessages[i%len(o.config.StatusMessages)])
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(stop) }) }
}

// UploadBatch uploads files one at a time, in order. Each file's outcome is
// independent; a failure never rolls back earlier successes. After the loop
// the document list is refreshed exactly once regardless of outcomes, and on
// refresh failure it becomes empty rather than stale. onFile, when set, is
// called after each file settles.
func (o *Orchestrator) UploadBatch(ctx context.Context, paths []string, onFile func(models.UploadResult)) []models.UploadResult {
	results := make([]models.UploadResult, 0, len(paths))
	succeeded := 0

	for _, path := range paths {
		var result models.UploadResult
		resp, err := o.config.Gateway.UploadDocument(ctx, path)
		if err != nil {
			result = models.UploadResult{
				Filename: filepath.Base(path),
				Status:   models.UploadError,
				Message:  gateway.Detail(err),
			}
		} else {
			succeeded++
			result = models.UploadResult{
				Filename:   filepath.Base(path),
				Status:     models.UploadSuccess,
				Message:    resp.Message,
				DocumentID: resp.DocumentID,
			}
		}
		results = append(results, result)
		if onFile != nil {
			onFile(result)
		}
	}

	o.RefreshDocuments(ctx)

	if len(paths) > 0 {
		kind := models.NotifySuccess
		switch {
		case succeeded == 0:
			kind = models.NotifyError
		case succeeded < len(paths):
			kind = models.NotifyWarning
		}
		o.config.State.AddNotification(kind, "Upload finished",
			fmt.Sprintf("%d of %d files uploaded", succeeded, len(paths)))
	}

	return results
}

// RefreshDocuments replaces the mirrored document list from the backend. On
// failure the list becomes empty, never stale, so selections cannot silently
// point at documents that may no longer exist.
func (o *Orchestrator) RefreshDocuments(ctx context.Context) []models.DocumentRef {
	docs, err := o.config.Gateway.ListDocuments(ctx)
	if err != nil {
		o.config.State.SetDocuments(nil)
		return nil
	}
	o.config.State.SetDocuments(docs)
	return docs
}

// DeleteDocument removes a document server-side first; only a confirmed
// delete touches the local list and selections.
func (o *Orchestrator) DeleteDocument(ctx context.Context, id int64) error {
	if err := o.config.Gateway.DeleteDocument(ctx, id); err != nil {
		o.config.State.AddNotification(models.NotifyError, "Delete failed", gateway.Detail(err))
		return err
	}
	o.config.State.RemoveDocument(id)
	o.config.State.AddNotification(models.NotifySuccess, "Document deleted",
		fmt.Sprintf("Document %d removed", id))
	return nil
}

// SubmitFeedback records feedback locally, then reports it to the backend.
// A failed report keeps the local flag and surfaces as a notification.
func (o *Orchestrator) SubmitFeedback(ctx context.Context, turnID int64, kind, comment string) error {
	if !o.config.State.SetTurnFeedback(turnID, kind) {
		return fmt.Errorf("no turn with id %d", turnID)
	}
	req := models.FeedbackRequest{MessageID: turnID, FeedbackType: kind, Comment: comment}
	if err := o.config.Gateway.SubmitFeedback(ctx, req); err != nil {
		o.config.State.AddNotification(models.NotifyWarning, "Feedback not sent", gateway.Detail(err))
	}
	return nil
}

// RunComparison compares the currently selected documents through the query
// endpoint and stores the extracted result wholesale.
func (o *Orchestrator) RunComparison(ctx context.Context) (*models.ComparisonResult, error) {
	selected := o.config.State.CompareSelection()
	if len(selected) < 2 || len(selected) > state.MaxCompareDocs {
		return nil, ErrCompareSelection
	}

	names := make([]string, 0, len(selected))
	byID := make(map[int64]models.DocumentRef)
	for _, d := range o.config.State.Documents() {
		byID[d.ID] = d
	}
	for _, id := range selected {
		if d, ok := byID[id]; ok {
			names = append(names, d.Filename)
		} else {
			names = append(names, fmt.Sprintf("document %d", id))
		}
	}

	resp, err := o.config.Gateway.SubmitQuery(ctx, compare.BuildPrompt(names), o.config.MaxResults, selected)
	if err != nil {
		o.config.State.AddNotification(models.NotifyError, "Comparison failed", gateway.Detail(err))
		return nil, err
	}

	result := compare.Analyze(resp.Answer)
	o.config.State.SetComparison(result)
	o.config.State.AddNotification(models.NotifySuccess, "Comparison complete",
		fmt.Sprintf("Compared %d documents", len(selected)))
	return result, nil
}

// AnalyzeResume runs the resume analysis and stores the normalized result.
func (o *Orchestrator) AnalyzeResume(ctx context.Context, path, jobDescription string) (*models.ResumeAnalysis, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, fmt.Errorf("job description is required")
	}
	analysis, err := o.config.Gateway.AnalyzeResume(ctx, path, jobDescription)
	if err != nil {
		o.config.State.AddNotification(models.NotifyError, "Resume analysis failed", gateway.Detail(err))
		return nil, err
	}
	o.config.State.SetResume(analysis)
	o.config.State.AddNotification(models.NotifySuccess, "Resume analyzed",
		fmt.Sprintf("Overall score %d", analysis.OverallScore))
	return analysis, nil
}
