package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"ragdesk/internal/models"
	"ragdesk/pkg/resume"
)

// Config configures the backend gateway.
type Config struct {
	BaseURL        string
	QueryTimeout   time.Duration // query, upload, resume analysis
	MetricsTimeout time.Duration // listings, stats, telemetry
}

// Gateway translates client operations into backend HTTP calls. Failures come
// back as ErrTimeout, *NetworkError, or *ServerError so callers can convert
// them into error turns and notifications rather than propagate them.
type Gateway struct {
	config Config
	client *http.Client
}

// NewWithConfig creates a Gateway, defaulting unset fields.
func NewWithConfig(config Config) (*Gateway, error) {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8080"
	}
	if config.QueryTimeout == 0 {
		// Backend inference can take minutes; the contract is >= 60s.
		config.QueryTimeout = 120 * time.Second
	}
	if config.MetricsTimeout == 0 {
		config.MetricsTimeout = 10 * time.Second
	}

	u, err := url.Parse(config.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend URL: %s", config.BaseURL)
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Gateway{
		config: config,
		client: &http.Client{},
	}, nil
}

// SubmitQuery asks a question scoped to the given document ids. An empty id
// list searches all documents.
func (g *Gateway) SubmitQuery(ctx context.Context, query string, maxResults int, documentIDs []int64) (*models.QueryResponse, error) {
	if maxResults <= 0 {
		maxResults = 10
	}
	req := models.QueryRequest{Query: query, MaxResults: maxResults, DocumentIDs: documentIDs}

	var out models.QueryResponse
	if err := g.postJSON(ctx, "/query", req, &out, g.config.QueryTimeout); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadDocument sends one file as multipart form data. Batch callers upload
// sequentially; the gateway never parallelizes uploads itself.
func (g *Gateway) UploadDocument(ctx context.Context, path string) (*models.UploadResponse, error) {
	body, contentType, err := fileForm(path, "", "")
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	var out models.UploadResponse
	if err := g.postForm(ctx, "/upload", body, contentType, &out, g.config.QueryTimeout); err != nil {
		return nil, err
	}
	return &out, nil
}

// listDocumentsResponse matches the backend envelope. Timestamps arrive as
// ISO strings that are not always RFC 3339, so they are parsed leniently.
type listDocumentsResponse struct {
	Documents []struct {
		ID         int64  `json:"id"`
		Filename   string `json:"filename"`
		CreatedAt  string `json:"created_at"`
		FileType   string `json:"file_type"`
		ChunkCount int    `json:"chunk_count"`
	} `json:"documents"`
}

// ListDocuments fetches the authoritative document list. On failure callers
// must treat the list as empty, never keep a stale copy.
func (g *Gateway) ListDocuments(ctx context.Context) ([]models.DocumentRef, error) {
	var out listDocumentsResponse
	if err := g.get(ctx, "/documents", &out, g.config.MetricsTimeout); err != nil {
		return nil, err
	}

	docs := make([]models.DocumentRef, 0, len(out.Documents))
	for _, d := range out.Documents {
		docs = append(docs, models.DocumentRef{
			ID:         d.ID,
			Filename:   d.Filename,
			CreatedAt:  parseTimestamp(d.CreatedAt),
			FileType:   d.FileType,
			ChunkCount: d.ChunkCount,
		})
	}
	return docs, nil
}

// DeleteDocument removes a document and its chunks server-side.
func (g *Gateway) DeleteDocument(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, g.config.MetricsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/documents/%d", g.config.BaseURL, id), nil)
	if err != nil {
		return &NetworkError{Err: err}
	}
	return g.doJSON(req, nil)
}

// SubmitFeedback records a thumbs up/down on an answer.
func (g *Gateway) SubmitFeedback(ctx context.Context, req models.FeedbackRequest) error {
	return g.postJSON(ctx, "/feedback", req, nil, g.config.MetricsTimeout)
}

// AnalyzeResume uploads a resume PDF with a job description and returns the
// normalized analysis. The backend mixes snake_case and camelCase keys, so the
// raw payload goes through the resume normalization boundary immediately.
func (g *Gateway) AnalyzeResume(ctx context.Context, path, jobDescription string) (*models.ResumeAnalysis, error) {
	body, contentType, err := fileForm(path, "job_description", jobDescription)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	var raw map[string]interface{}
	if err := g.postForm(ctx, "/analyze-resume", body, contentType, &raw, g.config.QueryTimeout); err != nil {
		return nil, err
	}
	return resume.Normalize(raw), nil
}

// Stats fetches document and chunk counts.
func (g *Gateway) Stats(ctx context.Context) (*models.Stats, error) {
	var out models.Stats
	if err := g.get(ctx, "/stats", &out, g.config.MetricsTimeout); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health reports whether the backend answers at all.
func (g *Gateway) Health(ctx context.Context) error {
	return g.get(ctx, "/health", nil, g.config.MetricsTimeout)
}

func (g *Gateway) get(ctx context.Context, path string, out interface{}, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.config.BaseURL+path, nil)
	if err != nil {
		return &NetworkError{Err: err}
	}
	return g.doJSON(req, out)
}

func (g *Gateway) postJSON(ctx context.Context, path string, body, out interface{}, timeout time.Duration) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &NetworkError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return g.doJSON(req, out)
}

func (g *Gateway) postForm(ctx context.Context, path string, body *bytes.Buffer, contentType string, out interface{}, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL+path, body)
	if err != nil {
		return &NetworkError{Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	return g.doJSON(req, out)
}

// doJSON runs the request and classifies the outcome into the gateway error
// taxonomy: timeout, network failure, or server error with detail.
func (g *Gateway) doJSON(req *http.Request, out interface{}) error {
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := g.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return ErrTimeout
		}
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	if resp.StatusCode >= 400 {
		return &ServerError{Status: resp.StatusCode, Detail: errorDetail(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &ServerError{Status: resp.StatusCode, Detail: "malformed response body"}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// errorDetail pulls the FastAPI-style {"detail": "..."} message out of an
// error body, falling back to empty when the body is not that shape.
func errorDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Detail
}

// fileForm builds a multipart body with one file part and an optional extra
// form field.
func fileForm(path, fieldName, fieldValue string) (*bytes.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %v", err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("failed to build form: %v", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("failed to read file: %v", err)
	}
	if fieldName != "" {
		if err := w.WriteField(fieldName, fieldValue); err != nil {
			return nil, "", fmt.Errorf("failed to build form: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %v", err)
	}

	return body, w.FormDataContentType(), nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}
