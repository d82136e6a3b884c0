package chat_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ragdesk/internal/models"
	"ragdesk/pkg/chat"
	"ragdesk/pkg/gateway"
	"ragdesk/pkg/state"
)

// memKV is an in-memory types.KeyValue for tests.
type memKV struct {
	m map[string][]byte
}

func newMemKV() *memKV { return &memKV{m: make(map[string][]byte)} }

func (k *memKV) Load(key string, into interface{}) bool {
	b, ok := k.m[key]
	if !ok {
		return false
	}
	return json.Unmarshal(b, into) == nil
}

func (k *memKV) Save(key string, v interface{}) {
	if b, err := json.Marshal(v); err == nil {
		k.m[key] = b
	}
}

func (k *memKV) Close() error { return nil }

// fakeGateway scripts gateway outcomes per call.
type fakeGateway struct {
	queryFn    func(query string, documentIDs []int64) (*models.QueryResponse, error)
	uploadFn   func(path string) (*models.UploadResponse, error)
	listFn     func() ([]models.DocumentRef, error)
	deleteErr  error
	feedback   []models.FeedbackRequest
	listCalls  int
	queryBlock chan struct{}
}

func (f *fakeGateway) SubmitQuery(ctx context.Context, query string, maxResults int, documentIDs []int64) (*models.QueryResponse, error) {
	if f.queryBlock != nil {
		<-f.queryBlock
	}
	return f.queryFn(query, documentIDs)
}

func (f *fakeGateway) UploadDocument(ctx context.Context, path string) (*models.UploadResponse, error) {
	return f.uploadFn(path)
}

func (f *fakeGateway) ListDocuments(ctx context.Context) ([]models.DocumentRef, error) {
	f.listCalls++
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn()
}

func (f *fakeGateway) DeleteDocument(ctx context.Context, id int64) error {
	return f.deleteErr
}

func (f *fakeGateway) SubmitFeedback(ctx context.Context, req models.FeedbackRequest) error {
	f.feedback = append(f.feedback, req)
	return nil
}

func (f *fakeGateway) AnalyzeResume(ctx context.Context, path, jobDescription string) (*models.ResumeAnalysis, error) {
	return &models.ResumeAnalysis{OverallScore: 77}, nil
}

func newOrchestrator(t *testing.T, gw *fakeGateway, opts ...func(*chat.Config)) (*chat.Orchestrator, *state.Container) {
	t.Helper()
	st := state.New(newMemKV())
	cfg := chat.Config{Gateway: gw, State: st}
	for _, opt := range opts {
		opt(&cfg)
	}
	o, err := chat.NewWithConfig(cfg)
	require.NoError(t, err)
	return o, st
}

func TestSubmitSuccess(t *testing.T) {
	gw := &fakeGateway{
		queryFn: func(query string, ids []int64) (*models.QueryResponse, error) {
			assert.Equal(t, "What is the refund policy?", query)
			assert.Equal(t, []int64{1, 2}, ids)
			return &models.QueryResponse{
				Answer:     "Refunds within 30 days.",
				Confidence: 0.9,
				Sources:    []models.Source{{ContentPreview: "Refund policy: 30 days..."}},
			}, nil
		},
	}
	o, st := newOrchestrator(t, gw)
	st.SetSelected([]int64{1, 2})

	turn, err := o.Submit(context.Background(), "What is the refund policy?")
	require.NoError(t, err)
	require.NotNil(t, turn)

	turns := st.Conversation()
	require.Len(t, turns, 2)
	assert.Equal(t, models.RoleUser, turns[0].Role)
	assert.Equal(t, models.RoleAI, turns[1].Role)
	assert.Equal(t, 0.9, turns[1].Confidence)
	require.Len(t, turns[1].Citations, 1)
	assert.False(t, turns[1].IsError)
	assert.Greater(t, turns[1].ID, turns[0].ID)

	notifs := st.Notifications()
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotifySuccess, notifs[0].Kind)
}

func TestSubmitEmptyIsNoOp(t *testing.T) {
	o, st := newOrchestrator(t, &fakeGateway{})

	_, err := o.Submit(context.Background(), "   \t ")
	assert.ErrorIs(t, err, chat.ErrEmptyQuery)
	assert.Empty(t, st.Conversation())
}

func TestSubmitWhileSubmittingIsNoOp(t *testing.T) {
	block := make(chan struct{})
	gw := &fakeGateway{
		queryBlock: block,
		queryFn: func(string, []int64) (*models.QueryResponse, error) {
			return &models.QueryResponse{Answer: "ok"}, nil
		},
	}
	o, st := newOrchestrator(t, gw)
	st.SetSelected([]int64{1})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := o.Submit(context.Background(), "first question")
		assert.NoError(t, err)
	}()

	// Wait for the first submit to appear, then try a second.
	require.Eventually(t, func() bool { return len(st.Conversation()) == 1 }, time.Second, 5*time.Millisecond)
	_, err := o.Submit(context.Background(), "second question")
	assert.ErrorIs(t, err, chat.ErrBusy)

	close(block)
	<-done

	turns := st.Conversation()
	require.Len(t, turns, 2)
	assert.Equal(t, "first question", turns[0].Text)
}

func TestSubmitFailureBecomesErrorTurn(t *testing.T) {
	gw := &fakeGateway{
		queryFn: func(string, []int64) (*models.QueryResponse, error) {
			return nil, &gateway.ServerError{Status: 500, Detail: "inference backend down"}
		},
	}
	o, st := newOrchestrator(t, gw)
	st.SetSelected([]int64{1})

	turn, err := o.Submit(context.Background(), "anything")
	require.NoError(t, err)
	require.NotNil(t, turn)
	assert.True(t, turn.IsError)
	assert.Zero(t, turn.Confidence)
	assert.Empty(t, turn.Citations)

	turns := st.Conversation()
	require.Len(t, turns, 2)
	assert.True(t, turns[1].IsError)

	notifs := st.Notifications()
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotifyError, notifs[0].Kind)
	assert.Equal(t, "inference backend down", notifs[0].Message)
}

func TestUnscopedQueryNeedsConfirmation(t *testing.T) {
	gw := &fakeGateway{
		queryFn: func(string, []int64) (*models.QueryResponse, error) {
			return &models.QueryResponse{Answer: "ok"}, nil
		},
	}

	declined := false
	o, st := newOrchestrator(t, gw, func(c *chat.Config) {
		c.ConfirmAll = func() bool { declined = true; return false }
	})

	_, err := o.Submit(context.Background(), "search everything")
	assert.ErrorIs(t, err, chat.ErrDeclined)
	assert.True(t, declined)
	assert.Empty(t, st.Conversation())

	// A scoped query never asks.
	asked := false
	o2, st2 := newOrchestrator(t, gw, func(c *chat.Config) {
		c.ConfirmAll = func() bool { asked = true; return false }
	})
	st2.SetSelected([]int64{1})
	_, err = o2.Submit(context.Background(), "scoped question")
	require.NoError(t, err)
	assert.False(t, asked)
	assert.Len(t, st2.Conversation(), 2)
}

func TestStatusRotation(t *testing.T) {
	gw := &fakeGateway{
		queryFn: func(string, []int64) (*models.QueryResponse, error) {
			time.Sleep(30 * time.Millisecond)
			return &models.QueryResponse{Answer: "ok"}, nil
		},
	}

	var mu sync.Mutex
	var seen []string
	o, st := newOrchestrator(t, gw, func(c *chat.Config) {
		c.StatusInterval = 10 * time.Millisecond
		c.OnStatus = func(s string) {
			mu.Lock()
			seen = append(seen, s)
			mu.Unlock()
		}
	})
	st.SetSelected([]int64{1})

	_, err := o.Submit(context.Background(), "slow question")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, seen)
}

func TestUploadBatchMixedOutcomes(t *testing.T) {
	gw := &fakeGateway{
		uploadFn: func(path string) (*models.UploadResponse, error) {
			if path == "b.pdf" {
				return nil, &gateway.NetworkError{Err: errors.New("connection reset")}
			}
			return &models.UploadResponse{Message: "Document processed successfully", DocumentID: 5}, nil
		},
		listFn: func() ([]models.DocumentRef, error) {
			return []models.DocumentRef{{ID: 5, Filename: "a.pdf"}}, nil
		},
	}
	o, st := newOrchestrator(t, gw)

	var settled []string
	results := o.UploadBatch(context.Background(), []string{"a.pdf", "b.pdf"}, func(r models.UploadResult) {
		settled = append(settled, r.Filename)
	})

	require.Len(t, results, 2)
	assert.Equal(t, models.UploadSuccess, results[0].Status)
	assert.Equal(t, int64(5), results[0].DocumentID)
	assert.Equal(t, models.UploadError, results[1].Status)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, settled)

	// Document list refreshed exactly once, after the loop.
	assert.Equal(t, 1, gw.listCalls)
	assert.Len(t, st.Documents(), 1)

	notifs := st.Notifications()
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotifyWarning, notifs[0].Kind)
	assert.Equal(t, "1 of 2 files uploaded", notifs[0].Message)
}

func TestUploadBatchRefreshFailureEmptiesList(t *testing.T) {
	gw := &fakeGateway{
		uploadFn: func(path string) (*models.UploadResponse, error) {
			return &models.UploadResponse{DocumentID: 1}, nil
		},
		listFn: func() ([]models.DocumentRef, error) {
			return nil, &gateway.NetworkError{Err: errors.New("down")}
		},
	}
	o, st := newOrchestrator(t, gw)
	st.SetDocuments([]models.DocumentRef{{ID: 99, Filename: "stale.pdf"}})

	o.UploadBatch(context.Background(), []string{"a.pdf"}, nil)

	// Never keep a stale list after a failed refresh.
	assert.Empty(t, st.Documents())
}

func TestDeleteDocumentFailureKeepsSelection(t *testing.T) {
	gw := &fakeGateway{deleteErr: &gateway.ServerError{Status: 404, Detail: "Document not found"}}
	o, st := newOrchestrator(t, gw)
	st.SetDocuments([]models.DocumentRef{{ID: 1}})
	st.SetSelected([]int64{1})

	err := o.DeleteDocument(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, []int64{1}, st.Selected())
	assert.Len(t, st.Documents(), 1)
}

func TestDeleteDocumentSuccess(t *testing.T) {
	gw := &fakeGateway{}
	o, st := newOrchestrator(t, gw)
	st.SetDocuments([]models.DocumentRef{{ID: 1}, {ID: 2}})
	st.SetSelected([]int64{1, 2})

	require.NoError(t, o.DeleteDocument(context.Background(), 1))
	assert.Equal(t, []int64{2}, st.Selected())
	assert.Len(t, st.Documents(), 1)
}

func TestRunComparison(t *testing.T) {
	var gotQuery string
	gw := &fakeGateway{
		queryFn: func(query string, ids []int64) (*models.QueryResponse, error) {
			gotQuery = query
			return &models.QueryResponse{Answer: "Similarities:\n- both discuss pricing\n\nThe overlap is 75%."}, nil
		},
	}
	o, st := newOrchestrator(t, gw)
	st.SetDocuments([]models.DocumentRef{{ID: 1, Filename: "a.pdf"}, {ID: 2, Filename: "b.pdf"}})
	require.NoError(t, st.ToggleCompareSelection(1))
	require.NoError(t, st.ToggleCompareSelection(2))

	result, err := o.RunComparison(context.Background())
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "a.pdf, b.pdf")
	assert.Equal(t, []string{"both discuss pricing"}, result.Similarities)
	assert.Equal(t, 75, result.OverlapScorePercent)

	stored := st.Comparison()
	require.NotNil(t, stored)
	assert.Equal(t, result.OverlapScorePercent, stored.OverlapScorePercent)
}

func TestRunComparisonNeedsSelection(t *testing.T) {
	o, _ := newOrchestrator(t, &fakeGateway{})
	_, err := o.RunComparison(context.Background())
	assert.ErrorIs(t, err, chat.ErrCompareSelection)
}

func TestSubmitFeedback(t *testing.T) {
	gw := &fakeGateway{}
	o, st := newOrchestrator(t, gw)
	st.AppendTurn(models.Turn{ID: 42, Role: models.RoleAI, Text: "answer"})

	require.NoError(t, o.SubmitFeedback(context.Background(), 42, models.FeedbackNegative, "wrong year"))

	require.Len(t, gw.feedback, 1)
	assert.Equal(t, int64(42), gw.feedback[0].MessageID)
	assert.Equal(t, models.FeedbackNegative, gw.feedback[0].FeedbackType)

	turns := st.Conversation()
	require.NotNil(t, turns[0].Feedback)
	assert.Equal(t, models.FeedbackNegative, turns[0].Feedback.Kind)

	assert.Error(t, o.SubmitFeedback(context.Background(), 999, models.FeedbackPositive, ""))
}

func TestAnalyzeResume(t *testing.T) {
	o, st := newOrchestrator(t, &fakeGateway{})

	analysis, err := o.AnalyzeResume(context.Background(), "resume.pdf", "Go engineer")
	require.NoError(t, err)
	assert.Equal(t, 77, analysis.OverallScore)
	require.NotNil(t, st.Resume())

	_, err = o.AnalyzeResume(context.Background(), "resume.pdf", "  ")
	assert.Error(t, err)
}

func TestNewWithConfigRequiresDeps(t *testing.T) {
	_, err := chat.NewWithConfig(chat.Config{})
	assert.Error(t, err)
	_, err = chat.NewWithConfig(chat.Config{Gateway: &fakeGateway{}})
	assert.Error(t, err)
}
