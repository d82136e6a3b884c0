package state

import (
	"errors"
	"sync"
	"time"

	"ragdesk/internal/models"
	"ragdesk/internal/types"
	"ragdesk/pkg/store"
)

const (
	// MaxNotifications caps the notification list; oldest entries are evicted.
	MaxNotifications = 50
	// MaxCompareDocs caps the comparison selection.
	MaxCompareDocs = 3
)

// ErrCompareLimit is returned when selecting more documents for comparison
// than the backend prompt supports.
var ErrCompareLimit = errors.New("comparison supports at most 3 documents")

// Container is the single in-memory holder for all client session state.
// Every mutation writes through to the key-value store for that slice before
// returning, so reopening a container always sees the last value. Slices are
// independent: mutating one never rewrites another's stored value.
type Container struct {
	mu sync.Mutex
	kv types.KeyValue

	conversation     []models.Turn
	documents        []models.DocumentRef
	selected         []int64
	compareSelection []int64
	notifications    []models.Notification
	comparison       *models.ComparisonResult
	resume           *models.ResumeAnalysis
	searchFilters    map[string]string
	themeMode        string
}

// New builds a container seeded from whatever the store holds for each slice,
// defaulting to empty collections.
func New(kv types.KeyValue) *Container {
	c := &Container{kv: kv}
	kv.Load(store.KeyConversations, &c.conversation)
	kv.Load(store.KeyDocuments, &c.documents)
	kv.Load(store.KeySelectedDocuments, &c.selected)
	kv.Load(store.KeyCompareSelection, &c.compareSelection)
	kv.Load(store.KeyNotifications, &c.notifications)
	kv.Load(store.KeyComparisonResult, &c.comparison)
	kv.Load(store.KeyResumeData, &c.resume)
	kv.Load(store.KeySearchFilters, &c.searchFilters)
	kv.Load(store.KeyThemeMode, &c.themeMode)
	return c
}

// Conversation returns a copy of the conversation in chronological order.
func (c *Container) Conversation() []models.Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Turn(nil), c.conversation...)
}

// AppendTurn appends one turn to the conversation.
func (c *Container) AppendTurn(t models.Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conversation = append(c.conversation, t)
	c.kv.Save(store.KeyConversations, c.conversation)
}

// SetTurnFeedback records feedback on the matching turn and reports whether
// the turn exists. Feedback is the only field of a turn that mutates.
func (c *Container) SetTurnFeedback(id int64, kind string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.conversation {
		if c.conversation[i].ID == id {
			c.conversation[i].Feedback = &models.Feedback{Kind: kind}
			c.kv.Save(store.KeyConversations, c.conversation)
			return true
		}
	}
	return false
}

// ClearConversation drops all turns.
func (c *Container) ClearConversation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conversation = nil
	c.kv.Save(store.KeyConversations, c.conversation)
}

// Documents returns a copy of the mirrored document list.
func (c *Container) Documents() []models.DocumentRef {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.DocumentRef(nil), c.documents...)
}

// SetDocuments replaces the mirrored document list after a list refresh.
// A failed refresh must pass nil here, never keep the old list.
func (c *Container) SetDocuments(docs []models.DocumentRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.documents = docs
	c.kv.Save(store.KeyDocuments, c.documents)
}

// RemoveDocument drops a document and any selections referencing it. Called
// only after the backend confirms the delete.
func (c *Container) RemoveDocument(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.documents = removeDoc(c.documents, id)
	c.kv.Save(store.KeyDocuments, c.documents)
	if sel := removeID(c.selected, id); len(sel) != len(c.selected) {
		c.selected = sel
		c.kv.Save(store.KeySelectedDocuments, c.selected)
	}
	if sel := removeID(c.compareSelection, id); len(sel) != len(c.compareSelection) {
		c.compareSelection = sel
		c.kv.Save(store.KeyCompareSelection, c.compareSelection)
	}
}

// Selected returns a copy of the query selection set.
func (c *Container) Selected() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.selected...)
}

// SetSelected replaces the query selection set.
func (c *Container) SetSelected(ids []int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = ids
	c.kv.Save(store.KeySelectedDocuments, c.selected)
}

// ToggleSelected adds or removes one document from the query selection.
func (c *Container) ToggleSelected(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sel := removeID(c.selected, id); len(sel) != len(c.selected) {
		c.selected = sel
	} else {
		c.selected = append(c.selected, id)
	}
	c.kv.Save(store.KeySelectedDocuments, c.selected)
}

// CompareSelection returns a copy of the comparison selection set.
func (c *Container) CompareSelection() []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.compareSelection...)
}

// ToggleCompareSelection adds or removes one document from the comparison
// selection, enforcing the 3-document cap on add.
func (c *Container) ToggleCompareSelection(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sel := removeID(c.compareSelection, id); len(sel) != len(c.compareSelection) {
		c.compareSelection = sel
	} else {
		if len(c.compareSelection) >= MaxCompareDocs {
			return ErrCompareLimit
		}
		c.compareSelection = append(c.compareSelection, id)
	}
	c.kv.Save(store.KeyCompareSelection, c.compareSelection)
	return nil
}

// ClearCompareSelection empties the comparison selection.
func (c *Container) ClearCompareSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compareSelection = nil
	c.kv.Save(store.KeyCompareSelection, c.compareSelection)
}

// Notifications returns a copy of the notification list, newest first.
func (c *Container) Notifications() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Notification(nil), c.notifications...)
}

// AddNotification stamps and prepends a notification, evicting beyond the cap.
func (c *Container) AddNotification(kind, title, message string) models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := models.Notification{
		ID:        models.NextID(),
		Kind:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
	c.notifications = append([]models.Notification{n}, c.notifications...)
	if len(c.notifications) > MaxNotifications {
		c.notifications = c.notifications[:MaxNotifications]
	}
	c.kv.Save(store.KeyNotifications, c.notifications)
	return n
}

// MarkNotificationRead flips the matching entry to read. Idempotent.
func (c *Container) MarkNotificationRead(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.notifications {
		if c.notifications[i].ID == id {
			c.notifications[i].Read = true
			c.kv.Save(store.KeyNotifications, c.notifications)
			return
		}
	}
}

// ClearNotifications empties the notification list.
func (c *Container) ClearNotifications() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = nil
	c.kv.Save(store.KeyNotifications, c.notifications)
}

// Comparison returns the last comparison result, or nil.
func (c *Container) Comparison() *models.ComparisonResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.comparison
}

// SetComparison replaces the comparison result wholesale.
func (c *Container) SetComparison(r *models.ComparisonResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.comparison = r
	c.kv.Save(store.KeyComparisonResult, c.comparison)
}

// Resume returns the last resume analysis, or nil.
func (c *Container) Resume() *models.ResumeAnalysis {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resume
}

// SetResume replaces the resume analysis.
func (c *Container) SetResume(r *models.ResumeAnalysis) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resume = r
	c.kv.Save(store.KeyResumeData, c.resume)
}

// SearchFilters returns the saved search filters.
func (c *Container) SearchFilters() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.searchFilters))
	for k, v := range c.searchFilters {
		out[k] = v
	}
	return out
}

// SetSearchFilters replaces the saved search filters.
func (c *Container) SetSearchFilters(filters map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchFilters = filters
	c.kv.Save(store.KeySearchFilters, c.searchFilters)
}

// ThemeMode returns the saved theme name.
func (c *Container) ThemeMode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.themeMode
}

// SetThemeMode saves the theme name.
func (c *Container) SetThemeMode(mode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.themeMode = mode
	c.kv.Save(store.KeyThemeMode, c.themeMode)
}

func removeID(ids []int64, id int64) []int64 {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func removeDoc(docs []models.DocumentRef, id int64) []models.DocumentRef {
	out := docs[:0:0]
	for _, d := range docs {
		if d.ID != id {
			out = append(out, d)
		}
	}
	return out
}
