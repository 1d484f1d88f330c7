package usecase

import (
	"context"
	"sync"

	"execpanel/model"
)

// memoryStore is an in-memory DocumentStore for tests.
type memoryStore struct {
	mu       sync.Mutex
	doc      *model.Document
	saves    int
	clears   int
	lastSave *model.Document
}

func (m *memoryStore) Load(ctx context.Context) *model.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc != nil {
		return m.doc
	}
	return model.DefaultDocument()
}

func (m *memoryStore) Save(ctx context.Context, doc *model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.lastSave = doc
	return nil
}

func (m *memoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	return nil
}

func (m *memoryStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// recordingNotifier captures every toast message.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

// recordingLinks captures PresentLinks calls.
type recordingLinks struct {
	mu     sync.Mutex
	titles []string
	links  [][]string
}

func (l *recordingLinks) PresentLinks(title string, links []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.titles = append(l.titles, title)
	l.links = append(l.links, links)
}

func (l *recordingLinks) calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.titles)
}

// recordingClipboard captures Copy calls.
type recordingClipboard struct {
	copied []string
	err    error
}

func (c *recordingClipboard) Copy(text string) error {
	if c.err != nil {
		return c.err
	}
	c.copied = append(c.copied, text)
	return nil
}

func newTestState(doc *model.Document) (*AppState, *memoryStore) {
	store := &memoryStore{doc: doc}
	return NewAppState(context.Background(), store), store
}

func todoTask(id, title string, order int) model.Task {
	return model.Task{
		ID:          id,
		Title:       title,
		Type:        model.TaskTypeDeep,
		EstimateMin: 25,
		Importance:  model.ImportanceNormal,
		Links:       []string{},
		Notes:       []model.TaskNote{},
		Status:      model.StatusTodo,
		Order:       order,
		CreatedAt:   model.NowISO(),
		UpdatedAt:   model.NowISO(),
	}
}
