package usecase

import (
	"context"
	"log"
	"sync"

	"execpanel/model"
)

// DocumentStore is the persistence boundary for the panel document.
// Implemented by repository.DocumentRepo; tests swap in a memory fake.
type DocumentStore interface {
	Load(ctx context.Context) *model.Document
	Save(ctx context.Context, doc *model.Document) error
	Clear(ctx context.Context) error
}

// AppState owns the single in-memory panel document. All services
// mutate it under the same mutex and persist the whole document after
// every mutation (write-through; there are no delta writes). The
// ordering discipline is: mutate → persist → release.
type AppState struct {
	mu    sync.Mutex
	doc   *model.Document
	store DocumentStore
}

func NewAppState(ctx context.Context, store DocumentStore) *AppState {
	return &AppState{
		doc:   store.Load(ctx),
		store: store,
	}
}

// persistLocked writes the document back. Write failures are logged
// and swallowed: the in-memory document stays authoritative and the
// next mutation retries the full write.
func (s *AppState) persistLocked(ctx context.Context) {
	if err := s.store.Save(ctx, s.doc); err != nil {
		log.Printf("Error persisting panel document: %v", err)
	}
}

// resetLocked replaces the document with a fresh default one after the
// persisted state has been cleared.
func (s *AppState) resetLocked(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.doc = model.DefaultDocument()
	return nil
}

func (s *AppState) findTaskLocked(taskID string) *model.Task {
	for i := range s.doc.Tasks {
		if s.doc.Tasks[i].ID == taskID {
			return &s.doc.Tasks[i]
		}
	}
	return nil
}

func (s *AppState) maxOrderLocked() int {
	max := 0
	for i := range s.doc.Tasks {
		if s.doc.Tasks[i].Order > max {
			max = s.doc.Tasks[i].Order
		}
	}
	return max
}
