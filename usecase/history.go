package usecase

import (
	"context"

	"execpanel/model"
)

type HistoryService struct {
	state *AppState
}

func NewHistoryService(state *AppState) *HistoryService {
	return &HistoryService{state: state}
}

// appendCapped pushes the record and drops the oldest entries so at
// most MaxPracticeSessions remain, newest last.
func appendCapped(doc *model.Document, rec model.PracticeSession) {
	doc.Sessions = append(doc.Sessions, rec)
	if over := len(doc.Sessions) - model.MaxPracticeSessions; over > 0 {
		doc.Sessions = doc.Sessions[over:]
	}
}

// Append adds a settled record to the history and persists.
func (svc *HistoryService) Append(ctx context.Context, rec model.PracticeSession) {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	appendCapped(svc.state.doc, rec)
	svc.state.persistLocked(ctx)
}

// List returns the history, newest first.
func (svc *HistoryService) List() []model.PracticeSession {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	sessions := svc.state.doc.Sessions
	out := make([]model.PracticeSession, 0, len(sessions))
	for i := len(sessions) - 1; i >= 0; i-- {
		out = append(out, sessions[i])
	}
	return out
}

// AttachSelfCompare patches a success record with the user's
// self-comparison, once. Fail records, unknown ids and second writes
// are no-ops (reported via the bool).
func (svc *HistoryService) AttachSelfCompare(ctx context.Context, recordID string, compare model.SelfCompare) bool {
	if recordID == "" || !model.ValidSelfCompare(compare) {
		return false
	}

	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	doc := svc.state.doc
	for i := range doc.Sessions {
		if doc.Sessions[i].ID != recordID {
			continue
		}
		if doc.Sessions[i].Result != model.ResultSuccess {
			return false
		}
		if doc.Sessions[i].SelfCompare != "" {
			return false
		}
		doc.Sessions[i].SelfCompare = compare
		svc.state.persistLocked(ctx)
		return true
	}
	return false
}
