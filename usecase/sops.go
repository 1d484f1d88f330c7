package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
)

type SopService struct {
	state     *AppState
	clipboard Clipboard
	notify    Notifier
}

func NewSopService(state *AppState, clipboard Clipboard, notify Notifier) *SopService {
	return &SopService{state: state, clipboard: clipboard, notify: notify}
}

// ResolveSopKey is the single fallback policy every consumer uses:
// prefer the explicit sopKey, fall back to the task title.
func ResolveSopKey(sopKey, title string) string {
	if key := strings.TrimSpace(sopKey); key != "" {
		return key
	}
	return strings.TrimSpace(title)
}

// Keys returns all SOP keys, sorted.
func (svc *SopService) Keys() []string {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	keys := make([]string, 0, len(svc.state.doc.Sops))
	for k := range svc.state.doc.Sops {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the steps for a key; an absent key yields an empty list.
func (svc *SopService) Get(key string) []string {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	steps := svc.state.doc.Sops[strings.TrimSpace(key)]
	out := make([]string, len(steps))
	copy(out, steps)
	return out
}

// Put overwrites the steps for a key. Steps are trimmed and empty
// lines dropped; an empty step list is allowed (it clears the SOP).
func (svc *SopService) Put(ctx context.Context, key string, steps []string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("sop key is required")
	}

	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	svc.state.doc.Sops[key] = cleanSteps(steps)
	svc.state.persistLocked(ctx)
	return nil
}

// Rename deletes the old key and writes the new one. There is no
// merge: whatever was stored under the old key is gone unless the
// caller carried it over in steps.
func (svc *SopService) Rename(ctx context.Context, oldKey, newKey string, steps []string) error {
	oldKey = strings.TrimSpace(oldKey)
	newKey = strings.TrimSpace(newKey)
	if newKey == "" {
		return errors.New("sop key is required")
	}

	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	if oldKey != "" && oldKey != newKey {
		delete(svc.state.doc.Sops, oldKey)
	}
	svc.state.doc.Sops[newKey] = cleanSteps(steps)
	svc.state.persistLocked(ctx)
	return nil
}

func (svc *SopService) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)

	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	if _, ok := svc.state.doc.Sops[key]; !ok {
		return errors.New("sop not found")
	}
	delete(svc.state.doc.Sops, key)
	svc.state.persistLocked(ctx)
	return nil
}

// CopySteps hands the steps to the clipboard collaborator as one blob.
func (svc *SopService) CopySteps(key string) (string, error) {
	steps := svc.Get(key)
	if len(steps) == 0 {
		return "", errors.New("sop not found or empty")
	}
	blob := strings.Join(steps, "\n")
	if err := svc.clipboard.Copy(blob); err != nil {
		return "", err
	}
	svc.notify.Notify("SOP steps copied")
	return blob, nil
}

func cleanSteps(steps []string) []string {
	out := []string{}
	for _, s := range steps {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
