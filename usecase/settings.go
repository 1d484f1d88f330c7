package usecase

import (
	"context"
	"errors"

	"execpanel/model"
)

type SettingsService struct {
	state  *AppState
	notify Notifier
}

func NewSettingsService(state *AppState, notify Notifier) *SettingsService {
	return &SettingsService{state: state, notify: notify}
}

func (svc *SettingsService) Get() model.Settings {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()
	return svc.state.doc.Settings
}

func (svc *SettingsService) Stats() model.Stats {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()
	return svc.state.doc.Stats
}

func (svc *SettingsService) Update(ctx context.Context, settings model.Settings) error {
	if settings.DefaultEstimateMin < 1 {
		return errors.New("default estimate must be at least 1 minute")
	}

	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	svc.state.doc.Settings = settings
	svc.state.persistLocked(ctx)
	svc.notify.Notify("Settings saved")
	return nil
}

// ClearAll wipes the persisted document and starts over from the
// defaults. The caller is responsible for resetting the session
// machine first.
func (svc *SettingsService) ClearAll(ctx context.Context) error {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	if err := svc.state.resetLocked(ctx); err != nil {
		return err
	}
	svc.state.persistLocked(ctx)
	svc.notify.Notify("All data cleared")
	return nil
}
