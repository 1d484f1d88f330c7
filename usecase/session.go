package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"execpanel/model"
	"execpanel/utils"
)

// tickInterval is how often the countdown re-reads the clock while a
// session is active. Ticks are idempotent; skipping some is safe.
const tickInterval = 250 * time.Millisecond

const practiceFocusMaxLen = 60

var (
	ErrSessionActive     = errors.New("a session is already active")
	ErrNoActiveSession   = errors.New("no active session")
	ErrNotSettling       = errors.New("no settlement awaiting a fail reason")
	ErrInvalidFailReason = errors.New("invalid fail reason")
)

// StartOptions carries the start-confirmation inputs.
type StartOptions struct {
	EstimateMin      int
	DefinitionOfDone string
	SopKey           string
	PracticeFocus    string
	OpenLinks        bool
	UseSop           bool
}

// SessionStatus is the read view of the state machine.
type SessionStatus struct {
	State        model.SessionState   `json:"state"`
	Session      *model.ActiveSession `json:"session,omitempty"`
	RemainingSec int                  `json:"remainingSec"`
	SopSteps     []string             `json:"sopSteps,omitempty"`
	// Set while settling: the trigger whose fail reason is still owed.
	PendingTrigger model.FailTrigger `json:"pendingTrigger,omitempty"`
}

// SessionService drives the Idle → Active → Settling → Idle machine
// for the single focus session. All transitions run under the shared
// document mutex; the Settling state doubles as the "already settling"
// guard, so of a racing timeout/abandon/complete only the first wins.
type SessionService struct {
	state  *AppState
	links  LinkPresenter
	notify Notifier

	// now is swappable so tests can drive the countdown.
	now func() time.Time

	sessionState  model.SessionState
	session       *model.ActiveSession
	settleTrigger model.FailTrigger
	settleEndedAt time.Time
	stopTick      chan struct{}
}

func NewSessionService(state *AppState, links LinkPresenter, notify Notifier) *SessionService {
	return &SessionService{
		state:        state,
		links:        links,
		notify:       notify,
		now:          time.Now,
		sessionState: model.SessionIdle,
	}
}

// Start begins a focus session against a todo task. It reports
// (false, nil) when the task is missing or not in todo status — that
// is a routing no-op, not an error — and refuses outright while a
// session is active or awaiting settlement.
func (svc *SessionService) Start(ctx context.Context, taskID string, opts StartOptions) (bool, error) {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	if svc.sessionState != model.SessionIdle {
		return false, ErrSessionActive
	}

	task := svc.state.findTaskLocked(taskID)
	if task == nil || task.Status != model.StatusTodo {
		return false, nil
	}

	estimate := opts.EstimateMin
	if estimate < 1 {
		estimate = task.EstimateMin
	}
	if estimate < 1 {
		estimate = svc.state.doc.Settings.DefaultEstimateMin
	}

	focus := capRunes(strings.TrimSpace(opts.PracticeFocus), practiceFocusMaxLen)
	dod := strings.TrimSpace(opts.DefinitionOfDone)
	sopKey := ResolveSopKey(opts.SopKey, task.Title)

	if opts.OpenLinks && len(task.Links) > 0 {
		svc.links.PresentLinks("Links: "+task.Title, task.Links)
	}

	now := svc.now()
	links := make([]string, len(task.Links))
	copy(links, task.Links)
	svc.session = &model.ActiveSession{
		TaskID:           task.ID,
		TaskType:         task.Type,
		Links:            links,
		StartedAt:        now,
		EndsAt:           now.Add(time.Duration(estimate) * time.Minute),
		OpenLinks:        opts.OpenLinks,
		UseSop:           opts.UseSop,
		DefinitionOfDone: dod,
		EstimateMin:      estimate,
		SopKey:           sopKey,
		PracticeFocus:    focus,
	}
	svc.sessionState = model.SessionActive

	// Sync the confirmed inputs back onto the task so the next start
	// is easier.
	task.EstimateMin = estimate
	task.DefinitionOfDone = dod
	task.SopKey = opts.SopKey
	if focus != "" {
		task.LastPracticeFocus = focus
	}
	task.UpdatedAt = model.NowISO()
	svc.state.persistLocked(ctx)

	svc.startTickerLocked()
	return true, nil
}

// Status reports the machine's current view, including the SOP steps
// when the session asked for them.
func (svc *SessionService) Status() SessionStatus {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	status := SessionStatus{State: svc.sessionState}
	if svc.session != nil {
		copied := *svc.session
		status.Session = &copied
		if svc.sessionState == model.SessionActive {
			remaining := svc.session.EndsAt.Sub(svc.now())
			if remaining > 0 {
				status.RemainingSec = int(remaining / time.Second)
			}
		}
		if svc.session.UseSop {
			status.SopSteps = svc.state.doc.Sops[svc.session.SopKey]
		}
	}
	if svc.sessionState == model.SessionSettling {
		status.PendingTrigger = svc.settleTrigger
	}
	return status
}

// Complete settles the session as a success. saveDraftAsNote decides
// what happens to a non-empty note draft: promoted to a note, or kept
// as draft — it is never silently dropped. The record is appended
// even when the task vanished mid-session; only the task and stats
// mutation is skipped then.
func (svc *SessionService) Complete(ctx context.Context, saveDraftAsNote bool) (*model.PracticeSession, error) {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	if svc.sessionState != model.SessionActive {
		return nil, ErrNoActiveSession
	}
	svc.stopTickerLocked()

	rec := svc.buildRecordLocked(svc.now())
	rec.Result = model.ResultSuccess
	appendCapped(svc.state.doc, rec)

	if task := svc.state.findTaskLocked(svc.session.TaskID); task != nil {
		if draft := strings.TrimSpace(task.NoteDraft); draft != "" && saveDraftAsNote {
			task.Notes = append(task.Notes, model.TaskNote{
				ID:        utils.NewID("n"),
				Text:      draft,
				CreatedAt: model.NowISO(),
			})
			task.NoteDraft = ""
		}
		task.Status = model.StatusDone
		task.UpdatedAt = model.NowISO()
		svc.state.doc.Stats.Points += svc.state.doc.Settings.CompletePoints
		svc.state.doc.Stats.Streak++
	}

	svc.state.persistLocked(ctx)
	svc.clearLocked()

	svc.notify.Notify(fmt.Sprintf("Done +%d", svc.state.doc.Settings.CompletePoints))
	return &rec, nil
}

// Abandon gives up on the session. With a fail reason it settles
// immediately; without one it parks in Settling until the mandatory
// reason arrives via ResolveFailReason.
func (svc *SessionService) Abandon(ctx context.Context, reason model.FailReason) (*model.PracticeSession, error) {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	if svc.sessionState != model.SessionActive {
		return nil, ErrNoActiveSession
	}
	// Validate before touching the ticker: a rejected reason must
	// leave the countdown running.
	if reason != "" && !model.ValidFailReason(reason) {
		return nil, ErrInvalidFailReason
	}
	svc.stopTickerLocked()
	endedAt := svc.now()

	if reason == "" {
		svc.sessionState = model.SessionSettling
		svc.settleTrigger = model.TriggerAbandon
		svc.settleEndedAt = endedAt
		return nil, nil
	}
	rec := svc.settleFailLocked(ctx, reason, model.TriggerAbandon, endedAt)
	return rec, nil
}

// ResolveFailReason completes a parked fail settlement (abandon
// without a reason, or timeout). The prompt is non-dismissible: until
// a reason arrives the machine stays in Settling and refuses every
// other transition.
func (svc *SessionService) ResolveFailReason(ctx context.Context, reason model.FailReason) (*model.PracticeSession, error) {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	if svc.sessionState != model.SessionSettling {
		return nil, ErrNotSettling
	}
	if !model.ValidFailReason(reason) {
		return nil, ErrInvalidFailReason
	}
	rec := svc.settleFailLocked(ctx, reason, svc.settleTrigger, svc.settleEndedAt)
	return rec, nil
}

// Reset aborts whatever is in flight without settling. Used only by
// the full data reset; no history record is produced.
func (svc *SessionService) Reset() {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()
	svc.stopTickerLocked()
	svc.clearLocked()
}

// settleFailLocked produces the single fail record, applies scoring
// and returns the machine to Idle. The record is appended before the
// task and stats are touched.
func (svc *SessionService) settleFailLocked(ctx context.Context, reason model.FailReason, trigger model.FailTrigger, endedAt time.Time) *model.PracticeSession {
	rec := svc.buildRecordLocked(endedAt)
	rec.Result = model.ResultFail
	rec.FailReason = reason
	rec.FailTrigger = trigger
	appendCapped(svc.state.doc, rec)

	if task := svc.state.findTaskLocked(svc.session.TaskID); task != nil {
		task.UpdatedAt = model.NowISO()
		svc.state.doc.Stats.Points += svc.state.doc.Settings.FailPoints
		if svc.state.doc.Settings.StreakResetOnFail {
			svc.state.doc.Stats.Streak = 0
		}
	}

	svc.state.persistLocked(ctx)
	svc.clearLocked()

	svc.notify.Notify(fmt.Sprintf("Failed %d: %s", svc.state.doc.Settings.FailPoints, reason))
	return &rec
}

func (svc *SessionService) buildRecordLocked(endedAt time.Time) model.PracticeSession {
	sess := svc.session
	actualSec := int(math.Round(endedAt.Sub(sess.StartedAt).Seconds()))
	if actualSec < 0 {
		actualSec = 0
	}
	return model.PracticeSession{
		ID:            utils.NewID("s"),
		TaskID:        sess.TaskID,
		SopKey:        sess.SopKey,
		TaskType:      sess.TaskType,
		StartedAt:     sess.StartedAt.UTC().Format(time.RFC3339),
		EndedAt:       endedAt.UTC().Format(time.RFC3339),
		PlannedMin:    sess.EstimateMin,
		ActualSec:     actualSec,
		PracticeFocus: sess.PracticeFocus,
	}
}

func (svc *SessionService) clearLocked() {
	svc.session = nil
	svc.sessionState = model.SessionIdle
	svc.settleTrigger = ""
	svc.settleEndedAt = time.Time{}
}

// startTickerLocked spawns the countdown watcher, cancelling any
// previous one first so only a single timer ever runs.
func (svc *SessionService) startTickerLocked() {
	svc.stopTickerLocked()
	stop := make(chan struct{})
	svc.stopTick = stop

	go func() {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if svc.checkTimeout() {
					return
				}
			}
		}
	}()
}

func (svc *SessionService) stopTickerLocked() {
	if svc.stopTick != nil {
		close(svc.stopTick)
		svc.stopTick = nil
	}
}

// checkTimeout is one idempotent tick: when the countdown has run out
// it fires the timeout transition exactly once and tells the ticker
// goroutine to exit. A session that was settled or abandoned between
// ticks is left alone.
func (svc *SessionService) checkTimeout() bool {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	if svc.sessionState != model.SessionActive {
		return true
	}
	endedAt := svc.now()
	if endedAt.Before(svc.session.EndsAt) {
		return false
	}

	svc.stopTick = nil
	svc.sessionState = model.SessionSettling
	svc.settleTrigger = model.TriggerTimeout
	svc.settleEndedAt = endedAt

	svc.notify.Notify("Time is up — pick a fail reason to settle")
	return true
}

func capRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
