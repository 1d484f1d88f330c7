package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"execpanel/model"
)

// fakeClock lets tests drive the session countdown.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newSessionFixture(doc *model.Document) (*SessionService, *TasksService, *memoryStore, *fakeClock, *recordingLinks, *recordingNotifier) {
	state, store := newTestState(doc)
	links := &recordingLinks{}
	notifier := &recordingNotifier{}
	svc := NewSessionService(state, links, notifier)
	clock := newFakeClock()
	svc.now = clock.Now
	tasks := NewTasksService(state, &recordingClipboard{}, notifier)
	return svc, tasks, store, clock, links, notifier
}

func docWithTask(task model.Task) *model.Document {
	doc := model.DefaultDocument()
	doc.Tasks = []model.Task{task}
	return doc
}

func TestStartSession(t *testing.T) {
	task := todoTask("t_1", "Write report", 1)
	task.Links = []string{"https://example.com"}
	svc, tasks, _, clock, links, _ := newSessionFixture(docWithTask(task))
	defer svc.Reset()

	started, err := svc.Start(context.Background(), "t_1", StartOptions{
		EstimateMin:      30,
		DefinitionOfDone: " outline reviewed ",
		PracticeFocus:    "stay off email",
		OpenLinks:        true,
	})
	if err != nil || !started {
		t.Fatalf("Start failed: started=%v err=%v", started, err)
	}

	status := svc.Status()
	if status.State != model.SessionActive {
		t.Fatalf("Expected active state, got %s", status.State)
	}
	if status.Session.TaskID != "t_1" || status.Session.EstimateMin != 30 {
		t.Errorf("Unexpected session: %+v", status.Session)
	}
	if status.RemainingSec != 30*60 {
		t.Errorf("Expected 1800 remaining seconds, got %d", status.RemainingSec)
	}
	if links.calls() != 1 {
		t.Errorf("Expected links presented once, got %d", links.calls())
	}

	// Confirmed inputs are written back onto the task.
	got, _ := tasks.Get("t_1")
	if got.EstimateMin != 30 || got.DefinitionOfDone != "outline reviewed" {
		t.Errorf("Expected inputs synced to task, got %+v", got)
	}
	if got.LastPracticeFocus != "stay off email" {
		t.Errorf("Expected practice focus remembered, got %q", got.LastPracticeFocus)
	}

	clock.Advance(10 * time.Minute)
	if remaining := svc.Status().RemainingSec; remaining != 20*60 {
		t.Errorf("Expected 1200 remaining after 10 minutes, got %d", remaining)
	}
}

func TestStartRefusesWhileActive(t *testing.T) {
	doc := model.DefaultDocument()
	doc.Tasks = []model.Task{todoTask("t_1", "a", 1), todoTask("t_2", "b", 2)}
	svc, _, _, _, _, _ := newSessionFixture(doc)
	defer svc.Reset()

	if _, err := svc.Start(context.Background(), "t_1", StartOptions{}); err != nil {
		t.Fatalf("First start failed: %v", err)
	}
	if _, err := svc.Start(context.Background(), "t_2", StartOptions{}); !errors.Is(err, ErrSessionActive) {
		t.Errorf("Expected ErrSessionActive, got %v", err)
	}
}

func TestStartIsNoopForUnstartableTasks(t *testing.T) {
	done := todoTask("t_done", "finished", 1)
	done.Status = model.StatusDone
	svc, _, store, _, _, _ := newSessionFixture(docWithTask(done))

	for _, id := range []string{"t_missing", "t_done"} {
		started, err := svc.Start(context.Background(), id, StartOptions{})
		if err != nil {
			t.Fatalf("Start(%s) errored: %v", id, err)
		}
		if started {
			t.Errorf("Start(%s) should have been a no-op", id)
		}
	}
	if store.saveCount() != 0 {
		t.Errorf("Expected no persistence from no-op starts, saves=%d", store.saveCount())
	}
	if svc.Status().State != model.SessionIdle {
		t.Errorf("Expected machine to stay idle")
	}
}

func TestStartEstimateFallback(t *testing.T) {
	task := todoTask("t_1", "a", 1)
	task.EstimateMin = 0
	doc := docWithTask(task)
	doc.Settings.DefaultEstimateMin = 45
	svc, _, _, _, _, _ := newSessionFixture(doc)
	defer svc.Reset()

	if _, err := svc.Start(context.Background(), "t_1", StartOptions{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if got := svc.Status().Session.EstimateMin; got != 45 {
		t.Errorf("Expected settings fallback estimate 45, got %d", got)
	}
}

func TestStartCapsPracticeFocus(t *testing.T) {
	svc, _, _, _, _, _ := newSessionFixture(docWithTask(todoTask("t_1", "a", 1)))
	defer svc.Reset()

	long := strings.Repeat("デ", 80)
	if _, err := svc.Start(context.Background(), "t_1", StartOptions{PracticeFocus: long}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	focus := svc.Status().Session.PracticeFocus
	if got := len([]rune(focus)); got != 60 {
		t.Errorf("Expected focus capped at 60 runes, got %d", got)
	}
}

func TestCompleteSession(t *testing.T) {
	task := todoTask("t_1", "Write report", 1)
	task.NoteDraft = "unsent thought"
	doc := docWithTask(task)
	svc, tasks, _, clock, _, _ := newSessionFixture(doc)

	if _, err := svc.Start(context.Background(), "t_1", StartOptions{EstimateMin: 25}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	clock.Advance(17 * time.Minute)

	rec, err := svc.Complete(context.Background(), true)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if rec.Result != model.ResultSuccess {
		t.Errorf("Expected success record, got %s", rec.Result)
	}
	if rec.ActualSec != 17*60 {
		t.Errorf("Expected 1020 actual seconds, got %d", rec.ActualSec)
	}
	if rec.PlannedMin != 25 {
		t.Errorf("Expected planned 25, got %d", rec.PlannedMin)
	}
	if !strings.HasPrefix(rec.ID, "s_") {
		t.Errorf("Expected s_ prefixed record id, got %q", rec.ID)
	}

	got, _ := tasks.Get("t_1")
	if got.Status != model.StatusDone {
		t.Errorf("Expected task marked done, got %s", got.Status)
	}
	if len(got.Notes) != 1 || got.Notes[0].Text != "unsent thought" {
		t.Errorf("Expected draft promoted to note, got %+v", got.Notes)
	}
	if got.NoteDraft != "" {
		t.Errorf("Expected draft cleared, got %q", got.NoteDraft)
	}

	stats := NewSettingsService(svc.state, &recordingNotifier{}).Stats()
	if stats.Points != 5 || stats.Streak != 1 {
		t.Errorf("Expected points=5 streak=1, got %+v", stats)
	}
	if svc.Status().State != model.SessionIdle {
		t.Error("Expected machine back to idle after complete")
	}
}

func TestCompleteKeepsDraftWhenAsked(t *testing.T) {
	task := todoTask("t_1", "a", 1)
	task.NoteDraft = "keep me"
	svc, tasks, _, _, _, _ := newSessionFixture(docWithTask(task))

	if _, err := svc.Start(context.Background(), "t_1", StartOptions{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := svc.Complete(context.Background(), false); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	got, _ := tasks.Get("t_1")
	if got.NoteDraft != "keep me" {
		t.Errorf("Expected draft kept, got %q", got.NoteDraft)
	}
	if len(got.Notes) != 0 {
		t.Errorf("Expected no note, got %+v", got.Notes)
	}
}

func TestCompleteWithoutSession(t *testing.T) {
	svc, _, _, _, _, _ := newSessionFixture(nil)
	if _, err := svc.Complete(context.Background(), false); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("Expected ErrNoActiveSession, got %v", err)
	}
}

func TestAbandonWithReasonSettlesImmediately(t *testing.T) {
	svc, tasks, _, clock, _, _ := newSessionFixture(docWithTask(todoTask("t_1", "a", 1)))

	if _, err := svc.Start(context.Background(), "t_1", StartOptions{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	clock.Advance(3 * time.Minute)

	rec, err := svc.Abandon(context.Background(), model.FailInterrupted)
	if err != nil {
		t.Fatalf("Abandon failed: %v", err)
	}
	if rec.Result != model.ResultFail || rec.FailReason != model.FailInterrupted || rec.FailTrigger != model.TriggerAbandon {
		t.Errorf("Unexpected record: %+v", rec)
	}
	if rec.ActualSec != 180 {
		t.Errorf("Expected 180 actual seconds, got %d", rec.ActualSec)
	}

	// Task stays todo; scoring applies.
	got, _ := tasks.Get("t_1")
	if got.Status != model.StatusTodo {
		t.Errorf("Expected task still todo, got %s", got.Status)
	}
	stats := NewSettingsService(svc.state, &recordingNotifier{}).Stats()
	if stats.Points != -3 {
		t.Errorf("Expected points=-3, got %d", stats.Points)
	}
	if svc.Status().State != model.SessionIdle {
		t.Error("Expected idle after settled abandon")
	}
}

func TestAbandonWithoutReasonParksInSettling(t *testing.T) {
	svc, _, _, _, _, _ := newSessionFixture(docWithTask(todoTask("t_1", "a", 1)))

	if _, err := svc.Start(context.Background(), "t_1", StartOptions{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	rec, err := svc.Abandon(context.Background(), "")
	if err != nil || rec != nil {
		t.Fatalf("Expected parked settlement, rec=%v err=%v", rec, err)
	}

	status := svc.Status()
	if status.State != model.SessionSettling || status.PendingTrigger != model.TriggerAbandon {
		t.Fatalf("Expected settling/abandon, got %s/%s", status.State, status.PendingTrigger)
	}

	// Everything else is refused until the reason arrives.
	if _, err := svc.Start(context.Background(), "t_1", StartOptions{}); !errors.Is(err, ErrSessionActive) {
		t.Errorf("Expected start refused while settling, got %v", err)
	}
	if _, err := svc.Complete(context.Background(), false); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("Expected complete refused while settling, got %v", err)
	}
	if _, err := svc.Abandon(context.Background(), model.FailBadState); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("Expected second abandon refused, got %v", err)
	}

	// An invalid reason keeps the machine parked.
	if _, err := svc.ResolveFailReason(context.Background(), "tired"); !errors.Is(err, ErrInvalidFailReason) {
		t.Errorf("Expected ErrInvalidFailReason, got %v", err)
	}
	if svc.Status().State != model.SessionSettling {
		t.Error("Expected machine still settling after invalid reason")
	}

	rec, err = svc.ResolveFailReason(context.Background(), model.FailGoalUnclear)
	if err != nil {
		t.Fatalf("ResolveFailReason failed: %v", err)
	}
	if rec.FailReason != model.FailGoalUnclear || rec.FailTrigger != model.TriggerAbandon {
		t.Errorf("Unexpected record: %+v", rec)
	}
	if svc.Status().State != model.SessionIdle {
		t.Error("Expected idle after resolution")
	}
}

func TestAbandonRejectsUnknownReason(t *testing.T) {
	svc, _, _, clock, _, _ := newSessionFixture(docWithTask(todoTask("t_1", "a", 1)))
	defer svc.Reset()

	if _, err := svc.Start(context.Background(), "t_1", StartOptions{EstimateMin: 1}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := svc.Abandon(context.Background(), "tired"); !errors.Is(err, ErrInvalidFailReason) {
		t.Errorf("Expected ErrInvalidFailReason, got %v", err)
	}
	if svc.Status().State != model.SessionActive {
		t.Error("Expected session still active after rejected reason")
	}

	// The countdown survives the rejection: the timeout still fires.
	clock.Advance(2 * time.Minute)
	if !svc.checkTimeout() {
		t.Fatal("Expected the timeout to fire after the rejected abandon")
	}
	status := svc.Status()
	if status.State != model.SessionSettling || status.PendingTrigger != model.TriggerTimeout {
		t.Errorf("Expected settling/timeout, got %s/%s", status.State, status.PendingTrigger)
	}
}

func TestTimeoutSettlement(t *testing.T) {
	svc, _, _, clock, _, notifier := newSessionFixture(docWithTask(todoTask("t_1", "a", 1)))

	if _, err := svc.Start(context.Background(), "t_1", StartOptions{EstimateMin: 10}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Before the deadline a tick does nothing.
	clock.Advance(9 * time.Minute)
	if svc.checkTimeout() {
		t.Fatal("Expected tick before deadline to keep running")
	}

	clock.Advance(2 * time.Minute)
	if !svc.checkTimeout() {
		t.Fatal("Expected tick past deadline to fire the timeout")
	}
	// A straggler tick after the transition is a no-op.
	if !svc.checkTimeout() {
		t.Fatal("Expected post-timeout tick to exit immediately")
	}

	status := svc.Status()
	if status.State != model.SessionSettling || status.PendingTrigger != model.TriggerTimeout {
		t.Fatalf("Expected settling/timeout, got %s/%s", status.State, status.PendingTrigger)
	}
	if len(notifier.messages) == 0 {
		t.Error("Expected a timeout notification")
	}

	rec, err := svc.ResolveFailReason(context.Background(), model.FailBadState)
	if err != nil {
		t.Fatalf("ResolveFailReason failed: %v", err)
	}
	if rec.FailTrigger != model.TriggerTimeout || rec.FailReason != model.FailBadState {
		t.Errorf("Unexpected record: %+v", rec)
	}
	// Ended at the tick that noticed the timeout, 11 minutes in.
	if rec.ActualSec != 11*60 {
		t.Errorf("Expected 660 actual seconds, got %d", rec.ActualSec)
	}
}

func TestTimeoutProducesSingleRecord(t *testing.T) {
	svc, _, _, clock, _, _ := newSessionFixture(docWithTask(todoTask("t_1", "a", 1)))

	if _, err := svc.Start(context.Background(), "t_1", StartOptions{EstimateMin: 1}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	clock.Advance(2 * time.Minute)
	svc.checkTimeout()

	if _, err := svc.ResolveFailReason(context.Background(), model.FailInterrupted); err != nil {
		t.Fatalf("ResolveFailReason failed: %v", err)
	}
	if _, err := svc.ResolveFailReason(context.Background(), model.FailInterrupted); !errors.Is(err, ErrNotSettling) {
		t.Errorf("Expected second resolve refused, got %v", err)
	}

	history := NewHistoryService(svc.state).List()
	if len(history) != 1 {
		t.Errorf("Expected exactly one record, got %d", len(history))
	}
}

func TestStreakResetOnFail(t *testing.T) {
	doc := model.DefaultDocument()
	doc.Tasks = []model.Task{todoTask("t_1", "a", 1), todoTask("t_2", "b", 2)}
	doc.Stats = model.Stats{Points: 10, Streak: 4}
	svc, _, _, _, _, _ := newSessionFixture(doc)

	if _, err := svc.Start(context.Background(), "t_1", StartOptions{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := svc.Abandon(context.Background(), model.FailSopBad); err != nil {
		t.Fatalf("Abandon failed: %v", err)
	}

	stats := NewSettingsService(svc.state, &recordingNotifier{}).Stats()
	if stats.Points != 7 || stats.Streak != 0 {
		t.Errorf("Expected points=7 streak=0, got %+v", stats)
	}
}

func TestStreakKeptWhenResetDisabled(t *testing.T) {
	doc := docWithTask(todoTask("t_1", "a", 1))
	doc.Stats.Streak = 4
	doc.Settings.StreakResetOnFail = false
	svc, _, _, _, _, _ := newSessionFixture(doc)

	if _, err := svc.Start(context.Background(), "t_1", StartOptions{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := svc.Abandon(context.Background(), model.FailSopBad); err != nil {
		t.Fatalf("Abandon failed: %v", err)
	}

	stats := NewSettingsService(svc.state, &recordingNotifier{}).Stats()
	if stats.Streak != 4 {
		t.Errorf("Expected streak kept at 4, got %d", stats.Streak)
	}
}

func TestTaskDeletedMidSession(t *testing.T) {
	svc, tasks, _, clock, _, _ := newSessionFixture(docWithTask(todoTask("t_1", "a", 1)))

	if _, err := svc.Start(context.Background(), "t_1", StartOptions{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := tasks.Delete(context.Background(), "t_1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	clock.Advance(5 * time.Minute)

	// The success record is still written; only task/stat mutation is
	// skipped for the vanished task.
	rec, err := svc.Complete(context.Background(), false)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if rec == nil || rec.Result != model.ResultSuccess {
		t.Fatalf("Expected a success record for the vanished task, got %+v", rec)
	}
	if rec.TaskID != "t_1" || rec.ActualSec != 5*60 {
		t.Errorf("Unexpected record: %+v", rec)
	}
	if svc.Status().State != model.SessionIdle {
		t.Error("Expected idle after the vanished-task complete")
	}

	history := NewHistoryService(svc.state).List()
	if len(history) != 1 {
		t.Errorf("Expected exactly one record, got %d", len(history))
	}
	stats := NewSettingsService(svc.state, &recordingNotifier{}).Stats()
	if stats.Points != 0 || stats.Streak != 0 {
		t.Errorf("Expected untouched stats, got %+v", stats)
	}
}

func TestFailSettleWithDeletedTaskSkipsScoring(t *testing.T) {
	svc, tasks, _, _, _, _ := newSessionFixture(docWithTask(todoTask("t_1", "a", 1)))

	if _, err := svc.Start(context.Background(), "t_1", StartOptions{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := tasks.Delete(context.Background(), "t_1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	rec, err := svc.Abandon(context.Background(), model.FailInterrupted)
	if err != nil {
		t.Fatalf("Abandon failed: %v", err)
	}
	if rec == nil || rec.Result != model.ResultFail {
		t.Fatalf("Expected a fail record, got %+v", rec)
	}

	stats := NewSettingsService(svc.state, &recordingNotifier{}).Stats()
	if stats.Points != 0 {
		t.Errorf("Expected scoring skipped for a deleted task, points=%d", stats.Points)
	}
	history := NewHistoryService(svc.state).List()
	if len(history) != 1 {
		t.Errorf("Expected the record still written, got %d", len(history))
	}
}

func TestResetAbortsWithoutRecord(t *testing.T) {
	svc, _, _, _, _, _ := newSessionFixture(docWithTask(todoTask("t_1", "a", 1)))

	if _, err := svc.Start(context.Background(), "t_1", StartOptions{}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	svc.Reset()

	if svc.Status().State != model.SessionIdle {
		t.Error("Expected idle after reset")
	}
	if history := NewHistoryService(svc.state).List(); len(history) != 0 {
		t.Errorf("Expected no record from reset, got %d", len(history))
	}
}
