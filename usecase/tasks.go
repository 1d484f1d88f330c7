package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"

	"execpanel/model"
	"execpanel/utils"
)

type TasksService struct {
	state     *AppState
	clipboard Clipboard
	notify    Notifier
}

func NewTasksService(state *AppState, clipboard Clipboard, notify Notifier) *TasksService {
	return &TasksService{state: state, clipboard: clipboard, notify: notify}
}

// Create validates and adds a new task at the back of the queue.
func (svc *TasksService) Create(ctx context.Context, task *model.Task) error {
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" {
		return errors.New("task title is required")
	}

	if task.ID == "" {
		task.ID = utils.NewID("t")
	}
	if task.Type == "" {
		task.Type = model.TaskTypeDeep
	}
	if task.Importance == "" {
		task.Importance = model.ImportanceNormal
	}
	if task.Links == nil {
		task.Links = []string{}
	}
	if task.Notes == nil {
		task.Notes = []model.TaskNote{}
	}
	task.Status = model.StatusTodo

	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	if task.EstimateMin < 1 {
		task.EstimateMin = svc.state.doc.Settings.DefaultEstimateMin
	}
	task.Order = svc.state.maxOrderLocked() + 1
	now := model.NowISO()
	task.CreatedAt = now
	task.UpdatedAt = now

	svc.upsertLocked(ctx, *task)
	return nil
}

// Upsert replaces a task with the same id in place (keeping its
// position in the sequence) or appends it, then persists.
func (svc *TasksService) Upsert(ctx context.Context, task model.Task) error {
	task.Title = strings.TrimSpace(task.Title)
	if task.ID == "" || task.Title == "" {
		return errors.New("task id and title are required")
	}

	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()
	svc.upsertLocked(ctx, task)
	return nil
}

func (svc *TasksService) upsertLocked(ctx context.Context, task model.Task) {
	doc := svc.state.doc
	for i := range doc.Tasks {
		if doc.Tasks[i].ID == task.ID {
			doc.Tasks[i] = task
			svc.state.persistLocked(ctx)
			return
		}
	}
	doc.Tasks = append(doc.Tasks, task)
	svc.state.persistLocked(ctx)
}

// Delete removes the task outright, whatever its status.
func (svc *TasksService) Delete(ctx context.Context, taskID string) error {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	doc := svc.state.doc
	kept := doc.Tasks[:0]
	found := false
	for _, t := range doc.Tasks {
		if t.ID == taskID {
			found = true
			continue
		}
		kept = append(kept, t)
	}
	if !found {
		return errors.New("task not found")
	}
	doc.Tasks = kept
	svc.state.persistLocked(ctx)
	return nil
}

func (svc *TasksService) Get(taskID string) (model.Task, bool) {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	if t := svc.state.findTaskLocked(taskID); t != nil {
		return *t, true
	}
	return model.Task{}, false
}

// SortedTodos returns the todo queue: urgent first, then by manual
// order; ties keep insertion order.
func (svc *TasksService) SortedTodos() []model.Task {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()
	return sortTodos(svc.state.doc.Tasks)
}

func sortTodos(tasks []model.Task) []model.Task {
	todos := []model.Task{}
	for _, t := range tasks {
		if t.Status == model.StatusTodo {
			todos = append(todos, t)
		}
	}
	sort.SliceStable(todos, func(i, j int) bool {
		iUrgent := todos[i].Importance == model.ImportanceUrgent
		jUrgent := todos[j].Importance == model.ImportanceUrgent
		if iUrgent != jUrgent {
			return iUrgent
		}
		return todos[i].Order < todos[j].Order
	})
	return todos
}

// Recommend selects the single best next task, or false when the
// queue is empty. This is the only queue-ranking policy in the system.
func (svc *TasksService) Recommend() (model.Task, bool) {
	todos := svc.SortedTodos()
	if len(todos) == 0 {
		return model.Task{}, false
	}
	return todos[0], true
}

// RecentDone returns finished tasks, most recently updated first.
func (svc *TasksService) RecentDone(limit int) []model.Task {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	dones := []model.Task{}
	for _, t := range svc.state.doc.Tasks {
		if t.Status == model.StatusDone {
			dones = append(dones, t)
		}
	}
	sort.SliceStable(dones, func(i, j int) bool {
		return dones[i].UpdatedAt > dones[j].UpdatedAt
	})
	if limit > 0 && len(dones) > limit {
		dones = dones[:limit]
	}
	return dones
}

// NextOrder returns one greater than the current maximum order across
// all tasks; used for new-task placement and for skip.
func (svc *TasksService) NextOrder() int {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()
	return svc.state.maxOrderLocked() + 1
}

// Skip bumps the task to the back of the queue and stamps it.
func (svc *TasksService) Skip(ctx context.Context, taskID string) error {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	task := svc.state.findTaskLocked(taskID)
	if task == nil {
		return errors.New("task not found")
	}
	task.Order = svc.state.maxOrderLocked() + 1
	task.LastSkippedAt = model.NowISO()
	task.UpdatedAt = model.NowISO()
	svc.state.persistLocked(ctx)

	svc.notify.Notify("Skipped: moved to the back of the queue")
	return nil
}

// CopyLinks hands the task's links to the clipboard as one blob.
func (svc *TasksService) CopyLinks(taskID string) (string, error) {
	task, ok := svc.Get(taskID)
	if !ok {
		return "", errors.New("task not found")
	}
	if len(task.Links) == 0 {
		return "", errors.New("task has no links")
	}
	blob := strings.Join(task.Links, "\n")
	if err := svc.clipboard.Copy(blob); err != nil {
		return "", err
	}
	svc.notify.Notify("Links copied")
	return blob, nil
}

// AddNote appends a note to the task and clears the draft.
func (svc *TasksService) AddNote(ctx context.Context, taskID, text string) (model.TaskNote, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.TaskNote{}, errors.New("note text is required")
	}

	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	task := svc.state.findTaskLocked(taskID)
	if task == nil {
		return model.TaskNote{}, errors.New("task not found")
	}

	note := model.TaskNote{
		ID:        utils.NewID("n"),
		Text:      text,
		CreatedAt: model.NowISO(),
	}
	task.Notes = append(task.Notes, note)
	task.NoteDraft = ""
	task.UpdatedAt = model.NowISO()
	svc.state.persistLocked(ctx)
	return note, nil
}

// SaveNoteDraft stores the transient unsent note text on the task.
func (svc *TasksService) SaveNoteDraft(ctx context.Context, taskID, draft string) error {
	svc.state.mu.Lock()
	defer svc.state.mu.Unlock()

	task := svc.state.findTaskLocked(taskID)
	if task == nil {
		return errors.New("task not found")
	}
	if task.NoteDraft == draft {
		return nil
	}
	task.NoteDraft = draft
	task.UpdatedAt = model.NowISO()
	svc.state.persistLocked(ctx)
	return nil
}
