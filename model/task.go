package model

type TaskType string
type Importance string
type TaskStatus string

const (
	TaskTypeDeep   TaskType = "deep"
	TaskTypeRepeat TaskType = "repeat"
	TaskTypeLight  TaskType = "light"

	ImportanceNormal Importance = "normal"
	ImportanceUrgent Importance = "urgent"

	StatusTodo TaskStatus = "todo"
	StatusDone TaskStatus = "done"
)

type TaskNote struct {
	ID        string `bson:"id" json:"id"`
	Text      string `bson:"text" json:"text"`
	CreatedAt string `bson:"createdAt" json:"createdAt"`
}

type Task struct {
	ID               string     `bson:"id" json:"id"`
	Title            string     `bson:"title" json:"title" binding:"required"`
	Type             TaskType   `bson:"type" json:"type"`
	EstimateMin      int        `bson:"estimateMin" json:"estimateMin"`
	Importance       Importance `bson:"importance" json:"importance"`
	Links            []string   `bson:"links" json:"links"`
	DefinitionOfDone string     `bson:"definitionOfDone" json:"definitionOfDone"`
	LastPracticeFocus string    `bson:"lastPracticeFocus" json:"lastPracticeFocus"`
	SopKey           string     `bson:"sopKey" json:"sopKey"`
	Notes            []TaskNote `bson:"notes" json:"notes"`
	NoteDraft        string     `bson:"noteDraft" json:"noteDraft"`
	Status           TaskStatus `bson:"status" json:"status"`
	Order            int        `bson:"order" json:"order"`
	CreatedAt        string     `bson:"createdAt" json:"createdAt"`
	UpdatedAt        string     `bson:"updatedAt" json:"updatedAt"`
	LastSkippedAt    string     `bson:"lastSkippedAt" json:"lastSkippedAt"`
}

// Valid reports whether a task may be kept in the document. Tasks that
// lose their id or title during sanitization are dropped entirely.
func (t *Task) Valid() bool {
	return t.ID != "" && t.Title != ""
}
