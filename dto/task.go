package dto

// CreateTaskRequest carries the quick-add form.
type CreateTaskRequest struct {
	Title            string   `json:"title" binding:"required"`
	Type             string   `json:"type" binding:"omitempty,tasktype"`
	EstimateMin      int      `json:"estimateMin" binding:"omitempty,min=1"`
	Importance       string   `json:"importance" binding:"omitempty,importance"`
	Links            []string `json:"links"`
	DefinitionOfDone string   `json:"definitionOfDone"`
	SopKey           string   `json:"sopKey"`
}

// UpdateTaskRequest carries the task editor form; zero values leave
// the stored field alone, except links which is replaced when present.
type UpdateTaskRequest struct {
	Title            string   `json:"title"`
	Type             string   `json:"type" binding:"omitempty,tasktype"`
	EstimateMin      int      `json:"estimateMin" binding:"omitempty,min=1"`
	Importance       string   `json:"importance" binding:"omitempty,importance"`
	Links            []string `json:"links"`
	DefinitionOfDone *string  `json:"definitionOfDone"`
	SopKey           *string  `json:"sopKey"`
}

type AddNoteRequest struct {
	Text string `json:"text" binding:"required"`
}

type NoteDraftRequest struct {
	Draft string `json:"draft"`
}
