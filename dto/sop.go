package dto

type PutSopRequest struct {
	Steps []string `json:"steps"`
}

type RenameSopRequest struct {
	NewKey string   `json:"newKey" binding:"required"`
	Steps  []string `json:"steps"`
}
