package dto

// StartSessionRequest mirrors the start-confirmation dialog.
type StartSessionRequest struct {
	TaskID           string `json:"taskId" binding:"required"`
	EstimateMin      int    `json:"estimateMin" binding:"omitempty,min=1"`
	DefinitionOfDone string `json:"definitionOfDone"`
	SopKey           string `json:"sopKey"`
	PracticeFocus    string `json:"practiceFocus" binding:"max=60"`
	OpenLinks        bool   `json:"openLinks"`
	UseSop           bool   `json:"useSop"`
}

// CompleteSessionRequest carries the optional post-success follow-ups
// alongside the draft decision: a self-comparison for the new record
// and an updated SOP step list to store under the session's key.
type CompleteSessionRequest struct {
	SaveDraftAsNote bool     `json:"saveDraftAsNote"`
	SelfCompare     string   `json:"selfCompare" binding:"omitempty,selfcompare"`
	SaveSop         bool     `json:"saveSop"`
	SopSteps        []string `json:"sopSteps"`
}

// AbandonSessionRequest requires an explicit confirmation. The fail
// reason may be supplied up front or owed afterwards via the
// fail-reason endpoint.
type AbandonSessionRequest struct {
	Confirm    bool   `json:"confirm" binding:"required"`
	FailReason string `json:"failReason" binding:"omitempty,failreason"`
}

type FailReasonRequest struct {
	FailReason string `json:"failReason" binding:"required,failreason"`
}

type SelfCompareRequest struct {
	SelfCompare string `json:"selfCompare" binding:"required,selfcompare"`
}
