package dto

type UpdateSettingsRequest struct {
	DefaultEstimateMin int  `json:"defaultEstimateMin" binding:"required,min=1"`
	CompletePoints     int  `json:"completePoints"`
	FailPoints         int  `json:"failPoints"`
	StreakResetOnFail  bool `json:"streakResetOnFail"`
}

type ClearDataRequest struct {
	Confirm bool `json:"confirm" binding:"required"`
}
