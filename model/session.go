package model

import "time"

type SessionState string
type SessionResult string
type FailTrigger string
type FailReason string
type SelfCompare string

const (
	SessionIdle     SessionState = "idle"
	SessionActive   SessionState = "active"
	SessionSettling SessionState = "settling"

	ResultSuccess SessionResult = "success"
	ResultFail    SessionResult = "fail"

	TriggerAbandon FailTrigger = "abandon"
	TriggerTimeout FailTrigger = "timeout"

	FailDifficultyMisjudge FailReason = "difficulty_misjudge"
	FailInterrupted        FailReason = "interrupted"
	FailSopBad             FailReason = "sop_bad"
	FailGoalUnclear        FailReason = "goal_unclear"
	FailBadState           FailReason = "bad_state"

	CompareBetter SelfCompare = "better"
	CompareSame   SelfCompare = "same"
	CompareWorse  SelfCompare = "worse"
)

// FailReasons is the fixed set offered after an abandoned or timed-out
// session. The follow-up choice blocks settlement until one is picked.
var FailReasons = []FailReason{
	FailDifficultyMisjudge,
	FailInterrupted,
	FailSopBad,
	FailGoalUnclear,
	FailBadState,
}

var SelfCompareOptions = []SelfCompare{CompareBetter, CompareSame, CompareWorse}

func ValidFailReason(r FailReason) bool {
	for _, known := range FailReasons {
		if r == known {
			return true
		}
	}
	return false
}

func ValidSelfCompare(c SelfCompare) bool {
	for _, known := range SelfCompareOptions {
		if c == known {
			return true
		}
	}
	return false
}

// ActiveSession is the single in-flight focus session. It is never
// persisted; only its settled outcome becomes a PracticeSession.
type ActiveSession struct {
	TaskID           string    `json:"taskId"`
	TaskType         TaskType  `json:"taskType"`
	Links            []string  `json:"links"`
	StartedAt        time.Time `json:"startedAt"`
	EndsAt           time.Time `json:"endsAt"`
	OpenLinks        bool      `json:"openLinks"`
	UseSop           bool      `json:"useSop"`
	DefinitionOfDone string    `json:"definitionOfDone"`
	EstimateMin      int       `json:"estimateMin"`
	SopKey           string    `json:"sopKey"`
	PracticeFocus    string    `json:"practiceFocus"`
}

// PracticeSession is an immutable history record of a settled session.
// failReason/failTrigger are set only on fail; selfCompare may be
// attached to a success record later via an id-keyed patch.
type PracticeSession struct {
	ID            string        `bson:"id" json:"id"`
	TaskID        string        `bson:"taskId" json:"taskId"`
	SopKey        string        `bson:"sopKey" json:"sopKey"`
	TaskType      TaskType      `bson:"taskType" json:"taskType"`
	StartedAt     string        `bson:"startedAt" json:"startedAt"`
	EndedAt       string        `bson:"endedAt" json:"endedAt"`
	PlannedMin    int           `bson:"plannedMin" json:"plannedMin"`
	ActualSec     int           `bson:"actualSec" json:"actualSec"`
	Result        SessionResult `bson:"result" json:"result"`
	PracticeFocus string        `bson:"practiceFocus" json:"practiceFocus"`
	FailReason    FailReason    `bson:"failReason,omitempty" json:"failReason,omitempty"`
	FailTrigger   FailTrigger   `bson:"failTrigger,omitempty" json:"failTrigger,omitempty"`
	SelfCompare   SelfCompare   `bson:"selfCompare,omitempty" json:"selfCompare,omitempty"`
}
