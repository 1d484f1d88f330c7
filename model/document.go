package model

import "time"

const SchemaVersion = 2

// MaxPracticeSessions caps the history list; the oldest records are
// dropped first on every append.
const MaxPracticeSessions = 200

type Stats struct {
	Points int `bson:"points" json:"points"`
	Streak int `bson:"streak" json:"streak"`
}

type Settings struct {
	DefaultEstimateMin int  `bson:"defaultEstimateMin" json:"defaultEstimateMin"`
	CompletePoints     int  `bson:"completePoints" json:"completePoints"`
	FailPoints         int  `bson:"failPoints" json:"failPoints"`
	StreakResetOnFail  bool `bson:"streakResetOnFail" json:"streakResetOnFail"`
}

// Document is the single root object every component operates on. It
// is owned by the store; all mutation goes through the usecase layer,
// which persists the whole document after each change.
type Document struct {
	SchemaVersion int               `bson:"schemaVersion" json:"schemaVersion"`
	Tasks         []Task            `bson:"tasks" json:"tasks"`
	Sops          map[string][]string `bson:"sops" json:"sops"`
	Sessions      []PracticeSession `bson:"sessions" json:"sessions"`
	Stats         Stats             `bson:"stats" json:"stats"`
	Settings      Settings          `bson:"settings" json:"settings"`
	LastTaskOrder int               `bson:"lastTaskOrder" json:"lastTaskOrder"`
	UpdatedAt     string            `bson:"updatedAt" json:"updatedAt"`
}

func NowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func DefaultDocument() *Document {
	return &Document{
		SchemaVersion: SchemaVersion,
		Tasks:         []Task{},
		Sops:          map[string][]string{},
		Sessions:      []PracticeSession{},
		Stats:         Stats{Points: 0, Streak: 0},
		Settings: Settings{
			DefaultEstimateMin: 25,
			CompletePoints:     5,
			FailPoints:         -3,
			StreakResetOnFail:  true,
		},
		LastTaskOrder: 0,
		UpdatedAt:     NowISO(),
	}
}
