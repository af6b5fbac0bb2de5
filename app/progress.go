package app

import "time"

// Stage identifies a step of a window's lifecycle.
type Stage string

const (
	StageStarted  Stage = "started"
	StageFinished Stage = "finished"
	StageFailed   Stage = "failed"
)

// Progress is published on the service bus as windows move through the run.
type Progress struct {
	RunID   string
	Window  int
	Windows int
	Stage   Stage
	Profit  float64
	Err     string
	Time    time.Time
}
