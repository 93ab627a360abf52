package model

import "time"

// UnitEvent is published to Kafka after every expansion unit finishes.
type UnitEvent struct {
	RunID      string    `json:"run_id"`
	Phase      string    `json:"phase"`
	Kind       string    `json:"kind"`
	Subject    string    `json:"subject"`
	Status     string    `json:"status"`
	Pages      int       `json:"pages"`
	Items      int       `json:"items"`
	Discovered int       `json:"discovered"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

const (
	UnitStatusOK      = "ok"
	UnitStatusFailed  = "failed"
	UnitStatusSkipped = "skipped"
)
