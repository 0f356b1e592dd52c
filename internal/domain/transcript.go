package domain

import "time"

// RunStatus is the outcome of one example run.
type RunStatus string

const (
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Transcript is the recorded form of one run: the request that was sent and
// either the reply or the failure reason.
type Transcript struct {
	RunID     string
	Model     string
	Messages  []ChatMessage
	Reply     string
	Status    RunStatus
	Reason    string
	CreatedAt time.Time
}
