package domain

import "time"

// Outcome is the sink's verdict on a submitted opportunity.
type Outcome string

const (
	// OutcomeAccepted means the opportunity was admitted for execution.
	OutcomeAccepted Outcome = "accepted"
	// OutcomeRejected means a guard refused it; the error carries the reason.
	OutcomeRejected Outcome = "rejected"
	// OutcomeFailed means admission itself broke (cancelled, shut down).
	OutcomeFailed Outcome = "failed"
)

// Receipt records one execution attempt.
type Receipt struct {
	Signature   string
	Mode        Mode
	SubmittedAt time.Time
	Latency     time.Duration
}
