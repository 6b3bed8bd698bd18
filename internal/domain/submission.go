package domain

import "time"

// SubmissionRecord is the persisted trace of one attempt.
// It never carries form values; the form is discarded after submission.
type SubmissionRecord struct {
	ID         string    `json:"id"`
	Endpoint   string    `json:"endpoint"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Outcome    string `json:"outcome"`
	StatusCode int    `json:"status_code,omitempty"`
	LatencyMS  int64  `json:"latency_ms"`
	Message    string `json:"message,omitempty"`

	TransportKind TransportErrorKind `json:"transport_kind,omitempty"`
}
