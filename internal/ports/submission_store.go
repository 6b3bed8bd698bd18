package ports

import "github.com/callmetuna/padhneyAI/internal/domain"

// SubmissionStore persists submission records.
type SubmissionStore interface {
	SaveSubmission(rec domain.SubmissionRecord) (id string, err error)
	ListSubmissions(limit int) ([]domain.SubmissionRecord, error)
}
