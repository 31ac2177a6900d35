package storage

import (
	"context"

	"github.com/terra-clan/coding-tracker/internal/models"
)

// Repository defines the interface for submission and feedback persistence.
// Lookups return nil, nil when the record does not exist.
type Repository interface {
	// Submissions
	CreateSubmission(ctx context.Context, s *models.Submission) error
	GetSubmission(ctx context.Context, id string) (*models.Submission, error)
	UpdateSubmissionStatus(ctx context.Context, id string, status models.SubmissionStatus) error
	ListRecentSubmissions(ctx context.Context, limit int) ([]*models.Submission, error)

	// Feedback
	CreateFeedback(ctx context.Context, f *models.FeedbackEntry) error
	GetFeedbackBySubmission(ctx context.Context, submissionID string) (*models.FeedbackEntry, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}
