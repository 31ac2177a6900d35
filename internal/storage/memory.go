package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/terra-clan/coding-tracker/internal/models"
)

// MemoryRepository implements Repository in process memory.
// It is used when no database DSN is configured.
type MemoryRepository struct {
	mu          sync.RWMutex
	submissions map[string]*models.Submission
	feedback    map[string]*models.FeedbackEntry // keyed by submission ID
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		submissions: make(map[string]*models.Submission),
		feedback:    make(map[string]*models.FeedbackEntry),
	}
}

// Ping always succeeds
func (r *MemoryRepository) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (r *MemoryRepository) Close() error {
	return nil
}

// CreateSubmission stores a copy of s
func (r *MemoryRepository) CreateSubmission(ctx context.Context, s *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.submissions[s.ID]; exists {
		return fmt.Errorf("submission %s already exists", s.ID)
	}

	cp := *s
	r.submissions[s.ID] = &cp
	return nil
}

// GetSubmission returns a copy of the stored submission
func (r *MemoryRepository) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.submissions[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

// UpdateSubmissionStatus changes the lifecycle status of a submission
func (r *MemoryRepository) UpdateSubmissionStatus(ctx context.Context, id string, status models.SubmissionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.submissions[id]
	if !ok {
		return fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	s.Status = status
	return nil
}

// ListRecentSubmissions returns up to limit submissions, newest first
func (r *MemoryRepository) ListRecentSubmissions(ctx context.Context, limit int) ([]*models.Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Submission, 0, len(r.submissions))
	for _, s := range r.submissions {
		cp := *s
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit >= 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// CreateFeedback stores the analysis for a submission
func (r *MemoryRepository) CreateFeedback(ctx context.Context, f *models.FeedbackEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.submissions[f.SubmissionID]; !ok {
		return fmt.Errorf("submission %s: %w", f.SubmissionID, ErrNotFound)
	}
	if _, exists := r.feedback[f.SubmissionID]; exists {
		return fmt.Errorf("feedback for submission %s already exists", f.SubmissionID)
	}

	cp := *f
	r.feedback[f.SubmissionID] = &cp
	return nil
}

// GetFeedbackBySubmission retrieves the stored analysis of a submission
func (r *MemoryRepository) GetFeedbackBySubmission(ctx context.Context, submissionID string) (*models.FeedbackEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.feedback[submissionID]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}
