// Package tracker holds the backend operations behind the /api routes:
// challenge lookup, code submission and feedback generation.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/terra-clan/coding-tracker/internal/models"
	"github.com/terra-clan/coding-tracker/internal/storage"
)

// Common errors
var (
	ErrChallengeNotFound  = errors.New("challenge not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrFeedbackNotFound   = errors.New("feedback not found")
	ErrInvalidRequest     = errors.New("invalid request")
)

const (
	// MaxCodeSize is the largest accepted submission body in bytes
	MaxCodeSize = 64 * 1024

	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

// Service defines the backend operations
type Service interface {
	ListChallenges(ctx context.Context) ([]*models.Challenge, error)
	GetChallenge(ctx context.Context, id string) (*models.Challenge, error)
	Submit(ctx context.Context, req models.SubmitRequest) (*models.Submission, error)
	GetSubmission(ctx context.Context, id string) (*models.Submission, error)
	RecentSubmissions(ctx context.Context, limit int) ([]*models.Submission, error)
	Feedback(ctx context.Context, submissionID string) (*models.Feedback, error)
	GetFeedbackEntry(ctx context.Context, submissionID string) (*models.FeedbackEntry, error)
	Ping(ctx context.Context) error
}

// Catalog is the read side of the challenge loader
type Catalog interface {
	List() []*models.Challenge
	Get(id string) *models.Challenge
}

// Analyzer turns code into feedback
type Analyzer interface {
	Analyze(code string, language models.Language, challengeTitle string) models.Feedback
}

// Tracker implements Service over a catalog, a repository and an analyzer
type Tracker struct {
	catalog  Catalog
	repo     storage.Repository
	analyzer Analyzer
	inflight singleflight.Group
	now      func() time.Time
}

// New creates a Tracker
func New(catalog Catalog, repo storage.Repository, analyzer Analyzer) *Tracker {
	return &Tracker{
		catalog:  catalog,
		repo:     repo,
		analyzer: analyzer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Ping checks the repository
func (t *Tracker) Ping(ctx context.Context) error {
	if err := t.repo.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// ListChallenges returns the catalog in its stable order
func (t *Tracker) ListChallenges(ctx context.Context) ([]*models.Challenge, error) {
	return t.catalog.List(), nil
}

// GetChallenge returns one challenge
func (t *Tracker) GetChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	challenge := t.catalog.Get(id)
	if challenge == nil {
		return nil, ErrChallengeNotFound
	}
	return challenge, nil
}

// Submit validates and stores a new pending submission
func (t *Tracker) Submit(ctx context.Context, req models.SubmitRequest) (*models.Submission, error) {
	challengeID := strings.TrimSpace(req.ChallengeID)
	if challengeID == "" {
		return nil, fmt.Errorf("%w: challenge_id is required", ErrInvalidRequest)
	}
	if t.catalog.Get(challengeID) == nil {
		return nil, ErrChallengeNotFound
	}

	if strings.TrimSpace(req.Code) == "" {
		return nil, fmt.Errorf("%w: code is required", ErrInvalidRequest)
	}
	if len(req.Code) > MaxCodeSize {
		return nil, fmt.Errorf("%w: code exceeds %d bytes", ErrInvalidRequest, MaxCodeSize)
	}

	language := models.Language(strings.ToLower(strings.TrimSpace(string(req.Language))))
	if language == "" {
		language = models.DefaultLanguage
	}
	if !language.Valid() {
		return nil, fmt.Errorf("%w: unsupported language %q", ErrInvalidRequest, req.Language)
	}

	submission := &models.Submission{
		ID:          uuid.New().String(),
		ChallengeID: challengeID,
		Code:        req.Code,
		Language:    language,
		Status:      models.SubmissionPending,
		CreatedAt:   t.now(),
	}

	if err := t.repo.CreateSubmission(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	slog.Info("submission created",
		"submission_id", submission.ID,
		"challenge_id", submission.ChallengeID,
		"language", submission.Language,
	)

	return submission, nil
}

// GetSubmission returns one submission
func (t *Tracker) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	submission, err := t.repo.GetSubmission(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if submission == nil {
		return nil, ErrSubmissionNotFound
	}
	return submission, nil
}

// RecentSubmissions returns the newest submissions. Non-positive limits use
// the default; larger ones are capped.
func (t *Tracker) RecentSubmissions(ctx context.Context, limit int) ([]*models.Submission, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	submissions, err := t.repo.ListRecentSubmissions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

// Feedback returns the analysis of a submission, generating and storing it
// on first request. Concurrent calls for one submission share a single run.
func (t *Tracker) Feedback(ctx context.Context, submissionID string) (*models.Feedback, error) {
	submission, err := t.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	v, err, shared := t.inflight.Do(submission.ID, func() (interface{}, error) {
		return t.generateFeedback(context.WithoutCancel(ctx), submission)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("feedback request collapsed", "submission_id", submission.ID)
	}

	feedback := v.(models.Feedback)
	return &feedback, nil
}

func (t *Tracker) generateFeedback(ctx context.Context, submission *models.Submission) (models.Feedback, error) {
	existing, err := t.repo.GetFeedbackBySubmission(ctx, submission.ID)
	if err != nil {
		return models.Feedback{}, fmt.Errorf("failed to get feedback: %w", err)
	}
	if existing != nil {
		return existing.Analysis, nil
	}

	title := ""
	if challenge := t.catalog.Get(submission.ChallengeID); challenge != nil {
		title = challenge.Title
	}

	analysis := t.analyzer.Analyze(submission.Code, submission.Language, title)

	entry := &models.FeedbackEntry{
		ID:           uuid.New().String(),
		SubmissionID: submission.ID,
		Analysis:     analysis,
		CreatedAt:    t.now(),
	}
	if err := t.repo.CreateFeedback(ctx, entry); err != nil {
		return models.Feedback{}, fmt.Errorf("failed to save feedback: %w", err)
	}

	if err := t.repo.UpdateSubmissionStatus(ctx, submission.ID, models.SubmissionAnalyzed); err != nil {
		slog.Warn("failed to mark submission analyzed", "submission_id", submission.ID, "error", err)
	}

	slog.Info("feedback generated",
		"submission_id", submission.ID,
		"quality_score", analysis.QualityScore,
		"complexity", analysis.Complexity,
	)

	return analysis, nil
}

// GetFeedbackEntry returns stored feedback without generating it
func (t *Tracker) GetFeedbackEntry(ctx context.Context, submissionID string) (*models.FeedbackEntry, error) {
	entry, err := t.repo.GetFeedbackBySubmission(ctx, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	if entry == nil {
		return nil, ErrFeedbackNotFound
	}
	return entry, nil
}
