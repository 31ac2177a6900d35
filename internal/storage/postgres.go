package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/coding-tracker/internal/models"
)

// ErrNotFound is returned by updates that match no row
var ErrNotFound = errors.New("record not found")

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	poolConfig.MaxConns = 25
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	}

	poolConfig.MinConns = 5
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	}
	if poolConfig.MinConns > poolConfig.MaxConns {
		poolConfig.MinConns = poolConfig.MaxConns
	}

	poolConfig.MaxConnLifetime = 30 * time.Minute
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Pool exposes the underlying pool for migrations
func (r *PostgresRepository) Pool() *pgxpool.Pool {
	return r.pool
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateSubmission inserts a new submission
func (r *PostgresRepository) CreateSubmission(ctx context.Context, s *models.Submission) error {
	query := `
		INSERT INTO submissions (id, challenge_id, code, language, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.ChallengeID,
		s.Code,
		string(s.Language),
		string(s.Status),
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}

	return nil
}

// GetSubmission retrieves a submission by ID
func (r *PostgresRepository) GetSubmission(ctx context.Context, id string) (*models.Submission, error) {
	query := `
		SELECT id, challenge_id, code, language, status, created_at
		FROM submissions
		WHERE id = $1
	`

	s, err := scanSubmission(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return s, nil
}

// UpdateSubmissionStatus changes the lifecycle status of a submission
func (r *PostgresRepository) UpdateSubmissionStatus(ctx context.Context, id string, status models.SubmissionStatus) error {
	result, err := r.pool.Exec(ctx, `UPDATE submissions SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}

	return nil
}

// ListRecentSubmissions returns up to limit submissions, newest first
func (r *PostgresRepository) ListRecentSubmissions(ctx context.Context, limit int) ([]*models.Submission, error) {
	query := `
		SELECT id, challenge_id, code, language, status, created_at
		FROM submissions
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	submissions := make([]*models.Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}

	return submissions, nil
}

// CreateFeedback stores the analysis for a submission
func (r *PostgresRepository) CreateFeedback(ctx context.Context, f *models.FeedbackEntry) error {
	analysisJSON, err := json.Marshal(f.Analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `
		INSERT INTO feedback (id, submission_id, analysis, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.pool.Exec(ctx, query, f.ID, f.SubmissionID, analysisJSON, f.CreatedAt); err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}

	return nil
}

// GetFeedbackBySubmission retrieves the stored analysis of a submission
func (r *PostgresRepository) GetFeedbackBySubmission(ctx context.Context, submissionID string) (*models.FeedbackEntry, error) {
	query := `
		SELECT id, submission_id, analysis, created_at
		FROM feedback
		WHERE submission_id = $1
	`

	var f models.FeedbackEntry
	var analysisJSON []byte

	err := r.pool.QueryRow(ctx, query, submissionID).Scan(
		&f.ID,
		&f.SubmissionID,
		&analysisJSON,
		&f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}

	if err := json.Unmarshal(analysisJSON, &f.Analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
	}

	return &f, nil
}

func scanSubmission(row pgx.Row) (*models.Submission, error) {
	var s models.Submission
	var language, status string

	if err := row.Scan(&s.ID, &s.ChallengeID, &s.Code, &language, &status, &s.CreatedAt); err != nil {
		return nil, err
	}

	s.Language = models.Language(language)
	s.Status = models.SubmissionStatus(status)
	return &s, nil
}
