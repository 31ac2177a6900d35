package models

import "time"

// Feedback is the structured evaluation of one submission
type Feedback struct {
	QualityScore  int      `json:"quality_score"`
	Complexity    string   `json:"complexity"`
	Readability   string   `json:"readability"`
	Strengths     []string `json:"strengths"`
	Suggestions   []string `json:"suggestions"`
	BestPractices []string `json:"best_practices"`
}

// FeedbackEntry is a stored analysis for a submission
type FeedbackEntry struct {
	ID           string    `json:"id"`
	SubmissionID string    `json:"submission_id"`
	Analysis     Feedback  `json:"analysis"`
	CreatedAt    time.Time `json:"created_at"`
}

// FeedbackRequest is the body of POST /api/feedback
type FeedbackRequest struct {
	SubmissionID SubmissionID `json:"submission_id"`
}

// FeedbackResponse is returned by POST /api/feedback
type FeedbackResponse struct {
	Success  bool      `json:"success"`
	Feedback *Feedback `json:"feedback"`
}
