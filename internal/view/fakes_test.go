package view

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/terra-clan/coding-tracker/internal/models"
)

var errBackendDown = errors.New("backend down")

type fakeBackend struct {
	mu sync.Mutex

	challenges []*models.Challenge
	listErr    error

	submitID  models.SubmissionID
	submitErr error

	feedback    models.Feedback
	feedbackErr error

	// called while the corresponding request is in flight
	onSubmit   func()
	onFeedback func()

	listCalls     int
	submitCalls   int
	feedbackCalls int
	submitted     []models.SubmitRequest
	feedbackIDs   []models.SubmissionID
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		challenges: []*models.Challenge{
			{
				ID:          "two-sum",
				Title:       "Two Sum",
				Description: "Return indices of the two numbers that add up to target.",
				Difficulty:  models.DifficultyEasy,
				TestCases: []models.TestCase{
					{Input: "[2,7,11,15], 9", Output: "[0,1]"},
					{Input: "[3,2,4], 6", Output: "[1,2]"},
				},
			},
			{
				ID:          "merge-intervals",
				Title:       "Merge Intervals",
				Description: "Merge all overlapping intervals.",
				Difficulty:  models.DifficultyMedium,
				TestCases:   []models.TestCase{},
			},
			{
				ID:          "edit-distance",
				Title:       "Edit Distance",
				Description: "Return the minimum number of operations to convert one word into another.",
				Difficulty:  models.DifficultyHard,
				TestCases:   []models.TestCase{},
			},
		},
		submitID: models.NewSubmissionID("abc"),
		feedback: models.Feedback{
			QualityScore:  87,
			Complexity:    "Low",
			Readability:   "High",
			Strengths:     []string{},
			Suggestions:   []string{"Add comments"},
			BestPractices: []string{},
		},
	}
}

func (f *fakeBackend) ListChallenges(ctx context.Context) ([]*models.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.challenges, nil
}

func (f *fakeBackend) Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmitResponse, error) {
	f.mu.Lock()
	f.submitCalls++
	f.submitted = append(f.submitted, req)
	hook, id, err := f.onSubmit, f.submitID, f.submitErr
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return &models.SubmitResponse{Success: true, SubmissionID: id}, nil
}

func (f *fakeBackend) Feedback(ctx context.Context, id models.SubmissionID) (*models.Feedback, error) {
	f.mu.Lock()
	f.feedbackCalls++
	f.feedbackIDs = append(f.feedbackIDs, id)
	hook, fb, err := f.onFeedback, f.feedback, f.feedbackErr
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return &fb, nil
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls + f.submitCalls + f.feedbackCalls
}

func newTestController() (*Controller, *fakeBackend, *MemoryStore) {
	backend := newFakeBackend()
	store := NewMemoryStore(time.Hour)
	return NewController(backend, store), backend, store
}

func (f *fakeBackend) submits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitCalls
}
