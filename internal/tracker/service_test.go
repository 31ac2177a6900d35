package tracker

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/terra-clan/coding-tracker/internal/analyzer"
	"github.com/terra-clan/coding-tracker/internal/catalog"
	"github.com/terra-clan/coding-tracker/internal/models"
	"github.com/terra-clan/coding-tracker/internal/storage"
)

type countingAnalyzer struct {
	calls atomic.Int32
	inner *analyzer.Analyzer
}

func (c *countingAnalyzer) Analyze(code string, language models.Language, title string) models.Feedback {
	c.calls.Add(1)
	return c.inner.Analyze(code, language, title)
}

func newTestTracker(t *testing.T) (*Tracker, *storage.MemoryRepository, *countingAnalyzer) {
	t.Helper()

	loader := catalog.NewLoader()
	loader.LoadDefaults()

	repo := storage.NewMemoryRepository()
	a := &countingAnalyzer{inner: analyzer.New()}

	return New(loader, repo, a), repo, a
}

func TestListAndGetChallenges(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()

	challenges, err := tr.ListChallenges(ctx)
	if err != nil {
		t.Fatalf("ListChallenges failed: %v", err)
	}
	if len(challenges) != 4 {
		t.Fatalf("expected 4 challenges, got %d", len(challenges))
	}
	if challenges[0].ID != "two-sum" {
		t.Errorf("expected two-sum first, got %s", challenges[0].ID)
	}

	if _, err := tr.GetChallenge(ctx, "missing"); !errors.Is(err, ErrChallengeNotFound) {
		t.Errorf("expected ErrChallengeNotFound, got %v", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     models.SubmitRequest
		wantErr error
	}{
		{
			name:    "missing challenge id",
			req:     models.SubmitRequest{Code: "x = 1"},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "unknown challenge",
			req:     models.SubmitRequest{ChallengeID: "nope", Code: "x = 1"},
			wantErr: ErrChallengeNotFound,
		},
		{
			name:    "blank code",
			req:     models.SubmitRequest{ChallengeID: "two-sum", Code: "   \n"},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "oversized code",
			req:     models.SubmitRequest{ChallengeID: "two-sum", Code: strings.Repeat("x", MaxCodeSize+1)},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "unsupported language",
			req:     models.SubmitRequest{ChallengeID: "two-sum", Code: "x", Language: "cobol"},
			wantErr: ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.Submit(ctx, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSubmitDefaultsLanguage(t *testing.T) {
	tr, repo, _ := newTestTracker(t)
	ctx := context.Background()

	sub, err := tr.Submit(ctx, models.SubmitRequest{ChallengeID: "fizzbuzz", Code: "print('x')"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if sub.Language != models.LanguagePython {
		t.Errorf("expected python, got %s", sub.Language)
	}
	if sub.Status != models.SubmissionPending {
		t.Errorf("expected pending, got %s", sub.Status)
	}

	stored, _ := repo.GetSubmission(ctx, sub.ID)
	if stored == nil {
		t.Fatal("submission not persisted")
	}

	upper, err := tr.Submit(ctx, models.SubmitRequest{ChallengeID: "fizzbuzz", Code: "let x", Language: "JavaScript"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if upper.Language != models.LanguageJavaScript {
		t.Errorf("expected javascript, got %s", upper.Language)
	}
}

func TestFeedbackGeneratedOnce(t *testing.T) {
	tr, repo, a := newTestTracker(t)
	ctx := context.Background()

	sub, err := tr.Submit(ctx, models.SubmitRequest{ChallengeID: "two-sum", Code: "def f():\n    return 1"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	first, err := tr.Feedback(ctx, sub.ID)
	if err != nil {
		t.Fatalf("Feedback failed: %v", err)
	}
	second, err := tr.Feedback(ctx, sub.ID)
	if err != nil {
		t.Fatalf("Feedback failed: %v", err)
	}

	if first.QualityScore != second.QualityScore {
		t.Errorf("expected stable feedback, got %d and %d", first.QualityScore, second.QualityScore)
	}
	if n := a.calls.Load(); n != 1 {
		t.Errorf("expected analyzer to run once, ran %d times", n)
	}

	stored, _ := repo.GetSubmission(ctx, sub.ID)
	if stored.Status != models.SubmissionAnalyzed {
		t.Errorf("expected analyzed status, got %s", stored.Status)
	}

	entry, err := tr.GetFeedbackEntry(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetFeedbackEntry failed: %v", err)
	}
	if entry.SubmissionID != sub.ID {
		t.Errorf("expected entry for %s, got %s", sub.ID, entry.SubmissionID)
	}
}

func TestFeedbackConcurrentCallers(t *testing.T) {
	tr, _, a := newTestTracker(t)
	ctx := context.Background()

	sub, err := tr.Submit(ctx, models.SubmitRequest{ChallengeID: "two-sum", Code: "x = 1"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tr.Feedback(ctx, sub.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Feedback failed: %v", err)
	}
	if n := a.calls.Load(); n != 1 {
		t.Errorf("expected analyzer to run once, ran %d times", n)
	}
}

func TestFeedbackUnknownSubmission(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()

	if _, err := tr.Feedback(ctx, "ghost"); !errors.Is(err, ErrSubmissionNotFound) {
		t.Errorf("expected ErrSubmissionNotFound, got %v", err)
	}
	if _, err := tr.GetFeedbackEntry(ctx, "ghost"); !errors.Is(err, ErrFeedbackNotFound) {
		t.Errorf("expected ErrFeedbackNotFound, got %v", err)
	}
}

func TestRecentSubmissionsLimit(t *testing.T) {
	tr, _, _ := newTestTracker(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		if _, err := tr.Submit(ctx, models.SubmitRequest{ChallengeID: "two-sum", Code: "x"}); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	defaulted, err := tr.RecentSubmissions(ctx, 0)
	if err != nil {
		t.Fatalf("RecentSubmissions failed: %v", err)
	}
	if len(defaulted) != DefaultRecentLimit {
		t.Errorf("expected %d, got %d", DefaultRecentLimit, len(defaulted))
	}

	capped, _ := tr.RecentSubmissions(ctx, 1000)
	if len(capped) != 12 {
		t.Errorf("expected all 12, got %d", len(capped))
	}
}
