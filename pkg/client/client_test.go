package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/terra-clan/coding-tracker/internal/models"
)

func TestListChallenges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/problems" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"id":"a","title":"A","difficulty":"easy","test_cases":[]},{"id":"b","title":"B","difficulty":"hard","test_cases":[]}]`)
	}))
	defer srv.Close()

	challenges, err := NewClient(srv.URL + "/").ListChallenges(context.Background())
	if err != nil {
		t.Fatalf("ListChallenges failed: %v", err)
	}
	if len(challenges) != 2 || challenges[1].Difficulty != models.DifficultyHard {
		t.Errorf("unexpected challenges: %+v", challenges)
	}
}

func TestSubmitThenFeedbackEchoesIdentifier(t *testing.T) {
	var feedbackBody string
	var submitContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/submit":
			submitContentType = r.Header.Get("Content-Type")
			io.WriteString(w, `{"success":true,"submission_id":"abc"}`)
		case "/api/feedback":
			body, _ := io.ReadAll(r.Body)
			feedbackBody = string(body)
			io.WriteString(w, `{"success":true,"feedback":{"quality_score":85,"complexity":"moderate","readability":"good","strengths":[],"suggestions":["Add comments"],"best_practices":[]}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	sub, err := c.Submit(ctx, models.SubmitRequest{ChallengeID: "two-sum", Code: "x", Language: models.LanguagePython})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if submitContentType != "application/json" {
		t.Errorf("expected JSON content type, got %q", submitContentType)
	}

	fb, err := c.Feedback(ctx, sub.SubmissionID)
	if err != nil {
		t.Fatalf("Feedback failed: %v", err)
	}

	if feedbackBody != `{"submission_id":"abc"}` {
		t.Errorf("unexpected feedback request body: %s", feedbackBody)
	}
	if fb.QualityScore != 85 || fb.Complexity != "moderate" {
		t.Errorf("unexpected feedback: %+v", fb)
	}
}

func TestMinimalResponsesAccepted(t *testing.T) {
	var feedbackBody string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/submit":
			io.WriteString(w, `{"submission_id":"abc"}`)
		case "/api/feedback":
			body, _ := io.ReadAll(r.Body)
			feedbackBody = string(body)
			io.WriteString(w, `{"feedback":{"quality_score":87,"complexity":"Low","readability":"High"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	sub, err := c.Submit(ctx, models.SubmitRequest{ChallengeID: "two-sum", Code: "x"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sub.SubmissionID.String() != "abc" {
		t.Errorf("unexpected submission id %q", sub.SubmissionID.String())
	}

	fb, err := c.Feedback(ctx, sub.SubmissionID)
	if err != nil {
		t.Fatalf("Feedback failed: %v", err)
	}
	if feedbackBody != `{"submission_id":"abc"}` {
		t.Errorf("unexpected feedback request body: %s", feedbackBody)
	}
	if fb.QualityScore != 87 || len(fb.Strengths) != 0 {
		t.Errorf("unexpected feedback: %+v", fb)
	}
}

func TestMissingPayloadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	if _, err := c.Submit(ctx, models.SubmitRequest{ChallengeID: "x", Code: "y"}); !errors.Is(err, ErrRejected) {
		t.Errorf("expected ErrRejected for submit, got %v", err)
	}
	if _, err := c.Feedback(ctx, models.NewSubmissionID("abc")); !errors.Is(err, ErrRejected) {
		t.Errorf("expected ErrRejected for feedback, got %v", err)
	}
}

func TestFeedbackRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false,"feedback":{"quality_score":10}}`)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Feedback(context.Background(), models.NewSubmissionID("7")); !errors.Is(err, ErrRejected) {
		t.Errorf("expected ErrRejected, got %v", err)
	}
}

func TestSubmitRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":false,"submission_id":null,"message":"nope"}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Submit(context.Background(), models.SubmitRequest{ChallengeID: "x", Code: "y"})
	if !errors.Is(err, ErrRejected) {
		t.Errorf("expected ErrRejected, got %v", err)
	}
}

func TestErrorEnvelopeParsed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"success":false,"error":{"code":"not_found","message":"submission not found"}}`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Feedback(context.Background(), models.NewSubmissionID("ghost"))

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Code != "not_found" {
		t.Errorf("unexpected api error: %+v", apiErr)
	}
}

func TestTimeoutIsTransportFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, WithTimeout(50*time.Millisecond))
	if _, err := c.ListChallenges(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
}
