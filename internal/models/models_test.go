package models

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", 150)
	exact := strings.Repeat("b", SummaryLength)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "short text untouched", input: "Reverse a string.", expected: "Reverse a string."},
		{name: "exactly the limit", input: exact, expected: exact},
		{name: "long text cut", input: long, expected: strings.Repeat("a", SummaryLength) + "..."},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, SummaryLength); got != tt.expected {
				t.Errorf("Truncate() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	input := strings.Repeat("é", 130)
	got := Truncate(input, SummaryLength)

	body := strings.TrimSuffix(got, "...")
	if utf8.RuneCountInString(body) != SummaryLength {
		t.Errorf("expected %d runes before ellipsis, got %d", SummaryLength, utf8.RuneCountInString(body))
	}
	if !utf8.ValidString(got) {
		t.Error("truncation produced invalid UTF-8")
	}
}

func TestDifficultyValid(t *testing.T) {
	if !DifficultyMedium.Valid() {
		t.Error("medium should be valid")
	}
	if Difficulty("impossible").Valid() {
		t.Error("unknown difficulty should be invalid")
	}
}

func TestLanguageValid(t *testing.T) {
	for _, lang := range Languages {
		if !lang.Valid() {
			t.Errorf("%s should be valid", lang)
		}
	}
	if Language("cobol").Valid() {
		t.Error("cobol should not be valid")
	}
}

func TestSubmissionIDKeepsEncoding(t *testing.T) {
	tests := []struct {
		name     string
		response string
		text     string
		request  string
	}{
		{
			name:     "string id",
			response: `{"success":true,"submission_id":"abc"}`,
			text:     "abc",
			request:  `{"submission_id":"abc"}`,
		},
		{
			name:     "numeric id",
			response: `{"success":true,"submission_id":42}`,
			text:     "42",
			request:  `{"submission_id":42}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp SubmitResponse
			if err := json.Unmarshal([]byte(tt.response), &resp); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if resp.SubmissionID.String() != tt.text {
				t.Errorf("expected id text %q, got %q", tt.text, resp.SubmissionID.String())
			}

			body, err := json.Marshal(FeedbackRequest{SubmissionID: resp.SubmissionID})
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			if string(body) != tt.request {
				t.Errorf("expected request %s, got %s", tt.request, body)
			}
		})
	}
}

func TestSubmissionIDRejectsObjects(t *testing.T) {
	var id SubmissionID
	if err := json.Unmarshal([]byte(`{"x":1}`), &id); err == nil {
		t.Fatal("expected error for object id")
	}
	if err := json.Unmarshal([]byte(`true`), &id); err == nil {
		t.Fatal("expected error for boolean id")
	}
}

func TestSubmissionIDZero(t *testing.T) {
	var id SubmissionID
	if !id.IsZero() {
		t.Error("zero value should be zero")
	}
	if err := json.Unmarshal([]byte(`null`), &id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !id.IsZero() {
		t.Error("null should be zero")
	}
	if NewSubmissionID("x1").IsZero() {
		t.Error("wrapped id should not be zero")
	}
}
