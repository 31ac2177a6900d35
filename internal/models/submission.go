package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Language is the language a submission is written in
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageJava       Language = "java"
)

// DefaultLanguage is used when a submission does not name one
const DefaultLanguage = LanguagePython

// Languages lists the selectable languages in display order
var Languages = []Language{LanguagePython, LanguageJavaScript, LanguageJava}

// Valid reports whether l is a supported language
func (l Language) Valid() bool {
	for _, known := range Languages {
		if l == known {
			return true
		}
	}
	return false
}

// SubmissionStatus represents the lifecycle state of a submission
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionAnalyzed SubmissionStatus = "analyzed"
)

// Submission is one piece of code sent for evaluation
type Submission struct {
	ID          string           `json:"id"`
	ChallengeID string           `json:"challenge_id"`
	Code        string           `json:"code"`
	Language    Language         `json:"language"`
	Status      SubmissionStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
}

// SubmitRequest is the body of POST /api/submit
type SubmitRequest struct {
	ChallengeID string   `json:"challenge_id"`
	Code        string   `json:"code"`
	Language    Language `json:"language"`
}

// SubmitResponse is returned by POST /api/submit
type SubmitResponse struct {
	Success      bool         `json:"success"`
	SubmissionID SubmissionID `json:"submission_id"`
	Message      string       `json:"message,omitempty"`
}

// SubmissionID is the opaque token returned by a submit call.
// Backends may encode it as a JSON string or number; the original
// encoding is kept so it can be echoed back unchanged.
type SubmissionID struct {
	raw json.RawMessage
}

// NewSubmissionID wraps a string identifier
func NewSubmissionID(id string) SubmissionID {
	raw, _ := json.Marshal(id)
	return SubmissionID{raw: raw}
}

// IsZero reports whether no identifier is held
func (id SubmissionID) IsZero() bool {
	return len(id.raw) == 0 || bytes.Equal(id.raw, []byte("null")) || bytes.Equal(id.raw, []byte(`""`))
}

// String returns the identifier text without JSON quoting
func (id SubmissionID) String() string {
	if id.IsZero() {
		return ""
	}
	var s string
	if err := json.Unmarshal(id.raw, &s); err == nil {
		return s
	}
	return string(id.raw)
}

// MarshalJSON emits the identifier exactly as it was received
func (id SubmissionID) MarshalJSON() ([]byte, error) {
	if len(id.raw) == 0 {
		return []byte("null"), nil
	}
	return id.raw, nil
}

// UnmarshalJSON accepts a JSON string, number or null
func (id *SubmissionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		id.raw = nil
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid submission id: %w", err)
		}
	default:
		if _, err := strconv.ParseFloat(string(data), 64); err != nil {
			return fmt.Errorf("submission id must be a string or number, got %s", data)
		}
	}
	id.raw = append(json.RawMessage(nil), data...)
	return nil
}
