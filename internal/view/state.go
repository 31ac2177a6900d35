// Package view is the server-rendered view controller. Each browser session
// owns one State value; every change goes through Reduce.
package view

import (
	"errors"
	"fmt"

	"github.com/terra-clan/coding-tracker/internal/models"
)

// Panel is one of the three mutually exclusive top-level view regions
type Panel string

const (
	PanelListing  Panel = "listing"
	PanelDetail   Panel = "detail"
	PanelFeedback Panel = "feedback"
)

// User-facing messages
const (
	NoticeEmptyCode      = "Please write some code before submitting!"
	NoticeNoChallenge    = "Please select a challenge first!"
	NoticeSubmitFailed   = "Failed to submit code. Please try again."
	NoticeNoSubmission   = "No submission found!"
	MessageListFailed    = "Failed to load challenges. Please try again."
	MessageFeedbackError = "Failed to get feedback. Please try again."
	MessageLoading       = "Analyzing your code..."
)

var (
	// ErrInvalidTransition is returned for an action the current panel does not accept
	ErrInvalidTransition = errors.New("invalid panel transition")

	// ErrStaleOperation is returned when a network continuation arrives after
	// the user navigated away from the flow that started it
	ErrStaleOperation = errors.New("stale operation")

	// ErrUnknownChallenge is returned when selecting an id that is not in the loaded list
	ErrUnknownChallenge = errors.New("challenge not in loaded list")
)

// State is the application state of one browser session
type State struct {
	Panel Panel `json:"panel"`

	// Token identifies the current flow. Navigation bumps it so late
	// responses from an abandoned flow can be recognised and dropped.
	Token uint64 `json:"token"`

	Challenges []*models.Challenge `json:"challenges,omitempty"`
	ListError  string              `json:"list_error,omitempty"`

	Current  *models.Challenge `json:"current,omitempty"`
	Code     string            `json:"code,omitempty"`
	Language models.Language   `json:"language,omitempty"`

	SubmissionID  models.SubmissionID `json:"submission_id"`
	Loading       bool                `json:"loading,omitempty"`
	Feedback      *models.Feedback    `json:"feedback,omitempty"`
	FeedbackError string              `json:"feedback_error,omitempty"`

	// Notice is a blocking message shown once on the next render
	Notice string `json:"notice,omitempty"`
}

// NewState returns the initial state
func NewState() State {
	return State{
		Panel:    PanelListing,
		Language: models.DefaultLanguage,
	}
}

// Action is a state change request
type Action interface {
	apply(s State) (State, error)
}

// Reduce applies a to s. On error the returned state equals s.
func Reduce(s State, a Action) (State, error) {
	if s.Panel == "" {
		s.Panel = PanelListing
	}
	next, err := a.apply(s)
	if err != nil {
		return s, err
	}
	return next, nil
}

func checkToken(s State, token uint64) error {
	if s.Token != token {
		return fmt.Errorf("%w: token %d, current %d", ErrStaleOperation, token, s.Token)
	}
	return nil
}

func invalid(a Action, from Panel) error {
	return fmt.Errorf("%w: %T from %s", ErrInvalidTransition, a, from)
}

// ChallengesLoaded replaces the listing with a fresh fetch
type ChallengesLoaded struct {
	Token      uint64
	Challenges []*models.Challenge
}

func (a ChallengesLoaded) apply(s State) (State, error) {
	if err := checkToken(s, a.Token); err != nil {
		return s, err
	}
	if s.Panel != PanelListing {
		return s, invalid(a, s.Panel)
	}
	s.Challenges = a.Challenges
	s.ListError = ""
	return s, nil
}

// ChallengesFailed replaces the listing with the inline error message
type ChallengesFailed struct {
	Token uint64
}

func (a ChallengesFailed) apply(s State) (State, error) {
	if err := checkToken(s, a.Token); err != nil {
		return s, err
	}
	if s.Panel != PanelListing {
		return s, invalid(a, s.Panel)
	}
	s.Challenges = nil
	s.ListError = MessageListFailed
	return s, nil
}

// Select makes one of the loaded challenges current and opens the code panel
type Select struct {
	ChallengeID string
}

func (a Select) apply(s State) (State, error) {
	if s.Panel != PanelListing && s.Panel != PanelDetail {
		return s, invalid(a, s.Panel)
	}

	var found *models.Challenge
	for _, c := range s.Challenges {
		if c.ID == a.ChallengeID {
			found = c
			break
		}
	}
	if found == nil {
		return s, fmt.Errorf("%w: %q", ErrUnknownChallenge, a.ChallengeID)
	}

	s.Token++
	s.Panel = PanelDetail
	s.Current = found
	s.Code = ""
	s.SubmissionID = models.SubmissionID{}
	s.Loading = false
	s.Feedback = nil
	s.FeedbackError = ""
	return s, nil
}

// Submitted records a successful submit and opens the feedback panel in
// its loading state. The token is kept so the feedback fetch continues
// the same flow.
type Submitted struct {
	Token        uint64
	SubmissionID models.SubmissionID
	Code         string
	Language     models.Language
}

func (a Submitted) apply(s State) (State, error) {
	if err := checkToken(s, a.Token); err != nil {
		return s, err
	}
	if s.Panel != PanelDetail || s.Current == nil {
		return s, invalid(a, s.Panel)
	}

	s.Panel = PanelFeedback
	s.SubmissionID = a.SubmissionID
	s.Code = a.Code
	s.Language = a.Language
	s.Loading = true
	s.Feedback = nil
	s.FeedbackError = ""
	return s, nil
}

// SubmitFailed keeps the code panel open with the typed code and raises a notice
type SubmitFailed struct {
	Token    uint64
	Code     string
	Language models.Language
}

func (a SubmitFailed) apply(s State) (State, error) {
	if err := checkToken(s, a.Token); err != nil {
		return s, err
	}
	if s.Panel != PanelDetail {
		return s, invalid(a, s.Panel)
	}

	s.Code = a.Code
	s.Language = a.Language
	s.Notice = NoticeSubmitFailed
	return s, nil
}

// FeedbackRequested puts the feedback panel back into its loading state
type FeedbackRequested struct {
	Token uint64
}

func (a FeedbackRequested) apply(s State) (State, error) {
	if err := checkToken(s, a.Token); err != nil {
		return s, err
	}
	if s.Panel != PanelFeedback {
		return s, invalid(a, s.Panel)
	}

	s.Loading = true
	s.FeedbackError = ""
	return s, nil
}

// FeedbackLoaded stores the evaluation for display
type FeedbackLoaded struct {
	Token    uint64
	Feedback models.Feedback
}

func (a FeedbackLoaded) apply(s State) (State, error) {
	if err := checkToken(s, a.Token); err != nil {
		return s, err
	}
	if s.Panel != PanelFeedback {
		return s, invalid(a, s.Panel)
	}

	fb := a.Feedback
	s.Feedback = &fb
	s.Loading = false
	s.FeedbackError = ""
	return s, nil
}

// FeedbackFailed replaces the loading placeholder with the inline error
type FeedbackFailed struct {
	Token uint64
}

func (a FeedbackFailed) apply(s State) (State, error) {
	if err := checkToken(s, a.Token); err != nil {
		return s, err
	}
	if s.Panel != PanelFeedback {
		return s, invalid(a, s.Panel)
	}

	s.Loading = false
	s.Feedback = nil
	s.FeedbackError = MessageFeedbackError
	return s, nil
}

// TryAgain returns from feedback to the code panel keeping challenge and code
type TryAgain struct{}

func (a TryAgain) apply(s State) (State, error) {
	if s.Panel != PanelFeedback {
		return s, invalid(a, s.Panel)
	}

	s.Token++
	s.Panel = PanelDetail
	s.Loading = false
	s.Feedback = nil
	s.FeedbackError = ""
	return s, nil
}

// Back resets the flow and returns to the challenge list. It is accepted
// from every panel; from the listing it only clears leftovers.
type Back struct{}

func (a Back) apply(s State) (State, error) {
	s.Token++
	s.Panel = PanelListing
	s.Current = nil
	s.Code = ""
	s.SubmissionID = models.SubmissionID{}
	s.Loading = false
	s.Feedback = nil
	s.FeedbackError = ""
	return s, nil
}

// Notify raises a blocking notice without touching anything else
type Notify struct {
	Message string
}

func (a Notify) apply(s State) (State, error) {
	s.Notice = a.Message
	return s, nil
}

// DismissNotice clears the notice after it has been shown
type DismissNotice struct{}

func (a DismissNotice) apply(s State) (State, error) {
	s.Notice = ""
	return s, nil
}
