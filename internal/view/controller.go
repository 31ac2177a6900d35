package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/terra-clan/coding-tracker/internal/models"
)

// Backend is the HTTP contract the controller consumes
type Backend interface {
	ListChallenges(ctx context.Context) ([]*models.Challenge, error)
	Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmitResponse, error)
	Feedback(ctx context.Context, submissionID models.SubmissionID) (*models.Feedback, error)
}

// Controller drives per-session view state from user actions. Network calls
// run outside Store.Update; their results are applied afterwards and dropped
// when the flow they belong to has been abandoned. Feedback fetches run in
// the background so the loading panel can be rendered meanwhile.
type Controller struct {
	backend Backend
	store   Store

	pending sync.WaitGroup
}

// NewController creates a Controller
func NewController(backend Backend, store Store) *Controller {
	return &Controller{
		backend: backend,
		store:   store,
	}
}

// State returns the current state of a session
func (c *Controller) State(ctx context.Context, session string) (State, error) {
	return c.store.Load(ctx, session)
}

// Page prepares a session for rendering: it refreshes the challenge list
// when the listing is shown, then hands out the pending notice exactly once.
func (c *Controller) Page(ctx context.Context, session string) (State, error) {
	s, err := c.store.Load(ctx, session)
	if err != nil {
		return State{}, err
	}

	if s.Panel == PanelListing {
		if err := c.LoadChallenges(ctx, session); err != nil {
			return State{}, err
		}
	}

	var shown State
	_, err = c.store.Update(ctx, session, func(s State) (State, error) {
		shown = s
		return Reduce(s, DismissNotice{})
	})
	if err != nil {
		return State{}, err
	}
	return shown, nil
}

// LoadChallenges fetches the challenge list. Fetch failures become the
// inline list message and are not returned.
func (c *Controller) LoadChallenges(ctx context.Context, session string) error {
	s, err := c.store.Load(ctx, session)
	if err != nil {
		return err
	}

	var action Action
	challenges, err := c.backend.ListChallenges(ctx)
	if err != nil {
		slog.Warn("failed to load challenges", "session", session, "error", err)
		action = ChallengesFailed{Token: s.Token}
	} else {
		action = ChallengesLoaded{Token: s.Token, Challenges: challenges}
	}

	return c.dispatch(ctx, session, action)
}

// SelectChallenge opens the code panel for a challenge from the loaded list.
// It never touches the network.
func (c *Controller) SelectChallenge(ctx context.Context, session, challengeID string) error {
	err := c.dispatch(ctx, session, Select{ChallengeID: challengeID})
	if errors.Is(err, ErrUnknownChallenge) {
		return c.notify(ctx, session, NoticeNoChallenge)
	}
	return err
}

// SubmitCode sends the code for the current challenge and, on success,
// opens the loading panel and starts feedback retrieval in the background.
func (c *Controller) SubmitCode(ctx context.Context, session, code string, language models.Language) error {
	s, err := c.store.Load(ctx, session)
	if err != nil {
		return err
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return c.notify(ctx, session, NoticeEmptyCode)
	}
	if s.Current == nil {
		return c.notify(ctx, session, NoticeNoChallenge)
	}
	if s.Panel != PanelDetail {
		return fmt.Errorf("%w: submit from %s", ErrInvalidTransition, s.Panel)
	}
	if language == "" {
		language = models.DefaultLanguage
	}

	token := s.Token
	resp, err := c.backend.Submit(ctx, models.SubmitRequest{
		ChallengeID: s.Current.ID,
		Code:        code,
		Language:    language,
	})
	if err != nil {
		slog.Warn("submit failed", "session", session, "challenge_id", s.Current.ID, "error", err)
		return c.dispatch(ctx, session, SubmitFailed{Token: token, Code: code, Language: language})
	}

	slog.Debug("code submitted", "session", session, "submission_id", resp.SubmissionID.String())

	applied, err := c.apply(ctx, session, Submitted{
		Token:        token,
		SubmissionID: resp.SubmissionID,
		Code:         code,
		Language:     language,
	})
	if err != nil || !applied {
		return err
	}

	c.fetchFeedbackAsync(ctx, session, token, resp.SubmissionID)
	return nil
}

// GetFeedback (re)requests feedback for the current submission in the background
func (c *Controller) GetFeedback(ctx context.Context, session string) error {
	s, err := c.store.Load(ctx, session)
	if err != nil {
		return err
	}

	if s.SubmissionID.IsZero() {
		return c.notify(ctx, session, NoticeNoSubmission)
	}

	applied, err := c.apply(ctx, session, FeedbackRequested{Token: s.Token})
	if err != nil || !applied {
		return err
	}

	c.fetchFeedbackAsync(ctx, session, s.Token, s.SubmissionID)
	return nil
}

// TryAgain returns to the code panel keeping the current challenge
func (c *Controller) TryAgain(ctx context.Context, session string) error {
	return c.dispatch(ctx, session, TryAgain{})
}

// BackToChallenges resets the flow and shows the list again
func (c *Controller) BackToChallenges(ctx context.Context, session string) error {
	return c.dispatch(ctx, session, Back{})
}

// Wait blocks until every background feedback fetch has finished
func (c *Controller) Wait() {
	c.pending.Wait()
}

// fetchFeedbackAsync detaches the fetch from the request that started it.
// Its result is token-checked like any other continuation.
func (c *Controller) fetchFeedbackAsync(ctx context.Context, session string, token uint64, id models.SubmissionID) {
	ctx = context.WithoutCancel(ctx)

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		if err := c.fetchFeedback(ctx, session, token, id); err != nil {
			slog.Error("failed to record feedback", "session", session, "submission_id", id.String(), "error", err)
		}
	}()
}

func (c *Controller) fetchFeedback(ctx context.Context, session string, token uint64, id models.SubmissionID) error {
	feedback, err := c.backend.Feedback(ctx, id)
	if err != nil {
		slog.Warn("feedback request failed", "session", session, "submission_id", id.String(), "error", err)
		return c.dispatch(ctx, session, FeedbackFailed{Token: token})
	}

	return c.dispatch(ctx, session, FeedbackLoaded{Token: token, Feedback: *feedback})
}

func (c *Controller) notify(ctx context.Context, session, message string) error {
	return c.dispatch(ctx, session, Notify{Message: message})
}

// dispatch applies an action. Stale continuations are dropped silently.
func (c *Controller) dispatch(ctx context.Context, session string, a Action) error {
	_, err := c.apply(ctx, session, a)
	return err
}

// apply reports whether a took effect; a stale action is not an error.
func (c *Controller) apply(ctx context.Context, session string, a Action) (bool, error) {
	_, err := c.store.Update(ctx, session, func(s State) (State, error) {
		return Reduce(s, a)
	})
	if errors.Is(err, ErrStaleOperation) {
		slog.Debug("discarding stale result", "session", session, "action", fmt.Sprintf("%T", a), "error", err)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
