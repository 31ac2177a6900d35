// Package client is a Go SDK for the coding-tracker backend API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/terra-clan/coding-tracker/internal/models"
)

// DefaultTimeout bounds every request unless overridden
const DefaultTimeout = 30 * time.Second

// ErrRejected is returned when a 2xx answer says success=false or lacks its payload
var ErrRejected = errors.New("request rejected by backend")

// APIError is a non-2xx answer from the backend
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s - %s", e.StatusCode, e.Code, e.Message)
}

// Client talks to the backend over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new backend client. baseURL is the scheme and host
// the /api paths are appended to.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListChallenges fetches the whole challenge catalog
func (c *Client) ListChallenges(ctx context.Context) ([]*models.Challenge, error) {
	var challenges []*models.Challenge
	if err := c.do(ctx, http.MethodGet, "/api/problems", nil, &challenges); err != nil {
		return nil, err
	}
	return challenges, nil
}

// GetChallenge fetches one challenge
func (c *Client) GetChallenge(ctx context.Context, id string) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := c.do(ctx, http.MethodGet, "/api/problems/"+url.PathEscape(id), nil, &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}

// submitResult and feedbackResult accept the minimal backend bodies:
// "success" may be omitted and only an explicit false is a rejection.
type submitResult struct {
	Success      *bool               `json:"success"`
	SubmissionID models.SubmissionID `json:"submission_id"`
	Message      string              `json:"message"`
}

type feedbackResult struct {
	Success  *bool            `json:"success"`
	Feedback *models.Feedback `json:"feedback"`
}

func rejected(success *bool) bool {
	return success != nil && !*success
}

// Submit sends code for a challenge
func (c *Client) Submit(ctx context.Context, req models.SubmitRequest) (*models.SubmitResponse, error) {
	var result submitResult
	if err := c.do(ctx, http.MethodPost, "/api/submit", req, &result); err != nil {
		return nil, err
	}

	if rejected(result.Success) {
		if result.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrRejected, result.Message)
		}
		return nil, ErrRejected
	}
	if result.SubmissionID.IsZero() {
		return nil, fmt.Errorf("%w: response carried no submission id", ErrRejected)
	}

	return &models.SubmitResponse{
		Success:      true,
		SubmissionID: result.SubmissionID,
		Message:      result.Message,
	}, nil
}

// Feedback asks the backend to evaluate a submission. The identifier is sent
// back exactly as the submit call returned it.
func (c *Client) Feedback(ctx context.Context, submissionID models.SubmissionID) (*models.Feedback, error) {
	var result feedbackResult
	req := models.FeedbackRequest{SubmissionID: submissionID}
	if err := c.do(ctx, http.MethodPost, "/api/feedback", req, &result); err != nil {
		return nil, err
	}

	if rejected(result.Success) {
		return nil, ErrRejected
	}
	if result.Feedback == nil {
		return nil, fmt.Errorf("%w: response carried no feedback", ErrRejected)
	}

	return result.Feedback, nil
}

// RecentSubmissions lists the newest submissions
func (c *Client) RecentSubmissions(ctx context.Context, limit int) ([]*models.Submission, error) {
	path := "/api/submissions"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var submissions []*models.Submission
	if err := c.do(ctx, http.MethodGet, path, nil, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

// Health checks the liveness endpoint
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, parseAPIError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

func parseAPIError(status int, body []byte) *APIError {
	var envelope struct {
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	apiErr := &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}
