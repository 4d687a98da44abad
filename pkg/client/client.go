// Package client is a small HTTP client for the PROVIQUIZ API, covering the
// calls a student makes: login, start an exam and submit it.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ntwari02/proviQuiz/internal/models"

	"github.com/valyala/fasthttp"
)

const (
	DefaultBaseURL = "http://localhost:5000/api"
	defaultTimeout = 15 * time.Second

	IdempotencyHeader = "Idempotency-Key"
)

type User struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name,omitempty"`
	Role  models.Role `json:"role,omitempty"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type StartExamParams struct {
	Limit       int
	RangeStart  int
	RangeEnd    int
	ImageFilter models.ImageFilter
}

func (p StartExamParams) query() string {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.RangeStart > 0 {
		q.Set("rangeStart", strconv.Itoa(p.RangeStart))
	}
	if p.RangeEnd > 0 {
		q.Set("rangeEnd", strconv.Itoa(p.RangeEnd))
	}
	if p.ImageFilter != "" {
		q.Set("imageFilter", string(p.ImageFilter))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

type StartExamResponse struct {
	Questions      []models.Question `json:"questions"`
	Limit          int               `json:"limit"`
	TotalAvailable int               `json:"totalAvailable"`
}

type SubmitExamResponse struct {
	ExamID          string                `json:"examId"`
	Score           int                   `json:"score"`
	TotalQuestions  int                   `json:"totalQuestions"`
	DurationSeconds int                   `json:"durationSeconds"`
	Answers         []models.GradedAnswer `json:"answers"`
	Passed          bool                  `json:"passed"`

	// Created is false when the server returned an earlier submission for
	// the same idempotency key.
	Created bool `json:"-"`
}

// APIError is a failed call. Err is set for transport failures, StatusCode
// and the body fields for error responses.
type APIError struct {
	StatusCode int
	Message    string
	ErrorText  string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Message != "" {
		return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
	}
	if e.ErrorText != "" {
		return fmt.Sprintf("%d: %s", e.StatusCode, e.ErrorText)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.Err }

// ErrorMessage picks the text to show a user for err: the server message,
// then its error field, then the transport error.
func ErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Message != "":
			return apiErr.Message
		case apiErr.ErrorText != "":
			return apiErr.ErrorText
		case apiErr.Err != nil && apiErr.Err.Error() != "":
			return apiErr.Err.Error()
		}
		return "Request failed."
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return "Something went wrong."
}

type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *fasthttp.Client
}

type Option func(*Client)

// WithHTTPClient swaps the transport, mostly for tests.
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
		http:    &fasthttp.Client{Name: "proviquiz-client"},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Token() string { return c.token }

func buildRequest(req *fasthttp.Request, method, uri, token string, body []byte) {
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}
}

// do sends one request and decodes a 2xx body into out. It returns the status.
func (c *Client) do(method, path string, in, out any, headers map[string]string) (int, error) {
	var body []byte
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, &APIError{Err: fmt.Errorf("failed to encode request: %w", err)}
		}
		body = raw
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	buildRequest(req, method, c.baseURL+path, c.token, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if err := c.http.DoTimeout(req, resp, c.timeout); err != nil {
		return 0, &APIError{Err: err}
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		apiErr := &APIError{StatusCode: status}
		var payload struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(resp.Body(), &payload) == nil {
			apiErr.Message = payload.Message
			apiErr.ErrorText = payload.Error
		}
		return status, apiErr
	}

	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return status, &APIError{StatusCode: status, Err: fmt.Errorf("failed to decode response: %w", err)}
		}
	}
	return status, nil
}

// Login signs in and keeps the token for later calls.
func (c *Client) Login(email, password string) (*AuthResponse, error) {
	var out AuthResponse
	in := models.LoginRequest{Email: email, Password: password}
	if _, err := c.do(fasthttp.MethodPost, "/auth/login", in, &out, nil); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

func (c *Client) StartExam(params StartExamParams) (*StartExamResponse, error) {
	var out StartExamResponse
	if _, err := c.do(fasthttp.MethodGet, "/exams/start"+params.query(), nil, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitExam posts a finished attempt. A non-empty key is sent as the
// idempotency header so a retry returns the first submission.
func (c *Client) SubmitExam(req *models.SubmitExamRequest, key string) (*SubmitExamResponse, error) {
	var headers map[string]string
	if key != "" {
		headers = map[string]string{IdempotencyHeader: key}
	}
	var out SubmitExamResponse
	status, err := c.do(fasthttp.MethodPost, "/exams/submit", req, &out, headers)
	if err != nil {
		return nil, err
	}
	out.Created = status == fasthttp.StatusCreated
	return &out, nil
}
