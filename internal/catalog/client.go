package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultCourseURL       = "https://letankim.id.vn/?act=get_courses"
	DefaultQuestionBaseURL = "https://letankim.id.vn/3do_resources"
)

// Source is what the screens need from the course directory and question
// bank. *Client implements it.
type Source interface {
	ListCourses(ctx context.Context) ([]Course, error)
	LoadQuestions(ctx context.Context, file string) []Question
}

var _ Source = (*Client)(nil)

// Client talks to the course directory and the question bank.
type Client struct {
	httpClient      *http.Client
	courseURL       string
	questionBaseURL string
	logger          *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for all requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithCourseURL overrides the course directory endpoint.
func WithCourseURL(u string) Option {
	return func(cl *Client) { cl.courseURL = u }
}

// WithQuestionBaseURL overrides the base URL question bank files live under.
func WithQuestionBaseURL(u string) Option {
	return func(cl *Client) { cl.questionBaseURL = strings.TrimRight(u, "/") }
}

// WithLogger sets the logger for degraded failures.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// NewClient creates a Client with the default endpoints.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		courseURL:       DefaultCourseURL,
		questionBaseURL: DefaultQuestionBaseURL,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type courseListResponse struct {
	Success bool     `json:"success"`
	Data    []Course `json:"data"`
}

// ListCourses fetches the course directory. A response with success=false
// yields an empty list.
func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.courseURL, strings.NewReader("{}"))
	if err != nil {
		return nil, errors.Wrap(err, "build course request")
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch courses")
	}

	var resp courseListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrap(err, "decode courses")
	}
	if !resp.Success {
		return []Course{}, nil
	}
	return resp.Data, nil
}

// FetchQuestions downloads and decodes the question bank stored at file.
func (c *Client) FetchQuestions(ctx context.Context, file string) ([]Question, error) {
	url := c.questionBaseURL + "/" + strings.TrimLeft(file, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build question request for %s", file)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch questions %s", file)
	}

	qs, skipped, err := decodeBank(body)
	if err != nil {
		return nil, errors.Wrapf(err, "questions %s", file)
	}
	if skipped > 0 {
		c.logger.Warn("skipped malformed questions", "file", file, "count", skipped)
	}
	return qs, nil
}

// LoadQuestions is FetchQuestions with failures degraded to an empty
// catalog. Callers render zero questions as a "not found" state.
func (c *Client) LoadQuestions(ctx context.Context, file string) []Question {
	qs, err := c.FetchQuestions(ctx, file)
	if err != nil {
		c.logger.Warn("question bank unavailable", "file", file, "error", err)
		return []Question{}
	}
	return qs
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, req.URL)
	}
	return io.ReadAll(resp.Body)
}
