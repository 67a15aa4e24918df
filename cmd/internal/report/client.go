package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnavailable is returned when the report service cannot be reached
// or times out.
var ErrUnavailable = errors.New("report service unavailable")

// UpstreamError carries the status and detail of a report-service
// failure so the API layer can forward them.
type UpstreamError struct {
	Status int
	Detail string
}

func (e UpstreamError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("report service: status %d", e.Status)
	}
	return fmt.Sprintf("report service: status %d: %s", e.Status, e.Detail)
}

// Remark is the report service's response for one student.
type Remark struct {
	StudentDetail json.RawMessage `json:"student_detail"`
	AIRemark      string          `json:"ai_remark"`
	Meta          Meta            `json:"meta"`
}

// Meta describes how the remark was generated.
type Meta struct {
	Model            string `json:"model"`
	TokensUsed       int    `json:"tokens_used"`
	GenerationTimeMS int64  `json:"generation_time_ms"`
}

// Client fetches AI remarks over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a Client for the given base URL. A zero timeout
// defaults to 30 seconds; remark generation sits on an LLM call and is
// slow.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("report: empty base URL")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("report: invalid base URL: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// upstreamDetail mirrors the service's error envelope.
type upstreamDetail struct {
	Detail string `json:"detail"`
}

// GenerateRemark fetches the remark for a USN.
func (c *Client) GenerateRemark(ctx context.Context, usn string) (Remark, error) {
	usn = strings.TrimSpace(usn)
	if usn == "" {
		return Remark{}, errors.New("report: empty usn")
	}

	endpoint := c.baseURL + "/generate-remark/" + url.PathEscape(usn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Remark{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Remark{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body := io.LimitReader(resp.Body, 1<<20)

	if resp.StatusCode != http.StatusOK {
		var detail upstreamDetail
		_ = json.NewDecoder(body).Decode(&detail)
		return Remark{}, UpstreamError{Status: resp.StatusCode, Detail: detail.Detail}
	}

	var remark Remark
	if err := json.NewDecoder(body).Decode(&remark); err != nil {
		return Remark{}, fmt.Errorf("report: decode response: %w", err)
	}
	return remark, nil
}
