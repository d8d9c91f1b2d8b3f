package provider

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

	"jobscout/internal/config"
	"jobscout/internal/logging"
	"jobscout/pkg/models"
)

const (
	endpointSearch  = "search"
	endpointDetails = "job-details"

	maxBodyBytes = 10 << 20
)

// SearchRequest is one page fetch
type SearchRequest struct {
	Query    string
	Page     int
	NumPages int
	Filters  models.Filters
}

// SearchResult is one page of postings plus the provider's total. When the
// response carries no total_jobs, TotalUnknown is set and TotalJobs is the
// number of items received.
type SearchResult struct {
	Items        []models.JobPosting
	TotalJobs    int
	TotalUnknown bool
}

// ConnectionStatus is the outcome of CheckConnection
type ConnectionStatus struct {
	OK         bool          `json:"ok"`
	StatusCode int           `json:"status_code,omitempty"`
	Message    string        `json:"message"`
	Latency    time.Duration `json:"latency"`
	CheckedAt  time.Time     `json:"checked_at"`
}

// Config holds what the client needs to reach the provider
type Config struct {
	BaseURL   string
	APIKey    string
	APIHost   string
	NumPages  int
	Timeout   time.Duration
	RateLimit int // requests per minute
	Burst     int

	HTTPClient *http.Client

	// OnRateLimited is invoked after every 429 so callers may back off
	OnRateLimited func(endpoint string, retryAfter time.Duration)
}

// ConfigFrom extracts the provider settings from the application config
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		BaseURL:   cfg.Provider.BaseURL,
		APIKey:    cfg.Provider.APIKey,
		APIHost:   cfg.Provider.APIHost,
		NumPages:  cfg.Provider.NumPages,
		Timeout:   cfg.Provider.Timeout,
		RateLimit: cfg.Provider.RateLimit,
		Burst:     cfg.Provider.Burst,
	}
}

// Client is a stateless wrapper around the job search provider. It is safe
// for concurrent use.
type Client struct {
	baseURL  string
	apiKey   string
	apiHost  string
	numPages int
	http     *http.Client
	throttle *Throttle
	logger   logging.Logger

	onRateLimited func(endpoint string, retryAfter time.Duration)
}

// NewClient creates a provider client
func NewClient(cfg Config, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.NumPages < 1 {
		cfg.NumPages = 1
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		apiHost:       cfg.APIHost,
		numPages:      cfg.NumPages,
		http:          httpClient,
		throttle:      NewThrottle(cfg.RateLimit, cfg.Burst, logger),
		logger:        logger.WithField("component", "provider"),
		onRateLimited: cfg.OnRateLimited,
	}
}

// NumPages is the page span requested per call when a request leaves it unset
func (c *Client) NumPages() int {
	return c.numPages
}

// Stats exposes the throttle counters
func (c *Client) Stats() Stats {
	return c.throttle.Stats()
}

type searchEnvelope struct {
	Status    string          `json:"status"`
	Data      json.RawMessage `json:"data"`
	TotalJobs *int            `json:"total_jobs"`
}

// Search fetches one page of postings. The query must already be normalized.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, invalidArgument(endpointSearch, "query is required")
	}
	if req.Page < 1 {
		return nil, invalidArgument(endpointSearch, fmt.Sprintf("page must be >= 1, got %d", req.Page))
	}
	if req.NumPages < 1 {
		req.NumPages = c.numPages
	}

	body, err := c.get(ctx, endpointSearch, searchParams(req))
	if err != nil {
		return nil, err
	}

	var env searchEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, c.malformed(ctx, endpointSearch, err)
	}

	var items []models.JobPosting
	if !isEmptyJSON(env.Data) {
		if err := json.Unmarshal(env.Data, &items); err != nil {
			return nil, c.malformed(ctx, endpointSearch, err)
		}
	}
	if items == nil {
		items = []models.JobPosting{}
	}

	total, unknown := len(items), env.TotalJobs == nil
	if !unknown {
		total = *env.TotalJobs
	}

	c.logger.WithContext(ctx).Debug("Provider search completed", map[string]interface{}{
		"query":       req.Query,
		"page":        req.Page,
		"items":       len(items),
		"total_jobs":  total,
		"total_known": !unknown,
	})

	return &SearchResult{Items: items, TotalJobs: total, TotalUnknown: unknown}, nil
}

// GetDetails fetches a single posting with its full description
func (c *Client) GetDetails(ctx context.Context, jobID string) (*models.JobPosting, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, invalidArgument(endpointDetails, "job id is required")
	}

	params := url.Values{}
	params.Set("job_id", jobID)

	body, err := c.get(ctx, endpointDetails, params)
	if err != nil {
		return nil, err
	}

	var env searchEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, c.malformed(ctx, endpointDetails, err)
	}

	job, err := decodeDetail(env.Data)
	if err != nil {
		return nil, c.malformed(ctx, endpointDetails, err)
	}
	if job == nil {
		return nil, &Error{
			Kind:       KindProvider,
			Op:         endpointDetails,
			StatusCode: http.StatusNotFound,
			Payload:    fmt.Sprintf("job %s not found", jobID),
		}
	}
	return job, nil
}

// decodeDetail accepts data as an object or an array holding the posting
func decodeDetail(data json.RawMessage) (*models.JobPosting, error) {
	if isEmptyJSON(data) {
		return nil, nil
	}

	trimmed := bytes.TrimSpace(data)
	if trimmed[0] == '[' {
		var items []models.JobPosting
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return nil, nil
		}
		return &items[0], nil
	}

	var job models.JobPosting
	if err := json.Unmarshal(trimmed, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CheckConnection probes the provider with a minimal search. It never
// returns an error; failures are reported through the status.
func (c *Client) CheckConnection(ctx context.Context) ConnectionStatus {
	status := ConnectionStatus{CheckedAt: time.Now().UTC()}

	if c.apiKey == "" {
		status.Message = "provider API key is not configured"
		return status
	}

	start := time.Now()
	_, err := c.Search(ctx, SearchRequest{Query: "developer", Page: 1, NumPages: 1})
	status.Latency = time.Since(start)

	if err != nil {
		status.Message = err.Error()
		if pe, ok := AsError(err); ok {
			status.StatusCode = pe.StatusCode
		}
		return status
	}

	status.OK = true
	status.StatusCode = http.StatusOK
	status.Message = "provider reachable"
	return status
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	if err := c.throttle.Wait(ctx, endpoint); err != nil {
		return nil, c.fail(ctx, transportError(endpoint, err))
	}

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, c.fail(ctx, transportError(endpoint, err))
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-RapidAPI-Key", c.apiKey)
	}
	if c.apiHost != "" {
		req.Header.Set("X-RapidAPI-Host", c.apiHost)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.throttle.Record(endpoint, 0, true)
		return nil, c.fail(ctx, transportError(endpoint, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.throttle.Record(endpoint, resp.StatusCode, true)
		return nil, c.fail(ctx, transportError(endpoint, fmt.Errorf("read body: %w", err)))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.throttle.Record(endpoint, resp.StatusCode, true)
		return nil, c.fail(ctx, statusError(endpoint, resp, body))
	}

	c.throttle.Record(endpoint, resp.StatusCode, false)
	return body, nil
}

// fail logs the error and fires the rate limit hook when relevant
func (c *Client) fail(ctx context.Context, e *Error) *Error {
	fields := map[string]interface{}{
		"endpoint":    e.Op,
		"kind":        e.Kind.String(),
		"status_code": e.StatusCode,
		"error":       e.Error(),
	}
	logger := c.logger.WithContext(ctx)

	if e.Kind == KindRateLimited {
		fields["retry_after"] = e.RetryAfter.String()
		logger.Warn("Provider rate limited", fields)
		if c.onRateLimited != nil {
			c.onRateLimited(e.Op, e.RetryAfter)
		}
		return e
	}

	if errors.Is(e.Err, context.Canceled) {
		logger.Debug("Provider request canceled", fields)
		return e
	}

	logger.Error("Provider request failed", fields)
	return e
}

func (c *Client) malformed(ctx context.Context, endpoint string, err error) *Error {
	c.throttle.Record(endpoint, http.StatusOK, true)
	return c.fail(ctx, &Error{
		Kind:       KindProvider,
		Op:         endpoint,
		StatusCode: http.StatusOK,
		Payload:    "malformed response body",
		Err:        err,
	})
}

func searchParams(req SearchRequest) url.Values {
	params := url.Values{}
	params.Set("query", req.Query)
	params.Set("page", strconv.Itoa(req.Page))
	params.Set("num_pages", strconv.Itoa(req.NumPages))

	f := req.Filters
	if f.DatePosted != "" {
		params.Set("date_posted", string(f.DatePosted))
	}
	if f.RemoteJobsOnly {
		params.Set("remote_jobs_only", "true")
	}
	if f.EmploymentType != "" {
		params.Set("employment_types", f.EmploymentType)
	}
	if f.JobRequirements != "" {
		params.Set("job_requirements", f.JobRequirements)
	}
	if f.JobCategory != "" {
		params.Set("job_titles", f.JobCategory)
	}
	if f.CompanyTypes != "" {
		params.Set("company_types", f.CompanyTypes)
	}
	return params
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
