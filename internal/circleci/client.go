// Package circleci implements the export API against the CircleCI REST
// surface. The remote system owns all job state; this client only
// transports and decodes.
package circleci

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"usage-report/internal/apperrors"
	"usage-report/internal/export"
	"usage-report/internal/observability"
)

// DefaultBaseURL is the public CircleCI API host.
const DefaultBaseURL = "https://circleci.com"

// Client talks to the CircleCI API.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	metrics *observability.Metrics
	logger  *slog.Logger
}

var _ export.API = (*Client)(nil)

// NewClient creates a CircleCI API client. An empty baseURL falls back
// to the public host; a non-positive timeout falls back to 30s.
func NewClient(baseURL, token string, timeout time.Duration, metrics *observability.Metrics) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
		metrics: metrics,
		logger:  slog.With("component", "circleci-client"),
	}
}

// Wire shapes for the usage-export endpoints.
type createJobRequest struct {
	Start        string   `json:"start"`
	End          string   `json:"end"`
	SharedOrgIDs []string `json:"shared_org_ids"`
}

type createJobResponse struct {
	JobID string `json:"usage_export_job_id"`
}

type jobStatusResponse struct {
	State        string   `json:"state"`
	DownloadURLs []string `json:"download_urls"`
}

type sharedOrgsResponse struct {
	Orgs []export.Org `json:"orgs"`
}

// CreateUsageExportJob submits a new usage export job.
func (c *Client) CreateUsageExportJob(ctx context.Context, req *export.Request) (string, error) {
	const op = "createExportJob"

	body, err := json.Marshal(createJobRequest{
		Start:        req.Window.Start.Format(time.RFC3339),
		End:          req.Window.End.Format(time.RFC3339),
		SharedOrgIDs: req.SharedOrgIDs,
	})
	if err != nil {
		return "", apperrors.Transport(op, err)
	}

	url := fmt.Sprintf("%s/api/v2/organizations/%s/usage_export_job", c.baseURL, req.OrgID)
	status, respBody, err := c.do(ctx, op, http.MethodPost, url, body)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", apperrors.FromStatus(op, status, string(respBody))
	}

	var decoded createJobResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", apperrors.MalformedResponse(op, err)
	}
	if decoded.JobID == "" {
		return "", apperrors.MalformedResponse(op, fmt.Errorf("missing usage_export_job_id in response"))
	}
	return decoded.JobID, nil
}

// GetUsageExportJob fetches the current status of a submitted job. The
// undecoded body rides along as the diagnostic payload.
func (c *Client) GetUsageExportJob(ctx context.Context, orgID, jobID string) (*export.JobStatus, error) {
	const op = "getExportJob"

	url := fmt.Sprintf("%s/api/v2/organizations/%s/usage_export_job/%s", c.baseURL, orgID, jobID)
	status, respBody, err := c.do(ctx, op, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apperrors.FromStatus(op, status, string(respBody))
	}

	var decoded jobStatusResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, apperrors.MalformedResponse(op, err)
	}
	if decoded.State == "" {
		return nil, apperrors.MalformedResponse(op, fmt.Errorf("missing state in response"))
	}

	return &export.JobStatus{
		State:        export.ParseState(decoded.State),
		DownloadURLs: decoded.DownloadURLs,
		Raw:          respBody,
	}, nil
}

// SharedPlanOrgs lists the organizations sharing the org's plan.
func (c *Client) SharedPlanOrgs(ctx context.Context, orgID string) ([]export.Org, error) {
	const op = "sharedPlanOrgs"

	url := fmt.Sprintf("%s/private/orgs/%s/plan/shares-for", c.baseURL, orgID)
	status, respBody, err := c.do(ctx, op, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apperrors.FromStatus(op, status, string(respBody))
	}

	var decoded sharedOrgsResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, apperrors.MalformedResponse(op, err)
	}
	return decoded.Orgs, nil
}

// Ready checks that the API is reachable and the token is accepted.
func (c *Client) Ready(ctx context.Context) error {
	const op = "me"

	status, respBody, err := c.do(ctx, op, http.MethodGet, c.baseURL+"/api/v2/me", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return apperrors.FromStatus(op, status, string(respBody))
	}
	return nil
}

// do issues one API request, records its metric, and classifies
// transport failures. Non-2xx statuses come back unclassified because
// expectations differ per endpoint (submission wants 201, the rest 200).
func (c *Client) do(ctx context.Context, op, method, url string, body []byte) (int, []byte, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, apperrors.Transport(op, err)
	}
	req.Header.Set("Circle-Token", c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordAPIRequest(ctx, op, 0, time.Since(start))
		return 0, nil, apperrors.Transport(op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	c.metrics.RecordAPIRequest(ctx, op, resp.StatusCode, duration)
	c.logger.Debug("api request",
		"operation", op,
		"status", resp.StatusCode,
		"duration", duration)
	if err != nil {
		return resp.StatusCode, nil, apperrors.Transport(op, err)
	}
	return resp.StatusCode, respBody, nil
}
