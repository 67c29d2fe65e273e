// Package marketo talks to the event-marketing REST API the device mirrors
// from. All calls are request scoped, carry the stored access token and
// retry transport failures with capped exponential backoff. Merge logic
// stays retry-agnostic, this boundary is the only place that retries.
package marketo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/checkin-tools/checkin-manager/internal/errdef"
)

const maxRetries = 2

func NewClient(logger *slog.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		logger:  logger,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type Client struct {
	logger  *slog.Logger
	baseURL string
	client  *http.Client
}

// ProgramPayload is the event metadata record as the remote service sends it.
type ProgramPayload struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	URL         string `json:"url"`
	Type        string `json:"type"`
	Channel     string `json:"channel"`
	Workspace   string `json:"workspace"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

// LeadPayload is one roster member. Membership is nil when the remote service
// omits the relationship payload.
type LeadPayload struct {
	ID           uint               `json:"id"`
	FirstName    string             `json:"firstName"`
	LastName     string             `json:"lastName"`
	Email        string             `json:"email"`
	Company      string             `json:"company"`
	Phone        string             `json:"phone"`
	Unsubscribed bool               `json:"unsubscribed"`
	CreatedAt    string             `json:"createdAt"`
	UpdatedAt    string             `json:"updatedAt"`
	Membership   *MembershipPayload `json:"membership"`
}

type MembershipPayload struct {
	ProgressionStatus string `json:"progressionStatus"`
	MembershipDate    string `json:"membershipDate"`
}

// Lead is the outbound shape for createOrUpdate pushes.
type Lead struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Company      string `json:"company,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Unsubscribed bool   `json:"unsubscribed"`
}

type envelope struct {
	Success   bool            `json:"success"`
	RequestID string          `json:"requestId"`
	Result    json.RawMessage `json:"result"`
	Errors    []remoteError   `json:"errors"`
}

type remoteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FetchEvent returns the metadata of one remote program.
func (c Client) FetchEvent(ctx context.Context, token string, eventID uint) (*ProgramPayload, error) {
	path := fmt.Sprintf("/rest/asset/v1/program/%d.json", eventID)

	body, err := c.get(ctx, token, path)
	if err != nil {
		return nil, err
	}

	var programs []ProgramPayload
	if err := json.Unmarshal(body, &programs); err != nil {
		return nil, fmt.Errorf("failed to decode program %d: %v", eventID, err)
	}
	if len(programs) == 0 {
		return nil, errdef.NewNotFound("program %d not found", eventID)
	}

	return &programs[0], nil
}

// FetchRoster returns the attendee roster of one remote program. An empty
// roster is a legal result.
func (c Client) FetchRoster(ctx context.Context, token string, eventID uint) ([]LeadPayload, error) {
	path := fmt.Sprintf("/rest/v1/leads/programs/%d.json", eventID)

	body, err := c.get(ctx, token, path)
	if err != nil {
		return nil, err
	}

	var leads []LeadPayload
	if err := json.Unmarshal(body, &leads); err != nil {
		return nil, fmt.Errorf("failed to decode roster of program %d: %v", eventID, err)
	}

	return leads, nil
}

type pushLeadRequest struct {
	Action        string `json:"action"`
	PartitionName string `json:"partitionName,omitempty"`
	LookupField   string `json:"lookupField"`
	Input         []Lead `json:"input"`
}

type pushLeadResult struct {
	ID     uint   `json:"id"`
	Status string `json:"status"`
}

// PushLead creates or updates one lead upstream, looked up by email and
// scoped to the given workspace. It returns the remote lead id.
func (c Client) PushLead(ctx context.Context, token, workspace string, lead Lead) (uint, error) {
	request := pushLeadRequest{
		Action:        "createOrUpdate",
		PartitionName: workspace,
		LookupField:   "email",
		Input:         []Lead{lead},
	}

	body, err := c.post(ctx, token, "/rest/v1/leads.json", request)
	if err != nil {
		return 0, err
	}

	var results []pushLeadResult
	if err := json.Unmarshal(body, &results); err != nil {
		return 0, fmt.Errorf("failed to decode lead push result: %v", err)
	}
	if len(results) == 0 || results[0].ID == 0 {
		return 0, fmt.Errorf("remote accepted lead %q but returned no id", lead.Email)
	}

	return results[0].ID, nil
}

type changeStatusRequest struct {
	StatusName string             `json:"statusName"`
	Input      []changeStatusLead `json:"input"`
}

type changeStatusLead struct {
	LeadID uint `json:"leadId"`
}

// ChangeStatus moves one lead to the given progression status within a
// program. The boolean mirrors the remote success indicator.
func (c Client) ChangeStatus(ctx context.Context, token string, eventID, leadID uint, status string) (bool, error) {
	path := fmt.Sprintf("/rest/v1/programs/%d/members/status.json", eventID)
	request := changeStatusRequest{
		StatusName: status,
		Input:      []changeStatusLead{{LeadID: leadID}},
	}

	_, err := c.post(ctx, token, path, request)
	if err != nil {
		return false, err
	}

	return true, nil
}

func (c Client) get(ctx context.Context, token, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, token, path, nil)
}

func (c Client) post(ctx context.Context, token, path string, request any) (json.RawMessage, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request for %s: %v", path, err)
	}
	return c.do(ctx, http.MethodPost, token, path, payload)
}

// do issues one request, unwraps the response envelope and returns the raw
// result. Transport failures and server errors are retried up to maxRetries
// times, client errors never are.
func (c Client) do(ctx context.Context, method, token, path string, payload []byte) (json.RawMessage, error) {
	requestURL := fmt.Sprintf("%s%s?access_token=%s", c.baseURL, path, url.QueryEscape(token))

	var result json.RawMessage
	operation := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		request, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		if payload != nil {
			request.Header.Set("Content-Type", "application/json")
		}

		response, err := c.client.Do(request)
		if err != nil {
			c.logger.WarnContext(ctx, "Request failed", "method", method, "path", path, "error", err)
			return errdef.NewUnavailable("failed to reach remote service: %v", err)
		}
		defer func() {
			_ = response.Body.Close()
		}()

		body, err := io.ReadAll(response.Body)
		if err != nil {
			return errdef.NewUnavailable("failed to read response of %s: %v", path, err)
		}

		if response.StatusCode >= http.StatusInternalServerError {
			c.logger.WarnContext(ctx, "Remote server error", "method", method, "path", path, "status", response.StatusCode)
			return errdef.NewUnavailable("remote service returned %d for %s", response.StatusCode, path)
		}
		if response.StatusCode == http.StatusUnauthorized {
			return backoff.Permanent(errdef.NewUnauthorized("remote service rejected the access token"))
		}
		if response.StatusCode >= http.StatusBadRequest {
			return backoff.Permanent(fmt.Errorf("remote service returned %d for %s: %s", response.StatusCode, path, body))
		}

		var e envelope
		if err := json.Unmarshal(body, &e); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response of %s: %v", path, err))
		}
		if !e.Success {
			return backoff.Permanent(c.remoteError(path, e))
		}

		result = e.Result
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		return nil, err
	}

	return result, nil
}

// Token errors use the remote service's numeric codes, 601 is invalid and
// 602 is expired.
func (c Client) remoteError(path string, e envelope) error {
	for _, remoteErr := range e.Errors {
		if remoteErr.Code == "601" || remoteErr.Code == "602" {
			return errdef.NewUnauthorized("remote service rejected the access token: %s", remoteErr.Message)
		}
	}

	if len(e.Errors) > 0 {
		return fmt.Errorf("remote service reported failure for %s: %s (code %s)", path, e.Errors[0].Message, e.Errors[0].Code)
	}
	return fmt.Errorf("remote service reported failure for %s", path)
}
