// Package sheerid wraps the SheerID eligibility-verification REST API for
// the military/veteran submission flow.
package sheerid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/restuaku/vet/internal/domain"
	"github.com/restuaku/vet/internal/metrics"
)

const (
	DefaultBaseURL = "https://services.sheerid.com"

	requestTimeout = 10 * time.Second
	maxBodySnippet = 200
)

// submissionOptIn is the consent text the provider expects alongside the
// personal-info payload.
const submissionOptIn = "By submitting the personal information above, I acknowledge that my personal " +
	"information is being collected under the privacy policy of the business from " +
	"which I am seeking a discount, and I understand that my personal information " +
	"will be shared with SheerID as a processor/third-party service provider in " +
	"order for SheerID to confirm my eligibility for a special offer."

// metadataFlags mirrors the flag set the provider's own web widget submits.
const metadataFlags = `{"doc-upload-considerations":"default","doc-upload-may24":"default","doc-upload-redesign-use-legacy-message-keys":false,"docUpload-assertion-checklist":"default","include-cvec-field-france-student":"not-labeled-optional","org-search-overlay":"default","org-selected-display":"default"}`

// StatusError is a non-success HTTP response from the provider, carrying the
// status code and a truncated body for diagnostics.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: %d %s", e.Endpoint, e.Code, e.Body)
}

// Client is a stateless HTTP client for the verification provider.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type collectStatusResponse struct {
	SubmissionURL string `json:"submissionUrl"`
}

type personalInfoPayload struct {
	FirstName     string              `json:"firstName"`
	LastName      string              `json:"lastName"`
	BirthDate     string              `json:"birthDate"`
	Email         string              `json:"email"`
	PhoneNumber   string              `json:"phoneNumber"`
	Organization  domain.Organization `json:"organization"`
	DischargeDate string              `json:"dischargeDate"`
	Locale        string              `json:"locale"`
	Country       string              `json:"country"`
	Metadata      map[string]any      `json:"metadata"`
}

// Submit runs the two-step submission: declare the military status, then
// post the personal-info payload to the server-provided submissionUrl.
// It never attempts step two when step one failed.
func (c *Client) Submit(ctx context.Context, req domain.SubmitRequest) error {
	start := time.Now()
	defer func() {
		metrics.UpstreamRequestDuration.WithLabelValues("sheerid_submit").Observe(time.Since(start).Seconds())
	}()

	statusURL := fmt.Sprintf("%s/rest/v2/verification/%s/step/collectMilitaryStatus", c.baseURL, req.VerificationID)
	var statusResp collectStatusResponse
	if err := c.postJSON(ctx, "collectMilitaryStatus", statusURL, map[string]any{"status": req.Status}, &statusResp); err != nil {
		return err
	}

	if statusResp.SubmissionURL == "" {
		return fmt.Errorf("no submissionUrl from collectMilitaryStatus: verification id is stale or invalid")
	}

	payload := personalInfoPayload{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		BirthDate:     req.BirthDate,
		Email:         req.Email,
		PhoneNumber:   req.Phone,
		Organization:  req.Organization,
		DischargeDate: req.DischargeDate,
		Locale:        "en-US",
		Country:       "US",
		Metadata: map[string]any{
			"marketConsentValue": false,
			"refererUrl":         "",
			"verificationId":     req.VerificationID,
			"flags":              metadataFlags,
			"submissionOptIn":    submissionOptIn,
		},
	}

	return c.postJSON(ctx, "collectPersonalInfo", statusResp.SubmissionURL, payload, nil)
}

// CheckStatus reports the provider-side workflow step for a verification.
// It never fails upward: any transport or decode problem degrades the step
// to domain.UnknownStep.
func (c *Client) CheckStatus(ctx context.Context, verificationID string) domain.StatusInfo {
	unknown := domain.StatusInfo{Step: domain.UnknownStep}

	url := fmt.Sprintf("%s/rest/v2/verification/%s", c.baseURL, verificationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return unknown
	}

	resp, err := c.http.Do(req)
	if err != nil {
		slog.WarnContext(ctx, "Status check failed", "verification_id", verificationID, "error", err)
		return unknown
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.WarnContext(ctx, "Status check returned non-200", "verification_id", verificationID, "status", resp.StatusCode)
		return unknown
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		slog.WarnContext(ctx, "Status check decode failed", "verification_id", verificationID, "error", err)
		return unknown
	}

	step, _ := raw["currentStep"].(string)
	if step == "" {
		step = domain.UnknownStep
	}
	return domain.StatusInfo{Step: step, Raw: raw}
}

func (c *Client) postJSON(ctx context.Context, endpoint, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("%w: %s", domain.ErrUpstreamTimeout, endpoint)
		}
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: truncate(string(raw), maxBodySnippet)}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
