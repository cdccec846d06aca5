// Package adminlog reports flow milestones to an administrative Telegram
// chat. The sink is fire-and-forget: delivery failures are logged and
// swallowed so reporting can never stall or fail the verification flow.
package adminlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/restuaku/vet/internal/domain"
	"github.com/restuaku/vet/internal/platform/retry"
)

const defaultBaseURL = "https://api.telegram.org"

// Sink delivers audit messages via the Telegram Bot API. A zero-value or
// unconfigured Sink is valid and drops everything.
type Sink struct {
	baseURL string
	token   string
	chatID  int64
	http    *http.Client
}

// New builds a Sink. An empty token or zero chat ID yields a disabled sink.
func New(token string, chatID int64) *Sink {
	return &Sink{
		baseURL: defaultBaseURL,
		token:   token,
		chatID:  chatID,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *Sink) enabled() bool {
	return s != nil && s.token != "" && s.chatID != 0
}

func (s *Sink) FlowStarted(ctx context.Context, applicantID int64) {
	s.send(ctx, fmt.Sprintf("🎖 Applicant `%d` started a verification flow.", applicantID))
}

func (s *Sink) SubmissionResult(ctx context.Context, rec domain.SubmissionRecord) {
	if rec.Success {
		s.send(ctx, fmt.Sprintf(
			"✅ *Submission OK*\nApplicant: `%d`\nName: %s\nEmail: `%s`\nProvider step: `%s`",
			rec.ApplicantID, rec.FullName, rec.Email, rec.CurrentStep))
		return
	}
	s.send(ctx, fmt.Sprintf(
		"❌ *Submission FAILED*\nApplicant: `%d`\nName: %s\nEmail: `%s`\nProvider step: `%s`\nError: %s",
		rec.ApplicantID, rec.FullName, rec.Email, rec.CurrentStep, rec.ErrorMsg))
}

func (s *Sink) ConfirmationOutcome(ctx context.Context, applicantID int64, outcome domain.Outcome, detail string) {
	icon := "❓"
	switch outcome {
	case domain.OutcomeApproved:
		icon = "✅"
	case domain.OutcomeRejected:
		icon = "❌"
	case domain.OutcomeDocRequired:
		icon = "📄"
	case domain.OutcomePending:
		icon = "⏳"
	}
	s.send(ctx, fmt.Sprintf("%s *Confirmation outcome*\nApplicant: `%d`\nOutcome: `%s`\n%s",
		icon, applicantID, outcome, detail))
}

func (s *Sink) send(ctx context.Context, text string) {
	if !s.enabled() {
		return
	}

	policy := retry.Policy{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		Fixed:          true,
	}
	err := retry.DoVoid(ctx, policy, func(error) retry.Action { return retry.Retry }, func() error {
		return s.post(ctx, text)
	})
	if err != nil {
		slog.WarnContext(ctx, "Admin log delivery failed", "error", err)
	}
}

func (s *Sink) post(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]any{
		"chat_id":    s.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	})
	if err != nil {
		return fmt.Errorf("marshal sendMessage payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("sendMessage: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sendMessage returned status %d", resp.StatusCode)
	}
	return nil
}
