package mailbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/restuaku/vet/internal/domain"
	"github.com/restuaku/vet/internal/metrics"
)

const (
	DefaultMailTMBaseURL = "https://api.mail.tm"

	mailboxRequestTimeout = 10 * time.Second
)

// MailTM registers throwaway accounts against the mail.tm open relay:
// pick an available domain, create an account, exchange credentials for a
// bearer token.
type MailTM struct {
	baseURL string
	http    *http.Client
}

func NewMailTM(baseURL string) *MailTM {
	if baseURL == "" {
		baseURL = DefaultMailTMBaseURL
	}
	return &MailTM{
		baseURL: baseURL,
		http:    &http.Client{Timeout: mailboxRequestTimeout},
	}
}

type hydraDomains struct {
	Member []struct {
		Domain string `json:"domain"`
	} `json:"hydra:member"`
}

type hydraMessages struct {
	Member []struct {
		ID   string `json:"id"`
		From struct {
			Address string `json:"address"`
		} `json:"from"`
		Subject string `json:"subject"`
	} `json:"hydra:member"`
}

func (m *MailTM) Create(ctx context.Context) (*domain.Mailbox, error) {
	start := time.Now()
	defer func() {
		metrics.UpstreamRequestDuration.WithLabelValues("mailbox_create").Observe(time.Since(start).Seconds())
	}()

	var domains hydraDomains
	if err := m.do(ctx, http.MethodGet, "/domains", "", nil, &domains); err != nil {
		return nil, fmt.Errorf("failed to list mailbox domains: %w", err)
	}
	if len(domains.Member) == 0 {
		return nil, fmt.Errorf("no mailbox domains available")
	}

	address := strings.ReplaceAll(uuid.NewString(), "-", "")[:12] + "@" + domains.Member[0].Domain
	password := uuid.NewString()

	var account struct {
		ID string `json:"id"`
	}
	if err := m.do(ctx, http.MethodPost, "/accounts", "", map[string]string{
		"address":  address,
		"password": password,
	}, &account); err != nil {
		return nil, fmt.Errorf("failed to create mailbox account: %w", err)
	}

	var token struct {
		Token string `json:"token"`
	}
	if err := m.do(ctx, http.MethodPost, "/token", "", map[string]string{
		"address":  address,
		"password": password,
	}, &token); err != nil {
		return nil, fmt.Errorf("failed to obtain mailbox token: %w", err)
	}

	return &domain.Mailbox{
		Address:   address,
		Password:  password,
		Token:     token.Token,
		AccountID: account.ID,
	}, nil
}

func (m *MailTM) Poll(ctx context.Context, mb *domain.Mailbox) ([]domain.MessageSummary, error) {
	var messages hydraMessages
	if err := m.do(ctx, http.MethodGet, "/messages", mb.Token, nil, &messages); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	summaries := make([]domain.MessageSummary, 0, len(messages.Member))
	for _, msg := range messages.Member {
		summaries = append(summaries, domain.MessageSummary{
			ID:      msg.ID,
			From:    msg.From.Address,
			Subject: msg.Subject,
		})
	}
	return summaries, nil
}

func (m *MailTM) Fetch(ctx context.Context, mb *domain.Mailbox, messageID string) (domain.MessageBody, error) {
	var msg struct {
		Text string   `json:"text"`
		HTML []string `json:"html"`
	}
	if err := m.do(ctx, http.MethodGet, "/messages/"+messageID, mb.Token, nil, &msg); err != nil {
		return domain.MessageBody{}, fmt.Errorf("failed to fetch message %s: %w", messageID, err)
	}
	return domain.MessageBody{Text: msg.Text, HTML: strings.Join(msg.HTML, "\n")}, nil
}

func (m *MailTM) Delete(ctx context.Context, mb *domain.Mailbox) error {
	if mb.AccountID == "" {
		return nil
	}
	if err := m.do(ctx, http.MethodDelete, "/accounts/"+mb.AccountID, mb.Token, nil, nil); err != nil {
		return fmt.Errorf("failed to delete mailbox account: %w", err)
	}
	return nil
}

func (m *MailTM) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := m.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
