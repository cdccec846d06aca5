package mailbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/restuaku/vet/internal/domain"
)

// DomainPool allocates addresses on a fixed custom domain. There is no
// account registration: an address exists the moment someone asks the API
// about it, so Create never talks to the network and Delete only clears
// local state.
type DomainPool struct {
	apiURL string
	domain string
	http   *http.Client
}

func NewDomainPool(apiURL, mailDomain string) *DomainPool {
	return &DomainPool{
		apiURL: apiURL,
		domain: mailDomain,
		http:   &http.Client{Timeout: mailboxRequestTimeout},
	}
}

func (p *DomainPool) Create(_ context.Context) (*domain.Mailbox, error) {
	if p.domain == "" {
		return nil, fmt.Errorf("no mailbox domain configured")
	}
	local := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return &domain.Mailbox{Address: local + "@" + p.domain}, nil
}

func (p *DomainPool) Poll(ctx context.Context, mb *domain.Mailbox) ([]domain.MessageSummary, error) {
	var raw []struct {
		ID      int64  `json:"id"`
		From    string `json:"from"`
		Subject string `json:"subject"`
	}
	if err := p.get(ctx, "getMessages", mb, nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	summaries := make([]domain.MessageSummary, 0, len(raw))
	for _, msg := range raw {
		summaries = append(summaries, domain.MessageSummary{
			ID:      strconv.FormatInt(msg.ID, 10),
			From:    msg.From,
			Subject: msg.Subject,
		})
	}
	return summaries, nil
}

func (p *DomainPool) Fetch(ctx context.Context, mb *domain.Mailbox, messageID string) (domain.MessageBody, error) {
	var msg struct {
		TextBody string `json:"textBody"`
		HTMLBody string `json:"htmlBody"`
	}
	if err := p.get(ctx, "readMessage", mb, map[string]string{"id": messageID}, &msg); err != nil {
		return domain.MessageBody{}, fmt.Errorf("failed to fetch message %s: %w", messageID, err)
	}
	return domain.MessageBody{Text: msg.TextBody, HTML: msg.HTMLBody}, nil
}

// Delete is a no-op server-side: pool addresses are ephemeral by design.
func (p *DomainPool) Delete(_ context.Context, _ *domain.Mailbox) error {
	return nil
}

func (p *DomainPool) get(ctx context.Context, action string, mb *domain.Mailbox, extra map[string]string, out any) error {
	login, mailDomain, ok := strings.Cut(mb.Address, "@")
	if !ok {
		return fmt.Errorf("malformed mailbox address %q", mb.Address)
	}

	params := url.Values{}
	params.Set("action", action)
	params.Set("login", login)
	params.Set("domain", mailDomain)
	for k, v := range extra {
		params.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, raw)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
