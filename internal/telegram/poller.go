package telegram

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/restuaku/vet/internal/platform/correlation"
)

// Flow is the conversation engine behind the transport.
type Flow interface {
	Start(ctx context.Context, applicantID int64)
	Input(ctx context.Context, applicantID int64, text string)
	Select(ctx context.Context, applicantID int64, choiceKey string)
	Cancel(ctx context.Context, applicantID int64)
}

// errorBackoff throttles the getUpdates loop after transport failures.
const errorBackoff = 3 * time.Second

// Poller long-polls the Bot API and routes updates into the flow.
type Poller struct {
	client *Client
	flow   Flow
	offset int64
}

func NewPoller(client *Client, flow Flow) *Poller {
	return &Poller{client: client, flow: flow}
}

// Run polls until the context is cancelled. It is the transport's main loop
// and is expected to be started once, in its own goroutine.
func (p *Poller) Run(ctx context.Context) {
	slog.InfoContext(ctx, "Telegram update loop started")

	for {
		if ctx.Err() != nil {
			slog.InfoContext(ctx, "Telegram update loop stopped")
			return
		}

		updates, err := p.client.GetUpdates(ctx, p.offset)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			slog.WarnContext(ctx, "Update poll failed", "error", err)
			select {
			case <-time.After(errorBackoff):
			case <-ctx.Done():
			}
			continue
		}

		for _, u := range updates {
			p.offset = u.UpdateID + 1
			p.dispatch(ctx, u)
		}
	}
}

func (p *Poller) dispatch(parent context.Context, u Update) {
	ctx := correlation.WithID(parent, correlation.NewID())

	switch {
	case u.CallbackQuery != nil:
		cb := u.CallbackQuery
		if cb.From == nil {
			return
		}
		if err := p.client.AnswerCallbackQuery(ctx, cb.ID); err != nil {
			slog.WarnContext(ctx, "Callback acknowledgement failed", "error", err)
		}
		p.flow.Select(ctx, cb.From.ID, cb.Data)

	case u.Message != nil:
		msg := u.Message
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			return
		}
		switch command(text) {
		case "/veteran", "/start":
			p.flow.Start(ctx, msg.Chat.ID)
		case "/cancel":
			p.flow.Cancel(ctx, msg.Chat.ID)
		default:
			p.flow.Input(ctx, msg.Chat.ID, text)
		}
	}
}

// command extracts a leading bot command, normalising the "/cmd@BotName"
// form used in group chats.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0]
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd)
}
