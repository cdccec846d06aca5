package telegram

import (
	"context"

	"github.com/restuaku/vet/internal/domain"
)

// choicesPerRow controls inline keyboard layout.
const choicesPerRow = 2

// Notifier delivers prompts and notifications to applicants over Telegram.
type Notifier struct {
	client *Client
}

func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

func (n *Notifier) Prompt(ctx context.Context, applicantID int64, text string, choices []domain.Choice) error {
	return n.client.SendMessage(ctx, applicantID, text, keyboard(choices))
}

func (n *Notifier) Notify(ctx context.Context, applicantID int64, text string) error {
	return n.client.SendMessage(ctx, applicantID, text, nil)
}

func keyboard(choices []domain.Choice) [][]InlineKeyboardButton {
	if len(choices) == 0 {
		return nil
	}
	var rows [][]InlineKeyboardButton
	for i := 0; i < len(choices); i += choicesPerRow {
		end := i + choicesPerRow
		if end > len(choices) {
			end = len(choices)
		}
		row := make([]InlineKeyboardButton, 0, choicesPerRow)
		for _, c := range choices[i:end] {
			row = append(row, InlineKeyboardButton{Text: c.Label, CallbackData: c.Key})
		}
		rows = append(rows, row)
	}
	return rows
}
