package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/restuaku/vet/internal/domain"
	"github.com/restuaku/vet/internal/extract"
	"github.com/restuaku/vet/internal/metrics"
	"github.com/restuaku/vet/internal/platform/correlation"
)

const snippetLen = 200

// pollCycle is one iteration of the repeating mailbox-poll timer. It runs
// out-of-band after the conversational flow has ended, so it builds its own
// context.
func (o *Orchestrator) pollCycle(applicantID int64) {
	ctx := correlation.WithID(context.Background(), correlation.NewID())

	mb, err := o.store.GetMailbox(applicantID)
	if errors.Is(err, domain.ErrMailboxNotFound) {
		// Mailbox already torn down; the timer lost the race.
		o.scheduler.CancelPoll(applicantID)
		return
	}

	mb.PollCount++
	metrics.MailboxPollCycles.Inc()
	slog.DebugContext(ctx, "Polling mailbox", "applicant", applicantID, "address", mb.Address, "cycle", mb.PollCount)

	msgs, err := o.mailboxes.Poll(ctx, mb)
	if err != nil {
		slog.WarnContext(ctx, "Mailbox poll failed", "applicant", applicantID, "error", err)
	}

	for _, msg := range msgs {
		if !isVerificationMessage(msg) {
			continue
		}

		body, err := o.mailboxes.Fetch(ctx, mb, msg.ID)
		if err != nil {
			slog.WarnContext(ctx, "Message fetch failed", "applicant", applicantID, "message_id", msg.ID, "error", err)
			continue
		}

		res := extract.Extract(body.Text + "\n" + body.HTML)
		switch res.Kind {
		case extract.LinkFound:
			o.resolveConfirmation(ctx, applicantID, mb, res.URL)
		case extract.TokenFound:
			url := extract.ReconstructURL(mb.OriginalURL, mb.VerificationID, res.Token)
			o.resolveConfirmation(ctx, applicantID, mb, url)
		case extract.NotFound:
			// A matching message with nothing extractable will not improve
			// on later cycles.
			slog.ErrorContext(ctx, "No link or token in confirmation message", "applicant", applicantID, "message_id", msg.ID)
			o.teardownMailbox(ctx, applicantID, mb)
			metrics.ConfirmationOutcomes.WithLabelValues("extraction_failed").Inc()
			o.notify(ctx, applicantID, "❌ A confirmation email arrived but no link could be extracted from it.\n\nSend /veteran to start over.")
		}
		return
	}

	if mb.PollCount >= MaxPollCycles {
		slog.InfoContext(ctx, "Mailbox poll ceiling reached", "applicant", applicantID, "cycles", mb.PollCount)
		o.teardownMailbox(ctx, applicantID, mb)
		metrics.ConfirmationOutcomes.WithLabelValues("email_timeout").Inc()
		o.notify(ctx, applicantID, "⏰ No confirmation email arrived.\n\nCheck the verification page in your browser, or send /veteran to start over.")
	}
}

// resolveConfirmation executes the confirmation link and reports the
// classified outcome. The mailbox is destroyed before execution: it has
// served its purpose and must not outlive its poll timer.
func (o *Orchestrator) resolveConfirmation(ctx context.Context, applicantID int64, mb *domain.Mailbox, url string) {
	o.teardownMailbox(ctx, applicantID, mb)
	o.notify(ctx, applicantID, "📧 Confirmation email received, executing the link...")

	res, err := o.executor.Execute(ctx, url)
	if err != nil {
		slog.ErrorContext(ctx, "Confirmation link execution failed", "applicant", applicantID, "error", err)
		metrics.ConfirmationOutcomes.WithLabelValues("execution_error").Inc()
		o.audit.ConfirmationOutcome(ctx, applicantID, domain.OutcomeIndeterminate, "execution error: "+err.Error())
		o.notify(ctx, applicantID, "❌ The confirmation link could not be opened. Check the verification page in your browser.")
		return
	}

	info := o.verifier.CheckStatus(ctx, mb.VerificationID)
	outcome := o.classify(res)

	slog.InfoContext(ctx, "Confirmation resolved", "applicant", applicantID,
		"outcome", string(outcome), "final_url", res.FinalURL, "provider_step", info.Step)
	metrics.ConfirmationOutcomes.WithLabelValues(string(outcome)).Inc()
	o.audit.ConfirmationOutcome(ctx, applicantID, outcome, "provider step: "+info.Step)

	switch outcome {
	case domain.OutcomeApproved:
		o.notify(ctx, applicantID, "✅ *Verification approved!*\n\nYou should see the verified status in your browser.")
	case domain.OutcomeRejected:
		o.notify(ctx, applicantID, "❌ *Verification was not approved.*\n\nThe provider rejected the submission.")
	case domain.OutcomeDocRequired:
		o.notify(ctx, applicantID, "📄 The provider is asking for a *document upload*.\n\nFinish the process on the verification page in your browser.")
	case domain.OutcomePending:
		o.notify(ctx, applicantID, "⏳ The verification is *pending manual review*.\n\nCheck the verification page again later.")
	default:
		o.notify(ctx, applicantID, fmt.Sprintf(
			"❓ The result is unclear. Raw response:\n\n```\n%s\n```\n\nCheck the verification page in your browser.", snippet(res.Text)))
	}
}

// teardownMailbox destroys the mailbox and its poll timer together.
func (o *Orchestrator) teardownMailbox(ctx context.Context, applicantID int64, mb *domain.Mailbox) {
	o.scheduler.CancelPoll(applicantID)
	if err := o.mailboxes.Delete(ctx, mb); err != nil {
		slog.WarnContext(ctx, "Mailbox disposal failed", "applicant", applicantID, "address", mb.Address, "error", err)
	}
	o.store.DeleteMailbox(applicantID)
}

func isVerificationMessage(msg domain.MessageSummary) bool {
	from := strings.ToLower(msg.From)
	subject := strings.ToLower(msg.Subject)
	return strings.Contains(from, "sheerid") || strings.Contains(subject, "sheerid") || strings.Contains(subject, "verif")
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > snippetLen {
		return s[:snippetLen]
	}
	return s
}
