package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/restuaku/vet/internal/domain"
	"github.com/restuaku/vet/internal/metrics"
	"github.com/restuaku/vet/internal/platform/correlation"
)

const (
	// StepTimeout bounds how long a step waits for applicant input.
	StepTimeout = 300 * time.Second
	// PollInterval is the mailbox-check cadence after submission.
	PollInterval = 10 * time.Second
	// MaxPollCycles caps how often the mailbox is checked before giving up.
	MaxPollCycles = 30
)

var verificationIDRe = regexp.MustCompile(`verificationId=([A-Za-z0-9-]+)`)

var statusChoices = []domain.Choice{
	{Key: "status_VETERAN", Label: "Veteran"},
	{Key: "status_RETIRED", Label: "Retired"},
	{Key: "status_ACTIVE_DUTY", Label: "Active Duty"},
}

func orgChoices() []domain.Choice {
	choices := make([]domain.Choice, 0, len(domain.Organizations))
	for _, org := range domain.Organizations {
		choices = append(choices, domain.Choice{Key: "org_" + org.Name, Label: org.Name})
	}
	return choices
}

// Orchestrator drives the verification state machine. It owns every Session
// and Mailbox in the Store; the Scheduler only invokes callbacks supplied
// here.
type Orchestrator struct {
	store     *Store
	scheduler *Scheduler
	verifier  domain.VerificationClient
	mailboxes domain.MailboxProvider
	executor  domain.ConfirmationExecutor
	notifier  domain.Notifier
	audit     domain.AuditLog
	classify  func(*domain.PageResult) domain.Outcome
	clock     clockwork.Clock
}

func NewOrchestrator(
	store *Store,
	scheduler *Scheduler,
	verifier domain.VerificationClient,
	mailboxes domain.MailboxProvider,
	executor domain.ConfirmationExecutor,
	notifier domain.Notifier,
	audit domain.AuditLog,
	classify func(*domain.PageResult) domain.Outcome,
	clock clockwork.Clock,
) *Orchestrator {
	return &Orchestrator{
		store:     store,
		scheduler: scheduler,
		verifier:  verifier,
		mailboxes: mailboxes,
		executor:  executor,
		notifier:  notifier,
		audit:     audit,
		classify:  classify,
		clock:     clock,
	}
}

// Start begins a fresh verification flow, discarding any prior session and
// mailbox for the applicant. It is the only re-entrant operation: calling it
// mid-flow resets to the URL step.
func (o *Orchestrator) Start(ctx context.Context, applicantID int64) {
	o.audit.FlowStarted(ctx, applicantID)
	o.teardown(ctx, applicantID)

	sess := &domain.Session{
		ApplicantID: applicantID,
		CurrentStep: domain.StepURL,
		CreatedAt:   o.clock.Now(),
	}
	o.store.PutSession(sess)
	o.armStep(applicantID, domain.StepURL)
	metrics.SessionsStarted.Inc()

	o.prompt(ctx, applicantID,
		"🎖 *Military / Veteran Verification*\n\n"+
			"Send your SheerID verification URL:\n"+
			"`https://services.sheerid.com/verify/...?verificationId=...`\n\n"+
			"⏰ You have 5 minutes.", nil)
}

// Input handles a free-text message for the applicant's current step.
func (o *Orchestrator) Input(ctx context.Context, applicantID int64, text string) {
	sess, err := o.store.GetSession(applicantID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		o.notify(ctx, applicantID, "❌ *Session expired*\n\nSend /veteran to start again.")
		return
	}

	text = strings.TrimSpace(text)

	switch sess.CurrentStep {
	case domain.StepURL:
		o.handleURL(ctx, sess, text)
	case domain.StepStatus, domain.StepOrg:
		o.reprompt(ctx, sess, "Please use the buttons above to choose.")
	case domain.StepName:
		o.handleName(ctx, sess, text)
	case domain.StepBirth:
		o.handleBirth(ctx, sess, text)
	case domain.StepDischarge:
		o.handleDischarge(ctx, sess, text)
	case domain.StepConfirm:
		o.handleConfirm(ctx, sess, text)
	}
}

// Select handles a choice-key selection. An unmatched selection at the
// status or org step ends the flow; this mirrors the long-standing behavior
// of the conversational front end.
func (o *Orchestrator) Select(ctx context.Context, applicantID int64, choiceKey string) {
	sess, err := o.store.GetSession(applicantID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		o.notify(ctx, applicantID, "❌ *Session expired*\n\nSend /veteran to start again.")
		return
	}

	switch sess.CurrentStep {
	case domain.StepStatus:
		status, ok := domain.ParseMilitaryStatus(choiceKey)
		if !ok {
			o.endFatal(ctx, sess, "❌ Invalid status.\n\nSend /veteran to start again.")
			return
		}
		sess.Status = status
		o.advance(ctx, sess,
			fmt.Sprintf("✅ Status: `%s`\n\nChoose your *branch / organization*:", status), orgChoices())

	case domain.StepOrg:
		org, ok := domain.ParseOrganization(choiceKey)
		if !ok {
			o.endFatal(ctx, sess, "❌ Unknown organization.\n\nSend /veteran to start again.")
			return
		}
		sess.Organization = org
		o.advance(ctx, sess,
			fmt.Sprintf("✅ Branch: *%s*\n\nSend your *full name*.\nExample: `John Michael Smith`\n\n⏰ You have 5 minutes.", org.Name), nil)

	default:
		o.reprompt(ctx, sess, "No selection is expected right now.")
	}
}

// Cancel aborts the flow from any non-terminal state, discarding session,
// mailbox and timers.
func (o *Orchestrator) Cancel(ctx context.Context, applicantID int64) {
	_, sessErr := o.store.GetSession(applicantID)
	_, mbErr := o.store.GetMailbox(applicantID)
	hadSession := sessErr == nil
	hadMailbox := mbErr == nil

	o.teardown(ctx, applicantID)

	if !hadSession && !hadMailbox {
		o.notify(ctx, applicantID, "Nothing to cancel. Send /veteran to start a verification.")
		return
	}
	metrics.SessionsEnded.WithLabelValues("cancelled").Inc()
	o.notify(ctx, applicantID, "❌ *Operation cancelled*\n\nSend /veteran to start again.")
}

// --- step handlers ---

func (o *Orchestrator) handleURL(ctx context.Context, sess *domain.Session, text string) {
	match := verificationIDRe.FindStringSubmatch(text)
	if match == nil {
		o.reprompt(ctx, sess, "❌ *Invalid URL!*\n\nThe URL must contain a `verificationId=...` parameter.\n\n⏰ You have 5 more minutes.")
		return
	}

	sess.VerificationID = match[1]
	sess.OriginalURL = text
	o.advance(ctx, sess,
		fmt.Sprintf("✅ *Verification ID:* `%s`\n\nChoose your *military status*:", sess.VerificationID), statusChoices)
}

func (o *Orchestrator) handleName(ctx context.Context, sess *domain.Session, text string) {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		o.reprompt(ctx, sess, "❌ Please send *first name AND last name*.\nExample: `John Smith`\n\n⏰ You have 5 more minutes.")
		return
	}

	sess.FirstName = parts[0]
	sess.LastName = strings.Join(parts[1:], " ")
	o.advance(ctx, sess,
		fmt.Sprintf("✅ *Name:* %s\n\nSend your *birth date* (`YYYY-MM-DD`).\nExample: `1985-07-21`\n\n⏰ You have 5 minutes.", sess.FullName()), nil)
}

func (o *Orchestrator) handleBirth(ctx context.Context, sess *domain.Session, text string) {
	if !ValidDate(text, 1900, 2010) {
		o.reprompt(ctx, sess, "❌ Wrong date format.\nUse `YYYY-MM-DD`.\n\n⏰ You have 5 more minutes.")
		return
	}

	sess.BirthDate = text
	o.advance(ctx, sess,
		fmt.Sprintf("✅ *Birth date:* `%s`\n\nSend your *discharge date* (`YYYY-MM-DD`).\nIf still active, use a plausible date.\n\n⏰ You have 5 minutes.", text), nil)
}

func (o *Orchestrator) handleDischarge(ctx context.Context, sess *domain.Session, text string) {
	if !ValidDate(text, 1950, 2026) {
		o.reprompt(ctx, sess, "❌ Wrong date format.\nUse `YYYY-MM-DD`.\n\n⏰ You have 5 more minutes.")
		return
	}
	sess.DischargeDate = text

	mb, err := o.mailboxes.Create(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Mailbox provisioning failed", "applicant", sess.ApplicantID, "error", err)
		o.endFatal(ctx, sess, "❌ Could not provision a mailbox for the confirmation email.\n\nSend /veteran to try again.")
		return
	}
	mb.ApplicantID = sess.ApplicantID
	mb.VerificationID = sess.VerificationID
	mb.OriginalURL = sess.OriginalURL
	o.store.PutMailbox(mb)

	sess.Email = mb.Address
	o.advance(ctx, sess, o.summary(sess), nil)
}

func (o *Orchestrator) handleConfirm(ctx context.Context, sess *domain.Session, text string) {
	if !strings.EqualFold(text, "ok") {
		o.reprompt(ctx, sess, "Type `OK` to submit, or /cancel to abort.")
		return
	}

	o.scheduler.CancelStep(sess.ApplicantID, domain.StepConfirm)
	o.notify(ctx, sess.ApplicantID, "🚀 Submitting your data to SheerID...")

	submitErr := o.verifier.Submit(ctx, domain.SubmitRequest{
		VerificationID: sess.VerificationID,
		Status:         sess.Status,
		FirstName:      sess.FirstName,
		LastName:       sess.LastName,
		BirthDate:      sess.BirthDate,
		Email:          sess.Email,
		Phone:          sess.Phone,
		Organization:   sess.Organization,
		DischargeDate:  sess.DischargeDate,
	})

	// The status check runs regardless of the submission result so the
	// administrative log always records the provider-side step.
	info := o.verifier.CheckStatus(ctx, sess.VerificationID)

	o.audit.SubmissionResult(ctx, domain.SubmissionRecord{
		ApplicantID: sess.ApplicantID,
		FullName:    sess.FullName(),
		Email:       sess.Email,
		CurrentStep: info.Step,
		Success:     submitErr == nil,
		ErrorMsg:    errMsg(submitErr),
	})

	if submitErr != nil {
		metrics.Submissions.WithLabelValues("failure").Inc()
		metrics.SessionsEnded.WithLabelValues("failed").Inc()
		o.notify(ctx, sess.ApplicantID, fmt.Sprintf("❌ *SUBMISSION FAILED*\n\nError: %s\n\nSend /veteran to try again.", submitErr))
		o.teardown(ctx, sess.ApplicantID)
		return
	}

	metrics.Submissions.WithLabelValues("success").Inc()
	metrics.SessionsEnded.WithLabelValues("submitted").Inc()
	o.notify(ctx, sess.ApplicantID, fmt.Sprintf(
		"✅ *Military info submitted*\n\nCurrent SheerID step: `%s`\n\nWatching `%s` for the confirmation email. "+
			"I will report the result here; you can close this chat.", info.Step, sess.Email))

	// The conversational flow is over. Only the mailbox poller stays alive.
	applicantID := sess.ApplicantID
	o.store.DeleteSession(applicantID)
	o.scheduler.ArmPoll(applicantID, PollInterval, func() {
		o.pollCycle(applicantID)
	})
}

// --- transitions and teardown ---

// advance moves the session to the step after its current one. If a timeout
// callback tore the session down while the handler ran, the move is
// abandoned instead of resurrecting the session.
func (o *Orchestrator) advance(ctx context.Context, sess *domain.Session, text string, choices []domain.Choice) {
	prev := sess.CurrentStep
	sess.CurrentStep = prev.Next()
	if err := o.store.ReplaceSession(sess); err != nil {
		return
	}
	o.scheduler.CancelStep(sess.ApplicantID, prev)
	o.armStep(sess.ApplicantID, sess.CurrentStep)
	o.prompt(ctx, sess.ApplicantID, text, choices)
}

// reprompt re-arms the current step's timer without changing the step. Like
// advance, it backs off if the session is already gone.
func (o *Orchestrator) reprompt(ctx context.Context, sess *domain.Session, text string) {
	if err := o.store.ReplaceSession(sess); err != nil {
		return
	}
	o.armStep(sess.ApplicantID, sess.CurrentStep)
	o.prompt(ctx, sess.ApplicantID, text, nil)
}

func (o *Orchestrator) armStep(applicantID int64, step domain.Step) {
	o.scheduler.ArmStep(applicantID, step, StepTimeout, func() {
		o.onStepTimeout(applicantID, step)
	})
}

func (o *Orchestrator) onStepTimeout(applicantID int64, step domain.Step) {
	ctx := correlation.WithID(context.Background(), correlation.NewID())
	slog.InfoContext(ctx, "Step timed out", "applicant", applicantID, "step", step.String())

	metrics.StepTimeouts.WithLabelValues(step.String()).Inc()
	metrics.SessionsEnded.WithLabelValues("timeout").Inc()
	o.teardown(ctx, applicantID)
	o.notify(ctx, applicantID, fmt.Sprintf(
		"⏰ *Timeout at step %s*\n\nYou did not respond within 5 minutes.\nSend /veteran to start over.", step))
}

// endFatal terminates the flow after an unrecoverable input.
func (o *Orchestrator) endFatal(ctx context.Context, sess *domain.Session, text string) {
	metrics.SessionsEnded.WithLabelValues("fatal_input").Inc()
	o.teardown(ctx, sess.ApplicantID)
	o.notify(ctx, sess.ApplicantID, text)
}

// teardown discards session, mailbox and all timers for one applicant.
// Mailbox disposal is best-effort.
func (o *Orchestrator) teardown(ctx context.Context, applicantID int64) {
	o.scheduler.CancelAll(applicantID)
	o.store.DeleteSession(applicantID)

	if mb, err := o.store.GetMailbox(applicantID); err == nil {
		if err := o.mailboxes.Delete(ctx, mb); err != nil {
			slog.WarnContext(ctx, "Mailbox disposal failed", "applicant", applicantID, "address", mb.Address, "error", err)
		}
		o.store.DeleteMailbox(applicantID)
	}
}

func (o *Orchestrator) summary(sess *domain.Session) string {
	return "🔎 *Confirm your data:*\n\n" +
		fmt.Sprintf("VerificationId: `%s`\n", sess.VerificationID) +
		fmt.Sprintf("Status: `%s`\n", sess.Status) +
		fmt.Sprintf("Name: `%s`\n", sess.FullName()) +
		fmt.Sprintf("Birth date: `%s`\n", sess.BirthDate) +
		fmt.Sprintf("Email: `%s`\n", sess.Email) +
		fmt.Sprintf("Branch: `%s` (id=%s)\n", sess.Organization.Name, strconv.Itoa(sess.Organization.ID)) +
		fmt.Sprintf("Discharge date: `%s`\n\n", sess.DischargeDate) +
		"Type `OK` to submit to SheerID, or /cancel to abort."
}

func (o *Orchestrator) prompt(ctx context.Context, applicantID int64, text string, choices []domain.Choice) {
	if err := o.notifier.Prompt(ctx, applicantID, text, choices); err != nil {
		slog.WarnContext(ctx, "Prompt delivery failed", "applicant", applicantID, "error", err)
	}
}

func (o *Orchestrator) notify(ctx context.Context, applicantID int64, text string) {
	if err := o.notifier.Notify(ctx, applicantID, text); err != nil {
		slog.WarnContext(ctx, "Notification delivery failed", "applicant", applicantID, "error", err)
	}
}

func errMsg(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
