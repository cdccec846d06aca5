package domain

import "context"

// Choice is one selectable option presented alongside a prompt.
type Choice struct {
	Key   string
	Label string
}

// Notifier is the outbound side of the chat transport.
type Notifier interface {
	// Prompt asks the applicant for the next piece of input, optionally with
	// a fixed choice set rendered as buttons.
	Prompt(ctx context.Context, applicantID int64, text string, choices []Choice) error
	// Notify sends a plain informational message.
	Notify(ctx context.Context, applicantID int64, text string) error
}

// VerificationClient wraps the eligibility-verification provider.
type VerificationClient interface {
	Submit(ctx context.Context, req SubmitRequest) error
	// CheckStatus reports the provider-side workflow step. It never returns
	// an error; on any failure Step degrades to UnknownStep.
	CheckStatus(ctx context.Context, verificationID string) StatusInfo
}

// MailboxProvider provisions and reads disposable mailboxes.
type MailboxProvider interface {
	Create(ctx context.Context) (*Mailbox, error)
	Poll(ctx context.Context, mb *Mailbox) ([]MessageSummary, error)
	Fetch(ctx context.Context, mb *Mailbox, messageID string) (MessageBody, error)
	// Delete disposes the mailbox. Best-effort; callers log failures and move on.
	Delete(ctx context.Context, mb *Mailbox) error
}

// ConfirmationExecutor follows a confirmation link the way a browser would
// and reports the final page.
type ConfirmationExecutor interface {
	Execute(ctx context.Context, url string) (*PageResult, error)
}

// SubmissionRecord is what the administrative log receives after a
// submission attempt.
type SubmissionRecord struct {
	ApplicantID int64
	FullName    string
	Email       string
	CurrentStep string
	Success     bool
	ErrorMsg    string
}

// AuditLog is the administrative reporting sink. Every method is
// fire-and-forget from the caller's point of view: failures are the sink's
// problem, never the flow's.
type AuditLog interface {
	FlowStarted(ctx context.Context, applicantID int64)
	SubmissionResult(ctx context.Context, rec SubmissionRecord)
	ConfirmationOutcome(ctx context.Context, applicantID int64, outcome Outcome, detail string)
}
