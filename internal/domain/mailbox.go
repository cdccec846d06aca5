package domain

// Mailbox is a disposable email address provisioned to receive exactly one
// confirmation message. It carries a copy of the verification context so the
// poller can finish its work after the Session has been discarded.
type Mailbox struct {
	ApplicantID    int64
	Address        string
	Password       string
	Token          string // bearer token, set by providers that use one
	AccountID      string // provider-side account handle, used for deletion
	PollCount      int
	VerificationID string
	OriginalURL    string // applicant's submitted verification URL, base for link reconstruction
}

// MessageSummary is one inbox listing entry.
type MessageSummary struct {
	ID      string
	From    string
	Subject string
}

// MessageBody is the full content of a fetched message.
type MessageBody struct {
	Text string
	HTML string
}
