package domain

// SubmitRequest carries every field the verification provider needs for the
// two-step military/veteran submission.
type SubmitRequest struct {
	VerificationID string
	Status         MilitaryStatus
	FirstName      string
	LastName       string
	BirthDate      string
	Email          string
	Phone          string
	Organization   Organization
	DischargeDate  string
}

// StatusInfo is the provider's view of a verification after a status check.
// Step is "unknown" whenever the check could not be completed; status checks
// degrade, they never fail.
type StatusInfo struct {
	Step string
	Raw  map[string]any
}

// UnknownStep is the sentinel returned when a status check cannot determine
// the provider-side workflow step.
const UnknownStep = "unknown"

// PageResult is what executing a confirmation link produced.
type PageResult struct {
	StatusCode int
	FinalURL   string
	Text       string
}

// Outcome classifies the page a confirmation link resolved to.
type Outcome string

const (
	OutcomeRejected      Outcome = "rejected"
	OutcomeApproved      Outcome = "approved"
	OutcomeDocRequired   Outcome = "document_required"
	OutcomePending       Outcome = "pending_review"
	OutcomeIndeterminate Outcome = "indeterminate"
)
