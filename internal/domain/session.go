package domain

import "time"

// Step identifies one stage of the verification conversation. Steps advance
// strictly in declaration order; there is no branching beyond validation
// retries on the same step.
type Step int

const (
	StepURL Step = iota
	StepStatus
	StepOrg
	StepName
	StepBirth
	StepDischarge
	StepConfirm
)

func (s Step) String() string {
	switch s {
	case StepURL:
		return "URL"
	case StepStatus:
		return "STATUS"
	case StepOrg:
		return "ORG"
	case StepName:
		return "NAME"
	case StepBirth:
		return "BIRTH"
	case StepDischarge:
		return "DISCHARGE"
	case StepConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

// Next returns the step that follows s. Calling Next on the final step
// returns the final step itself.
func (s Step) Next() Step {
	if s >= StepConfirm {
		return StepConfirm
	}
	return s + 1
}

// MilitaryStatus is the applicant's declared service status.
type MilitaryStatus string

const (
	StatusVeteran    MilitaryStatus = "VETERAN"
	StatusRetired    MilitaryStatus = "RETIRED"
	StatusActiveDuty MilitaryStatus = "ACTIVE_DUTY"
)

// ParseMilitaryStatus resolves a choice key of the form "status_<VALUE>".
func ParseMilitaryStatus(choiceKey string) (MilitaryStatus, bool) {
	const prefix = "status_"
	if len(choiceKey) <= len(prefix) || choiceKey[:len(prefix)] != prefix {
		return "", false
	}
	switch s := MilitaryStatus(choiceKey[len(prefix):]); s {
	case StatusVeteran, StatusRetired, StatusActiveDuty:
		return s, true
	default:
		return "", false
	}
}

// Organization is a service branch as the verification provider knows it.
type Organization struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Organizations is the closed set of accepted service branches with the
// provider's organization IDs.
var Organizations = []Organization{
	{ID: 4070, Name: "Army"},
	{ID: 4073, Name: "Air Force"},
	{ID: 4072, Name: "Navy"},
	{ID: 4071, Name: "Marine Corps"},
	{ID: 4074, Name: "Coast Guard"},
	{ID: 4544268, Name: "Space Force"},
}

// ParseOrganization resolves a choice key of the form "org_<Name>".
func ParseOrganization(choiceKey string) (Organization, bool) {
	const prefix = "org_"
	if len(choiceKey) <= len(prefix) || choiceKey[:len(prefix)] != prefix {
		return Organization{}, false
	}
	name := choiceKey[len(prefix):]
	for _, org := range Organizations {
		if org.Name == name {
			return org, true
		}
	}
	return Organization{}, false
}

// Session is the in-memory record of one applicant's in-progress data
// collection. Exactly one Session exists per applicant at a time; starting a
// new flow discards any prior one.
type Session struct {
	ApplicantID    int64
	VerificationID string
	OriginalURL    string
	CurrentStep    Step
	Status         MilitaryStatus
	Organization   Organization
	FirstName      string
	LastName       string
	BirthDate      string // YYYY-MM-DD
	DischargeDate  string // YYYY-MM-DD
	Email          string
	Phone          string
	CreatedAt      time.Time
}

// FullName returns the applicant name as originally entered.
func (s *Session) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}
