package confirm

import (
	"strings"

	"github.com/restuaku/vet/internal/domain"
)

// keyword categories, checked in order; first match wins. Rejection comes
// before approval: result pages routinely carry "success" in their URL even
// when the verification itself failed, so failure wording must dominate.
var categories = []struct {
	outcome  domain.Outcome
	keywords []string
}{
	{domain.OutcomeRejected, []string{
		"verification failed",
		"not approved",
		"unable to verify",
		"could not verify",
		"could not be verified",
		"rejected",
		"verification limit",
	}},
	{domain.OutcomeApproved, []string{
		"successfully verified",
		"verification complete",
		"you are verified",
		"approved",
		"success",
		"verified",
	}},
	{domain.OutcomeDocRequired, []string{
		"upload",
		"document",
		"additional proof",
	}},
	{domain.OutcomePending, []string{
		"pending",
		"under review",
		"processing",
	}},
}

// Classify maps a confirmation page to an outcome by matching the ordered
// keyword sets against the page text and the final URL.
func Classify(res *domain.PageResult) domain.Outcome {
	haystack := strings.ToLower(res.Text) + " " + strings.ToLower(res.FinalURL)

	for _, cat := range categories {
		for _, kw := range cat.keywords {
			if strings.Contains(haystack, kw) {
				return cat.outcome
			}
		}
	}
	return domain.OutcomeIndeterminate
}
