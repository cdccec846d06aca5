// Package extract pulls confirmation URLs or bare email tokens out of raw
// message bodies.
package extract

import (
	"regexp"
	"strings"
)

// Kind tells the caller which of the three extraction outcomes occurred.
// LinkFound and TokenFound require different handling: a bare token means
// the caller must reconstruct a full URL itself.
type Kind int

const (
	NotFound Kind = iota
	LinkFound
	TokenFound
)

// Result is the outcome of scanning one message body.
type Result struct {
	Kind  Kind
	URL   string
	Token string
}

var (
	// Confirmation URLs live under the provider's /verify path. The first
	// pattern insists on an emailToken query parameter, the second does not.
	urlWithTokenRe = regexp.MustCompile(`https?://[^\s<>"']+/verify[^\s<>"']*[?&]emailToken=[^\s<>"']+`)
	urlRe          = regexp.MustCompile(`https?://[^\s<>"']+/verify[^\s<>"']*`)
	bareTokenRe    = regexp.MustCompile(`(?:emailToken|token)=([A-Za-z0-9._-]+)`)
)

// trailing markup and punctuation artifacts that email clients glue onto URLs
const trailingJunk = `.,;:!?)]}>"'`

// Extract scans body for a confirmation link, in priority order: a /verify
// URL carrying an emailToken parameter, any /verify URL, then a standalone
// emailToken=/token= value.
func Extract(body string) Result {
	if m := urlWithTokenRe.FindString(body); m != "" {
		return Result{Kind: LinkFound, URL: stripTrailing(m)}
	}
	if m := urlRe.FindString(body); m != "" {
		return Result{Kind: LinkFound, URL: stripTrailing(m)}
	}
	if m := bareTokenRe.FindStringSubmatch(body); m != nil {
		return Result{Kind: TokenFound, Token: m[1]}
	}
	return Result{}
}

// ReconstructURL builds a confirmation URL from the applicant's original
// verification URL when the message carried only a bare token.
func ReconstructURL(originalURL, verificationID, token string) string {
	base := originalURL
	if i := strings.IndexByte(base, '?'); i >= 0 {
		base = base[:i]
	}
	return base + "?verificationId=" + verificationID + "&emailToken=" + token
}

func stripTrailing(url string) string {
	return strings.TrimRight(url, trailingJunk)
}
