package detect

import (
	"regexp"
	"strings"
)

const (
	minClaimWords = 5
	maxClaims     = 10
)

// claimPatterns mark sentences that assert an evidentiary statement
// and therefore need citation support.
var claimPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)research shows?`),
	regexp.MustCompile(`(?i)studies? (have )?(shown|demonstrated|found|revealed)`),
	regexp.MustCompile(`(?i)evidence suggests?`),
	regexp.MustCompile(`(?i)according to`),
	regexp.MustCompile(`(?i)it (is|has been) (shown|demonstrated|proven)`),
	regexp.MustCompile(`(?i)experiments? (show|demonstrate)`),
}

// ExtractClaims returns the first maxClaims qualifying sentences in
// document order. A sentence qualifies when it has at least
// minClaimWords words and matches one of the claim patterns.
func ExtractClaims(text string) []string {
	claims := make([]string, 0, maxClaims)
	for _, sent := range sentenceBoundary.Split(text, -1) {
		sent = strings.TrimSpace(sent)
		if sent == "" || len(strings.Fields(sent)) < minClaimWords {
			continue
		}
		for _, pat := range claimPatterns {
			if pat.MatchString(sent) {
				claims = append(claims, sent)
				break
			}
		}
		if len(claims) >= maxClaims {
			break
		}
	}
	return claims
}
