package gender

import (
	"regexp"
	"strings"
)

// Gender is the classification result for a scraped profile.
type Gender string

const (
	Male    Gender = "male"
	Female  Gender = "female"
	Unknown Gender = "unknown"
)

// ValidTarget reports whether t is a gender a caller may filter by.
func ValidTarget(t string) bool {
	return t == string(Male) || t == string(Female)
}

// Matches implements the inclusive filter rule: a profile passes when its
// classification equals the target or could not be determined.
func Matches(g Gender, target Gender) bool {
	return g == target || g == Unknown
}

var (
	// Long titles are matched as substrings since handles glue words
	// together ("gymqueen", "fitking"). Short ones only as whole tokens.
	femaleTitleSubstrings = []string{"queen", "princess", "duchess", "miss", "lady"}
	maleTitleSubstrings   = []string{"king", "prince", "lord", "duke"}
	femaleTitleWords      = map[string]struct{}{"mrs": {}, "ms": {}}
	maleTitleWords        = map[string]struct{}{"mr": {}, "sir": {}}

	tokenPattern = regexp.MustCompile(`[a-zA-Z]{2,20}`)
)

// Words that show up constantly in handles and bios but never carry a
// gender signal.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "official": {}, "real": {}, "true": {},
	"page": {}, "account": {}, "profile": {}, "fitness": {}, "gym": {},
	"workout": {}, "life": {}, "love": {}, "style": {}, "blog": {},
	"shop": {},
}

// Classify guesses a profile's gender from its display name and username.
// Title keywords are checked first (display name, then username), then
// extracted name tokens are probed against the embedded name table in the
// same order. Anything inconclusive is Unknown.
func Classify(username, displayName string) Gender {
	for _, text := range []string{displayName, username} {
		if g := classifyTitles(text); g != Unknown {
			return g
		}
	}

	for _, text := range []string{displayName, username} {
		for _, token := range extractNameTokens(text) {
			if g, ok := nameTable[token]; ok {
				return g
			}
		}
	}

	return Unknown
}

func classifyTitles(text string) Gender {
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if g := titleGender(tok); g != Unknown {
			return g
		}
	}
	return Unknown
}

// titleGender checks female titles before male ones so that "princess"
// is not swallowed by its "prince" prefix.
func titleGender(tok string) Gender {
	for _, sub := range femaleTitleSubstrings {
		if strings.Contains(tok, sub) {
			return Female
		}
	}
	if _, ok := femaleTitleWords[tok]; ok {
		return Female
	}
	for _, sub := range maleTitleSubstrings {
		if strings.Contains(tok, sub) {
			return Male
		}
	}
	if _, ok := maleTitleWords[tok]; ok {
		return Male
	}
	return Unknown
}

// extractNameTokens pulls candidate given-name tokens out of a handle or
// display name: alphabetic runs of 2-20 characters, lowercased, with
// title words and stop words discarded.
func extractNameTokens(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if _, skip := stopWords[tok]; skip {
			continue
		}
		if titleGender(tok) != Unknown {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
