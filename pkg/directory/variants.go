package directory

import "strings"

// GenerateVariants enumerates the identifier variants the organization's
// naming convention could have produced for a full name, in priority order:
//
//  1. {first-initial}{last}@domain  - primary convention
//  2. {first}.{last}@domain         - secondary form used on collision
//  3. {first-initial}{middle-initial}{last}@domain - only with a middle name
//  4. {first}@domain
//  5. {last}@domain
//
// Names with fewer than two usable tokens return nil: single-token names
// cannot be disambiguated by this convention and fall through to manual
// resolution.
func GenerateVariants(fullName, domain string) []string {
	tokens := nameTokens(fullName)
	if len(tokens) < 2 {
		return nil
	}

	first := tokens[0]
	last := tokens[len(tokens)-1]

	variants := []string{
		first[:1] + last + "@" + domain,
		first + "." + last + "@" + domain,
	}

	if len(tokens) >= 3 {
		middle := tokens[1]
		variants = append(variants, first[:1]+middle[:1]+last+"@"+domain)
	}

	variants = append(variants, first+"@"+domain, last+"@"+domain)
	return variants
}

// nameTokens splits a full name into lower-cased tokens stripped of any
// character outside [a-z]. Tokens that strip to nothing are dropped.
func nameTokens(fullName string) []string {
	var tokens []string
	for _, raw := range strings.Fields(fullName) {
		token := sanitizeToken(raw)
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// sanitizeToken lower-cases a token and strips everything outside [a-z].
func sanitizeToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
