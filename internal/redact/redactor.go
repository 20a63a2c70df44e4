package redact

import (
	"regexp"
	"strings"

	"beacon/internal/constants"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Redactor strips secret-shaped substrings from alert messages and drops
// denylisted metadata keys. All methods are pure; unmatched input passes
// through unchanged.
type Redactor struct {
	rules    []rule
	denylist map[string]struct{}
}

// Pattern order matters: api_key must be tried before key so the longer
// form wins at a given position.
var defaultPatterns = []string{
	`(?i)password\s*=\s*[^\s,;]+`,
	`(?i)api_key\s*=\s*[^\s,;]+`,
	`(?i)apikey\s*=\s*[^\s,;]+`,
	`(?i)secret\s*=\s*[^\s,;]+`,
	`(?i)token\s*=\s*[^\s,;]+`,
	`(?i)key\s*=\s*[^\s,;]+`,
	`\bsk-[A-Za-z0-9]+\b`,
}

var defaultDenylist = []string{"password", "secret", "token", "apikey", "api_key", "key"}

func NewRedactor() *Redactor {
	rules := make([]rule, 0, len(defaultPatterns))
	for _, p := range defaultPatterns {
		rules = append(rules, rule{
			pattern:     regexp.MustCompile(p),
			replacement: constants.RedactionSentinel,
		})
	}

	denylist := make(map[string]struct{}, len(defaultDenylist))
	for _, k := range defaultDenylist {
		denylist[k] = struct{}{}
	}

	return &Redactor{rules: rules, denylist: denylist}
}

// Redact replaces every match of the secret patterns with the sentinel.
func (r *Redactor) Redact(message string) string {
	for _, rule := range r.rules {
		message = rule.pattern.ReplaceAllString(message, rule.replacement)
	}
	return message
}

// RedactMetadata returns a copy of metadata with denylisted keys removed.
// Metadata values are structured, not free text, so a matching key is
// dropped entirely rather than redacted in place.
func (r *Redactor) RedactMetadata(metadata map[string]string) map[string]string {
	if metadata == nil {
		return nil
	}

	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		if _, denied := r.denylist[strings.ToLower(k)]; denied {
			continue
		}
		out[k] = v
	}
	return out
}
