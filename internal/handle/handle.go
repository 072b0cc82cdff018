// Package handle normalizes participant identifiers from message archives.
//
// A handle is either a phone number or an email address. Phone numbers are
// normalized toward E.164 (US-biased, matching the archive's dialing plan);
// emails are lowercased. Anything unrecognized passes through trimmed, so a
// weird handle still round-trips as a stable key.
package handle

import (
	"regexp"
	"strings"
)

var nonDigitRe = regexp.MustCompile(`\D+`)

// Normalize canonicalizes a raw handle.
// Emails are lowercased; 10-digit phone numbers get a +1 country code,
// 11-digit numbers starting with 1 get a leading +. Everything else is
// returned trimmed but otherwise untouched.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if strings.Contains(s, "@") {
		return strings.ToLower(s)
	}
	digits := nonDigitRe.ReplaceAllString(s, "")
	switch {
	case len(digits) == 10:
		return "+1" + digits
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits
	}
	return s
}
