// utils/phone.go
package utils

import (
	"os"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// CanonicalPhone is the normalized identity derived from a raw phone string.
// E164 is the number in international format when it parses as a valid
// national number; Last10 is the last 10 digits of the raw input and serves
// as the fallback match key. Empty string means "not derivable".
//
// If E164 is set, Last10 is always set and equals E164's last 10 digits.
type CanonicalPhone struct {
	E164   string
	Last10 string
}

func (p CanonicalPhone) IsZero() bool {
	return p.E164 == "" && p.Last10 == ""
}

// Matches compares two canonical identities under the reconciliation
// precedence: E164 equality when both sides have one, Last10 equality as the
// fallback when at least one side could not derive an E164.
func (p CanonicalPhone) Matches(other CanonicalPhone) bool {
	if p.E164 != "" && other.E164 != "" {
		return p.E164 == other.E164
	}
	if p.Last10 != "" && other.Last10 != "" {
		return p.Last10 == other.Last10
	}
	return false
}

// HomeRegion returns the ISO region used to infer country codes for numbers
// typed without one.
func HomeRegion() string {
	if r := os.Getenv("DEFAULT_PHONE_REGION"); r != "" {
		return strings.ToUpper(strings.TrimSpace(r))
	}
	return "US"
}

// NormalizePhone canonicalizes a raw phone string using the configured home
// region for country-code inference.
func NormalizePhone(raw string) CanonicalPhone {
	return NormalizePhoneInRegion(raw, HomeRegion())
}

// NormalizePhoneInRegion strips formatting, keeps the last 10 digits as the
// fallback key, and attempts a full E.164 parse in the given region.
func NormalizePhoneInRegion(raw, region string) CanonicalPhone {
	var p CanonicalPhone

	digits := DigitsOnly(raw)
	if len(digits) >= 10 {
		p.Last10 = digits[len(digits)-10:]
	}

	num, err := phonenumbers.Parse(raw, region)
	if err == nil && phonenumbers.IsValidNumber(num) {
		e164 := phonenumbers.Format(num, phonenumbers.E164)
		d := DigitsOnly(e164)
		// Short national numbers can't carry a last-10 key; without one the
		// E164/Last10 invariant breaks, so treat them as not derivable.
		if len(d) >= 10 {
			p.E164 = e164
			p.Last10 = d[len(d)-10:]
		}
	}

	return p
}

// DigitsOnly strips every non-digit character.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CanonicalizeMultiValue splits a delimiter-joined cell ("Toyota Camry; Honda
// Civic") into trimmed, de-duplicated values, preserving first-seen order.
func CanonicalizeMultiValue(raw, delimiter string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.Split(raw, delimiter) {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}

// ExtractEmbeddedPhone pulls the value of a "Phone:" labeled line out of a
// free-text blob, for booking events that have no dedicated phone field.
// Returns "" when no such line exists.
func ExtractEmbeddedPhone(freeText string) string {
	for _, line := range strings.Split(freeText, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) < 6 || !strings.EqualFold(trimmed[:6], "phone:") {
			continue
		}
		return strings.TrimSpace(trimmed[6:])
	}
	return ""
}
