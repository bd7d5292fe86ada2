package phone

import "strings"

// Normalizer canonicalizes free-form phone input into international
// form for one country. The zero value is not usable; construct with
// New so the country rules are explicit.
type Normalizer struct {
	countryCode string // calling code without '+', e.g. "593"
	trunkPrefix string // national trunk digit, e.g. "0"
}

func New(countryCode, trunkPrefix string) *Normalizer {
	return &Normalizer{countryCode: countryCode, trunkPrefix: trunkPrefix}
}

// Normalize returns the canonical international form of raw.
// The result is deterministic and idempotent: feeding an already
// canonical number back in returns it unchanged.
//
// Rules, applied to the digit/plus-stripped input:
//   - "+<cc>0…"  → duplicated trunk zero after the country code is dropped
//   - "0…"       → trunk prefix replaced with "+<cc>"
//   - no "+"     → "+<cc>" prepended
func (n *Normalizer) Normalize(raw string) string {
	cleaned := strip(raw)
	if cleaned == "" {
		return ""
	}

	doubled := "+" + n.countryCode + n.trunkPrefix
	if strings.HasPrefix(cleaned, doubled) {
		return "+" + n.countryCode + cleaned[len(doubled):]
	}
	if strings.HasPrefix(cleaned, "+") {
		return cleaned
	}
	if strings.HasPrefix(cleaned, n.trunkPrefix) {
		return "+" + n.countryCode + cleaned[len(n.trunkPrefix):]
	}
	return "+" + n.countryCode + cleaned
}

// IsNationalID reports whether raw looks like a bare national-ID string
// rather than a phone number: five or more digits and no '+' prefix.
// Such input is an identity key of its own and must not be
// phone-normalized.
func IsNationalID(raw string) bool {
	cleaned := strip(raw)
	if len(cleaned) < 5 || strings.HasPrefix(cleaned, "+") {
		return false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// strip removes everything except digits and a leading '+'.
func strip(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			continue
		}
		if r == '+' && b.Len() == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
