package rules

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// NonEmpty accepts any non-blank value.
func NonEmpty(s string) bool { return strings.TrimSpace(s) != "" }

// MaxLen accepts non-empty values shorter than n runes.
func MaxLen(n int) Predicate {
	return func(s string) bool {
		return NonEmpty(s) && utf8.RuneCountInString(s) < n
	}
}

// MinLen accepts values longer than n runes.
func MinLen(n int) Predicate {
	return func(s string) bool {
		return utf8.RuneCountInString(strings.TrimSpace(s)) > n
	}
}

// Excludes accepts non-empty values that do not match re.
func Excludes(re *regexp.Regexp) Predicate {
	return func(s string) bool {
		return NonEmpty(s) && !re.MatchString(s)
	}
}

// All accepts values that pass every predicate.
func All(preds ...Predicate) Predicate {
	return func(s string) bool {
		for _, p := range preds {
			if !p(s) {
				return false
			}
		}
		return true
	}
}

// Not inverts p.
func Not(p Predicate) Predicate {
	return func(s string) bool { return !p(s) }
}

var (
	durationRe = regexp.MustCompile(`(?i)\b(19|20)\d{2}\b|\bpresent\b|\b\d+\s*(yrs?|years?|mos?|months?)\b|\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{4}`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	digitRunRe = regexp.MustCompile(`\d`)
)

// LooksLikeDuration accepts date ranges such as "Jan 2020 - Present · 3 yrs".
func LooksLikeDuration(s string) bool { return durationRe.MatchString(s) }

// LooksLikeEmail accepts a bare address.
func LooksLikeEmail(s string) bool { return emailRe.MatchString(s) }

// LooksLikePhone accepts values carrying at least six digits and nothing
// but phone punctuation around them.
func LooksLikePhone(s string) bool {
	if len(digitRunRe.FindAllString(s, -1)) < 6 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case strings.ContainsRune(" +-().x/", r):
		default:
			return false
		}
	}
	return true
}

// HTTPURL accepts absolute http(s) URLs.
func HTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// TrimPrefix strips prefix case-insensitively, then surrounding space.
func TrimPrefix(prefix string) Transform {
	return func(s string) string {
		s = strings.TrimSpace(s)
		if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			s = s[len(prefix):]
		}
		return strings.TrimSpace(s)
	}
}

// countRe matches a digit group with optional thousands separators
// (comma, dot or space) and an optional trailing "+".
var countRe = regexp.MustCompile(`\d{1,3}(?:[,.\x{00a0} ]\d{3})+|\d+`)

// ParseCount extracts the first digit group from s: "1,234 followers" → 1234,
// "500+ connections" → 500.
func ParseCount(s string) (int, bool) {
	m := countRe.FindString(s)
	if m == "" {
		return 0, false
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, m)
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// HasCount accepts values carrying a digit group.
func HasCount(s string) bool {
	_, ok := ParseCount(s)
	return ok
}
