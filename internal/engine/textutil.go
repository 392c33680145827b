package engine

import (
	"regexp"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"

	"github.com/anatolykoptev/go_profile/internal/engine/profile"
)

var profilePathRe = regexp.MustCompile(`/in/([^/?#]+)`)

// sectionAliases maps the names detail pages go by on the site to section names.
var sectionAliases = map[string]string{
	"licenses_and_certifications": profile.SectionCertifications,
	"licenses":                    profile.SectionCertifications,
	"volunteering_experience":     profile.SectionVolunteer,
	"volunteering":                profile.SectionVolunteer,
	"honors_and_awards":           profile.SectionHonors,
	"awards":                      profile.SectionHonors,
	"language":                    profile.SectionLanguages,
	"skill":                       profile.SectionSkills,
}

// NormSection normalises a detail document name: lowercased, separators
// folded to '_', site aliases mapped to section names.
func NormSection(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	if alias, ok := sectionAliases[s]; ok {
		return alias
	}
	return s
}

// NormUsername accepts a bare username or a profile URL and returns the
// lowercased username.
func NormUsername(s string) string {
	s = strings.TrimSpace(s)
	if m := profilePathRe.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	return strings.ToLower(strings.Trim(s, "/ "))
}

// TruncateAtWord truncates a string to maxLen runes at a word boundary.
func TruncateAtWord(s string, maxLen int) string {
	return strutil.TruncateAtWord(s, maxLen)
}
