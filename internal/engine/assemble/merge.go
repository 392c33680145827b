package assemble

import (
	"github.com/anatolykoptev/go_profile/internal/engine/profile"
	"github.com/anatolykoptev/go_profile/internal/engine/sections"
)

// Merge reconciles one section: a non-empty detail result replaces the main
// result wholesale, an empty one keeps it.
func Merge[T any](main, detail []T) []T {
	if len(detail) > 0 {
		return detail
	}
	return main
}

// mergeSection applies Merge to the named section of p using the detail
// profile d. It reports whether the detail result replaced the main one.
func mergeSection(p *profile.Profile, d profile.Profile, section string) bool {
	switch section {
	case profile.SectionExperience:
		p.Experience = Merge(p.Experience, d.Experience)
		return len(d.Experience) > 0
	case profile.SectionEducation:
		p.Education = Merge(p.Education, d.Education)
		return len(d.Education) > 0
	case profile.SectionSkills:
		p.Skills = sections.DedupSkills(Merge(p.Skills, d.Skills))
		return len(d.Skills) > 0
	case profile.SectionLanguages:
		p.Languages = Merge(p.Languages, d.Languages)
		return len(d.Languages) > 0
	}
	if dst := p.DetailList(section); dst != nil {
		src := *d.DetailList(section)
		*dst = Merge(*dst, src)
		return len(src) > 0
	}
	return false
}
