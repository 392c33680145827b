package sections

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_profile/internal/engine/profile"
)

// Parse reads markup into a queryable document.
func Parse(markup string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("goquery parse: %w", err)
	}
	return doc, nil
}

// Main runs every extractor against the main document. Each section is
// guarded: a failing section is left empty and recorded as a warning.
func Main(c *Context, doc *goquery.Selection) profile.Profile {
	var p profile.Profile
	c.Guard("username", func() { p.Username = Username(c, doc) })
	c.Guard(profile.SectionHeader, func() {
		p.Header = Header(c, doc)
		p.About = p.Header.About
	})
	c.Guard(profile.SectionExperience, func() { p.Experience = Experience(c, doc) })
	c.Guard(profile.SectionEducation, func() { p.Education = Education(c, doc) })
	c.Guard(profile.SectionSkills, func() { p.Skills = Skills(c, doc) })
	c.Guard(profile.SectionLanguages, func() { p.Languages = Languages(c, doc) })
	for _, m := range DetailMappings {
		c.Guard(m.Section, func() { *p.DetailList(m.Section) = Details(c, doc, m) })
	}
	p.Normalize()
	return p
}

// Detail runs the extractor of one detail-capable section against its
// dedicated document. Only that section of the returned profile is filled.
func Detail(c *Context, doc *goquery.Selection, section string) (profile.Profile, error) {
	var p profile.Profile
	if !profile.IsDetailSection(section) {
		return p, fmt.Errorf("detail document %q: unknown section: %w", section, profile.ErrInvalidInput)
	}
	c.Guard(section, func() {
		switch section {
		case profile.SectionExperience:
			p.Experience = Experience(c, doc)
		case profile.SectionEducation:
			p.Education = Education(c, doc)
		case profile.SectionSkills:
			p.Skills = Skills(c, doc)
		case profile.SectionLanguages:
			p.Languages = Languages(c, doc)
		default:
			m, _ := MappingFor(section)
			*p.DetailList(section) = Details(c, doc, m)
		}
	})
	p.Normalize()
	return p, nil
}
