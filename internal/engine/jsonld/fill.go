package jsonld

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_profile/internal/engine/profile"
	"github.com/anatolykoptev/go_profile/internal/engine/sections"
)

// Apply looks for a Person object in doc and fills the empty fields of p
// from it. It returns the names of the fields it filled.
func Apply(c *sections.Context, doc *goquery.Selection, p *profile.Profile) []string {
	person, ok := FindPerson(c, doc)
	if !ok {
		return nil
	}
	return Fill(p, Decode(person))
}

// Fill copies fallback values into p. A field or list that already holds a
// value is never overwritten.
func Fill(p *profile.Profile, f Fallback) []string {
	var filled []string
	setStr := func(name string, dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
			filled = append(filled, name)
		}
	}

	setStr("username", &p.Username, f.Username)
	setStr("header.name", &p.Header.Name, f.Name)
	setStr("header.headline", &p.Header.Headline, f.Headline)
	setStr("header.location", &p.Header.Location, f.Location)
	setStr("header.photo", &p.Header.PhotoURL, f.PhotoURL)
	if p.About == "" && p.Header.About == "" && f.About != "" {
		p.About, p.Header.About = f.About, f.About
		filled = append(filled, profile.SectionAbout)
	}
	if p.Header.Stats.Followers == nil && f.Followers != nil {
		n := *f.Followers
		p.Header.Stats.Followers = &n
		filled = append(filled, "header.stats.followers")
	}

	if len(p.Experience) == 0 && len(f.Experience) > 0 {
		p.Experience = f.Experience
		filled = append(filled, profile.SectionExperience)
	}
	if fillList(&p.Education, f.Education) {
		filled = append(filled, profile.SectionEducation)
	}
	if fillList(&p.Languages, f.Languages) {
		filled = append(filled, profile.SectionLanguages)
	}
	if fillList(&p.Honors, f.Honors) {
		filled = append(filled, profile.SectionHonors)
	}
	return filled
}

func fillList[T any](dst *[]T, src []T) bool {
	if len(*dst) > 0 || len(src) == 0 {
		return false
	}
	*dst = src
	return true
}
