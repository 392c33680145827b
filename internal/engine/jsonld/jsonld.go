// Package jsonld reads schema.org Person data embedded in a document and
// uses it to fill fields the markup extractors left empty.
package jsonld

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_profile/internal/engine/profile"
	"github.com/anatolykoptev/go_profile/internal/engine/rules"
	"github.com/anatolykoptev/go_profile/internal/engine/sections"
)

var usernameRe = regexp.MustCompile(`/in/([^/?#]+)`)

// Fallback is the profile data recovered from a Person object.
type Fallback struct {
	Username   string
	Name       string
	Headline   string
	Location   string
	PhotoURL   string
	About      string
	Followers  *int
	Experience profile.ExperienceList
	Education  []profile.EducationEntry
	Languages  []profile.LanguageEntry
	Honors     []profile.DetailItem
}

// FindPerson returns the first Person object found in the document's
// ld+json scripts: at top level, inside an array, or inside @graph.
// Scripts that fail to decode are reported as warnings and skipped.
func FindPerson(c *sections.Context, doc *goquery.Selection) (map[string]any, bool) {
	scripts := rules.Select(doc, `script[type="application/ld+json"]`)
	for i := range scripts.Length() {
		raw := strings.TrimSpace(scripts.Eq(i).Text())
		if raw == "" {
			continue
		}
		var data any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			c.Warn("jsonld", fmt.Errorf("script %d: %v: %w", i, err, profile.ErrMalformed))
			continue
		}
		if p, ok := findPerson(data); ok {
			return p, true
		}
	}
	return nil, false
}

func findPerson(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if p, ok := findPerson(item); ok {
				return p, true
			}
		}
	case map[string]any:
		if isPerson(t["@type"]) {
			return t, true
		}
		if g, ok := t["@graph"]; ok {
			return findPerson(g)
		}
	}
	return nil, false
}

func isPerson(v any) bool {
	for _, s := range strs(v) {
		if s == "Person" {
			return true
		}
	}
	return false
}

// Decode converts a Person object into a Fallback.
func Decode(person map[string]any) Fallback {
	f := Fallback{
		Name:     str(person["name"]),
		Headline: first(strs(person["jobTitle"])),
		Location: location(person["address"]),
		PhotoURL: image(person["image"]),
		About:    strings.TrimSpace(str(person["disambiguatingDescription"])),
	}
	for _, u := range append(strs(person["sameAs"]), str(person["url"])) {
		if m := usernameRe.FindStringSubmatch(u); m != nil {
			f.Username = m[1]
			break
		}
	}
	f.Followers = followers(person["interactionStatistic"])

	for _, w := range objects(person["worksFor"]) {
		if e := experience(w); e != nil {
			f.Experience = append(f.Experience, e)
		}
	}
	for _, a := range objects(person["alumniOf"]) {
		name := str(a["name"])
		if name == "" {
			continue
		}
		f.Education = append(f.Education, profile.EducationEntry{
			Institution: name,
			Duration:    duration(member(a)),
		})
	}
	for _, l := range list(person["knowsLanguage"]) {
		name := str(l)
		if m, ok := l.(map[string]any); ok {
			name = str(m["name"])
		}
		if name != "" {
			f.Languages = append(f.Languages, profile.LanguageEntry{Name: name})
		}
	}
	for _, a := range strs(person["awards"]) {
		f.Honors = append(f.Honors, profile.DetailItem{Title: a})
	}
	return f
}

// experience reads one worksFor organization. LinkedIn often names it
// "Title at Company"; otherwise the title comes from member.roleName.
func experience(org map[string]any) profile.Experience {
	name := str(org["name"])
	m := member(org)
	r := profile.Role{SkillTags: []string{}}
	if title, company, ok := strings.Cut(name, " at "); ok {
		r.Title, r.Company = strings.TrimSpace(title), strings.TrimSpace(company)
	} else {
		r.Title, r.Company = str(m["roleName"]), name
	}
	if r.Title == "" && r.Company == "" {
		return nil
	}
	r.EmploymentType = profile.ParseEmploymentType(strings.ReplaceAll(str(m["employmentType"]), "_", "-"))
	r.Duration = duration(m)
	r.Location = location(org["location"])
	if r.Location == "" {
		r.Location = location(m["location"])
	}
	r.Description = strings.TrimSpace(strings.ReplaceAll(str(m["description"]), "*", ""))
	return profile.Single{Role: r}
}

func member(org map[string]any) map[string]any {
	if m, ok := org["member"].(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// duration renders member dates as "start - end" or "start - Present".
func duration(m map[string]any) string {
	start := str(m["startDate"])
	if start == "" {
		return ""
	}
	if end := str(m["endDate"]); end != "" {
		return start + " - " + end
	}
	return start + " - Present"
}

// location joins locality, region and country of a PostalAddress. Plain
// strings and Place objects with a nested address are accepted too.
func location(v any) string {
	if s := str(v); s != "" {
		return s
	}
	for _, a := range objects(v) {
		if nested, ok := a["address"]; ok {
			if s := location(nested); s != "" {
				return s
			}
		}
		var parts []string
		for _, k := range []string{"addressLocality", "addressRegion", "addressCountry"} {
			part := str(a[k])
			if c, ok := a[k].(map[string]any); ok {
				part = str(c["name"])
			}
			if part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
		if s := str(a["name"]); s != "" {
			return s
		}
	}
	return ""
}

func image(v any) string {
	if s := str(v); s != "" {
		return s
	}
	for _, o := range objects(v) {
		for _, k := range []string{"contentUrl", "url"} {
			if s := str(o[k]); rules.HTTPURL(s) {
				return s
			}
		}
	}
	for _, s := range strs(v) {
		if rules.HTTPURL(s) {
			return s
		}
	}
	return ""
}

// followers reads userInteractionCount, preferring a FollowAction statistic.
func followers(v any) *int {
	stats := objects(v)
	for _, s := range stats {
		if strings.Contains(str(s["interactionType"]), "Follow") {
			return count(s["userInteractionCount"])
		}
		if t, ok := s["interactionType"].(map[string]any); ok && strings.Contains(str(t["@type"]), "Follow") {
			return count(s["userInteractionCount"])
		}
	}
	if len(stats) > 0 {
		return count(stats[0]["userInteractionCount"])
	}
	return nil
}

// count accepts whole numbers in [0, MaxInt32] and count strings.
func count(v any) *int {
	switch t := v.(type) {
	case float64:
		if t < 0 || t > math.MaxInt32 || t != math.Trunc(t) {
			return nil
		}
		n := int(t)
		return &n
	case string:
		if n, ok := rules.ParseCount(t); ok {
			return &n
		}
	}
	return nil
}

// str returns v as trimmed text; numbers are formatted, other shapes yield "".
func str(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

// list wraps a single value so both "x" and ["x"] shapes can be ranged over.
func list(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	}
	return []any{v}
}

func strs(v any) []string {
	var out []string
	for _, item := range list(v) {
		if s := str(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func objects(v any) []map[string]any {
	var out []map[string]any
	for _, item := range list(v) {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
