package sections

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_profile/internal/engine/profile"
	"github.com/anatolykoptev/go_profile/internal/engine/rules"
)

var experienceIDs = []string{"experience"}

var (
	roleTitleRules = rules.Chain(rules.Text, nil, isRoleTitle, selTitle)

	companyRules = []rules.Rule{
		{Selector: selSubtitle, Valid: rules.All(rules.NonEmpty, rules.Not(rules.LooksLikeDuration))},
		{Selector: selSecondary, Valid: rules.All(rules.NonEmpty, rules.Not(rules.LooksLikeDuration))},
		{Selector: `div.pv-entity__secondary-title`},
		{Selector: `span.pv-entity__secondary-title`},
		{Selector: `div[class*="company-name"]`},
		{Selector: `a[data-control-name*="background_details_company"]`},
	}

	durationRules = rules.Chain(rules.Text, nil, rules.LooksLikeDuration,
		selCaption,
		`span.pv-entity__date-range span:nth-child(2)`,
		`div.pv-entity__date-range span`,
		`span[class*="date-range"]`,
	)
)

// Experience extracts the experience section. Only top-level items of
// top-level lists become entries; an item whose nested list carries a role
// heading is a company group. A group with one role collapses to Single.
func Experience(c *Context, doc *goquery.Selection) profile.ExperienceList {
	out := profile.ExperienceList{}
	container := locate(c, doc, profile.SectionExperience, experienceIDs)
	if container == nil {
		return out
	}

	items := topLevelItems(container)
	for i := range items.Length() {
		item := items.Eq(i)
		var e profile.Experience
		if roles := nestedRoles(item); len(roles) > 0 {
			e = groupedEntry(c, item, roles)
		} else {
			e = singleEntry(c, item)
		}
		c.count(profile.SectionExperience, 1, btoi(e != nil))
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

// nestedRoles returns the nested list items that carry a role heading.
// Nested lists holding only description or skill lines yield nothing.
func nestedRoles(item *goquery.Selection) []*goquery.Selection {
	var roles []*goquery.Selection
	nested := nestedItems(item)
	for i := range nested.Length() {
		n := nested.Eq(i)
		if rules.Resolve(headerOf(n), roleTitleRules).Ok() {
			roles = append(roles, n)
		}
	}
	return roles
}

func groupedEntry(c *Context, item *goquery.Selection, nodes []*goquery.Selection) profile.Experience {
	head := headerOf(item)
	company := rules.First(head, titleRules)
	if company == "" {
		c.Warn("experience.company", profile.ErrNotFound)
	}

	// The group caption reads "Full-time · 5 yrs 2 mos"; the location line
	// is the caption that is not a duration.
	var groupType profile.EmploymentType
	var total string
	for _, part := range dotParts(rules.First(head, rules.Chain(rules.Text, nil, rules.NonEmpty, selSecondary))) {
		switch {
		case profile.ParseEmploymentType(part) != profile.EmploymentUnknown && groupType == profile.EmploymentUnknown:
			groupType = profile.ParseEmploymentType(part)
		case rules.LooksLikeDuration(part):
			total = joinDot(total, part)
		}
	}
	location := rules.First(head, rules.Chain(rules.Text, nil, isLocation, selCaption))

	roles := make([]profile.Role, 0, len(nodes))
	for _, n := range nodes {
		r, ok := extractRole(c, n)
		if !ok {
			continue
		}
		if r.EmploymentType == profile.EmploymentUnknown {
			r.EmploymentType = groupType
		}
		roles = append(roles, r)
	}
	return profile.NewGrouped(company, total, location, roles)
}

func singleEntry(c *Context, item *goquery.Selection) profile.Experience {
	r, ok := extractRole(c, item)
	if !ok {
		return nil
	}
	return profile.Single{Role: r}
}

// extractRole reads one role. Heading lines come from the item without its
// nested lists; description and skill tags may live inside them.
func extractRole(c *Context, scope *goquery.Selection) (profile.Role, bool) {
	head := headerOf(scope)
	title := rules.Resolve(head, titleRules)
	if !title.Ok() {
		c.note("experience.title", title)
		return profile.Role{}, false
	}
	r := profile.Role{Title: title.Value, SkillTags: []string{}}

	if line := rules.First(head, companyRules); line != "" && line != r.Title {
		parts := dotParts(line)
		for _, p := range parts {
			if t := profile.ParseEmploymentType(p); t != profile.EmploymentUnknown {
				r.EmploymentType = t
				continue
			}
			if r.Company == "" {
				r.Company = p
			}
		}
	}

	r.Duration = rules.First(head, durationRules)
	if r.EmploymentType == profile.EmploymentUnknown {
		for _, p := range dotParts(r.Duration) {
			if t := profile.ParseEmploymentType(p); t != profile.EmploymentUnknown {
				r.EmploymentType = t
			}
		}
	}
	r.Location = rules.First(head, rules.Chain(rules.Text, nil, func(s string) bool {
		return isLocation(s) && s != r.Duration
	}, selCaption, `span.pv-entity__location span:nth-child(2)`, `div.pv-entity__location span`))

	desc := rules.Resolve(scope, descriptionRules(c))
	c.note("experience.description", desc)
	r.Description = desc.Value

	for i, s := 0, rules.Select(scope, `span[aria-hidden="true"], div[class*="skill"]`); i < s.Length(); i++ {
		text := rules.Text(s.Eq(i))
		if !strings.HasPrefix(strings.ToLower(text), "skills:") {
			continue
		}
		r.SkillTags = splitTags(rules.TrimPrefix("Skills:")(text))
		break
	}
	return r, true
}

// isLocation accepts a caption that is neither a date range nor a labelled line.
func isLocation(s string) bool {
	return rules.MaxLen(100)(s) && !rules.LooksLikeDuration(s) && !isLabelled(s) &&
		profile.ParseEmploymentType(s) == profile.EmploymentUnknown
}

// splitTags splits "Go · SQL, Kubernetes" into tags, dropping blanks.
func splitTags(s string) []string {
	tags := []string{}
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == '·' || r == ',' }) {
		if p = rules.Collapse(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func joinDot(a, b string) string {
	if a == "" {
		return b
	}
	return a + " · " + b
}

func btoi(b bool) int {
	if b {
		return 1
	}
	return 0
}
