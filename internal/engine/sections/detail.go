package sections

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_profile/internal/engine/profile"
	"github.com/anatolykoptev/go_profile/internal/engine/rules"
)

// DetailMapping parameterizes the shared DetailItem routine for one section.
type DetailMapping struct {
	Section      string
	IDs          []string
	Title        []rules.Rule
	Organization []rules.Rule
	DateRange    []rules.Rule
	Identifier   []rules.Rule
	// ItemText uses the whole item text as the title when no title rule
	// matches (plain <li>Course name</li> markup).
	ItemText bool
	// NoDescription skips the prose description.
	NoDescription bool
}

var credentialIDRe = regexp.MustCompile(`(?i)^credential\s*id\b`)

var (
	detailTitleRules = rules.Chain(rules.Text, nil, rules.All(rules.MaxLen(300), rules.Not(isLabelled)),
		selTitle,
		selTitleLoose,
		`h3 span[aria-hidden="true"]`,
		`div.t-bold span`,
		`div.t-bold`,
	)

	detailOrgRules = rules.Chain(rules.Text, nil, rules.All(rules.MaxLen(300), rules.Not(rules.LooksLikeDuration), rules.Not(isLabelled)),
		selSubtitle,
		selSecondary,
		`span.t-14.t-normal`,
	)

	detailDateRules = rules.Chain(rules.Text, nil, rules.All(rules.NonEmpty, rules.Not(isLabelled)),
		selCaption,
		`span.t-14.t-normal.t-black--light`,
		`span[class*="date"]`,
	)

	linkRules = rules.Chain(rules.Attr("href"), nil, rules.HTTPURL,
		`a[href^="http"]`,
	)
)

// credentialIDFromLine keeps the id of a "Credential ID ABC-123" line.
func credentialIDFromLine(s string) string {
	if !credentialIDRe.MatchString(s) {
		return ""
	}
	s = credentialIDRe.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), ":"))
}

// DetailMappings lists the six DetailItem sections in profile order.
var DetailMappings = []DetailMapping{
	CertificationsMapping,
	VolunteerMapping,
	ProjectsMapping,
	PublicationsMapping,
	HonorsMapping,
	CoursesMapping,
}

var CertificationsMapping = DetailMapping{
	Section: profile.SectionCertifications,
	IDs:     []string{"licenses_and_certifications", "licenses", "certifications"},
	Title:   detailTitleRules,
	Organization: concat(rules.Chain(rules.Text, nil, rules.NonEmpty,
		`div.pv-certifications__summary-info p`,
		`span[class*="issuer"]`,
	), detailOrgRules),
	DateRange: rules.Chain(rules.Text, rules.TrimPrefix("Issued"), rules.NonEmpty,
		selCaption,
		`div.pv-certifications__summary-info span.t-14`,
		`span[class*="date"]`,
	),
	Identifier: concat([]rules.Rule{
		{Selector: `span[aria-hidden="true"]`, Post: credentialIDFromLine},
		{Selector: `span[class*="credential-id"]`, Post: credentialIDFromLine},
		{Selector: `a[href*="credential"]`, Read: rules.Attr("href"), Valid: rules.HTTPURL},
	}, linkRules),
}

var VolunteerMapping = DetailMapping{
	Section:      profile.SectionVolunteer,
	IDs:          []string{"volunteering_experience", "volunteering", "volunteer"},
	Title:        detailTitleRules,
	Organization: concat(detailOrgRules, []rules.Rule{{Selector: `div[class*="organization"]`}}),
	DateRange: rules.Chain(rules.Text, nil, rules.LooksLikeDuration,
		selCaption,
		`span[class*="date-range"]`,
	),
}

var ProjectsMapping = DetailMapping{
	Section:    profile.SectionProjects,
	IDs:        []string{"projects"},
	Title:      detailTitleRules,
	DateRange:  detailDateRules,
	Identifier: linkRules,
}

var PublicationsMapping = DetailMapping{
	Section:      profile.SectionPublications,
	IDs:          []string{"publications"},
	Title:        detailTitleRules,
	Organization: detailOrgRules,
	DateRange:    detailDateRules,
	Identifier:   linkRules,
}

var HonorsMapping = DetailMapping{
	Section: profile.SectionHonors,
	IDs:     []string{"honors_and_awards", "honors", "awards"},
	Title:   detailTitleRules,
	Organization: concat(rules.Chain(rules.Text, rules.TrimPrefix("Issued by"), rules.NonEmpty,
		`span[class*="issuer"]`,
	), detailOrgRules),
	DateRange: detailDateRules,
}

var CoursesMapping = DetailMapping{
	Section:       profile.SectionCourses,
	IDs:           []string{"courses"},
	Title:         detailTitleRules,
	Organization:  rules.Chain(rules.Text, rules.TrimPrefix("Associated with"), rules.NonEmpty, selCaption),
	Identifier:    rules.Chain(rules.Text, nil, rules.NonEmpty, selSubtitle),
	ItemText:      true,
	NoDescription: true,
}

// MappingFor returns the mapping of a DetailItem section.
func MappingFor(section string) (DetailMapping, bool) {
	for _, m := range DetailMappings {
		if m.Section == section {
			return m, true
		}
	}
	return DetailMapping{}, false
}

// Details runs the shared DetailItem routine for one mapping.
func Details(c *Context, doc *goquery.Selection, m DetailMapping) []profile.DetailItem {
	out := []profile.DetailItem{}
	container := locate(c, doc, m.Section, m.IDs)
	if container == nil {
		return out
	}

	items := topLevelItems(container)
	for i := range items.Length() {
		item, ok := detailItem(c, items.Eq(i), m)
		c.count(m.Section, 1, btoi(ok))
		if ok {
			out = append(out, item)
		}
	}
	return out
}

func detailItem(c *Context, item *goquery.Selection, m DetailMapping) (profile.DetailItem, bool) {
	head := headerOf(item)
	var d profile.DetailItem

	title := rules.Resolve(head, m.Title)
	switch {
	case title.Ok():
		d.Title = title.Value
	case m.ItemText:
		d.Title = rules.Text(head)
	}
	if d.Title == "" {
		c.note(m.Section+".title", title)
		return d, false
	}

	d.Organization = resolveOther(head, m.Organization, d.Title)
	d.DateRange = resolveOther(head, m.DateRange, d.Title, d.Organization)
	d.Identifier = rules.First(item, m.Identifier)
	if d.Identifier == d.Title {
		d.Identifier = ""
	}
	if !m.NoDescription {
		desc := rules.Resolve(item, descriptionRules(c))
		c.note(m.Section+".description", desc)
		d.Description = desc.Value
	}
	return d, true
}

func concat(lists ...[]rules.Rule) []rules.Rule {
	var out []rules.Rule
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// resolveOther resolves rs but skips values equal to an already-filled field.
func resolveOther(scope *goquery.Selection, rs []rules.Rule, taken ...string) string {
	if len(rs) == 0 {
		return ""
	}
	guarded := make([]rules.Rule, len(rs))
	for i, r := range rs {
		valid := r.Valid
		if valid == nil {
			valid = rules.NonEmpty
		}
		r.Valid = func(s string) bool {
			for _, t := range taken {
				if t != "" && s == t {
					return false
				}
			}
			return valid(s)
		}
		guarded[i] = r
	}
	return rules.First(scope, guarded)
}
