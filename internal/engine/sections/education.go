package sections

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_profile/internal/engine/profile"
	"github.com/anatolykoptev/go_profile/internal/engine/rules"
)

var educationIDs = []string{"education"}

var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

var (
	institutionRules = rules.Chain(rules.Text, nil, rules.MaxLen(300),
		selTitle,
		`h3 span[aria-hidden="true"]`,
		`div.t-bold span`,
		`div.pv-entity__school-name`,
		`h3.pv-entity__school-name`,
	)

	degreeRules = []rules.Rule{
		{Selector: selSubtitle, Valid: rules.All(rules.NonEmpty, rules.Not(isEducationDuration))},
		{Selector: `div.pv-entity__degree-name span.pv-entity__comma-item`},
		{Selector: `p.pv-entity__degree-name span.pv-entity__comma-item`},
		{Selector: `p.pv-entity__secondary-title`},
	}

	fieldRules = rules.Chain(rules.Text, nil, rules.NonEmpty,
		`div.pv-entity__fos span.pv-entity__comma-item`,
		`p.pv-entity__fos span.pv-entity__comma-item`,
		`span[class*="field-of-study"]`,
	)

	educationDurationRules = rules.Chain(rules.Text, nil, isEducationDuration,
		selCaption,
		`span.pv-entity__dates span:nth-child(2)`,
		`div.pv-entity__dates span`,
		`p.pv-entity__dates time`,
	)

	gradeRules = []rules.Rule{
		{Selector: `span[class*="grade"]`, Post: rules.TrimPrefix("Grade:")},
		{Selector: `div.pv-entity__grade span`, Post: rules.TrimPrefix("Grade:")},
		{Selector: `span[aria-hidden="true"]`, Post: labelValue("Grade:")},
	}

	activitiesRules = []rules.Rule{
		{Selector: `div[class*="activities"] span[aria-hidden="true"]`, Post: rules.TrimPrefix("Activities and societies:")},
		{Selector: `div.pv-entity__extra-details span.activities-societies`},
		{Selector: `span[aria-hidden="true"]`, Post: labelValue("Activities and societies:")},
	}
)

// labelValue keeps the value of a "Label: value" line and drops any other text.
func labelValue(label string) rules.Transform {
	return func(s string) string {
		s = strings.TrimSpace(s)
		if len(s) < len(label) || !strings.EqualFold(s[:len(label)], label) {
			return ""
		}
		return strings.TrimSpace(s[len(label):])
	}
}

func isEducationDuration(s string) bool {
	return rules.LooksLikeDuration(s) || yearRe.MatchString(s)
}

// Education extracts school records. A combined "Degree, Field" line is
// split on its first comma when no separate field element exists.
func Education(c *Context, doc *goquery.Selection) []profile.EducationEntry {
	out := []profile.EducationEntry{}
	container := locate(c, doc, profile.SectionEducation, educationIDs)
	if container == nil {
		return out
	}

	items := topLevelItems(container)
	for i := range items.Length() {
		e := educationEntry(c, items.Eq(i))
		ok := e.Institution != "" || e.Degree != ""
		c.count(profile.SectionEducation, 1, btoi(ok))
		if ok {
			out = append(out, e)
		}
	}
	return out
}

func educationEntry(c *Context, item *goquery.Selection) profile.EducationEntry {
	head := headerOf(item)
	var e profile.EducationEntry

	inst := rules.Resolve(head, institutionRules)
	c.note("education.institution", inst)
	e.Institution = inst.Value

	degree := rules.First(head, degreeRules)
	if degree == e.Institution {
		degree = ""
	}
	e.FieldOfStudy = rules.First(head, fieldRules)
	if e.FieldOfStudy == "" {
		if d, f, ok := strings.Cut(degree, ","); ok {
			degree, e.FieldOfStudy = strings.TrimSpace(d), strings.TrimSpace(f)
		}
	}
	e.Degree = degree

	e.Duration = rules.First(head, educationDurationRules)
	e.Grade = rules.First(item, gradeRules)
	e.Activities = rules.First(item, activitiesRules)

	desc := rules.Resolve(item, descriptionRules(c))
	c.note("education.description", desc)
	e.Description = desc.Value
	return e
}
