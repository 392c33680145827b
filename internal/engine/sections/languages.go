package sections

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_profile/internal/engine/profile"
	"github.com/anatolykoptev/go_profile/internal/engine/rules"
)

var languagesIDs = []string{"languages"}

var (
	languageNameRules = rules.Chain(rules.Text, nil, rules.MaxLen(100),
		selTitle,
		`h3 span[aria-hidden="true"]`,
		`div.t-bold span`,
		`span.pv-entity__language-name`,
		`h4.pv-accomplishment-entity__title`,
	)

	proficiencyRules = rules.Chain(rules.Text, nil, rules.MaxLen(200),
		selCaption,
		`div.pv-entity__proficiency`,
		`span[class*="proficiency"]`,
		`p.pv-accomplishment-entity__proficiency`,
	)
)

// Languages extracts spoken languages. Proficiency text is normalized to the
// canonical scale; unmatched text is kept as Other and a missing line yields
// the zero Proficiency.
func Languages(c *Context, doc *goquery.Selection) []profile.LanguageEntry {
	out := []profile.LanguageEntry{}
	container := locate(c, doc, profile.SectionLanguages, languagesIDs)
	if container == nil {
		return out
	}

	items := topLevelItems(container)
	for i := range items.Length() {
		item := items.Eq(i)
		name := rules.Resolve(headerOf(item), languageNameRules)
		c.note("languages.name", name)
		c.count(profile.SectionLanguages, 1, btoi(name.Ok()))
		if !name.Ok() {
			continue
		}
		out = append(out, profile.LanguageEntry{
			Name:        name.Value,
			Proficiency: profile.ParseProficiency(rules.First(item, proficiencyRules)),
		})
	}
	return out
}
