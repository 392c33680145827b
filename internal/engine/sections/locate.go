package sections

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_profile/internal/engine/profile"
	"github.com/anatolykoptev/go_profile/internal/engine/rules"
)

// Selectors shared by the list-style sections.
const (
	selTitle       = `div.display-flex.align-items-center span[aria-hidden="true"]`
	selTitleLoose  = `div.display-flex span[aria-hidden="true"]`
	selSubtitle    = `span.t-14.t-normal:not(.t-black--light) span[aria-hidden="true"]`
	selSecondary   = `span.t-14.t-normal span[aria-hidden="true"]`
	selCaption     = `span.t-14.t-normal.t-black--light span[aria-hidden="true"]`
	selDescSeeMore = `div.pv-shared-text-with-see-more span[aria-hidden="true"]`
	selDescInline  = `div.inline-show-more-text span[aria-hidden="true"]`
)

var (
	titleRules = rules.Chain(rules.Text, nil, rules.MaxLen(200),
		selTitle,
		selTitleLoose,
		`div[class*="entity-result__title"] span[aria-hidden="true"]`,
		`h3 span[aria-hidden="true"]`,
		`div.mr1.t-bold span`,
		`div.t-bold span`,
		`.pv-entity__role-details-container div.t-bold`,
	)

	// Prefixed sub-lines that are never free-text descriptions.
	labelledLineRe = regexp.MustCompile(`(?i)^(skills|grade|activities and societies|cause|credential id|issued by)\s*:`)
)

// isLabelled reports whether s is a "Label: value" sub-line, in plain or
// markdown form.
func isLabelled(s string) bool {
	return labelledLineRe.MatchString(strings.TrimLeft(strings.TrimSpace(s), "*_ "))
}

// isRoleTitle accepts the text of a role heading.
func isRoleTitle(s string) bool {
	return rules.MaxLen(200)(s) && !isLabelled(s)
}

// locate finds a section container. Exact id or data-section matches win,
// then a section that is the parent of an anchor div carrying the id, then
// looser id matches. Detail documents fall back to <main> and <body>. A miss
// records structural drift.
func locate(c *Context, doc *goquery.Selection, section string, ids []string) *goquery.Selection {
	first := func(sels ...string) *goquery.Selection {
		for _, sel := range sels {
			if m := rules.Select(doc, sel); m.Length() > 0 {
				return m.First()
			}
		}
		return nil
	}
	for _, id := range ids {
		if s := first(`section[id="`+id+`"]`, `section[data-section="`+id+`"]`); s != nil {
			return s
		}
	}
	for _, id := range ids {
		if s := anchorSection(doc, id); s != nil {
			return s
		}
	}
	for _, id := range ids {
		if s := first(`section[id*="`+id+`"]`, `div#`+id+`-section`); s != nil {
			return s
		}
	}
	if c.opts.Detail {
		if s := first("main", "body"); s != nil {
			return s
		}
	}
	c.Warn(section, profile.ErrStructuralDrift)
	return nil
}

// topLevelItems returns the <li> children of the lists inside container that
// have no list ancestor below container. Items of nested lists belong to
// their enclosing item and are never returned.
func topLevelItems(container *goquery.Selection) *goquery.Selection {
	lists := rules.Select(container, "ul, ol").FilterFunction(func(_ int, l *goquery.Selection) bool {
		return l.ParentsUntilSelection(container).Filter("ul, ol").Length() == 0
	})
	items := lists.ChildrenFiltered("li")
	if items.Length() == 0 {
		items = rules.Select(container, "div.pv-skill-category-entity, div.pv-education-entity, li.pvs-list__paged-list-item, li.artdeco-list__item")
	}
	return items
}

// nestedItems returns the first-level <li> items of lists nested in item.
func nestedItems(item *goquery.Selection) *goquery.Selection {
	lists := rules.Select(item, "ul, ol").FilterFunction(func(_ int, l *goquery.Selection) bool {
		return l.ParentsUntilSelection(item).Filter("ul, ol").Length() == 0
	})
	return lists.ChildrenFiltered("li")
}

// headerOf returns a detached copy of item without its nested lists, so the
// first-match rules see only the item's own heading lines.
func headerOf(item *goquery.Selection) *goquery.Selection {
	h := item.Clone()
	rules.Select(h, "ul, ol").Remove()
	return h
}

// dotParts splits "Acme · Full-time" into trimmed, non-empty segments.
func dotParts(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "·") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// descriptionRules reads paragraph-preserving prose, skipping labelled
// sub-lines such as "Skills: ..." or "Grade: ...".
func descriptionRules(c *Context) []rules.Rule {
	valid := func(s string) bool {
		return rules.NonEmpty(s) && !isLabelled(s)
	}
	return rules.Chain(c.prose("\n"), strings.TrimSpace, valid,
		selDescSeeMore,
		selDescInline,
		`div[class*="show-more-less"] span[aria-hidden="true"]`,
		`div.pv-entity__description`,
		`div.pv-about__summary-text`,
	)
}
