package sections

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_profile/internal/engine/profile"
	"github.com/anatolykoptev/go_profile/internal/engine/rules"
)

var skillsIDs = []string{"skills"}

var (
	endorseRe       = regexp.MustCompile(`(?i)\d[\d,.\s]*\+?\s*endorse`)
	inlineEndorseRe = regexp.MustCompile(`(?i)^(.*?)\s*·\s*(\d[\d,.\s]*\+?\s*endorsements?)\s*$`)
)

var (
	skillNameRules = rules.Chain(rules.Text, nil, rules.MaxLen(100),
		selTitle,
		`span.pv-skill-category-entity__name-text`,
		`span.pv-skill-category-entity__name`,
		`div.t-bold span`,
		`p.pv-skill-category-entity__name`,
	)

	endorsementRules = []rules.Rule{
		{Selector: `span.pv-skill-category-entity__endorsement-count`, Valid: rules.HasCount},
		{Selector: `span[aria-hidden="true"]`, Post: endorseRe.FindString},
		{Selector: `a[href*="endorse"]`, Post: endorseRe.FindString},
	}
)

// SkillKey is the identity used for skill de-duplication: case-folded with
// whitespace collapsed.
func SkillKey(name string) string {
	return strings.ToLower(rules.Collapse(name))
}

// Skills extracts skills with endorsement counts. Duplicates by SkillKey are
// dropped; the first occurrence keeps its position, and adopts a later
// duplicate's count when it had no endorsement data of its own.
func Skills(c *Context, doc *goquery.Selection) []profile.SkillEntry {
	container := locate(c, doc, profile.SectionSkills, skillsIDs)
	if container == nil {
		return []profile.SkillEntry{}
	}

	d := newSkillSet()
	items := topLevelItems(container)
	for i := range items.Length() {
		item := items.Eq(i)
		name, n, has := readSkill(c, item)
		ok := name != ""
		c.count(profile.SectionSkills, 1, btoi(ok))
		if ok {
			d.add(name, n, has)
		}
	}
	return d.entries()
}

func readSkill(c *Context, item *goquery.Selection) (name string, endorsements int, has bool) {
	res := rules.Resolve(headerOf(item), skillNameRules)
	c.note("skills.name", res)
	if !res.Ok() {
		return "", 0, false
	}
	name = res.Value
	if m := inlineEndorseRe.FindStringSubmatch(name); m != nil {
		name = strings.TrimSpace(m[1])
		endorsements, has = rules.ParseCount(m[2])
	}
	if !has {
		endorsements, has = rules.ParseCount(rules.First(item, endorsementRules))
	}
	return name, endorsements, has
}

// skillSet de-duplicates skills while preserving first-seen order.
type skillSet struct {
	list  []profile.SkillEntry
	index map[string]int
	has   []bool
}

func newSkillSet() *skillSet {
	return &skillSet{index: make(map[string]int)}
}

func (s *skillSet) add(name string, endorsements int, has bool) {
	name = rules.Collapse(name)
	key := SkillKey(name)
	if key == "" {
		return
	}
	if i, ok := s.index[key]; ok {
		if !s.has[i] && has {
			s.list[i].Endorsements = endorsements
			s.has[i] = true
		}
		return
	}
	s.index[key] = len(s.list)
	s.list = append(s.list, profile.SkillEntry{Name: name, Endorsements: endorsements})
	s.has = append(s.has, has)
}

func (s *skillSet) entries() []profile.SkillEntry {
	if s.list == nil {
		return []profile.SkillEntry{}
	}
	return s.list
}

// DedupSkills applies the skills de-duplication rule to an arbitrary list.
// A non-zero count is treated as endorsement data.
func DedupSkills(in []profile.SkillEntry) []profile.SkillEntry {
	d := newSkillSet()
	for _, e := range in {
		d.add(e.Name, e.Endorsements, e.Endorsements > 0)
	}
	return d.entries()
}
