package sections

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/anatolykoptev/go_profile/internal/engine/profile"
	"github.com/anatolykoptev/go_profile/internal/engine/rules"
)

var (
	statsTextRe    = regexp.MustCompile(`(?i)\b(connections?|followers?)\b`)
	connectionsRe  = regexp.MustCompile(`(?i)\d[\d,.\s]*\+?\s*connections?\b`)
	followersRe    = regexp.MustCompile(`(?i)\d[\d,.\s]*\+?\s*followers?\b`)
	photoSizeRe    = regexp.MustCompile(`(?:shrink|scale)_(\d{3,4})_`)
	usernamePathRe = regexp.MustCompile(`/in/([^/?#]+)`)
	phoneLabelRe   = regexp.MustCompile(`(?i)^(phone|mobile|tel|work|home)\s*:?\s*`)
)

var (
	nameRules = rules.Chain(rules.Text, nil, rules.MaxLen(200),
		`h1.text-heading-xlarge`,
		`h1[class*="top-card"]`,
		`div.pv-text-details__left-panel h1`,
		`h1.inline.t-24`,
		`[data-generated-suggestion-target]`,
	)

	headlineRules = rules.Chain(rules.Text, nil, rules.All(rules.MaxLen(500), rules.Excludes(statsTextRe)),
		`div.text-body-medium.break-words`,
		`div.text-body-medium`,
		`div[class*="headline"]`,
		`div.pv-text-details__left-panel div.text-body-medium`,
		`h2.mt1.t-18`,
		`.top-card__headline`,
	)

	locationRules = rules.Chain(rules.Text, nil, rules.All(rules.MaxLen(100), rules.Excludes(statsTextRe)),
		`span.text-body-small.inline.t-black--light.break-words`,
		`div.pv-text-details__left-panel span.text-body-small`,
		`span.text-body-small`,
		`span.t-16.t-black.t-normal`,
		`div.top-card__subline-item`,
	)

	photoSelectors = []string{
		`img.pv-top-card-profile-picture__image`,
		`img[class*="profile-photo"]`,
		`button img[data-ghost-classes]`,
		`div.profile-photo-edit__preview img`,
	}

	emailRules = []rules.Rule{
		{Selector: `a[href^="mailto:"]`, Read: rules.Attr("href"), Post: rules.TrimPrefix("mailto:"), Valid: rules.LooksLikeEmail},
		{Selector: `section.pv-contact-info [class*="email"]`, Valid: rules.LooksLikeEmail},
	}

	phoneRules = rules.Chain(rules.Text, stripPhoneLabel, rules.LooksLikePhone,
		`span.t-14.t-black.t-normal[class*="phone"]`,
		`section.pv-contact-info span[class*="phone"]`,
		`[class*="phone"]`,
	)

	connectionsRules = append(
		rules.Chain(rules.Text, nil, rules.HasCount,
			`span.t-bold[class*="connection"]`,
			`li.pv-top-card--list-bullet span.t-bold`,
		),
		rules.Rule{Selector: `li, span`, Post: connectionsRe.FindString},
	)

	followersRules = append(
		rules.Chain(rules.Text, nil, rules.HasCount,
			`span.t-bold[class*="follower"]`,
		),
		rules.Rule{Selector: `li, span, p`, Post: followersRe.FindString},
	)

	usernameRules = []rules.Rule{
		{Selector: `link[rel="canonical"]`, Read: rules.Attr("href"), Post: usernameFromURL},
		{Selector: `meta[property="og:url"]`, Read: rules.Attr("content"), Post: usernameFromURL},
	}
)

func stripPhoneLabel(s string) string {
	return phoneLabelRe.ReplaceAllString(s, "")
}

// usernameFromURL returns the /in/<name> segment of a profile URL.
func usernameFromURL(s string) string {
	if m := usernamePathRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

// Username reads the entity's username from canonical links; "" when absent.
func Username(_ *Context, doc *goquery.Selection) string {
	return rules.First(doc, usernameRules)
}

// Header extracts the top card: identity, contact details and counters.
// The name stays empty when unresolved; the assembler applies the placeholder
// after the structured-data pass.
func Header(c *Context, doc *goquery.Selection) profile.Header {
	var h profile.Header
	attempted, succeeded := 0, 0
	field := func(name string, rs []rules.Rule) string {
		attempted++
		res := rules.Resolve(doc, rs)
		if !strings.HasPrefix(name, "stats.") {
			c.note("header."+name, res)
		}
		if res.Ok() {
			succeeded++
		}
		return res.Value
	}

	h.Name = field("name", nameRules)
	if h.Name == "" {
		c.Warn("header.name", profile.ErrNotFound)
	}
	h.Headline = field("headline", headlineRules)
	h.Location = field("location", locationRules)
	h.PhotoURL = field("photo", photoRules())
	h.About = About(c, doc)

	h.Contact.Email = field("contact.email", emailRules)
	h.Contact.Phone = field("contact.phone", phoneRules)
	h.Contact.Website = field("contact.website", websiteRules(c))

	h.Stats.Connections = count(field("stats.connections", connectionsRules))
	h.Stats.Followers = count(field("stats.followers", followersRules))

	c.count(profile.SectionHeader, attempted, succeeded)
	return h
}

// photoRules prefers high-resolution renditions: every selector is first
// tried for a URL with a size marker of at least 400px, then for any URL.
func photoRules() []rules.Rule {
	hiRes := func(s string) bool {
		if !rules.HTTPURL(s) {
			return false
		}
		m := photoSizeRe.FindStringSubmatch(s)
		if m == nil {
			return false
		}
		n, _ := strconv.Atoi(m[1])
		return n >= 400
	}
	out := rules.Chain(rules.Attr("src"), nil, hiRes, photoSelectors...)
	out = append(out, rules.Chain(rules.Attr("src"), nil, rules.HTTPURL, photoSelectors...)...)
	return append(out, rules.Rule{Selector: `meta[property="og:image"]`, Read: rules.Attr("content"), Valid: rules.HTTPURL})
}

// websiteRules skip links to the entity's own domains.
func websiteRules(c *Context) []rules.Rule {
	valid := func(s string) bool { return rules.HTTPURL(s) && !c.ownSite(s) }
	return rules.Chain(rules.Attr("href"), nil, valid,
		`a.pv-contact-info__contact-link`,
		`section.pv-contact-info a[href^="http"]`,
		`section.ci-websites a[href^="http"]`,
	)
}

func count(s string) *int {
	n, ok := rules.ParseCount(s)
	if !ok {
		return nil
	}
	return &n
}

// About reads the summary section, joining paragraphs with a blank line.
// Captures of 20 characters or fewer are rejected as placeholders.
func About(c *Context, doc *goquery.Selection) string {
	read := c.prose("\n\n")
	valid := rules.MinLen(20)
	rs := rules.Chain(read, nil, valid,
		`section#about div.pv-shared-text-with-see-more span[aria-hidden="true"]`,
		`section[data-section="summary"] span[aria-hidden="true"]`,
	)
	res := rules.Resolve(doc, rs)
	if !res.Ok() {
		// Modern markup: anchor div#about inside an unnamed section.
		if sec := anchorSection(doc, "about"); sec != nil {
			res = rules.Resolve(sec, rules.Chain(read, nil, valid, selDescInline, selDescSeeMore, `span[aria-hidden="true"]`))
		}
	}
	if !res.Ok() {
		res = rules.Resolve(doc, rules.Chain(read, nil, valid,
			`div.pv-about__summary-text`,
			`section[id*="about"] span[aria-hidden="true"]`,
		))
	}
	c.note(profile.SectionAbout, res)
	if res.Ok() {
		c.count(profile.SectionAbout, 1, 1)
	} else {
		c.count(profile.SectionAbout, 1, 0)
	}
	return res.Value
}

// anchorSection returns the section whose child is div#id, or nil.
func anchorSection(doc *goquery.Selection, id string) *goquery.Selection {
	anchors := rules.Select(doc, `div[id="`+id+`"]`)
	for i := range anchors.Length() {
		if p := anchors.Eq(i).Parent(); rules.Is(p, "section") {
			return p
		}
	}
	return nil
}
