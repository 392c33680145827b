package sections

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_profile/internal/engine/profile"
)

func parse(t *testing.T, markup string) *goquery.Selection {
	t.Helper()
	doc, err := Parse(markup)
	require.NoError(t, err)
	return doc.Selection
}

const experienceHTML = `<html><body><main>
<section class="artdeco-card">
  <div id="experience" class="pv-profile-card__anchor"></div>
  <div class="pvs-list__outer-container">
    <ul class="pvs-list">
      <li class="artdeco-list__item pvs-list__paged-list-item">
        <div class="display-flex flex-column">
          <div class="display-flex align-items-center mr1 t-bold"><span aria-hidden="true">Globex</span></div>
          <span class="t-14 t-normal"><span aria-hidden="true">Full-time · 6 yrs 2 mos</span></span>
          <span class="t-14 t-normal t-black--light"><span aria-hidden="true">Berlin, Germany</span></span>
        </div>
        <div class="pvs-list__outer-container">
          <ul class="pvs-list">
            <li>
              <div class="display-flex align-items-center mr1 t-bold"><span aria-hidden="true">Principal Engineer</span></div>
              <span class="t-14 t-normal t-black--light"><span aria-hidden="true">Jan 2022 - Present · 2 yrs</span></span>
              <ul>
                <li><div class="inline-show-more-text"><span aria-hidden="true">Leads the platform group.<br>Owns the roadmap.</span></div></li>
                <li><div class="inline-show-more-text"><span aria-hidden="true"><strong>Skills:</strong> Go · Kubernetes</span></div></li>
              </ul>
            </li>
            <li>
              <div class="display-flex align-items-center mr1 t-bold"><span aria-hidden="true">Senior Engineer</span></div>
              <span class="t-14 t-normal t-black--light"><span aria-hidden="true">Jan 2020 - Dec 2021 · 2 yrs</span></span>
            </li>
            <li>
              <div class="display-flex align-items-center mr1 t-bold"><span aria-hidden="true">Engineer</span></div>
              <span class="t-14 t-normal"><span aria-hidden="true">Part-time</span></span>
              <span class="t-14 t-normal t-black--light"><span aria-hidden="true">Jan 2018 - Dec 2019 · 2 yrs</span></span>
            </li>
          </ul>
        </div>
      </li>
      <li class="artdeco-list__item pvs-list__paged-list-item">
        <div class="display-flex align-items-center mr1 t-bold"><span aria-hidden="true">Software Engineer</span></div>
        <span class="t-14 t-normal"><span aria-hidden="true">Acme · Contract</span></span>
        <span class="t-14 t-normal t-black--light"><span aria-hidden="true">Mar 2016 - Dec 2017 · 1 yr 10 mos</span></span>
        <span class="t-14 t-normal t-black--light"><span aria-hidden="true">Remote</span></span>
        <ul>
          <li><div class="inline-show-more-text"><span aria-hidden="true">Built the billing pipeline.</span></div></li>
        </ul>
      </li>
    </ul>
  </div>
</section>
</main></body></html>`

func TestExperienceGroupedCountsOnce(t *testing.T) {
	c := NewContext(Options{})
	got := Experience(c, parse(t, experienceHTML))

	require.Len(t, got, 2, "a company with nested roles is one entry")

	g, ok := got[0].(profile.Grouped)
	require.True(t, ok, "expected Grouped, got %T", got[0])
	assert.Equal(t, "Globex", g.Company)
	assert.Equal(t, "6 yrs 2 mos", g.TotalDuration)
	assert.Equal(t, "Berlin, Germany", g.Location)
	require.Len(t, g.Roles, 3)

	assert.Equal(t, "Principal Engineer", g.Roles[0].Title)
	assert.Equal(t, "Jan 2022 - Present · 2 yrs", g.Roles[0].Duration)
	assert.Equal(t, profile.EmploymentFullTime, g.Roles[0].EmploymentType)
	assert.Equal(t, "Leads the platform group.\nOwns the roadmap.", g.Roles[0].Description)
	assert.Equal(t, []string{"Go", "Kubernetes"}, g.Roles[0].SkillTags)

	assert.Equal(t, "Senior Engineer", g.Roles[1].Title)
	assert.Empty(t, g.Roles[1].SkillTags)
	assert.Equal(t, profile.EmploymentPartTime, g.Roles[2].EmploymentType)

	s, ok := got[1].(profile.Single)
	require.True(t, ok, "expected Single, got %T", got[1])
	assert.Equal(t, "Software Engineer", s.Title)
	assert.Equal(t, "Acme", s.Company)
	assert.Equal(t, profile.EmploymentContract, s.EmploymentType)
	assert.Equal(t, "Mar 2016 - Dec 2017 · 1 yr 10 mos", s.Duration)
	assert.Equal(t, "Remote", s.Location)
	assert.Equal(t, "Built the billing pipeline.", s.Description)

	stats := c.Stats()[profile.SectionExperience]
	assert.Equal(t, profile.SectionStats{Attempted: 2, Succeeded: 2}, stats)
}

func TestExperienceSingleRoleGroup(t *testing.T) {
	c := NewContext(Options{})
	got := Experience(c, parse(t, `<html><body><section id="experience"><ul>
<li>
  <div class="display-flex align-items-center"><span aria-hidden="true">Globex</span></div>
  <span class="t-14 t-normal"><span aria-hidden="true">Full-time · 3 yrs</span></span>
  <span class="t-14 t-normal t-black--light"><span aria-hidden="true">Berlin, Germany</span></span>
  <ul><li>
    <div class="display-flex align-items-center"><span aria-hidden="true">Principal Engineer</span></div>
    <span class="t-14 t-normal t-black--light"><span aria-hidden="true">Jan 2022 - Present · 3 yrs</span></span>
  </li></ul>
</li>
</ul></section></body></html>`))

	require.Len(t, got, 1)
	s, ok := got[0].(profile.Single)
	require.True(t, ok, "expected Single, got %T", got[0])
	assert.Equal(t, "Principal Engineer", s.Title)
	assert.Equal(t, "Globex", s.Company)
	assert.Equal(t, profile.EmploymentFullTime, s.EmploymentType)
	assert.Equal(t, "Jan 2022 - Present · 3 yrs", s.Duration)
	assert.Equal(t, "Berlin, Germany", s.Location)
	assert.Equal(t, profile.SectionStats{Attempted: 1, Succeeded: 1}, c.Stats()[profile.SectionExperience])
}

func TestExperienceCompanyNamedLikeEmploymentType(t *testing.T) {
	tests := []struct {
		name        string
		line        string
		wantCompany string
		wantType    profile.EmploymentType
	}{
		{"company with type", "Freelancer.com · Full-time", "Freelancer.com", profile.EmploymentFullTime},
		{"company only", "Contract Logistics GmbH", "Contract Logistics GmbH", profile.EmploymentUnknown},
		{"type after company", "Internship Program Office · Internship", "Internship Program Office", profile.EmploymentInternship},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Experience(NewContext(Options{}), parse(t, `<html><body><section id="experience"><ul><li>
  <div class="display-flex align-items-center"><span aria-hidden="true">Engineer</span></div>
  <span class="t-14 t-normal"><span aria-hidden="true">`+tt.line+`</span></span>
</li></ul></section></body></html>`))
			require.Len(t, got, 1)
			s, ok := got[0].(profile.Single)
			require.True(t, ok)
			assert.Equal(t, tt.wantCompany, s.Company)
			assert.Equal(t, tt.wantType, s.EmploymentType)
		})
	}
}

func TestExperienceMissingSectionIsDrift(t *testing.T) {
	c := NewContext(Options{})
	got := Experience(c, parse(t, `<html><body><p>nothing</p></body></html>`))

	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Contains(t, c.Warnings(), "experience: section container missing")
}

func TestHeaderContactScenario(t *testing.T) {
	doc := parse(t, `<html><body>
<h1 class="text-heading-xlarge">Jane Doe</h1>
<section class="pv-contact-info">
  <a href="mailto:a@b.com">a@b.com</a>
  <span class="t-14 t-black t-normal phone-number">+1-555-0100</span>
</section>
</body></html>`)

	h := Header(NewContext(Options{}), doc)
	assert.Equal(t, profile.ContactInfo{Email: "a@b.com", Phone: "+1-555-0100"}, h.Contact)
}

const headerHTML = `<html><head>
<link rel="canonical" href="https://www.linkedin.com/in/jane-doe/">
</head><body>
<img class="pv-top-card-profile-picture__image" src="https://media.example.com/shrink_100_100/p.jpg">
<img class="pv-top-card-profile-picture__image" src="https://media.example.com/shrink_800_800/p.jpg">
<h1 class="text-heading-xlarge inline t-24">Jane Doe</h1>
<div class="text-body-medium break-words">Staff Engineer at Globex</div>
<span class="text-body-small inline t-black--light break-words">Berlin, Germany</span>
<ul>
  <li class="text-body-small"><span class="t-bold">500+</span> connections</li>
  <li class="text-body-small"><span>1,234 followers</span></li>
</ul>
<section class="artdeco-card">
  <div id="about"></div>
  <div class="inline-show-more-text"><span aria-hidden="true">First paragraph of the summary.<br><br>Second paragraph here.</span></div>
</section>
<section class="pv-contact-info">
  <a class="pv-contact-info__contact-link" href="https://www.linkedin.com/in/jane-doe">Profile</a>
  <a class="pv-contact-info__contact-link" href="https://jane.dev">Site</a>
</section>
</body></html>`

func TestHeader(t *testing.T) {
	c := NewContext(Options{OwnDomains: []string{"linkedin.com"}})
	doc := parse(t, headerHTML)
	h := Header(c, doc)

	assert.Equal(t, "Jane Doe", h.Name)
	assert.Equal(t, "Staff Engineer at Globex", h.Headline)
	assert.Equal(t, "Berlin, Germany", h.Location)
	assert.Equal(t, "https://media.example.com/shrink_800_800/p.jpg", h.PhotoURL)
	assert.Equal(t, "First paragraph of the summary.\n\nSecond paragraph here.", h.About)
	assert.Equal(t, "https://jane.dev", h.Contact.Website)
	require.NotNil(t, h.Stats.Connections)
	assert.Equal(t, 500, *h.Stats.Connections)
	require.NotNil(t, h.Stats.Followers)
	assert.Equal(t, 1234, *h.Stats.Followers)

	assert.Equal(t, "jane-doe", Username(c, doc))
}

func TestHeaderHeadlineSkipsConnectionCounts(t *testing.T) {
	doc := parse(t, `<html><body>
<div class="text-body-medium">500+ connections</div>
<h2 class="mt1 t-18">Data Engineer</h2>
</body></html>`)
	c := NewContext(Options{})
	h := Header(c, doc)
	assert.Equal(t, "Data Engineer", h.Headline)
}

func TestSkillsScenario(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []profile.SkillEntry
	}{
		{
			name: "inline endorsements first",
			html: `<section id="skills"><ul>
<li><div class="display-flex align-items-center"><span aria-hidden="true">Python · 99 endorsements</span></div></li>
<li><div class="display-flex align-items-center"><span aria-hidden="true">python</span></div></li>
</ul></section>`,
			want: []profile.SkillEntry{{Name: "Python", Endorsements: 99}},
		},
		{
			name: "later duplicate supplies count",
			html: `<section id="skills"><ul>
<li><div class="display-flex align-items-center"><span aria-hidden="true">python</span></div></li>
<li><div class="display-flex align-items-center"><span aria-hidden="true">Python · 99 endorsements</span></div></li>
</ul></section>`,
			want: []profile.SkillEntry{{Name: "python", Endorsements: 99}},
		},
		{
			name: "badge in nested list",
			html: `<section id="skills"><ul>
<li><div class="display-flex align-items-center"><span aria-hidden="true">Go</span></div>
  <ul><li><span aria-hidden="true">12 endorsements</span></li></ul></li>
<li><div class="display-flex align-items-center"><span aria-hidden="true">SQL</span></div></li>
</ul></section>`,
			want: []profile.SkillEntry{{Name: "Go", Endorsements: 12}, {Name: "SQL"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Skills(NewContext(Options{}), parse(t, "<html><body>"+tt.html+"</body></html>"))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDedupSkills(t *testing.T) {
	got := DedupSkills([]profile.SkillEntry{
		{Name: "Machine  Learning"},
		{Name: "machine learning", Endorsements: 4},
		{Name: "Go", Endorsements: 2},
		{Name: "GO", Endorsements: 9},
	})
	assert.Equal(t, []profile.SkillEntry{
		{Name: "Machine Learning", Endorsements: 4},
		{Name: "Go", Endorsements: 2},
	}, got)
}

func TestEducation(t *testing.T) {
	doc := parse(t, `<html><body><section id="education"><ul>
<li>
  <div class="display-flex align-items-center"><span aria-hidden="true">TU Berlin</span></div>
  <span class="t-14 t-normal"><span aria-hidden="true">Master of Science, Computer Science</span></span>
  <span class="t-14 t-normal t-black--light"><span aria-hidden="true">2014 - 2016</span></span>
  <ul>
    <li><div class="inline-show-more-text"><span aria-hidden="true">Grade: 1.3</span></div></li>
    <li><div class="inline-show-more-text"><span aria-hidden="true">Activities and societies: Chess club</span></div></li>
    <li><div class="inline-show-more-text"><span aria-hidden="true">Thesis on distributed caches.</span></div></li>
  </ul>
</li>
</ul></section></body></html>`)

	got := Education(NewContext(Options{}), doc)
	require.Len(t, got, 1)
	assert.Equal(t, profile.EducationEntry{
		Institution:  "TU Berlin",
		Degree:       "Master of Science",
		FieldOfStudy: "Computer Science",
		Duration:     "2014 - 2016",
		Grade:        "1.3",
		Activities:   "Chess club",
		Description:  "Thesis on distributed caches.",
	}, got[0])
}

func TestLanguages(t *testing.T) {
	item := func(name, prof string) string {
		s := `<li><div class="display-flex align-items-center"><span aria-hidden="true">` + name + `</span></div>`
		if prof != "" {
			s += `<span class="t-14 t-normal t-black--light"><span aria-hidden="true">` + prof + `</span></span>`
		}
		return s + `</li>`
	}
	doc := parse(t, `<html><body><section id="languages"><ul>`+
		item("German", "Native or bilingual proficiency")+
		item("English", "Full professional proficiency")+
		item("Klingon", "Conversational")+
		item("Latin", "")+
		`</ul></section></body></html>`)

	got := Languages(NewContext(Options{}), doc)
	require.Len(t, got, 4)
	assert.Equal(t, profile.ProficiencyNative, got[0].Proficiency.Level)
	assert.Equal(t, profile.ProficiencyFullProfessional, got[1].Proficiency.Level)
	assert.Equal(t, profile.Proficiency{Level: profile.ProficiencyOther, Raw: "Conversational"}, got[2].Proficiency)
	assert.Equal(t, profile.Proficiency{}, got[3].Proficiency)
}

func TestDetailDocumentCertifications(t *testing.T) {
	doc := parse(t, `<html><body><main><ul>
<li>
  <div class="display-flex align-items-center"><span aria-hidden="true">Certified Kubernetes Administrator</span></div>
  <span class="t-14 t-normal"><span aria-hidden="true">The Linux Foundation</span></span>
  <span class="t-14 t-normal t-black--light"><span aria-hidden="true">Issued Jan 2023 · Expires Jan 2026</span></span>
  <span class="t-14 t-normal t-black--light"><span aria-hidden="true">Credential ID LF-12345</span></span>
  <a href="https://credly.example.com/credential/xyz">Show credential</a>
</li>
</ul></main></body></html>`)

	c := NewContext(Options{Detail: true})
	p, err := Detail(c, doc, profile.SectionCertifications)
	require.NoError(t, err)
	require.Len(t, p.Certifications, 1)
	assert.Equal(t, profile.DetailItem{
		Title:        "Certified Kubernetes Administrator",
		Organization: "The Linux Foundation",
		DateRange:    "Jan 2023 · Expires Jan 2026",
		Identifier:   "LF-12345",
	}, p.Certifications[0])
	assert.Empty(t, p.Experience)
	assert.Empty(t, c.Warnings())
}

func TestDetailUnknownSection(t *testing.T) {
	_, err := Detail(NewContext(Options{Detail: true}), parse(t, `<html></html>`), profile.SectionCourses)
	assert.ErrorIs(t, err, profile.ErrInvalidInput)
}

func TestCoursesPlainItems(t *testing.T) {
	doc := parse(t, `<html><body><section id="courses"><ul><li>Algorithms</li><li>Distributed Systems</li></ul></section></body></html>`)
	got := Details(NewContext(Options{}), doc, CoursesMapping)
	require.Len(t, got, 2)
	assert.Equal(t, "Algorithms", got[0].Title)
	assert.Equal(t, "Distributed Systems", got[1].Title)
}

func TestMainOnEmptyDocument(t *testing.T) {
	c := NewContext(Options{})
	p := Main(c, parse(t, `<html><body></body></html>`))

	assert.Empty(t, p.Experience)
	assert.Empty(t, p.Education)
	assert.Empty(t, p.Skills)
	assert.Empty(t, p.Languages)
	for _, m := range DetailMappings {
		assert.NotNil(t, *p.DetailList(m.Section), m.Section)
		assert.Empty(t, *p.DetailList(m.Section), m.Section)
	}
	assert.Empty(t, p.About)
	assert.False(t, p.HasMeaningfulData())
	assert.Contains(t, c.Warnings(), "header.name: not found")
}

func TestGuardRecoversPanics(t *testing.T) {
	c := NewContext(Options{})
	ran := false
	c.Guard("skills", func() { panic("boom") })
	c.Guard("education", func() { ran = true })

	assert.True(t, ran)
	require.Len(t, c.Warnings(), 1)
	assert.True(t, strings.HasPrefix(c.Warnings()[0], "skills: extractor panic boom"))
}

func TestMarkdownDescriptions(t *testing.T) {
	doc := parse(t, `<html><body><section id="projects"><ul>
<li>
  <div class="display-flex align-items-center"><span aria-hidden="true">go_profile</span></div>
  <div class="inline-show-more-text"><span aria-hidden="true"><p>Profile extraction.</p><ul><li>goquery</li><li>pgx</li></ul></span></div>
</li>
</ul></section></body></html>`)

	got := Details(NewContext(Options{Markdown: true}), doc, ProjectsMapping)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Description, "Profile extraction.")
	assert.Contains(t, got[0].Description, "- goquery")
}
