// Package profile holds the structured record produced by an extraction run.
package profile

// NamePlaceholder is the header name used when no pass resolved one.
const NamePlaceholder = "Name Not Found"

// DefaultUsername is used when neither the documents nor the caller identify the entity.
const DefaultUsername = "linkedin-profile"

// Profile is the root aggregate of one extraction run.
type Profile struct {
	Username string `json:"username"`
	Header   Header `json:"header"`
	About    string `json:"about,omitempty"`

	Experience     ExperienceList   `json:"experience"`
	Education      []EducationEntry `json:"education"`
	Skills         []SkillEntry     `json:"skills"`
	Languages      []LanguageEntry  `json:"languages"`
	Certifications []DetailItem     `json:"certifications"`
	Volunteer      []DetailItem     `json:"volunteer"`
	Projects       []DetailItem     `json:"projects"`
	Publications   []DetailItem     `json:"publications"`
	Honors         []DetailItem     `json:"honors"`
	Courses        []DetailItem     `json:"courses"`
}

// Header is the top card of a profile.
type Header struct {
	Name     string      `json:"name"`
	Headline string      `json:"headline,omitempty"`
	Location string      `json:"location,omitempty"`
	PhotoURL string      `json:"photo_url,omitempty"`
	About    string      `json:"about,omitempty"`
	Contact  ContactInfo `json:"contact"`
	Stats    Stats       `json:"stats"`
}

// ContactInfo fields are empty when absent.
type ContactInfo struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
}

// Stats counters are nil when the page does not show them.
type Stats struct {
	Connections *int `json:"connections,omitempty"`
	Followers   *int `json:"followers,omitempty"`
}

// EducationEntry is one school record.
type EducationEntry struct {
	Institution  string `json:"institution,omitempty"`
	Degree       string `json:"degree,omitempty"`
	FieldOfStudy string `json:"field_of_study,omitempty"`
	Duration     string `json:"duration,omitempty"`
	Grade        string `json:"grade,omitempty"`
	Activities   string `json:"activities,omitempty"`
	Description  string `json:"description,omitempty"`
}

// SkillEntry is a named skill with its endorsement count.
type SkillEntry struct {
	Name         string `json:"name"`
	Endorsements int    `json:"endorsements"`
}

// LanguageEntry is a spoken language with a normalized proficiency.
type LanguageEntry struct {
	Name        string      `json:"name"`
	Proficiency Proficiency `json:"proficiency"`
}

// DetailItem is the shared shape of certifications, volunteer work, projects,
// publications, honors and courses.
type DetailItem struct {
	Title        string `json:"title"`
	Organization string `json:"organization,omitempty"`
	DateRange    string `json:"date_range,omitempty"`
	Identifier   string `json:"identifier,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Normalize replaces nil lists with empty ones so the aggregate never
// serializes a section as null.
func (p *Profile) Normalize() {
	if p.Experience == nil {
		p.Experience = ExperienceList{}
	}
	for i, e := range p.Experience {
		p.Experience[i] = e.normalized()
	}
	p.Education = emptyIfNil(p.Education)
	p.Skills = emptyIfNil(p.Skills)
	p.Languages = emptyIfNil(p.Languages)
	p.Certifications = emptyIfNil(p.Certifications)
	p.Volunteer = emptyIfNil(p.Volunteer)
	p.Projects = emptyIfNil(p.Projects)
	p.Publications = emptyIfNil(p.Publications)
	p.Honors = emptyIfNil(p.Honors)
	p.Courses = emptyIfNil(p.Courses)
}

// HasMeaningfulData reports whether the profile carries substantive content.
// A false value usually means the source fetch was blocked or unauthenticated.
func (p *Profile) HasMeaningfulData() bool {
	return len(p.Experience) > 0 || len(p.Education) > 0 || len(p.Skills) > 0 || p.About != ""
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// DetailList returns a pointer to the DetailItem list of section, or nil
// when section is not a DetailItem section.
func (p *Profile) DetailList(section string) *[]DetailItem {
	switch section {
	case SectionCertifications:
		return &p.Certifications
	case SectionVolunteer:
		return &p.Volunteer
	case SectionProjects:
		return &p.Projects
	case SectionPublications:
		return &p.Publications
	case SectionHonors:
		return &p.Honors
	case SectionCourses:
		return &p.Courses
	}
	return nil
}
