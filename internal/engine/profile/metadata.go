package profile

import "time"

// Section names. The nine detail-capable sections accept a dedicated
// detail document; courses and the header only come from the main page.
const (
	SectionHeader         = "header"
	SectionAbout          = "about"
	SectionExperience     = "experience"
	SectionEducation      = "education"
	SectionSkills         = "skills"
	SectionLanguages      = "languages"
	SectionCertifications = "certifications"
	SectionVolunteer      = "volunteer"
	SectionProjects       = "projects"
	SectionPublications   = "publications"
	SectionHonors         = "honors"
	SectionCourses        = "courses"
)

// DetailSections lists the sections that may be replaced by a detail document.
var DetailSections = []string{
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionLanguages,
	SectionCertifications,
	SectionVolunteer,
	SectionProjects,
	SectionPublications,
	SectionHonors,
}

// IsDetailSection reports whether name accepts a detail document.
func IsDetailSection(name string) bool {
	for _, s := range DetailSections {
		if s == name {
			return true
		}
	}
	return false
}

// Source identifies where the documents came from.
type Source struct {
	EntityID  string    `json:"entity_id,omitempty"`
	FetchedAt time.Time `json:"fetched_at,omitzero"`
	Locator   string    `json:"locator,omitempty"`
}

// SectionStats counts candidate items visited and entries produced.
type SectionStats struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
}

// Metadata describes one extraction run.
type Metadata struct {
	RunID           string                  `json:"run_id"`
	ExtractedAt     time.Time               `json:"extracted_at"`
	Source          Source                  `json:"source"`
	Sections        map[string]SectionStats `json:"sections"`
	DetailDocuments []string                `json:"detail_documents"`
	FallbackFields  []string                `json:"fallback_fields"`
	Warnings        []string                `json:"warnings"`
	MeaningfulData  bool                    `json:"meaningful_data"`
}
