package profile

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EmploymentType is the normalized employment kind of a role.
type EmploymentType int

const (
	EmploymentUnknown EmploymentType = iota
	EmploymentFullTime
	EmploymentPartTime
	EmploymentContract
	EmploymentFreelance
	EmploymentInternship
	EmploymentOther
)

var employmentNames = map[EmploymentType]string{
	EmploymentUnknown:    "",
	EmploymentFullTime:   "Full-time",
	EmploymentPartTime:   "Part-time",
	EmploymentContract:   "Contract",
	EmploymentFreelance:  "Freelance",
	EmploymentInternship: "Internship",
	EmploymentOther:      "Other",
}

// employmentLabels are the whole-segment spellings of each kind.
var employmentLabels = map[string]EmploymentType{
	"full-time":      EmploymentFullTime,
	"full time":      EmploymentFullTime,
	"part-time":      EmploymentPartTime,
	"part time":      EmploymentPartTime,
	"contract":       EmploymentContract,
	"contractor":     EmploymentContract,
	"freelance":      EmploymentFreelance,
	"internship":     EmploymentInternship,
	"intern":         EmploymentInternship,
	"apprenticeship": EmploymentInternship,
	"self-employed":  EmploymentOther,
	"seasonal":       EmploymentOther,
	"temporary":      EmploymentOther,
}

// ParseEmploymentType maps one caption segment such as "Full-time" to an
// EmploymentType. The whole segment must be a label, so company names like
// "Contract Logistics GmbH" yield EmploymentUnknown.
func ParseEmploymentType(s string) EmploymentType {
	return employmentLabels[strings.ToLower(strings.TrimSpace(s))]
}

func (t EmploymentType) String() string {
	return employmentNames[t]
}

func (t EmploymentType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *EmploymentType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = EmploymentUnknown
		return nil
	}
	for k, name := range employmentNames {
		if name == s {
			*t = k
			return nil
		}
	}
	*t = ParseEmploymentType(s)
	return nil
}

// Role is one position held at a company.
type Role struct {
	Title          string         `json:"title"`
	Company        string         `json:"company,omitempty"`
	EmploymentType EmploymentType `json:"employment_type,omitempty"`
	Duration       string         `json:"duration,omitempty"`
	Location       string         `json:"location,omitempty"`
	Description    string         `json:"description,omitempty"`
	SkillTags      []string       `json:"skill_tags"`
}

// Experience is one top-level experience entry: either Single or Grouped.
// Consumers switch on the concrete type.
type Experience interface {
	experience()
	normalized() Experience
}

// Single is an employer relationship with exactly one role.
type Single struct {
	Role
}

// Grouped is one employer relationship with two or more roles.
type Grouped struct {
	Company       string `json:"company"`
	TotalDuration string `json:"total_duration,omitempty"`
	Location      string `json:"location,omitempty"`
	Roles         []Role `json:"roles"`
}

func (Single) experience()  {}
func (Grouped) experience() {}

func (s Single) normalized() Experience {
	if s.SkillTags == nil {
		s.SkillTags = []string{}
	}
	return s
}

func (g Grouped) normalized() Experience {
	roles := make([]Role, len(g.Roles))
	for i, r := range g.Roles {
		if r.SkillTags == nil {
			r.SkillTags = []string{}
		}
		roles[i] = r
	}
	g.Roles = roles
	return g
}

// NewGrouped builds the entry for a company with the given roles. One role
// collapses to Single (inheriting the group's company and location when the
// role lacks them); zero roles yields nil.
func NewGrouped(company, totalDuration, location string, roles []Role) Experience {
	switch len(roles) {
	case 0:
		return nil
	case 1:
		r := roles[0]
		if r.Company == "" {
			r.Company = company
		}
		if r.Location == "" {
			r.Location = location
		}
		if r.Duration == "" {
			r.Duration = totalDuration
		}
		return Single{Role: r}
	}
	return Grouped{
		Company:       company,
		TotalDuration: totalDuration,
		Location:      location,
		Roles:         roles,
	}
}

// ExperienceList is the experience section; it carries the JSON discriminator.
type ExperienceList []Experience

const (
	kindSingle  = "single"
	kindGrouped = "grouped"
)

func (l ExperienceList) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(l))
	for i, e := range l {
		var (
			raw []byte
			err error
		)
		switch v := e.(type) {
		case Single:
			raw, err = json.Marshal(struct {
				Kind string `json:"kind"`
				Role
			}{kindSingle, v.Role})
		case Grouped:
			raw, err = json.Marshal(struct {
				Kind string `json:"kind"`
				Grouped
			}{kindGrouped, v})
		default:
			err = fmt.Errorf("experience[%d]: unsupported entry %T", i, e)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

func (l *ExperienceList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	list := make(ExperienceList, 0, len(raws))
	for i, raw := range raws {
		var head struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return fmt.Errorf("experience[%d]: %w", i, err)
		}
		switch head.Kind {
		case kindSingle:
			var r Role
			if err := json.Unmarshal(raw, &r); err != nil {
				return fmt.Errorf("experience[%d]: %w", i, err)
			}
			list = append(list, Single{Role: r}.normalized())
		case kindGrouped:
			var g Grouped
			if err := json.Unmarshal(raw, &g); err != nil {
				return fmt.Errorf("experience[%d]: %w", i, err)
			}
			e := NewGrouped(g.Company, g.TotalDuration, g.Location, g.Roles)
			if e == nil {
				return fmt.Errorf("experience[%d]: grouped entry without roles: %w", i, ErrMalformed)
			}
			list = append(list, e.normalized())
		default:
			return fmt.Errorf("experience[%d]: unknown kind %q: %w", i, head.Kind, ErrMalformed)
		}
	}
	*l = list
	return nil
}
