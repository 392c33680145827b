package profile

import (
	"encoding/json"
	"strings"
	"unicode"
)

// ProficiencyLevel is the ordinal language proficiency scale.
// ProficiencyOther sorts below every canonical level.
type ProficiencyLevel int

const (
	ProficiencyOther ProficiencyLevel = iota
	ProficiencyElementary
	ProficiencyLimitedWorking
	ProficiencyProfessionalWorking
	ProficiencyFullProfessional
	ProficiencyNative
)

var proficiencyLabels = map[ProficiencyLevel]string{
	ProficiencyElementary:          "Elementary proficiency",
	ProficiencyLimitedWorking:      "Limited working proficiency",
	ProficiencyProfessionalWorking: "Professional working proficiency",
	ProficiencyFullProfessional:    "Full professional proficiency",
	ProficiencyNative:              "Native or bilingual proficiency",
}

// proficiencyTable is matched against lower-cased text in order, so the more
// specific phrases come first ("full professional" before "professional").
var proficiencyTable = []struct {
	phrase string
	level  ProficiencyLevel
}{
	{"native or bilingual", ProficiencyNative},
	{"native", ProficiencyNative},
	{"bilingual", ProficiencyNative},
	{"mother tongue", ProficiencyNative},
	{"full professional", ProficiencyFullProfessional},
	{"fullprofessional", ProficiencyFullProfessional},
	{"fluent", ProficiencyFullProfessional},
	{"professional working", ProficiencyProfessionalWorking},
	{"professionalworking", ProficiencyProfessionalWorking},
	{"limited working", ProficiencyLimitedWorking},
	{"limitedworking", ProficiencyLimitedWorking},
	{"intermediate", ProficiencyLimitedWorking},
	{"elementary", ProficiencyElementary},
	{"beginner", ProficiencyElementary},
	{"basic", ProficiencyElementary},
}

// Proficiency is either one of the canonical levels or Other carrying the
// raw text. The zero value is Other(""), meaning proficiency not stated.
type Proficiency struct {
	Level ProficiencyLevel
	Raw   string
}

// ParseProficiency normalizes free text to the canonical scale. Unknown text
// is preserved as Other; it is never an error. Parsing a canonical label
// returns the same level.
func ParseProficiency(s string) Proficiency {
	s = strings.Join(strings.Fields(s), " ")
	words := " " + strings.Join(strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	}), " ") + " "
	for _, e := range proficiencyTable {
		if strings.Contains(words, " "+e.phrase+" ") {
			return Proficiency{Level: e.level}
		}
	}
	return Proficiency{Level: ProficiencyOther, Raw: s}
}

// String returns the canonical label, or the raw text for Other.
func (p Proficiency) String() string {
	if p.Level == ProficiencyOther {
		return p.Raw
	}
	return proficiencyLabels[p.Level]
}

func (p Proficiency) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Proficiency) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = ParseProficiency(s)
	return nil
}
