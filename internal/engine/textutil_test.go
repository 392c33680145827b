package engine

import "testing"

func TestNormSection(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"experience", "experience"},
		{" Skills ", "skills"},
		{"licenses-and-certifications", "certifications"},
		{"Honors and Awards", "honors"},
		{"volunteering_experience", "volunteer"},
		{"courses", "courses"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormSection(tt.in); got != tt.want {
				t.Errorf("NormSection(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormUsername(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"jane-doe", "jane-doe"},
		{"Jane-Doe/", "jane-doe"},
		{"https://www.linkedin.com/in/jane-doe/", "jane-doe"},
		{"https://www.linkedin.com/in/jane-doe?trk=public", "jane-doe"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormUsername(tt.in); got != tt.want {
				t.Errorf("NormUsername(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
