package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_profile/internal/engine/assemble"
	"github.com/anatolykoptev/go_profile/internal/engine/profile"
	"github.com/anatolykoptev/go_profile/internal/engine/store"
)

const profileHTML = `<html><head>
<link rel="canonical" href="https://www.linkedin.com/in/jane-doe/">
</head><body>
<h1 class="text-heading-xlarge">Jane Doe</h1>
<div class="text-body-medium break-words">Staff Engineer at Globex</div>
<section id="skills"><ul>
  <li><div class="display-flex align-items-center"><span aria-hidden="true">Go</span></div></li>
</ul></section>
</body></html>`

const skillsHTML = `<html><body><main><ul>
  <li><div class="display-flex align-items-center"><span aria-hidden="true">Go · 40 endorsements</span></div></li>
  <li><div class="display-flex align-items-center"><span aria-hidden="true">PostgreSQL</span></div></li>
</ul></main></body></html>`

func writeProfileDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newExtractCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestExtractCommand(t *testing.T) {
	dir := writeProfileDir(t, map[string]string{
		"profile.html": profileHTML,
		"Skills.html":  skillsHTML,
		"notes.txt":    "ignored",
	})

	stdout, _, err := execute(t, dir)
	require.NoError(t, err)

	var ex assemble.Extraction
	require.NoError(t, json.Unmarshal([]byte(stdout), &ex))
	assert.Equal(t, "jane-doe", ex.Profile.Username)
	assert.Equal(t, []profile.SkillEntry{{Name: "Go", Endorsements: 40}, {Name: "PostgreSQL"}}, ex.Profile.Skills)
	assert.Equal(t, []string{"skills"}, ex.Metadata.DetailDocuments)
	assert.True(t, filepath.IsAbs(ex.Metadata.Source.Locator))
}

func TestExtractCommandSaveAndOut(t *testing.T) {
	dir := writeProfileDir(t, map[string]string{"profile.html": profileHTML})
	db := filepath.Join(t.TempDir(), "profiles.db")
	out := filepath.Join(t.TempDir(), "jane.json")

	stdout, stderr, err := execute(t, dir, "--save", "--db", db, "--out", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "saved jane-doe")

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	var ex assemble.Extraction
	require.NoError(t, json.Unmarshal(written, &ex))

	s, err := store.OpenSQLite(db)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(context.Background(), "jane-doe")
	require.NoError(t, err)
	assert.Equal(t, ex.Metadata.RunID, got.Metadata.RunID)
}

func TestExtractCommandErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		args  []string
	}{
		{"missing main document", map[string]string{"skills.html": skillsHTML}, nil},
		{"empty main document", map[string]string{"profile.html": "   "}, nil},
		{"duplicate section", map[string]string{"profile.html": profileHTML, "skill.html": skillsHTML, "skills.html": skillsHTML}, nil},
		{"document too large", map[string]string{"profile.html": profileHTML}, []string{"--max-document-bytes", "16"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeProfileDir(t, tt.files)
			_, _, err := execute(t, append([]string{dir}, tt.args...)...)
			assert.Error(t, err)
		})
	}
}

func TestExtractCommandReportsIncomplete(t *testing.T) {
	dir := writeProfileDir(t, map[string]string{"profile.html": `<html><body><p>Sign in to view</p></body></html>`})
	_, stderr, err := execute(t, dir, "--entity-id", "jdoe")
	require.NoError(t, err)
	assert.Contains(t, stderr, profile.ErrAggregateIncomplete.Error())
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a.com", "b.com", "c.com"}, splitList([]string{"a.com, b.com", "c.com", " "}))
	assert.Nil(t, splitList(nil))
}
