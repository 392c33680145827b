package profileserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_profile/internal/engine"
	"github.com/anatolykoptev/go_profile/internal/engine/profile"
	"github.com/anatolykoptev/go_profile/internal/engine/store"
)

const mainHTML = `<html><head>
<link rel="canonical" href="https://www.linkedin.com/in/jane-doe/">
</head><body>
<h1 class="text-heading-xlarge">Jane Doe</h1>
<div class="text-body-medium break-words">Staff Engineer at Globex</div>
<section id="skills"><ul>
  <li><div class="display-flex align-items-center"><span aria-hidden="true">Go</span></div></li>
</ul></section>
</body></html>`

const skillsDetailHTML = `<html><body><main><ul>
  <li><div class="display-flex align-items-center"><span aria-hidden="true">Go · 40 endorsements</span></div></li>
  <li><div class="display-flex align-items-center"><span aria-hidden="true">PostgreSQL</span></div></li>
</ul></main></body></html>`

func withStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	store.SetDefault(s)
	t.Cleanup(func() {
		store.SetDefault(nil)
		s.Close()
	})
	return s
}

func TestRegisterTools(t *testing.T) {
	server := mcp.NewServer(&mcp.Implementation{Name: "go_profile", Version: "test"}, nil)
	assert.NotPanics(t, func() { RegisterTools(server) })
}

func TestExtractionMatchesOutputSchema(t *testing.T) {
	resolved, err := extractionSchema.Resolve(nil)
	require.NoError(t, err)

	ex, err := extractProfile(context.Background(), ExtractInput{
		MainHTML: `<html><head><script type="application/ld+json">{"@type":"Person","name":"Jane","knowsLanguage":["German"]}</script></head>
<body><section id="experience"><ul><li>
  <div class="display-flex align-items-center"><span aria-hidden="true">Engineer</span></div>
  <span class="t-14 t-normal"><span aria-hidden="true">Acme · Full-time</span></span>
</li></ul></section></body></html>`,
	})
	require.NoError(t, err)
	require.NotEmpty(t, ex.Profile.Languages)

	data, err := json.Marshal(ex)
	require.NoError(t, err)
	var v map[string]any
	require.NoError(t, json.Unmarshal(data, &v))
	assert.NoError(t, resolved.Validate(&v))
}

func TestExtractProfile(t *testing.T) {
	engine.Init(engine.Config{})
	before := engine.GetMetrics()["extractions"]

	ex, err := extractProfile(context.Background(), ExtractInput{
		MainHTML:   mainHTML,
		DetailHTML: map[string]string{"Skill": skillsDetailHTML},
		Locator:    "https://www.linkedin.com/in/jane-doe/",
	})
	require.NoError(t, err)

	assert.Equal(t, "jane-doe", ex.Profile.Username)
	assert.Equal(t, []profile.SkillEntry{{Name: "Go", Endorsements: 40}, {Name: "PostgreSQL"}}, ex.Profile.Skills)
	assert.Equal(t, []string{"skills"}, ex.Metadata.DetailDocuments)
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe/", ex.Metadata.Source.Locator)
	assert.False(t, ex.Metadata.Source.FetchedAt.IsZero())
	assert.Equal(t, before+1, engine.GetMetrics()["extractions"])
}

func TestExtractProfileCacheHitKeepsCallerSource(t *testing.T) {
	engine.InitCache("", time.Minute, 10)
	t.Cleanup(func() { engine.InitCache("", time.Minute, 10) })
	ctx := context.Background()
	first, err := extractProfile(ctx, ExtractInput{MainHTML: mainHTML, Locator: "https://mirror-a.example/jane"})
	require.NoError(t, err)
	hitsBefore, _ := engine.CacheStats()

	second, err := extractProfile(ctx, ExtractInput{MainHTML: mainHTML, Locator: "https://mirror-b.example/jane"})
	require.NoError(t, err)
	hitsAfter, _ := engine.CacheStats()

	assert.Equal(t, hitsBefore+1, hitsAfter, "second call served from cache")
	assert.Equal(t, first.Metadata.RunID, second.Metadata.RunID)
	assert.Equal(t, "https://mirror-b.example/jane", second.Metadata.Source.Locator)
	assert.False(t, second.Metadata.Source.FetchedAt.Before(first.Metadata.Source.FetchedAt))
}

func TestExtractProfileRejectsInput(t *testing.T) {
	tests := []struct {
		name  string
		input ExtractInput
	}{
		{"empty main", ExtractInput{}},
		{"duplicate sections", ExtractInput{
			MainHTML:   mainHTML,
			DetailHTML: map[string]string{"skills": skillsDetailHTML, "Skills": skillsDetailHTML},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractProfile(context.Background(), tt.input)
			assert.ErrorIs(t, err, profile.ErrInvalidInput)
		})
	}
}

func TestExtractSaveAndGet(t *testing.T) {
	withStore(t)
	ctx := context.Background()

	ex, err := extractProfile(ctx, ExtractInput{MainHTML: mainHTML, Save: true})
	require.NoError(t, err)

	got, err := getProfile(ctx, GetInput{Username: "https://www.linkedin.com/in/Jane-Doe/"})
	require.NoError(t, err)
	assert.Equal(t, ex.Metadata.RunID, got.Metadata.RunID)
	assert.Equal(t, ex.Profile.Header.Name, got.Profile.Header.Name)

	list, err := listProfiles(ctx, ListInput{})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "jane-doe", list.Profiles[0].Username)
}

func TestReextractProfile(t *testing.T) {
	withStore(t)
	ctx := context.Background()

	_, err := extractProfile(ctx, ExtractInput{MainHTML: mainHTML, Save: true})
	require.NoError(t, err)

	next, err := reextractProfile(ctx, ReextractInput{
		Username:   "jane-doe",
		DetailHTML: map[string]string{"skills": skillsDetailHTML},
	})
	require.NoError(t, err)
	assert.Len(t, next.Profile.Skills, 2)

	stored, err := getProfile(ctx, GetInput{Username: "jane-doe"})
	require.NoError(t, err)
	assert.Equal(t, next.Metadata.RunID, stored.Metadata.RunID)
}

func TestReextractUnknownProfile(t *testing.T) {
	withStore(t)
	_, err := reextractProfile(context.Background(), ReextractInput{
		Username:   "nobody",
		DetailHTML: map[string]string{"skills": skillsDetailHTML},
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStoreToolsWithoutStore(t *testing.T) {
	store.SetDefault(nil)
	ctx := context.Background()

	_, err := getProfile(ctx, GetInput{Username: "jane-doe"})
	assert.ErrorIs(t, err, errNoStore)
	_, err = listProfiles(ctx, ListInput{Limit: 5})
	assert.ErrorIs(t, err, errNoStore)
	_, err = reextractProfile(ctx, ReextractInput{Username: "jane-doe", DetailHTML: map[string]string{"skills": "x"}})
	assert.ErrorIs(t, err, errNoStore)

	_, err = getProfile(ctx, GetInput{})
	assert.EqualError(t, err, "username is required")
}
