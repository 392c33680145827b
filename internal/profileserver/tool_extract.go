package profileserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_profile/internal/engine"
	"github.com/anatolykoptev/go_profile/internal/engine/assemble"
	"github.com/anatolykoptev/go_profile/internal/engine/profile"
	"github.com/anatolykoptev/go_profile/internal/engine/store"
	"github.com/anatolykoptev/go_profile/internal/toolutil"
)

// ExtractInput is the input of profile_extract.
type ExtractInput struct {
	MainHTML   string            `json:"main_html" jsonschema:"Rendered HTML of the profile main page (required)"`
	DetailHTML map[string]string `json:"detail_html,omitempty" jsonschema:"Detail pages keyed by section name, e.g. experience, skills, certifications"`
	EntityID   string            `json:"entity_id,omitempty" jsonschema:"Caller-side username, used when the page carries none"`
	Locator    string            `json:"locator,omitempty" jsonschema:"Where the documents were fetched from, e.g. the profile URL"`
	Save       bool              `json:"save,omitempty" jsonschema:"Persist the result to the profile store"`
}

// ReextractInput is the input of profile_reextract.
type ReextractInput struct {
	Username   string            `json:"username" jsonschema:"Username or profile URL of a stored profile (required)"`
	DetailHTML map[string]string `json:"detail_html" jsonschema:"Newly fetched detail pages keyed by section name (required)"`
}

func registerProfileExtract(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:         "profile_extract",
		Description:  "Extract a structured professional profile (header, experience, education, skills, languages, certifications, projects and more) from already-fetched LinkedIn profile HTML. Pass the main page and optional per-section detail pages; detail pages replace the truncated main-page sections. Returns the profile plus extraction metadata (warnings, fallback fields, per-section stats). Set save=true to persist the result.",
		OutputSchema: extractionSchema,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ExtractInput) (*mcp.CallToolResult, assemble.Extraction, error) {
		out, err := extractProfile(ctx, input)
		return nil, out, err
	})
}

func registerProfileReextract(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:         "profile_reextract",
		Description:  "Merge newly fetched detail pages into a stored profile without the main page. The stored result is replaced. Requires persistence.",
		OutputSchema: extractionSchema,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ReextractInput) (*mcp.CallToolResult, assemble.Extraction, error) {
		out, err := reextractProfile(ctx, input)
		return nil, out, err
	})
}

func extractProfile(ctx context.Context, input ExtractInput) (assemble.Extraction, error) {
	details, err := toolutil.NormDetails(input.DetailHTML)
	if err != nil {
		return assemble.Extraction{}, fmt.Errorf("%v: %w", err, profile.ErrInvalidInput)
	}

	source := profile.Source{
		EntityID:  input.EntityID,
		Locator:   input.Locator,
		FetchedAt: time.Now().UTC(),
	}

	// Source describes this call, not the one that filled the cache.
	cacheKey := toolutil.DocumentsKey(input.MainHTML, details, "profile_extract", input.EntityID)
	if out, ok := toolutil.CacheLoadJSON[assemble.Extraction](ctx, cacheKey); ok {
		out.Metadata.Source = source
		if input.Save {
			saveExtraction(ctx, out)
		}
		return out, nil
	}

	ex, err := engine.NewAssembler().Extract(assemble.Input{
		Main:    input.MainHTML,
		Details: details,
		Source:  source,
	})
	engine.RecordExtraction(ex, err)
	if err != nil {
		return assemble.Extraction{}, err
	}

	slog.Info("profile_extract: done",
		slog.String("username", ex.Profile.Username),
		slog.Bool("meaningful", ex.Metadata.MeaningfulData),
		slog.Int("warnings", len(ex.Metadata.Warnings)),
		slog.Int("details", len(ex.Metadata.DetailDocuments)))

	if ex.Metadata.MeaningfulData {
		toolutil.CacheStoreJSON(ctx, cacheKey, ex)
	}
	if input.Save {
		saveExtraction(ctx, ex)
	}
	return ex, nil
}

func reextractProfile(ctx context.Context, input ReextractInput) (assemble.Extraction, error) {
	username := engine.NormUsername(input.Username)
	if username == "" {
		return assemble.Extraction{}, errors.New("username is required")
	}
	if len(input.DetailHTML) == 0 {
		return assemble.Extraction{}, errors.New("detail_html is required")
	}
	details, err := toolutil.NormDetails(input.DetailHTML)
	if err != nil {
		return assemble.Extraction{}, fmt.Errorf("%v: %w", err, profile.ErrInvalidInput)
	}
	s, err := defaultStore()
	if err != nil {
		return assemble.Extraction{}, err
	}

	prev, err := s.Load(ctx, username)
	if err != nil {
		return assemble.Extraction{}, err
	}

	next, err := engine.NewAssembler().Reextract(prev, details)
	engine.RecordExtraction(next, err)
	if err != nil {
		return assemble.Extraction{}, err
	}
	engine.IncrReextractions()

	if err := s.Save(ctx, next); err != nil {
		return assemble.Extraction{}, fmt.Errorf("save %s: %w", username, err)
	}
	return next, nil
}

// saveExtraction persists ex when a store is configured. Failures are logged,
// the extraction result is still returned to the caller.
func saveExtraction(ctx context.Context, ex assemble.Extraction) {
	s := store.Default()
	if s == nil {
		slog.Warn("profile_extract: save requested but persistence is disabled")
		return
	}
	err := engine.TrackOperation(ctx, "store_save", func(ctx context.Context) error {
		return s.Save(ctx, ex)
	})
	if err != nil {
		slog.Warn("profile_extract: save failed", slog.String("username", ex.Profile.Username), slog.Any("error", err))
	}
}
