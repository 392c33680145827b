// Package store persists finalized extractions. Profiles are stored in
// their JSON form, so a loaded profile equals the saved one.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/anatolykoptev/go_profile/internal/engine"
	"github.com/anatolykoptev/go_profile/internal/engine/assemble"
)

// ErrNotFound is returned by Load for an unknown username.
var ErrNotFound = errors.New("profile not found")

// Store saves and loads extractions keyed by username.
type Store interface {
	// Save inserts or replaces the extraction of its profile's username.
	Save(ctx context.Context, ex assemble.Extraction) error
	// Load returns the last saved extraction for username.
	Load(ctx context.Context, username string) (assemble.Extraction, error)
	// List returns summaries, most recently saved first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Summary, error)
	Close() error
}

// Summary is one row of List.
type Summary struct {
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	Headline       string    `json:"headline,omitempty"`
	RunID          string    `json:"run_id"`
	MeaningfulData bool      `json:"meaningful_data"`
	ExtractedAt    time.Time `json:"extracted_at"`
	SavedAt        time.Time `json:"saved_at"`
}

// Package-level singleton, set from main.go.
var defaultStore Store

// SetDefault sets the package-level store instance.
func SetDefault(s Store) { defaultStore = s }

// Default returns the package-level store instance (may be nil).
func Default() Store { return defaultStore }

// record is the column set shared by both backends.
type record struct {
	username string
	summary  Summary
	data     []byte
}

func newRecord(ex assemble.Extraction, now time.Time) (record, error) {
	username := engine.NormUsername(ex.Profile.Username)
	if username == "" {
		return record{}, errors.New("store: profile has no username")
	}
	data, err := json.Marshal(ex)
	if err != nil {
		return record{}, fmt.Errorf("store: marshal %s: %w", username, err)
	}
	return record{
		username: username,
		data:     data,
		summary: Summary{
			Username:       username,
			Name:           ex.Profile.Header.Name,
			Headline:       engine.TruncateAtWord(ex.Profile.Header.Headline, 200),
			RunID:          ex.Metadata.RunID,
			MeaningfulData: ex.Metadata.MeaningfulData,
			ExtractedAt:    ex.Metadata.ExtractedAt.UTC(),
			SavedAt:        now.UTC(),
		},
	}, nil
}

func decode(username string, data []byte) (assemble.Extraction, error) {
	var ex assemble.Extraction
	if err := json.Unmarshal(data, &ex); err != nil {
		return assemble.Extraction{}, fmt.Errorf("store: decode %s: %w", username, err)
	}
	ex.Profile.Normalize()
	return ex, nil
}
