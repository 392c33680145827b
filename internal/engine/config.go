package engine

import (
	"time"

	"github.com/anatolykoptev/go_profile/internal/engine/assemble"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	Markdown         bool     // DESCRIPTION_FORMAT=markdown
	OwnDomains       []string // hosts never reported as the personal website
	MaxDocumentBytes int      // 0 = unlimited
	CacheTTL         time.Duration
	CacheMaxEntries  int
	DatabaseURL      string // Postgres; takes precedence over SQLitePath
	SQLitePath       string // "" = persistence disabled
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages.
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}

// NewAssembler returns an assembler configured from Cfg.
func NewAssembler() *assemble.Assembler {
	return assemble.New(assemble.Options{
		Markdown:         Cfg.Markdown,
		OwnDomains:       Cfg.OwnDomains,
		MaxDocumentBytes: Cfg.MaxDocumentBytes,
	})
}
