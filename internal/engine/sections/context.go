// Package sections turns one parsed document into per-section results.
// Extractors are pure with respect to other documents; everything they need
// beyond the document arrives through a Context.
package sections

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_profile/internal/engine/profile"
	"github.com/anatolykoptev/go_profile/internal/engine/rules"
)

// Options tune extraction for one document.
type Options struct {
	// Markdown renders prose fields as markdown instead of plain paragraphs.
	Markdown bool
	// OwnDomains are hosts that never count as the entity's personal website.
	OwnDomains []string
	// Detail marks a dedicated detail document; section containers then
	// fall back to <main> and <body>.
	Detail bool
}

// Context carries options and collects warnings and per-section counts for
// one document. It is not safe for concurrent use; give each document its own.
type Context struct {
	opts     Options
	warnings []string
	stats    map[string]profile.SectionStats
}

// NewContext returns a Context for one document.
func NewContext(opts Options) *Context {
	return &Context{opts: opts, stats: make(map[string]profile.SectionStats)}
}

// Options returns the options the context was built with.
func (c *Context) Options() Options { return c.opts }

// Warn records a non-fatal diagnostic for field.
func (c *Context) Warn(field string, err error) {
	msg := fmt.Errorf("%s: %w", field, err).Error()
	slog.Debug("extract: warning", slog.String("field", field), slog.Any("error", err))
	c.warnings = append(c.warnings, msg)
}

// Warnings returns the diagnostics recorded so far, in order.
func (c *Context) Warnings() []string {
	return append([]string(nil), c.warnings...)
}

// Stats returns attempted/succeeded counts keyed by section name.
func (c *Context) Stats() map[string]profile.SectionStats {
	out := make(map[string]profile.SectionStats, len(c.stats))
	for k, v := range c.stats {
		out[k] = v
	}
	return out
}

func (c *Context) count(section string, attempted, succeeded int) {
	s := c.stats[section]
	s.Attempted += attempted
	s.Succeeded += succeeded
	c.stats[section] = s
}

// Guard runs fn and converts a panic into a warning, leaving the section
// empty. Other sections are unaffected.
func (c *Context) Guard(section string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("extract: section panicked", slog.String("section", section), slog.Any("panic", r))
			c.Warn(section, fmt.Errorf("extractor panic %v: %w", r, profile.ErrMalformed))
		}
	}()
	fn()
}

// note records a warning for a resolution that matched but was rejected.
// Plain misses stay silent: most fields are optional.
func (c *Context) note(field string, res rules.Result) {
	if res.Outcome == rules.Malformed {
		c.Warn(field, profile.ErrMalformed)
	}
}

func (c *Context) prose(sep string) rules.Reader {
	return rules.Prose(c.opts.Markdown, sep)
}

// ownSite reports whether raw points at one of the entity's own domains.
func (c *Context) ownSite(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	for _, d := range c.opts.OwnDomains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "www."))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
