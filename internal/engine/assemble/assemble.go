// Package assemble orchestrates one extraction run: section extractors on the
// main document, the structured-data fallback, detail-document merging and
// metadata.
package assemble

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/anatolykoptev/go_profile/internal/engine/jsonld"
	"github.com/anatolykoptev/go_profile/internal/engine/profile"
	"github.com/anatolykoptev/go_profile/internal/engine/sections"
)

// applyFallback fills empty fields from structured data; replaced in tests.
var applyFallback = jsonld.Apply

// Options configure an Assembler.
type Options struct {
	// Markdown renders descriptions as markdown.
	Markdown bool
	// OwnDomains are excluded from the contact website.
	OwnDomains []string
	// MaxDocumentBytes rejects larger documents; 0 means no limit.
	MaxDocumentBytes int
	// Now stamps ExtractedAt; defaults to time.Now.
	Now func() time.Time
	// OnStage, when set, observes every stage transition.
	OnStage func(Stage)
}

// Assembler runs extractions. It holds no per-run state and is safe for
// concurrent use.
type Assembler struct {
	opts Options
}

// New returns an Assembler.
func New(opts Options) *Assembler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Assembler{opts: opts}
}

// Input is one set of already-fetched documents for a single entity.
type Input struct {
	Main    string
	Details map[string]string
	Source  profile.Source
}

// Extraction is the finalized result of a run.
type Extraction struct {
	Profile  profile.Profile  `json:"profile"`
	Metadata profile.Metadata `json:"metadata"`
}

// Err reports ErrAggregateIncomplete when the run produced no meaningful data.
func (e Extraction) Err() error {
	if e.Metadata.MeaningfulData {
		return nil
	}
	return profile.ErrAggregateIncomplete
}

// run is the mutable state of one extraction, discarded once finalized.
type run struct {
	opts     Options
	stage    Stage
	profile  profile.Profile
	source   profile.Source
	warnings []string
	stats    map[string]profile.SectionStats
	fallback []string
	details  []string
}

func (r *run) advance(to Stage) {
	slog.Debug("assemble: stage", slog.String("from", r.stage.String()), slog.String("to", to.String()))
	r.stage = to
	if r.opts.OnStage != nil {
		r.opts.OnStage(to)
	}
}

func (r *run) addStats(stats map[string]profile.SectionStats) {
	for k, v := range stats {
		s := r.stats[k]
		s.Attempted += v.Attempted
		s.Succeeded += v.Succeeded
		r.stats[k] = s
	}
}

func (r *run) warn(field string, err error) {
	r.warnings = append(r.warnings, fmt.Errorf("%s: %w", field, err).Error())
}

// document is the per-document result of the parallel phase.
type document struct {
	name    string
	doc     *goquery.Document
	ctx     *sections.Context
	profile profile.Profile
	err     error
}

// Extract runs the whole pipeline. The only error it returns wraps
// ErrInvalidInput; every other failure becomes a warning.
func (a *Assembler) Extract(in Input) (Extraction, error) {
	if err := a.validate(in.Main); err != nil {
		return Extraction{}, err
	}
	if err := a.validateDetails(in.Details); err != nil {
		return Extraction{}, err
	}
	r := a.newRun(in.Source)

	names := slices.Sorted(maps.Keys(in.Details))
	docs := make([]document, len(names)+1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		docs[0] = a.extractMain(in.Main)
	}()
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			docs[i+1] = a.extractDetail(name, in.Details[name])
		}()
	}
	wg.Wait()

	primary := docs[0]
	if primary.err != nil {
		return Extraction{}, fmt.Errorf("main document: %v: %w", primary.err, profile.ErrInvalidInput)
	}
	r.profile = primary.profile
	r.advance(StagePrimaryExtracted)

	// A panic while filling leaves the primary result untouched.
	primary.ctx.Guard("structured_data", func() {
		filled := r.profile
		r.fallback = applyFallback(primary.ctx, primary.doc.Selection, &filled)
		r.profile = filled
	})
	r.warnings = append(r.warnings, primary.ctx.Warnings()...)
	r.addStats(primary.ctx.Stats())
	r.advance(StageFallbackApplied)

	r.mergeDetails(docs[1:])
	r.advance(StageDetailMerged)

	return r.finalize(a.opts.Now()), nil
}

// Reextract merges freshly fetched detail documents into a previous
// extraction without re-reading its main document.
func (a *Assembler) Reextract(prev Extraction, details map[string]string) (Extraction, error) {
	if err := a.validateDetails(details); err != nil {
		return Extraction{}, err
	}
	r := a.newRun(prev.Metadata.Source)
	r.profile = prev.Profile
	r.profile.Experience = slices.Clone(prev.Profile.Experience)
	r.warnings = slices.Clone(prev.Metadata.Warnings)
	r.addStats(prev.Metadata.Sections)
	r.details = slices.Clone(prev.Metadata.DetailDocuments)
	r.advance(StagePrimaryExtracted)

	r.fallback = slices.Clone(prev.Metadata.FallbackFields)
	r.advance(StageFallbackApplied)

	names := slices.Sorted(maps.Keys(details))
	docs := make([]document, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			docs[i] = a.extractDetail(name, details[name])
		}()
	}
	wg.Wait()

	r.mergeDetails(docs)
	r.advance(StageDetailMerged)

	return r.finalize(a.opts.Now()), nil
}

func (a *Assembler) newRun(src profile.Source) *run {
	r := &run{
		opts:   a.opts,
		source: src,
		stats:  make(map[string]profile.SectionStats),
	}
	r.advance(StageEmpty)
	return r
}

// validate rejects an unusable main document.
func (a *Assembler) validate(markup string) error {
	if strings.TrimSpace(markup) == "" {
		return fmt.Errorf("main document is empty: %w", profile.ErrInvalidInput)
	}
	if limit := a.opts.MaxDocumentBytes; limit > 0 && len(markup) > limit {
		return fmt.Errorf("main document is %d bytes, limit %d: %w", len(markup), limit, profile.ErrInvalidInput)
	}
	return nil
}

func (a *Assembler) validateDetails(details map[string]string) error {
	limit := a.opts.MaxDocumentBytes
	if limit <= 0 {
		return nil
	}
	for name, d := range details {
		if len(d) > limit {
			return fmt.Errorf("detail document %q is %d bytes, limit %d: %w", name, len(d), limit, profile.ErrInvalidInput)
		}
	}
	return nil
}

func (a *Assembler) sectionOptions(detail bool) sections.Options {
	return sections.Options{
		Markdown:   a.opts.Markdown,
		OwnDomains: a.opts.OwnDomains,
		Detail:     detail,
	}
}

func (a *Assembler) extractMain(markup string) document {
	d := document{ctx: sections.NewContext(a.sectionOptions(false))}
	d.doc, d.err = sections.Parse(markup)
	if d.err != nil {
		return d
	}
	d.profile = sections.Main(d.ctx, d.doc.Selection)
	return d
}

func (a *Assembler) extractDetail(name, markup string) document {
	d := document{name: name, ctx: sections.NewContext(a.sectionOptions(true))}
	if !profile.IsDetailSection(name) {
		d.err = fmt.Errorf("unknown section: %w", profile.ErrInvalidInput)
		return d
	}
	if strings.TrimSpace(markup) == "" {
		d.err = fmt.Errorf("empty document: %w", profile.ErrNotFound)
		return d
	}
	d.doc, d.err = sections.Parse(markup)
	if d.err != nil {
		d.err = fmt.Errorf("%v: %w", d.err, profile.ErrMalformed)
		return d
	}
	d.profile, d.err = sections.Detail(d.ctx, d.doc.Selection, name)
	return d
}

// mergeDetails reduces detail results into the profile in name order.
func (r *run) mergeDetails(docs []document) {
	for _, d := range docs {
		field := "detail." + d.name
		if d.err != nil {
			r.warn(field, d.err)
			continue
		}
		for _, w := range d.ctx.Warnings() {
			r.warnings = append(r.warnings, field+": "+w)
		}
		r.addStats(d.ctx.Stats())
		if !mergeSection(&r.profile, d.profile, d.name) {
			r.warn(field, fmt.Errorf("no entries, main result kept: %w", profile.ErrNotFound))
			continue
		}
		if !slices.Contains(r.details, d.name) {
			r.details = append(r.details, d.name)
		}
	}
}

func (r *run) finalize(now time.Time) Extraction {
	p := r.profile
	if p.Header.Name == "" {
		p.Header.Name = profile.NamePlaceholder
	}
	if p.Username == "" {
		p.Username = r.source.EntityID
	}
	if p.Username == "" {
		p.Username = profile.DefaultUsername
	}
	p.Normalize()

	meaningful := p.HasMeaningfulData()
	if !meaningful {
		slog.Debug("assemble: no meaningful data", slog.String("username", p.Username))
	}
	slices.Sort(r.details)

	md := profile.Metadata{
		RunID:           uuid.New().String(),
		ExtractedAt:     now.UTC(),
		Source:          r.source,
		Sections:        r.stats,
		DetailDocuments: emptyIfNil(r.details),
		FallbackFields:  emptyIfNil(r.fallback),
		Warnings:        emptyIfNil(r.warnings),
		MeaningfulData:  meaningful,
	}
	r.advance(StageFinalized)
	return Extraction{Profile: p, Metadata: md}
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
