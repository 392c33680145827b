package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/anatolykoptev/go_profile/internal/engine/assemble"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	Extractions           atomic.Int64
	ExtractionErrors      atomic.Int64
	IncompleteExtractions atomic.Int64
	Reextractions         atomic.Int64
	Warnings              atomic.Int64
	DetailDocuments       atomic.Int64
	FallbackFields        atomic.Int64
	StoreSaves            atomic.Int64
	StoreErrors           atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"extractions":            metrics.Extractions.Load(),
		"extraction_errors":      metrics.ExtractionErrors.Load(),
		"incomplete_extractions": metrics.IncompleteExtractions.Load(),
		"reextractions":          metrics.Reextractions.Load(),
		"extraction_warnings":    metrics.Warnings.Load(),
		"detail_documents":       metrics.DetailDocuments.Load(),
		"fallback_fields":        metrics.FallbackFields.Load(),
		"store_saves":            metrics.StoreSaves.Load(),
		"store_errors":           metrics.StoreErrors.Load(),
		"cache_hits":             hits,
		"cache_misses":           misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"extractions", "extraction_errors", "incomplete_extractions", "reextractions",
		"extraction_warnings", "detail_documents", "fallback_fields",
		"store_saves", "store_errors",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// RecordExtraction counts one extraction run. A non-nil err counts as a
// rejected call and ignores ex.
func RecordExtraction(ex assemble.Extraction, err error) {
	metrics.Extractions.Add(1)
	if err != nil {
		metrics.ExtractionErrors.Add(1)
		return
	}
	md := ex.Metadata
	if !md.MeaningfulData {
		metrics.IncompleteExtractions.Add(1)
	}
	metrics.Warnings.Add(int64(len(md.Warnings)))
	metrics.DetailDocuments.Add(int64(len(md.DetailDocuments)))
	metrics.FallbackFields.Add(int64(len(md.FallbackFields)))
}

// Incrementors for the tool and store layers.
func IncrReextractions() { metrics.Reextractions.Add(1) }
func IncrStoreSaves()    { metrics.StoreSaves.Add(1) }
func IncrStoreErrors()   { metrics.StoreErrors.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
