// Package report sorts relevance records and renders the human-readable
// search report to the console and a timestamped file.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docrank/internal/domain"
)

const separator = "--------------------------------------------------"

// Reporter renders ranked search results.
type Reporter struct {
	outputDir       string
	timestampFormat string
	logger          *zap.Logger
	now             func() time.Time
}

// Config holds reporter settings.
type Config struct {
	OutputDir       string // default: current directory
	TimestampFormat string // Go layout, default 20060102_150405
	Logger          *zap.Logger
	Now             func() time.Time // test hook, defaults to time.Now
}

// New creates a reporter.
func New(cfg Config) *Reporter {
	tsFormat := cfg.TimestampFormat
	if tsFormat == "" {
		tsFormat = "20060102_150405"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Reporter{
		outputDir:       cfg.OutputDir,
		timestampFormat: tsFormat,
		logger:          logger,
		now:             now,
	}
}

// Sort returns the records ordered by relevance descending, name ascending
// on ties. The input is not mutated.
func Sort(records []domain.RelevanceRecord) []domain.RelevanceRecord {
	sorted := make([]domain.RelevanceRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Relevance != sorted[j].Relevance {
			return sorted[i].Relevance > sorted[j].Relevance
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// Render produces the full report text for the given records, ranked.
func (r *Reporter) Render(records []domain.RelevanceRecord, keyword, query string) string {
	sorted := Sort(records)

	var b strings.Builder
	fmt.Fprintf(&b, "Search Results\n")
	fmt.Fprintf(&b, "Date and Time: %s\n", r.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Full Query: %s\n", query)
	fmt.Fprintf(&b, "Keyword: %s\n", keyword)
	fmt.Fprintf(&b, "Total Number of Documents Found: %d\n", len(sorted))
	b.WriteString(separator + "\n\n")

	for i, rec := range sorted {
		fmt.Fprintf(&b, "Document %d - Title: %s\n", i+1, rec.Name)
		fmt.Fprintf(&b, "Final Relevance Score: %.4f\n", rec.Relevance)
		fmt.Fprintf(&b, "Similarity Index with Query: %.4f\n", rec.Similarity)
		fmt.Fprintf(&b, "TF-IDF for Keyword '%s': %.4f\n", keyword, rec.TFIDF)
		fmt.Fprintf(&b, "Occurrences of Keyword '%s': %d\n", keyword, rec.KeywordCount)
		fmt.Fprintf(&b, "Percentage of Keyword '%s': %.2f%%\n", keyword, rec.KeywordPercentage)
		if rec.AvgKeywordPosition >= 0 {
			fmt.Fprintf(&b, "Average Position of Keyword '%s': %g\n", keyword, rec.AvgKeywordPosition)
		} else {
			fmt.Fprintf(&b, "The keyword '%s' is not present in the text.\n", keyword)
		}
		if rec.Degraded {
			fmt.Fprintf(&b, "Note: metrics for this document were zeroed by a computation error.\n")
		}
		b.WriteString(separator + "\n\n")
	}

	return b.String()
}

// Save writes the rendered report to a timestamped file and returns its
// path.
func (r *Reporter) Save(records []domain.RelevanceRecord, keyword, query string) (string, error) {
	name := fmt.Sprintf("search_results_%s.txt", r.now().Format(r.timestampFormat))
	path := filepath.Join(r.outputDir, name)

	if err := os.WriteFile(path, []byte(r.Render(records, keyword, query)), 0o644); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}

	r.logger.Info("Results saved", zap.String("path", path))
	return path, nil
}
