package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docrank/internal/domain"
)

func fixedNow() time.Time {
	return time.Date(2026, 8, 25, 12, 30, 45, 0, time.UTC)
}

func newTestReporter(dir string) *Reporter {
	return New(Config{OutputDir: dir, Logger: zap.NewNop(), Now: fixedNow})
}

func sampleRecords() []domain.RelevanceRecord {
	return []domain.RelevanceRecord{
		{
			Name: "b.txt", Relevance: 0.1, Similarity: 0.2, TFIDF: 0,
			KeywordCount: 0, KeywordPercentage: 0,
			AvgKeywordPosition: domain.PositionAbsent,
		},
		{
			Name: "a.txt", Relevance: 0.75, Similarity: 0.9, TFIDF: 0.5,
			KeywordCount: 2, KeywordPercentage: 66.6667,
			AvgKeywordPosition: 1.0,
		},
	}
}

func TestSort_RelevanceDescendingNameTiebreak(t *testing.T) {
	records := []domain.RelevanceRecord{
		{Name: "c.txt", Relevance: 0.5},
		{Name: "a.txt", Relevance: 0.9},
		{Name: "b.txt", Relevance: 0.5},
	}

	sorted := Sort(records)
	got := []string{sorted[0].Name, sorted[1].Name, sorted[2].Name}
	want := []string{"a.txt", "b.txt", "c.txt"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}

	// Input order preserved.
	if records[0].Name != "c.txt" {
		t.Error("Sort mutated its input")
	}
}

func TestRender_Content(t *testing.T) {
	out := newTestReporter(t.TempDir()).Render(sampleRecords(), "cat", "cat pictures")

	for _, want := range []string{
		"Full Query: cat pictures",
		"Keyword: cat",
		"Total Number of Documents Found: 2",
		"Document 1 - Title: a.txt",
		"Final Relevance Score: 0.7500",
		"Similarity Index with Query: 0.9000",
		"TF-IDF for Keyword 'cat': 0.5000",
		"Occurrences of Keyword 'cat': 2",
		"Percentage of Keyword 'cat': 66.67%",
		"Average Position of Keyword 'cat': 1",
		"Document 2 - Title: b.txt",
		"The keyword 'cat' is not present in the text.",
		"Date and Time: 2026-08-25 12:30:45",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q\n---\n%s", want, out)
		}
	}
}

func TestRender_DegradedNote(t *testing.T) {
	records := []domain.RelevanceRecord{
		{Name: "x.txt", AvgKeywordPosition: domain.PositionAbsent, Degraded: true},
	}

	out := newTestReporter(t.TempDir()).Render(records, "cat", "cat")
	if !strings.Contains(out, "zeroed by a computation error") {
		t.Errorf("report missing degraded note:\n%s", out)
	}
}

func TestSave_WritesTimestampedFile(t *testing.T) {
	dir := t.TempDir()

	path, err := newTestReporter(dir).Save(sampleRecords(), "cat", "cat pictures")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if filepath.Base(path) != "search_results_20260825_123045.txt" {
		t.Errorf("unexpected filename: %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), "Document 1 - Title: a.txt") {
		t.Errorf("file content incomplete:\n%s", data)
	}
}

func TestSave_BadDirectory(t *testing.T) {
	r := New(Config{
		OutputDir: filepath.Join(t.TempDir(), "missing", "nested"),
		Logger:    zap.NewNop(),
		Now:       fixedNow,
	})
	if _, err := r.Save(sampleRecords(), "cat", "cat"); err == nil {
		t.Fatal("expected error for missing output directory")
	}
}
