// Package loader reads the plain-text corpus from a folder on disk.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/kailas-cloud/docrank/internal/domain"
)

// Loader reads all files with a fixed extension from one folder. Individual
// unreadable or undecodable files are skipped with a warning; only a missing
// folder is fatal.
type Loader struct {
	folder    string
	extension string
	decoder   *encoding.Decoder
	logger    *zap.Logger
}

// Config holds loader settings.
type Config struct {
	Folder    string
	Extension string // default ".txt"
	Encoding  string // IANA charset name, default utf-8
	Logger    *zap.Logger
}

// New validates the folder and encoding up front. A missing folder or an
// unknown charset name is a configuration error, not a per-file one.
func New(cfg Config) (*Loader, error) {
	info, err := os.Stat(cfg.Folder)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", domain.ErrFolderNotFound, cfg.Folder)
	}

	ext := cfg.Extension
	if ext == "" {
		ext = ".txt"
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	var dec *encoding.Decoder
	if name := cfg.Encoding; name != "" && !strings.EqualFold(name, "utf-8") {
		enc, err := ianaindex.IANA.Encoding(name)
		if err != nil || enc == nil {
			return nil, fmt.Errorf("unsupported encoding %q", name)
		}
		dec = enc.NewDecoder()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Loader{
		folder:    cfg.Folder,
		extension: ext,
		decoder:   dec,
		logger:    logger,
	}, nil
}

// Load reads every matching file in sorted filename order and returns the
// decoded, whitespace-normalized documents.
func (l *Loader) Load() ([]domain.Document, error) {
	entries, err := os.ReadDir(l.folder)
	if err != nil {
		return nil, fmt.Errorf("read folder %s: %w", l.folder, err)
	}

	var docs []domain.Document
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), l.extension) {
			continue
		}

		path := filepath.Join(l.folder, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn("Failed to read file, skipping", zap.String("path", path), zap.Error(err))
			continue
		}

		text, ok := l.decode(path, data)
		if !ok {
			continue
		}

		docs = append(docs, domain.Document{
			Name: entry.Name(),
			Text: normalizeWhitespace(text),
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })

	if len(docs) == 0 {
		l.logger.Warn("No documents found",
			zap.String("folder", l.folder),
			zap.String("extension", l.extension),
		)
	}

	return docs, nil
}

func (l *Loader) decode(path string, data []byte) (string, bool) {
	if l.decoder == nil {
		if !utf8.Valid(data) {
			l.logger.Warn("Failed to decode file as utf-8, skipping", zap.String("path", path))
			return "", false
		}
		return string(data), true
	}

	decoded, err := l.decoder.Bytes(data)
	if err != nil {
		l.logger.Warn("Failed to decode file, skipping", zap.String("path", path), zap.Error(err))
		return "", false
	}
	return string(decoded), true
}

// normalizeWhitespace collapses all whitespace runs to single spaces.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
