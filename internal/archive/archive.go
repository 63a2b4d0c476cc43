// Package archive persists completed investigation records as JSON files.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Cyclone1070/fraudinv/internal/investigation"
)

const timestampLayout = "20060102_150405"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileArchive writes one file per record, named <case_id>_<YYYYmmdd_HHMMSS>.json.
type FileArchive struct {
	dir   string
	clock func() time.Time
}

// NewFileArchive uses time.Now when clock is nil.
func NewFileArchive(dir string, clock func() time.Time) *FileArchive {
	if clock == nil {
		clock = time.Now
	}
	return &FileArchive{dir: dir, clock: clock}
}

func (a *FileArchive) Dir() string { return a.dir }

// Save writes the record and returns its path. An existing file is never overwritten;
// a numeric suffix is added instead.
func (a *FileArchive) Save(rec *investigation.Record) (string, error) {
	if rec == nil {
		return "", errors.New("archive: nil record")
	}
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("archive: create %s: %w", a.dir, err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("archive: encode %s: %w", rec.CaseID, err)
	}

	base := fmt.Sprintf("%s_%s", SanitizeCaseID(rec.CaseID), a.clock().Format(timestampLayout))
	for attempt := 1; ; attempt++ {
		name := base + ".json"
		if attempt > 1 {
			name = fmt.Sprintf("%s_%d.json", base, attempt)
		}
		path := filepath.Join(a.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("archive: %w", err)
		}
		if _, err := f.Write(append(data, '\n')); err != nil {
			f.Close()
			return "", fmt.Errorf("archive: write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("archive: close %s: %w", path, err)
		}
		return path, nil
	}
}

// List reads every stored record, ordered by file name. A missing directory holds no records.
func (a *FileArchive) List() ([]investigation.Record, error) {
	paths, err := filepath.Glob(filepath.Join(a.dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	records := make([]investigation.Record, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("archive: %w", err)
		}
		var rec investigation.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("archive: decode %s: %w", filepath.Base(path), err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// SanitizeCaseID makes a case id safe to use as a file name prefix.
func SanitizeCaseID(id string) string {
	s := strings.Trim(unsafeChars.ReplaceAllString(strings.TrimSpace(id), "_"), "._")
	if s == "" {
		return "case"
	}
	return s
}
