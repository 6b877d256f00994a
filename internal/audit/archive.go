package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Archive keeps full sweep reports as JSON files next to the database, for
// runs whose per-loan detail is too large for an audit event.
type Archive struct {
	Dir string
}

func NewArchive(dir string) *Archive {
	return &Archive{Dir: dir}
}

// SaveJSON writes data to <dir>/<prefix>-<timestamp>-<runID>.json and
// returns the file name.
func (a *Archive) SaveJSON(prefix, runID string, at time.Time, data any) (string, error) {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	filename := fmt.Sprintf("%s-%s-%s.json", prefix, at.UTC().Format("20060102T150405Z"), runID)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", prefix, err)
	}

	if err := os.WriteFile(filepath.Join(a.Dir, filename), jsonData, 0o644); err != nil {
		return "", fmt.Errorf("failed to write archive file: %w", err)
	}

	return filename, nil
}
