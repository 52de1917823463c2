package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ManifestEntry represents one exported design in the output manifest.
type ManifestEntry struct {
	Design  string `json:"design"`
	Image   string `json:"image,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// WriteManifest writes manifest.json next to the exported images.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Design:  filepath.Base(r.Design),
			Success: r.Success,
			Error:   r.Error,
		}
		if r.Output != "" {
			entries[i].Image = filepath.Base(r.Output)
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
