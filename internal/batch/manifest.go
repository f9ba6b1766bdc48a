package batch

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/hightemp/flagpic/internal/fsutil"
	"github.com/hightemp/flagpic/internal/output"
)

// ManifestVersion is the current manifest format version.
const ManifestVersion = 1

// Manifest records one generation run next to its pictures. PreviousRunID is the
// run it replaced in the same directory, if any.
type Manifest struct {
	Version       int                      `json:"version"`
	RunID         string                   `json:"run_id"`
	PreviousRunID string                   `json:"previous_run_id,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
	Store         string                   `json:"store"`
	Template      string                   `json:"template"`
	Generated     int                      `json:"generated"`
	Failed        int                      `json:"failed"`
	Results       []*output.GenerateResult `json:"results"`
}

// NewManifest summarizes a batch result.
func NewManifest(store, template string, result *output.BatchResult) *Manifest {
	failed := result.Failed()
	return &Manifest{
		Version:   ManifestVersion,
		RunID:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Store:     store,
		Template:  template,
		Generated: len(result.Results) - failed,
		Failed:    failed,
		Results:   result.Results,
	}
}

// Save writes the manifest into dir under name.
func (m *Manifest) Save(dir, name string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(dir, name, data)
}

// LoadManifest loads a manifest from a file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	return &m, nil
}
