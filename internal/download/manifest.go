package download

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// ManifestVersion is the current schema version
	ManifestVersion = 1

	// ManifestFilename is the default manifest filename
	ManifestFilename = "manifest.json"
)

// Manifest stores the download state for all codelists.
type Manifest struct {
	Version   int                      `json:"version"`
	LastFetch time.Time                `json:"last_fetch"`
	Codelists map[string]CodelistState `json:"codelists"`
	mu        sync.RWMutex             `json:"-"`
}

// CodelistState stores the download state for a single codelist.
type CodelistState struct {
	URL       string    `json:"url"`
	File      string    `json:"file"`
	FetchedAt time.Time `json:"fetched_at"`
	Size      int64     `json:"size"`
	Error     string    `json:"error,omitempty"`
}

// NewManifest creates a new empty manifest.
func NewManifest() *Manifest {
	return &Manifest{
		Version:   ManifestVersion,
		Codelists: make(map[string]CodelistState),
	}
}

// LoadManifest reads a manifest from disk, or creates a new one if it doesn't exist.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewManifest(), nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if manifest.Codelists == nil {
		manifest.Codelists = make(map[string]CodelistState)
	}
	return &manifest, nil
}

// Save writes the manifest to disk atomically.
// Uses write-to-temp + rename pattern to prevent corruption.
func (m *Manifest) Save(path string) error {
	m.mu.RLock()
	data, err := json.MarshalIndent(m, "", "  ")
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename manifest file: %w", err)
	}
	return nil
}

// SetState updates the state for a codelist.
func (m *Manifest) SetState(codelistID string, state CodelistState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Codelists[codelistID] = state
}

// SetError records a failed download for a codelist.
func (m *Manifest) SetError(codelistID, url, errMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Codelists[codelistID] = CodelistState{URL: url, Error: errMsg}
}

// UpdateLastFetch updates the last fetch timestamp.
func (m *Manifest) UpdateLastFetch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastFetch = time.Now()
}

// Failed returns the codelists whose last download failed.
func (m *Manifest) Failed() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]string)
	for id, state := range m.Codelists {
		if state.Error != "" {
			result[id] = state.Error
		}
	}
	return result
}
