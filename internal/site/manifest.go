package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// manifestName is the build manifest written at the site root.
const manifestName = "build-report.json"

// Manifest is the machine-readable record of a build, written alongside
// the rendered pages.
type Manifest struct {
	SchemaVersion int       `json:"schema_version"`
	BuildID       string    `json:"build_id"`
	BuiltAt       time.Time `json:"built_at"`
	Pages         int       `json:"pages"`
	Warnings      []string  `json:"warnings,omitempty"`
}

func writeManifest(stageDir string, report *Report) error {
	m := Manifest{
		SchemaVersion: 1,
		BuildID:       report.BuildID,
		BuiltAt:       time.Now().UTC(),
		Pages:         report.Pages,
		Warnings:      report.Warnings,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal build manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(stageDir, manifestName), data, 0o644); err != nil {
		return fmt.Errorf("write build manifest: %w", err)
	}
	return nil
}

// ReadManifest loads the manifest from a rendered site directory.
func ReadManifest(siteDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(siteDir, manifestName))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode build manifest: %w", err)
	}
	return &m, nil
}
