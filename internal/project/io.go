package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CurrentSchemaVersion is the schema version New() stamps and Load
// migrates forward to.
const CurrentSchemaVersion = 5

// Load reads and decodes a project file, migrating it forward to
// CurrentSchemaVersion if it was authored under an older one, and
// stamping RootDir from path's directory (spec §6 Project file).
func Load(path string) (*Project, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("project: read %s: %w", path, err)
	}
	var p Project
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("project: decode %s: %w", path, err)
	}
	if err := Migrate(&p); err != nil {
		return nil, fmt.Errorf("project: migrate %s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	p.RootDir = filepath.Dir(abs)
	return &p, nil
}

// Save writes p to path atomically: marshal to a temp file in the same
// directory, then rename over the destination (spec §5's "Project JSON
// on disk is rewritten atomically").
func Save(p *Project, path string) error {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("project: marshal: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("project: create dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".project-*.json.tmp")
	if err != nil {
		return fmt.Errorf("project: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("project: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("project: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("project: rename into place: %w", err)
	}
	return nil
}

// Migrate applies ordered schema migrations up to CurrentSchemaVersion.
// No migrations exist yet (every authored project so far is already at
// CurrentSchemaVersion); this is the hook migrate_project names (spec
// §6) for when an older schema_version needs an upgrade path.
func Migrate(p *Project) error {
	if p.SchemaVersion == 0 {
		p.SchemaVersion = CurrentSchemaVersion
		return nil
	}
	if p.SchemaVersion > CurrentSchemaVersion {
		return fmt.Errorf("project: schema_version %d is newer than this build supports (%d)", p.SchemaVersion, CurrentSchemaVersion)
	}
	p.SchemaVersion = CurrentSchemaVersion
	return nil
}
