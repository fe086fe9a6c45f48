// Package datasource resolves report paths to sources (JSON, YAML or a
// SQLite snapshot written by the sqlite exporter) and loads one or several
// of them into a single row sequence.
package datasource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeJSON is a JSON report file
	SourceTypeJSON SourceType = "json"
	// SourceTypeYAML is a YAML report file
	SourceTypeYAML SourceType = "yaml"
	// SourceTypeSQLite is a snapshot database written by `ct export --format sqlite`
	SourceTypeSQLite SourceType = "sqlite"
)

// ErrUnknownSource is returned for paths whose extension names no known source type.
var ErrUnknownSource = errors.New("unknown source type")

// DataSource represents one report on disk
type DataSource struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the path to the source file
	Path string `json:"path"`
	// ModTime is the last modification time of the source
	ModTime time.Time `json:"mod_time"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	return fmt.Sprintf("%s (%s, mod=%s, %d bytes)",
		s.Path, s.Type, s.ModTime.Format(time.RFC3339), s.Size)
}

// TypeFromPath classifies a path by extension without touching the filesystem.
func TypeFromPath(path string) (SourceType, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return SourceTypeJSON, nil
	case ".yaml", ".yml":
		return SourceTypeYAML, nil
	case ".db", ".sqlite", ".sqlite3":
		return SourceTypeSQLite, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownSource, path)
	}
}

// DetectSource stats path and classifies it.
func DetectSource(path string) (DataSource, error) {
	typ, err := TypeFromPath(path)
	if err != nil {
		return DataSource{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return DataSource{}, fmt.Errorf("cannot stat source: %w", err)
	}
	if info.IsDir() {
		return DataSource{}, fmt.Errorf("source is a directory: %s", path)
	}
	return DataSource{
		Type:    typ,
		Path:    path,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}, nil
}
