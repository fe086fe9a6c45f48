package datasource

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/changetree/pkg/debug"
	"github.com/vanderheijden86/changetree/pkg/hierarchy"
	"github.com/vanderheijden86/changetree/pkg/model"
)

// ErrNoSnapshot is returned when a database holds no exported report.
var ErrNoSnapshot = errors.New("database contains no report snapshot")

// Snapshot describes one export stored in a snapshot database.
type Snapshot struct {
	ExportID   string
	Title      string
	ExportedAt time.Time
	RowCount   int
}

// SQLiteReader provides read access to a snapshot database
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a snapshot database for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA cache_size = -16000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			debug.Log("sqlite pragma %q failed: %v", pragma, err)
		}
	}

	return &SQLiteReader{db: db, path: source.Path}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Snapshots lists the exports in the database, newest first.
func (r *SQLiteReader) Snapshots() ([]Snapshot, error) {
	rows, err := r.db.Query(`
		SELECT m.export_id, m.title, m.exported_at,
		       (SELECT COUNT(*) FROM report_rows r WHERE r.export_id = m.export_id)
		FROM report_meta m
		ORDER BY m.exported_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		var exportedAt string
		if err := rows.Scan(&s.ExportID, &s.Title, &exportedAt, &s.RowCount); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		s.ExportedAt, _ = time.Parse(time.RFC3339Nano, exportedAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

// LoadReport reads the most recent snapshot as a flat-row report.
func (r *SQLiteReader) LoadReport() (*model.Report, error) {
	var exportID string
	err := r.db.QueryRow(`SELECT export_id FROM report_meta ORDER BY exported_at DESC LIMIT 1`).Scan(&exportID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", r.path, ErrNoSnapshot)
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return r.LoadSnapshot(exportID)
}

// LoadSnapshot reads the export with the given id.
func (r *SQLiteReader) LoadSnapshot(exportID string) (*model.Report, error) {
	report := &model.Report{}
	err := r.db.QueryRow(`
		SELECT title, subtitle, instance_url, cutoff
		FROM report_meta WHERE export_id = ?`, exportID).
		Scan(&report.Title, &report.Subtitle, &report.InstanceURL, &report.Cutoff)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %s: %w", exportID, ErrNoSnapshot)
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot header: %w", err)
	}

	rows, err := r.db.Query(`
		SELECT depth, section_header, collapsed, label, record_id, cells
		FROM report_rows WHERE export_id = ?
		ORDER BY position`, exportID)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			depth     int
			section   bool
			collapsed bool
			fr        model.FlatRow
			cellsJSON string
		)
		if err := rows.Scan(&depth, &section, &collapsed, &fr.Label, &fr.RecordID, &cellsJSON); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		fr.Depth = depth
		fr.SectionHeader = section
		fr.Collapsed = collapsed
		fr.Cells = parseCells(cellsJSON)
		report.Rows = append(report.Rows, fr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return report, nil
}

// parseCells decodes the cells column, treating malformed data as no cells.
func parseCells(s string) []hierarchy.Cell {
	if s == "" {
		return nil
	}
	var cells []hierarchy.Cell
	if err := json.Unmarshal([]byte(s), &cells); err != nil {
		debug.Log("malformed cells column %q: %v", s, err)
		return nil
	}
	return cells
}
