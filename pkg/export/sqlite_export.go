package export

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/changetree/internal/datasource"
	"github.com/vanderheijden86/changetree/pkg/hierarchy"
)

// WriteSQLite appends a snapshot of every row to the database at path and
// returns the export id. The database can be reopened with `ct view`.
func WriteSQLite(path string, seq *hierarchy.Sequence, opts Options) (string, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return "", fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	for _, stmt := range datasource.SchemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return "", fmt.Errorf("create schema: %w", err)
		}
	}

	exportID := uuid.NewString()
	if err := insertSnapshot(db, exportID, seq, opts); err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	if _, err := db.Exec("PRAGMA optimize"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: optimize %s: %v\n", path, err)
	}
	return exportID, nil
}

func insertSnapshot(db *sql.DB, exportID string, seq *hierarchy.Sequence, opts Options) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO report_meta (export_id, title, subtitle, instance_url, cutoff, exported_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		exportID, opts.title(), opts.Subtitle, opts.InstanceURL, opts.Cutoff,
		opts.exportedAt().Format(time.RFC3339Nano))
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO report_rows (export_id, position, depth, section_header, collapsed, hidden, label, record_id, cells)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, row := range seq.Forward(0) {
		cells := "[]"
		if len(row.Cells) > 0 {
			data, err := json.Marshal(row.Cells)
			if err != nil {
				return fmt.Errorf("encode cells of row %d: %w", i, err)
			}
			cells = string(data)
		}
		if _, err := stmt.Exec(exportID, i, seq.Depth(i), row.SectionHeader, row.Collapsed, row.Hidden,
			row.Label, row.RecordID, cells); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	return tx.Commit()
}
