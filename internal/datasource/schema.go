package datasource

// SchemaStatements create the snapshot tables. A snapshot database may hold
// several exports; readers pick the most recent one.
var SchemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS report_meta (
		export_id    TEXT PRIMARY KEY,
		title        TEXT NOT NULL,
		subtitle     TEXT NOT NULL DEFAULT '',
		instance_url TEXT NOT NULL DEFAULT '',
		cutoff       TEXT NOT NULL DEFAULT '',
		exported_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS report_rows (
		export_id      TEXT NOT NULL REFERENCES report_meta(export_id),
		position       INTEGER NOT NULL,
		depth          INTEGER NOT NULL,
		section_header INTEGER NOT NULL DEFAULT 0,
		collapsed      INTEGER NOT NULL DEFAULT 0,
		hidden         INTEGER NOT NULL DEFAULT 0,
		label          TEXT NOT NULL DEFAULT '',
		record_id      TEXT NOT NULL DEFAULT '',
		cells          TEXT NOT NULL DEFAULT '[]',
		PRIMARY KEY (export_id, position)
	)`,
}
