package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// DB wraps the database connection. SQLite is the default; Postgres and
// MySQL are supported for shared setups.
type DB struct {
	conn    *sql.DB
	dataDir string // root directory for exports and backups
	dialect dialect
}

// New opens (or creates) the SQLite file at dbPath.
func New(dbPath, dataDir string) (*DB, error) {
	return Open("sqlite", dbPath, dataDir)
}

// Open connects with the given driver ("sqlite", "postgres" or "mysql").
// For sqlite dsn is a file path; for the others it is the driver DSN. MySQL
// DSNs need parseTime=true.
func Open(driver, dsn, dataDir string) (*DB, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	if d.name == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	conn, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if d.name == "sqlite" {
		// SQLite only supports one writer, limit to single connection to prevent SQLITE_BUSY
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	db := &DB{conn: conn, dataDir: dataDir, dialect: d}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// DataDir returns the root data directory.
func (db *DB) DataDir() string {
	return db.dataDir
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Driver returns the dialect name: sqlite, postgres or mysql.
func (db *DB) Driver() string {
	return db.dialect.name
}

// Rebind rewrites ? placeholders for the active dialect.
func (db *DB) Rebind(query string) string {
	return db.dialect.rebind(query)
}

func (db *DB) exec(q string, args ...any) (sql.Result, error) {
	return db.conn.Exec(db.dialect.rebind(q), args...)
}

func (db *DB) query(q string, args ...any) (*sql.Rows, error) {
	return db.conn.Query(db.dialect.rebind(q), args...)
}

func (db *DB) queryRow(q string, args ...any) *sql.Row {
	return db.conn.QueryRow(db.dialect.rebind(q), args...)
}

// tx wraps *sql.Tx with placeholder rebinding.
type tx struct {
	*sql.Tx
	d dialect
}

func (db *DB) begin() (*tx, error) {
	t, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &tx{Tx: t, d: db.dialect}, nil
}

func (t *tx) exec(q string, args ...any) (sql.Result, error) {
	return t.Exec(t.d.rebind(q), args...)
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS mindmaps (
			id {{id}} PRIMARY KEY,
			name {{name}} NOT NULL,
			viewport_x DOUBLE PRECISION NOT NULL DEFAULT 0,
			viewport_y DOUBLE PRECISION NOT NULL DEFAULT 0,
			viewport_zoom DOUBLE PRECISION NOT NULL DEFAULT 1.0,
			created_at {{ts}} NOT NULL,
			updated_at {{ts}} NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS nodes (
			mindmap_id {{id}} NOT NULL REFERENCES mindmaps(id) ON DELETE CASCADE,
			id {{id}} NOT NULL,
			sort_order INTEGER NOT NULL,
			type {{name}} NOT NULL,
			x DOUBLE PRECISION NOT NULL DEFAULT 0,
			y DOUBLE PRECISION NOT NULL DEFAULT 0,
			data_json {{text}} NOT NULL,
			updated_at {{ts}} NOT NULL,
			PRIMARY KEY (mindmap_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS edges (
			mindmap_id {{id}} NOT NULL REFERENCES mindmaps(id) ON DELETE CASCADE,
			id {{id}} NOT NULL,
			sort_order INTEGER NOT NULL,
			source {{id}} NOT NULL,
			target {{id}} NOT NULL,
			source_handle {{name}} NOT NULL,
			target_handle {{name}} NOT NULL,
			type {{name}} NOT NULL,
			label {{name}} NOT NULL,
			animated INTEGER NOT NULL DEFAULT 0,
			style_json {{text}} NOT NULL,
			updated_at {{ts}} NOT NULL,
			PRIMARY KEY (mindmap_id, id)
		)`,
		// Linear undo history: one row per snapshot, seq is the history index
		`CREATE TABLE IF NOT EXISTS history_snapshots (
			mindmap_id {{id}} NOT NULL REFERENCES mindmaps(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			snapshot_json {{text}} NOT NULL,
			created_at {{ts}} NOT NULL,
			PRIMARY KEY (mindmap_id, seq)
		)`,
		`CREATE TABLE IF NOT EXISTS history_cursor (
			mindmap_id {{id}} PRIMARY KEY REFERENCES mindmaps(id) ON DELETE CASCADE,
			current_index INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS app_settings (
			setting_key {{id}} PRIMARY KEY,
			setting_value {{name}} NOT NULL
		)`,
		// Approval requests from a standalone MCP process, answered by the GUI
		`CREATE TABLE IF NOT EXISTS mcp_approvals (
			id {{id}} PRIMARY KEY,
			tool {{name}} NOT NULL,
			description {{text}} NOT NULL,
			status {{name}} NOT NULL,
			metadata {{text}} NOT NULL,
			created_at {{ts}} NOT NULL
		)`,
	}

	for _, m := range migrations {
		stmt := db.dialect.ddl(m)
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %s: %w", strings.TrimSpace(stmt)[:40], err)
		}
	}

	return nil
}
