package sqlite

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection with thread-safe access.
type DB struct {
	conn *sql.DB
	mu   sync.RWMutex
}

// New creates and initializes a new SQLite database connection.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// migrate creates the necessary tables if they don't exist.
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS defect_detections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		coil_number TEXT NOT NULL,
		defect_type TEXT NOT NULL DEFAULT 'unknown',
		defect_position_x INTEGER DEFAULT 0,
		defect_position_y INTEGER DEFAULT 0,
		defect_position_meter REAL DEFAULT 0,
		defect_size_width INTEGER DEFAULT 0,
		defect_size_height INTEGER DEFAULT 0,
		confidence_score REAL DEFAULT 0,
		detection_time DATETIME NOT NULL,
		original_image_path TEXT NOT NULL,
		labeled_image_path TEXT NOT NULL,
		model_id INTEGER DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_defect_detections_coil ON defect_detections(coil_number);
	CREATE INDEX IF NOT EXISTS idx_defect_detections_time ON defect_detections(detection_time);
	CREATE INDEX IF NOT EXISTS idx_defect_detections_type ON defect_detections(defect_type);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection for use by repositories.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Lock acquires a write lock.
func (db *DB) Lock() {
	db.mu.Lock()
}

// Unlock releases the write lock.
func (db *DB) Unlock() {
	db.mu.Unlock()
}

// RLock acquires a read lock.
func (db *DB) RLock() {
	db.mu.RLock()
}

// RUnlock releases the read lock.
func (db *DB) RUnlock() {
	db.mu.RUnlock()
}
