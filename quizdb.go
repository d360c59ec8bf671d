package gradequiz

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB keeps the history of quiz generation attempts. It never stores
// answers or in-progress sessions.
type DB struct {
	db *sql.DB
}

var _ Recorder = (*DB)(nil)

// OpenDB opens a new database connection
func OpenDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db}, nil
}

// CloseDB closes the database connection
func (db *DB) CloseDB() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS generations (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			subject TEXT NOT NULL,
			topic TEXT NOT NULL,
			prompt TEXT,
			grade INTEGER NOT NULL,
			difficulty TEXT NOT NULL,
			mode TEXT NOT NULL,
			requested INTEGER NOT NULL,
			received INTEGER NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_generations_created_at ON generations(created_at)`,
	}

	for _, query := range queries {
		if _, err := db.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// RecordGeneration stores one generation attempt
func (db *DB) RecordGeneration(ctx context.Context, rec GenerationRecord) error {
	_, err := db.db.ExecContext(ctx,
		`INSERT INTO generations (id, source, subject, topic, prompt, grade, difficulty, mode, requested, received, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Source, rec.Subject, rec.Topic, rec.Prompt, rec.Grade, string(rec.Difficulty), string(rec.Mode),
		rec.Requested, rec.Received, rec.Status, rec.Error, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record generation: %w", err)
	}
	return nil
}

const generationColumns = "id, source, subject, topic, prompt, grade, difficulty, mode, requested, received, status, error, created_at"

// GetGeneration retrieves a generation record by ID
func (db *DB) GetGeneration(id string) (*GenerationRecord, error) {
	row := db.db.QueryRow("SELECT "+generationColumns+" FROM generations WHERE id = ?", id)
	rec, err := scanGeneration(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("generation not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get generation: %w", err)
	}
	return rec, nil
}

// RecentGenerations returns the newest records first, optionally limited by count
func (db *DB) RecentGenerations(limit int) ([]GenerationRecord, error) {
	query := "SELECT " + generationColumns + " FROM generations ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get generations: %w", err)
	}
	defer rows.Close()

	var records []GenerationRecord
	for rows.Next() {
		rec, err := scanGeneration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		records = append(records, *rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generations: %w", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row rowScanner) (*GenerationRecord, error) {
	var (
		rec              GenerationRecord
		difficulty, mode string
		prompt, errText  sql.NullString
	)
	err := row.Scan(&rec.ID, &rec.Source, &rec.Subject, &rec.Topic, &prompt, &rec.Grade, &difficulty, &mode,
		&rec.Requested, &rec.Received, &rec.Status, &errText, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.Difficulty = Difficulty(difficulty)
	rec.Mode = Mode(mode)
	rec.Prompt = prompt.String
	rec.Error = errText.String
	return &rec, nil
}
