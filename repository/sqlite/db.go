package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS summaries (
    id TEXT PRIMARY KEY,
    url TEXT UNIQUE NOT NULL,
    video_id TEXT NOT NULL,
    status TEXT NOT NULL,
    failed_stage TEXT,
    error TEXT,
    warning TEXT,
    word_budget INTEGER NOT NULL,
    language TEXT,
    transcript TEXT,
    summary TEXT,
    audio_file TEXT,
    pdf_file TEXT,
    docx_file TEXT,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
);

-- Indexes
CREATE INDEX IF NOT EXISTS idx_summaries_url ON summaries(url);
CREATE INDEX IF NOT EXISTS idx_summaries_status ON summaries(status);
`

func InitDB(dbPath string, maxConnections int) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, errors.Wrap(err, "create database directory")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	if maxConnections > 0 {
		db.SetMaxOpenConns(maxConnections)
	}

	if err := configurePragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := execSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func configurePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA cache_size = -2000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return errors.Wrap(err, fmt.Sprintf("set pragma: %s", pragma))
		}
	}

	return nil
}

func execSchema(db *sql.DB) error {
	statements := strings.Split(schema, ";")

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin schema transaction")
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.Exec(stmt); err != nil {
			return errors.Wrap(err, fmt.Sprintf("execute schema statement: %s", stmt))
		}
	}

	return errors.Wrap(tx.Commit(), "commit schema transaction")
}
