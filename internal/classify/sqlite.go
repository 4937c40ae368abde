package classify

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const corpusBusyTimeout = 5000 // milliseconds

// corpusSchema is created on open so a fresh database is immediately usable
// for curating training data.
const corpusSchema = `
CREATE TABLE IF NOT EXISTS corpus (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	text     TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_corpus_text ON corpus(text);
`

// OpenCorpusDB opens (creating if needed) a SQLite training-corpus database.
// The caller is responsible for closing the returned *sql.DB. The database
// uses WAL mode, a 5 s busy timeout, and a single connection, since SQLite
// serialises writes anyway.
func OpenCorpusDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("classify: open corpus db %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("classify: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", corpusBusyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("classify: set busy_timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, corpusSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("classify: migrate corpus schema: %w", err)
	}
	return db, nil
}

// LoadCorpusDB reads training examples from the corpus table. Rows sharing
// the same text are merged into one multi-label example; an empty category
// marks an unaligned example.
func LoadCorpusDB(ctx context.Context, db *sql.DB) ([]Example, error) {
	rows, err := db.QueryContext(ctx, "SELECT text, category FROM corpus ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("classify: query corpus: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var examples []Example
	index := make(map[string]int)
	for rows.Next() {
		var text, category string
		if err := rows.Scan(&text, &category); err != nil {
			return nil, fmt.Errorf("classify: scan corpus row: %w", err)
		}

		i, ok := index[text]
		if !ok {
			i = len(examples)
			index[text] = i
			examples = append(examples, Example{Text: text})
		}
		if category != "" {
			examples[i].Categories = append(examples[i].Categories, Category(category))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("classify: iterate corpus: %w", err)
	}

	if err := validateExamples(examples); err != nil {
		return nil, fmt.Errorf("classify: corpus db: %w", err)
	}
	return examples, nil
}
