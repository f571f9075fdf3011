package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "initial schema",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    link TEXT UNIQUE NOT NULL,
    summary TEXT NOT NULL,
    date TEXT NOT NULL,
    topics TEXT
);

CREATE TABLE IF NOT EXISTS article_impacts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    article_link TEXT NOT NULL REFERENCES articles(link) ON DELETE CASCADE,
    persona TEXT NOT NULL,
    impact_score INTEGER NOT NULL DEFAULT 0,
    impact_reason TEXT,
    UNIQUE(article_link, persona)
);

CREATE INDEX IF NOT EXISTS idx_articles_link ON articles(link);
CREATE INDEX IF NOT EXISTS idx_articles_date ON articles(date);
CREATE INDEX IF NOT EXISTS idx_impacts_link ON article_impacts(article_link);
`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}
