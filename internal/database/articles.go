package database

import (
	"database/sql"
	"encoding/json"
)

// InsertArticle inserts a new article row. Returns the ID on success,
// 0 if a row for the link already exists. There is no update path:
// summary and topics are fixed at creation.
func (db *DB) InsertArticle(title, link, summary string, topics []string, date string) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO articles (title, link, summary, date, topics)
		VALUES (?, ?, ?, ?, ?)`,
		title, link, summary, date, marshalTopics(topics),
	)
	if err != nil {
		// Duplicate link constraint
		return 0, nil //nolint: nilerr
	}
	return result.LastInsertId()
}

// HasArticle reports whether an article row exists for the link.
func (db *DB) HasArticle(link string) (bool, error) {
	var one int
	err := db.conn.QueryRow("SELECT 1 FROM articles WHERE link = ?", link).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetArticle returns the article for a link, or nil if absent.
func (db *DB) GetArticle(link string) (*Article, error) {
	row := db.conn.QueryRow(
		"SELECT id, title, link, summary, date, topics FROM articles WHERE link = ?", link,
	)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetArticlesForDate returns articles ingested on the given date.
func (db *DB) GetArticlesForDate(date string) ([]Article, error) {
	rows, err := db.conn.Query(
		"SELECT id, title, link, summary, date, topics FROM articles WHERE date = ? ORDER BY id", date,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// RecentArticles returns the most recently ingested articles, newest first.
func (db *DB) RecentArticles(limit int) ([]Article, error) {
	rows, err := db.conn.Query(
		"SELECT id, title, link, summary, date, topics FROM articles ORDER BY date DESC, id DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanArticles(rows)
}

// DeleteArticlesBefore removes articles dated strictly before cutoff,
// along with their impact rows, in one transaction. Returns the number
// of articles deleted. Safe to run when nothing qualifies.
func (db *DB) DeleteArticlesBefore(cutoff string) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}

	// Explicit impact delete so the sweep is correct even on database
	// files created before the cascading foreign key existed.
	if _, err := tx.Exec(
		"DELETE FROM article_impacts WHERE article_link IN (SELECT link FROM articles WHERE date < ?)", cutoff,
	); err != nil {
		tx.Rollback()
		return 0, err
	}

	result, err := tx.Exec("DELETE FROM articles WHERE date < ?", cutoff)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	deleted, _ := result.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return deleted, nil
}

func marshalTopics(topics []string) string {
	if len(topics) == 0 {
		return "[]"
	}
	data, err := json.Marshal(topics)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func unmarshalTopics(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var topics []string
	if err := json.Unmarshal([]byte(raw.String), &topics); err != nil {
		return nil
	}
	return topics
}

func scanArticles(rows *sql.Rows) ([]Article, error) {
	var articles []Article
	for rows.Next() {
		var a Article
		var topics sql.NullString
		if err := rows.Scan(&a.ID, &a.Title, &a.Link, &a.Summary, &a.Date, &topics); err != nil {
			return nil, err
		}
		a.Topics = unmarshalTopics(topics)
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func scanArticle(row *sql.Row) (*Article, error) {
	var a Article
	var topics sql.NullString
	if err := row.Scan(&a.ID, &a.Title, &a.Link, &a.Summary, &a.Date, &topics); err != nil {
		return nil, err
	}
	a.Topics = unmarshalTopics(topics)
	return &a, nil
}
