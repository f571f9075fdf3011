package database

import (
	"database/sql"
	"sort"
)

// InsertImpact inserts one (article, persona) assessment. Returns the ID
// on success, 0 if the pair is already scored. Each call is its own
// committed write, so a crash mid persona loop loses at most the row in
// flight.
func (db *DB) InsertImpact(link, persona string, score int, reason string) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO article_impacts (article_link, persona, impact_score, impact_reason)
		VALUES (?, ?, ?, ?)`,
		link, persona, score, reason,
	)
	if err != nil {
		// Duplicate (article_link, persona) constraint
		return 0, nil //nolint: nilerr
	}
	return result.LastInsertId()
}

// HasImpact reports whether the (article, persona) pair is already scored.
func (db *DB) HasImpact(link, persona string) (bool, error) {
	var one int
	err := db.conn.QueryRow(
		"SELECT 1 FROM article_impacts WHERE article_link = ? AND persona = ?", link, persona,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MissingPersonas returns, in given order, the personas that have no
// impact row for the link yet.
func (db *DB) MissingPersonas(link string, names []string) ([]string, error) {
	rows, err := db.conn.Query(
		"SELECT persona FROM article_impacts WHERE article_link = ?", link,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scored := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		scored[p] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []string
	for _, name := range names {
		if _, ok := scored[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// GetImpacts returns all impacts for an article, highest score first.
func (db *DB) GetImpacts(link string) ([]Impact, error) {
	rows, err := db.conn.Query(
		`SELECT id, article_link, persona, impact_score, impact_reason
		FROM article_impacts WHERE article_link = ? ORDER BY impact_score DESC, persona`, link,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var impacts []Impact
	for rows.Next() {
		var i Impact
		var reason sql.NullString
		if err := rows.Scan(&i.ID, &i.ArticleLink, &i.Persona, &i.Score, &reason); err != nil {
			return nil, err
		}
		i.Reason = reason.String
		impacts = append(impacts, i)
	}
	return impacts, rows.Err()
}

// GetBriefing returns the given date's articles joined with their
// persona impacts, ordered by top impact score descending.
func (db *DB) GetBriefing(date string) ([]BriefingItem, error) {
	articles, err := db.GetArticlesForDate(date)
	if err != nil {
		return nil, err
	}
	return db.attachImpacts(articles)
}

// GetRecentBriefing returns the most recent articles with their impacts,
// the dashboard's backfill view when today has no rows.
func (db *DB) GetRecentBriefing(limit int) ([]BriefingItem, error) {
	articles, err := db.RecentArticles(limit)
	if err != nil {
		return nil, err
	}
	return db.attachImpacts(articles)
}

func (db *DB) attachImpacts(articles []Article) ([]BriefingItem, error) {
	items := make([]BriefingItem, 0, len(articles))
	for _, a := range articles {
		impacts, err := db.GetImpacts(a.Link)
		if err != nil {
			return nil, err
		}
		items = append(items, BriefingItem{Article: a, Impacts: impacts})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TopScore() > items[j].TopScore()
	})
	return items, nil
}

// criticalScore is the threshold at which an impact counts as critical
// for notification purposes.
const criticalScore = 7

// GetDailyStats returns the day's article total and per-persona critical
// counts, in the given persona order.
func (db *DB) GetDailyStats(date string, personas []string) (*DailyStats, error) {
	stats := &DailyStats{Date: date}

	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM articles WHERE date = ?", date,
	).Scan(&stats.TotalArticles)
	if err != nil {
		return nil, err
	}

	for _, persona := range personas {
		var critical int
		err := db.conn.QueryRow(
			`SELECT COUNT(*) FROM article_impacts i
			JOIN articles a ON i.article_link = a.link
			WHERE i.persona = ? AND a.date = ? AND i.impact_score >= ?`,
			persona, date, criticalScore,
		).Scan(&critical)
		if err != nil {
			return nil, err
		}
		stats.Personas = append(stats.Personas, PersonaStat{Persona: persona, Critical: critical})
		stats.TotalCritical += critical
	}

	return stats, nil
}

// GetStats returns aggregate statistics for the status command.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	if err := db.conn.QueryRow("SELECT COUNT(*) FROM articles").Scan(&stats.TotalArticles); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM article_impacts").Scan(&stats.TotalImpacts); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM articles WHERE date = ?", Today(),
	).Scan(&stats.ArticlesToday); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow(
		"SELECT COUNT(DISTINCT persona) FROM article_impacts",
	).Scan(&stats.ScoredPersonas); err != nil {
		return nil, err
	}

	var oldest sql.NullString
	if err := db.conn.QueryRow("SELECT MIN(date) FROM articles").Scan(&oldest); err != nil {
		return nil, err
	}
	stats.OldestDate = oldest.String

	return stats, nil
}
