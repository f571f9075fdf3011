package database

import "time"

// Today returns today's date as YYYY-MM-DD.
func Today() string {
	return time.Now().Format("2006-01-02")
}

// CutoffDate returns the date `days` days before today as YYYY-MM-DD.
// Articles dated strictly before it are eligible for the retention sweep.
func CutoffDate(days int) string {
	return time.Now().AddDate(0, 0, -days).Format("2006-01-02")
}

// FormatDateDisplay formats a YYYY-MM-DD date for human-readable display.
func FormatDateDisplay(date string) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return d.Format("Jan 02, 2006")
}
