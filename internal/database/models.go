package database

// Article is one ingested article. Rows are write-once: summary and
// topics are set at creation and never revised.
type Article struct {
	ID      int64
	Title   string
	Link    string
	Summary string
	Date    string // ingestion date, YYYY-MM-DD
	Topics  []string
}

// Impact is one persona's relevance assessment of an article.
type Impact struct {
	ID          int64
	ArticleLink string
	Persona     string
	Score       int
	Reason      string
}

// BriefingItem is an article with its persona impacts, as read by the
// dashboard.
type BriefingItem struct {
	Article Article
	Impacts []Impact
}

// TopScore returns the highest impact score attached to the item.
func (b BriefingItem) TopScore() int {
	top := 0
	for _, i := range b.Impacts {
		if i.Score > top {
			top = i.Score
		}
	}
	return top
}

// PersonaStat is one persona's critical-article count for a day.
type PersonaStat struct {
	Persona  string
	Critical int
}

// DailyStats summarizes one day's ingestion for the notifier.
type DailyStats struct {
	Date          string
	TotalArticles int
	TotalCritical int
	Personas      []PersonaStat
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalArticles  int
	TotalImpacts   int
	ArticlesToday  int
	ScoredPersonas int
	OldestDate     string
}
