package trends

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"video-warehouse/internal/database"
)

// stopwords the title corpus is saturated with; mixed English/Portuguese
// because the source videos are.
var stopwords = map[string]bool{
	"the": true, "in": true, "of": true, "to": true, "a": true, "is": true,
	"for": true, "on": true, "with": true, "video": true, "shorts": true,
	"tiktok": true, "youtube": true, "de": true, "em": true, "para": true,
	"com": true, "e": true, "do": true, "da": true, "que": true, "um": true,
	"uma": true, "and": true, "my": true, "pov": true, "you": true,
	"your": true, "this": true, "that": true, "from": true, "how": true,
	"like": true, "part": true, "look": true, "best": true,
}

// Unicode-aware: the corpus is pt-BR, accented letters are letters, not
// punctuation.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// ExtractKeywords tokenizes the title corpus and returns the top-limit
// tokens by frequency, excluding stopwords and tokens of length <= 3. Ties
// break by first appearance so the result is deterministic.
func ExtractKeywords(titles []string, limit int) []string {
	counts := make(map[string]int)
	order := make(map[string]int)

	joined := strings.ToLower(strings.Join(titles, " "))
	for _, token := range strings.Fields(nonWord.ReplaceAllString(joined, "")) {
		if stopwords[token] || utf8.RuneCountInString(token) <= 3 {
			continue
		}
		if _, seen := counts[token]; !seen {
			order[token] = len(order)
		}
		counts[token]++
	}

	keywords := make([]string, 0, len(counts))
	for token := range counts {
		keywords = append(keywords, token)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return order[keywords[i]] < order[keywords[j]]
	})

	if len(keywords) > limit {
		keywords = keywords[:limit]
	}
	return keywords
}

// TopKeywords mines the fact table's titles for the query keyword set.
func TopKeywords(ctx context.Context, db database.Driver, limit int) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT title FROM fact_video WHERE title IS NOT NULL")
	if err != nil {
		return nil, fmt.Errorf("reading titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title sql.NullString
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scanning title: %w", err)
		}
		if title.Valid {
			titles = append(titles, title.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ExtractKeywords(titles, limit), nil
}
