package chartsync

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Hit is one entry from the external leaderboard, already normalized.
// Rank is the 1-based position in parse order.
type Hit struct {
	Track string
	Rank  int
}

// Unicode-aware so accented track names survive normalization intact.
var punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// NormalizeTrack lowercases and strips punctuation so leaderboard entries
// and warehouse tracks compare on the same footing.
func NormalizeTrack(s string) string {
	return strings.TrimSpace(punctuation.ReplaceAllString(strings.ToLower(s), ""))
}

// ParseHits extracts the ranked track list from the leaderboard HTML. Rows
// carry "Artist - Track" in the third cell; the text is split on the first
// " - " and the track side kept. A page without the expected table is a
// parse failure, which aborts the sync.
func ParseHits(body io.Reader) ([]Hit, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parsing leaderboard html: %w", err)
	}

	table := doc.Find("table#spotifydaily")
	if table.Length() == 0 {
		return nil, fmt.Errorf("leaderboard table %q not found", "spotifydaily")
	}

	var hits []Hit
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 3 {
			return
		}
		text := strings.TrimSpace(cells.Eq(2).Text())
		if !strings.Contains(text, " - ") {
			return
		}
		parts := strings.SplitN(text, " - ", 2)
		hits = append(hits, Hit{
			Track: NormalizeTrack(parts[1]),
			Rank:  len(hits) + 1,
		})
	})
	return hits, nil
}
