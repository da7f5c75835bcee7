package chartsync

import (
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// Track is one warehouse audio-track row.
type Track struct {
	SoundID int64
	Name    string
}

// Update flags one warehouse track as a current global hit.
type Update struct {
	SoundID int64
	Rank    int
}

// similarity is a difflib sequence-match ratio over characters, the same
// measure the 0.72 threshold was tuned against.
func similarity(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

// Match compares every warehouse track against the fetched hits. A hit is
// accepted when the similarity ratio reaches the threshold or one
// normalized name contains the other; the first matching hit wins and the
// scan moves to the next track. This is deliberately not an optimal
// bipartite assignment — one hit may claim several tracks — which is fine
// at these list sizes. Tracks whose normalized name is shorter than 3
// characters are skipped to avoid junk matches.
func Match(tracks []Track, hits []Hit, threshold float64) []Update {
	var updates []Update
	for _, track := range tracks {
		name := NormalizeTrack(track.Name)
		if utf8.RuneCountInString(name) < 3 {
			continue
		}
		for _, hit := range hits {
			if similarity(hit.Track, name) >= threshold ||
				strings.Contains(name, hit.Track) || strings.Contains(hit.Track, name) {
				updates = append(updates, Update{SoundID: track.SoundID, Rank: hit.Rank})
				break
			}
		}
	}
	return updates
}
