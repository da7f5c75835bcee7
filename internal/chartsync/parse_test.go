package chartsync

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leaderboardHTML = `
<html><body>
<table id="spotifydaily">
<tbody>
<tr><td>1</td><td>+1</td><td><div>The Weeknd - Blinding Lights</div></td><td>9000</td></tr>
<tr><td>2</td><td>=</td><td><div>Dua Lipa - Levitating!</div></td><td>8500</td></tr>
<tr><td>3</td><td>-1</td><td><div>no separator here</div></td><td>8000</td></tr>
<tr><td>4</td><td>+2</td><td><div>Artist - Multi - Part Title</div></td><td>7500</td></tr>
<tr><td>short row</td></tr>
</tbody>
</table>
</body></html>`

func TestParseHits(t *testing.T) {
	hits, err := ParseHits(strings.NewReader(leaderboardHTML))
	require.NoError(t, err)

	require.Len(t, hits, 3, "rows without the artist-track separator or enough cells are skipped")
	assert.Equal(t, Hit{Track: "blinding lights", Rank: 1}, hits[0])
	assert.Equal(t, Hit{Track: "levitating", Rank: 2}, hits[1])
	// Split on the first separator only; the remainder stays intact.
	assert.Equal(t, Hit{Track: "multi  part title", Rank: 3}, hits[2])
}

func TestParseHitsMissingTable(t *testing.T) {
	_, err := ParseHits(strings.NewReader("<html><body><p>maintenance</p></body></html>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spotifydaily")
}

func TestNormalizeTrack(t *testing.T) {
	assert.Equal(t, "blinding lights", NormalizeTrack("  Blinding Lights! "))
	assert.Equal(t, "dont stop", NormalizeTrack("Don't Stop"))
	assert.Equal(t, "evidências", NormalizeTrack("Evidências!"), "accented letters are not punctuation")
	assert.Equal(t, "", NormalizeTrack("???"))
}
