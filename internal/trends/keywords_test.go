package trends

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	titles := []string{
		"Morning routine GRWM routine aesthetic",
		"routine aesthetic vlog!!!",
		"aesthetic routine hacks",
	}

	got := ExtractKeywords(titles, 10)

	assert.Equal(t, []string{"routine", "aesthetic", "morning", "grwm", "vlog", "hacks"}, got)
}

func TestExtractKeywordsExcludesStopwordsAndShortTokens(t *testing.T) {
	titles := []string{
		"the best POV of my day",
		"how to look like a pro in tiktok shorts",
	}

	for _, kw := range ExtractKeywords(titles, 50) {
		assert.False(t, stopwords[kw], "stopword %q leaked through", kw)
		assert.Greater(t, len(kw), 3, "short token %q leaked through", kw)
	}
}

func TestExtractKeywordsKeepsAccentedLetters(t *testing.T) {
	titles := []string{
		"coração brasileiro coração",
		"emoção no vlog!",
	}

	got := ExtractKeywords(titles, 10)

	assert.Equal(t, []string{"coração", "brasileiro", "emoção", "vlog"}, got)
}

func TestExtractKeywordsStripsPunctuation(t *testing.T) {
	got := ExtractKeywords([]string{"dance-challenge!!! #dancechallenge"}, 5)
	assert.Equal(t, []string{"dancechallenge"}, got)
}

func TestExtractKeywordsLimit(t *testing.T) {
	titles := []string{"alpha bravo charlie delta echoes foxtrot"}
	got := ExtractKeywords(titles, 3)
	assert.Len(t, got, 3)
}

func TestExtractKeywordsTiesBreakByFirstAppearance(t *testing.T) {
	titles := []string{"zulu yankee xray", "zulu yankee xray"}

	first := ExtractKeywords(titles, 3)
	assert.Equal(t, []string{"zulu", "yankee", "xray"}, first)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ExtractKeywords(titles, 3))
	}
}

func TestExtractKeywordsEmptyCorpus(t *testing.T) {
	assert.Empty(t, ExtractKeywords(nil, 20))
	assert.Empty(t, ExtractKeywords([]string{"", "   "}, 20))
}

func TestBatchKeywords(t *testing.T) {
	kws := []string{"a", "b", "c", "d", "e", "f", "g"}

	batches := batchKeywords(kws, 5)
	assert.Equal(t, [][]string{{"a", "b", "c", "d", "e"}, {"f", "g"}}, batches)

	assert.Len(t, batchKeywords(kws, 0), 2, "non-positive size falls back to 5")
	assert.Empty(t, batchKeywords(nil, 5))
}
