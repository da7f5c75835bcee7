package trends

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trendsServer mimics the explore/multiline exchange, anti-hijacking
// prefixes included.
func trendsServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/trends/api/explore", func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("req"))
		assert.Equal(t, "pt-BR", r.URL.Query().Get("hl"))
		fmt.Fprint(w, `)]}'
{"widgets":[
  {"id":"RELATED_QUERIES","token":"other"},
  {"id":"TIMESERIES","token":"tok-123","request":{"time":"today 12-m"}}
]}`)
	})
	mux.HandleFunc("/trends/api/widgetdata/multiline", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok-123", r.URL.Query().Get("token"))
		fmt.Fprint(w, `)]}',
{"default":{"timelineData":[
  {"time":"1704067200","value":[42,7]},
  {"time":"1704672000","value":[55,9]},
  {"time":"not-a-number","value":[1,1]}
]}}`)
	})
	return httptest.NewServer(mux)
}

func TestInterestOverTime(t *testing.T) {
	srv := trendsServer(t)
	defer srv.Close()

	client := NewClient("pt-BR", 180)
	client.BaseURL = srv.URL

	points, err := client.InterestOverTime(context.Background(), []string{"dance", "makeup"}, "today 12-m")
	require.NoError(t, err)

	// Two parseable samples, two keywords each; the bad timestamp is dropped.
	require.Len(t, points, 4)
	assert.Equal(t, Point{
		Date:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Keyword: "dance",
		Score:   42,
	}, points[0])
	assert.Equal(t, "makeup", points[1].Keyword)
	assert.Equal(t, 9, points[3].Score)
}

func TestInterestOverTimeNoKeywords(t *testing.T) {
	client := NewClient("pt-BR", 180)
	points, err := client.InterestOverTime(context.Background(), nil, "today 12-m")
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestInterestOverTimeMissingWidget(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/trends/api/explore", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `)]}'
{"widgets":[{"id":"RELATED_QUERIES","token":"other"}]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient("pt-BR", 180)
	client.BaseURL = srv.URL

	_, err := client.InterestOverTime(context.Background(), []string{"dance"}, "today 12-m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no timeseries widget")
}

func TestInterestOverTimeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.Error(w, "quota", http.StatusTooManyRequests)
		}
	}))
	defer srv.Close()

	client := NewClient("pt-BR", 180)
	client.BaseURL = srv.URL

	_, err := client.InterestOverTime(context.Background(), []string{"dance"}, "today 12-m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestStripPrefix(t *testing.T) {
	assert.Equal(t, `{"a":1}`, string(stripPrefix([]byte(")]}',\n{\"a\":1}"))))
	assert.Equal(t, `{"a":1}`, string(stripPrefix([]byte(`{"a":1}`))))
	assert.Equal(t, `[]`, string(stripPrefix([]byte(`[]`))))
}
