package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Point is one sample of the interest-over-time series.
type Point struct {
	Date    time.Time
	Keyword string
	Score   int
}

// Client speaks the two public endpoints behind the interest-over-time
// widget: explore hands out a per-request token, widgetdata/multiline
// serves the series. Responses carry an anti-hijacking prefix before the
// JSON payload.
type Client struct {
	HTTP    *http.Client
	BaseURL string
	Locale  string
	TZ      int

	primed bool
}

func NewClient(locale string, tz int) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		HTTP:    &http.Client{Timeout: 25 * time.Second, Jar: jar},
		BaseURL: "https://trends.google.com",
		Locale:  locale,
		TZ:      tz,
	}
}

type exploreRequest struct {
	ComparisonItem []comparisonItem `json:"comparisonItem"`
	Category       int              `json:"category"`
	Property       string           `json:"property"`
}

type comparisonItem struct {
	Keyword string `json:"keyword"`
	Geo     string `json:"geo"`
	Time    string `json:"time"`
}

type exploreResponse struct {
	Widgets []struct {
		ID      string          `json:"id"`
		Token   string          `json:"token"`
		Request json.RawMessage `json:"request"`
	} `json:"widgets"`
}

type multilineResponse struct {
	Default struct {
		TimelineData []struct {
			Time  string `json:"time"`
			Value []int  `json:"value"`
		} `json:"timelineData"`
	} `json:"default"`
}

// InterestOverTime fetches the series for up to five keywords (the
// widget's comparison limit) over the given window.
func (c *Client) InterestOverTime(ctx context.Context, keywords []string, window string) ([]Point, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	// First contact just collects session cookies.
	if !c.primed {
		if err := c.prime(ctx); err != nil {
			return nil, err
		}
		c.primed = true
	}

	items := make([]comparisonItem, len(keywords))
	for i, kw := range keywords {
		items[i] = comparisonItem{Keyword: kw, Geo: "", Time: window}
	}
	payload, err := json.Marshal(exploreRequest{ComparisonItem: items, Category: 0, Property: ""})
	if err != nil {
		return nil, err
	}

	body, err := c.get(ctx, "/trends/api/explore", url.Values{
		"hl":  {c.Locale},
		"tz":  {strconv.Itoa(c.TZ)},
		"req": {string(payload)},
	})
	if err != nil {
		return nil, fmt.Errorf("explore request: %w", err)
	}

	var explore exploreResponse
	if err := json.Unmarshal(stripPrefix(body), &explore); err != nil {
		return nil, fmt.Errorf("decoding explore response: %w", err)
	}

	var token string
	var widgetReq json.RawMessage
	for _, w := range explore.Widgets {
		if w.ID == "TIMESERIES" {
			token, widgetReq = w.Token, w.Request
			break
		}
	}
	if token == "" {
		return nil, fmt.Errorf("explore response has no timeseries widget")
	}

	body, err = c.get(ctx, "/trends/api/widgetdata/multiline", url.Values{
		"hl":    {c.Locale},
		"tz":    {strconv.Itoa(c.TZ)},
		"req":   {string(widgetReq)},
		"token": {token},
	})
	if err != nil {
		return nil, fmt.Errorf("widgetdata request: %w", err)
	}

	var series multilineResponse
	if err := json.Unmarshal(stripPrefix(body), &series); err != nil {
		return nil, fmt.Errorf("decoding widgetdata response: %w", err)
	}

	var points []Point
	for _, sample := range series.Default.TimelineData {
		secs, err := strconv.ParseInt(sample.Time, 10, 64)
		if err != nil {
			continue
		}
		date := time.Unix(secs, 0).UTC()
		for i, kw := range keywords {
			if i >= len(sample.Value) {
				break
			}
			points = append(points, Point{Date: date, Keyword: kw, Score: sample.Value[i]})
		}
	}
	return points, nil
}

func (c *Client) prime(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/", nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("priming session: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// stripPrefix drops the `)]}',` guard in front of the JSON body.
func stripPrefix(body []byte) []byte {
	if i := strings.IndexByte(string(body), '{'); i > 0 {
		return body[i:]
	}
	return body
}
