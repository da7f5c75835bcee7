package etl

import (
	"strings"
	"time"
)

// The upstream extract writes dates year-day-month, so that layout is tried
// first; stragglers come in a handful of conventional layouts.
var dateLayouts = []string{
	"2006-02-01", // year-day-month
	"2006-01-02",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"2006/01/02",
}

// NormalizeDate parses a raw date-like string and repairs inverted
// day/month fields. The dataset ends in August, so a parsed month past 8
// means the day and month were transposed and are swapped back; if the swap
// is not a valid calendar date the parsed value is kept as is. Returns
// false when the value is unrecoverable.
func NormalizeDate(raw string) (time.Time, bool) {
	val := strings.TrimSpace(raw)
	if i := strings.IndexByte(val, ' '); i >= 0 {
		val = val[:i]
	}
	if val == "" || val == "nan" || val == "NaT" {
		return time.Time{}, false
	}

	var parsed time.Time
	ok := false
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, val); err == nil {
			parsed, ok = d, true
			break
		}
	}
	if !ok {
		return time.Time{}, false
	}

	if parsed.Month() > 8 {
		if swapped, valid := swapDayMonth(parsed); valid {
			return swapped, true
		}
	}
	return parsed, true
}

func swapDayMonth(d time.Time) (time.Time, bool) {
	month, day := d.Day(), int(d.Month())
	if month < 1 || month > 12 {
		return d, false
	}
	swapped := time.Date(d.Year(), time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (e.g. Feb 31), which would silently
	// change the date instead of rejecting the swap.
	if int(swapped.Month()) != month || swapped.Day() != day {
		return d, false
	}
	return swapped, true
}

// NormalizeDates repairs the publish date on every record, deriving the
// year-month bucket, and drops rows whose date is unrecoverable. Returns
// the surviving records and the dropped count.
func NormalizeDates(records []Record, dateColumn string) ([]Record, int) {
	kept := records[:0]
	dropped := 0
	for _, rec := range records {
		raw, _ := rec[dateColumn].(string)
		d, ok := NormalizeDate(raw)
		if !ok {
			dropped++
			continue
		}
		rec[dateColumn] = d
		rec["year_month"] = d.Format("2006-01")
		kept = append(kept, rec)
	}
	return kept, dropped
}
