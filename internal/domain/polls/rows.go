package polls

import "strings"

// Keep reports whether a row belongs in the aggregated dataset.
func Keep(row RawPollRow) bool {
	return row.Poll == PollAPTop25 && row.SeasonType == SeasonTypeRegular
}

// Normalize keeps AP Top 25 regular-season rows and stamps each copy with season,
// overwriting whatever season the upstream row carried. Order is preserved.
func Normalize(rows []RawPollRow, season Season) []RawPollRow {
	out := make([]RawPollRow, 0, len(rows))
	for _, row := range rows {
		if !Keep(row) {
			continue
		}
		c := cloneRow(row)
		c.Season = season
		out = append(out, c)
	}
	return out
}

// Clone deep-copies rows. The result is never nil.
func Clone(rows []RawPollRow) []RawPollRow {
	out := make([]RawPollRow, len(rows))
	for i, row := range rows {
		out[i] = cloneRow(row)
	}
	return out
}

func cloneRow(row RawPollRow) RawPollRow {
	if row.Logos != nil {
		row.Logos = append([]string(nil), row.Logos...)
	}
	return row
}

// SeasonsOf returns the distinct seasons of rows in first-seen order.
func SeasonsOf(rows []RawPollRow) []Season {
	seen := make(map[Season]struct{})
	out := make([]Season, 0)
	for _, row := range rows {
		if _, ok := seen[row.Season]; ok {
			continue
		}
		seen[row.Season] = struct{}{}
		out = append(out, row.Season)
	}
	return out
}

// Filter narrows a dataset for read APIs. Zero values match everything.
type Filter struct {
	Season     Season
	Week       int
	School     string
	Conference string
}

// IsZero reports whether the filter matches every row.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Match reports whether row satisfies every set criterion.
func (f Filter) Match(row RawPollRow) bool {
	if f.Season != 0 && row.Season != f.Season {
		return false
	}
	if f.Week != 0 && row.Week != f.Week {
		return false
	}
	if f.School != "" && !strings.EqualFold(row.School, f.School) {
		return false
	}
	if f.Conference != "" && !strings.EqualFold(row.Conference, f.Conference) {
		return false
	}
	return true
}

// Apply returns the matching rows in their original order.
func (f Filter) Apply(rows []RawPollRow) []RawPollRow {
	if f.IsZero() {
		return Clone(rows)
	}
	out := make([]RawPollRow, 0, len(rows))
	for _, row := range rows {
		if f.Match(row) {
			out = append(out, cloneRow(row))
		}
	}
	return out
}
