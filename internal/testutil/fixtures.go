package testutil

import (
	"github.com/preston-bernstein/poll-position/internal/domain/polls"
)

// SampleRow returns a dataset-ready AP Top 25 regular-season row.
func SampleRow(season polls.Season, week int, school string, rank int) polls.RawPollRow {
	return polls.RawPollRow{
		Season:     season,
		SeasonType: polls.SeasonTypeRegular,
		Week:       week,
		Poll:       polls.PollAPTop25,
		School:     school,
		Rank:       rank,
		Conference: "SEC",
		Points:     1600 - rank*50,
	}
}

// SampleDataset returns a small two-season dataset in discovery order.
func SampleDataset() []polls.RawPollRow {
	rows := []polls.RawPollRow{
		SampleRow(2024, 15, "Oregon", 1),
		SampleRow(2024, 15, "Georgia", 2),
		SampleRow(2023, 15, "Michigan", 1),
	}
	rows[0].Conference = "Big Ten"
	rows[2].Conference = "Big Ten"
	return rows
}
