package fixture

import (
	"context"
	"net/http"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
	"github.com/preston-bernstein/poll-position/internal/providers"
)

// Source serves a static set of polls useful for local runs and bootstrapping.
// Season 2024 answers in the season-aware shape, 2023 in the legacy shape.
type Source struct {
	polls map[polls.Season]providers.LatestPoll
	order []polls.Season
}

// New creates a fixture source.
func New() *Source {
	return &Source{
		order: []polls.Season{2024, 2023},
		polls: map[polls.Season]providers.LatestPoll{
			2024: {Shape: providers.ShapeSeasonAware, Rows: rows2024()},
			2023: {Shape: providers.ShapeLegacy, Rows: rows2023()},
		},
	}
}

// FetchSeasons returns the fixture seasons, newest first.
func (s *Source) FetchSeasons(ctx context.Context) ([]polls.Season, error) {
	_ = ctx
	out := make([]polls.Season, len(s.order))
	copy(out, s.order)
	return out, nil
}

// FetchLatestPoll returns the unfiltered fixture rows for a season.
func (s *Source) FetchLatestPoll(ctx context.Context, season polls.Season) (providers.LatestPoll, error) {
	_ = ctx
	poll, ok := s.polls[season]
	if !ok {
		return providers.LatestPoll{Shape: providers.ShapeUnknown}, &providers.HTTPStatusError{
			Endpoint:   providers.EndpointLatestPoll,
			StatusCode: http.StatusNotFound,
			Body:       `{"error":"No poll data found"}`,
		}
	}
	return providers.LatestPoll{Shape: poll.Shape, Rows: polls.Clone(poll.Rows)}, nil
}

func rows2024() []polls.RawPollRow {
	return []polls.RawPollRow{
		{Season: 2024, SeasonType: "regular", Week: 15, Poll: polls.PollAPTop25, School: "Oregon", Rank: 1, Conference: "Big Ten", FirstPlaceVotes: 62, Points: 1550, Mascot: "Ducks", Color: "#154733"},
		{Season: 2024, SeasonType: "regular", Week: 15, Poll: polls.PollAPTop25, School: "Georgia", Rank: 2, Conference: "SEC", Points: 1464, Mascot: "Bulldogs", Color: "#ba0c2f"},
		{Season: 2024, SeasonType: "regular", Week: 15, Poll: polls.PollAPTop25, School: "Texas", Rank: 3, Conference: "SEC", Points: 1406, Mascot: "Longhorns", Color: "#bf5700"},
		{Season: 2024, SeasonType: "regular", Week: 15, Poll: "Coaches Poll", School: "Oregon", Rank: 1, Conference: "Big Ten", FirstPlaceVotes: 66, Points: 1650},
		{Season: 2024, SeasonType: "postseason", Week: 1, Poll: polls.PollAPTop25, School: "Ohio State", Rank: 1, Conference: "Big Ten", FirstPlaceVotes: 61, Points: 1525},
	}
}

// Legacy rows carry no season field upstream.
func rows2023() []polls.RawPollRow {
	return []polls.RawPollRow{
		{SeasonType: "regular", Week: 15, Poll: polls.PollAPTop25, School: "Michigan", Rank: 1, Conference: "Big Ten", FirstPlaceVotes: 47, Points: 1535, Mascot: "Wolverines", Color: "#00274c"},
		{SeasonType: "regular", Week: 15, Poll: polls.PollAPTop25, School: "Washington", Rank: 2, Conference: "Pac-12", FirstPlaceVotes: 14, Points: 1487, Mascot: "Huskies", Color: "#4b2e83"},
		{SeasonType: "regular", Week: 15, Poll: "AFCA Division II Coaches Poll", School: "Harding", Rank: 1, Conference: "GAC", Points: 800},
	}
}
