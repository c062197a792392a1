package providers

import (
	"context"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
)

// Endpoint names used in logs, metrics and errors.
const (
	EndpointSeasons    = "seasons"
	EndpointLatestPoll = "latest-poll"
	EndpointSeasonPoll = "season-polls"
)

// Shape identifies which accepted body layout a latest-poll response used.
type Shape string

const (
	ShapeSeasonAware Shape = "season-aware"
	ShapeLegacy      Shape = "legacy"
	ShapeUnknown     Shape = "unknown"
)

// LatestPoll is the decoded body of a latest-poll response, before filtering.
type LatestPoll struct {
	Shape Shape
	Rows  []polls.RawPollRow
}

// SeasonSource lists the seasons the upstream API has data for.
type SeasonSource interface {
	FetchSeasons(ctx context.Context) ([]polls.Season, error)
}

// PollSource fetches the latest poll rows for a single season.
type PollSource interface {
	FetchLatestPoll(ctx context.Context, season polls.Season) (LatestPoll, error)
}

// Source combines all capabilities the loader needs.
type Source interface {
	SeasonSource
	PollSource
}

// SeasonFilesSource lists the stored poll files of a season.
type SeasonFilesSource interface {
	FetchSeasonFiles(ctx context.Context, season polls.Season) (polls.SeasonFilesResponse, error)
}
