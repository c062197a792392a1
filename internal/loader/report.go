package loader

import (
	"time"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
)

// LoadReport summarizes one uncached load.
type LoadReport struct {
	Discovery DiscoveryResult `json:"discovery"`
	Seasons   []SeasonResult  `json:"seasons"`
	Rows      int             `json:"rows"`
	Duration  time.Duration   `json:"durationNs"`
	LoadedAt  time.Time       `json:"loadedAt"`
}

// Degraded lists the seasons that contributed no rows because of a failure.
func (r LoadReport) Degraded() []polls.Season {
	out := make([]polls.Season, 0)
	for _, s := range r.Seasons {
		if s.Degraded() {
			out = append(out, s.Season)
		}
	}
	return out
}

func (r LoadReport) clone() LoadReport {
	out := r
	out.Discovery.Seasons = copySeasons(r.Discovery.Seasons)
	out.Seasons = make([]SeasonResult, len(r.Seasons))
	for i, s := range r.Seasons {
		s.Rows = polls.Clone(s.Rows)
		out.Seasons[i] = s
	}
	return out
}
