package polls

// Season is a competition year.
type Season int

const (
	// PollAPTop25 is the only poll kept in the aggregated dataset.
	PollAPTop25 = "AP Top 25"
	// SeasonTypeRegular is the only season type kept in the aggregated dataset.
	SeasonTypeRegular = "regular"
	// DefaultFallbackSeason is used when season discovery fails.
	DefaultFallbackSeason Season = 2024
)

// RawPollRow is one team's ranking within one poll, week and season.
type RawPollRow struct {
	Season          Season   `json:"season" yaml:"season"`
	SeasonType      string   `json:"seasonType" yaml:"seasonType"`
	Week            int      `json:"week" yaml:"week"`
	Poll            string   `json:"poll" yaml:"poll"`
	School          string   `json:"school" yaml:"school"`
	Rank            int      `json:"rank" yaml:"rank"`
	Conference      string   `json:"conference" yaml:"conference"`
	FirstPlaceVotes int      `json:"firstPlaceVotes" yaml:"firstPlaceVotes"`
	Points          int      `json:"points" yaml:"points"`
	Mascot          string   `json:"mascot,omitempty" yaml:"mascot,omitempty"`
	Color           string   `json:"color,omitempty" yaml:"color,omitempty"`
	Logos           []string `json:"logos,omitempty" yaml:"logos,omitempty"`
}

// SeasonsResponse is the payload of GET /api/seasons.
type SeasonsResponse struct {
	Seasons []Season `json:"seasons"`
}

// SeasonPollResponse is the season-aware payload of GET /api/latest-poll.
type SeasonPollResponse struct {
	Season Season       `json:"season"`
	Data   []RawPollRow `json:"data"`
}

// SeasonFile describes one stored poll file for a season.
type SeasonFile struct {
	Key          string `json:"key"`
	LastModified string `json:"lastModified"`
	Size         int64  `json:"size"`
}

// SeasonFilesResponse is the payload of GET /api/polls/{season}.
type SeasonFilesResponse struct {
	Season Season       `json:"season"`
	Files  []SeasonFile `json:"files"`
}
