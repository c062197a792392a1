package pollapi

import (
	"bytes"
	"encoding/json"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
	"github.com/preston-bernstein/poll-position/internal/providers"
)

type shapeDecoder struct {
	shape  providers.Shape
	decode func(body []byte) ([]polls.RawPollRow, bool, error)
}

// Order matters: the season-aware object is preferred over the legacy array.
var latestPollDecoders = []shapeDecoder{
	{shape: providers.ShapeSeasonAware, decode: decodeSeasonAware},
	{shape: providers.ShapeLegacy, decode: decodeLegacy},
}

func decodeLatestPoll(body []byte) (providers.LatestPoll, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return providers.LatestPoll{Shape: providers.ShapeUnknown}, &providers.MalformedResponseError{
			Endpoint: providers.EndpointLatestPoll,
			Reason:   "body is not valid JSON",
		}
	}

	for _, d := range latestPollDecoders {
		rows, matched, err := d.decode(trimmed)
		if !matched {
			continue
		}
		if err != nil {
			return providers.LatestPoll{Shape: providers.ShapeUnknown}, &providers.MalformedResponseError{
				Endpoint: providers.EndpointLatestPoll,
				Reason:   "invalid " + string(d.shape) + " rows",
				Err:      err,
			}
		}
		if rows == nil {
			rows = []polls.RawPollRow{}
		}
		return providers.LatestPoll{Shape: d.shape, Rows: rows}, nil
	}

	return providers.LatestPoll{Shape: providers.ShapeUnknown}, &providers.MalformedResponseError{
		Endpoint: providers.EndpointLatestPoll,
		Reason:   "unexpected data format",
	}
}

func decodeSeasons(body []byte) ([]polls.Season, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) || isNull(trimmed) {
		return nil, &providers.MalformedResponseError{Endpoint: providers.EndpointSeasons, Reason: "seasons body is not a JSON value"}
	}
	if trimmed[0] != '{' {
		return []polls.Season{}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, &providers.MalformedResponseError{Endpoint: providers.EndpointSeasons, Reason: "invalid seasons body", Err: err}
	}
	raw, ok := fields["seasons"]
	if !ok || isFalsy(raw) {
		return []polls.Season{}, nil
	}

	var payload polls.SeasonsResponse
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, &providers.MalformedResponseError{Endpoint: providers.EndpointSeasons, Reason: "invalid seasons field", Err: err}
	}
	if payload.Seasons == nil {
		payload.Seasons = []polls.Season{}
	}
	return payload.Seasons, nil
}

// decodeSeasonAware matches an object carrying both a positive season and a data array.
func decodeSeasonAware(body []byte) ([]polls.RawPollRow, bool, error) {
	if len(body) == 0 || body[0] != '{' {
		return nil, false, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, false, nil
	}
	season, hasSeason := fields["season"]
	data, hasData := fields["data"]
	if !hasSeason || !hasData || isNull(season) || isNull(data) {
		return nil, false, nil
	}
	var seasonValue polls.Season
	if err := json.Unmarshal(season, &seasonValue); err != nil {
		return nil, true, err
	}
	if seasonValue <= 0 {
		return nil, false, nil
	}
	var rows []polls.RawPollRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, true, err
	}
	return rows, true, nil
}

// decodeLegacy matches a bare array of rows.
func decodeLegacy(body []byte) ([]polls.RawPollRow, bool, error) {
	if len(body) == 0 || body[0] != '[' {
		return nil, false, nil
	}
	var rows []polls.RawPollRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, true, err
	}
	return rows, true, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// isFalsy reports null, false, 0 and "" values.
func isFalsy(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "null", "false", "0", `""`:
		return true
	}
	return false
}
