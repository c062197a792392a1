package polls

import (
	"reflect"
	"testing"
)

func TestRawPollRowJSONTags(t *testing.T) {
	type fieldCheck struct {
		name string
		tag  string
	}

	rowType := reflect.TypeOf(RawPollRow{})
	fields := []fieldCheck{
		{"Season", "season"},
		{"SeasonType", "seasonType"},
		{"Week", "week"},
		{"Poll", "poll"},
		{"School", "school"},
		{"Rank", "rank"},
		{"Conference", "conference"},
		{"FirstPlaceVotes", "firstPlaceVotes"},
		{"Points", "points"},
		{"Mascot", "mascot,omitempty"},
		{"Color", "color,omitempty"},
		{"Logos", "logos,omitempty"},
	}

	for _, fc := range fields {
		field, ok := rowType.FieldByName(fc.name)
		if !ok {
			t.Fatalf("missing field %s", fc.name)
		}
		if jsonTag := field.Tag.Get("json"); jsonTag != fc.tag {
			t.Fatalf("field %s expected json tag %s, got %s", fc.name, fc.tag, jsonTag)
		}
	}
}

func TestDefaultFallbackSeason(t *testing.T) {
	if DefaultFallbackSeason != 2024 {
		t.Fatalf("expected fallback season 2024, got %d", DefaultFallbackSeason)
	}
}
