package loader

import (
	"fmt"

	"github.com/preston-bernstein/poll-position/internal/domain/polls"
)

// ContractViolation is returned by CheckDataset when the loaded data is not
// a sequence of filtered, season-stamped rows.
type ContractViolation struct {
	Reason string
	// Index is the offending row, or -1 when the dataset itself is invalid.
	Index int
}

func (e *ContractViolation) Error() string {
	if e.Index < 0 {
		return "dataset contract violation: " + e.Reason
	}
	return fmt.Sprintf("dataset contract violation at row %d: %s", e.Index, e.Reason)
}

// CheckDataset is the top-level check consumers run before rendering rows.
func CheckDataset(rows []polls.RawPollRow) error {
	if rows == nil {
		return &ContractViolation{Reason: "dataset is not a sequence", Index: -1}
	}
	for i, row := range rows {
		switch {
		case row.Poll != polls.PollAPTop25:
			return &ContractViolation{Reason: fmt.Sprintf("unexpected poll %q", row.Poll), Index: i}
		case row.SeasonType != polls.SeasonTypeRegular:
			return &ContractViolation{Reason: fmt.Sprintf("unexpected season type %q", row.SeasonType), Index: i}
		case row.Season <= 0:
			return &ContractViolation{Reason: "row has no season", Index: i}
		}
	}
	return nil
}
