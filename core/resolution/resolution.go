package resolution

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownResolution is returned when a period carries a resolution code the
// exporter does not recognize. The run must abort rather than guess an
// interval width.
var ErrUnknownResolution = errors.New("unknown resolution")

// PeriodEnd computes the end of the interval starting at start for the given
// provider resolution code. Month and year codes use calendar arithmetic, not
// fixed-length durations.
func PeriodEnd(start time.Time, code string) (time.Time, error) {
	switch code {
	case "PT1M":
		return start.Add(time.Minute), nil
	case "PT15M":
		return start.Add(15 * time.Minute), nil
	case "PT60M":
		return start.Add(60 * time.Minute), nil
	case "P1D":
		return start.AddDate(0, 0, 1), nil
	case "P7D":
		return start.AddDate(0, 0, 7), nil
	case "P1M":
		return start.AddDate(0, 1, 0), nil
	case "P1Y":
		// The system this replaces subtracts twelve months here. Day-ahead
		// documents never carry P1Y, so the behavior is reproduced unchanged.
		return start.AddDate(0, -12, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownResolution, code)
	}
}
