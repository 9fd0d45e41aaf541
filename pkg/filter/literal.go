package filter

import (
	"strconv"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

// size units, 1024-based
var sizeUnits = []struct {
	suffix     string
	multiplier int64
}{
	{"TB", 1 << 40},
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// ParseSize parses an integer+unit literal like 500KB or 2GB into bytes.
func ParseSize(value string) (int64, error) {
	upper := strings.ToUpper(strings.TrimSpace(value))

	for _, unit := range sizeUnits {
		numStr, ok := strings.CutSuffix(upper, unit.suffix)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(numStr, 10, 64)
		if err != nil || n < 0 {
			return 0, errors.Errorf("expected an integer before %s", unit.suffix)
		}
		return n * unit.multiplier, nil
	}

	return 0, errors.Errorf("expected a unit of B, KB, MB, GB, or TB")
}

// ParseDate parses a YYYY-MM-DD literal. Comparisons happen at day
// granularity in local time.
func ParseDate(value string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, errors.Errorf("expected YYYY-MM-DD")
	}
	return day, nil
}

func truncateDay(t time.Time) time.Time {
	year, month, day := t.Local().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

func parseDepth(value string) (int64, error) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n < 0 {
		return 0, errors.Errorf("expected a non-negative integer")
	}
	return n, nil
}
