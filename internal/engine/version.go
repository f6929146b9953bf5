package engine

import (
	"strconv"
	"time"
)

// NextVersion returns the version an upgrade step moves to: today's date
// as YYYYMMDD00, or original+1 when that would not be greater than original.
func NextVersion(original int64, now time.Time) int64 {
	dated, _ := strconv.ParseInt(now.Format("20060102")+"00", 10, 64)
	if dated <= original {
		return original + 1
	}
	return dated
}
