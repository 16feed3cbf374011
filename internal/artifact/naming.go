package artifact

import (
	"fmt"
	"time"
)

// NamingPolicy decides the local filename for a download URL. A policy
// must be collision-free for the URLs of one invocation.
type NamingPolicy func(url string, index int) string

// DateRangeNaming builds the default policy:
// {prefix}_{YYYY-MM-DD}_{YYYY-MM-DD}_{NN}.csv.gz. The URL index keeps
// multi-file jobs collision-free; callers keep repeated runs apart by
// timestamping the prefix.
func DateRangeNaming(prefix string, start, end time.Time) NamingPolicy {
	datePart := start.Format("2006-01-02") + "_" + end.Format("2006-01-02")
	return func(_ string, index int) string {
		return fmt.Sprintf("%s_%s_%02d.csv.gz", prefix, datePart, index)
	}
}
