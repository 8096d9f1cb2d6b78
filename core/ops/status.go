package ops

import (
	"context"
	"fmt"
	"runtime"
	"time"
)

var startTime = time.Now()

// CacheReporter reports how many leads are currently memoized.
type CacheReporter interface {
	CachedCount() int
}

// StatusOp returns bot uptime and cache occupancy.
type StatusOp struct {
	Leads CacheReporter
}

func (s *StatusOp) Name() string        { return "status" }
func (s *StatusOp) Description() string { return "Show bot status" }

func (s *StatusOp) Execute(_ context.Context, _ int64, _ string) (string, error) {
	uptime := time.Since(startTime).Truncate(time.Second)
	return fmt.Sprintf("Status: OK\nUptime: %s\nCached leads: %d\nGo: %s",
		uptime, s.Leads.CachedCount(), runtime.Version()), nil
}
