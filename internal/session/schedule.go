package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	appLog "afisha/internal/log"
)

// Schedule starts a cron scheduler that reloads the feed on schedule
// (standard five-field syntax or descriptors such as "@every 30m"). An empty
// schedule disables scheduling and returns a nil scheduler. The caller stops the
// returned scheduler; the jobs run with ctx.
func (s *Session) Schedule(ctx context.Context, schedule string) (*cron.Cron, error) {
	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		appLog.Info("scheduled reload disabled")
		return nil, nil
	}

	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	_, err := c.AddFunc(schedule, func() {
		if ctx.Err() != nil {
			return
		}
		appLog.Debug("scheduled reload")
		if err := s.Reload(ctx); err != nil && !errors.Is(err, ErrEmptyResult) {
			appLog.Warn("scheduled reload failed", "error", err.Error())
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	c.Start()
	appLog.Info("scheduled reload enabled", "refresh", schedule)
	return c, nil
}
