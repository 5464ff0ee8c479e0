package usecase

import (
	"context"
	"log/slog"
	"time"
)

// SessionPruner deletes expired sessions.
type SessionPruner interface {
	PruneExpiredSessions(ctx context.Context) (int64, error)
}

// RunSessionJanitor prunes expired sessions every interval until ctx is done.
func RunSessionJanitor(ctx context.Context, p SessionPruner, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := p.PruneExpiredSessions(ctx)
			if err != nil {
				if ctx.Err() == nil {
					slog.Error("session cleanup failed", "error", err)
				}
				continue
			}
			if n > 0 {
				slog.Info("expired sessions removed", "count", n)
			}
		}
	}
}
