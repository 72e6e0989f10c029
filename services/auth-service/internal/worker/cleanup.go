package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TokenSweeper removes expired verification codes.
type TokenSweeper interface {
	SweepExpiredTokens(ctx context.Context) (int64, error)
}

// RunTokenCleanup sweeps on every tick until ctx is cancelled.
func RunTokenCleanup(ctx context.Context, interval time.Duration, sweeper TokenSweeper, logger *zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Debug().Dur("tick_every", interval).Msg("token cleanup attached")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sweeper.SweepExpiredTokens(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("failed to clean up expired verification tokens")
				continue
			}
			if n > 0 {
				logger.Debug().Int64("cleared", n).Msg("cleaned up expired verification tokens")
			}
		}
	}
}
