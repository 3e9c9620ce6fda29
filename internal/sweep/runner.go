package sweep

import (
	"context"
	"time"

	"github.com/ignatzorin/timebank-backend/internal/goroutine"
	"github.com/ignatzorin/timebank-backend/internal/logger"
)

// Start запускает периодический обход в отдельной горутине до отмены ctx.
// Используется, когда нет River (хранилище в памяти).
func Start(ctx context.Context, s *Sweeper, interval time.Duration) {
	if interval <= 0 {
		return
	}
	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if _, err := s.Run(ctx, now); err != nil {
					logger.Log.WithError(err).Error("expiry sweep failed")
				}
			}
		}
	})
}
