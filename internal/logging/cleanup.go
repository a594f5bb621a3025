package logging

import (
	"log/slog"
	"time"

	"github.com/nestgirl/nestgirl-backend/internal/models"
	"gorm.io/gorm"
)

const sweepInterval = 24 * time.Hour

// Sweep deletes rows of one table that fell out of retention at now.
type Sweep struct {
	Table string
	Purge func(now time.Time) (int64, error)
}

// SystemLogSweep drops system_logs older than retention.
func SystemLogSweep(db *gorm.DB, retention time.Duration) Sweep {
	return Sweep{Table: "system_logs", Purge: func(now time.Time) (int64, error) {
		res := db.Where("timestamp < ?", now.Add(-retention)).Delete(&models.SystemLog{})
		return res.RowsAffected, res.Error
	}}
}

// RefreshTokenSweep drops refresh tokens that expired or were revoked more than
// grace ago. Revoked rows are kept for grace so reuse can still be detected.
func RefreshTokenSweep(db *gorm.DB, grace time.Duration) Sweep {
	return Sweep{Table: "refresh_tokens", Purge: func(now time.Time) (int64, error) {
		cutoff := now.Add(-grace)
		res := db.Where("expires_at < ? OR revoked_at < ?", cutoff, cutoff).Delete(&models.RefreshToken{})
		return res.RowsAffected, res.Error
	}}
}

// StartCleanup runs sweeps once at startup and then daily until done is closed.
func StartCleanup(done <-chan struct{}, sweeps ...Sweep) {
	go func() {
		runSweeps(time.Now(), sweeps)
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				runSweeps(now, sweeps)
			case <-done:
				return
			}
		}
	}()
}

func runSweeps(now time.Time, sweeps []Sweep) {
	for _, s := range sweeps {
		n, err := s.Purge(now)
		if err != nil {
			// WARN keeps a failing system_logs sweep out of system_logs.
			slog.Warn("cleanup failed", "table", s.Table, "error", err.Error())
			continue
		}
		if n > 0 {
			slog.Info("cleanup completed", "table", s.Table, "deleted", n)
		}
	}
}
