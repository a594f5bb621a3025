package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/nestgirl/nestgirl-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu   sync.Mutex
	rows []models.SystemLog
}

func (s *recordingSink) write(batch []models.SystemLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, batch...)
	return nil
}

func (s *recordingSink) snapshot() []models.SystemLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.SystemLog(nil), s.rows...)
}

func TestPGHandlerStoresErrorsOnly(t *testing.T) {
	sink := &recordingSink{}
	h := newPGHandler(sink.write, time.Hour)
	logger := slog.New(h).With("user_id", "u-1")

	logger.Info("ignored")
	logger.Error("profile save failed", "action", "period_started", "kind", "waiting", "error", "timeout", "attempts", 3)
	h.Stop()

	rows := sink.snapshot()
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "profile save failed", row.Message)
	assert.Equal(t, "ERROR", row.Level)
	require.NotNil(t, row.UserID)
	assert.Equal(t, "u-1", *row.UserID)
	assert.Equal(t, "period_started", row.Action)
	assert.Equal(t, "waiting", row.Kind)
	assert.Equal(t, "timeout", row.Error)
	assert.JSONEq(t, `{"attempts":3}`, string(row.Extra))
}

func TestPGHandlerStopIsSafeTwice(t *testing.T) {
	h := newPGHandler((&recordingSink{}).write, time.Hour)
	h.Stop()
	assert.NotPanics(t, h.Stop)
}

func TestPGHandlerStopWaitsForFinalFlush(t *testing.T) {
	sink := &recordingSink{}
	slow := func(batch []models.SystemLog) error {
		time.Sleep(50 * time.Millisecond)
		return sink.write(batch)
	}
	h := newPGHandler(slow, time.Hour)

	slog.New(h).Error("shutdown in progress")
	h.Stop()

	assert.Len(t, sink.snapshot(), 1)
}

func TestRunSweepsContinuesPastFailures(t *testing.T) {
	now := time.Date(2024, 3, 15, 3, 0, 0, 0, time.UTC)
	var seen []time.Time
	sweeps := []Sweep{
		{Table: "system_logs", Purge: func(at time.Time) (int64, error) {
			seen = append(seen, at)
			return 0, errors.New("relation does not exist")
		}},
		{Table: "refresh_tokens", Purge: func(at time.Time) (int64, error) {
			seen = append(seen, at)
			return 4, nil
		}},
	}

	runSweeps(now, sweeps)
	assert.Equal(t, []time.Time{now, now}, seen)
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandlerDeliversToAllHandlers(t *testing.T) {
	var buf bytes.Buffer
	text := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	failing := failingHandler{slog.NewTextHandler(&bytes.Buffer{}, nil)}

	m := NewMultiHandler(failing, text)
	err := m.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0))

	assert.EqualError(t, err, "sink down")
	assert.Contains(t, buf.String(), "hello")
	assert.True(t, m.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, m.Enabled(context.Background(), slog.LevelDebug))
}
