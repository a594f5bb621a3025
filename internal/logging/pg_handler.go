package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nestgirl/nestgirl-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const pgBatchSize = 50

type pgSink func(batch []models.SystemLog) error

// pgBuffer is shared between a PGHandler and the handlers derived from it by WithAttrs.
type pgBuffer struct {
	mu      sync.Mutex
	rows    []models.SystemLog
	sink    pgSink
	ticker  *time.Ticker
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// PGHandler is an slog.Handler that batches ERROR+ records into system_logs.
type PGHandler struct {
	buf   *pgBuffer
	attrs []slog.Attr
}

func NewPGHandler(db *gorm.DB) *PGHandler {
	return newPGHandler(func(batch []models.SystemLog) error {
		return db.CreateInBatches(batch, pgBatchSize).Error
	}, 5*time.Second)
}

func newPGHandler(sink pgSink, interval time.Duration) *PGHandler {
	buf := &pgBuffer{
		rows:    make([]models.SystemLog, 0, pgBatchSize),
		sink:    sink,
		ticker:  time.NewTicker(interval),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go buf.flushLoop()
	return &PGHandler{buf: buf}
}

func (b *pgBuffer) flushLoop() {
	defer close(b.stopped)
	for {
		select {
		case <-b.ticker.C:
			b.flush()
		case <-b.done:
			b.flush()
			return
		}
	}
}

func (b *pgBuffer) flush() {
	b.mu.Lock()
	if len(b.rows) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.rows
	b.rows = make([]models.SystemLog, 0, pgBatchSize)
	b.mu.Unlock()

	if err := b.sink(batch); err != nil {
		// Logged at WARN so the record does not loop back into this handler.
		slog.Warn("failed to flush system logs", "error", err, "count", len(batch))
	}
}

// Stop flushes pending records and stops the background loop. It returns once
// the final flush has been written, so the database may be closed afterwards.
func (h *PGHandler) Stop() {
	h.buf.once.Do(func() {
		h.buf.ticker.Stop()
		close(h.buf.done)
	})
	<-h.buf.stopped
}

func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	apply := func(a slog.Attr) bool {
		switch a.Key {
		case "request_id":
			entry.RequestID = a.Value.String()
		case "user_id":
			s := a.Value.String()
			entry.UserID = &s
		case "action":
			entry.Action = a.Value.String()
		case "kind":
			entry.Kind = a.Value.String()
		case "error":
			entry.Error = a.Value.String()
		default:
			extra[a.Key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	h.buf.mu.Lock()
	h.buf.rows = append(h.buf.rows, entry)
	needFlush := len(h.buf.rows) >= pgBatchSize
	h.buf.mu.Unlock()

	if needFlush {
		go h.buf.flush()
	}
	return nil
}

func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PGHandler{buf: h.buf, attrs: merged}
}

// Groups are flattened; system_logs has no nesting.
func (h *PGHandler) WithGroup(string) slog.Handler {
	return h
}
