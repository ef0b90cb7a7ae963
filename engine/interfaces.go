package engine

import (
	"context"
	"log/slog"
	"time"

	"promptkit/core"
)

// DefaultStoreTimeout bounds each call a bound Storage makes to its backend.
const DefaultStoreTimeout = 3 * time.Second

// boundStorage presents a fallible Storage as the infallible KeyValueStore
// the engine expects. Errors have no path back to the caller, so they are
// logged; a failed read is reported as an unwritten key.
type boundStorage struct {
	storage core.Storage
	logger  *slog.Logger
	timeout time.Duration
}

// Bind wraps storage so a core can be bound to it. A nil logger uses slog.Default.
func Bind(storage core.Storage, logger *slog.Logger) core.KeyValueStore {
	return BindWithTimeout(storage, logger, DefaultStoreTimeout)
}

// BindWithTimeout is Bind with an explicit per-call timeout. A non-positive
// timeout disables the deadline.
func BindWithTimeout(storage core.Storage, logger *slog.Logger, timeout time.Duration) core.KeyValueStore {
	if storage == nil {
		panic("Bind requires non-nil storage")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &boundStorage{storage: storage, logger: logger, timeout: timeout}
}

func (b *boundStorage) ctx() (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.Background(), func() {}
	}
	return context.WithTimeout(context.Background(), b.timeout)
}

func (b *boundStorage) ReadInt(key string) (uint64, bool) {
	ctx, cancel := b.ctx()
	defer cancel()
	v, ok, err := b.storage.ReadInt(ctx, key)
	if err != nil {
		b.logger.Warn("store read failed, treating key as unwritten", "key", key, "error", err)
		return 0, false
	}
	return v, ok
}

func (b *boundStorage) WriteInt(key string, value uint64) {
	ctx, cancel := b.ctx()
	defer cancel()
	if err := b.storage.WriteInt(ctx, key, value); err != nil {
		b.logger.Error("store write failed", "key", key, "value", value, "error", err)
	}
}
