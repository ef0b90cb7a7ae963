package promptkit

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	redisAdapter "promptkit/adapters/redis"
	sqlxAdapter "promptkit/adapters/sqlx"
	"promptkit/core"
	"promptkit/engine"
	"promptkit/metrics"
)

// ErrNilStore is returned for a CustomStore without a store.
var ErrNilStore = errors.New("promptkit: custom store is nil")

// Option configures the builder.
type Option func(*config)

type config struct {
	policy       core.Policy
	logger       *slog.Logger
	bus          *engine.EventBus
	metrics      *metrics.Metrics
	storeTimeout time.Duration
	redis        redisAdapter.Config
	sql          *sqlxAdapter.Config
}

func newConfig(opts []Option) *config {
	cfg := &config{
		policy:       core.DefaultPolicy(),
		logger:       slog.Default(),
		storeTimeout: engine.DefaultStoreTimeout,
		redis:        redisAdapter.DefaultConfig(),
	}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// WithPolicy sets the decision thresholds.
func WithPolicy(p core.Policy) Option { return func(c *config) { c.policy = p } }

// WithLogger sets the logger used by the core and its bound store.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithEventBus publishes lifecycle events to bus.
func WithEventBus(b *engine.EventBus) Option { return func(c *config) { c.bus = b } }

// WithMetrics records lifecycle events in m.
func WithMetrics(m *metrics.Metrics) Option { return func(c *config) { c.metrics = m } }

// WithStoreTimeout bounds each backend call made for a Default store.
func WithStoreTimeout(d time.Duration) Option { return func(c *config) { c.storeTimeout = d } }

// WithRedisConfig sets pool and timeout settings for redis:// descriptors.
// Address, password and database always come from the descriptor URL.
func WithRedisConfig(rc redisAdapter.Config) Option { return func(c *config) { c.redis = rc } }

// WithSQLConfig sets pool settings for sqlite:, postgres:// and mysql://
// descriptors. Zero fields keep the defaults of the resolved driver. Driver
// and DSN always come from the descriptor.
func WithSQLConfig(sc sqlxAdapter.Config) Option { return func(c *config) { c.sql = &sc } }

// New builds a core bound to store. A CustomStore never fails to bind. A
// DefaultStore whose backend cannot be opened yields a nil core and the
// error; the caller must not use the nil core.
func New(store core.StoreOption, opts ...Option) (*engine.Core, error) {
	cfg := newConfig(opts)

	coreOpts := []engine.Option{
		engine.WithPolicy(cfg.policy),
		engine.WithLogger(cfg.logger),
	}

	var kv core.KeyValueStore
	switch s := store.(type) {
	case core.CustomStore:
		if s.Store == nil {
			return nil, ErrNilStore
		}
		kv = s.Store
	case core.DefaultStore:
		backend, err := open(s.Descriptor, cfg)
		if err != nil {
			cfg.logger.Error("failed to open default store", "descriptor", redact(s.Descriptor), "error", err)
			return nil, fmt.Errorf("open default store: %w", err)
		}
		kv = engine.BindWithTimeout(backend, cfg.logger, cfg.storeTimeout)
		coreOpts = append(coreOpts, engine.WithCloser(backend))
	default:
		return nil, fmt.Errorf("promptkit: unsupported store option %T", store)
	}

	bus := cfg.bus
	if cfg.metrics != nil {
		// private bus so a shared metrics set is attached once per core
		private := engine.NewEventBus()
		cfg.metrics.Attach(private)
		if shared := cfg.bus; shared != nil {
			private.SubscribeAll(shared.Publish)
		}
		bus = private
	}
	if bus != nil {
		coreOpts = append(coreOpts, engine.WithEventBus(bus))
	}
	return engine.New(kv, coreOpts...), nil
}

// Destroy releases c. It exists so hosts can pair New with a package-level
// call; it is equivalent to c.Destroy.
func Destroy(c *engine.Core) error {
	if c == nil {
		return errors.New("promptkit: destroy of nil core")
	}
	return c.Destroy()
}
