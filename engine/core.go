package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"promptkit/core"
)

// ErrDestroyed reports use of a core after Destroy.
var ErrDestroyed = errors.New("engine: core already destroyed")

// Core decides whether to show the push-permission prompt and the in-app
// message. It is bound to exactly one store for its lifetime and mirrors the
// persisted counters in memory, so queries never touch the store.
//
// A Core does no locking. Confine it to one goroutine or serialize calls.
type Core struct {
	id        string
	store     core.KeyValueStore
	policy    core.Policy
	state     core.State
	bus       *EventBus
	logger    *slog.Logger
	closer    io.Closer
	destroyed bool
}

// Option configures a Core.
type Option func(*Core)

// WithPolicy overrides core.DefaultPolicy.
func WithPolicy(p core.Policy) Option { return func(c *Core) { c.policy = p } }

// WithLogger sets the logger; defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(c *Core) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithEventBus publishes lifecycle events to bus.
func WithEventBus(bus *EventBus) Option { return func(c *Core) { c.bus = bus } }

// WithCloser hands the core a resource to release on Destroy, typically the
// backend a Default store was opened on.
func WithCloser(cl io.Closer) Option { return func(c *Core) { c.closer = cl } }

// New binds a core to store and loads its current state.
func New(store core.KeyValueStore, opts ...Option) *Core {
	if store == nil {
		panic("engine.New requires a non-nil store")
	}
	c := &Core{
		id:     uuid.NewString(),
		store:  store,
		policy: core.DefaultPolicy(),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.With("core", c.id)
	c.state = c.load()
	c.logger.Debug("core constructed",
		"startups", c.state.Startups,
		"first_run_done", c.state.FirstRunDone,
		"push_seen", c.state.PushSeen,
		"in_app_seen", c.state.InAppSeen)
	c.publish(core.EventCoreCreated, true)
	return c
}

func (c *Core) load() core.State {
	var st core.State
	for _, k := range core.Keys() {
		v, ok := c.store.ReadInt(string(k))
		if !ok {
			continue
		}
		switch k {
		case core.KeyFirstRun:
			st.FirstRunDone = core.FlagSet(v)
		case core.KeyStartups:
			st.Startups = v
		case core.KeyPushSeen:
			st.PushSeen = core.FlagSet(v)
		case core.KeyInAppSeen:
			st.InAppSeen = core.FlagSet(v)
		}
	}
	return st
}

// ID identifies this instance in logs and events.
func (c *Core) ID() string { return c.id }

// State returns a snapshot of the mirrored counters and flags.
func (c *Core) State() core.State {
	c.mustBeActive()
	return c.state
}

// HandleFirstRun records that the app has completed its first run. Only the
// first call per installation writes; later calls change nothing.
func (c *Core) HandleFirstRun() {
	c.mustBeActive()
	if c.state.FirstRunDone {
		c.publish(core.EventFirstRun, false)
		return
	}
	c.store.WriteInt(string(core.KeyFirstRun), core.FlagValue(true))
	c.state.FirstRunDone = true
	c.publish(core.EventFirstRun, true)
}

// HandleStartup counts an app launch. Call once per host process.
func (c *Core) HandleStartup() {
	c.mustBeActive()
	next := core.SaturatingInc(c.state.Startups)
	changed := next != c.state.Startups
	if changed {
		c.store.WriteInt(string(core.KeyStartups), next)
		c.state.Startups = next
	}
	c.publish(core.EventStartup, changed)
}

// HandlePushSeen records that the push-permission prompt was shown.
func (c *Core) HandlePushSeen() { c.markSeen(core.PromptPush) }

// HandleInAppSeen records that the in-app message was shown.
func (c *Core) HandleInAppSeen() { c.markSeen(core.PromptInApp) }

func (c *Core) markSeen(p core.Prompt) {
	c.mustBeActive()
	if c.state.Seen(p) {
		c.publish(core.SeenEvent(p), false)
		return
	}
	c.store.WriteInt(string(p.SeenKey()), core.FlagValue(true))
	if p == core.PromptPush {
		c.state.PushSeen = true
	} else {
		c.state.InAppSeen = true
	}
	c.publish(core.SeenEvent(p), true)
}

// ShowPush reports whether the push-permission prompt should be shown now.
func (c *Core) ShowPush() bool { return c.show(core.PromptPush) }

// ShowInApp reports whether the in-app message should be shown now.
func (c *Core) ShowInApp() bool { return c.show(core.PromptInApp) }

func (c *Core) show(p core.Prompt) bool {
	c.mustBeActive()
	return c.policy.Decide(p, c.state)
}

// Destroy releases the core and anything it owns. The core must not be used
// afterwards; a second Destroy returns ErrDestroyed.
func (c *Core) Destroy() error {
	if c.destroyed {
		return ErrDestroyed
	}
	c.publish(core.EventCoreDestroyed, true)
	c.destroyed = true
	c.logger.Debug("core destroyed")
	if c.closer != nil {
		if err := c.closer.Close(); err != nil {
			return fmt.Errorf("close store: %w", err)
		}
	}
	return nil
}

func (c *Core) mustBeActive() {
	if c.destroyed {
		panic(ErrDestroyed)
	}
}

func (c *Core) publish(typ core.EventType, changed bool) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(context.Background(), core.NewEvent(typ, c.id, c.state, changed))
}
