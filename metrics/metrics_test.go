package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mem "promptkit/adapters/memory"
	"promptkit/engine"
)

func TestMetricsFollowCoreLifecycle(t *testing.T) {
	m := New(prometheus.NewRegistry())
	bus := engine.NewEventBus()
	m.Attach(bus)

	c := engine.New(engine.Bind(mem.New(), nil), engine.WithEventBus(bus))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LiveCores))

	c.HandleStartup()
	c.HandleStartup()
	c.HandleFirstRun()
	c.HandleFirstRun()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.LifecycleEvents.WithLabelValues("startup", "true")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LifecycleEvents.WithLabelValues("first_run", "true")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LifecycleEvents.WithLabelValues("first_run", "false")))

	require.NoError(t, c.Destroy())
	assert.Equal(t, float64(0), testutil.ToFloat64(m.LiveCores))
}
