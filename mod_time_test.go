package celshade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeModuleAdvancesEachTick(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	app := NewAppBuilder().
		UseModule(TimeModule{Clock: func() time.Time { return now }}).
		Build()
	clock, ok := Resource[Time](app)
	require.True(t, ok)

	now = now.Add(16 * time.Millisecond)
	app.Tick()
	assert.Equal(t, 16*time.Millisecond, clock.Dt)

	now = now.Add(20 * time.Millisecond)
	app.Tick()
	assert.Equal(t, 20*time.Millisecond, clock.Dt)
	assert.Equal(t, 36*time.Millisecond, clock.Elapsed)
	assert.InDelta(t, 0.036, clock.Seconds(), 1e-9)
	assert.Equal(t, base, clock.Start)
}
