package celshade

import (
	"time"
)

// Time is the frame clock. Elapsed is measured from Install, Dt from the
// previous frame's Prelude.
type Time struct {
	Start   time.Time
	Now     time.Time
	Dt      time.Duration
	Elapsed time.Duration

	now func() time.Time
}

type TimeModule struct {
	// Clock overrides time.Now, for tests and fixed-step replays.
	Clock func() time.Time
}

func (mod TimeModule) Install(app *App) {
	clock := mod.Clock
	if clock == nil {
		clock = time.Now
	}
	start := clock()
	app.addResources(&Time{Start: start, Now: start, now: clock})
	app.UseSystem(System(timeSystem).InStage(Prelude))
}

func timeSystem(t *Time) {
	now := t.now()
	t.Dt = now.Sub(t.Now)
	t.Now = now
	t.Elapsed = now.Sub(t.Start)
}

// Seconds is Elapsed in seconds.
func (t *Time) Seconds() float64 {
	return t.Elapsed.Seconds()
}
