package celshade

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/celshade/shadowrt/rt/gpu"
	"github.com/gekko3d/celshade/shadowrt/rt/shadows"
)

func TestShadowsModuleRunsFrameProtocol(t *testing.T) {
	app := NewAppBuilder().
		UseModule(LoggingModule{Prefix: "test"}, ShadowsModule{Asset: DefaultPipelineAsset()}).
		Build()

	frame, ok := Resource[ShadowFrame](app)
	require.True(t, ok)
	pipeline, ok := Resource[Pipeline](app)
	require.True(t, ok)

	// Without a context the frame is skipped.
	app.Tick()
	assert.True(t, frame.Shadows.Empty())
	assert.Equal(t, shadows.StateIdle, pipeline.Shadows().State())

	rec := gpu.NewRecorder()
	frame.Context = rec
	frame.Scene = testScene(DefaultDirectionalLight())
	frame.Scene.ShadowDistance = 0
	app.Tick()

	assert.Len(t, frame.Shadows.Lights, 1)
	assert.Equal(t, float32(100), frame.Scene.ShadowDistance)
	assert.Equal(t, 1, rec.CountKind(gpu.CmdGetTemporaryRT))
	assert.Equal(t, 1, rec.CountKind(gpu.CmdReleaseTemporaryRT))
	assert.Equal(t, shadows.StateIdle, pipeline.Shadows().State())
}

func TestShadowsModuleFallsBackToDefaultAsset(t *testing.T) {
	var out bytes.Buffer
	bad := DefaultPipelineAsset()
	bad.Shadows.Directional.AtlasSize = 1000

	app := NewAppBuilder().
		UseModule(
			moduleFunc(func(app *App) { app.AddResources(NewDefaultLoggerTo("test", false, &out, &out)) }),
			ShadowsModule{Asset: bad},
		).
		Build()

	pipeline, ok := Resource[Pipeline](app)
	require.True(t, ok)
	assert.Equal(t, DefaultPipelineAsset(), pipeline.Asset())
	assert.Contains(t, out.String(), "using the default asset")
}
