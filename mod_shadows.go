package celshade

import (
	"github.com/gekko3d/celshade/shadowrt/rt/culling"
	"github.com/gekko3d/celshade/shadowrt/rt/gpu"
	"github.com/gekko3d/celshade/shadowrt/rt/shadows"
)

// ShadowFrame is the per-frame input and output of the shadow systems. The
// host fills Context and Scene before the Render stage.
type ShadowFrame struct {
	Context gpu.RenderContext
	Scene   *culling.Scene
	Shadows FrameShadows
	active  bool
}

// ShadowsModule installs a Pipeline and runs its frame protocol: the atlas
// is rendered in Render and released in PostRender.
type ShadowsModule struct {
	Asset     PipelineAsset
	ReversedZ bool
}

func (m ShadowsModule) Install(app *App) {
	log := app.Logger()
	asset := m.Asset
	if err := asset.Validate(); err != nil {
		log.Warnf("shadows module: %v, using the default asset", err)
		asset = DefaultPipelineAsset()
	}
	pipeline := NewPipeline(asset, log, shadows.WithReversedZ(m.ReversedZ))
	app.addResources(pipeline, &ShadowFrame{})
	app.UseSystem(System(beginShadowFrameSystem).InStage(Render))
	app.UseSystem(System(endShadowFrameSystem).InStage(PostRender))
}

func beginShadowFrameSystem(app *App, pipeline *Pipeline, frame *ShadowFrame) {
	frame.Shadows = FrameShadows{}
	if frame.Context == nil || frame.Scene == nil {
		app.Logger().Debugf("shadow frame %d skipped: no render context or scene", app.Frame())
		return
	}
	frame.Scene.ShadowDistance = pipeline.Asset().Shadows.MaxDistance
	frame.Shadows = pipeline.BeginFrame(frame.Context, frame.Scene, frame.Scene.Lights)
	frame.active = true
}

func endShadowFrameSystem(pipeline *Pipeline, frame *ShadowFrame) {
	if !frame.active {
		return
	}
	pipeline.EndFrame()
	frame.active = false
}
