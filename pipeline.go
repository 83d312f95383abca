package celshade

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/celshade/shadowrt/rt/atlas"
	"github.com/gekko3d/celshade/shadowrt/rt/core"
	"github.com/gekko3d/celshade/shadowrt/rt/gpu"
	"github.com/gekko3d/celshade/shadowrt/rt/shaders"
	"github.com/gekko3d/celshade/shadowrt/rt/shadows"
)

// LightShadow is the reservation result of one visible light.
type LightShadow struct {
	VisibleLightIndex int
	Type              core.LightType
	Strength          float32
	FirstTile         int
	NormalBias        float32
}

// FrameShadows summarizes the shadow work of one frame. Lights lists only
// the lights that were granted atlas space. Matrices aliases the registry's
// table and is overwritten by the next frame.
type FrameShadows struct {
	Lights   []LightShadow
	Layout   atlas.Layout
	Matrices []mgl32.Mat4
}

func (f FrameShadows) Empty() bool {
	return len(f.Lights) == 0
}

// Pipeline drives the shadow protocol of a frame around the caller's scene
// rendering: BeginFrame reserves and renders the atlas, EndFrame releases it.
type Pipeline struct {
	asset   PipelineAsset
	log     Logger
	shadows *shadows.Shadows
	buf     *gpu.CommandBuffer
	// lightData is reused across frames, one entry per visible light.
	lightData []mgl32.Vec4
}

func NewPipeline(asset PipelineAsset, log Logger, opts ...shadows.Option) *Pipeline {
	if log == nil {
		log = NewNopLogger()
	}
	opts = append([]shadows.Option{shadows.WithLogger(log)}, opts...)
	log.Debugf("pipeline: dynamic batching %t, gpu instancing %t, srp batcher %t",
		asset.UseDynamicBatching, asset.UseGPUInstancing, asset.UseSRPBatcher)
	return &Pipeline{
		asset:   asset,
		log:     log,
		shadows: shadows.New(opts...),
		buf:     gpu.NewCommandBuffer("Cel-Shaded Pipeline"),
	}
}

func (p *Pipeline) Asset() PipelineAsset {
	return p.asset
}

// SetAsset swaps the configuration; it takes effect at the next BeginFrame.
func (p *Pipeline) SetAsset(asset PipelineAsset) {
	p.asset = asset
}

func (p *Pipeline) Shadows() *shadows.Shadows {
	return p.shadows
}

// BeginFrame reserves shadows for lights, whose indices are their visible
// light indices in cull, and renders the atlas into ctx.
func (p *Pipeline) BeginFrame(ctx gpu.RenderContext, cull core.CullingResults, lights []core.Light) FrameShadows {
	p.buf.SetGlobalVector(shaders.CelShadingParams, mgl32.Vec4{
		p.asset.DefaultShadowBrightness,
		p.asset.BrightnessMultiplier,
		p.asset.ShadowThreshold,
	})

	p.shadows.Setup(ctx, cull, p.asset.Shadows)

	var frame FrameShadows
	p.lightData = p.lightData[:0]
	for i, light := range lights {
		var data mgl32.Vec3
		switch light.Type {
		case core.LightTypeDirectional:
			data = p.shadows.ReserveDirectionalShadows(light, i)
		case core.LightTypePoint:
			data = p.shadows.ReservePointShadows(light, i)
		default:
			p.log.Debugf("light %d: type %s casts no shadows", i, light.Type)
		}
		p.lightData = append(p.lightData, data.Vec4(0))
		if data == (mgl32.Vec3{}) {
			continue
		}
		frame.Lights = append(frame.Lights, LightShadow{
			VisibleLightIndex: i,
			Type:              light.Type,
			Strength:          data.X(),
			FirstTile:         int(data.Y()),
			NormalBias:        data.Z(),
		})
	}
	p.buf.SetGlobalVectorArray(shaders.LightShadowData, p.lightData)
	gpu.Flush(ctx, p.buf)

	p.shadows.Render()
	frame.Layout = p.shadows.Layout()
	frame.Matrices = p.shadows.AtlasMatrices()
	if !frame.Empty() {
		p.log.Debugf("shadows: %d lights in %d tiles (split %d)", len(frame.Lights), frame.Layout.Tiles, frame.Layout.Split)
	}
	return frame
}

// EndFrame releases the frame's shadow resources.
func (p *Pipeline) EndFrame() {
	p.shadows.Cleanup()
}
