package celshade

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/celshade/shadowrt/rt/core"
	"github.com/gekko3d/celshade/shadowrt/rt/culling"
	"github.com/gekko3d/celshade/shadowrt/rt/gpu"
	"github.com/gekko3d/celshade/shadowrt/rt/shaders"
)

func testScene(lights ...LightComponent) *culling.Scene {
	return &culling.Scene{
		Camera: culling.Camera{
			View: mgl32.LookAtV(mgl32.Vec3{0, 2, 10}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0}),
			Proj: mgl32.Perspective(mgl32.DegToRad(60), 16.0/9.0, 0.3, 200),
			Near: 0.3,
			Far:  200,
		},
		Lights: VisibleLights(lights),
		Casters: []core.Bounds{
			{Min: mgl32.Vec3{-1, 0, -1}, Max: mgl32.Vec3{1, 2, 1}},
			{Min: mgl32.Vec3{3, 0, 2}, Max: mgl32.Vec3{4, 3, 3}},
		},
		ShadowDistance: 100,
	}
}

func pointLight(pos mgl32.Vec3) LightComponent {
	return LightComponent{
		Type:           core.LightTypePoint,
		Range:          8,
		Position:       pos,
		Shadows:        core.ShadowModeHard,
		ShadowStrength: 0.5,
		ShadowBias:     2,
	}
}

func TestPipelineBeginFrame(t *testing.T) {
	sun := DefaultDirectionalLight()
	off := DefaultDirectionalLight()
	off.Shadows = core.ShadowModeNone
	scene := testScene(sun, off, pointLight(mgl32.Vec3{0, 4, 0}))
	rec := gpu.NewRecorder()
	p := NewPipeline(DefaultPipelineAsset(), nil)

	frame := p.BeginFrame(rec, scene, scene.Lights)

	require.Len(t, frame.Lights, 2)
	assert.Equal(t, LightShadow{VisibleLightIndex: 0, Type: core.LightTypeDirectional, Strength: 1, FirstTile: 0, NormalBias: 0.4}, frame.Lights[0])
	assert.Equal(t, LightShadow{VisibleLightIndex: 2, Type: core.LightTypePoint, Strength: 0.5, FirstTile: 4}, frame.Lights[1])
	assert.Equal(t, 8, frame.Layout.Tiles)
	assert.Equal(t, 4, frame.Layout.Split)
	assert.Len(t, frame.Matrices, 8)

	data := rec.State.VectorArrays[shaders.LightShadowData]
	require.Len(t, data, 3)
	assert.Equal(t, mgl32.Vec4{}, data[1], "refused lights upload nothing")
	assert.Equal(t, mgl32.Vec4{0.5, 4, 0, 0}, data[2])
	assert.Equal(t, mgl32.Vec4{0.1, 1, 0.15, 0}, rec.State.Vectors[shaders.CelShadingParams])

	assert.Equal(t, 4, rec.State.Ints[shaders.CascadeCount])
	assert.NotEmpty(t, rec.Draws)
	assert.Equal(t, 1, rec.CountKind(gpu.CmdGetTemporaryRT))

	p.EndFrame()
	assert.Equal(t, 1, rec.CountKind(gpu.CmdReleaseTemporaryRT))
}

func TestPipelineFrameWithoutShadows(t *testing.T) {
	off := DefaultDirectionalLight()
	off.ShadowStrength = 0
	scene := testScene(off)
	rec := gpu.NewRecorder()
	p := NewPipeline(DefaultPipelineAsset(), nil)

	frame := p.BeginFrame(rec, scene, scene.Lights)
	p.EndFrame()

	assert.True(t, frame.Empty())
	assert.Zero(t, rec.CountKind(gpu.CmdGetTemporaryRT))
	assert.Zero(t, rec.CountKind(gpu.CmdReleaseTemporaryRT))
	assert.Empty(t, rec.Draws)
}

func TestPipelineSetAssetAppliesNextFrame(t *testing.T) {
	scene := testScene(DefaultDirectionalLight())
	rec := gpu.NewRecorder()
	p := NewPipeline(DefaultPipelineAsset(), nil)

	asset := DefaultPipelineAsset()
	asset.Shadows.Directional.CascadeCount = 2
	asset.Shadows.Directional.AtlasSize = core.TextureSize2048
	p.SetAsset(asset)

	frame := p.BeginFrame(rec, scene, scene.Lights)
	defer p.EndFrame()

	assert.Equal(t, 2, frame.Layout.Tiles)
	assert.Equal(t, 1024, frame.Layout.TileSize)
	assert.Equal(t, asset, p.Asset())
	assert.Equal(t, 2, p.Shadows().CascadeCount())
}

func TestNewPipelineLogsBatchingSwitches(t *testing.T) {
	var out bytes.Buffer
	asset := DefaultPipelineAsset()
	asset.UseGPUInstancing = false

	NewPipeline(asset, NewDefaultLoggerTo("test", true, &out, &out))

	assert.Contains(t, out.String(), "dynamic batching true, gpu instancing false, srp batcher true")
}
