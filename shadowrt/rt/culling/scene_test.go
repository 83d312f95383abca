package culling

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/celshade/shadowrt/rt/core"
)

var (
	nearBox = core.Bounds{Min: mgl32.Vec3{-1, 0, -6}, Max: mgl32.Vec3{1, 2, -4}}
	farBox  = core.Bounds{Min: mgl32.Vec3{50, 0, 50}, Max: mgl32.Vec3{52, 2, 52}}
	ratios  = mgl32.Vec3{0.1, 0.25, 0.5}
)

func testScene() *Scene {
	return &Scene{
		Camera: Camera{
			View: mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}),
			Proj: mgl32.Perspective(mgl32.DegToRad(60), 1, 0.5, 100),
			Near: 0.5,
			Far:  100,
		},
		Lights: []core.Light{
			{Type: core.LightTypeDirectional, Direction: mgl32.Vec3{-0.5, -1, -0.3}},
			{Type: core.LightTypePoint, Position: mgl32.Vec3{0, 6, -5}, Range: 10},
		},
		Casters:        []core.Bounds{nearBox, farBox},
		ShadowDistance: 50,
	}
}

func boxCorners(b core.Bounds) []mgl32.Vec3 {
	var out []mgl32.Vec3
	for _, x := range []float32{b.Min.X(), b.Max.X()} {
		for _, y := range []float32{b.Min.Y(), b.Max.Y()} {
			for _, z := range []float32{b.Min.Z(), b.Max.Z()} {
				out = append(out, mgl32.Vec3{x, y, z})
			}
		}
	}
	return out
}

func TestShadowCasterBounds(t *testing.T) {
	s := testScene()

	b, ok := s.ShadowCasterBounds(0)
	require.True(t, ok)
	assert.Equal(t, nearBox.Min, b.Min)
	assert.Equal(t, farBox.Max, b.Max)

	b, ok = s.ShadowCasterBounds(1)
	require.True(t, ok)
	assert.Equal(t, nearBox, b, "far box is out of the point light's range")

	_, ok = s.ShadowCasterBounds(2)
	assert.False(t, ok)

	s.Casters = nil
	_, ok = s.ShadowCasterBounds(0)
	assert.False(t, ok)
}

func TestCascadeRange(t *testing.T) {
	s := testScene()

	tests := []struct {
		cascade, count int
		near, far      float32
	}{
		{0, 4, 0.5, 5},
		{1, 4, 5, 12.5},
		{2, 4, 12.5, 25},
		{3, 4, 25, 50},
		{1, 2, 5, 50},
		{0, 1, 0.5, 50},
	}
	for _, tt := range tests {
		near, far := s.CascadeRange(tt.cascade, tt.count, ratios)
		assert.InDelta(t, tt.near, near, 1e-5)
		assert.InDelta(t, tt.far, far, 1e-5)
	}

	s.ShadowDistance = 500
	_, far := s.CascadeRange(0, 1, ratios)
	assert.Equal(t, float32(100), far, "shadow distance is capped by the camera far plane")
}

func TestDirectionalCascades(t *testing.T) {
	s := testScene()
	const tileSize = 256
	depth := s.Camera.Far - s.Camera.Near
	inv := s.Camera.Proj.Mul4(s.Camera.View).Inv()

	var lastRadius float32
	for c := 0; c < 4; c++ {
		view, proj, split, ok := s.ComputeDirectionalShadowMatricesAndCullingPrimitives(0, c, 4, ratios, tileSize, 0.5)
		require.True(t, ok)

		radius := split.CullingSphere.W()
		assert.Greater(t, radius, lastRadius)
		lastRadius = radius
		assert.Equal(t, float32(int(radius*16)), radius*16, "radius is quantized")

		// The snapped sphere still covers the cascade slice up to a texel.
		texel := 2 * radius / tileSize
		near, far := s.CascadeRange(c, 4, ratios)
		for _, corner := range core.FrustumCorners(inv, (near-s.Camera.Near)/depth, (far-s.Camera.Near)/depth) {
			assert.LessOrEqual(t, corner.Sub(split.CullingSphere.Vec3()).Len(), radius+2*texel)
		}

		vp := proj.Mul4(view)
		clip := mgl32.TransformCoordinate(split.CullingSphere.Vec3(), vp)
		assert.InDelta(t, 0, clip.X(), 1e-3)
		assert.InDelta(t, 0, clip.Y(), 1e-3)

		// No caster is clipped by the near plane of the light.
		for _, b := range s.Casters {
			for _, corner := range boxCorners(b) {
				assert.GreaterOrEqual(t, mgl32.TransformCoordinate(corner, vp).Z(), float32(-1.001))
			}
		}
	}
}

func TestDirectionalCascadesAreDeterministic(t *testing.T) {
	s := testScene()
	v1, p1, s1, _ := s.ComputeDirectionalShadowMatricesAndCullingPrimitives(0, 1, 4, ratios, 512, 0)
	v2, p2, s2, _ := s.ComputeDirectionalShadowMatricesAndCullingPrimitives(0, 1, 4, ratios, 512, 0)
	assert.Equal(t, v1, v2)
	assert.Equal(t, p1, p2)
	assert.Equal(t, s1, s2)
}

func TestDirectionalRejectsBadInput(t *testing.T) {
	s := testScene()
	tests := []struct {
		name                  string
		light, cascade, count int
		tileSize              int
	}{
		{"point light", 1, 0, 4, 256},
		{"unknown light", 9, 0, 4, 256},
		{"cascade past count", 0, 4, 4, 256},
		{"no tile", 0, 0, 4, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, ok := s.ComputeDirectionalShadowMatricesAndCullingPrimitives(tt.light, tt.cascade, tt.count, ratios, tt.tileSize, 0)
			assert.False(t, ok)
		})
	}
}

func TestPointFaces(t *testing.T) {
	s := testScene()

	view, proj, split, ok := s.ComputePointShadowMatricesAndCullingPrimitives(1, core.CubemapFaceNegativeY, 0.1)
	require.True(t, ok, "the box below the light is in the -Y face")
	assert.Equal(t, mgl32.Vec4{0, 6, -5, 10}, split.CullingSphere)

	clip := mgl32.TransformCoordinate(mgl32.Vec3{0, 1, -5}, proj.Mul4(view))
	assert.InDelta(t, 0, clip.X(), 1e-4)
	assert.InDelta(t, 0, clip.Y(), 1e-4)

	_, _, _, ok = s.ComputePointShadowMatricesAndCullingPrimitives(1, core.CubemapFacePositiveY, 0.1)
	assert.False(t, ok, "nothing above the light")

	_, _, _, ok = s.ComputePointShadowMatricesAndCullingPrimitives(0, core.CubemapFaceNegativeY, 0.1)
	assert.False(t, ok, "directional lights have no cube faces")

	_, _, _, ok = s.ComputePointShadowMatricesAndCullingPrimitives(1, core.CubemapFace(6), 0.1)
	assert.False(t, ok)
}
