// Package culling is a CPU reference for the visibility collaborator: it
// knows the camera, the visible lights and the caster boxes of a frame and
// derives cascade and cubemap-face shadow volumes from them.
package culling

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/celshade/shadowrt/rt/core"
)

// minPointNearPlane keeps cube-face projections finite when a light asks
// for a zero near plane.
const minPointNearPlane = 0.01

type Camera struct {
	View mgl32.Mat4
	Proj mgl32.Mat4
	Near float32
	Far  float32
}

// Scene is one frame's visibility: lights are addressed by their index in
// Lights, which is the visible light index handed to the shadow registry.
type Scene struct {
	Camera  Camera
	Lights  []core.Light
	Casters []core.Bounds
	// ShadowDistance caps how far from the camera cascades reach.
	ShadowDistance float32
}

func (s *Scene) light(index int) (core.Light, bool) {
	if index < 0 || index >= len(s.Lights) {
		return core.Light{}, false
	}
	return s.Lights[index], true
}

// ShadowCasterBounds returns the union of casters that can throw a shadow
// from the light. Directional lights see every caster; point lights only
// those inside their range.
func (s *Scene) ShadowCasterBounds(visibleLightIndex int) (core.Bounds, bool) {
	light, ok := s.light(visibleLightIndex)
	if !ok {
		return core.Bounds{}, false
	}
	union := core.EmptyBounds()
	for _, c := range s.Casters {
		if c.Empty() {
			continue
		}
		if light.Type == core.LightTypePoint && !boundsTouchSphere(c, light.Position, light.Range) {
			continue
		}
		union = union.Encapsulate(c)
	}
	if union.Empty() {
		return core.Bounds{}, false
	}
	return union, true
}

func boundsTouchSphere(b core.Bounds, center mgl32.Vec3, radius float32) bool {
	var d2 float32
	for axis := 0; axis < 3; axis++ {
		v := center[axis]
		if v < b.Min[axis] {
			d := b.Min[axis] - v
			d2 += d * d
		} else if v > b.Max[axis] {
			d := v - b.Max[axis]
			d2 += d * d
		}
	}
	return d2 <= radius*radius
}

// CascadeRange returns the view distances [near, far] covered by cascade
// cascadeIndex. Every cascade but the last ends at its ratio of the shadow
// distance; the last ends at the shadow distance itself.
func (s *Scene) CascadeRange(cascadeIndex, cascadeCount int, ratios mgl32.Vec3) (float32, float32) {
	distance := s.shadowDistance()
	end := func(i int) float32 {
		if i >= cascadeCount-1 || i >= 3 {
			return distance
		}
		return ratios[i] * distance
	}
	near := s.Camera.Near
	if cascadeIndex > 0 {
		near = end(cascadeIndex - 1)
	}
	return near, end(cascadeIndex)
}

func (s *Scene) shadowDistance() float32 {
	if s.ShadowDistance <= 0 || s.ShadowDistance > s.Camera.Far {
		return s.Camera.Far
	}
	return s.ShadowDistance
}

func (s *Scene) ComputeDirectionalShadowMatricesAndCullingPrimitives(
	visibleLightIndex, cascadeIndex, cascadeCount int,
	ratios mgl32.Vec3, tileSize int, nearPlaneOffset float32,
) (view, proj mgl32.Mat4, split core.ShadowSplitData, ok bool) {
	light, found := s.light(visibleLightIndex)
	if !found || light.Type != core.LightTypeDirectional {
		return view, proj, split, false
	}
	if cascadeIndex < 0 || cascadeIndex >= cascadeCount || tileSize <= 0 {
		return view, proj, split, false
	}
	depth := s.Camera.Far - s.Camera.Near
	if depth <= 0 {
		return view, proj, split, false
	}

	sliceNear, sliceFar := s.CascadeRange(cascadeIndex, cascadeCount, ratios)
	inv := s.Camera.Proj.Mul4(s.Camera.View).Inv()
	corners := core.FrustumCorners(inv, (sliceNear-s.Camera.Near)/depth, (sliceFar-s.Camera.Near)/depth)

	var center mgl32.Vec3
	for _, c := range corners {
		center = center.Add(c)
	}
	center = center.Mul(1.0 / 8)
	var radius float32
	for _, c := range corners {
		radius = max(radius, c.Sub(center).Len())
	}
	// Quantize the radius so the projection scale is stable while the camera turns.
	radius = float32(math.Ceil(float64(radius)*16) / 16)

	dir := light.Direction.Normalize()
	up := upFor(dir)

	// Snap the sphere center to whole texels in light space so the shadow
	// does not shimmer while the camera moves.
	rot := mgl32.LookAtV(mgl32.Vec3{}, dir, up)
	texel := 2 * radius / float32(tileSize)
	ls := mgl32.TransformCoordinate(center, rot)
	ls[0] = float32(math.Floor(float64(ls[0]/texel))) * texel
	ls[1] = float32(math.Floor(float64(ls[1]/texel))) * texel
	center = mgl32.TransformCoordinate(ls, rot.Inv())

	pull := radius
	if casters, hasCasters := s.ShadowCasterBounds(visibleLightIndex); hasCasters {
		pull = max(pull, reachAgainst(casters, center, dir))
	}
	pull += nearPlaneOffset

	eye := center.Sub(dir.Mul(pull))
	view = mgl32.LookAtV(eye, center, up)
	proj = mgl32.Ortho(-radius, radius, -radius, radius, 0, pull+radius)
	split.CullingSphere = center.Vec4(radius)
	return view, proj, split, true
}

// reachAgainst is how far the box extends from center against dir.
func reachAgainst(b core.Bounds, center, dir mgl32.Vec3) float32 {
	var reach float32
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{b.Min.X(), b.Min.Y(), b.Min.Z()}
		if i&1 != 0 {
			corner[0] = b.Max.X()
		}
		if i&2 != 0 {
			corner[1] = b.Max.Y()
		}
		if i&4 != 0 {
			corner[2] = b.Max.Z()
		}
		reach = max(reach, -corner.Sub(center).Dot(dir))
	}
	return reach
}

func upFor(dir mgl32.Vec3) mgl32.Vec3 {
	if math.Abs(float64(dir.Y())) > 0.99 {
		return mgl32.Vec3{0, 0, 1}
	}
	return mgl32.Vec3{0, 1, 0}
}

var cubeFaces = [core.CubemapFaceCount]struct {
	forward, up mgl32.Vec3
}{
	core.CubemapFacePositiveX: {mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	core.CubemapFaceNegativeX: {mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, -1, 0}},
	core.CubemapFacePositiveY: {mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, 1}},
	core.CubemapFaceNegativeY: {mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, -1}},
	core.CubemapFacePositiveZ: {mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, -1, 0}},
	core.CubemapFaceNegativeZ: {mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, -1, 0}},
}

// ComputePointShadowMatricesAndCullingPrimitives builds the 90 degree view
// of one cube face. It reports false when no caster lies in that face.
func (s *Scene) ComputePointShadowMatricesAndCullingPrimitives(
	visibleLightIndex int, face core.CubemapFace, nearPlaneOffset float32,
) (view, proj mgl32.Mat4, split core.ShadowSplitData, ok bool) {
	light, found := s.light(visibleLightIndex)
	if !found || light.Type != core.LightTypePoint || light.Range <= 0 {
		return view, proj, split, false
	}
	if face < 0 || int(face) >= core.CubemapFaceCount {
		return view, proj, split, false
	}

	f := cubeFaces[face]
	near := max(nearPlaneOffset, minPointNearPlane)
	view = mgl32.LookAtV(light.Position, light.Position.Add(f.forward), f.up)
	proj = mgl32.Perspective(mgl32.DegToRad(90), 1, near, light.Range)
	split.CullingSphere = light.Position.Vec4(light.Range)

	frustum := core.ExtractFrustum(proj.Mul4(view))
	for _, c := range s.Casters {
		if !c.Empty() && frustum.ContainsBounds(c) {
			return view, proj, split, true
		}
	}
	return view, proj, split, false
}
