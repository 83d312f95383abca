package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ShadowSplitData is the culling volume for one cascade or cubemap face.
// CullingSphere holds the world-space center in xyz and the radius in w.
type ShadowSplitData struct {
	CullingSphere             mgl32.Vec4
	CascadeBlendCullingFactor float32
}

type CubemapFace int

const (
	CubemapFacePositiveX CubemapFace = iota
	CubemapFaceNegativeX
	CubemapFacePositiveY
	CubemapFaceNegativeY
	CubemapFacePositiveZ
	CubemapFaceNegativeZ
)

const CubemapFaceCount = 6

type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func (b Bounds) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b Bounds) Extents() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

func (b Bounds) Empty() bool {
	return b.Min.X() > b.Max.X() || b.Min.Y() > b.Max.Y() || b.Min.Z() > b.Max.Z()
}

// Encapsulate grows b to contain o. An empty b takes o as is.
func (b Bounds) Encapsulate(o Bounds) Bounds {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	return Bounds{
		Min: mgl32.Vec3{min(b.Min.X(), o.Min.X()), min(b.Min.Y(), o.Min.Y()), min(b.Min.Z(), o.Min.Z())},
		Max: mgl32.Vec3{max(b.Max.X(), o.Max.X()), max(b.Max.Y(), o.Max.Y()), max(b.Max.Z(), o.Max.Z())},
	}
}

// EmptyBounds is the identity for Encapsulate.
func EmptyBounds() Bounds {
	inf := float32(1e20)
	return Bounds{Min: mgl32.Vec3{inf, inf, inf}, Max: mgl32.Vec3{-inf, -inf, -inf}}
}

// CullingResults is the visibility collaborator. Implementations answer for
// lights by their index in the frame's visible light list.
type CullingResults interface {
	ShadowCasterBounds(visibleLightIndex int) (Bounds, bool)
	ComputeDirectionalShadowMatricesAndCullingPrimitives(
		visibleLightIndex, cascadeIndex, cascadeCount int,
		ratios mgl32.Vec3, tileSize int, nearPlaneOffset float32,
	) (view, proj mgl32.Mat4, split ShadowSplitData, ok bool)
	ComputePointShadowMatricesAndCullingPrimitives(
		visibleLightIndex int, face CubemapFace, nearPlaneOffset float32,
	) (view, proj mgl32.Mat4, split ShadowSplitData, ok bool)
}
