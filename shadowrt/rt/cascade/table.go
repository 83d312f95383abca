// Package cascade holds the per-cascade culling spheres and filter data that
// the shading stage uses to pick a cascade and blend between them.
package cascade

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/celshade/shadowrt/rt/core"
)

// MaxCascades bounds every Table.
const MaxCascades = 4

// diagonalReach is sqrt(2): a filter kernel reaches furthest along the texel diagonal.
const diagonalReach float32 = 1.4142136

// Table is a fixed-size set of culling spheres (w = shrunk radius squared)
// and cascade data (x = 1/r², y = filter reach). The first writer of a frame
// owns each slot; Setup of the next frame starts a fresh table.
type Table struct {
	CullingSpheres [core.CubemapFaceCount]mgl32.Vec4
	Data           [core.CubemapFaceCount]mgl32.Vec4
	size           int
}

// NewTable returns a table with size usable slots (at most 6, one per cubemap face).
func NewTable(size int) Table {
	if size > core.CubemapFaceCount {
		size = core.CubemapFaceCount
	}
	return Table{size: size}
}

func (t *Table) Len() int {
	return t.size
}

// Set stores the cascade at index derived from a world-space culling sphere
// rendered into a tile of tileSize texels. The radius shrinks by the filter
// footprint so the filter never samples outside the cascade.
func (t *Table) Set(index int, cullingSphere mgl32.Vec4, tileSize float32, filter core.FilterMode) {
	if index < 0 || index >= t.size {
		return
	}
	texelSize := 2 * cullingSphere[3] / tileSize
	filterSize := texelSize * (float32(filter) + 1)
	cullingSphere[3] -= filterSize
	cullingSphere[3] *= cullingSphere[3]
	t.CullingSpheres[index] = cullingSphere
	t.Data[index] = mgl32.Vec4{
		1 / cullingSphere[3],
		filterSize * diagonalReach,
	}
}

// Spheres returns the used slice of culling spheres, ready for upload.
func (t *Table) Spheres() []mgl32.Vec4 {
	return t.CullingSpheres[:t.size]
}

// CascadeData returns the used slice of cascade data, ready for upload.
func (t *Table) CascadeData() []mgl32.Vec4 {
	return t.Data[:t.size]
}

// BlendCullingFactor controls how far cascade-blend culling relaxes near the
// fade boundary.
func BlendCullingFactor(cascadeFade float32) float32 {
	return max(0, 0.8-cascadeFade)
}

// DistanceFade packs the fade parameters the shading stage uses:
// (1/maxDistance, 1/distanceFade, 1/(1-f²)) with f = 1-cascadeFade.
func DistanceFade(maxDistance, distanceFade, cascadeFade float32) mgl32.Vec4 {
	f := 1 - cascadeFade
	return mgl32.Vec4{
		1 / maxDistance,
		1 / distanceFade,
		1 / (1 - f*f),
	}
}
