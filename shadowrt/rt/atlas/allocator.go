// Package atlas lays shadow tiles out in a square grid on a single atlas
// texture and remaps light clip space into atlas UV space.
package atlas

import (
	"github.com/go-gl/mathgl/mgl32"
)

// MaxSplit is the largest grid dimension; the atlas holds MaxSplit*MaxSplit tiles.
const MaxSplit = 4

// Split picks the grid dimension for the given tile count. Counts above
// MaxSplit*MaxSplit still get MaxSplit and the extra tiles overlap.
func Split(tiles int) int {
	if tiles <= 1 {
		return 1
	}
	if tiles <= 4 {
		return 2
	}
	return 4
}

// TileOffset maps a linear tile index to its grid cell, in tile units.
func TileOffset(index, split int) mgl32.Vec2 {
	return mgl32.Vec2{float32(index % split), float32(index / split)}
}

type Viewport struct {
	X, Y          float32
	Width, Height float32
}

type Layout struct {
	AtlasSize int
	Tiles     int
	Split     int
	TileSize  int
}

func NewLayout(atlasSize, tiles int) Layout {
	split := Split(tiles)
	return Layout{
		AtlasSize: atlasSize,
		Tiles:     tiles,
		Split:     split,
		TileSize:  atlasSize / split,
	}
}

// Capacity is the number of tiles that fit without overlap.
func (l Layout) Capacity() int {
	return l.Split * l.Split
}

// Overflowing reports whether some tiles share atlas space.
func (l Layout) Overflowing() bool {
	return l.Tiles > l.Capacity()
}

func (l Layout) Offset(index int) mgl32.Vec2 {
	return TileOffset(index, l.Split)
}

// Viewport returns the pixel rectangle of tile index.
func (l Layout) Viewport(index int) Viewport {
	offset := l.Offset(index)
	size := float32(l.TileSize)
	return Viewport{
		X:      offset.X() * size,
		Y:      offset.Y() * size,
		Width:  size,
		Height: size,
	}
}
