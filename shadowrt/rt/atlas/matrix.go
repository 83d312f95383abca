package atlas

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ConvertToAtlasMatrix turns a world-to-clip matrix into a world-to-atlas
// matrix for the tile at offset. After the perspective divide x and y land in
// the tile's 1/split wide UV square and z in [0,1].
//
// With reversedZ the depth row is negated first so that the remapped depth
// still grows away from the light.
func ConvertToAtlasMatrix(m mgl32.Mat4, offset mgl32.Vec2, split int, reversedZ bool) mgl32.Mat4 {
	if reversedZ {
		for col := 0; col < 4; col++ {
			m.Set(2, col, -m.At(2, col))
		}
	}
	scale := 1 / float32(split)
	for col := 0; col < 4; col++ {
		w := m.At(3, col)
		m.Set(0, col, (0.5*(m.At(0, col)+w)+offset.X()*w)*scale)
		m.Set(1, col, (0.5*(m.At(1, col)+w)+offset.Y()*w)*scale)
		m.Set(2, col, 0.5*(m.At(2, col)+w))
	}
	return m
}
