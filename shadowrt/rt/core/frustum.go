package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Frustum holds the 6 clip planes of a view-projection matrix in the order
// Left, Right, Bottom, Top, Near, Far. Normals point inside.
type Frustum [6]mgl32.Vec4

// ExtractFrustum builds the frustum planes from vp (GL-style -1..1 depth).
func ExtractFrustum(vp mgl32.Mat4) Frustum {
	row3 := vp.Row(3)
	var f Frustum
	f[0] = row3.Add(vp.Row(0))
	f[1] = row3.Sub(vp.Row(0))
	f[2] = row3.Add(vp.Row(1))
	f[3] = row3.Sub(vp.Row(1))
	f[4] = row3.Add(vp.Row(2))
	f[5] = row3.Sub(vp.Row(2))

	for i := range f {
		length := float32(math.Sqrt(float64(f[i][0]*f[i][0] + f[i][1]*f[i][1] + f[i][2]*f[i][2])))
		if length > 0 {
			f[i] = f[i].Mul(1.0 / length)
		}
	}
	return f
}

// ContainsBounds reports whether any part of b lies inside the frustum.
// It tests the box corner furthest along each plane normal; if even that
// corner is behind a plane the whole box is outside.
func (f Frustum) ContainsBounds(b Bounds) bool {
	for _, plane := range f {
		var p mgl32.Vec3
		for axis := 0; axis < 3; axis++ {
			if plane[axis] > 0 {
				p[axis] = b.Max[axis]
			} else {
				p[axis] = b.Min[axis]
			}
		}
		if plane.Vec3().Dot(p)+plane[3] < 0 {
			return false
		}
	}
	return true
}

// ContainsSphere reports whether the sphere (xyz center, w radius) touches the frustum.
func (f Frustum) ContainsSphere(sphere mgl32.Vec4) bool {
	center := sphere.Vec3()
	for _, plane := range f {
		if plane.Vec3().Dot(center)+plane[3] < -sphere[3] {
			return false
		}
	}
	return true
}

// FrustumCorners returns the 8 world-space corners of the clip volume of
// invViewProj between normalized depths nearT and farT (0 = near plane,
// 1 = far plane, GL depth range).
func FrustumCorners(invViewProj mgl32.Mat4, nearT, farT float32) [8]mgl32.Vec3 {
	var corners [8]mgl32.Vec3
	i := 0
	for _, t := range [2]float32{nearT, farT} {
		// Interpolate in world space so the slice follows the view depth linearly.
		for _, y := range [2]float32{-1, 1} {
			for _, x := range [2]float32{-1, 1} {
				n := mgl32.TransformCoordinate(mgl32.Vec3{x, y, -1}, invViewProj)
				fa := mgl32.TransformCoordinate(mgl32.Vec3{x, y, 1}, invViewProj)
				corners[i] = n.Add(fa.Sub(n).Mul(t))
				i++
			}
		}
	}
	return corners
}
