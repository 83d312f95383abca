package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestFrustumContainsBounds(t *testing.T) {
	// Camera at origin looking down -Z, 90 deg FOV, near 1, far 100.
	proj := mgl32.Perspective(mgl32.DegToRad(90), 1.0, 1.0, 100.0)
	view := mgl32.LookAtV(
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{0, 0, -1},
		mgl32.Vec3{0, 1, 0},
	)
	planes := ExtractFrustum(proj.Mul4(view))

	tests := []struct {
		name     string
		bounds   Bounds
		expected bool
	}{
		{"Inside (center)", Bounds{mgl32.Vec3{-1, -1, -10}, mgl32.Vec3{1, 1, -5}}, true},
		{"Outside (Left)", Bounds{mgl32.Vec3{-20, -1, -10}, mgl32.Vec3{-15, 1, -5}}, false},
		{"Outside (Right)", Bounds{mgl32.Vec3{15, -1, -10}, mgl32.Vec3{20, 1, -5}}, false},
		{"Outside (Behind)", Bounds{mgl32.Vec3{-1, -1, 2}, mgl32.Vec3{1, 1, 5}}, false},
		{"Outside (Far)", Bounds{mgl32.Vec3{-1, -1, -200}, mgl32.Vec3{1, 1, -150}}, false},
		{"Intersecting (Left Plane)", Bounds{mgl32.Vec3{-15, -1, -10}, mgl32.Vec3{-5, 1, -5}}, true},
		{"Encompassing", Bounds{mgl32.Vec3{-1000, -1000, -1000}, mgl32.Vec3{1000, 1000, 1000}}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, planes.ContainsBounds(tc.bounds))
		})
	}
}

func TestFrustumContainsSphere(t *testing.T) {
	proj := mgl32.Ortho(-10, 10, -10, 10, 0, 20)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0})
	planes := ExtractFrustum(proj.Mul4(view))

	assert.True(t, planes.ContainsSphere(mgl32.Vec4{0, 0, -5, 1}))
	assert.True(t, planes.ContainsSphere(mgl32.Vec4{0, 0, -21, 2}), "sphere straddling the far plane")
	assert.False(t, planes.ContainsSphere(mgl32.Vec4{0, 0, -25, 1}))
}

func TestFrustumCorners(t *testing.T) {
	proj := mgl32.Ortho(-2, 2, -2, 2, 1, 11)
	view := mgl32.Ident4()
	inv := proj.Mul4(view).Inv()

	corners := FrustumCorners(inv, 0, 0.5)
	// Near slice sits at z = -1, the half-way slice at z = -6.
	for i := 0; i < 4; i++ {
		assert.InDelta(t, -1, corners[i].Z(), 1e-4)
	}
	for i := 4; i < 8; i++ {
		assert.InDelta(t, -6, corners[i].Z(), 1e-4)
	}
	assert.InDelta(t, -2, corners[0].X(), 1e-4)
	assert.InDelta(t, 2, corners[3].X(), 1e-4)
}

func TestBoundsEncapsulate(t *testing.T) {
	b := EmptyBounds()
	assert.True(t, b.Empty())

	b = b.Encapsulate(Bounds{mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}})
	b = b.Encapsulate(Bounds{mgl32.Vec3{-1, 2, 0}, mgl32.Vec3{0, 3, 4}})
	assert.False(t, b.Empty())
	assert.Equal(t, mgl32.Vec3{-1, 0, 0}, b.Min)
	assert.Equal(t, mgl32.Vec3{1, 3, 4}, b.Max)
	assert.Equal(t, mgl32.Vec3{0, 1.5, 2}, b.Center())
}
