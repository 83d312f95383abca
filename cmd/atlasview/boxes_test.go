package main

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"github.com/gekko3d/celshade/shadowrt/rt/core"
)

func TestAppendBoxEmitsTwelveTriangles(t *testing.T) {
	b := core.Bounds{Min: mgl32.Vec3{-1, 0, 2}, Max: mgl32.Vec3{1, 3, 4}}
	verts := appendBox(nil, b)
	assert.Len(t, verts, 36)

	seen := make(map[[3]float32]bool)
	for _, v := range verts {
		for i := 0; i < 3; i++ {
			assert.True(t, v[i] == b.Min[i] || v[i] == b.Max[i])
		}
		seen[v] = true
	}
	assert.Len(t, seen, 8)
}

func TestDemoSceneReservesEveryLight(t *testing.T) {
	scene := demoScene()
	assert.Len(t, scene.Lights, 3)
	for i := range scene.Lights {
		_, ok := scene.ShadowCasterBounds(i)
		assert.True(t, ok, "light %d", i)
	}
}
