package main

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/celshade/shadowrt/rt/core"
	"github.com/gekko3d/celshade/shadowrt/rt/gpu"
)

// boxSource draws every caster box as one static triangle list. Cascade
// and face culling is left to the depth test.
type boxSource struct {
	mesh gpu.CasterMesh
}

func newBoxSource(device *wgpu.Device, boxes []core.Bounds) (*boxSource, error) {
	var vertices [][3]float32
	for _, b := range boxes {
		vertices = appendBox(vertices, b)
	}
	if len(vertices) == 0 {
		return &boxSource{}, nil
	}

	vSize := uint64(len(vertices) * int(unsafe.Sizeof([3]float32{})))
	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Caster Boxes VB",
		Size:  vSize,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create caster vertex buffer: %w", err)
	}
	device.GetQueue().WriteBuffer(buf, 0, unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), vSize))

	return &boxSource{mesh: gpu.CasterMesh{VertexBuffer: buf, VertexCount: uint32(len(vertices))}}, nil
}

func (s *boxSource) ShadowCasters(settings *gpu.ShadowDrawingSettings) []gpu.CasterMesh {
	if s.mesh.VertexBuffer == nil {
		return nil
	}
	return []gpu.CasterMesh{s.mesh}
}

func (s *boxSource) release() {
	if s.mesh.VertexBuffer != nil {
		s.mesh.VertexBuffer.Release()
	}
}

// Corner i has x from bit 0, y from bit 1 and z from bit 2.
var boxFaces = [6][4]int{
	{0, 2, 6, 4}, // -x
	{1, 5, 7, 3}, // +x
	{0, 4, 5, 1}, // -y
	{2, 3, 7, 6}, // +y
	{0, 1, 3, 2}, // -z
	{4, 6, 7, 5}, // +z
}

func appendBox(dst [][3]float32, b core.Bounds) [][3]float32 {
	var corners [8]mgl32.Vec3
	for i := range corners {
		c := b.Min
		if i&1 != 0 {
			c[0] = b.Max[0]
		}
		if i&2 != 0 {
			c[1] = b.Max[1]
		}
		if i&4 != 0 {
			c[2] = b.Max[2]
		}
		corners[i] = c
	}
	for _, f := range boxFaces {
		for _, i := range [6]int{0, 1, 2, 0, 2, 3} {
			dst = append(dst, corners[f[i]])
		}
	}
	return dst
}
