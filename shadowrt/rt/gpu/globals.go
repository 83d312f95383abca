package gpu

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/celshade/shadowrt/rt/shaders"
)

const (
	maxCascadeSlots   = 4
	maxPointFaceSlots = 6

	// ShadowUniformSize is the byte size of the packed ShadowGlobals block.
	ShadowUniformSize = 368
	// MatrixSize is the byte size of one packed mat4x4<f32>.
	MatrixSize = 64
)

// PackShadowUniforms lays the scalar and vector globals out as
//
//	struct ShadowGlobals {
//	  cascade_count: i32;                          -- 0
//	  keyword_mask: u32;                           -- 4
//	  atlas_size: vec4<f32>;                       -- 16
//	  distance_fade: vec4<f32>;                    -- 32
//	  culling_spheres: array<vec4<f32>, 4>;        -- 48
//	  cascade_data: array<vec4<f32>, 4>;           -- 112
//	  point_culling_spheres: array<vec4<f32>, 6>;  -- 176
//	  point_data: array<vec4<f32>, 6>;             -- 272
//	} -> 368 bytes
func PackShadowUniforms(s *GlobalState) []byte {
	buf := make([]byte, ShadowUniformSize)

	binary.LittleEndian.PutUint32(buf[0:], uint32(int32(s.Ints[shaders.CascadeCount])))
	binary.LittleEndian.PutUint32(buf[4:], keywordMask(s))

	writeVec(buf, 16, s.Vectors[shaders.ShadowAtlasSize])
	writeVec(buf, 32, s.Vectors[shaders.ShadowDistanceFade])
	writeVecs(buf, 48, s.VectorArrays[shaders.CascadeCullingSpheres], maxCascadeSlots)
	writeVecs(buf, 112, s.VectorArrays[shaders.CascadeData], maxCascadeSlots)
	writeVecs(buf, 176, s.VectorArrays[shaders.PointShadowCullingSpheres], maxPointFaceSlots)
	writeVecs(buf, 272, s.VectorArrays[shaders.PointShadowData], maxPointFaceSlots)

	return buf
}

// PackShadowMatrices packs the atlas matrix table column-major, one mat4 per tile.
func PackShadowMatrices(s *GlobalState) []byte {
	mats := s.MatrixArrays[shaders.DirectionalShadowMatrices]
	buf := make([]byte, len(mats)*MatrixSize)
	for i, m := range mats {
		writeMat(buf, i*MatrixSize, m)
	}
	return buf
}

func writeMat(buf []byte, offset int, m mgl32.Mat4) {
	for i, v := range m {
		binary.LittleEndian.PutUint32(buf[offset+i*4:], math.Float32bits(v))
	}
}

func keywordMask(s *GlobalState) uint32 {
	var mask uint32
	for k, on := range s.Keywords {
		if !on {
			continue
		}
		if bit := shaders.KeywordBit(k); bit >= 0 {
			mask |= 1 << uint(bit)
		}
	}
	return mask
}

func writeVec(buf []byte, offset int, v mgl32.Vec4) {
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(buf[offset+i*4:], math.Float32bits(v[i]))
	}
}

// writeVecs writes at most limit vectors; missing slots stay zero.
func writeVecs(buf []byte, offset int, vs []mgl32.Vec4, limit int) {
	for i, v := range vs {
		if i >= limit {
			break
		}
		writeVec(buf, offset+i*16, v)
	}
}
