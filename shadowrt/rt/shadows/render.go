package shadows

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/celshade/shadowrt/rt/atlas"
	"github.com/gekko3d/celshade/shadowrt/rt/cascade"
	"github.com/gekko3d/celshade/shadowrt/rt/core"
	"github.com/gekko3d/celshade/shadowrt/rt/gpu"
	"github.com/gekko3d/celshade/shadowrt/rt/shaders"
)

// Render draws every reserved slot into the atlas and publishes the
// shading globals. With nothing reserved it records nothing at all.
func (s *Shadows) Render() {
	if s.state != StateSetup && s.state != StateReserving {
		s.log.Warnf("shadows: render while %s", s.state)
		return
	}
	s.state = StateRendering
	if s.count == 0 {
		return
	}

	size := int(s.settings.Directional.AtlasSize)
	s.buf.GetTemporaryRT(shaders.DirectionalShadowAtlas, gpu.TemporaryRT{
		Width:     size,
		Height:    size,
		DepthBits: 32,
		Filter:    gpu.FilterModeBilinear,
		Format:    gpu.RenderTextureFormatShadowmap,
	})
	s.allocated = true
	s.buf.SetRenderTarget(shaders.DirectionalShadowAtlas)
	s.buf.ClearRenderTarget(true, false)
	s.buf.BeginSample(s.buf.Name)
	gpu.Flush(s.ctx, s.buf)

	s.layout = atlas.NewLayout(size, s.count*s.cascadeCount)
	// Tiles the collaborator refuses keep a zero matrix, never last frame's.
	clear(s.matrices[:s.layout.Tiles])
	if s.layout.Overflowing() {
		s.log.Debugf("shadows: %d tiles exceed atlas capacity %d, tiles overlap", s.layout.Tiles, s.layout.Capacity())
	}

	for slot := 0; slot < s.count; slot++ {
		switch s.lights[slot].LightType {
		case core.LightTypeDirectional:
			s.renderDirectional(slot)
		case core.LightTypePoint:
			s.renderPoint(slot)
		}
	}

	s.buf.SetGlobalInt(shaders.CascadeCount, s.cascadeCount)
	s.buf.SetGlobalVectorArray(shaders.CascadeCullingSpheres, s.cascades.Spheres())
	s.buf.SetGlobalVectorArray(shaders.CascadeData, s.cascades.CascadeData())
	s.buf.SetGlobalVectorArray(shaders.PointShadowCullingSpheres, s.faces.Spheres())
	s.buf.SetGlobalVectorArray(shaders.PointShadowData, s.faces.CascadeData())
	s.buf.SetGlobalMatrixArray(shaders.DirectionalShadowMatrices, s.AtlasMatrices())
	s.buf.SetGlobalVector(shaders.ShadowDistanceFade, cascade.DistanceFade(
		s.settings.MaxDistance,
		s.settings.DistanceFade,
		s.settings.Directional.CascadeFade,
	))
	s.setKeywords(shaders.DirectionalFilterKeywords, int(s.settings.Directional.Filter)-1)
	s.setKeywords(shaders.CascadeBlendKeywords, int(s.settings.Directional.CascadeBlend)-1)
	s.buf.SetGlobalVector(shaders.ShadowAtlasSize, mgl32.Vec4{float32(size), 1 / float32(size)})
	s.buf.EndSample(s.buf.Name)
	gpu.Flush(s.ctx, s.buf)
}

func (s *Shadows) renderDirectional(slot int) {
	light := s.lights[slot]
	d := s.settings.Directional
	ratios := d.CascadeRatios()
	blendFactor := cascade.BlendCullingFactor(d.CascadeFade)
	authoritative := s.firstSlot[core.LightTypeDirectional] == slot
	tileOffset := slot * s.cascadeCount

	for i := 0; i < s.cascadeCount; i++ {
		view, proj, split, ok := s.cull.ComputeDirectionalShadowMatricesAndCullingPrimitives(
			light.VisibleLightIndex, i, s.cascadeCount, ratios, s.layout.TileSize, light.NearPlaneOffset,
		)
		if !ok {
			s.log.Debugf("shadows: no cascade %d for light %d", i, light.VisibleLightIndex)
			continue
		}
		split.CascadeBlendCullingFactor = blendFactor
		if authoritative {
			s.cascades.Set(i, split.CullingSphere, float32(s.layout.TileSize), d.Filter)
		}
		s.renderTile(light, tileOffset+i, view, proj, split)
	}
}

// renderPoint walks the cubemap faces from the last to the first, each
// over the slot's tiles, so face PositiveX is what remains in the atlas.
func (s *Shadows) renderPoint(slot int) {
	light := s.lights[slot]
	d := s.settings.Directional
	blendFactor := cascade.BlendCullingFactor(d.CascadeFade)
	authoritative := s.firstSlot[core.LightTypePoint] == slot
	tileOffset := slot * s.cascadeCount

	for face := core.CubemapFaceCount - 1; face >= 0; face-- {
		for i := 0; i < s.cascadeCount; i++ {
			view, proj, split, ok := s.cull.ComputePointShadowMatricesAndCullingPrimitives(
				light.VisibleLightIndex, core.CubemapFace(face), light.NearPlaneOffset,
			)
			if !ok {
				s.log.Debugf("shadows: no face %d for light %d", face, light.VisibleLightIndex)
				continue
			}
			split.CascadeBlendCullingFactor = blendFactor
			if authoritative && i == 0 {
				s.faces.Set(face, split.CullingSphere, float32(s.layout.TileSize), d.Filter)
			}
			s.renderTile(light, tileOffset+i, view, proj, split)
		}
	}
}

// renderTile draws one light into one tile. The slope bias is flushed
// before the draw and reset right after so it never leaks into the next tile.
func (s *Shadows) renderTile(light core.ShadowedLight, tileIndex int, view, proj mgl32.Mat4, split core.ShadowSplitData) {
	s.buf.SetViewport(s.layout.Viewport(tileIndex))
	s.matrices[tileIndex] = atlas.ConvertToAtlasMatrix(
		proj.Mul4(view), s.layout.Offset(tileIndex), s.layout.Split, s.reversedZ,
	)
	s.buf.SetViewProjectionMatrices(view, proj)
	s.buf.SetGlobalDepthBias(0, light.SlopeScaleBias)
	gpu.Flush(s.ctx, s.buf)
	s.ctx.DrawShadows(&gpu.ShadowDrawingSettings{
		VisibleLightIndex: light.VisibleLightIndex,
		SplitData:         split,
	})
	s.buf.SetGlobalDepthBias(0, 0)
}

// setKeywords enables keywords[enabled] and disables the rest. A negative
// index disables all of them.
func (s *Shadows) setKeywords(keywords []string, enabled int) {
	for i, k := range keywords {
		if i == enabled {
			s.buf.EnableShaderKeyword(k)
		} else {
			s.buf.DisableShaderKeyword(k)
		}
	}
}

// Cleanup ends the frame and releases the atlas if Render allocated it.
func (s *Shadows) Cleanup() {
	if s.state == StateIdle {
		s.log.Warnf("shadows: cleanup without setup")
		return
	}
	s.release()
	s.state = StateIdle
}

func (s *Shadows) release() {
	if !s.allocated {
		return
	}
	s.buf.ReleaseTemporaryRT(shaders.DirectionalShadowAtlas)
	gpu.Flush(s.ctx, s.buf)
	s.allocated = false
}
