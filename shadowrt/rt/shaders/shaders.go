package shaders

import (
	_ "embed"
)

//go:embed shadow_caster.wgsl
var ShadowCasterWGSL string

//go:embed atlas_preview.wgsl
var AtlasPreviewWGSL string

// Global property names shared with the shading stage.
const (
	DirectionalShadowAtlas    = "_DirectionalShadowAtlas"
	DirectionalShadowMatrices = "_DirectionalShadowMatrices"
	CascadeCount              = "_CascadeCount"
	CascadeCullingSpheres     = "_CascadeCullingSpheres"
	CascadeData               = "_CascadeData"
	PointShadowCullingSpheres = "_PointShadowCullingSpheres"
	PointShadowData           = "_PointShadowData"
	ShadowAtlasSize           = "_ShadowAtlasSize"
	ShadowDistanceFade        = "_ShadowDistanceFade"

	// Per visible light: strength, first tile, normal bias. Zero means unshadowed.
	LightShadowData = "_LightShadowData"
	// Cel ramp: default shadow brightness, brightness multiplier, shadow threshold.
	CelShadingParams = "_CelShadingParams"
)

// DirectionalFilterKeywords are indexed by filter mode minus one; PCF2x2
// selects none of them.
var DirectionalFilterKeywords = []string{
	"_DIRECTIONAL_PCF3",
	"_DIRECTIONAL_PCF5",
	"_DIRECTIONAL_PCF7",
}

// CascadeBlendKeywords are indexed by blend mode minus one; hard blending
// selects none of them.
var CascadeBlendKeywords = []string{
	"_CASCADE_BLEND_SOFT",
	"_CASCADE_BLEND_DITHER",
}

// KeywordBit returns the bit a keyword occupies in the packed keyword mask,
// or -1 for keywords the shading stage does not know.
func KeywordBit(keyword string) int {
	for i, k := range DirectionalFilterKeywords {
		if k == keyword {
			return i
		}
	}
	for i, k := range CascadeBlendKeywords {
		if k == keyword {
			return len(DirectionalFilterKeywords) + i
		}
	}
	return -1
}
