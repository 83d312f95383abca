package core

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

type TextureSize int

const (
	TextureSize256  TextureSize = 256
	TextureSize512  TextureSize = 512
	TextureSize1024 TextureSize = 1024
	TextureSize2048 TextureSize = 2048
	TextureSize4096 TextureSize = 4096
	TextureSize8192 TextureSize = 8192
)

// FilterMode selects the PCF kernel. The numeric value feeds the cascade
// filter size, so the order must not change.
type FilterMode int

const (
	FilterPCF2x2 FilterMode = iota
	FilterPCF3x3
	FilterPCF5x5
	FilterPCF7x7
)

type CascadeBlendMode int

const (
	CascadeBlendHard CascadeBlendMode = iota
	CascadeBlendSoft
	CascadeBlendDither
)

type DirectionalSettings struct {
	AtlasSize     TextureSize      `yaml:"atlas_size"`
	Filter        FilterMode       `yaml:"filter"`
	CascadeCount  int              `yaml:"cascade_count"`
	CascadeRatio1 float32          `yaml:"cascade_ratio_1"`
	CascadeRatio2 float32          `yaml:"cascade_ratio_2"`
	CascadeRatio3 float32          `yaml:"cascade_ratio_3"`
	CascadeFade   float32          `yaml:"cascade_fade"`
	CascadeBlend  CascadeBlendMode `yaml:"cascade_blend"`
}

// CascadeRatios returns the split ratios; the last cascade is implicit.
func (d DirectionalSettings) CascadeRatios() mgl32.Vec3 {
	return mgl32.Vec3{d.CascadeRatio1, d.CascadeRatio2, d.CascadeRatio3}
}

type ShadowSettings struct {
	MaxDistance  float32             `yaml:"max_distance"`
	DistanceFade float32             `yaml:"distance_fade"`
	Directional  DirectionalSettings `yaml:"directional"`
}

func DefaultShadowSettings() ShadowSettings {
	return ShadowSettings{
		MaxDistance:  100,
		DistanceFade: 0.1,
		Directional: DirectionalSettings{
			AtlasSize:     TextureSize1024,
			Filter:        FilterPCF2x2,
			CascadeCount:  4,
			CascadeRatio1: 0.1,
			CascadeRatio2: 0.25,
			CascadeRatio3: 0.5,
			CascadeFade:   0.1,
			CascadeBlend:  CascadeBlendHard,
		},
	}
}

var ErrInvalidSettings = errors.New("invalid shadow settings")

// Validate reports configuration the renderer cannot honour. The renderer
// itself never validates at frame time; loaders call this once.
func (s ShadowSettings) Validate() error {
	d := s.Directional
	switch d.AtlasSize {
	case TextureSize256, TextureSize512, TextureSize1024, TextureSize2048, TextureSize4096, TextureSize8192:
	default:
		return fmt.Errorf("%w: atlas size %d is not a supported power of two", ErrInvalidSettings, d.AtlasSize)
	}
	if d.CascadeCount < 1 || d.CascadeCount > 4 {
		return fmt.Errorf("%w: cascade count %d out of range [1,4]", ErrInvalidSettings, d.CascadeCount)
	}
	if d.Filter < FilterPCF2x2 || d.Filter > FilterPCF7x7 {
		return fmt.Errorf("%w: unknown filter mode %d", ErrInvalidSettings, d.Filter)
	}
	if d.CascadeBlend < CascadeBlendHard || d.CascadeBlend > CascadeBlendDither {
		return fmt.Errorf("%w: unknown cascade blend mode %d", ErrInvalidSettings, d.CascadeBlend)
	}
	ratios := d.CascadeRatios()
	for i := 0; i < 3; i++ {
		if ratios[i] < 0 || ratios[i] > 1 {
			return fmt.Errorf("%w: cascade ratio %d = %f out of range [0,1]", ErrInvalidSettings, i+1, ratios[i])
		}
	}
	if s.MaxDistance <= 0 {
		return fmt.Errorf("%w: max distance must be positive, got %f", ErrInvalidSettings, s.MaxDistance)
	}
	if s.DistanceFade <= 0 || s.DistanceFade > 1 {
		return fmt.Errorf("%w: distance fade %f out of range (0,1]", ErrInvalidSettings, s.DistanceFade)
	}
	if d.CascadeFade <= 0 || d.CascadeFade > 1 {
		return fmt.Errorf("%w: cascade fade %f out of range (0,1]", ErrInvalidSettings, d.CascadeFade)
	}
	return nil
}
