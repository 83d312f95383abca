package celshade

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/celshade/shadowrt/rt/core"
)

// LightComponent is a scene light as authored. Only directional and point
// lights cast shadows into the atlas.
type LightComponent struct {
	Type      core.LightType `yaml:"type"`
	Color     [3]float32     `yaml:"color"` // RGB
	Intensity float32        `yaml:"intensity"`
	Range     float32        `yaml:"range"` // point only
	Position  mgl32.Vec3     `yaml:"position"`
	Direction mgl32.Vec3     `yaml:"direction"`

	Shadows          core.ShadowMode `yaml:"shadows"`
	ShadowStrength   float32         `yaml:"shadow_strength"`
	ShadowBias       float32         `yaml:"shadow_bias"`
	ShadowNormalBias float32         `yaml:"shadow_normal_bias"`
	ShadowNearPlane  float32         `yaml:"shadow_near_plane"`
}

// DefaultDirectionalLight is a sun pointing down and slightly forward.
func DefaultDirectionalLight() LightComponent {
	return LightComponent{
		Type:             core.LightTypeDirectional,
		Color:            [3]float32{1, 1, 1},
		Intensity:        1,
		Direction:        mgl32.Vec3{-0.4, -1, -0.3},
		Shadows:          core.ShadowModeSoft,
		ShadowStrength:   1,
		ShadowBias:       1,
		ShadowNormalBias: 0.4,
		ShadowNearPlane:  0.2,
	}
}

func (c LightComponent) ToLight() core.Light {
	return core.Light{
		Type:             c.Type,
		Shadows:          c.Shadows,
		ShadowStrength:   c.ShadowStrength,
		ShadowBias:       c.ShadowBias,
		ShadowNormalBias: c.ShadowNormalBias,
		ShadowNearPlane:  c.ShadowNearPlane,
		Position:         c.Position,
		Direction:        c.Direction,
		Range:            c.Range,
	}
}

// VisibleLights converts components in order, so the index of a component
// is its visible light index.
func VisibleLights(components []LightComponent) []core.Light {
	lights := make([]core.Light, len(components))
	for i, c := range components {
		lights[i] = c.ToLight()
	}
	return lights
}
