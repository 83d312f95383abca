package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

type LightType uint32

const (
	LightTypeDirectional LightType = 0
	LightTypePoint       LightType = 1
)

func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypePoint:
		return "point"
	}
	return "unknown"
}

type ShadowMode uint32

const (
	ShadowModeNone ShadowMode = iota
	ShadowModeHard
	ShadowModeSoft
)

// Light is the per-frame description of a visible light as seen by the shadow
// reservation step. Position/Direction/Range are only read by culling.
type Light struct {
	Type             LightType
	Shadows          ShadowMode
	ShadowStrength   float32
	ShadowBias       float32 // slope-scale depth bias
	ShadowNormalBias float32
	ShadowNearPlane  float32

	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Range     float32
}

// ShadowedLight is a light slot reserved in the shadow atlas for one frame.
type ShadowedLight struct {
	VisibleLightIndex int
	SlopeScaleBias    float32
	NearPlaneOffset   float32
	LightType         LightType
}
