// Package shadows reserves atlas space for shadowed lights each frame and
// renders their cascades and cubemap faces into a single shadow atlas.
package shadows

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/celshade/shadowrt/rt/atlas"
	"github.com/gekko3d/celshade/shadowrt/rt/cascade"
	"github.com/gekko3d/celshade/shadowrt/rt/core"
	"github.com/gekko3d/celshade/shadowrt/rt/gpu"
)

const (
	MaxShadowedLightCount = 200
	MaxCascades           = cascade.MaxCascades

	maxAtlasMatrices = MaxShadowedLightCount * MaxCascades
)

// State is the position of Shadows in its per-frame protocol:
// Setup, any number of reservations, Render, Cleanup.
type State int

const (
	StateIdle State = iota
	StateSetup
	StateReserving
	StateRendering
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSetup:
		return "setup"
	case StateReserving:
		return "reserving"
	case StateRendering:
		return "rendering"
	}
	return "unknown"
}

// Logger is the subset of the application logger Shadows writes to.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Warnf(string, ...any)  {}

type Option func(*Shadows)

func WithLogger(l Logger) Option {
	return func(s *Shadows) {
		if l != nil {
			s.log = l
		}
	}
}

// WithReversedZ tells the matrix converter the backend clears depth to 0
// and draws near at 1.
func WithReversedZ(reversed bool) Option {
	return func(s *Shadows) {
		s.reversedZ = reversed
	}
}

// WithName names the command buffer and its profiler sample.
func WithName(name string) Option {
	return func(s *Shadows) {
		s.buf.Name = name
	}
}

// Shadows owns every frame-scoped shadow array. Nothing is allocated after
// New; Setup only resets counters and tables.
type Shadows struct {
	log       Logger
	reversedZ bool
	buf       *gpu.CommandBuffer

	ctx      gpu.RenderContext
	cull     core.CullingResults
	settings core.ShadowSettings

	state        State
	cascadeCount int
	count        int
	lights       [MaxShadowedLightCount]core.ShadowedLight
	// firstSlot holds the first reserved slot of each light kind, or -1.
	firstSlot [2]int

	layout    atlas.Layout
	allocated bool
	matrices  [maxAtlasMatrices]mgl32.Mat4
	cascades  cascade.Table
	faces     cascade.Table
}

func New(opts ...Option) *Shadows {
	s := &Shadows{
		log:       nopLogger{},
		buf:       gpu.NewCommandBuffer("Shadows"),
		firstSlot: [2]int{-1, -1},
		cascades:  cascade.NewTable(MaxCascades),
		faces:     cascade.NewTable(core.CubemapFaceCount),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Setup starts a frame. It forgets every reservation of the previous frame.
func (s *Shadows) Setup(ctx gpu.RenderContext, cull core.CullingResults, settings core.ShadowSettings) {
	if s.state != StateIdle {
		s.log.Warnf("shadows: setup while %s, previous frame was not cleaned up", s.state)
		s.release()
	}
	s.ctx = ctx
	s.cull = cull
	s.settings = settings
	s.cascadeCount = min(max(settings.Directional.CascadeCount, 1), MaxCascades)
	s.count = 0
	s.firstSlot = [2]int{-1, -1}
	s.allocated = false
	s.layout = atlas.Layout{}
	s.cascades = cascade.NewTable(s.cascadeCount)
	s.faces = cascade.NewTable(core.CubemapFaceCount)
	s.buf.Clear()
	s.state = StateSetup
}

// ReserveDirectionalShadows grants light a slot in the atlas. It returns
// (strength, first tile index, normal bias), or the zero vector when the
// light gets no shadows this frame. Reserving the same light twice takes
// two slots.
func (s *Shadows) ReserveDirectionalShadows(light core.Light, visibleLightIndex int) mgl32.Vec3 {
	return s.reserve(light, visibleLightIndex, core.LightTypeDirectional)
}

// ReservePointShadows is ReserveDirectionalShadows for point lights. Point
// lights take the same number of tiles per slot as directional lights.
func (s *Shadows) ReservePointShadows(light core.Light, visibleLightIndex int) mgl32.Vec3 {
	return s.reserve(light, visibleLightIndex, core.LightTypePoint)
}

func (s *Shadows) reserve(light core.Light, visibleLightIndex int, kind core.LightType) mgl32.Vec3 {
	if s.state != StateSetup && s.state != StateReserving {
		s.log.Warnf("shadows: %s reservation for light %d while %s", kind, visibleLightIndex, s.state)
		return mgl32.Vec3{}
	}
	s.state = StateReserving

	if s.count >= MaxShadowedLightCount {
		s.log.Debugf("shadows: light %d refused, all %d slots taken", visibleLightIndex, MaxShadowedLightCount)
		return mgl32.Vec3{}
	}
	if light.Shadows == core.ShadowModeNone || light.ShadowStrength <= 0 {
		return mgl32.Vec3{}
	}
	if _, ok := s.cull.ShadowCasterBounds(visibleLightIndex); !ok {
		s.log.Debugf("shadows: light %d has no casters in view", visibleLightIndex)
		return mgl32.Vec3{}
	}

	slot := s.count
	s.lights[slot] = core.ShadowedLight{
		VisibleLightIndex: visibleLightIndex,
		SlopeScaleBias:    light.ShadowBias,
		NearPlaneOffset:   light.ShadowNearPlane,
		LightType:         kind,
	}
	if s.firstSlot[kind] < 0 {
		s.firstSlot[kind] = slot
	}
	s.count++
	return mgl32.Vec3{
		light.ShadowStrength,
		float32(s.cascadeCount * slot),
		light.ShadowNormalBias,
	}
}

func (s *Shadows) State() State {
	return s.state
}

func (s *Shadows) ReservedCount() int {
	return s.count
}

// CascadeCount is the per-slot tile count of the current frame.
func (s *Shadows) CascadeCount() int {
	return s.cascadeCount
}

func (s *Shadows) ShadowedLight(slot int) (core.ShadowedLight, bool) {
	if slot < 0 || slot >= s.count {
		return core.ShadowedLight{}, false
	}
	return s.lights[slot], true
}

// Layout is the atlas tiling chosen by the last Render.
func (s *Shadows) Layout() atlas.Layout {
	return s.layout
}

// AtlasMatrices returns the world-to-atlas matrices of the reserved tiles,
// indexed by slot*CascadeCount()+cascade.
func (s *Shadows) AtlasMatrices() []mgl32.Mat4 {
	return s.matrices[:s.count*s.cascadeCount]
}

// CascadeTable holds the directional cascades of the first reserved
// directional light.
func (s *Shadows) CascadeTable() *cascade.Table {
	return &s.cascades
}

// PointFaceTable holds one entry per cubemap face of the first reserved
// point light.
func (s *Shadows) PointFaceTable() *cascade.Table {
	return &s.faces
}
