package gpu

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/celshade/shadowrt/rt/atlas"
)

// GlobalState is the GPU-side state after applying executed commands in
// order. Both render contexts track it.
type GlobalState struct {
	Ints         map[string]int
	Vectors      map[string]mgl32.Vec4
	VectorArrays map[string][]mgl32.Vec4
	MatrixArrays map[string][]mgl32.Mat4
	Keywords     map[string]bool
	Targets      map[string]TemporaryRT

	RenderTarget   string
	Viewport       atlas.Viewport
	View, Proj     mgl32.Mat4
	DepthBias      float32
	SlopeScaleBias float32
}

func NewGlobalState() *GlobalState {
	return &GlobalState{
		Ints:         make(map[string]int),
		Vectors:      make(map[string]mgl32.Vec4),
		VectorArrays: make(map[string][]mgl32.Vec4),
		MatrixArrays: make(map[string][]mgl32.Mat4),
		Keywords:     make(map[string]bool),
		Targets:      make(map[string]TemporaryRT),
		View:         mgl32.Ident4(),
		Proj:         mgl32.Ident4(),
	}
}

// Apply folds one command into the state. Sample markers and clears carry no state.
func (s *GlobalState) Apply(c Command) {
	switch c.Kind {
	case CmdGetTemporaryRT:
		s.Targets[c.Name] = c.Target
	case CmdReleaseTemporaryRT:
		delete(s.Targets, c.Name)
		if s.RenderTarget == c.Name {
			s.RenderTarget = ""
		}
	case CmdSetRenderTarget:
		s.RenderTarget = c.Name
	case CmdSetViewport:
		s.Viewport = c.Viewport
	case CmdSetViewProjectionMatrices:
		s.View, s.Proj = c.View, c.Proj
	case CmdSetGlobalDepthBias:
		s.DepthBias, s.SlopeScaleBias = c.DepthBias, c.SlopeScaleBias
	case CmdSetGlobalInt:
		s.Ints[c.Name] = c.Int
	case CmdSetGlobalVector:
		s.Vectors[c.Name] = c.Vector
	case CmdSetGlobalVectorArray:
		s.VectorArrays[c.Name] = c.Vectors
	case CmdSetGlobalMatrixArray:
		s.MatrixArrays[c.Name] = c.Matrices
	case CmdEnableKeyword:
		s.Keywords[c.Name] = true
	case CmdDisableKeyword:
		s.Keywords[c.Name] = false
	}
}

// KeywordEnabled reports whether keyword was last enabled.
func (s *GlobalState) KeywordEnabled(keyword string) bool {
	return s.Keywords[keyword]
}

// ViewProjection is the combined matrix casters are drawn with.
func (s *GlobalState) ViewProjection() mgl32.Mat4 {
	return s.Proj.Mul4(s.View)
}
