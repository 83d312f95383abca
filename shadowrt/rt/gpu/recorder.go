package gpu

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/celshade/shadowrt/rt/atlas"
)

// DrawCall is a DrawShadows invocation with the state it was issued under.
type DrawCall struct {
	Settings       ShadowDrawingSettings
	RenderTarget   string
	Viewport       atlas.Viewport
	View, Proj     mgl32.Mat4
	SlopeScaleBias float32
}

// Recorder is a RenderContext that keeps every executed batch and draw in
// memory. It backs tests, headless runs and the atlas layout dump.
type Recorder struct {
	Batches  [][]Command
	Draws    []DrawCall
	State    *GlobalState
	Profiler *Profiler
}

func NewRecorder() *Recorder {
	return &Recorder{
		State:    NewGlobalState(),
		Profiler: NewProfiler(),
	}
}

func (r *Recorder) ExecuteCommandBuffer(buf *CommandBuffer) {
	batch := make([]Command, len(buf.Commands()))
	copy(batch, buf.Commands())
	r.Batches = append(r.Batches, batch)
	r.Profiler.Add("flushes", 1)

	for _, c := range batch {
		switch c.Kind {
		case CmdBeginSample:
			r.Profiler.BeginScope(c.Name)
		case CmdEndSample:
			r.Profiler.EndScope(c.Name)
		case CmdSetGlobalDepthBias:
			r.Profiler.Add("bias changes", 1)
		}
		r.State.Apply(c)
	}
}

func (r *Recorder) DrawShadows(settings *ShadowDrawingSettings) {
	r.Draws = append(r.Draws, DrawCall{
		Settings:       *settings,
		RenderTarget:   r.State.RenderTarget,
		Viewport:       r.State.Viewport,
		View:           r.State.View,
		Proj:           r.State.Proj,
		SlopeScaleBias: r.State.SlopeScaleBias,
	})
	r.Profiler.Add("draws", 1)
}

// Commands flattens all executed batches in order.
func (r *Recorder) Commands() []Command {
	var all []Command
	for _, b := range r.Batches {
		all = append(all, b...)
	}
	return all
}

// CountKind counts executed commands of kind k.
func (r *Recorder) CountKind(k CommandKind) int {
	n := 0
	for _, b := range r.Batches {
		for _, c := range b {
			if c.Kind == k {
				n++
			}
		}
	}
	return n
}

// Reset forgets batches and draws but keeps global state, like a new frame
// on a live device.
func (r *Recorder) Reset() {
	r.Batches = r.Batches[:0]
	r.Draws = r.Draws[:0]
	r.Profiler.Reset()
}
