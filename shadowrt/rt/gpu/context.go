// Package gpu records shadow rendering commands and submits them to a
// render context: an in-memory Recorder or a WebGPU device.
package gpu

import (
	"github.com/gekko3d/celshade/shadowrt/rt/core"
)

// ShadowDrawingSettings selects the casters of one light for one cascade or
// cubemap face.
type ShadowDrawingSettings struct {
	VisibleLightIndex int
	SplitData         core.ShadowSplitData
}

// RenderContext consumes command buffers and draws shadow casters with the
// state those buffers established. ExecuteCommandBuffer copies what it needs;
// callers clear the buffer right after.
type RenderContext interface {
	ExecuteCommandBuffer(buf *CommandBuffer)
	DrawShadows(settings *ShadowDrawingSettings)
}

// Flush executes buf on ctx and clears it.
func Flush(ctx RenderContext, buf *CommandBuffer) {
	ctx.ExecuteCommandBuffer(buf)
	buf.Clear()
}
