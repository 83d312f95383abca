package gpu

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/celshade/shadowrt/rt/atlas"
)

type CommandKind int

const (
	CmdGetTemporaryRT CommandKind = iota
	CmdReleaseTemporaryRT
	CmdSetRenderTarget
	CmdClearRenderTarget
	CmdBeginSample
	CmdEndSample
	CmdSetViewport
	CmdSetViewProjectionMatrices
	CmdSetGlobalDepthBias
	CmdSetGlobalInt
	CmdSetGlobalVector
	CmdSetGlobalVectorArray
	CmdSetGlobalMatrixArray
	CmdEnableKeyword
	CmdDisableKeyword
)

var commandKindNames = [...]string{
	"GetTemporaryRT",
	"ReleaseTemporaryRT",
	"SetRenderTarget",
	"ClearRenderTarget",
	"BeginSample",
	"EndSample",
	"SetViewport",
	"SetViewProjectionMatrices",
	"SetGlobalDepthBias",
	"SetGlobalInt",
	"SetGlobalVector",
	"SetGlobalVectorArray",
	"SetGlobalMatrixArray",
	"EnableKeyword",
	"DisableKeyword",
}

func (k CommandKind) String() string {
	if k < 0 || int(k) >= len(commandKindNames) {
		return "Unknown"
	}
	return commandKindNames[k]
}

type RenderTextureFormat int

const (
	RenderTextureFormatShadowmap RenderTextureFormat = iota
	RenderTextureFormatDepth
)

type FilterMode int

const (
	FilterModePoint FilterMode = iota
	FilterModeBilinear
)

// TemporaryRT describes a transient render target requested by name.
type TemporaryRT struct {
	Width, Height int
	DepthBits     int
	Filter        FilterMode
	Format        RenderTextureFormat
}

// Command is one recorded GPU state change. Only the fields relevant to Kind
// are set.
type Command struct {
	Kind CommandKind
	Name string

	Target   TemporaryRT
	Viewport atlas.Viewport

	View, Proj mgl32.Mat4

	DepthBias      float32
	SlopeScaleBias float32

	ClearDepth bool
	ClearColor bool

	Int      int
	Vector   mgl32.Vec4
	Vectors  []mgl32.Vec4
	Matrices []mgl32.Mat4
}

// CommandBuffer records commands until a RenderContext executes it. Array
// payloads are copied on record so the caller can keep mutating its tables.
type CommandBuffer struct {
	Name     string
	commands []Command
}

func NewCommandBuffer(name string) *CommandBuffer {
	return &CommandBuffer{Name: name, commands: make([]Command, 0, 64)}
}

func (b *CommandBuffer) Commands() []Command {
	return b.commands
}

func (b *CommandBuffer) Len() int {
	return len(b.commands)
}

// Clear drops recorded commands and keeps the backing storage.
func (b *CommandBuffer) Clear() {
	b.commands = b.commands[:0]
}

func (b *CommandBuffer) push(c Command) {
	b.commands = append(b.commands, c)
}

func (b *CommandBuffer) GetTemporaryRT(name string, rt TemporaryRT) {
	b.push(Command{Kind: CmdGetTemporaryRT, Name: name, Target: rt})
}

func (b *CommandBuffer) ReleaseTemporaryRT(name string) {
	b.push(Command{Kind: CmdReleaseTemporaryRT, Name: name})
}

func (b *CommandBuffer) SetRenderTarget(name string) {
	b.push(Command{Kind: CmdSetRenderTarget, Name: name})
}

func (b *CommandBuffer) ClearRenderTarget(depth, color bool) {
	b.push(Command{Kind: CmdClearRenderTarget, ClearDepth: depth, ClearColor: color})
}

func (b *CommandBuffer) BeginSample(name string) {
	b.push(Command{Kind: CmdBeginSample, Name: name})
}

func (b *CommandBuffer) EndSample(name string) {
	b.push(Command{Kind: CmdEndSample, Name: name})
}

func (b *CommandBuffer) SetViewport(vp atlas.Viewport) {
	b.push(Command{Kind: CmdSetViewport, Viewport: vp})
}

func (b *CommandBuffer) SetViewProjectionMatrices(view, proj mgl32.Mat4) {
	b.push(Command{Kind: CmdSetViewProjectionMatrices, View: view, Proj: proj})
}

func (b *CommandBuffer) SetGlobalDepthBias(bias, slopeScaleBias float32) {
	b.push(Command{Kind: CmdSetGlobalDepthBias, DepthBias: bias, SlopeScaleBias: slopeScaleBias})
}

func (b *CommandBuffer) SetGlobalInt(name string, v int) {
	b.push(Command{Kind: CmdSetGlobalInt, Name: name, Int: v})
}

func (b *CommandBuffer) SetGlobalVector(name string, v mgl32.Vec4) {
	b.push(Command{Kind: CmdSetGlobalVector, Name: name, Vector: v})
}

func (b *CommandBuffer) SetGlobalVectorArray(name string, v []mgl32.Vec4) {
	b.push(Command{Kind: CmdSetGlobalVectorArray, Name: name, Vectors: append([]mgl32.Vec4(nil), v...)})
}

func (b *CommandBuffer) SetGlobalMatrixArray(name string, m []mgl32.Mat4) {
	b.push(Command{Kind: CmdSetGlobalMatrixArray, Name: name, Matrices: append([]mgl32.Mat4(nil), m...)})
}

func (b *CommandBuffer) EnableShaderKeyword(keyword string) {
	b.push(Command{Kind: CmdEnableKeyword, Name: keyword})
}

func (b *CommandBuffer) DisableShaderKeyword(keyword string) {
	b.push(Command{Kind: CmdDisableKeyword, Name: keyword})
}
