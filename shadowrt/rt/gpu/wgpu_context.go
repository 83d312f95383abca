package gpu

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/gekko3d/celshade/shadowrt/rt/shaders"
)

const (
	// drawSlotStride is the dynamic uniform offset alignment.
	drawSlotStride = 256
	// MaxDrawsPerFrame covers 200 lights x 6 faces x 4 cascades.
	MaxDrawsPerFrame = 200 * 6 * 4
	maxAtlasMatrices = 800
)

// ErrTooManyDraws is reported when a frame issues more than MaxDrawsPerFrame draws.
var ErrTooManyDraws = errors.New("shadow draw budget exceeded")

// CasterMesh is one vertex buffer of float32x3 positions drawn as a triangle list.
type CasterMesh struct {
	VertexBuffer *wgpu.Buffer
	VertexCount  uint32
}

// CasterSource supplies the shadow-casting geometry for a light and split.
type CasterSource interface {
	ShadowCasters(settings *ShadowDrawingSettings) []CasterMesh
}

// RenderTarget is a live temporary render target on the device.
type RenderTarget struct {
	ID      uuid.UUID
	Desc    TemporaryRT
	Texture *wgpu.Texture
	View    *wgpu.TextureView
}

// WGPUContext executes shadow command buffers on a WebGPU device. Commands
// are encoded into one command encoder that is submitted on Submit or when
// the target it renders into is released.
type WGPUContext struct {
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Casters  CasterSource
	State    *GlobalState
	Profiler *Profiler

	// UniformBuf holds the packed ShadowGlobals, MatrixBuf the atlas matrix table.
	UniformBuf *wgpu.Buffer
	MatrixBuf  *wgpu.Buffer

	targets      map[string]*RenderTarget
	encoder      *wgpu.CommandEncoder
	pass         *wgpu.RenderPassEncoder
	pendingClear bool

	module         *wgpu.ShaderModule
	bindLayout     *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	pipelines      map[float32]*wgpu.RenderPipeline
	drawBuf        *wgpu.Buffer
	drawBindGroup  *wgpu.BindGroup
	drawCount      int

	err error
}

func NewWGPUContext(device *wgpu.Device, casters CasterSource) (*WGPUContext, error) {
	c := &WGPUContext{
		Device:    device,
		Queue:     device.GetQueue(),
		Casters:   casters,
		State:     NewGlobalState(),
		Profiler:  NewProfiler(),
		targets:   make(map[string]*RenderTarget),
		pipelines: make(map[float32]*wgpu.RenderPipeline),
	}

	var err error
	c.module, err = device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Shadow Caster",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.ShadowCasterWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shadow caster shader: %w", err)
	}

	c.bindLayout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Shadow Draw BGL",
		Entries: []wgpu.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex,
			Buffer: wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeUniform,
				HasDynamicOffset: true,
				MinBindingSize:   MatrixSize,
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shadow draw bind group layout: %w", err)
	}

	c.pipelineLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Shadow Caster Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{c.bindLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shadow pipeline layout: %w", err)
	}

	c.drawBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Shadow Draw UB",
		Size:  uint64(MaxDrawsPerFrame * drawSlotStride),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shadow draw buffer: %w", err)
	}

	c.drawBindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Shadow Draw BG",
		Layout: c.bindLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: c.drawBuf, Offset: 0, Size: MatrixSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shadow draw bind group: %w", err)
	}

	c.UniformBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ShadowGlobals UB",
		Size:  ShadowUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shadow globals buffer: %w", err)
	}

	c.MatrixBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Shadow Matrices SB",
		Size:  maxAtlasMatrices * MatrixSize,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shadow matrix buffer: %w", err)
	}

	return c, nil
}

// Err returns the first device error hit while executing commands.
func (c *WGPUContext) Err() error {
	return c.err
}

func (c *WGPUContext) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// Target returns the live render target registered under name.
func (c *WGPUContext) Target(name string) (*RenderTarget, bool) {
	rt, ok := c.targets[name]
	return rt, ok
}

func (c *WGPUContext) ExecuteCommandBuffer(buf *CommandBuffer) {
	c.Profiler.Add("flushes", 1)
	globalsDirty := false

	for _, cmd := range buf.Commands() {
		c.State.Apply(cmd)

		switch cmd.Kind {
		case CmdGetTemporaryRT:
			c.createTarget(cmd.Name, cmd.Target)
		case CmdReleaseTemporaryRT:
			c.releaseTarget(cmd.Name)
		case CmdSetRenderTarget:
			c.endPass()
		case CmdClearRenderTarget:
			if cmd.ClearDepth {
				c.endPass()
				c.pendingClear = true
			}
		case CmdSetViewport:
			if c.pass != nil {
				c.applyViewport()
			}
		case CmdBeginSample:
			c.Profiler.BeginScope(cmd.Name)
		case CmdEndSample:
			c.Profiler.EndScope(cmd.Name)
		case CmdSetGlobalDepthBias:
			c.Profiler.Add("bias changes", 1)
		case CmdSetGlobalInt, CmdSetGlobalVector, CmdSetGlobalVectorArray, CmdSetGlobalMatrixArray,
			CmdEnableKeyword, CmdDisableKeyword:
			globalsDirty = true
		}
	}

	if globalsDirty {
		c.Queue.WriteBuffer(c.UniformBuf, 0, PackShadowUniforms(c.State))
		if mats := PackShadowMatrices(c.State); len(mats) > 0 {
			if len(mats) > maxAtlasMatrices*MatrixSize {
				mats = mats[:maxAtlasMatrices*MatrixSize]
			}
			c.Queue.WriteBuffer(c.MatrixBuf, 0, mats)
		}
	}
}

func (c *WGPUContext) DrawShadows(settings *ShadowDrawingSettings) {
	if c.drawCount >= MaxDrawsPerFrame {
		c.fail(ErrTooManyDraws)
		return
	}
	if !c.beginPass() {
		return
	}
	pipeline, err := c.pipelineFor(c.State.SlopeScaleBias)
	if err != nil {
		c.fail(err)
		return
	}

	offset := uint32(c.drawCount * drawSlotStride)
	vp := webGPUDepth.Mul4(c.State.ViewProjection())
	c.Queue.WriteBuffer(c.drawBuf, uint64(offset), matrixBytes(vp))
	c.drawCount++

	c.pass.SetPipeline(pipeline)
	c.pass.SetBindGroup(0, c.drawBindGroup, []uint32{offset})
	if c.Casters == nil {
		return
	}
	for _, mesh := range c.Casters.ShadowCasters(settings) {
		if mesh.VertexBuffer == nil || mesh.VertexCount == 0 {
			continue
		}
		c.pass.SetVertexBuffer(0, mesh.VertexBuffer, 0, wgpu.WholeSize)
		c.pass.Draw(mesh.VertexCount, 1, 0, 0)
	}
	c.Profiler.Add("draws", 1)
}

// Submit ends any open pass and submits the encoded work.
func (c *WGPUContext) Submit() error {
	c.endPass()
	if c.encoder == nil {
		return c.err
	}
	cmd, err := c.encoder.Finish(nil)
	c.encoder.Release()
	c.encoder = nil
	c.drawCount = 0
	if err != nil {
		c.fail(fmt.Errorf("failed to finish shadow encoder: %w", err))
		return c.err
	}
	c.Queue.Submit(cmd)
	cmd.Release()
	return c.err
}

// Release frees every device object the context owns.
func (c *WGPUContext) Release() {
	c.Submit()
	for name := range c.targets {
		c.releaseTarget(name)
	}
	for _, p := range c.pipelines {
		p.Release()
	}
	c.pipelines = make(map[float32]*wgpu.RenderPipeline)
	c.drawBindGroup.Release()
	c.drawBuf.Release()
	c.UniformBuf.Release()
	c.MatrixBuf.Release()
	c.pipelineLayout.Release()
	c.bindLayout.Release()
	c.module.Release()
}

func (c *WGPUContext) createTarget(name string, desc TemporaryRT) {
	if old, ok := c.targets[name]; ok {
		if old.Desc == desc {
			return
		}
		c.releaseTarget(name)
	}
	tex, err := c.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         name,
		Size:          wgpu.Extent3D{Width: uint32(desc.Width), Height: uint32(desc.Height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		c.fail(fmt.Errorf("failed to create render target %s: %w", name, err))
		return
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		c.fail(fmt.Errorf("failed to create render target view %s: %w", name, err))
		return
	}
	c.targets[name] = &RenderTarget{ID: uuid.New(), Desc: desc, Texture: tex, View: view}
}

func (c *WGPUContext) releaseTarget(name string) {
	rt, ok := c.targets[name]
	if !ok {
		return
	}
	// Work recorded against the texture must reach the queue first.
	c.Submit()
	rt.View.Release()
	rt.Texture.Release()
	delete(c.targets, name)
}

func (c *WGPUContext) beginPass() bool {
	if c.pass != nil {
		return true
	}
	rt, ok := c.targets[c.State.RenderTarget]
	if !ok {
		c.fail(fmt.Errorf("draw without a live render target %q", c.State.RenderTarget))
		return false
	}
	if c.encoder == nil {
		enc, err := c.Device.CreateCommandEncoder(nil)
		if err != nil {
			c.fail(fmt.Errorf("failed to create shadow encoder: %w", err))
			return false
		}
		c.encoder = enc
	}
	load := wgpu.LoadOpLoad
	if c.pendingClear {
		load = wgpu.LoadOpClear
		c.pendingClear = false
	}
	c.pass = c.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "Shadow Atlas Pass",
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            rt.View,
			DepthLoadOp:     load,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	})
	c.applyViewport()
	return true
}

func (c *WGPUContext) applyViewport() {
	vp := c.State.Viewport
	if vp.Width <= 0 || vp.Height <= 0 {
		return
	}
	c.pass.SetViewport(vp.X, vp.Y, vp.Width, vp.Height, 0, 1)
}

func (c *WGPUContext) endPass() {
	if c.pass == nil {
		return
	}
	if err := c.pass.End(); err != nil {
		c.fail(fmt.Errorf("shadow pass end failed: %w", err))
	}
	c.pass.Release()
	c.pass = nil
}

// pipelineFor returns the depth-only pipeline for a slope-scale bias. WebGPU
// bakes depth bias into the pipeline, so each distinct bias gets a variant.
func (c *WGPUContext) pipelineFor(slopeScaleBias float32) (*wgpu.RenderPipeline, error) {
	if p, ok := c.pipelines[slopeScaleBias]; ok {
		return p, nil
	}
	p, err := c.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("Shadow Caster (slope %.3f)", slopeScaleBias),
		Layout: c.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     c.module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: 12,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				},
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              wgpu.TextureFormatDepth32Float,
			DepthWriteEnabled:   true,
			DepthCompare:        wgpu.CompareFunctionLessEqual,
			DepthBiasSlopeScale: slopeScaleBias,
			StencilFront:        wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:         wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shadow caster pipeline: %w", err)
	}
	c.pipelines[slopeScaleBias] = p
	return p, nil
}

// webGPUDepth remaps GL clip depth [-1,1] to WebGPU's [0,1].
var webGPUDepth = mgl32.Translate3D(0, 0, 0.5).Mul4(mgl32.Scale3D(1, 1, 0.5))

func matrixBytes(m mgl32.Mat4) []byte {
	buf := make([]byte, MatrixSize)
	writeMat(buf, 0, m)
	return buf
}
