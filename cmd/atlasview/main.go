package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/celshade"
	"github.com/gekko3d/celshade/shadowrt/rt/atlasdebug"
	"github.com/gekko3d/celshade/shadowrt/rt/core"
	"github.com/gekko3d/celshade/shadowrt/rt/culling"
	"github.com/gekko3d/celshade/shadowrt/rt/gpu"
	"github.com/gekko3d/celshade/shadowrt/rt/shaders"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "", "Pipeline asset YAML (defaults when empty)")
	outPath := flag.String("out", "atlas.png", "Where P writes the atlas layout dump")
	webp := flag.Bool("webp", false, "Dump as WebP instead of PNG")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	asset := celshade.DefaultPipelineAsset()
	if *configPath != "" {
		var err error
		asset, err = celshade.LoadPipelineAsset(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "atlasview: %v\n", err)
			os.Exit(1)
		}
	}
	if *webp {
		*outPath = strings.TrimSuffix(*outPath, filepath.Ext(*outPath)) + ".webp"
	}

	if err := glfw.Init(); err != nil {
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(1024, 1024, "Shadow Atlas", nil, nil)
	if err != nil {
		panic(err)
	}
	defer window.Destroy()

	v, err := newViewer(window, asset, *outPath, *debug)
	if err != nil {
		panic(err)
	}
	defer v.release()

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		v.resize(width, height)
	})
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeyP:
			v.ctx.armed = true
		}
	})

	v.app.Run(func() bool {
		glfw.PollEvents()
		return !window.ShouldClose()
	})
}

// viewer renders the demo scene's shadow atlas every frame and blits it to
// the window.
type viewer struct {
	app    *celshade.App
	log    celshade.Logger
	scene  *culling.Scene
	frame  *celshade.ShadowFrame
	out    string
	dumper *atlasdebug.Renderer

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	config   *wgpu.SurfaceConfiguration
	blit     *wgpu.RenderPipeline

	shadow *gpu.WGPUContext
	ctx    *dumpContext
	boxes  *boxSource
}

func newViewer(window *glfw.Window, asset celshade.PipelineAsset, out string, debug bool) (*viewer, error) {
	v := &viewer{out: out}

	v.instance = wgpu.CreateInstance(nil)
	v.surface = v.instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(window))

	var err error
	v.adapter, err = v.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: v.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, err
	}
	v.device, err = v.adapter.RequestDevice(nil)
	if err != nil {
		return nil, err
	}
	v.queue = v.device.GetQueue()

	width, height := window.GetFramebufferSize()
	caps := v.surface.GetCapabilities(v.adapter)
	format := caps.Formats[0]
	v.config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	v.surface.Configure(v.adapter, v.device, v.config)

	previewModule, err := v.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Atlas Preview",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.AtlasPreviewWGSL},
	})
	if err != nil {
		return nil, err
	}
	defer previewModule.Release()

	v.blit, err = v.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Atlas Preview Pipeline",
		Vertex: wgpu.VertexState{
			Module:     previewModule,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     previewModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, err
	}

	v.scene = demoScene()
	v.boxes, err = newBoxSource(v.device, v.scene.Casters)
	if err != nil {
		return nil, err
	}
	v.shadow, err = gpu.NewWGPUContext(v.device, v.boxes)
	if err != nil {
		return nil, err
	}
	v.ctx = &dumpContext{RenderContext: v.shadow, rec: gpu.NewRecorder()}

	v.dumper, err = atlasdebug.NewRenderer(1024, 14)
	if err != nil {
		return nil, err
	}

	v.app = celshade.NewAppBuilder().
		UseModule(
			celshade.LoggingModule{Prefix: "atlasview", Debug: debug},
			celshade.TimeModule{},
			celshade.ShadowsModule{Asset: asset},
			viewerModule{v: v},
		).
		Build()
	v.log = v.app.Logger()
	v.frame, _ = celshade.Resource[celshade.ShadowFrame](v.app)
	v.frame.Context = v.ctx
	v.frame.Scene = v.scene
	return v, nil
}

func (v *viewer) resize(width, height int) {
	if width == 0 || height == 0 {
		return
	}
	v.config.Width = uint32(width)
	v.config.Height = uint32(height)
	v.surface.Configure(v.adapter, v.device, v.config)
}

func (v *viewer) release() {
	v.shadow.Release()
	v.boxes.release()
	v.blit.Release()
	v.queue.Release()
	v.device.Release()
	v.adapter.Release()
	v.surface.Release()
	v.instance.Release()
}

// viewerModule animates the scene before the shadows render and presents
// the atlas before it is released.
type viewerModule struct {
	v *viewer
}

func (m viewerModule) Install(app *celshade.App) {
	app.UseSystem(celshade.System(m.v.animate).InStage(celshade.PreRender))
	app.UseSystem(celshade.System(m.v.present).InStage(celshade.Render))
	app.UseSystem(celshade.System(m.v.dump).InStage(celshade.Finale))
}

func (v *viewer) animate(clock *celshade.Time) {
	angle := float32(clock.Seconds() * 0.3)
	sun := mgl32.Rotate3DY(angle).Mul3x1(mgl32.Vec3{-0.4, -1, -0.3})
	v.scene.Lights[0].Direction = sun
}

func (v *viewer) present() {
	if err := v.shadow.Submit(); err != nil {
		v.log.Errorf("shadow submit failed: %v", err)
		return
	}
	atlasRT, ok := v.shadow.Target(shaders.DirectionalShadowAtlas)
	if !ok {
		return
	}

	next, err := v.surface.GetCurrentTexture()
	if err != nil {
		v.log.Errorf("GetCurrentTexture failed: %v", err)
		return
	}
	defer next.Release()
	view, err := next.CreateView(nil)
	if err != nil {
		v.log.Errorf("CreateView failed: %v", err)
		return
	}
	defer view.Release()

	bg, err := v.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: v.blit.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: atlasRT.View},
		},
	})
	if err != nil {
		v.log.Errorf("atlas preview bind group failed: %v", err)
		return
	}
	defer bg.Release()

	encoder, err := v.device.CreateCommandEncoder(nil)
	if err != nil {
		v.log.Errorf("CreateCommandEncoder failed: %v", err)
		return
	}
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	pass.SetPipeline(v.blit)
	pass.SetBindGroup(0, bg, nil)
	pass.Draw(3, 1, 0, 0)
	if err := pass.End(); err != nil {
		v.log.Errorf("preview pass end failed: %v", err)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		v.log.Errorf("encoder finish failed: %v", err)
		return
	}
	v.queue.Submit(cmd)
	v.surface.Present()
}

func (v *viewer) dump() {
	if !v.ctx.recording {
		return
	}
	v.ctx.recording = false
	defer v.ctx.rec.Reset()

	snap := atlasdebug.Capture(v.frame.Shadows.Layout, v.ctx.rec.Draws)
	img := v.dumper.Render(snap, nil)
	if err := atlasdebug.WriteFile(v.out, img); err != nil {
		v.log.Errorf("atlas dump failed: %v", err)
		return
	}
	v.log.Infof("atlas dump: %d tiles of %d written to %s", len(snap.Tiles), snap.Layout.Tiles, v.out)
	v.log.Infof("%s", v.shadow.Profiler.GetStatsString())
}

// dumpContext forwards to the device and, for one frame after P is
// pressed, mirrors everything into a Recorder.
type dumpContext struct {
	gpu.RenderContext
	rec       *gpu.Recorder
	armed     bool
	recording bool
}

func (c *dumpContext) ExecuteCommandBuffer(buf *gpu.CommandBuffer) {
	if c.armed && !c.recording && startsFrame(buf) {
		c.armed = false
		c.recording = true
	}
	if c.recording {
		c.rec.ExecuteCommandBuffer(buf)
	}
	c.RenderContext.ExecuteCommandBuffer(buf)
}

func (c *dumpContext) DrawShadows(settings *gpu.ShadowDrawingSettings) {
	if c.recording {
		c.rec.DrawShadows(settings)
	}
	c.RenderContext.DrawShadows(settings)
}

func startsFrame(buf *gpu.CommandBuffer) bool {
	for _, cmd := range buf.Commands() {
		if cmd.Kind == gpu.CmdGetTemporaryRT {
			return true
		}
	}
	return false
}

func demoScene() *culling.Scene {
	sun := celshade.DefaultDirectionalLight()
	lamp := celshade.LightComponent{
		Type:             core.LightTypePoint,
		Color:            [3]float32{1, 0.8, 0.6},
		Intensity:        4,
		Range:            12,
		Position:         mgl32.Vec3{2, 5, 0},
		Shadows:          core.ShadowModeSoft,
		ShadowStrength:   0.8,
		ShadowBias:       1,
		ShadowNormalBias: 0.2,
		ShadowNearPlane:  0.1,
	}
	fill := celshade.DefaultDirectionalLight()
	fill.Direction = mgl32.Vec3{0.6, -0.8, 0.2}
	fill.ShadowStrength = 0.4

	var casters []core.Bounds
	casters = append(casters, core.Bounds{Min: mgl32.Vec3{-20, -1, -20}, Max: mgl32.Vec3{20, 0, 20}})
	for i := 0; i < 5; i++ {
		x := float32(i*4 - 8)
		h := float32(1 + i)
		casters = append(casters, core.Bounds{Min: mgl32.Vec3{x - 1, 0, -1}, Max: mgl32.Vec3{x + 1, h, 1}})
	}

	return &culling.Scene{
		Camera: culling.Camera{
			View: mgl32.LookAtV(mgl32.Vec3{0, 6, 18}, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, 0}),
			Proj: mgl32.Perspective(mgl32.DegToRad(60), 1, 0.3, 300),
			Near: 0.3,
			Far:  300,
		},
		Lights:  celshade.VisibleLights([]celshade.LightComponent{sun, lamp, fill}),
		Casters: casters,
	}
}
