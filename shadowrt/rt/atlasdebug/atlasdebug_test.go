package atlasdebug

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/celshade/shadowrt/rt/atlas"
	"github.com/gekko3d/celshade/shadowrt/rt/gpu"
)

func drawAt(layout atlas.Layout, tile, light int) gpu.DrawCall {
	return gpu.DrawCall{
		Settings: gpu.ShadowDrawingSettings{VisibleLightIndex: light},
		Viewport: layout.Viewport(tile),
	}
}

func TestCaptureGroupsDrawsByTile(t *testing.T) {
	layout := atlas.NewLayout(1024, 3)
	draws := []gpu.DrawCall{
		drawAt(layout, 2, 7),
		drawAt(layout, 0, 4),
		drawAt(layout, 0, 5),
	}

	snap := Capture(layout, draws)

	require.Len(t, snap.Tiles, 2)
	assert.Equal(t, 0, snap.Tiles[0].Index)
	assert.Equal(t, 5, snap.Tiles[0].Light)
	assert.Equal(t, 2, snap.Tiles[0].Draws)
	assert.Equal(t, 2, snap.Tiles[1].Index)
	assert.Equal(t, atlas.Viewport{X: 0, Y: 512, Width: 512, Height: 512}, snap.Tiles[1].Viewport)
}

func TestRenderTintsTiles(t *testing.T) {
	r, err := NewRenderer(256, 12)
	require.NoError(t, err)
	layout := atlas.NewLayout(1024, 3)
	snap := Capture(layout, []gpu.DrawCall{drawAt(layout, 0, 1), drawAt(layout, 1, 2), drawAt(layout, 2, 3)})

	img := r.Render(snap, nil)

	require.Equal(t, image.Rect(0, 0, 256, 256), img.Bounds())
	// Bottom right of each tile is clear of the label.
	assert.Equal(t, LightColor(1), img.RGBAAt(120, 120))
	assert.Equal(t, LightColor(2), img.RGBAAt(250, 120))
	assert.Equal(t, LightColor(3), img.RGBAAt(120, 250))
	assert.Equal(t, background, img.RGBAAt(250, 250), "tile 3 was never drawn")

	labelled := false
	for y := 0; y < 20 && !labelled; y++ {
		for x := 0; x < 60; x++ {
			if img.RGBAAt(x, y) == labelColor {
				labelled = true
				break
			}
		}
	}
	assert.True(t, labelled)
}

func TestRenderScalesDepthUnderTiles(t *testing.T) {
	r, err := NewRenderer(64, 8)
	require.NoError(t, err)
	depth := image.NewGray(image.Rect(0, 0, 512, 512))
	for i := range depth.Pix {
		depth.Pix[i] = 0x40
	}
	layout := atlas.NewLayout(512, 2)

	img := r.Render(Capture(layout, []gpu.DrawCall{drawAt(layout, 0, 0)}), depth)

	assert.Equal(t, color.RGBA{0x40, 0x40, 0x40, 0xff}, img.RGBAAt(60, 60))
	assert.NotEqual(t, color.RGBA{0x40, 0x40, 0x40, 0xff}, img.RGBAAt(28, 28))
}

func TestNewRendererRejectsEmptySize(t *testing.T) {
	_, err := NewRenderer(0, 12)
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.SetRGBA(3, 3, LightColor(0))

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, FormatPNG))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	buf.Reset()
	require.NoError(t, Encode(&buf, img, FormatWebP))
	require.Greater(t, buf.Len(), 12)
	assert.Equal(t, "RIFF", string(buf.Bytes()[0:4]))
	assert.Equal(t, "WEBP", string(buf.Bytes()[8:12]))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump", "atlas.webp")
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))

	require.NoError(t, WriteFile(path, img))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data[0:4]))

	assert.Equal(t, FormatPNG, FormatForPath("out.PNG"))
	assert.Equal(t, FormatWebP, FormatForPath("out.WebP"))
	assert.Equal(t, FormatPNG, FormatForPath("out"))
}
