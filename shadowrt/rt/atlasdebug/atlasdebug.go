// Package atlasdebug turns a recorded shadow frame into an image of the
// atlas layout: one tinted cell per drawn tile, labelled with the light
// that owns it.
package atlasdebug

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gekko3d/celshade/shadowrt/rt/atlas"
	"github.com/gekko3d/celshade/shadowrt/rt/gpu"
)

// Tile is one atlas cell that received at least one draw.
type Tile struct {
	Index    int
	Viewport atlas.Viewport
	// Light is the visible light index of the last draw into the tile.
	Light int
	Draws int
}

// Snapshot is the atlas layout of one frame.
type Snapshot struct {
	Layout atlas.Layout
	Tiles  []Tile
}

// Capture groups draws by the tile their viewport selects. Point lights
// draw every face into the same tiles, so a tile can collect several draws.
func Capture(layout atlas.Layout, draws []gpu.DrawCall) Snapshot {
	snap := Snapshot{Layout: layout}
	if layout.TileSize <= 0 {
		return snap
	}
	byIndex := make(map[int]*Tile)
	for _, d := range draws {
		x := int(d.Viewport.X) / layout.TileSize
		y := int(d.Viewport.Y) / layout.TileSize
		index := y*layout.Split + x
		t, ok := byIndex[index]
		if !ok {
			t = &Tile{Index: index, Viewport: d.Viewport}
			byIndex[index] = t
		}
		t.Light = d.Settings.VisibleLightIndex
		t.Draws++
	}
	for _, t := range byIndex {
		snap.Tiles = append(snap.Tiles, *t)
	}
	sort.Slice(snap.Tiles, func(i, j int) bool {
		return snap.Tiles[i].Index < snap.Tiles[j].Index
	})
	return snap
}

var palette = []color.RGBA{
	{0xe6, 0x4b, 0x3c, 0xff},
	{0x2e, 0xcc, 0x71, 0xff},
	{0x34, 0x98, 0xdb, 0xff},
	{0xf1, 0xc4, 0x0f, 0xff},
	{0x9b, 0x59, 0xb6, 0xff},
	{0x1a, 0xbc, 0x9c, 0xff},
	{0xe6, 0x7e, 0x22, 0xff},
	{0xec, 0xf0, 0xf1, 0xff},
}

var (
	background = color.RGBA{0x10, 0x10, 0x14, 0xff}
	labelColor = color.RGBA{0xff, 0xff, 0xff, 0xff}
	gridColor  = color.RGBA{0x00, 0x00, 0x00, 0xff}
)

// LightColor is the tint used for tiles of a visible light.
func LightColor(light int) color.RGBA {
	if light < 0 {
		light = -light
	}
	return palette[light%len(palette)]
}

type Renderer struct {
	// Size is the edge length of rendered images in pixels.
	Size int
	face font.Face
}

func NewRenderer(size int, fontSize float64) (*Renderer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid image size %d", size)
	}
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}
	return &Renderer{Size: size, face: face}, nil
}

// Render draws the snapshot. depth, if not nil, is an atlas readback scaled
// underneath the tiles; the tiles are then blended over it.
func (r *Renderer) Render(s Snapshot, depth image.Image) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, r.Size, r.Size))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)
	if depth != nil {
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), depth, depth.Bounds(), draw.Src, nil)
	}
	if s.Layout.AtlasSize <= 0 {
		return dst
	}

	scale := float32(r.Size) / float32(s.Layout.AtlasSize)
	for _, t := range s.Tiles {
		rect := image.Rect(
			int(t.Viewport.X*scale),
			int(t.Viewport.Y*scale),
			int((t.Viewport.X+t.Viewport.Width)*scale),
			int((t.Viewport.Y+t.Viewport.Height)*scale),
		).Intersect(dst.Bounds())
		if rect.Empty() {
			continue
		}
		tint := LightColor(t.Light)
		fill := tint
		if depth != nil {
			fill = color.RGBA{tint.R / 2, tint.G / 2, tint.B / 2, 0x80}
		}
		draw.Draw(dst, rect, &image.Uniform{C: fill}, image.Point{}, draw.Over)
		r.outline(dst, rect)
		r.label(dst, rect, fmt.Sprintf("L%d T%d", t.Light, t.Index))
		if t.Draws > 1 {
			r.labelAt(dst, rect, 2, fmt.Sprintf("x%d", t.Draws))
		}
	}
	return dst
}

func (r *Renderer) outline(dst *image.RGBA, rect image.Rectangle) {
	g := &image.Uniform{C: gridColor}
	draw.Draw(dst, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+1), g, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+1, rect.Max.Y), g, image.Point{}, draw.Src)
}

func (r *Renderer) label(dst *image.RGBA, rect image.Rectangle, text string) {
	r.labelAt(dst, rect, 1, text)
}

// labelAt writes text on the given line of the tile, clipped to the tile.
func (r *Renderer) labelAt(dst *image.RGBA, rect image.Rectangle, line int, text string) {
	m := r.face.Metrics()
	clip, ok := dst.SubImage(rect).(*image.RGBA)
	if !ok {
		return
	}
	d := &font.Drawer{
		Dst:  clip,
		Src:  &image.Uniform{C: labelColor},
		Face: r.face,
		Dot: fixed.Point26_6{
			X: fixed.I(rect.Min.X + 4),
			Y: fixed.I(rect.Min.Y+2) + m.Ascent + m.Height.Mul(fixed.I(line-1)),
		},
	}
	d.DrawString(text)
}
