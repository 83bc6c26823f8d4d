package render

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"os"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"adforge/config"
	"adforge/media"
	"adforge/script"
	"adforge/types"
)

// Compositor renders one frame per scene: the scene's background image
// letterboxed onto a black canvas with the caption drawn over a
// semi-transparent panel.
type Compositor struct {
	width    int
	height   int
	fontPath string
	fontSize float64
}

// NewCompositor creates a Compositor using the fixed canvas parameters.
// fontPath may point at any TTF; when it cannot be loaded the caption is
// drawn with the built-in bitmap face instead.
func NewCompositor(fontPath string) *Compositor {
	return &Compositor{
		width:    config.CanvasWidth,
		height:   config.CanvasHeight,
		fontPath: fontPath,
		fontSize: config.CaptionFontSize,
	}
}

// Compose produces the frame for one scene. Composition never fails the
// render: any error degrades to a plain dark frame carrying the same
// caption through the simplified text path.
func (c *Compositor) Compose(scene script.Scene, idx int, assets *types.MediaAssetSet) image.Image {
	frame, err := c.composeRich(scene, c.backgroundPath(idx, assets.Images))
	if err != nil {
		log.Printf("Scene %d composition failed, using plain frame: %v", idx, err)
		return c.plainFrame(scene.Caption)
	}
	return frame
}

// backgroundPath selects the scene's background image, cycling through the
// available images when there are fewer images than scenes.
func (c *Compositor) backgroundPath(idx int, images []string) string {
	if len(images) == 0 {
		return ""
	}
	return images[idx%len(images)]
}

func (c *Compositor) composeRich(scene script.Scene, imagePath string) (image.Image, error) {
	if imagePath == "" {
		return nil, fmt.Errorf("no background image available")
	}

	f, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("open background %s: %w", imagePath, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode background %s: %w", imagePath, err)
	}

	canvas := media.NewSolidFrame(c.width, c.height, color.RGBA{A: 255})
	c.letterbox(canvas, src)

	if scene.Caption != "" {
		if err := c.drawCaption(canvas, scene.Caption); err != nil {
			return nil, fmt.Errorf("draw caption: %w", err)
		}
	}
	return canvas, nil
}

// letterbox scales src to fit the canvas preserving aspect ratio and
// centers it. The image is never cropped; the uncovered canvas stays black.
func (c *Compositor) letterbox(canvas *image.RGBA, src image.Image) {
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return
	}

	scaleX := float64(c.width) / float64(sb.Dx())
	scaleY := float64(c.height) / float64(sb.Dy())
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}

	dw := int(float64(sb.Dx()) * scale)
	dh := int(float64(sb.Dy()) * scale)
	x := (c.width - dw) / 2
	y := (c.height - dh) / 2

	dst := image.Rect(x, y, x+dw, y+dh)
	draw.CatmullRom.Scale(canvas, dst, src, sb, draw.Over, nil)
}

// drawCaption word-wraps the caption, paints a semi-transparent panel
// sized to the wrapped block at the bottom of the frame, and draws each
// line centered inside it.
func (c *Compositor) drawCaption(canvas *image.RGBA, caption string) error {
	dc := gg.NewContextForRGBA(canvas)
	if err := dc.LoadFontFace(c.fontPath, c.fontSize); err != nil {
		return fmt.Errorf("load font %s: %w", c.fontPath, err)
	}

	maxTextWidth := float64(c.width - 2*config.CaptionPaddingX)
	lines := dc.WordWrap(caption, maxTextWidth)
	if len(lines) == 0 {
		return nil
	}

	lineHeight := c.fontSize * config.CaptionLineGap
	blockWidth := 0.0
	for _, line := range lines {
		w, _ := dc.MeasureString(line)
		if w > blockWidth {
			blockWidth = w
		}
	}

	panelW := blockWidth + 2*config.CaptionPaddingY
	panelH := lineHeight*float64(len(lines)) + 2*config.CaptionPaddingY
	panelX := (float64(c.width) - panelW) / 2
	panelY := float64(c.height) - panelH - float64(config.CaptionPaddingX)/2

	dc.SetRGBA(0, 0, 0, config.CaptionPanelAlpha)
	dc.DrawRectangle(panelX, panelY, panelW, panelH)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	for i, line := range lines {
		y := panelY + config.CaptionPaddingY + lineHeight*(float64(i)+0.5)
		dc.DrawStringAnchored(line, float64(c.width)/2, y, 0.5, 0.5)
	}
	return nil
}

// plainFrame is the degraded path: a uniform dark frame with the caption
// drawn in the built-in bitmap face.
func (c *Compositor) plainFrame(caption string) image.Image {
	frame := media.NewSolidFrame(c.width, c.height, color.RGBA{R: 16, G: 16, B: 24, A: 255})
	if caption == "" {
		return frame
	}

	face := basicfont.Face7x13
	width := font.MeasureString(face, caption).Ceil()
	d := &font.Drawer{
		Dst:  frame,
		Src:  image.White,
		Face: face,
		Dot: fixed.P(
			(c.width-width)/2,
			c.height-config.CaptionPaddingX/2,
		),
	}
	d.DrawString(caption)
	return frame
}
