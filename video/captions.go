package video

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"os"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// CaptionStyle controls how caption bitmaps are rendered.
type CaptionStyle struct {
	MaxWidth int   // wrap width and minimum box width, in pixels
	FontSize int   // glyph size in points
	Padding  int   // box padding around the text block
	BGAlpha  uint8 // background box opacity
}

// fontPaths are tried in order for the caption typeface. Missing fonts are
// not an error; rendering falls back to a built-in bitmap face.
var fontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
}

var (
	faceOnce   sync.Once
	cachedFace font.Face
)

// captionFace returns the caption typeface, loading it once. Every failure
// path ends at the built-in face so a missing font can never fail a run.
func captionFace(size int) font.Face {
	faceOnce.Do(func() {
		for _, path := range fontPaths {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			parsed, err := opentype.Parse(data)
			if err != nil {
				continue
			}
			face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
				Size:    float64(size),
				DPI:     72,
				Hinting: font.HintingFull,
			})
			if err != nil {
				continue
			}
			cachedFace = face
			return
		}
		log.Println("[video] no TTF font found, using built-in bitmap face")
		cachedFace = basicfont.Face7x13
	})
	return cachedFace
}

// RenderCaption rasterizes one caption: text wrapped to the style's width,
// centered line by line, white glyphs with a black outline on a
// semi-transparent box. The bitmap is sized to its wrapped content, never
// narrower than the configured minimum.
func RenderCaption(text string, style CaptionStyle) *image.RGBA {
	face := captionFace(style.FontSize)
	lines := wrapText(face, text, style.MaxWidth)

	metrics := face.Metrics()
	lineHeight := (metrics.Ascent + metrics.Descent).Ceil() + 6

	textWidth := 0
	for _, line := range lines {
		if w := measureString(face, line); w > textWidth {
			textWidth = w
		}
	}

	boxWidth := textWidth + style.Padding*2
	if minWidth := style.MaxWidth + style.Padding*2; boxWidth < minWidth {
		boxWidth = minWidth
	}
	boxHeight := lineHeight*max(len(lines), 1) + style.Padding*2

	img := image.NewRGBA(image.Rect(0, 0, boxWidth, boxHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{0, 0, 0, style.BGAlpha}), image.Point{}, draw.Src)

	white := image.NewUniform(color.NRGBA{255, 255, 255, 255})
	black := image.NewUniform(color.NRGBA{0, 0, 0, 255})

	y := style.Padding + metrics.Ascent.Ceil()
	for _, line := range lines {
		x := (boxWidth - measureString(face, line)) / 2
		// Outline: draw the line at eight one-pixel offsets.
		for _, off := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}, {-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
			drawString(img, face, black, line, x+off[0], y+off[1])
		}
		drawString(img, face, white, line, x, y)
		y += lineHeight
	}
	return img
}

// wrapText greedily packs words into lines no wider than maxWidth. A single
// word wider than maxWidth gets its own line rather than being split.
func wrapText(face font.Face, text string, maxWidth int) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			continue
		}
		line := ""
		for _, word := range words {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if measureString(face, candidate) <= maxWidth || line == "" {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = word
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func measureString(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

func drawString(dst *image.RGBA, face font.Face, src image.Image, s string, x, y int) {
	d := font.Drawer{
		Dst:  dst,
		Src:  src,
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func writePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
