package tui

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/charmbracelet/lipgloss"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// upperHalfBlock paints the top pixel with the foreground and the bottom
// pixel with the background, so one cell holds two pixel rows.
const upperHalfBlock = "▀"

func decodePoster(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode poster: %w", err)
	}
	return img, nil
}

// renderPoster draws img into at most cols x rows terminal cells, keeping
// its aspect ratio.
func renderPoster(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	w, h := fitSize(img.Bounds().Dx(), img.Bounds().Dy(), cols, rows*2)
	if w == 0 || h == 0 {
		return ""
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	lines := make([]string, 0, (h+1)/2)
	for y := 0; y < h; y += 2 {
		var b strings.Builder
		for x := 0; x < w; x++ {
			style := lipgloss.NewStyle().Foreground(hexColor(dst.RGBAAt(x, y)))
			if y+1 < h {
				style = style.Background(hexColor(dst.RGBAAt(x, y+1)))
			}
			b.WriteString(style.Render(upperHalfBlock))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

func fitSize(srcW, srcH, maxW, maxH int) (int, int) {
	if srcW <= 0 || srcH <= 0 || maxW <= 0 || maxH <= 0 {
		return 0, 0
	}
	w := maxW
	h := srcH * maxW / srcW
	if h > maxH {
		h = maxH
		w = srcW * maxH / srcH
	}
	return max(w, 1), max(h, 1)
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
