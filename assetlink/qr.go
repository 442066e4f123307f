// Package assetlink renders the QR codes printed on machine, job and part
// tags. Each code encodes the absolute URL of the item's page.
package assetlink

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// QuietZone is the blank margin around the code, in modules.
const QuietZone = 4

var ErrEmptyURL = errors.New("assetlink: empty url")

// modules 编码后的黑白矩阵（不含静区）
func modules(url string) (barcode.Barcode, int, error) {
	if strings.TrimSpace(url) == "" {
		return nil, 0, ErrEmptyURL
	}
	code, err := qr.Encode(url, qr.M, qr.Auto)
	if err != nil {
		return nil, 0, fmt.Errorf("assetlink: encode: %w", err)
	}
	return code, code.Bounds().Dx(), nil
}

func dark(c color.Color) bool {
	return color.GrayModel.Convert(c).(color.Gray).Y < 128
}

// SVG renders url as a scalable QR code. Every dark module becomes one unit
// square in the viewBox, so the caller picks the printed size.
func SVG(url string) ([]byte, error) {
	code, dim, err := modules(url)
	if err != nil {
		return nil, err
	}
	size := dim + 2*QuietZone

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" shape-rendering="crispEdges">`, size, size)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#fff"/>`, size, size)
	b.WriteString(`<path fill="#000" d="`)
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			if dark(code.At(x, y)) {
				fmt.Fprintf(&b, "M%d %dh1v1h-1z", x+QuietZone, y+QuietZone)
			}
		}
	}
	b.WriteString(`"/></svg>`)
	return []byte(b.String()), nil
}

// PNG renders url as a raster label roughly size pixels wide. Modules are
// scaled by a whole number so edges stay sharp; the result is never smaller
// than one pixel per module.
func PNG(url string, size int) ([]byte, error) {
	code, dim, err := modules(url)
	if err != nil {
		return nil, err
	}
	total := dim + 2*QuietZone
	scale := max(size/total, 1)

	img := image.NewPaletted(image.Rect(0, 0, total*scale, total*scale),
		color.Palette{color.White, color.Black})
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			if !dark(code.At(x, y)) {
				continue
			}
			px, py := (x+QuietZone)*scale, (y+QuietZone)*scale
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.SetColorIndex(px+dx, py+dy, 1)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("assetlink: png: %w", err)
	}
	return buf.Bytes(), nil
}

// URL joins the public origin and an item path, e.g. URL(origin, "rental", 7).
func URL(origin, kind string, id uint) string {
	return fmt.Sprintf("%s/%s/%d", strings.TrimRight(origin, "/"), kind, id)
}
