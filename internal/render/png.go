package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"

	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
)

// Snapshot reads surface id back from dev and renders it.
func Snapshot(dev compute.Device, id compute.SurfaceID, size core.Size, on, off color.Color) (*image.RGBA, error) {
	raw := make([]byte, size.Cells()*4)
	if err := dev.ReadSurface(id, raw); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return Image(size.W, size.H, raw, on, off), nil
}

// WritePNG encodes img scaled up by an integer factor with nearest-neighbour
// sampling so cells stay crisp.
func WritePNG(w io.Writer, img image.Image, scale int) error {
	if scale > 1 {
		b := img.Bounds()
		dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		img = dst
	}
	return png.Encode(w, img)
}
