package printer

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

// RasterizeLogo downsamples img to fit dotWidth (the target printer's dot
// columns) preserving aspect ratio, and re-encodes it so it can be embedded
// in a Job's Logo field. Images already narrower than dotWidth pass through
// unresized (spec §4.5: logo rasterization).
func RasterizeLogo(img image.Image, dotWidth int) ([]byte, error) {
	resized := img
	if dotWidth > 0 && img.Bounds().Dx() > dotWidth {
		resized = imaging.Resize(img, dotWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
