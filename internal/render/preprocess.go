package render

import (
	"image"

	"github.com/disintegration/imaging"
)

// Preprocess applies the fixed OCR-oriented chain: grayscale, contrast
// stretch, sharpen, 1.3x upscale. The chain is deliberately not
// configurable; it exists only to raise OCR token confidence.
func Preprocess(img image.Image) image.Image {
	g := imaging.Grayscale(img)
	g = autocontrast(g)
	g = imaging.Sharpen(g, 1.0)
	w := int(float64(g.Bounds().Dx()) * 1.3)
	h := int(float64(g.Bounds().Dy()) * 1.3)
	return imaging.Resize(g, w, h, imaging.Lanczos)
}

// autocontrast linearly stretches the grayscale histogram to the full 0-255
// range. imaging has no histogram-stretch primitive, so this is done by hand
// on the NRGBA buffer Grayscale returns.
func autocontrast(img *image.NRGBA) *image.NRGBA {
	lo, hi := uint8(255), uint8(0)
	pix := img.Pix
	for i := 0; i < len(pix); i += 4 {
		v := pix[i] // grayscale: R == G == B
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi <= lo {
		return img
	}

	out := imaging.Clone(img)
	scale := 255.0 / float64(hi-lo)
	for i := 0; i < len(out.Pix); i += 4 {
		v := uint8(float64(out.Pix[i]-lo) * scale)
		out.Pix[i], out.Pix[i+1], out.Pix[i+2] = v, v, v
	}
	return out
}
