package ocr

import (
	"context"
	"image"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
)

// DefaultAnchor matches the prompt lines that typically precede an embedded
// staffing table screenshot.
var DefaultAnchor = regexp.MustCompile(`(?i)insert\s+screen\s+shot|resource\s+table|staff\s*plan`)

// CropBelowAnchor OCRs the image once to locate an anchor phrase and crops to
// the region below the topmost match plus a small margin, narrowing the
// signal when a table follows boilerplate. With no anchor found it keeps the
// lower 60% of the image. Best-effort: any OCR failure returns the input
// unchanged.
func (e *Engine) CropBelowAnchor(ctx context.Context, img image.Image, anchor *regexp.Regexp) image.Image {
	if anchor == nil {
		anchor = DefaultAnchor
	}
	tokens, err := e.Tokens(ctx, img)
	if err != nil {
		return img
	}

	bounds := img.Bounds()
	height := bounds.Dy()

	// Anchor phrases span several words, so match against whole lines.
	type lineAgg struct {
		words []string
		top   int
	}
	byLine := make(map[LineKey]*lineAgg)
	for _, t := range tokens {
		agg, ok := byLine[t.Key()]
		if !ok {
			agg = &lineAgg{top: t.Top}
			byLine[t.Key()] = agg
		}
		agg.words = append(agg.words, t.Text)
		if t.Top < agg.top {
			agg.top = t.Top
		}
	}

	minTop := -1
	for _, agg := range byLine {
		if !anchor.MatchString(strings.Join(agg.words, " ")) {
			continue
		}
		if minTop == -1 || agg.top < minTop {
			minTop = agg.top
		}
	}

	var top int
	if minTop == -1 {
		top = int(float64(height) * 0.4)
	} else {
		top = minTop + int(float64(height)*0.05)
	}
	if top < 0 {
		top = 0
	}
	if top >= height {
		return img
	}
	return imaging.Crop(img, image.Rect(bounds.Min.X, bounds.Min.Y+top, bounds.Max.X, bounds.Max.Y))
}
