// Package layout reconstructs pseudo-tabular rows from positioned OCR
// tokens. OCR engines do not preserve column structure, so column boundaries
// are inferred from horizontal gaps; the functions here are pure and operate
// on token slices only, so they can be exercised with synthetic tokens.
package layout

import (
	"regexp"
	"sort"
	"strings"

	"github.com/staffingtools/sow-extractor/internal/ocr"
)

// Options are the tuning knobs of gap-based reconstruction. The defaults are
// empirically tuned values carried over unchanged from the source data set;
// there is no ground-truth benchmark to justify re-deriving them.
type Options struct {
	ConfidenceFloor float64 // drop tokens below this OCR confidence
	MinGapPx        int     // absolute floor for the column-break gap
	GapCharFactor   float64 // gap threshold in multiples of avg char width
}

// DefaultOptions returns the tuned reconstruction parameters.
func DefaultOptions() Options {
	return Options{
		ConfidenceFloor: ocr.ConfidenceFloor,
		MinGapPx:        18,
		GapCharFactor:   16,
	}
}

var (
	reTabularKeyword = regexp.MustCompile(`(?i)(name|title|role|level|hours|%|fte|allocation|rate|salary|location|billable|per\s*annum)`)
	reBareNumber     = regexp.MustCompile(`\b\d{1,4}\b`)
)

// ReconstructLines groups tokens into visual lines and rebuilds each line
// with "|" separators at inferred column boundaries. Lines that look like
// neither a table header nor a data row (no tabular keyword and no 1-4 digit
// number) are discarded as OCR noise.
func ReconstructLines(tokens []ocr.Token, opts Options) []string {
	lines := groupLines(tokens, opts.ConfidenceFloor)

	out := make([]string, 0, len(lines))
	for _, words := range lines {
		line := joinWithGaps(words, opts)
		if reTabularKeyword.MatchString(line) || reBareNumber.MatchString(line) {
			out = append(out, line)
		}
	}
	return out
}

// groupLines buckets tokens by visual line, ordered by block then vertical
// position, with tokens inside a line ordered left to right.
func groupLines(tokens []ocr.Token, floor float64) [][]ocr.Token {
	byKey := make(map[ocr.LineKey][]ocr.Token)
	for _, t := range tokens {
		if t.Conf < floor || t.Text == "" {
			continue
		}
		byKey[t.Key()] = append(byKey[t.Key()], t)
	}

	type keyed struct {
		key   ocr.LineKey
		top   int
		words []ocr.Token
	}
	lines := make([]keyed, 0, len(byKey))
	for k, words := range byKey {
		sort.Slice(words, func(i, j int) bool { return words[i].Left < words[j].Left })
		top := words[0].Top
		for _, w := range words {
			if w.Top < top {
				top = w.Top
			}
		}
		lines = append(lines, keyed{key: k, top: top, words: words})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].key.Block != lines[j].key.Block {
			return lines[i].key.Block < lines[j].key.Block
		}
		return lines[i].top < lines[j].top
	})

	out := make([][]ocr.Token, len(lines))
	for i, ln := range lines {
		out[i] = ln.words
	}
	return out
}

// joinWithGaps walks a line's tokens left to right and emits a column
// separator whenever the gap since the previous token's right edge exceeds
// the dynamic threshold. The threshold scales with the line's average
// character width so dense and sparse tables both reconstruct.
func joinWithGaps(words []ocr.Token, opts Options) string {
	if len(words) == 0 {
		return ""
	}

	joined := make([]string, len(words))
	var widthSum, widthCount float64
	for i, w := range words {
		joined[i] = w.Text
		if w.Width > 0 {
			widthSum += float64(w.Width)
			widthCount++
		}
	}
	textLen := len(strings.Join(joined, " "))
	if textLen < 1 {
		textLen = 1
	}
	var avgChar float64
	if widthCount > 0 {
		avgChar = (widthSum / widthCount) / float64(textLen)
	}
	threshold := avgChar * opts.GapCharFactor
	if threshold < float64(opts.MinGapPx) {
		threshold = float64(opts.MinGapPx)
	}

	var b strings.Builder
	b.WriteString(words[0].Text)
	right := words[0].Right()
	for _, w := range words[1:] {
		if float64(w.Left-right) > threshold {
			b.WriteString("|")
		} else {
			b.WriteString(" ")
		}
		b.WriteString(w.Text)
		right = w.Right()
	}
	return b.String()
}
