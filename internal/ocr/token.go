package ocr

import (
	"strconv"
	"strings"
)

// Token is one recognized word with its position on the page.
type Token struct {
	Text   string
	Left   int
	Top    int
	Width  int
	Height int
	Conf   float64 // 0-100, -1 for non-word rows in tesseract output
	Block  int
	Par    int
	Line   int
}

// LineKey identifies the visual line a token belongs to.
type LineKey struct {
	Block int
	Line  int
}

// Key returns the token's visual line identity.
func (t Token) Key() LineKey { return LineKey{Block: t.Block, Line: t.Line} }

// Right returns the x coordinate of the token's right edge.
func (t Token) Right() int { return t.Left + t.Width }

// parseTSV converts tesseract TSV output into word tokens. The TSV layout is
// level page block par line word left top width height conf text; only
// level-5 (word) rows with non-empty text become tokens.
func parseTSV(out string) []Token {
	var tokens []Token
	lines := strings.Split(out, "\n")
	for i, ln := range lines {
		if i == 0 || ln == "" { // skip header
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		if lvl, err := strconv.Atoi(cols[0]); err != nil || lvl != 5 {
			continue
		}
		text := strings.TrimSpace(strings.Join(cols[11:], " "))
		if text == "" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil {
			continue
		}
		tokens = append(tokens, Token{
			Text:   text,
			Left:   atoi(cols[6]),
			Top:    atoi(cols[7]),
			Width:  atoi(cols[8]),
			Height: atoi(cols[9]),
			Conf:   conf,
			Block:  atoi(cols[2]),
			Par:    atoi(cols[3]),
			Line:   atoi(cols[4]),
		})
	}
	return tokens
}

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}
