// Package pdf wraps low-level PDF access behind a small document model:
// positioned text runs, raw annotation dictionaries, and the Info
// dictionary. Validation uses pdfcpu in relaxed mode so that slightly
// malformed files produced by office suites still open.
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	ledongthucpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// TextRun is a single positioned piece of page text. Coordinates are in
// PDF user space with the origin at the bottom-left of the page.
type TextRun struct {
	Text string
	X    float64
	Y    float64
	W    float64
	H    float64
}

// Bounds returns the run rectangle as [x1, y1, x2, y2].
func (t TextRun) Bounds() [4]float64 {
	return [4]float64{t.X, t.Y, t.X + t.W, t.Y + t.H}
}

// RawAnnotation carries the fields of an annotation dictionary before any
// normalization. Optional entries that are absent stay nil so callers can
// distinguish "missing" from a zero value.
type RawAnnotation struct {
	ID          string
	Subtype     string
	Rect        [4]float64
	Rotation    int
	Color       []float64
	Opacity     *float64
	Flags       int
	BorderWidth *float64
	BorderStyle *int
	Contents    string
	Title       string
	Created     string
	Modified    string
	URI         string
}

// Page holds everything extracted from a single page.
type Page struct {
	Number      int
	Runs        []TextRun
	Annotations []RawAnnotation
}

// Document is an open PDF ready for page-by-page extraction.
type Document struct {
	reader *ledongthucpdf.Reader
}

// Load validates the document with pdfcpu (relaxed mode) and then opens
// it for content extraction. A file that fails validation is rejected
// outright; extraction never runs on bytes pdfcpu cannot parse.
func Load(data []byte) (*Document, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF structure: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to determine page count: %w", err)
	}

	reader, err := ledongthucpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF for extraction: %w", err)
	}
	if got := reader.NumPage(); got != ctx.PageCount {
		return nil, fmt.Errorf("page count mismatch: extractor reports %d, validator reports %d", got, ctx.PageCount)
	}

	return &Document{reader: reader}, nil
}

// PageCount reports the number of pages in the document.
func (d *Document) PageCount() int {
	return d.reader.NumPage()
}

// Page extracts text runs and annotations from page n (1-based). The
// underlying library panics on some malformed content streams, so the
// panic is converted into an error and the caller decides whether to
// degrade or abort.
func (d *Document) Page(n int) (page Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to extract page %d: %v", n, r)
		}
	}()

	page.Number = n

	p := d.reader.Page(n)
	if p.V.IsNull() {
		return page, fmt.Errorf("page %d not found", n)
	}

	page.Runs = wordRuns(p.Content().Text)

	annots := p.V.Key("Annots")
	if annots.Kind() == ledongthucpdf.Array {
		for i := 0; i < annots.Len(); i++ {
			page.Annotations = append(page.Annotations, decodeAnnotation(annots.Index(i)))
		}
	}

	return page, nil
}

// Info returns the document information dictionary as a string map.
// Non-scalar entries are skipped.
func (d *Document) Info() map[string]string {
	info := d.reader.Trailer().Key("Info")
	if info.Kind() != ledongthucpdf.Dict {
		return nil
	}

	out := make(map[string]string)
	for _, key := range info.Keys() {
		if s, ok := scalarString(info.Key(key)); ok && s != "" {
			out[key] = s
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

const (
	// Fallback run height when a glyph carries no usable font size.
	defaultRunHeight = 12.0

	// Horizontal jump beyond this share of the glyph height ends a word.
	wordGapFactor = 0.3
)

// wordRuns merges the per-glyph entries the content parser emits into
// word-level runs. A run ends on a whitespace glyph, a baseline change,
// or a horizontal jump: forward beyond the word-gap share of the glyph
// height, or backward beyond one glyph height (a new column). Small
// negative jumps are kerning and stay inside the word.
func wordRuns(glyphs []ledongthucpdf.Text) []TextRun {
	runs := make([]TextRun, 0, len(glyphs)/4+1)
	var open bool
	var end float64

	for _, g := range glyphs {
		h := g.FontSize
		if h <= 0 {
			h = defaultRunHeight
		}
		if strings.TrimSpace(g.S) == "" {
			open = false
			continue
		}

		if open {
			cur := &runs[len(runs)-1]
			gap := g.X - end
			if g.Y == cur.Y && gap <= h*wordGapFactor && gap >= -h {
				cur.Text += g.S
				if right := g.X + g.W; right > cur.X+cur.W {
					cur.W = right - cur.X
				}
				if h > cur.H {
					cur.H = h
				}
				end = g.X + g.W
				continue
			}
		}

		runs = append(runs, TextRun{Text: g.S, X: g.X, Y: g.Y, W: g.W, H: h})
		open = true
		end = g.X + g.W
	}
	return runs
}

func decodeAnnotation(v ledongthucpdf.Value) RawAnnotation {
	a := RawAnnotation{
		ID:       v.Key("NM").Text(),
		Subtype:  v.Key("Subtype").Name(),
		Contents: v.Key("Contents").Text(),
		Title:    v.Key("T").Text(),
		Created:  v.Key("CreationDate").Text(),
		Modified: v.Key("M").Text(),
	}

	if f := v.Key("F"); f.Kind() == ledongthucpdf.Integer {
		a.Flags = int(f.Int64())
	}
	if rot := v.Key("Rotate"); rot.Kind() == ledongthucpdf.Integer {
		a.Rotation = int(rot.Int64())
	}

	if rect := floatArray(v.Key("Rect")); len(rect) == 4 {
		copy(a.Rect[:], rect)
	}
	a.Color = floatArray(v.Key("C"))

	if ca := v.Key("CA"); ca.Kind() == ledongthucpdf.Real || ca.Kind() == ledongthucpdf.Integer {
		op := ca.Float64()
		a.Opacity = &op
	}

	if bs := v.Key("BS"); bs.Kind() == ledongthucpdf.Dict {
		if w := bs.Key("W"); w.Kind() == ledongthucpdf.Real || w.Kind() == ledongthucpdf.Integer {
			bw := w.Float64()
			a.BorderWidth = &bw
		}
		if s := bs.Key("S"); s.Kind() == ledongthucpdf.Name {
			if code, ok := borderStyleCode(s.Name()); ok {
				a.BorderStyle = &code
			}
		}
	} else if border := floatArray(v.Key("Border")); len(border) >= 3 {
		bw := border[2]
		a.BorderWidth = &bw
	}

	if action := v.Key("A"); action.Kind() == ledongthucpdf.Dict {
		a.URI = action.Key("URI").Text()
	}

	return a
}

// borderStyleCode maps the /BS style name onto a small numeric code so
// downstream normalization can treat it uniformly.
func borderStyleCode(name string) (int, bool) {
	switch name {
	case "S":
		return 0, true
	case "D":
		return 1, true
	case "B":
		return 2, true
	case "I":
		return 3, true
	case "U":
		return 4, true
	}
	return 0, false
}

func floatArray(v ledongthucpdf.Value) []float64 {
	if v.Kind() != ledongthucpdf.Array {
		return nil
	}
	out := make([]float64, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		e := v.Index(i)
		switch e.Kind() {
		case ledongthucpdf.Integer, ledongthucpdf.Real:
			out = append(out, e.Float64())
		default:
			return nil
		}
	}
	return out
}

func scalarString(v ledongthucpdf.Value) (string, bool) {
	switch v.Kind() {
	case ledongthucpdf.String:
		return v.Text(), true
	case ledongthucpdf.Name:
		return v.Name(), true
	case ledongthucpdf.Integer:
		return fmt.Sprintf("%d", v.Int64()), true
	case ledongthucpdf.Real:
		return fmt.Sprintf("%g", v.Float64()), true
	case ledongthucpdf.Bool:
		return fmt.Sprintf("%t", v.Bool()), true
	}
	return "", false
}
