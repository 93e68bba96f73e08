package extract

import (
	"fmt"
	"log"
	"strings"

	pdfdoc "github.com/doktools/docmeta/internal/pdf"
)

// Overlap tolerances in page user-space units. The page-set scan across a
// whole document is forgiving; the detailed findings scan is tighter.
const (
	PageScanTolerance     = 5.0
	FindingsScanTolerance = 2.0
)

// RedactionFinding is one group of text runs covered by the same
// annotation rectangle.
type RedactionFinding struct {
	Text           string     `json:"text"`
	TextRect       [4]float64 `json:"textRect"`
	AnnotationRect [4]float64 `json:"annotationRect"`
	AnnotationType string     `json:"annotationType"`
	Color          string     `json:"color,omitempty"`
	Opacity        *float64   `json:"opacity,omitempty"`
}

// PageRedactions is the detailed per-page report.
type PageRedactions struct {
	Page                int                `json:"page"`
	HasCrappyRedactions bool               `json:"hasCrappyRedactions"`
	Count               int                `json:"count"`
	Findings            []RedactionFinding `json:"findings"`
}

// coveringAnnotations filters a page's annotations down to shapes that
// could visually cover text. Text, Link and Free Text annotations never
// qualify. In strict mode the shape must also be pure black or pure red
// and not fully transparent. Rotated shapes are skipped: rotated-rectangle
// overlap is not supported.
func coveringAnnotations(annots []Annotation, strict bool) []Annotation {
	out := make([]Annotation, 0, len(annots))
	for _, a := range annots {
		switch a.Subtype {
		case "Text", "Link", "FreeText":
			continue
		}
		if a.Rotation != 0 {
			log.Printf("skipping rotated annotation %q: rotated overlap not supported", a.Subtype)
			continue
		}
		if strict {
			if a.Color != "#000000" && a.Color != "#ff0000" {
				continue
			}
			if a.Opacity != nil && *a.Opacity == 0 {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// covered reports whether annotation rect a overlaps run rect r, with all
// four separating-axis tests allowed to miss by tol.
func covered(a, r [4]float64, tol float64) bool {
	if a[0]-r[2] > tol {
		return false
	}
	if a[1]-r[3] > tol {
		return false
	}
	if a[2]-r[0] < tol {
		return false
	}
	if a[3]-r[1] < tol {
		return false
	}
	return true
}

// PageCovered reports whether any non-blank text run on the page is
// covered by any candidate annotation. This is the loose, type-filtered
// variant used for the document-level page set.
func PageCovered(runs []pdfdoc.TextRun, annots []Annotation, tol float64) bool {
	candidates := coveringAnnotations(annots, false)
	if len(candidates) == 0 {
		return false
	}
	for _, run := range runs {
		if strings.TrimSpace(run.Text) == "" {
			continue
		}
		bounds := run.Bounds()
		for _, a := range candidates {
			if covered(a.Rect, bounds, tol) {
				return true
			}
		}
	}
	return false
}

// FindRedactions produces the detailed report for one page. Covered runs
// are grouped per covering annotation rectangle, concatenating their text.
// This is the strict variant: only black or red, non-transparent shapes
// count as covers.
func FindRedactions(page int, runs []pdfdoc.TextRun, annots []Annotation, tol float64) PageRedactions {
	report := PageRedactions{Page: page}
	candidates := coveringAnnotations(annots, true)
	if len(candidates) == 0 {
		return report
	}

	groups := make(map[string]int)
	for _, run := range runs {
		if strings.TrimSpace(run.Text) == "" {
			continue
		}
		bounds := run.Bounds()
		for _, a := range candidates {
			if !covered(a.Rect, bounds, tol) {
				continue
			}
			report.Count++
			key := rectKey(a.Rect)
			idx, ok := groups[key]
			if !ok {
				idx = len(report.Findings)
				groups[key] = idx
				report.Findings = append(report.Findings, RedactionFinding{
					TextRect:       bounds,
					AnnotationRect: a.Rect,
					AnnotationType: a.Type,
					Color:          a.Color,
					Opacity:        a.Opacity,
				})
			}
			f := &report.Findings[idx]
			f.Text += run.Text
			f.TextRect = unionRect(f.TextRect, bounds)
		}
	}
	report.HasCrappyRedactions = len(report.Findings) > 0
	return report
}

func rectKey(r [4]float64) string {
	return fmt.Sprintf("[%g,%g,%g,%g]", r[0], r[1], r[2], r[3])
}

func unionRect(a, b [4]float64) [4]float64 {
	out := a
	if b[0] < out[0] {
		out[0] = b[0]
	}
	if b[1] < out[1] {
		out[1] = b[1]
	}
	if b[2] > out[2] {
		out[2] = b[2]
	}
	if b[3] > out[3] {
		out[3] = b[3]
	}
	return out
}
