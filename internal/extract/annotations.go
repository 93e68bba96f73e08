package extract

import (
	"fmt"
	"math"

	pdfdoc "github.com/doktools/docmeta/internal/pdf"
)

// AnnotationFlags is the decoded 10-bit annotation flag field.
type AnnotationFlags struct {
	Invisible      bool `json:"invisible"`
	Hidden         bool `json:"hidden"`
	Print          bool `json:"print"`
	NoZoom         bool `json:"noZoom"`
	NoRotate       bool `json:"noRotate"`
	NoView         bool `json:"noView"`
	ReadOnly       bool `json:"readOnly"`
	Locked         bool `json:"locked"`
	ToggleNoView   bool `json:"toggleNoView"`
	LockedContents bool `json:"lockedContents"`
}

// BorderStyle is the normalized annotation border.
type BorderStyle struct {
	Width float64 `json:"width"`
	Style string  `json:"style"`
}

// Annotation is the canonical annotation record: hex color, decoded flags,
// border style, human-readable type and ISO timestamps.
type Annotation struct {
	ID       string     `json:"id,omitempty"`
	Type     string     `json:"type"`
	Subtype  string     `json:"subtype"`
	Rect     [4]float64 `json:"rect"`
	Rotation float64    `json:"rotation,omitempty"`
	Color    string     `json:"color,omitempty"`
	Opacity  *float64   `json:"opacity,omitempty"`
	Flags    AnnotationFlags `json:"flags"`
	Border   BorderStyle     `json:"border"`
	Contents string     `json:"contents,omitempty"`
	Author   string     `json:"author,omitempty"`
	Created  string     `json:"created,omitempty"`
	Modified string     `json:"modified,omitempty"`
	URI      string     `json:"uri,omitempty"`
}

var annotationTypeNames = map[string]string{
	"Text":           "Text",
	"Link":           "Link",
	"FreeText":       "Free Text",
	"Line":           "Line",
	"Square":         "Square",
	"Circle":         "Circle",
	"Polygon":        "Polygon",
	"PolyLine":       "Polyline",
	"Highlight":      "Highlight",
	"Underline":      "Underline",
	"Squiggly":       "Squiggly",
	"StrikeOut":      "Strikeout",
	"Stamp":          "Stamp",
	"Caret":          "Caret",
	"Ink":            "Ink",
	"Popup":          "Popup",
	"FileAttachment": "File Attachment",
	"Sound":          "Sound",
	"Movie":          "Movie",
	"Widget":         "Widget",
	"Screen":         "Screen",
	"PrinterMark":    "Printer Mark",
	"Watermark":      "Watermark",
	"Redact":         "Redact",
}

// NormalizeAnnotation converts a raw annotation dictionary into the
// canonical record.
func NormalizeAnnotation(raw pdfdoc.RawAnnotation) Annotation {
	a := Annotation{
		ID:       raw.ID,
		Type:     annotationTypeName(raw.Subtype),
		Subtype:  raw.Subtype,
		Rect:     raw.Rect,
		Rotation: float64(raw.Rotation),
		Color:    ColorHex(raw.Color),
		Opacity:  raw.Opacity,
		Flags:    DecodeAnnotationFlags(raw.Flags),
		Border:   normalizeBorder(raw.BorderWidth, raw.BorderStyle),
		Contents: raw.Contents,
		Author:   raw.Title,
		URI:      raw.URI,
	}
	if iso, ok := ParsePDFDate(raw.Created); ok {
		a.Created = iso
	} else {
		a.Created = raw.Created
	}
	if iso, ok := ParsePDFDate(raw.Modified); ok {
		a.Modified = iso
	} else {
		a.Modified = raw.Modified
	}
	return a
}

func annotationTypeName(subtype string) string {
	if name, ok := annotationTypeNames[subtype]; ok {
		return name
	}
	return subtype
}

// ColorHex renders a gray (1 component), RGB (3) or CMYK (4) color array
// with components in [0,1] as a #rrggbb string. Any other shape yields "".
func ColorHex(components []float64) string {
	var r, g, b float64
	switch len(components) {
	case 1:
		r, g, b = components[0], components[0], components[0]
	case 3:
		r, g, b = components[0], components[1], components[2]
	case 4:
		c, m, y, k := components[0], components[1], components[2], components[3]
		r = (1 - c) * (1 - k)
		g = (1 - m) * (1 - k)
		b = (1 - y) * (1 - k)
	default:
		return ""
	}
	return fmt.Sprintf("#%02x%02x%02x", channel(r), channel(g), channel(b))
}

func channel(v float64) int {
	n := int(math.Round(v * 255))
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return n
}

// DecodeAnnotationFlags expands the flag bitfield into named booleans.
func DecodeAnnotationFlags(bits int) AnnotationFlags {
	return AnnotationFlags{
		Invisible:      bits&1 != 0,
		Hidden:         bits&2 != 0,
		Print:          bits&4 != 0,
		NoZoom:         bits&8 != 0,
		NoRotate:       bits&16 != 0,
		NoView:         bits&32 != 0,
		ReadOnly:       bits&64 != 0,
		Locked:         bits&128 != 0,
		ToggleNoView:   bits&256 != 0,
		LockedContents: bits&512 != 0,
	}
}

var borderStyleNames = map[int]string{
	0: "solid",
	1: "dashed",
	2: "solid",
	3: "inset",
	4: "none",
}

func normalizeBorder(width *float64, style *int) BorderStyle {
	b := BorderStyle{Width: 1, Style: "solid"}
	if width != nil {
		b.Width = *width
	}
	if style != nil {
		if name, ok := borderStyleNames[*style]; ok {
			b.Style = name
		}
	}
	return b
}
