package pdf

import (
	"strings"
	"testing"

	ledongthucpdf "github.com/ledongthuc/pdf"
)

// charGlyphs lays text out the way the content parser reports it: one
// entry per character, X advancing by the glyph width.
func charGlyphs(text string, x, y, size float64) []ledongthucpdf.Text {
	w := size * 0.5
	out := make([]ledongthucpdf.Text, 0, len(text))
	for _, r := range text {
		out = append(out, ledongthucpdf.Text{
			S: string(r), X: x, Y: y, W: w, FontSize: size,
		})
		x += w
	}
	return out
}

func runTexts(runs []TextRun) []string {
	out := make([]string, 0, len(runs))
	for _, r := range runs {
		out = append(out, r.Text)
	}
	return out
}

func TestWordRunsMergesGlyphs(t *testing.T) {
	glyphs := charGlyphs("Susisiekite info@example.com dabar", 72, 720, 12)

	runs := wordRuns(glyphs)

	want := []string{"Susisiekite", "info@example.com", "dabar"}
	got := runTexts(runs)
	if len(got) != len(want) {
		t.Fatalf("wordRuns() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("run %d = %q, want %q", i, got[i], want[i])
		}
	}
	if joined := strings.Join(got, " "); joined != "Susisiekite info@example.com dabar" {
		t.Errorf("joined text = %q", joined)
	}

	second := runs[1]
	if second.X <= runs[0].X || second.W <= 0 || second.H != 12 {
		t.Errorf("run geometry not aggregated: %+v", second)
	}
}

func TestWordRunsZeroWidthGlyphs(t *testing.T) {
	// fonts without a widths array report every glyph at the same X;
	// whitespace glyphs still delimit the words
	var glyphs []ledongthucpdf.Text
	for _, r := range "kodas 123456789" {
		glyphs = append(glyphs, ledongthucpdf.Text{S: string(r), X: 72, Y: 700, FontSize: 10})
	}

	got := runTexts(wordRuns(glyphs))
	want := []string{"kodas", "123456789"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("wordRuns() = %q, want %q", got, want)
	}
}

func TestWordRunsSplitsLinesAndColumns(t *testing.T) {
	glyphs := charGlyphs("eilute", 72, 720, 12)
	glyphs = append(glyphs, charGlyphs("kita", 72, 700, 12)...)          // next line
	glyphs = append(glyphs, charGlyphs("stulpelis", 300, 700, 12)...)    // wide gap

	got := runTexts(wordRuns(glyphs))
	want := []string{"eilute", "kita", "stulpelis"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("wordRuns() = %q, want %q", got, want)
	}
}

func TestWordRunsEmpty(t *testing.T) {
	if runs := wordRuns(nil); len(runs) != 0 {
		t.Errorf("wordRuns(nil) = %v", runs)
	}
	spaces := charGlyphs("   ", 72, 720, 12)
	if runs := wordRuns(spaces); len(runs) != 0 {
		t.Errorf("wordRuns(spaces) = %v", runs)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"plain text", []byte("tai nera PDF dokumentas")},
		{"truncated header", []byte("%PDF-1.4")},
		{"html", []byte("<html><body>404</body></html>")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.data); err == nil {
				t.Error("Load() accepted invalid input")
			}
		})
	}
}

func TestTextRunBounds(t *testing.T) {
	run := TextRun{Text: "zodis", X: 10, Y: 20, W: 50, H: 12}
	got := run.Bounds()
	want := [4]float64{10, 20, 60, 32}
	if got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
}

func TestBorderStyleCode(t *testing.T) {
	tests := []struct {
		name string
		code int
		ok   bool
	}{
		{"S", 0, true},
		{"D", 1, true},
		{"B", 2, true},
		{"I", 3, true},
		{"U", 4, true},
		{"X", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		code, ok := borderStyleCode(tt.name)
		if code != tt.code || ok != tt.ok {
			t.Errorf("borderStyleCode(%q) = (%d, %v), want (%d, %v)",
				tt.name, code, ok, tt.code, tt.ok)
		}
	}
}

func TestLoadErrorMentionsCause(t *testing.T) {
	_, err := Load([]byte("netinkamas turinys"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "failed to parse PDF structure") {
		t.Errorf("error = %v, want parse failure wrapping", err)
	}
}
