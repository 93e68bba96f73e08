package quality

import (
	"reflect"
	"strings"
	"testing"
)

const lithuanianProse = "Šiandien buvo graži diena ir vaikai žaidė kieme. " +
	"Vakare visi skaitė knygas apie Lietuvos istoriją. " +
	"Mokytoja paaiškino užduotį ir visi pradėjo dirbti."

const junkText = "@#$% ^&* {}| <>~ @#$% ===== [[[]]] ^^^ @@@ %%% &&&"

func TestEmptyTextAlwaysLoses(t *testing.T) {
	candidates := []string{"", "   ", "\n\t"}
	for _, empty := range candidates {
		if got := Better(empty, "bent vienas žodis"); got != "bent vienas žodis" {
			t.Errorf("Better(%q, text) picked the empty candidate", empty)
		}
		if got := Better("bent vienas žodis", empty); got != "bent vienas žodis" {
			t.Errorf("Better(text, %q) picked the empty candidate", empty)
		}
	}
}

func TestProseBeatsJunk(t *testing.T) {
	if Score(lithuanianProse) <= Score(junkText) {
		t.Errorf("prose score %v is not above junk score %v",
			Score(lithuanianProse), Score(junkText))
	}
	if got := Better(junkText, lithuanianProse); got != lithuanianProse {
		t.Error("Better() preferred junk over prose")
	}
}

func TestProseBeatsGluedFragments(t *testing.T) {
	// digits and capitals inside words are the signature of glued extraction
	glued := strings.ReplaceAll(lithuanianProse, "diena", "di3enAs")
	glued = strings.ReplaceAll(glued, "knygas", "kn7ygAs")
	if Score(lithuanianProse) <= Score(glued) {
		t.Errorf("prose score %v is not above glued score %v",
			Score(lithuanianProse), Score(glued))
	}
}

func TestBetterTieKeepsFirst(t *testing.T) {
	a := "vienodas tekstas abiems"
	if got := Better(a, a); got != a {
		t.Errorf("Better() on identical inputs = %q", got)
	}
}

func TestBetterAll(t *testing.T) {
	a := []string{"", lithuanianProse}
	b := []string{lithuanianProse, junkText, "uodega lieka"}

	got := BetterAll(a, b)
	want := []string{lithuanianProse, lithuanianProse, "uodega lieka"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BetterAll() = %q, want %q", got, want)
	}
}

func TestBetterAllShorterSecond(t *testing.T) {
	a := []string{lithuanianProse, "likutis"}
	got := BetterAll(a, []string{""})
	want := []string{lithuanianProse, "likutis"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BetterAll() = %q, want %q", got, want)
	}
}

func TestScoreDegenerateInputs(t *testing.T) {
	// must not panic and must stay finite
	for _, text := range []string{"", ".", "a", "7", strings.Repeat("x", 500)} {
		s := Score(text)
		if s != s { // NaN
			t.Errorf("Score(%q) is NaN", text)
		}
	}
}

func TestEmptinessDominates(t *testing.T) {
	if emptiness("") != -100 {
		t.Errorf("emptiness(\"\") = %v, want -100", emptiness(""))
	}
	if emptiness("tekstas") != 1 {
		t.Errorf("emptiness(non-empty) = %v, want 1", emptiness("tekstas"))
	}
	if Score("") >= Score("x") {
		t.Error("empty text scored at least as high as a single letter")
	}
}
