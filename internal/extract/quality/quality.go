// Package quality scores candidate transcriptions of a page and picks the
// better one. The score is a weighted sum of fixed criteria tuned for
// Lithuanian/English prose; garbled OCR output (junk symbols, digits and
// capitals inside words, single-character "words") is penalized heavily.
package quality

import (
	"regexp"
	"strings"
	"unicode"
)

const lithuanianLetters = "ąčęėįšūžĄČĘĖĮŠŪŽ"

// criterion is one pure scoring rule. judge returns a value roughly in
// [0,1]; the emptiness rule returns -100 so that empty text always loses
// against any non-empty candidate.
type criterion struct {
	name   string
	weight float64
	judge  func(text string) float64
}

var criteria = []criterion{
	{"average word length", 1, averageWordLength},
	{"diacritic density", 2, diacriticDensity},
	{"unexpected symbol density", 5, junkSymbolDensity},
	{"capitalized word ratio", 2, capitalizedWordRatio},
	{"sentence punctuation", 2, sentencePunctuation},
	{"overlong words", 1, overlongWordRatio},
	{"overshort words", 2, overshortWordRatio},
	{"ascii and lithuanian letters", 1, plainLetterDensity},
	{"single character words", 3, singleCharWordRatio},
	{"internal capitals", 1.5, internalCapitals},
	{"internal digits", 5, internalDigits},
	{"emptiness", 1, emptiness},
}

var (
	wordSeparatorRE     = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	dashWordSeparatorRE = regexp.MustCompile(`[^\p{L}\p{N}\-–—]+`)
	junkSymbolRE        = regexp.MustCompile(`[@#$%^&*_=+\[\]{}|~<>]`)
	sentenceMarkRE      = regexp.MustCompile(`[.!?]`)
	plainAlnumRE        = regexp.MustCompile(`[a-zA-Z0-9]`)
	internalUpperRE     = regexp.MustCompile(`[A-ZĄČĘĖĮŠŲŪŽ]`)
	allDigitsRE         = regexp.MustCompile(`^\d+$`)
	anyDashRE           = regexp.MustCompile(`[-–—]`)
	anyDigitRE          = regexp.MustCompile(`\d`)
)

func words(text string) []string {
	return strings.Fields(wordSeparatorRE.ReplaceAllString(text, " "))
}

// Score computes the weighted total for one candidate text.
func Score(text string) float64 {
	var total float64
	for _, c := range criteria {
		total += c.judge(text) * c.weight
	}
	return total
}

// Better returns the higher scoring of two candidates. Ties resolve to a.
func Better(a, b string) string {
	if Score(a) >= Score(b) {
		return a
	}
	return b
}

// BetterAll picks the better candidate pairwise by index. When one slice is
// shorter, the remaining tail of the longer one is taken as is.
func BetterAll(a, b []string) []string {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		switch {
		case i < len(a) && i < len(b):
			out = append(out, Better(a[i], b[i]))
		case i < len(a):
			out = append(out, a[i])
		default:
			out = append(out, b[i])
		}
	}
	return out
}

// Mean word length between 5 and 11 runes is ideal, with a linear penalty
// of distance/2 outside that band.
func averageWordLength(text string) float64 {
	ws := words(text)
	if len(ws) == 0 {
		return 0
	}
	var total int
	for _, w := range ws {
		total += len([]rune(w))
	}
	mean := float64(total) / float64(len(ws))
	score := 1.0
	if mean < 5 {
		score -= (5 - mean) / 2
	} else if mean > 11 {
		score -= (mean - 11) / 2
	}
	if score < 0 {
		return 0
	}
	return score
}

// Lithuanian prose carries roughly 5-20% accented letters.
func diacriticDensity(text string) float64 {
	var letters, accented int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if strings.ContainsRune(lithuanianLetters, r) {
			accented++
		}
	}
	if letters == 0 {
		return 0
	}
	ratio := float64(accented) / float64(letters)
	switch {
	case ratio < 0.01 || ratio > 0.3:
		return 0
	case ratio >= 0.05 && ratio <= 0.2:
		return 1
	case ratio < 0.05:
		return (ratio - 0.01) / (0.05 - 0.01)
	default:
		return (0.3 - ratio) / (0.3 - 0.2)
	}
}

func junkSymbolDensity(text string) float64 {
	total := len([]rune(text))
	if total == 0 {
		return 0
	}
	ratio := float64(len(junkSymbolRE.FindAllString(text, -1))) / float64(total)
	switch {
	case ratio <= 0.02:
		return 1
	case ratio >= 0.1:
		return 0
	default:
		return (0.1 - ratio) / (0.1 - 0.02)
	}
}

func capitalizedWordRatio(text string) float64 {
	ws := words(text)
	if len(ws) == 0 {
		return 0
	}
	var capitalized int
	for _, w := range ws {
		if r := []rune(w)[0]; unicode.IsUpper(r) {
			capitalized++
		}
	}
	ratio := float64(capitalized) / float64(len(ws))
	switch {
	case ratio == 0:
		return 0.5
	case ratio >= 0.01 && ratio <= 0.1:
		return 1
	case ratio > 0.2:
		return 0
	case ratio > 0.1:
		return (0.2 - ratio) / (0.2 - 0.1)
	case ratio < 0.01:
		return 0.5 + (ratio/0.01)*0.5
	default:
		return 0
	}
}

// Roughly one sentence mark per 12 words is ideal (0.08 +- 0.05 per word).
// The upper ramp is intentionally unclamped and can go negative for texts
// drowning in punctuation.
func sentencePunctuation(text string) float64 {
	ws := words(text)
	if len(ws) == 0 {
		return 0
	}
	ratio := float64(len(sentenceMarkRE.FindAllString(text, -1))) / float64(len(ws))
	const ideal, delta = 0.08, 0.05
	if ratio < ideal-delta {
		return ratio / (ideal - delta)
	}
	if ratio > ideal+delta {
		return (1 - ratio) / (1 - (ideal + delta))
	}
	return 1
}

func overlongWordRatio(text string) float64 {
	ws := words(text)
	if len(ws) == 0 {
		return 0
	}
	var long int
	for _, w := range ws {
		if len([]rune(w)) > 20 {
			long++
		}
	}
	ratio := float64(long) / float64(len(ws))
	switch {
	case ratio <= 0.02:
		return 1
	case ratio >= 0.1:
		return 0
	default:
		return (0.1 - ratio) / (0.1 - 0.02)
	}
}

func overshortWordRatio(text string) float64 {
	ws := words(text)
	if len(ws) == 0 {
		return 0
	}
	var short int
	for _, w := range ws {
		if len([]rune(w)) <= 3 {
			short++
		}
	}
	ratio := float64(short) / float64(len(ws))
	switch {
	case ratio <= 0.1:
		return 1
	case ratio >= 0.3:
		return 0
	default:
		return (0.3 - ratio) / (0.3 - 0.05)
	}
}

func plainLetterDensity(text string) float64 {
	total := len([]rune(text))
	if total == 0 {
		return 0
	}
	count := len(plainAlnumRE.FindAllString(text, -1))
	for _, r := range text {
		if strings.ContainsRune(lithuanianLetters, r) {
			count++
		}
	}
	return float64(count) / float64(total)
}

func singleCharWordRatio(text string) float64 {
	ws := words(text)
	if len(ws) == 0 {
		return 0
	}
	var single int
	for _, w := range ws {
		if len([]rune(w)) == 1 {
			single++
		}
	}
	ratio := float64(single) / float64(len(ws))
	switch {
	case ratio <= 0.03:
		return 1
	case ratio >= 0.05:
		return 0
	default:
		return (0.05 - ratio) / (0.05 - 0.03)
	}
}

// Capital letters inside a word (not first, not last position) usually mean
// the extractor glued fragments together.
func internalCapitals(text string) float64 {
	var qualifying, bad int
	for _, w := range words(text) {
		runes := []rune(w)
		if len(runes) <= 2 {
			continue
		}
		qualifying++
		if internalUpperRE.MatchString(string(runes[1 : len(runes)-1])) {
			bad++
		}
	}
	if qualifying == 0 {
		return 1
	}
	percent := float64(bad) / float64(qualifying) * 100
	switch {
	case percent <= 1:
		return 1
	case percent >= 3:
		return 0
	default:
		return 1 - (percent-1)/2
	}
}

// Digits inside a word are fine for pure numbers, dashed tokens and
// number-heavy identifiers; anything else looks like OCR noise.
func internalDigits(text string) float64 {
	ws := strings.Fields(dashWordSeparatorRE.ReplaceAllString(text, " "))
	var qualifying, bad int
	for _, w := range ws {
		runes := []rune(w)
		if len(runes) <= 2 {
			continue
		}
		qualifying++
		if allDigitsRE.MatchString(w) || anyDashRE.MatchString(w) {
			continue
		}
		if len(anyDigitRE.FindAllString(w, -1)) >= 3 {
			continue
		}
		if anyDigitRE.MatchString(string(runes[1 : len(runes)-1])) {
			bad++
		}
	}
	if qualifying == 0 {
		return 1
	}
	percent := float64(bad) / float64(qualifying) * 100
	switch {
	case percent <= 1:
		return 1
	case percent >= 15:
		return 0
	default:
		return 1 - (percent-1)/14
	}
}

func emptiness(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return -100
	}
	return 1
}
