// Package pii provides pure text scanners that locate links, email
// addresses, phone numbers, IBANs and national registry codes in a
// sequence of page texts. Every scanner reports the pages a value occurs
// on as a 1-based, ascending, duplicate-free list.
package pii

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Finding records one discovered value and the pages it occurs on.
type Finding struct {
	Value string `json:"value"`
	Pages []int  `json:"pages"`
}

var (
	emailRE = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	ibanRE  = regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`)
	codeRE  = regexp.MustCompile(`\b\d{9}\b`)
	linkRE  = regexp.MustCompile(`\b(?:https?://|mailto:|tel:)[^\s/$.?#].[^\s]*\b`)

	// Lithuanian numbers in national or international notation. RE2 has no
	// lookahead, so the trailing "not followed by a digit" rule from the
	// matching service is enforced after the match (see Phones).
	lithuanianRE = regexp.MustCompile(
		`(?:^|[^0-9])(\(*(?:(?:\+370|370|8|0)[\s\-.()]*)?` +
			`(?:6(?:[\s\-.()]*[0-9]){7}|[2-7](?:[\s\-.()]*[0-9]){7}|[2-7][0-9](?:[\s\-.()]*[0-9]){6}))`)

	// Common international dialing prefixes followed by up to 14 digits.
	internationalRE = regexp.MustCompile(
		`\+(?:9[976]\d|8[987530]\d|6[987]\d|5[90]\d|42\d|3[875]\d|2[98654321]\d|` +
			`9[8543210]|8[6421]|6[6543210]|5[87654321]|4[987654310]|3[9643210]|2[70]|7|1)\d{1,14}`)

	phoneStripRE = regexp.MustCompile(`[\s\-.():]`)

	bareMobileRE   = regexp.MustCompile(`^6\d{7}$`)
	bareLandlineRE = regexp.MustCompile(`^[2-7]\d{7}$`)
)

// Collector accumulates value -> page-set pairs preserving first-seen
// order. Callers that discover values outside of text scanning (link
// annotations) feed it directly.
type Collector struct {
	order []string
	pages map[string]map[int]struct{}
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{pages: make(map[string]map[int]struct{})}
}

// Add records value on page (1-based).
func (c *Collector) Add(value string, page int) {
	set, ok := c.pages[value]
	if !ok {
		set = make(map[int]struct{})
		c.pages[value] = set
		c.order = append(c.order, value)
	}
	set[page] = struct{}{}
}

// Findings exports the accumulated findings in first-seen order with
// sorted, duplicate-free page lists.
func (c *Collector) Findings() []Finding {
	out := make([]Finding, 0, len(c.order))
	for _, value := range c.order {
		set := c.pages[value]
		pages := make([]int, 0, len(set))
		for p := range set {
			pages = append(pages, p)
		}
		sort.Ints(pages)
		out = append(out, Finding{Value: value, Pages: pages})
	}
	return out
}

func scan(pages []string, re *regexp.Regexp) []Finding {
	c := NewCollector()
	for i, page := range pages {
		for _, match := range re.FindAllString(page, -1) {
			c.Add(match, i+1)
		}
	}
	return c.Findings()
}

// Emails finds email addresses in free text.
func Emails(pages []string) []Finding { return scan(pages, emailRE) }

// IBANs finds IBAN-shaped account numbers. No checksum validation is
// performed; over-matching is acceptable here.
func IBANs(pages []string) []Finding { return scan(pages, ibanRE) }

// NationalCodes finds 9-digit registry codes. Intentionally permissive.
func NationalCodes(pages []string) []Finding { return scan(pages, codeRE) }

// Links finds http, https, mailto and tel URIs.
func Links(pages []string) []Finding { return scan(pages, linkRE) }

// Phones finds phone numbers. Lithuanian numbers in any accepted notation
// are rewritten to the canonical +370XXXXXXXX form; numbers that cannot be
// canonicalized to exactly 12 characters are dropped, as are the
// nonexistent +3701/+3702 ranges. International numbers are kept with
// whitespace and punctuation stripped.
func Phones(pages []string) []Finding {
	c := NewCollector()
	for i, page := range pages {
		for _, m := range lithuanianRE.FindAllStringSubmatchIndex(page, -1) {
			start, end := m[2], m[3]
			if start < 0 {
				continue
			}
			// reject matches immediately followed by another digit
			if end < len(page) && page[end] >= '0' && page[end] <= '9' {
				continue
			}
			if normalized, ok := normalizeLithuanian(page[start:end]); ok {
				c.Add(normalized, i+1)
			}
		}
		for _, m := range internationalRE.FindAllString(page, -1) {
			c.Add(phoneStripRE.ReplaceAllString(m, ""), i+1)
		}
	}
	findings := c.Findings()
	kept := findings[:0]
	for _, f := range findings {
		if strings.HasPrefix(f.Value, "+3701") || strings.HasPrefix(f.Value, "+3702") {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func normalizeLithuanian(raw string) (string, bool) {
	cleaned := phoneStripRE.ReplaceAllString(raw, "")
	switch {
	case strings.HasPrefix(cleaned, "+370"):
		// already canonical
	case strings.HasPrefix(cleaned, "370"):
		cleaned = "+" + cleaned
	case strings.HasPrefix(cleaned, "8"):
		cleaned = "+370" + cleaned[1:]
	case strings.HasPrefix(cleaned, "0"):
		cleaned = "+370" + cleaned[1:]
	case bareMobileRE.MatchString(cleaned), bareLandlineRE.MatchString(cleaned):
		cleaned = "+370" + cleaned
	default:
		return "", false
	}
	// canonical form is +370 plus 8 subscriber digits
	if len(cleaned) != 12 {
		return "", false
	}
	return cleaned, true
}

// Domains derives the deduplicated, sorted set of lowercase hostnames from
// link and email findings. Unparseable URLs are skipped.
func Domains(links, emails []Finding) []string {
	seen := make(map[string]struct{})
	for _, l := range links {
		u, err := url.Parse(l.Value)
		if err != nil || u.Hostname() == "" {
			continue
		}
		host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
		seen[host] = struct{}{}
	}
	for _, e := range emails {
		at := strings.LastIndex(e.Value, "@")
		if at < 0 || at == len(e.Value)-1 {
			continue
		}
		host := strings.TrimPrefix(strings.ToLower(e.Value[at+1:]), "www.")
		seen[host] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for host := range seen {
		out = append(out, host)
	}
	sort.Strings(out)
	return out
}

// Merge unions two finding lists by value. Order is a's values first, then
// b's values not present in a; page sets of shared values are unioned.
func Merge(a, b []Finding) []Finding {
	c := NewCollector()
	for _, f := range a {
		for _, p := range f.Pages {
			c.Add(f.Value, p)
		}
	}
	for _, f := range b {
		for _, p := range f.Pages {
			c.Add(f.Value, p)
		}
	}
	return c.Findings()
}
