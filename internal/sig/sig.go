// Package sig runs the external pdfsig tool and parses its plain-text
// report into structured signature records.
package sig

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/doktools/docmeta/internal/tmpfile"
)

// Signature is one record from the verification report. Arbitrary report
// fields are kept as camelCased key/value pairs; signed byte ranges and
// the signing time are decoded.
type Signature struct {
	Number              int
	Fields              map[string]string
	SignedRanges        [][2]int
	SigningTime         *time.Time
	TotalDocumentSigned bool
}

// MarshalJSON flattens the record the way the tool reports it: the number,
// every field, and the decoded specials side by side.
func (s Signature) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Fields)+4)
	out["signatureNumber"] = s.Number
	for k, v := range s.Fields {
		out[k] = v
	}
	if s.SignedRanges != nil {
		out["signedRanges"] = s.SignedRanges
	}
	if s.SigningTime != nil {
		out["signingTime"] = s.SigningTime
	}
	if s.TotalDocumentSigned {
		out["totalDocumentSigned"] = true
	}
	return json.Marshal(out)
}

var (
	signatureHeaderRE = regexp.MustCompile(`^Signature #(\d+):$`)
	keyValueRE        = regexp.MustCompile(`^-\s*(.+?):\s*(.+)$`)
	nonAlnumSpaceRE   = regexp.MustCompile(`[^a-zA-Z0-9 ]`)
)

// ParseReport decodes the line-oriented tool output. A "Signature #n:"
// line starts a record, "- Key: value" lines populate it, and a line
// starting with "- Total document signed" flags full coverage. Lines that
// match nothing are ignored.
func ParseReport(output string) []Signature {
	var signatures []Signature
	var current *Signature

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := signatureHeaderRE.FindStringSubmatch(line); m != nil {
			if current != nil {
				signatures = append(signatures, *current)
			}
			n, _ := strconv.Atoi(m[1])
			current = &Signature{Number: n, Fields: make(map[string]string)}
			continue
		}
		if current == nil {
			continue
		}
		if strings.HasPrefix(line, "- Total document signed") {
			current.TotalDocumentSigned = true
			continue
		}
		if m := keyValueRE.FindStringSubmatch(line); m != nil {
			key, value := camelCase(m[1]), m[2]
			switch key {
			case "signedRanges":
				current.SignedRanges = parseSignedRanges(value)
			case "signingTime":
				if t := parseSigningTime(value); t != nil {
					current.SigningTime = t
				} else {
					current.Fields[key] = value
				}
			default:
				current.Fields[key] = value
			}
		}
	}

	if current != nil {
		signatures = append(signatures, *current)
	}
	return signatures
}

// camelCase strips non-alphanumerics, splits on spaces, lowercases the
// first token and capitalizes the rest: "Signer Certificate Common Name"
// becomes signerCertificateCommonName.
func camelCase(key string) string {
	parts := strings.Fields(nonAlnumSpaceRE.ReplaceAllString(key, ""))
	if len(parts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(parts[0]))
	for _, part := range parts[1:] {
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// parseSignedRanges decodes "[0 - 1234], [5678 - 9012]" into integer
// pairs. Malformed segments are dropped.
func parseSignedRanges(value string) [][2]int {
	var ranges [][2]int
	for _, segment := range strings.Split(value, "], [") {
		segment = strings.NewReplacer("[", "", "]", "").Replace(segment)
		parts := strings.Split(segment, " - ")
		if len(parts) != 2 {
			continue
		}
		start, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		end, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			continue
		}
		ranges = append(ranges, [2]int{start, end})
	}
	return ranges
}

var signingTimeLayouts = []string{
	"Jan 02 2006 15:04:05 MST",
	"Jan 2 2006 15:04:05 MST",
	"Jan 02 2006 15:04:05",
	"Jan 2 2006 15:04:05",
	"Jan 02 2006",
	"Jan 2 2006",
	time.RFC3339,
}

func parseSigningTime(value string) *time.Time {
	for _, layout := range signingTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// Runner invokes pdfsig against a scratch copy of the document.
type Runner struct {
	Binary  string
	TmpDir  string
	Timeout time.Duration
}

// Verify writes the PDF to a scratch file, runs the tool and parses its
// stdout. Any failure is returned to the caller, which treats signatures
// as unavailable rather than failing the extraction.
func (r *Runner) Verify(ctx context.Context, data []byte) ([]Signature, error) {
	binary := r.Binary
	if binary == "" {
		binary = "pdfsig"
	}

	path, release, err := tmpfile.Write(r.TmpDir, ".pdf", data)
	if err != nil {
		return nil, err
	}
	defer release()

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	out, err := exec.CommandContext(ctx, binary, path, "-nocert").Output()
	if err != nil {
		return nil, fmt.Errorf("pdfsig failed: %w", err)
	}
	return ParseReport(strings.TrimSpace(string(out))), nil
}
