// Package extract implements the document content pipeline: per-page text
// and annotation harvesting, PII extraction with page attribution, sloppy
// redaction detection and container metadata enrichment.
package extract

import (
	"encoding/json"

	"github.com/doktools/docmeta/internal/extract/pii"
	"github.com/doktools/docmeta/internal/sig"
)

// Options controls one extraction call.
type Options struct {
	// SkipPDFMetadata suppresses the container Info dictionary, used when
	// the caller already has authoritative metadata (converted office
	// documents carry their own).
	SkipPDFMetadata bool

	// OverrideText supplies alternative page transcriptions aligned to
	// page index. Where present, the extracted text competes against the
	// override and the better candidate wins.
	OverrideText []string

	// IncludeAnnotations adds the normalized annotation dump per page.
	IncludeAnnotations bool

	// DetailedRedactions adds per-page redaction findings on top of the
	// flagged page list.
	DetailedRedactions bool
}

// PageAnnotations is the normalized annotation dump for one page.
type PageAnnotations struct {
	Page        int          `json:"page"`
	Annotations []Annotation `json:"annotations"`
}

// Metadata is the document-level result of one extraction. The container
// Info entries (Producer, Author, dates) are spread flat into the JSON
// object next to the derived fields, see MarshalJSON.
type Metadata struct {
	Info              map[string]string `json:"-"`
	PageCount         int               `json:"pageCount"`
	WordCount         int               `json:"wordCount"`
	CharacterCount    int               `json:"characterCount"`
	Links             []pii.Finding     `json:"links"`
	Emails            []pii.Finding     `json:"emails"`
	Domains           []string          `json:"domains"`
	JarKodai          []pii.Finding     `json:"jarKodai"`
	IbanNumeriai      []pii.Finding     `json:"ibanNumeriai"`
	Telefonai         []pii.Finding     `json:"telefonai"`
	Signatures        []sig.Signature   `json:"signatures,omitempty"`
	SloppyRedactions  []int             `json:"sloppyRedactions"`
	RedactionFindings []PageRedactions  `json:"sloppyRedactionFindings,omitempty"`
	Annotations       []PageAnnotations `json:"annotations,omitempty"`
}

// MarshalJSON spreads the container Info entries at the top level of the
// metadata object. Info keys already taken by a derived field are dropped.
func (m Metadata) MarshalJSON() ([]byte, error) {
	type plain Metadata
	base, err := json.Marshal(plain(m))
	if err != nil {
		return nil, err
	}
	if len(m.Info) == 0 {
		return base, nil
	}

	var out map[string]any
	if err := json.Unmarshal(base, &out); err != nil {
		return nil, err
	}
	for key, value := range m.Info {
		if _, taken := out[key]; taken {
			continue
		}
		out[key] = value
	}
	return json.Marshal(out)
}

// Result is the output contract: normalized page texts plus metadata.
type Result struct {
	Pages    []string `json:"pages"`
	Metadata Metadata `json:"metadata"`
}
