package extract

import (
	"strings"

	"github.com/doktools/docmeta/internal/extract/pii"
)

// cleanString strips NUL characters and trims surrounding whitespace.
// Producer strings in the wild carry both.
func cleanString(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}

// clean applies cleanString to every string the metadata carries.
func (m *Metadata) clean() {
	for key, value := range m.Info {
		m.Info[key] = cleanString(value)
	}
	cleanFindings(m.Links)
	cleanFindings(m.Emails)
	cleanFindings(m.JarKodai)
	cleanFindings(m.IbanNumeriai)
	cleanFindings(m.Telefonai)
	for i, d := range m.Domains {
		m.Domains[i] = cleanString(d)
	}
	for i := range m.Signatures {
		for key, value := range m.Signatures[i].Fields {
			m.Signatures[i].Fields[key] = cleanString(value)
		}
	}
	for i := range m.RedactionFindings {
		for j := range m.RedactionFindings[i].Findings {
			f := &m.RedactionFindings[i].Findings[j]
			f.Text = cleanString(f.Text)
		}
	}
	for i := range m.Annotations {
		for j := range m.Annotations[i].Annotations {
			a := &m.Annotations[i].Annotations[j]
			a.Contents = cleanString(a.Contents)
			a.Author = cleanString(a.Author)
		}
	}
}

func cleanFindings(findings []pii.Finding) {
	for i := range findings {
		findings[i].Value = cleanString(findings[i].Value)
	}
}
