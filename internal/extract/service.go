package extract

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/doktools/docmeta/internal/extract/pii"
	"github.com/doktools/docmeta/internal/extract/quality"
	pdfdoc "github.com/doktools/docmeta/internal/pdf"
	"github.com/doktools/docmeta/internal/sig"
)

// SignatureVerifier is the bridge to an external signature-verification
// tool. A failed verification degrades the result, it never fails it.
type SignatureVerifier interface {
	Verify(ctx context.Context, data []byte) ([]sig.Signature, error)
}

// Service runs the extraction pipeline over in-memory PDF documents.
type Service struct {
	maxFileSize int64
	verifier    SignatureVerifier
	workers     int
}

// NewService creates an extraction service. verifier may be nil, in which
// case results carry no signature records.
func NewService(maxFileSize int64, verifier SignatureVerifier) *Service {
	return &Service{
		maxFileSize: maxFileSize,
		verifier:    verifier,
		workers:     runtime.GOMAXPROCS(0),
	}
}

var (
	whitespaceRE = regexp.MustCompile(`\s+`)
	dateKeyRE    = regexp.MustCompile(`(?i)date`)
)

// pageScan is everything harvested from one page before the ordered merge.
type pageScan struct {
	number      int
	text        string
	annotations []Annotation
	covered     bool
	redactions  PageRedactions
}

// Extract loads the document and produces normalized page texts and
// document metadata. Load failures are terminal; per-page scan failures
// degrade that page only.
func (s *Service) Extract(ctx context.Context, data []byte, opts Options) (*Result, error) {
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return nil, fmt.Errorf("document too large: %d bytes (max: %d bytes)", len(data), s.maxFileSize)
	}

	doc, err := pdfdoc.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	scans, err := s.scanPages(ctx, doc, opts)
	if err != nil {
		return nil, err
	}

	var info map[string]string
	if !opts.SkipPDFMetadata {
		info = parseInfoDates(doc.Info())
	}

	var signatures []sig.Signature
	if s.verifier != nil {
		signatures, err = s.verifier.Verify(ctx, data)
		if err != nil {
			log.Printf("signature verification unavailable: %v", err)
			signatures = nil
		}
	}

	return assemble(scans, info, signatures, opts), nil
}

// scanPages harvests all pages. Pages are independent, so the work runs on
// a bounded group; results land in a slice indexed by page so the merge
// stays in ascending page order.
func (s *Service) scanPages(ctx context.Context, doc *pdfdoc.Document, opts Options) ([]pageScan, error) {
	n := doc.PageCount()
	scans := make([]pageScan, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := 1; i <= n; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scans[i-1] = scanPage(doc, i, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scans, nil
}

func scanPage(doc *pdfdoc.Document, number int, opts Options) pageScan {
	scan := pageScan{number: number}

	page, err := doc.Page(number)
	if err != nil {
		log.Printf("skipping page %d: %v", number, err)
		return scan
	}

	parts := make([]string, 0, len(page.Runs))
	for _, run := range page.Runs {
		parts = append(parts, run.Text)
	}
	scan.text = normalizeText(strings.Join(parts, " "))

	scan.annotations = make([]Annotation, 0, len(page.Annotations))
	for _, raw := range page.Annotations {
		scan.annotations = append(scan.annotations, NormalizeAnnotation(raw))
	}

	scan.covered = PageCovered(page.Runs, scan.annotations, PageScanTolerance)
	if opts.DetailedRedactions {
		scan.redactions = FindRedactions(number, page.Runs, scan.annotations, FindingsScanTolerance)
	}
	return scan
}

// normalizeText collapses runs of whitespace and trims. This runs exactly
// once per page, before any extractor sees the text.
func normalizeText(text string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
}

// assemble merges per-page scans into the final result, in ascending page
// order with single-threaded map accumulation.
func assemble(scans []pageScan, info map[string]string, signatures []sig.Signature, opts Options) *Result {
	pages := make([]string, 0, len(scans))
	for _, scan := range scans {
		pages = append(pages, scan.text)
	}
	if len(opts.OverrideText) > 0 {
		pages = quality.BetterAll(pages, opts.OverrideText)
	}

	metadata := Metadata{
		Info:         info,
		PageCount:    len(scans),
		JarKodai:     pii.NationalCodes(pages),
		IbanNumeriai: pii.IBANs(pages),
		Telefonai:    pii.Phones(pages),
		Signatures:   signatures,
	}

	for _, page := range pages {
		metadata.CharacterCount += len([]rune(page))
		metadata.WordCount += len(strings.Fields(page))
	}

	// Links: free-text URIs unioned with link annotations.
	annotLinks := pii.NewCollector()
	for _, scan := range scans {
		for _, a := range scan.annotations {
			if a.Subtype == "Link" && a.URI != "" {
				annotLinks.Add(strings.TrimSpace(a.URI), scan.number)
			}
		}
	}
	metadata.Links = pii.Merge(pii.Links(pages), annotLinks.Findings())

	// Emails: mailto links merge into the free-text map, pages unioned.
	var linkEmails []pii.Finding
	for _, l := range metadata.Links {
		if strings.HasPrefix(strings.ToLower(l.Value), "mailto:") {
			linkEmails = append(linkEmails, pii.Finding{Value: l.Value[len("mailto:"):], Pages: l.Pages})
		}
	}
	metadata.Emails = pii.Merge(linkEmails, pii.Emails(pages))
	metadata.Domains = pii.Domains(metadata.Links, metadata.Emails)

	metadata.SloppyRedactions = []int{}
	for _, scan := range scans {
		if scan.covered {
			metadata.SloppyRedactions = append(metadata.SloppyRedactions, scan.number)
		}
		if opts.DetailedRedactions && scan.redactions.HasCrappyRedactions {
			metadata.RedactionFindings = append(metadata.RedactionFindings, scan.redactions)
		}
		if opts.IncludeAnnotations && len(scan.annotations) > 0 {
			metadata.Annotations = append(metadata.Annotations, PageAnnotations{
				Page:        scan.number,
				Annotations: scan.annotations,
			})
		}
	}

	metadata.clean()
	return &Result{Pages: pages, Metadata: metadata}
}

// parseInfoDates rewrites date-like Info values to ISO-8601, keeping the
// raw value when it is not a PDF date.
func parseInfoDates(info map[string]string) map[string]string {
	for key, value := range info {
		if !dateKeyRE.MatchString(key) {
			continue
		}
		if iso, ok := ParsePDFDate(value); ok {
			info[key] = iso
		}
	}
	return info
}
