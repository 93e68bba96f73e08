// Package office converts legacy office documents to PDF through a
// headless LibreOffice invocation. The conversion is treated as an opaque
// contract: PDF bytes back, or a terminal error; the process is killed if
// it outlives its timeout and scratch files are removed on every path.
package office

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/doktools/docmeta/internal/tmpfile"
)

// DefaultTimeout bounds one LibreOffice run.
const DefaultTimeout = 60 * time.Second

// Converter shells out to LibreOffice.
type Converter struct {
	Binary  string
	TmpDir  string
	Timeout time.Duration
}

// SupportedExtension reports whether ext (without dot) is a format the
// converter accepts.
func SupportedExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case "doc", "docx", "odt", "xls", "xlsx", "ppt", "pptx":
		return true
	default:
		return false
	}
}

// ToPDF writes data to a scratch file, converts it and returns the PDF
// bytes.
func (c *Converter) ToPDF(ctx context.Context, data []byte, ext string) ([]byte, error) {
	binary := c.Binary
	if binary == "" {
		binary = "libreoffice"
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	inPath, release, err := tmpfile.Write(c.TmpDir, "."+strings.ToLower(ext), data)
	if err != nil {
		return nil, err
	}
	defer release()

	// LibreOffice names the output after the input, in --outdir.
	outPath := strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".pdf"
	defer os.Remove(outPath)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary,
		"--headless", "--convert-to", "pdf", "--outdir", c.TmpDir, inPath)
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("conversion timed out after %s", timeout)
		}
		return nil, fmt.Errorf("conversion failed: %w", err)
	}

	pdfData, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("conversion produced no output: %w", err)
	}
	return pdfData, nil
}
