// Package docs extracts plain text from uploaded business documents.
// Format support is dispatched on file extension: txt, md, and csv are
// read directly; pdf goes through the pdftotext CLI tool.
package docs

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/discovery-cli/internal/errs"
)

// pdftotextBin can be overridden for environments where the binary is
// not on PATH.
var pdftotextBin = "pdftotext"

// SetPdfToTextPath overrides the pdftotext binary location.
func SetPdfToTextPath(path string) {
	if path != "" {
		pdftotextBin = path
	}
}

// SupportedExtensions lists the document formats the extractor accepts.
func SupportedExtensions() []string {
	return []string{".txt", ".md", ".csv", ".pdf"}
}

// Supported reports whether the file's extension is a supported format.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedExtensions() {
		if ext == s {
			return true
		}
	}
	return false
}

// ExtractText returns the plain text content of the document at path.
func ExtractText(ctx context.Context, path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", ".md", ".csv":
		return readPlain(path)
	case ".pdf":
		return pdfToText(ctx, path)
	default:
		return "", errs.WithCategory(
			eris.Errorf("docs: unsupported document format %q", ext),
			errs.CategoryParse,
		)
	}
}

func readPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrapf(err, "docs: reading %s", path)
	}
	return string(data), nil
}

// pdfToText runs pdftotext -layout on the given PDF and returns stdout.
func pdfToText(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, pdftotextBin, "-layout", path, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "docs: pdftotext failed for %s: %s", path, stderr.String())
	}

	return stdout.String(), nil
}
