package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// FormFiller burns named field values into a PDF template as flattened,
// non-editable text.
type FormFiller interface {
	Fill(ctx context.Context, template []byte, fields map[string]string) ([]byte, error)
}

// PdftkFiller fills forms by shelling out to the pdftk binary with a
// generated FDF file. Each invocation runs in a disposable temp directory
// removed on every path.
type PdftkFiller struct {
	Bin string
}

// NewPdftkFiller creates a filler using the given pdftk binary path.
func NewPdftkFiller(bin string) *PdftkFiller {
	if bin == "" {
		bin = "pdftk"
	}
	return &PdftkFiller{Bin: bin}
}

// Fill runs "pdftk template fill_form data.fdf output filled.pdf flatten"
// and returns the flattened output. A failed run or missing output file is
// an error; the caller treats it as fatal for the whole job.
func (f *PdftkFiller) Fill(ctx context.Context, template []byte, fields map[string]string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "formfill-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	templatePath := filepath.Join(dir, "template.pdf")
	fdfPath := filepath.Join(dir, "data.fdf")
	outputPath := filepath.Join(dir, "filled.pdf")

	if err := os.WriteFile(templatePath, template, 0o600); err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	if err := os.WriteFile(fdfPath, BuildFDF(fields), 0o600); err != nil {
		return nil, fmt.Errorf("write field data: %w", err)
	}

	cmd := exec.CommandContext(ctx, f.Bin, templatePath, "fill_form", fdfPath, "output", outputPath, "flatten")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run %s: %w: %s", f.Bin, err, strings.TrimSpace(stderr.String()))
	}

	filled, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("form fill produced no output: %w", err)
	}
	return filled, nil
}

// BuildFDF renders a field map as an FDF document. Fields are emitted in
// sorted order so the output is deterministic.
func BuildFDF(fields map[string]string) []byte {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b bytes.Buffer
	b.WriteString("%FDF-1.2\n1 0 obj\n<< /FDF << /Fields [\n")
	for _, name := range names {
		fmt.Fprintf(&b, "<< /T (%s) /V (%s) >>\n", escapeFDF(name), escapeFDF(fields[name]))
	}
	b.WriteString("] >> >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
	return b.Bytes()
}

// escapeFDF escapes the characters reserved in FDF string literals.
func escapeFDF(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
