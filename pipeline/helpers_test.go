package pipeline

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/phpdave11/gofpdf"
)

// makePDF builds a simple multi-page PDF for use as a template input.
func makePDF(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.Text(20, 20, fmt.Sprintf("page %d", i+1))
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("Failed to build test PDF: %v", err)
	}
	return buf.Bytes()
}

// makeSignaturePNG builds a small opaque PNG standing in for a hand-drawn
// signature capture.
func makeSignaturePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 16))
	for x := 0; x < 40; x++ {
		img.Set(x, 8, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func makeSignatureDataURL(t *testing.T) string {
	t.Helper()
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(makeSignaturePNG(t))
}

func testSigners(t *testing.T) Signers {
	t.Helper()
	img := makeSignaturePNG(t)
	return Signers{
		Client: Signer{
			Name:   "Jordan Reyes",
			Email:  "jordan@example.com",
			Method: "canvas-drawn",
			Image:  img,
		},
		CounterSigner: Signer{
			Name:   "Acme Credit Services",
			Email:  "jordan@example.com",
			Method: "stored company signature",
			Image:  img,
		},
		ClientIP:  "203.0.113.9",
		UserAgent: "test-agent/1.0",
	}
}

var testSignedAt = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
