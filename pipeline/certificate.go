package pipeline

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/ftllc/credit-enroll-pro-sub001/model"
)

// CertificateMeta describes the package a certificate attests to.
type CertificateMeta struct {
	PackageName string
	PackageID   string
	GeneratedAt time.Time
}

// ContentHash computes the certificate's package digest: a sha256 over the
// package identifier and the generation timestamp nonce. It identifies the
// generation event; it is not a checksum of the merged artifact bytes.
func ContentHash(packageID string, generatedAt time.Time) string {
	sum := sha256.Sum256([]byte(packageID + "|" + generatedAt.Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])
}

// BuildCertificate renders the standalone attestation document listing
// every signature event collected across the package.
func BuildCertificate(meta CertificateMeta, events []model.SignatureEvent) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Certificate of Completion", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Package: %s", meta.PackageName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Package ID: %s", meta.PackageID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", meta.GeneratedAt.Format("January 2, 2006 3:04 PM MST")), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(0, 6, fmt.Sprintf("Package digest: %s", ContentHash(meta.PackageID, meta.GeneratedAt)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Signature Events (%d)", len(events)), "", 1, "L", false, 0, "")

	for i, ev := range events {
		if pdf.GetY() > 230 {
			pdf.AddPage()
		}

		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, ev.SignatureID, "T", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 5, fmt.Sprintf("Signer: %s <%s>", ev.SignerName, ev.SignerEmail), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("Method: %s", ev.Method), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("Signed: %s", ev.SignedAt.Format("January 2, 2006 3:04:05 PM MST")), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("IP: %s", ev.ClientIP), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("User Agent: %s", ev.UserAgent), "", 1, "L", false, 0, "")

		if len(ev.ImagePNG) > 0 {
			imgName := fmt.Sprintf("cert-sig-%d", i)
			pdf.RegisterImageOptionsReader(imgName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(ev.ImagePNG))
			pdf.ImageOptions(imgName, pdf.GetX()+2, pdf.GetY()+1, 45, 15, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
			pdf.Ln(18)
		} else {
			pdf.Ln(4)
		}
	}

	if pdf.Err() {
		return nil, fmt.Errorf("build certificate: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("build certificate: %w", err)
	}
	return buf.Bytes(), nil
}
