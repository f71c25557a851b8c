package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/phpdave11/gofpdf/contrib/gofpdi"

	"github.com/ftllc/credit-enroll-pro-sub001/model"
)

// Signer holds the identity and decoded signature raster for one signing
// party.
type Signer struct {
	Name   string
	Email  string
	Method string
	Image  []byte
}

// Signers carries both signing parties plus the request metadata recorded
// in every signature event.
type Signers struct {
	Client        Signer
	CounterSigner Signer
	ClientIP      string
	UserAgent     string
}

// signatureSequence issues package-scoped signature identifiers. The
// counter is shared across all documents in a job, so identifiers are
// monotonic over the whole package.
type signatureSequence struct {
	packageID string
	next      int
}

func newSignatureSequence(packageID string) *signatureSequence {
	return &signatureSequence{packageID: packageID}
}

func (s *signatureSequence) Next() string {
	s.next++
	return fmt.Sprintf("%s-SIG%03d", s.packageID, s.next)
}

// Legacy rectangles for service-agreement documents authored before
// placement metadata existed. Point space, US letter.
var legacyAgreementPlacements = []model.SignaturePlacement{
	{X1: 72, Y1: 660, X2: 252, Y2: 700, Role: model.RoleClient, Label: "Client Signature"},
	{X1: 342, Y1: 660, X2: 522, Y2: 700, Role: model.RoleCounterSigner, Label: "Authorized Signature"},
}

// CompositeSignatures overlays signature images and signature-ID stamps
// onto a filled document. Every page of the input is re-imported as a
// template and redrawn; pages without placements are redrawn unchanged.
// One SignatureEvent is recorded per placement.
//
// Documents with no configured placements fall back to a hard-coded
// last-page rule for service-agreement documents. That rule is a
// compatibility shim for packages authored before placement metadata
// existed, not a design goal.
func CompositeSignatures(doc []byte, docType model.DocumentType, placements []model.SignaturePlacement, signers Signers, seq *signatureSequence, signedAt time.Time) ([]byte, []model.SignatureEvent, error) {
	rs := io.ReadSeeker(bytes.NewReader(doc))
	imp := gofpdi.NewImporter()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 7)

	// Importing the first page populates the source's page size table.
	firstTpl := imp.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
	sizes := imp.GetPageSizes()
	pageCount := len(sizes)
	if pageCount == 0 {
		return nil, nil, fmt.Errorf("document has no pages")
	}

	byPage, err := placementsByPage(docType, placements, pageCount)
	if err != nil {
		return nil, nil, err
	}

	var events []model.SignatureEvent
	for page := 1; page <= pageCount; page++ {
		tpl := firstTpl
		if page > 1 {
			tpl = imp.ImportPageFromStream(pdf, &rs, page, "/MediaBox")
		}

		box, ok := sizes[page]["/MediaBox"]
		if !ok {
			return nil, nil, fmt.Errorf("page %d has no media box", page)
		}
		wPts, hPts := box["w"], box["h"]
		wMM, hMM := wPts*MMPerPoint, hPts*MMPerPoint

		orientation := "P"
		if wPts > hPts {
			orientation = "L"
		}
		pdf.AddPageFormat(orientation, gofpdf.SizeType{Wd: wMM, Ht: hMM})
		imp.UseImportedTemplate(pdf, tpl, 0, 0, wMM, hMM)

		for _, pl := range byPage[page] {
			signer := signers.Client
			if pl.Role == model.RoleCounterSigner {
				signer = signers.CounterSigner
			}
			if len(signer.Image) == 0 {
				return nil, nil, fmt.Errorf("no signature image for %s placement %q", pl.Role, pl.Label)
			}

			sigID := seq.Next()
			rect := RectToMM(pl.X1, pl.Y1, pl.X2, pl.Y2, hPts)

			pdf.RegisterImageOptionsReader(sigID, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(signer.Image))
			pdf.ImageOptions(sigID, rect.X, rect.Y, rect.W, rect.H, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
			pdf.Text(rect.X, rect.Y+rect.H+3, sigID)

			events = append(events, model.SignatureEvent{
				SignatureID: sigID,
				SignerName:  signer.Name,
				SignerEmail: signer.Email,
				Method:      signer.Method,
				SignedAt:    signedAt,
				ClientIP:    signers.ClientIP,
				UserAgent:   signers.UserAgent,
				ImagePNG:    signer.Image,
			})
		}
	}

	if pdf.Err() {
		return nil, nil, fmt.Errorf("composite signatures: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, nil, fmt.Errorf("composite signatures: %w", err)
	}
	return buf.Bytes(), events, nil
}

// placementsByPage normalizes page references and groups placements by
// page number, applying the legacy last-page rule when a service-agreement
// document defines no placements.
func placementsByPage(docType model.DocumentType, placements []model.SignaturePlacement, pageCount int) (map[int][]model.SignaturePlacement, error) {
	byPage := make(map[int][]model.SignaturePlacement)

	if len(placements) == 0 {
		if docType != model.DocServiceAgreement {
			return byPage, nil
		}
		byPage[pageCount] = legacyAgreementPlacements
		return byPage, nil
	}

	for _, pl := range placements {
		page, err := PageNumber(pl.Page)
		if err != nil {
			return nil, fmt.Errorf("placement %q: %w", pl.Label, err)
		}
		if page > pageCount {
			return nil, fmt.Errorf("placement %q targets page %d of a %d-page document", pl.Label, page, pageCount)
		}
		byPage[page] = append(byPage[page], pl)
	}
	return byPage, nil
}
