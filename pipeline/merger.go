package pipeline

import (
	"bytes"
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"
	"github.com/phpdave11/gofpdf/contrib/gofpdi"
)

// MergeAndStamp concatenates the given documents into one output PDF,
// re-importing every page as a template so original page sizes and
// orientations survive. Every page receives a top-center running header
// "{packageID} | Page {n}" where n is 1-based across the whole merged
// document. The merged page count equals the sum of the inputs' counts.
func MergeAndStamp(packageID string, docs [][]byte) ([]byte, int, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	imp := gofpdi.NewImporter()
	pdf.SetFont("Helvetica", "", 8)

	pageN := 0
	for i, doc := range docs {
		rs := io.ReadSeeker(bytes.NewReader(doc))

		firstTpl := imp.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
		sizes := imp.GetPageSizes()
		count := len(sizes)
		if count == 0 {
			return nil, 0, fmt.Errorf("merge input %d has no pages", i+1)
		}

		for page := 1; page <= count; page++ {
			tpl := firstTpl
			if page > 1 {
				tpl = imp.ImportPageFromStream(pdf, &rs, page, "/MediaBox")
			}

			box, ok := sizes[page]["/MediaBox"]
			if !ok {
				return nil, 0, fmt.Errorf("merge input %d page %d has no media box", i+1, page)
			}
			wMM, hMM := box["w"]*MMPerPoint, box["h"]*MMPerPoint

			orientation := "P"
			if wMM > hMM {
				orientation = "L"
			}
			pdf.AddPageFormat(orientation, gofpdf.SizeType{Wd: wMM, Ht: hMM})
			imp.UseImportedTemplate(pdf, tpl, 0, 0, wMM, hMM)

			pageN++
			stamp := fmt.Sprintf("%s | Page %d", packageID, pageN)
			pdf.Text((wMM-pdf.GetStringWidth(stamp))/2, 6, stamp)
		}
	}

	if pdf.Err() {
		return nil, 0, fmt.Errorf("merge and stamp: %w", pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, 0, fmt.Errorf("merge and stamp: %w", err)
	}
	return buf.Bytes(), pageN, nil
}
