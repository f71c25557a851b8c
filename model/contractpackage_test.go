package model

import (
	"testing"
	"time"
)

func TestDocumentsInMergeOrder(t *testing.T) {
	pkg := &ContractPackage{
		Documents: []ContractDocument{
			{ID: 1, Type: DocCancellationNotice},
			{ID: 2, Type: DocServiceAgreement},
			{ID: 3, Type: DocDisclosure},
			{ID: 4, Type: DocPowerOfAttorney},
		},
	}

	docs := pkg.DocumentsInMergeOrder()
	if len(docs) != 4 {
		t.Fatalf("Expected 4 documents, got %d", len(docs))
	}

	want := []DocumentType{DocDisclosure, DocServiceAgreement, DocPowerOfAttorney, DocCancellationNotice}
	for i, d := range docs {
		if d.Type != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], d.Type)
		}
	}
}

func TestDocumentsInMergeOrderUnknownType(t *testing.T) {
	pkg := &ContractPackage{
		Documents: []ContractDocument{
			{ID: 1, Type: DocDisclosure},
			{ID: 2, Type: DocumentType("mystery")},
		},
	}

	docs := pkg.DocumentsInMergeOrder()
	if len(docs) != 1 {
		t.Errorf("Expected unknown document types to be dropped, got %d documents", len(docs))
	}
}

func TestNoticeDate(t *testing.T) {
	from := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	pkg := &ContractPackage{DaysToCancel: 5}
	if got := pkg.NoticeDate(from); !got.Equal(from.AddDate(0, 0, 5)) {
		t.Errorf("Expected notice date 5 days out, got %v", got)
	}

	// Zero falls back to three days
	pkg = &ContractPackage{}
	if got := pkg.NoticeDate(from); !got.Equal(from.AddDate(0, 0, 3)) {
		t.Errorf("Expected default 3-day notice date, got %v", got)
	}
}
