package pipeline

import (
	"bytes"
	"testing"
)

func TestMergePageCountConservation(t *testing.T) {
	// 2-page disclosure + 5-page agreement + 1-page POA + 1-page notice
	// + 2-page certificate => 11 merged pages
	docs := [][]byte{
		makePDF(t, 2),
		makePDF(t, 5),
		makePDF(t, 1),
		makePDF(t, 1),
		makePDF(t, 2),
	}

	out, pages, err := MergeAndStamp("PKG-MERGE0000001", docs)
	if err != nil {
		t.Fatalf("Failed to merge: %v", err)
	}
	if pages != 11 {
		t.Errorf("Expected 11 pages, got %d", pages)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("Expected PDF output")
	}
}

func TestMergeSingleDocument(t *testing.T) {
	out, pages, err := MergeAndStamp("PKG-MERGE0000002", [][]byte{makePDF(t, 3)})
	if err != nil {
		t.Fatalf("Failed to merge: %v", err)
	}
	if pages != 3 {
		t.Errorf("Expected 3 pages, got %d", pages)
	}
	if len(out) == 0 {
		t.Error("Expected non-empty output")
	}
}
