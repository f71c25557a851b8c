package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ftllc/credit-enroll-pro-sub001/model"
)

func TestCompositeConfiguredPlacements(t *testing.T) {
	doc := makePDF(t, 3)
	placements := []model.SignaturePlacement{
		{Page: "1", X1: 72, Y1: 100, X2: 252, Y2: 140, Role: model.RoleClient, Label: "Initials"},
		{Page: "three", X1: 72, Y1: 660, X2: 252, Y2: 700, Role: model.RoleClient, Label: "Client Signature"},
		{Page: "three", X1: 342, Y1: 660, X2: 522, Y2: 700, Role: model.RoleCounterSigner, Label: "Authorized Signature"},
	}

	seq := newSignatureSequence("PKG-TEST00000001")
	out, events, err := CompositeSignatures(doc, model.DocDisclosure, placements, testSigners(t), seq, testSignedAt)
	if err != nil {
		t.Fatalf("Failed to composite: %v", err)
	}

	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("Expected PDF output")
	}
	if len(events) != 3 {
		t.Fatalf("Expected 3 signature events, got %d", len(events))
	}
	if events[0].SignatureID != "PKG-TEST00000001-SIG001" {
		t.Errorf("Unexpected first signature ID %q", events[0].SignatureID)
	}
	if events[2].Method != "stored company signature" {
		t.Errorf("Expected counter-signer method, got %q", events[2].Method)
	}
	if events[1].ClientIP != "203.0.113.9" {
		t.Errorf("Expected client IP in event, got %q", events[1].ClientIP)
	}
}

func TestCompositeLegacyFallback(t *testing.T) {
	doc := makePDF(t, 4)

	seq := newSignatureSequence("PKG-TEST00000002")
	_, events, err := CompositeSignatures(doc, model.DocServiceAgreement, nil, testSigners(t), seq, testSignedAt)
	if err != nil {
		t.Fatalf("Failed to composite: %v", err)
	}

	// Service agreements without placements get exactly two signatures
	// (client + counter-signer) on the last page
	if len(events) != 2 {
		t.Fatalf("Expected 2 fallback signature events, got %d", len(events))
	}
	if events[0].Method != "canvas-drawn" {
		t.Errorf("Expected client event first, got method %q", events[0].Method)
	}
	if events[1].Method != "stored company signature" {
		t.Errorf("Expected counter-signer event second, got method %q", events[1].Method)
	}
}

func TestCompositeNoPlacementsOtherTypes(t *testing.T) {
	doc := makePDF(t, 2)

	seq := newSignatureSequence("PKG-TEST00000003")
	out, events, err := CompositeSignatures(doc, model.DocDisclosure, nil, testSigners(t), seq, testSignedAt)
	if err != nil {
		t.Fatalf("Failed to composite: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Expected no events for unsigned document, got %d", len(events))
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Error("Expected PDF output")
	}
}

func TestSignatureIDMonotonicity(t *testing.T) {
	signers := testSigners(t)
	seq := newSignatureSequence("PKG-TEST00000004")

	var events []model.SignatureEvent
	// Two documents sharing one sequence: the counter must not reset
	for i := 0; i < 2; i++ {
		doc := makePDF(t, 4)
		_, evts, err := CompositeSignatures(doc, model.DocServiceAgreement, nil, signers, seq, testSignedAt)
		if err != nil {
			t.Fatalf("Failed to composite document %d: %v", i+1, err)
		}
		events = append(events, evts...)
	}

	if len(events) != 4 {
		t.Fatalf("Expected 4 events, got %d", len(events))
	}
	for i, ev := range events {
		want := "PKG-TEST00000004-SIG00" + string(rune('1'+i))
		if ev.SignatureID != want {
			t.Errorf("Event %d: expected ID %q, got %q", i, want, ev.SignatureID)
		}
		if !strings.HasPrefix(ev.SignatureID, "PKG-TEST00000004-SIG") {
			t.Errorf("Unexpected ID format %q", ev.SignatureID)
		}
	}
}

func TestCompositeMissingImage(t *testing.T) {
	doc := makePDF(t, 1)
	signers := testSigners(t)
	signers.CounterSigner.Image = nil

	placements := []model.SignaturePlacement{
		{Page: "1", X1: 72, Y1: 660, X2: 252, Y2: 700, Role: model.RoleCounterSigner, Label: "Authorized Signature"},
	}

	seq := newSignatureSequence("PKG-TEST00000005")
	_, _, err := CompositeSignatures(doc, model.DocDisclosure, placements, signers, seq, testSignedAt)
	if err == nil {
		t.Error("Expected error for missing counter-signature image")
	}
}

func TestCompositePlacementBeyondPageCount(t *testing.T) {
	doc := makePDF(t, 2)
	placements := []model.SignaturePlacement{
		{Page: "five", X1: 72, Y1: 660, X2: 252, Y2: 700, Role: model.RoleClient, Label: "Client Signature"},
	}

	seq := newSignatureSequence("PKG-TEST00000006")
	_, _, err := CompositeSignatures(doc, model.DocDisclosure, placements, testSigners(t), seq, testSignedAt)
	if err == nil {
		t.Error("Expected error for placement beyond last page")
	}
}
