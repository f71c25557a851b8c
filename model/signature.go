package model

import "time"

// Signature capture methods recorded in the certificate.
const (
	MethodCanvasDrawn     = "canvas-drawn"
	MethodStoredSignature = "stored company signature"
)

// SignatureEvent is the audit record for one applied signature. Events are
// created once per placement and consumed by the certificate generator.
type SignatureEvent struct {
	SignatureID string    `json:"signature_id"`
	SignerName  string    `json:"signer_name"`
	SignerEmail string    `json:"signer_email"`
	Method      string    `json:"method"`
	SignedAt    time.Time `json:"signed_at"`
	ClientIP    string    `json:"client_ip"`
	UserAgent   string    `json:"user_agent"`

	// ImagePNG holds the decoded signature raster for embedding in the
	// certificate.
	ImagePNG []byte `json:"-"`
}
