package model

import "time"

// DocumentType tags one template within a contract package.
type DocumentType string

const (
	DocDisclosure         DocumentType = "disclosure"
	DocServiceAgreement   DocumentType = "service-agreement"
	DocPowerOfAttorney    DocumentType = "power-of-attorney"
	DocCancellationNotice DocumentType = "cancellation-notice"
)

// MergeOrder is the canonical order in which documents appear in the final
// package. The certificate is appended after these.
var MergeOrder = []DocumentType{
	DocDisclosure,
	DocServiceAgreement,
	DocPowerOfAttorney,
	DocCancellationNotice,
}

// SignerRole tags which party a signature placement belongs to.
type SignerRole string

const (
	RoleClient        SignerRole = "client"
	RoleCounterSigner SignerRole = "counter-signer"
)

// SignaturePlacement describes where one signature image belongs on a
// template document. The rectangle is in PDF point space with the origin at
// the top-left of the page. Page may be numeric ("2") or a written name
// ("two"); it must be normalized before use.
type SignaturePlacement struct {
	Page  string     `json:"page"`
	X1    float64    `json:"x1"`
	Y1    float64    `json:"y1"`
	X2    float64    `json:"x2"`
	Y2    float64    `json:"y2"`
	Role  SignerRole `json:"role"`
	Label string     `json:"label"`
}

// ContractDocument is one template within a contract package.
type ContractDocument struct {
	ID         int64                `json:"id"`
	Type       DocumentType         `json:"type"`
	ObjectName string               `json:"object_name"`
	PDF        []byte               `json:"-"`
	Placements []SignaturePlacement `json:"placements,omitempty"`
}

// ContractPackage is the bundle of templates applicable to one
// jurisdiction, or the default bundle. Authored by administrators and
// read-only at enrollment time.
type ContractPackage struct {
	ID           int64              `json:"id"`
	Name         string             `json:"name"`
	Jurisdiction string             `json:"jurisdiction"`
	IsDefault    bool               `json:"is_default"`
	SignerID     string             `json:"signer_id,omitempty"`
	DaysToCancel int                `json:"days_to_cancel"`
	Documents    []ContractDocument `json:"documents,omitempty"`
}

// DocumentsInMergeOrder returns the package documents sorted into the
// canonical merge order. Documents of an unknown type are dropped.
func (p *ContractPackage) DocumentsInMergeOrder() []ContractDocument {
	var out []ContractDocument
	for _, t := range MergeOrder {
		for _, d := range p.Documents {
			if d.Type == t {
				out = append(out, d)
			}
		}
	}
	return out
}

// NoticeDate computes the cancellation notice date from the signing date
// and the package's days-to-cancel setting.
func (p *ContractPackage) NoticeDate(from time.Time) time.Time {
	days := p.DaysToCancel
	if days <= 0 {
		days = 3
	}
	return from.AddDate(0, 0, days)
}
