package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Enrollment represents one client enrollment record, including the
// contract package fields written by the generation worker.
type Enrollment struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Zip          string    `json:"zip"`
	Jurisdiction string    `json:"jurisdiction"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// SignatureImage holds the client's hand-drawn signature as base64 PNG,
	// possibly prefixed with a data-URL marker.
	SignatureImage string `json:"-"`

	PackageID          string     `json:"package_id,omitempty"`
	PackageStatus      string     `json:"package_status,omitempty"`
	PackagePDF         []byte     `json:"-"`
	PackageFileSize    int        `json:"package_file_size,omitempty"`
	PackageTotalPages  int        `json:"package_total_pages,omitempty"`
	PackageCompletedAt *time.Time `json:"package_completed_at,omitempty"`
	PackageError       string     `json:"package_error,omitempty"`
}

// PackageStatus constants
const (
	PackageStatusEmpty      = ""
	PackageStatusProcessing = "processing"
	PackageStatusCompleted  = "completed"
	PackageStatusFailed     = "failed"
)

// FullName returns the client's display name.
func (e *Enrollment) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// CanDispatch reports whether a package generation job may be started for
// the given record state. A job needs a generated package identifier and
// must not already be running or finished.
func CanDispatch(status, packageID string) bool {
	if packageID == "" {
		return false
	}
	return status != PackageStatusProcessing && status != PackageStatusCompleted
}

// NewPackageID generates an external package identifier.
func NewPackageID() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "PKG-" + raw[:12]
}
