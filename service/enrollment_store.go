package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ftllc/credit-enroll-pro-sub001/model"
)

// EnrollmentStore provides Postgres-backed access to enrollment records and
// their package job fields.
type EnrollmentStore struct {
	pool *pgxpool.Pool
}

// NewEnrollmentStore creates the store and ensures the enrollments table
// exists.
func NewEnrollmentStore(ctx context.Context, pool *pgxpool.Pool) (*EnrollmentStore, error) {
	s := &EnrollmentStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure enrollment schema: %w", err)
	}
	slog.Info("enrollment store initialised")
	return s, nil
}

func (s *EnrollmentStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS enrollments (
			id                   BIGSERIAL PRIMARY KEY,
			first_name           TEXT NOT NULL DEFAULT '',
			last_name            TEXT NOT NULL DEFAULT '',
			email                TEXT NOT NULL DEFAULT '',
			phone                TEXT NOT NULL DEFAULT '',
			address              TEXT NOT NULL DEFAULT '',
			city                 TEXT NOT NULL DEFAULT '',
			state                TEXT NOT NULL DEFAULT '',
			zip                  TEXT NOT NULL DEFAULT '',
			jurisdiction         TEXT NOT NULL DEFAULT '',
			signature_image      TEXT NOT NULL DEFAULT '',
			package_id           TEXT NOT NULL DEFAULT '',
			package_status       TEXT NOT NULL DEFAULT '',
			complete_package_pdf BYTEA,
			package_file_size    INTEGER NOT NULL DEFAULT 0,
			package_total_pages  INTEGER NOT NULL DEFAULT 0,
			package_completed_at TIMESTAMPTZ,
			package_error        TEXT NOT NULL DEFAULT '',
			created_at           TIMESTAMPTZ DEFAULT NOW(),
			updated_at           TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_enroll_package_id ON enrollments(package_id);
		CREATE INDEX IF NOT EXISTS idx_enroll_status ON enrollments(package_status);
	`)
	return err
}

const enrollmentColumns = `
	id, first_name, last_name, email, phone, address, city, state, zip,
	jurisdiction, signature_image, package_id, package_status,
	complete_package_pdf, package_file_size, package_total_pages,
	package_completed_at, package_error, created_at, updated_at`

// Get retrieves one enrollment record. Returns (nil, nil) when no record
// exists.
func (s *EnrollmentStore) Get(ctx context.Context, id int64) (*model.Enrollment, error) {
	row := s.pool.QueryRow(ctx, `SELECT`+enrollmentColumns+` FROM enrollments WHERE id = $1`, id)
	return scanEnrollment(row)
}

// SetPackageID assigns the external package identifier if the record does
// not have one yet.
func (s *EnrollmentStore) SetPackageID(ctx context.Context, id int64, packageID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE enrollments
		SET package_id = $1, updated_at = NOW()
		WHERE id = $2 AND package_id = ''
	`, packageID, id)
	return err
}

// ClaimForProcessing atomically transitions a record into the processing
// state. The conditional update closes the duplicate-dispatch window: only
// one of two near-simultaneous triggers can win the claim. Returns whether
// this caller won.
func (s *EnrollmentStore) ClaimForProcessing(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE enrollments
		SET package_status = $1, package_error = '', updated_at = NOW()
		WHERE id = $2
		  AND package_id <> ''
		  AND package_status NOT IN ($1, $3)
	`, model.PackageStatusProcessing, id, model.PackageStatusCompleted)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// MarkCompleted persists the final artifact and flips the record to the
// completed terminal state.
func (s *EnrollmentStore) MarkCompleted(ctx context.Context, id int64, pdf []byte, pages int, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE enrollments
		SET package_status = $1,
		    complete_package_pdf = $2,
		    package_file_size = $3,
		    package_total_pages = $4,
		    package_completed_at = $5,
		    package_error = '',
		    updated_at = NOW()
		WHERE id = $6
	`, model.PackageStatusCompleted, pdf, len(pdf), pages, at, id)
	return err
}

// MarkFailed records the failure message and flips the record to the
// failed terminal state.
func (s *EnrollmentStore) MarkFailed(ctx context.Context, id int64, msg string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE enrollments
		SET package_status = $1, package_error = $2, updated_at = NOW()
		WHERE id = $3
	`, model.PackageStatusFailed, msg, id)
	return err
}

func scanEnrollment(row pgx.Row) (*model.Enrollment, error) {
	var e model.Enrollment
	err := row.Scan(
		&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Phone, &e.Address,
		&e.City, &e.State, &e.Zip, &e.Jurisdiction, &e.SignatureImage,
		&e.PackageID, &e.PackageStatus, &e.PackagePDF, &e.PackageFileSize,
		&e.PackageTotalPages, &e.PackageCompletedAt, &e.PackageError,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
