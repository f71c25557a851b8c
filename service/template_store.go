package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ftllc/credit-enroll-pro-sub001/model"
)

// TemplateStore provides read access to administrator-authored contract
// packages. Package metadata lives in Postgres; the template PDF bytes live
// in the object store and are fetched on load.
type TemplateStore struct {
	pool    *pgxpool.Pool
	objects *ObjectStore
}

// NewTemplateStore creates the store and ensures the package tables exist.
func NewTemplateStore(ctx context.Context, pool *pgxpool.Pool, objects *ObjectStore) (*TemplateStore, error) {
	s := &TemplateStore{pool: pool, objects: objects}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure template schema: %w", err)
	}
	slog.Info("template store initialised")
	return s, nil
}

func (s *TemplateStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS contract_packages (
			id             BIGSERIAL PRIMARY KEY,
			name           TEXT NOT NULL,
			jurisdiction   TEXT NOT NULL DEFAULT '',
			is_default     BOOLEAN NOT NULL DEFAULT FALSE,
			signer_id      TEXT NOT NULL DEFAULT '',
			days_to_cancel INTEGER NOT NULL DEFAULT 3,
			created_at     TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS contract_documents (
			id          BIGSERIAL PRIMARY KEY,
			package_id  BIGINT NOT NULL REFERENCES contract_packages(id),
			type        TEXT NOT NULL,
			object_name TEXT NOT NULL,
			placements  JSONB,
			created_at  TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_pkg_jurisdiction ON contract_packages(jurisdiction);
		CREATE INDEX IF NOT EXISTS idx_doc_package ON contract_documents(package_id);
	`)
	return err
}

// PackageForJurisdiction returns the package mapped to a jurisdiction, or
// (nil, nil) when none exists.
func (s *TemplateStore) PackageForJurisdiction(ctx context.Context, code string) (*model.ContractPackage, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, jurisdiction, is_default, signer_id, days_to_cancel
		FROM contract_packages
		WHERE jurisdiction = $1
		ORDER BY id
		LIMIT 1
	`, code)
	return s.loadPackage(ctx, row)
}

// DefaultPackage returns the package flagged default, or (nil, nil) when
// none exists.
func (s *TemplateStore) DefaultPackage(ctx context.Context) (*model.ContractPackage, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, jurisdiction, is_default, signer_id, days_to_cancel
		FROM contract_packages
		WHERE is_default
		ORDER BY id
		LIMIT 1
	`)
	return s.loadPackage(ctx, row)
}

func (s *TemplateStore) loadPackage(ctx context.Context, row pgx.Row) (*model.ContractPackage, error) {
	var p model.ContractPackage
	err := row.Scan(&p.ID, &p.Name, &p.Jurisdiction, &p.IsDefault, &p.SignerID, &p.DaysToCancel)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadDocuments(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *TemplateStore) loadDocuments(ctx context.Context, p *model.ContractPackage) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, type, object_name, placements
		FROM contract_documents
		WHERE package_id = $1
		ORDER BY id
	`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			d             model.ContractDocument
			placementJSON []byte
		)
		if err := rows.Scan(&d.ID, &d.Type, &d.ObjectName, &placementJSON); err != nil {
			return err
		}
		if len(placementJSON) > 0 {
			if err := json.Unmarshal(placementJSON, &d.Placements); err != nil {
				return fmt.Errorf("document %d placements: %w", d.ID, err)
			}
		}
		p.Documents = append(p.Documents, d)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range p.Documents {
		pdf, err := s.objects.FetchObject(ctx, p.Documents[i].ObjectName)
		if err != nil {
			return fmt.Errorf("fetch template %s: %w", p.Documents[i].ObjectName, err)
		}
		p.Documents[i].PDF = pdf
	}
	return nil
}
