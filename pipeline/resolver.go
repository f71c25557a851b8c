package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/ftllc/credit-enroll-pro-sub001/model"
)

// ErrNoPackageFound is returned when neither a jurisdiction-specific nor a
// default contract package exists. Fatal for the whole job.
var ErrNoPackageFound = errors.New("no contract package found")

// TemplateSource provides read access to administrator-authored contract
// packages. Implementations return (nil, nil) when no package matches.
type TemplateSource interface {
	PackageForJurisdiction(ctx context.Context, code string) (*model.ContractPackage, error)
	DefaultPackage(ctx context.Context) (*model.ContractPackage, error)
}

// ResolvePackage selects the contract package applicable to a jurisdiction,
// falling back to the default package. Resolution is deterministic and
// side-effect-free.
func ResolvePackage(ctx context.Context, src TemplateSource, jurisdiction string) (*model.ContractPackage, error) {
	if jurisdiction != "" {
		pkg, err := src.PackageForJurisdiction(ctx, jurisdiction)
		if err != nil {
			return nil, fmt.Errorf("look up package for jurisdiction %q: %w", jurisdiction, err)
		}
		if pkg != nil {
			return pkg, nil
		}
	}

	pkg, err := src.DefaultPackage(ctx)
	if err != nil {
		return nil, fmt.Errorf("look up default package: %w", err)
	}
	if pkg == nil {
		return nil, fmt.Errorf("%w (jurisdiction %q)", ErrNoPackageFound, jurisdiction)
	}
	return pkg, nil
}
