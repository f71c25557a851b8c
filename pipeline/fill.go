package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/ftllc/credit-enroll-pro-sub001/model"
)

// FormFields builds the field-name to value map burned into every template
// of the package. Field names follow the naming convention used by the
// template authors.
func FormFields(e *model.Enrollment, pkg *model.ContractPackage, signedAt time.Time) map[string]string {
	cityLine := e.City
	if e.State != "" {
		if cityLine != "" {
			cityLine += ", "
		}
		cityLine += e.State
	}
	if e.Zip != "" {
		if cityLine != "" {
			cityLine += " "
		}
		cityLine += e.Zip
	}

	return map[string]string{
		"client_name":       e.FullName(),
		"client_first_name": e.FirstName,
		"client_last_name":  e.LastName,
		"client_email":      e.Email,
		"client_phone":      e.Phone,
		"client_address":    e.Address,
		"client_city_line":  strings.TrimSpace(cityLine),
		"client_state":      e.State,
		"signing_date":      signedAt.Format("January 2, 2006"),
		"notice_date":       pkg.NoticeDate(signedAt).Format("January 2, 2006"),
		"package_id":        e.PackageID,
		"company_name":      pkg.Name,
		"days_to_cancel":    fmt.Sprintf("%d", pkg.DaysToCancel),
	}
}
