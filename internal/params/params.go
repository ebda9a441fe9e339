// Package params validates run parameters before any network activity.
// All checks are pure; a failure is always a *errs.ValidationError naming
// the offending parameter.
package params

import (
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/macropulse/internal/domain/errs"
	"github.com/guttosm/macropulse/internal/domain/models"
)

const dateLayout = "2006-01-02"

// CheckDateParams validates the inputs of the date-ranged sources
// (currency, weather).
//
// Rules:
//   - start/end must parse as ISO 8601 dates (YYYY-MM-DD).
//   - start must not exceed end.
//   - outPath must end with ".csv".
//   - byDay must be a boolean-like string ("true", "false", "1", "0", ...).
//
// Returns the parsed range and flag on success.
func CheckDateParams(start, end, outPath, byDay string) (models.DateRange, bool, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return models.DateRange{}, false, errs.Validation("start_date", "must be an ISO 8601 date (YYYY-MM-DD)")
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return models.DateRange{}, false, errs.Validation("end_date", "must be an ISO 8601 date (YYYY-MM-DD)")
	}
	if s.After(e) {
		return models.DateRange{}, false, errs.Validation("start_date", "must be <= end_date")
	}
	if err := checkOutPath(outPath); err != nil {
		return models.DateRange{}, false, err
	}
	daily, err := strconv.ParseBool(byDay)
	if err != nil {
		return models.DateRange{}, false, errs.Validation("by_day", "must be a boolean value")
	}
	return models.DateRange{Start: s, End: e}, daily, nil
}

// CheckYearParams validates the inputs of the balance source.
func CheckYearParams(startYear, endYear int, outPath string) error {
	if startYear > endYear {
		return errs.Validation("start_year", "must be <= end_year")
	}
	return checkOutPath(outPath)
}

func checkOutPath(outPath string) error {
	if !strings.HasSuffix(outPath, ".csv") {
		return errs.Validation("loading_path", "must end with '.csv' (example: your_path.csv)")
	}
	return nil
}
