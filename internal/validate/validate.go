// Package validate partitions mapped candidate rows into accepted units
// and rejected rows with per-row reason codes. Validation is row-local;
// cross-row uniqueness of unit numbers is deliberately not enforced.
package validate

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"

	"pricing-compliance-portal/internal/mapper"
	"pricing-compliance-portal/internal/models"
)

// Reason codes attached to rejected rows
const (
	ReasonEmptyOrUnmappable = "empty-or-unmappable"
	ReasonMissingLocation   = "missing-location"
	ReasonNegativeNumber    = "negative-number"
	ReasonMalformedDate     = "malformed-date"
)

// Candidate pairs a mapped unit (nil when unmappable) with its source row index
type Candidate struct {
	RowIndex int
	Unit     *models.Unit
}

// RejectedRow reports why one source row was not ingested
type RejectedRow struct {
	RowIndex int      `json:"row_index"`
	Reasons  []string `json:"reasons"`
}

// Outcome partitions a batch. len(Accepted)+len(Rejected) always equals
// the number of candidates: no row silently vanishes.
type Outcome struct {
	Accepted []models.Unit
	Rejected []RejectedRow
}

var structValidator = validator.New()

// placeholderSeq disambiguates placeholder unit numbers minted within the
// same nanosecond
var placeholderSeq atomic.Uint64

// Validate checks every candidate row-locally. A missing unit number is
// repaired with a unique placeholder instead of rejecting the row.
func Validate(candidates []Candidate) Outcome {
	var out Outcome
	for _, c := range candidates {
		if c.Unit == nil {
			out.Rejected = append(out.Rejected, RejectedRow{
				RowIndex: c.RowIndex,
				Reasons:  []string{ReasonEmptyOrUnmappable},
			})
			continue
		}

		if c.Unit.UnitNumber == "" {
			c.Unit.UnitNumber = placeholderUnitNumber()
		}

		reasons := checkUnit(c.Unit)
		if len(reasons) > 0 {
			out.Rejected = append(out.Rejected, RejectedRow{RowIndex: c.RowIndex, Reasons: reasons})
			continue
		}
		out.Accepted = append(out.Accepted, *c.Unit)
	}
	return out
}

// checkUnit evaluates the struct tags plus the date-format rule and maps
// failures onto the reason codes.
func checkUnit(u *models.Unit) []string {
	var reasons []string

	if err := structValidator.Struct(u); err != nil {
		missingLocation := false
		negative := false
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				switch fe.Tag() {
				case "required":
					missingLocation = true
				case "gte":
					negative = true
				}
			}
		}
		if missingLocation {
			reasons = append(reasons, ReasonMissingLocation)
		}
		if negative {
			reasons = append(reasons, ReasonNegativeNumber)
		}
	}

	if !mapper.WellFormedDate(u.BasePriceDate) || !mapper.WellFormedDate(u.FinalPriceDate) {
		reasons = append(reasons, ReasonMalformedDate)
	}

	return reasons
}

// placeholderUnitNumber synthesizes an identifier for a row that declared
// none. The timestamp plus sequence keeps placeholders from colliding.
func placeholderUnitNumber() string {
	return fmt.Sprintf("LOKAL-%d-%d", time.Now().UnixNano(), placeholderSeq.Add(1))
}
