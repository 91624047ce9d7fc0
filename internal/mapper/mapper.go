// Package mapper resolves dialect columns into canonical unit records,
// applying the documented coercion and fallback rules per field.
package mapper

import (
	"strings"
	"time"

	"pricing-compliance-portal/internal/dialect"
	"pricing-compliance-portal/internal/models"
	"pricing-compliance-portal/internal/tabular"
)

// PlaceholderPrice marks a price the source simply did not provide.
// Downstream consumers rely on this exact value, do not change it to 0.
const PlaceholderPrice = 1

// Diagnostic notes a per-field fallback taken while mapping a row
type Diagnostic struct {
	RowIndex int    `json:"row_index"`
	Field    string `json:"field"`
	Note     string `json:"note"`
}

// MapRow maps one source row into a candidate unit under the given
// dialect. A row with no recognizable content yields nil; the validator
// turns that into an "empty-or-unmappable" rejection. The today argument
// feeds the date substitution rule.
func MapRow(row tabular.Row, d dialect.Dialect, today time.Time) (*models.Unit, []Diagnostic) {
	if isEmptyRow(row) {
		return nil, nil
	}

	var diags []Diagnostic
	note := func(field dialect.Field, msg string) {
		diags = append(diags, Diagnostic{RowIndex: row.Index, Field: string(field), Note: msg})
	}

	u := &models.Unit{}

	u.Region, _ = text(row, d, dialect.FieldRegion)
	u.County, _ = text(row, d, dialect.FieldCounty)
	u.Municipality, _ = text(row, d, dialect.FieldMunicipality)
	u.UnitNumber, _ = text(row, d, dialect.FieldUnitNumber)

	if area, ok := decimal(row, d, dialect.FieldUsableArea); ok {
		u.UsableArea = area
	}

	// Price fallback chains. Each required price resolves to the first
	// available source in its chain; with nothing available it becomes
	// the documented placeholder rather than null.
	finalPrice, finalOK := decimal(row, d, dialect.FieldFinalPrice)
	totalPrice, totalOK := decimal(row, d, dialect.FieldTotalPrice)
	if !finalOK && totalOK {
		finalPrice, finalOK = totalPrice, true
		note(dialect.FieldFinalPrice, "taken from total price column")
	}

	if ppm, ok := decimal(row, d, dialect.FieldPricePerM2); ok {
		u.PricePerM2 = ppm
	} else if finalOK {
		u.PricePerM2 = finalPrice
		note(dialect.FieldPricePerM2, "derived from final price")
	} else {
		u.PricePerM2 = PlaceholderPrice
		note(dialect.FieldPricePerM2, "placeholder, no source value")
	}

	if base, ok := decimal(row, d, dialect.FieldBasePrice); ok {
		u.BasePrice = base
	} else if totalOK {
		u.BasePrice = totalPrice
		note(dialect.FieldBasePrice, "taken from total price column")
	} else if finalOK {
		u.BasePrice = finalPrice
		note(dialect.FieldBasePrice, "taken from final price")
	} else {
		u.BasePrice = PlaceholderPrice
		note(dialect.FieldBasePrice, "placeholder, no source value")
	}

	if finalOK {
		u.FinalPrice = finalPrice
	} else {
		u.FinalPrice = PlaceholderPrice
		note(dialect.FieldFinalPrice, "placeholder, no source value")
	}

	baseDate, _ := d.Lookup(row, dialect.FieldBasePriceDate)
	u.BasePriceDate = coerceDate(baseDate, today)
	finalDate, _ := d.Lookup(row, dialect.FieldFinalPriceDate)
	u.FinalPriceDate = coerceDate(finalDate, today)

	u.Kind = coerceKind(row, d)
	u.Status = coerceStatus(row, d)

	u.Parking = optional(row, d, dialect.FieldParking)
	u.Storage = optional(row, d, dialect.FieldStorage)
	u.NecessaryRights = optional(row, d, dialect.FieldNecessaryRight)
	u.OtherServices = optional(row, d, dialect.FieldOtherServices)
	u.ProspectusURL = optional(row, d, dialect.FieldProspectusURL)

	if raw, ok := d.Lookup(row, dialect.FieldRooms); ok {
		if n, ok := coerceInt(raw); ok {
			u.Rooms = &n
		}
	}
	if raw, ok := d.Lookup(row, dialect.FieldFloor); ok {
		if n, ok := coerceInt(raw); ok {
			u.Floor = &n
		}
	}

	return u, diags
}

// ProjectName extracts the declared project name of a batch, if any row
// carries one. The orchestrator falls back to the filename otherwise.
func ProjectName(rows []tabular.Row, d dialect.Dialect) string {
	for _, row := range rows {
		if raw, ok := d.Lookup(row, dialect.FieldProjectName); ok {
			if name := strings.TrimSpace(raw); name != "" {
				return name
			}
		}
	}
	return ""
}

func text(row tabular.Row, d dialect.Dialect, f dialect.Field) (string, bool) {
	raw, ok := d.Lookup(row, f)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(raw), true
}

func decimal(row tabular.Row, d dialect.Dialect, f dialect.Field) (float64, bool) {
	raw, ok := d.Lookup(row, f)
	if !ok {
		return 0, false
	}
	return coerceDecimal(raw)
}

func optional(row tabular.Row, d dialect.Dialect, f dialect.Field) *string {
	raw, ok := d.Lookup(row, f)
	if !ok || isSentinel(raw) {
		return nil
	}
	return coerceText(raw, true)
}

// coerceKind translates the kind column: a house marker means a
// single-family house, anything else (including absence) an apartment.
func coerceKind(row tabular.Row, d dialect.Dialect) models.UnitKind {
	raw, ok := d.Lookup(row, dialect.FieldKind)
	if !ok {
		return models.UnitKindApartment
	}
	v := strings.ToLower(strings.TrimSpace(raw))
	for _, marker := range d.HouseMarkers {
		if v == marker || strings.Contains(v, marker) {
			return models.UnitKindHouse
		}
	}
	return models.UnitKindApartment
}

// coerceStatus translates the status column: the "X" sentinel means sold,
// anything else (including absence) available.
func coerceStatus(row tabular.Row, d dialect.Dialect) models.UnitStatus {
	raw, ok := d.Lookup(row, dialect.FieldStatus)
	if !ok {
		return models.UnitStatusAvailable
	}
	s := strings.TrimSpace(raw)
	if s == "X" || s == "x" {
		return models.UnitStatusSold
	}
	return models.UnitStatusAvailable
}

// isEmptyRow reports whether every cell of the row is blank
func isEmptyRow(row tabular.Row) bool {
	for _, v := range row.Cells {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
