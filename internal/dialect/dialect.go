// Package dialect knows the column-naming conventions of the source files
// developers upload. Each convention is declared as data (signature headers,
// alias map, marker translations), so adding a vendor layout is a new table
// entry, not new branching.
package dialect

// Field names a slot of the canonical schema that source columns map into
type Field string

const (
	FieldProjectName    Field = "project_name"
	FieldRegion         Field = "region"
	FieldCounty         Field = "county"
	FieldMunicipality   Field = "municipality"
	FieldUnitNumber     Field = "unit_number"
	FieldKind           Field = "kind"
	FieldUsableArea     Field = "usable_area"
	FieldPricePerM2     Field = "price_per_m2"
	FieldBasePrice      Field = "base_price"
	FieldBasePriceDate  Field = "base_price_date"
	FieldFinalPrice     Field = "final_price"
	FieldFinalPriceDate Field = "final_price_date"
	FieldTotalPrice     Field = "total_price"
	FieldParking        Field = "parking"
	FieldStorage        Field = "storage"
	FieldNecessaryRight Field = "necessary_rights"
	FieldOtherServices  Field = "other_services"
	FieldProspectusURL  Field = "prospectus_url"
	FieldRooms          Field = "rooms"
	FieldFloor          Field = "floor"
	FieldStatus         Field = "status"
)

// Dialect describes one known source-schema convention
type Dialect struct {
	// Name tags the dialect in logs and upload records
	Name string

	// Signature lists the dialect-specific headers used for detection;
	// the detected confidence is the fraction of these actually present
	Signature []string

	// Aliases maps each canonical field to its source column names,
	// most preferred first
	Aliases map[Field][]string

	// HouseMarkers are kind-column values meaning a single-family house;
	// anything else is an apartment
	HouseMarkers []string
}

// Generic is the best-effort fallback dialect: a union alias table that
// recognizes the common columns of every known layout.
const Generic = "generic"

var ministerial = Dialect{
	Name: "ministerial",
	Signature: []string{
		"województwo",
		"powiat",
		"gmina",
		"nr lokalu lub domu jednorodzinnego",
		"powierzchnia użytkowa lokalu [m2]",
		"cena m2 powierzchni użytkowej [zł]",
		"cena lokalu [zł]",
		"cena lokalu uwzględniająca części przynależne [zł]",
	},
	Aliases: map[Field][]string{
		FieldProjectName:    {"przedsięwzięcie deweloperskie"},
		FieldRegion:         {"województwo"},
		FieldCounty:         {"powiat"},
		FieldMunicipality:   {"gmina"},
		FieldUnitNumber:     {"nr lokalu lub domu jednorodzinnego"},
		FieldKind:           {"rodzaj nieruchomości"},
		FieldUsableArea:     {"powierzchnia użytkowa lokalu [m2]"},
		FieldPricePerM2:     {"cena m2 powierzchni użytkowej [zł]"},
		FieldBasePrice:      {"cena lokalu [zł]"},
		FieldBasePriceDate:  {"data obowiązywania ceny lokalu"},
		FieldFinalPrice:     {"cena lokalu uwzględniająca części przynależne [zł]"},
		FieldFinalPriceDate: {"data obowiązywania ceny końcowej"},
		FieldParking:        {"miejsca postojowe [zł]"},
		FieldStorage:        {"komórki lokatorskie [zł]"},
		FieldNecessaryRight: {"prawa niezbędne do korzystania z lokalu [zł]"},
		FieldOtherServices:  {"inne świadczenia pieniężne [zł]"},
		FieldProspectusURL:  {"adres strony internetowej prospektu"},
		FieldStatus:         {"status sprzedaży"},
	},
	HouseMarkers: []string{"dom jednorodzinny"},
}

var developer = Dialect{
	Name: "developer",
	Signature: []string{
		"inwestycja",
		"nr lokalu",
		"metraż",
		"cena za m2",
		"cena bazowa",
		"cena końcowa",
		"status",
	},
	Aliases: map[Field][]string{
		FieldProjectName:    {"inwestycja", "nazwa inwestycji"},
		FieldRegion:         {"województwo", "woj."},
		FieldCounty:         {"powiat"},
		FieldMunicipality:   {"gmina", "miejscowość"},
		FieldUnitNumber:     {"nr lokalu", "numer lokalu", "lokal"},
		FieldKind:           {"rodzaj", "typ"},
		FieldUsableArea:     {"metraż", "powierzchnia", "pow. użytkowa"},
		FieldPricePerM2:     {"cena za m2", "cena m2"},
		FieldBasePrice:      {"cena bazowa"},
		FieldBasePriceDate:  {"data ceny bazowej"},
		FieldFinalPrice:     {"cena końcowa"},
		FieldFinalPriceDate: {"data ceny końcowej"},
		FieldTotalPrice:     {"cena całkowita", "wartość"},
		FieldParking:        {"miejsce postojowe", "parking"},
		FieldStorage:        {"komórka", "komórka lokatorska"},
		FieldNecessaryRight: {"prawa niezbędne"},
		FieldOtherServices:  {"inne świadczenia"},
		FieldProspectusURL:  {"prospekt"},
		FieldRooms:          {"pokoje", "liczba pokoi"},
		FieldFloor:          {"piętro", "kondygnacja"},
		FieldStatus:         {"status"},
	},
	HouseMarkers: []string{"dom jednorodzinny", "dom"},
}

var export = Dialect{
	Name: "export",
	Signature: []string{
		"unit_number",
		"usable_area",
		"price_per_m2",
		"base_price",
		"final_price",
		"status",
	},
	Aliases: map[Field][]string{
		FieldProjectName:    {"project", "project_name"},
		FieldRegion:         {"region", "voivodeship"},
		FieldCounty:         {"county", "district"},
		FieldMunicipality:   {"municipality", "city"},
		FieldUnitNumber:     {"unit_number", "unit_no", "unit"},
		FieldKind:           {"kind", "unit_type"},
		FieldUsableArea:     {"usable_area", "area_m2", "area"},
		FieldPricePerM2:     {"price_per_m2"},
		FieldBasePrice:      {"base_price"},
		FieldBasePriceDate:  {"base_price_date"},
		FieldFinalPrice:     {"final_price"},
		FieldFinalPriceDate: {"final_price_date"},
		FieldTotalPrice:     {"total_price"},
		FieldParking:        {"parking"},
		FieldStorage:        {"storage"},
		FieldNecessaryRight: {"necessary_rights"},
		FieldOtherServices:  {"other_services"},
		FieldProspectusURL:  {"prospectus_url"},
		FieldRooms:          {"rooms"},
		FieldFloor:          {"floor"},
		FieldStatus:         {"status"},
	},
	HouseMarkers: []string{"house", "dom jednorodzinny"},
}

// Known lists the specific dialects in detection order, most specific first
var Known = []Dialect{ministerial, developer, export}

// generic is built from the union of all known alias tables
var generic = buildGeneric()

func buildGeneric() Dialect {
	d := Dialect{
		Name: Generic,
		Signature: []string{
			"województwo",
			"gmina",
			"nr lokalu",
			"unit_number",
			"powierzchnia",
			"usable_area",
			"status",
		},
		Aliases:      make(map[Field][]string),
		HouseMarkers: []string{"dom jednorodzinny", "dom", "house"},
	}
	for _, known := range Known {
		for field, aliases := range known.Aliases {
			for _, alias := range aliases {
				if !contains(d.Aliases[field], alias) {
					d.Aliases[field] = append(d.Aliases[field], alias)
				}
			}
		}
	}
	return d
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
