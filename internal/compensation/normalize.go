package compensation

import "strings"

// aliasTable maps normalized component names to canonical keys. Historical
// schemas name the same economic concept many ways ("HRA", "House Rent
// Allowance", "house-rent-allowance"); everything funnels through here before
// any calculation keys off a component.
var aliasTable = map[string]string{
	"basic":                  "basic",
	"basic_salary":           "basic",
	"basic_pay":              "basic",
	"bs":                     "basic",
	"hra":                    "hra",
	"house_rent_allowance":   "hra",
	"da":                     "da",
	"dearness_allowance":     "da",
	"special_allowance":      "special_allowance",
	"spl_allowance":          "special_allowance",
	"special_pay":            "special_allowance",
	"conveyance":             "conveyance",
	"conveyance_allowance":   "conveyance",
	"transport_allowance":    "conveyance",
	"medical":                "medical",
	"medical_allowance":      "medical",
	"lta":                    "lta",
	"leave_travel_allowance": "lta",
	"bonus":                  "bonus",
	"statutory_bonus":        "bonus",
	"gratuity":               "gratuity",
	"pf":                     "pf",
	"epf":                    "pf",
	"provident_fund":         "pf",
	"employee_pf":            "pf",
	"esi":                    "esi",
	"esic":                   "esi",
	"state_insurance":        "esi",
	"pt":                     "professional_tax",
	"prof_tax":               "professional_tax",
	"professional_tax":       "professional_tax",
	"tds":                    "tds",
	"income_tax":             "tds",
	"ctc":                    "ctc",
	"total_ctc":              "ctc",
}

// NormalizeKey canonicalizes a salary-component name: lowercase, runs of
// whitespace/hyphens/dots collapse to a single underscore, then the alias
// table maps it to its canonical key. Pure and total: unmapped input comes
// back in its normalized (but unmapped) form, never an error.
func NormalizeKey(name string) string {
	norm := strings.ToLower(strings.TrimSpace(name))
	norm = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '.', '/':
			return '_'
		}
		return r
	}, norm)
	for strings.Contains(norm, "__") {
		norm = strings.ReplaceAll(norm, "__", "_")
	}
	norm = strings.Trim(norm, "_")

	if canonical, ok := aliasTable[norm]; ok {
		return canonical
	}
	return norm
}

// Split used when a source carries a total but no gross breakdown. The 60/40
// split is a heuristic, not sourced data; GrossDerived marks it so nothing
// downstream mistakes it for an authoritative figure.
const (
	derivedGrossBShare = 0.60
	derivedGrossCShare = 0.40
)

// EnsureGrossTotals backfills GrossB/GrossC from total monthly earnings when
// the source did not provide them, and flags the result as derived.
func EnsureGrossTotals(rc *ResolvedCompensation) {
	if rc == nil {
		return
	}
	if rc.GrossB != 0 || rc.GrossC != 0 {
		return
	}

	var totalMonthly float64
	for _, c := range rc.Earnings() {
		totalMonthly += c.MonthlyAmount
	}
	if totalMonthly == 0 {
		return
	}

	rc.GrossB = totalMonthly * derivedGrossBShare
	rc.GrossC = totalMonthly * derivedGrossCShare
	rc.GrossDerived = true
}
