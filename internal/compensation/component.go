package compensation

const (
	KindEarning   = "EARNING"
	KindDeduction = "DEDUCTION"
	KindBenefit   = "BENEFIT"
)

// Component is one normalized salary line item. IsTaxable and IsProRata are
// pointers because historical data often leaves them unset, and "unset" must
// stay distinguishable from an explicit false.
type Component struct {
	Name          string   `json:"name"`
	Code          string   `json:"code"`
	MonthlyAmount float64  `json:"monthly_amount"`
	AnnualAmount  float64  `json:"annual_amount"`
	Kind          string   `json:"kind"`
	IsTaxable     *bool    `json:"is_taxable,omitempty"`
	IsProRata     *bool    `json:"is_pro_rata,omitempty"`
}

// CanonicalKey resolves the component to its canonical alias key, preferring
// the short code over the display name when both are present.
func (c Component) CanonicalKey() string {
	if c.Code != "" {
		return NormalizeKey(c.Code)
	}
	return NormalizeKey(c.Name)
}

// Taxable defaults to true when the flag was never set.
func (c Component) Taxable() bool {
	return c.IsTaxable == nil || *c.IsTaxable
}

const (
	SourceStructured        = "STRUCTURED"
	SourceAssignedSnapshot  = "ASSIGNED_SNAPSHOT"
	SourceApplicantSnapshot = "APPLICANT_SNAPSHOT"
	SourceLegacyEmbedded    = "LEGACY_EMBEDDED"
	SourceGlobalStructure   = "GLOBAL_STRUCTURE"
	SourceZeroFallback      = "ZERO_FALLBACK"
)

// ResolvedCompensation is the single normalized shape every compensation
// source collapses into. Source records which ladder step produced it so a
// payslip can always be traced back to its data origin.
type ResolvedCompensation struct {
	TotalCTC     float64     `json:"total_ctc"`
	GrossA       float64     `json:"gross_a"`
	GrossB       float64     `json:"gross_b"`
	GrossC       float64     `json:"gross_c"`
	Components   []Component `json:"components"`
	Source       string      `json:"source"`
	GrossDerived bool        `json:"gross_derived"`
}

// Usable reports whether this source actually carries pay data: a positive
// total or a non-empty component list. Zero-amount components still count;
// the source authored a breakdown, and a lower rung must not override it.
// The resolver only stops walking the ladder on a usable result.
func (rc ResolvedCompensation) Usable() bool {
	return rc.TotalCTC > 0 || len(rc.Components) > 0
}

// Earnings filters the component list down to earning lines.
func (rc ResolvedCompensation) Earnings() []Component {
	out := make([]Component, 0, len(rc.Components))
	for _, c := range rc.Components {
		if c.Kind == KindEarning {
			out = append(out, c)
		}
	}
	return out
}
