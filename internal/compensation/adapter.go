package compensation

import (
	"encoding/json"
	"errors"
)

// snapshotPayload is the wire shape shared by assigned snapshots, applicant
// snapshots and the legacy embedded field.
type snapshotPayload struct {
	TotalCTC   float64             `json:"total_ctc"`
	GrossA     float64             `json:"gross_a"`
	GrossB     float64             `json:"gross_b"`
	GrossC     float64             `json:"gross_c"`
	Components []snapshotComponent `json:"components"`
}

type snapshotComponent struct {
	Name          string  `json:"name"`
	Code          string  `json:"code"`
	MonthlyAmount float64 `json:"monthly_amount"`
	AnnualAmount  float64 `json:"annual_amount"`
	Kind          string  `json:"kind"`
	IsTaxable     *bool   `json:"is_taxable"`
	IsProRata     *bool   `json:"is_pro_rata"`
}

var errEmptySnapshot = errors.New("empty compensation snapshot")

// AdaptStructure converts an active structured record into the normalized
// shape. Monthly amounts missing from a component are derived from the
// annual figure.
func AdaptStructure(s *SalaryStructure) ResolvedCompensation {
	rc := ResolvedCompensation{
		TotalCTC: s.TotalCTC,
		GrossA:   s.GrossA,
		GrossB:   s.GrossB,
		GrossC:   s.GrossC,
		Source:   SourceStructured,
	}
	for _, c := range s.Components {
		monthly := c.MonthlyAmount
		annual := c.AnnualAmount
		if monthly == 0 && annual != 0 {
			monthly = annual / 12
		}
		if annual == 0 && monthly != 0 {
			annual = monthly * 12
		}
		kind := c.ComponentType
		if kind == "" {
			kind = KindEarning
		}
		rc.Components = append(rc.Components, Component{
			Name:          c.Name,
			Code:          c.Code,
			MonthlyAmount: monthly,
			AnnualAmount:  annual,
			Kind:          kind,
			IsTaxable:     c.IsTaxable,
			IsProRata:     c.IsProRata,
		})
	}
	return rc
}

// AdaptSnapshot parses a JSON snapshot payload into the normalized shape.
// The source kind is supplied by the caller since the same payload format is
// stored in three different places.
func AdaptSnapshot(payload []byte, source string) (ResolvedCompensation, error) {
	if len(payload) == 0 {
		return ResolvedCompensation{}, errEmptySnapshot
	}

	var snap snapshotPayload
	if err := json.Unmarshal(payload, &snap); err != nil {
		return ResolvedCompensation{}, err
	}

	rc := ResolvedCompensation{
		TotalCTC: snap.TotalCTC,
		GrossA:   snap.GrossA,
		GrossB:   snap.GrossB,
		GrossC:   snap.GrossC,
		Source:   source,
	}
	for _, c := range snap.Components {
		monthly := c.MonthlyAmount
		annual := c.AnnualAmount
		if monthly == 0 && annual != 0 {
			monthly = annual / 12
		}
		if annual == 0 && monthly != 0 {
			annual = monthly * 12
		}
		kind := c.Kind
		if kind == "" {
			kind = KindEarning
		}
		rc.Components = append(rc.Components, Component{
			Name:          c.Name,
			Code:          c.Code,
			MonthlyAmount: monthly,
			AnnualAmount:  annual,
			Kind:          kind,
			IsTaxable:     c.IsTaxable,
			IsProRata:     c.IsProRata,
		})
	}
	return rc, nil
}

// AdaptGlobalStructure converts a cross-tenant salary template. Its component
// list is stored as the same snapshot JSON array.
func AdaptGlobalStructure(g *GlobalSalaryStructure) (ResolvedCompensation, error) {
	rc := ResolvedCompensation{
		TotalCTC: g.TotalCTC,
		Source:   SourceGlobalStructure,
	}
	if len(g.Components) == 0 {
		return rc, nil
	}

	var comps []snapshotComponent
	if err := json.Unmarshal(g.Components, &comps); err != nil {
		return ResolvedCompensation{}, err
	}
	for _, c := range comps {
		monthly := c.MonthlyAmount
		if monthly == 0 && c.AnnualAmount != 0 {
			monthly = c.AnnualAmount / 12
		}
		kind := c.Kind
		if kind == "" {
			kind = KindEarning
		}
		rc.Components = append(rc.Components, Component{
			Name:          c.Name,
			Code:          c.Code,
			MonthlyAmount: monthly,
			AnnualAmount:  c.AnnualAmount,
			Kind:          kind,
			IsTaxable:     c.IsTaxable,
			IsProRata:     c.IsProRata,
		})
	}
	return rc, nil
}

// ZeroFallback is the terminal ladder step: a single synthetic zero-amount
// basic earning so downstream math always has a component to work with.
func ZeroFallback() ResolvedCompensation {
	return ResolvedCompensation{
		Source: SourceZeroFallback,
		Components: []Component{
			{
				Name:          "Basic Salary",
				Code:          "BASIC",
				MonthlyAmount: 0,
				AnnualAmount:  0,
				Kind:          KindEarning,
			},
		},
	}
}
