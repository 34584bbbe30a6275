package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// DiscreteBayesianNetwork answers the joint reimbursement query over a
// discretized total. Tables are keyed as follows:
//
//	reimbursed_cpt:   "isapre|tipo|bin" -> P(reimbursed)
//	reimbursed_ratio: "tipo|bin"        -> E[reimbursed / total | reimbursed]
//	expected_days:    "isapre"          -> E[days to approval]
//
// Missing keys fall back to the corresponding default.
type DiscreteBayesianNetwork struct {
	Family           string             `json:"family"`
	IsapreCategories []string           `json:"isapre_categories"`
	TipoCategories   []string           `json:"tipo_categories"`
	TotalBinEdges    []float64          `json:"total_bin_edges"`
	ReimbursedCPT    map[string]float64 `json:"reimbursed_cpt"`
	ReimbursedPrior  float64            `json:"reimbursed_prior"`
	ReimbursedRatio  map[string]float64 `json:"reimbursed_ratio"`
	DefaultRatio     float64            `json:"default_ratio"`
	ExpectedDays     map[string]float64 `json:"expected_days"`
	DefaultDays      float64            `json:"default_days"`

	isapreIndex map[string]int
	tipoIndex   map[string]int
}

// DecodeDiscreteBayesianNetwork parses and validates a Bayesian network artifact.
func DecodeDiscreteBayesianNetwork(data []byte) (*DiscreteBayesianNetwork, error) {
	var m DiscreteBayesianNetwork
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if err := checkFamily(m.Family, FamilyDiscreteBayesianNetwork); err != nil {
		return nil, err
	}

	var err error
	if m.isapreIndex, err = indexCategories("isapre", m.IsapreCategories); err != nil {
		return nil, err
	}
	if m.tipoIndex, err = indexCategories("tipo", m.TipoCategories); err != nil {
		return nil, err
	}

	for i, edge := range m.TotalBinEdges {
		if !isFinite(edge) || (i > 0 && edge <= m.TotalBinEdges[i-1]) {
			return nil, invalidf("total bin edges must be finite and strictly ascending")
		}
	}
	if !isProbability(m.ReimbursedPrior) || !isProbability(m.DefaultRatio) {
		return nil, invalidf("prior and default ratio must lie in [0, 1]")
	}
	for k, p := range m.ReimbursedCPT {
		if !isProbability(p) {
			return nil, invalidf("reimbursed cpt %q = %v outside [0, 1]", k, p)
		}
	}
	for k, r := range m.ReimbursedRatio {
		if !isProbability(r) {
			return nil, invalidf("reimbursed ratio %q = %v outside [0, 1]", k, r)
		}
	}
	if !isFinite(m.DefaultDays) || m.DefaultDays < 0 {
		return nil, invalidf("default days must be non-negative")
	}
	for k, d := range m.ExpectedDays {
		if !isFinite(d) || d < 0 {
			return nil, invalidf("expected days %q = %v is negative", k, d)
		}
	}
	return &m, nil
}

// PredictAll returns the reimbursement probability, the expected reimbursed
// amount and the expected days to approval in one query.
func (m *DiscreteBayesianNetwork) PredictAll(isapre, tipo string, total int) (float64, float64, float64, error) {
	if _, ok := m.isapreIndex[isapre]; !ok {
		return 0, 0, 0, fmt.Errorf("%w: isapre %q", ErrUnknownCategory, isapre)
	}
	if _, ok := m.tipoIndex[tipo]; !ok {
		return 0, 0, 0, fmt.Errorf("%w: tipo %q", ErrUnknownCategory, tipo)
	}
	if total < 0 {
		return 0, 0, 0, fmt.Errorf("%w: total %d", ErrInvalidFeature, total)
	}

	bin := strconv.Itoa(m.bin(float64(total)))

	p, ok := m.ReimbursedCPT[isapre+"|"+tipo+"|"+bin]
	if !ok {
		p = m.ReimbursedPrior
	}
	ratio, ok := m.ReimbursedRatio[tipo+"|"+bin]
	if !ok {
		ratio = m.DefaultRatio
	}
	days, ok := m.ExpectedDays[isapre]
	if !ok {
		days = m.DefaultDays
	}

	return p, p * ratio * float64(total), days, nil
}

// bin returns the index of the first edge >= total, or len(edges) past the
// last edge.
func (m *DiscreteBayesianNetwork) bin(total float64) int {
	return sort.SearchFloat64s(m.TotalBinEdges, total)
}
