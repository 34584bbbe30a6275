package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// Record is the augmented input row scored by the mixture model.
type Record struct {
	Isapre   string
	Tipo     string
	Total    float64
	TotalLog float64
}

// GaussianComponent is one weighted component of a 1-D mixture over total_log.
type GaussianComponent struct {
	Weight   float64 `json:"weight"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
}

// MixtureClass models one outcome: its prior, categorical likelihoods and the
// density of total_log.
type MixtureClass struct {
	Prior            float64             `json:"prior"`
	IsapreLikelihood map[string]float64  `json:"isapre_likelihood"`
	TipoLikelihood   map[string]float64  `json:"tipo_likelihood"`
	Components       []GaussianComponent `json:"components"`
}

// GaussianMixtureClassifier scores P(approved | record) by comparing the
// class-conditional densities of the approved and denied outcomes.
type GaussianMixtureClassifier struct {
	Family   string       `json:"family"`
	Approved MixtureClass `json:"approved"`
	Denied   MixtureClass `json:"denied"`
}

// DecodeGaussianMixture parses and validates a mixture model artifact.
func DecodeGaussianMixture(data []byte) (*GaussianMixtureClassifier, error) {
	var m GaussianMixtureClassifier
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if err := checkFamily(m.Family, FamilyGaussianMixture); err != nil {
		return nil, err
	}
	if err := m.Approved.validate("approved"); err != nil {
		return nil, err
	}
	if err := m.Denied.validate("denied"); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *MixtureClass) validate(label string) error {
	if !(c.Prior > 0 && c.Prior < 1) {
		return invalidf("%s prior %v outside (0, 1)", label, c.Prior)
	}
	if len(c.IsapreLikelihood) == 0 || len(c.TipoLikelihood) == 0 {
		return invalidf("%s likelihood tables are empty", label)
	}
	for k, p := range c.IsapreLikelihood {
		if !(p > 0 && p <= 1) {
			return invalidf("%s isapre likelihood %q = %v outside (0, 1]", label, k, p)
		}
	}
	for k, p := range c.TipoLikelihood {
		if !(p > 0 && p <= 1) {
			return invalidf("%s tipo likelihood %q = %v outside (0, 1]", label, k, p)
		}
	}
	if len(c.Components) == 0 {
		return invalidf("%s has no mixture components", label)
	}
	for i, comp := range c.Components {
		if !(comp.Weight > 0) || !isFinite(comp.Mean) || !(comp.Variance > 0) || !isFinite(comp.Variance) {
			return invalidf("%s component %d is malformed", label, i)
		}
	}
	return nil
}

// Score returns P(approved | record).
func (m *GaussianMixtureClassifier) Score(r Record) (float64, error) {
	if !isFinite(r.TotalLog) {
		return 0, fmt.Errorf("%w: total_log %v", ErrInvalidFeature, r.TotalLog)
	}
	approved, err := m.Approved.logJoint(r)
	if err != nil {
		return 0, err
	}
	denied, err := m.Denied.logJoint(r)
	if err != nil {
		return 0, err
	}
	return sigmoid(approved - denied), nil
}

func (c *MixtureClass) logJoint(r Record) (float64, error) {
	pi, ok := c.IsapreLikelihood[r.Isapre]
	if !ok {
		return 0, fmt.Errorf("%w: isapre %q", ErrUnknownCategory, r.Isapre)
	}
	pt, ok := c.TipoLikelihood[r.Tipo]
	if !ok {
		return 0, fmt.Errorf("%w: tipo %q", ErrUnknownCategory, r.Tipo)
	}
	return math.Log(c.Prior) + math.Log(pi) + math.Log(pt) + c.logDensity(r.TotalLog), nil
}

// logDensity is log(sum_k w_k N(x | mu_k, var_k)) normalized by the total
// weight, computed with log-sum-exp.
func (c *MixtureClass) logDensity(x float64) float64 {
	var totalWeight float64
	terms := make([]float64, len(c.Components))
	maxTerm := math.Inf(-1)
	for i, comp := range c.Components {
		totalWeight += comp.Weight
		d := x - comp.Mean
		terms[i] = math.Log(comp.Weight) - 0.5*math.Log(2*math.Pi*comp.Variance) - d*d/(2*comp.Variance)
		if terms[i] > maxTerm {
			maxTerm = terms[i]
		}
	}
	var sum float64
	for _, t := range terms {
		sum += math.Exp(t - maxTerm)
	}
	return maxTerm + math.Log(sum) - math.Log(totalWeight)
}
