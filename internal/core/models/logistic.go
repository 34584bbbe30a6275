package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// Row is one record of tabular classifier input.
type Row struct {
	Isapre string
	Tipo   string
	Total  float64
}

// LogisticRegression is a binary logistic classifier over one-hot encoded
// isapre and tipo plus a standardized total.
type LogisticRegression struct {
	Family           string    `json:"family"`
	IsapreCategories []string  `json:"isapre_categories"`
	TipoCategories   []string  `json:"tipo_categories"`
	TotalMean        float64   `json:"total_mean"`
	TotalScale       float64   `json:"total_scale"`
	Coefficients     []float64 `json:"coefficients"`
	Intercept        float64   `json:"intercept"`
	Threshold        float64   `json:"threshold"`

	isapreIndex map[string]int
	tipoIndex   map[string]int
}

// DecodeLogisticRegression parses and validates a logistic regression artifact.
func DecodeLogisticRegression(data []byte) (*LogisticRegression, error) {
	var m LogisticRegression
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArtifact, err)
	}
	if err := checkFamily(m.Family, FamilyLogisticRegression); err != nil {
		return nil, err
	}

	var err error
	if m.isapreIndex, err = indexCategories("isapre", m.IsapreCategories); err != nil {
		return nil, err
	}
	if m.tipoIndex, err = indexCategories("tipo", m.TipoCategories); err != nil {
		return nil, err
	}

	want := len(m.IsapreCategories) + len(m.TipoCategories) + 1
	if len(m.Coefficients) != want {
		return nil, invalidf("expected %d coefficients, got %d", want, len(m.Coefficients))
	}
	for i, c := range m.Coefficients {
		if !isFinite(c) {
			return nil, invalidf("coefficient %d is not finite", i)
		}
	}
	if !isFinite(m.Intercept) || !isFinite(m.TotalMean) {
		return nil, invalidf("intercept and total mean must be finite")
	}
	if !(m.TotalScale > 0) || !isFinite(m.TotalScale) {
		return nil, invalidf("total scale must be positive")
	}
	if m.Threshold == 0 {
		m.Threshold = 0.5
	}
	if m.Threshold <= 0 || m.Threshold >= 1 {
		return nil, invalidf("threshold %v outside (0, 1)", m.Threshold)
	}
	return &m, nil
}

// PredictProba returns [P(class 0), P(class 1)] for every row.
func (m *LogisticRegression) PredictProba(rows []Row) ([][2]float64, error) {
	out := make([][2]float64, len(rows))
	for i, row := range rows {
		p, err := m.positiveProbability(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = [2]float64{1 - p, p}
	}
	return out, nil
}

// Predict returns the decided class (0 or 1) for every row.
func (m *LogisticRegression) Predict(rows []Row) ([]int, error) {
	out := make([]int, len(rows))
	for i, row := range rows {
		p, err := m.positiveProbability(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if p >= m.Threshold {
			out[i] = 1
		}
	}
	return out, nil
}

func (m *LogisticRegression) positiveProbability(row Row) (float64, error) {
	ii, ok := m.isapreIndex[row.Isapre]
	if !ok {
		return 0, fmt.Errorf("%w: isapre %q", ErrUnknownCategory, row.Isapre)
	}
	ti, ok := m.tipoIndex[row.Tipo]
	if !ok {
		return 0, fmt.Errorf("%w: tipo %q", ErrUnknownCategory, row.Tipo)
	}
	if !isFinite(row.Total) {
		return 0, fmt.Errorf("%w: total %v", ErrInvalidFeature, row.Total)
	}

	offset := len(m.IsapreCategories)
	z := m.Intercept + m.Coefficients[ii] + m.Coefficients[offset+ti]
	z += m.Coefficients[len(m.Coefficients)-1] * (row.Total - m.TotalMean) / m.TotalScale
	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
