package testutil

import (
	"encoding/json"
	"fmt"

	"reimbursement-predictor/internal/core/domain"
	"reimbursement-predictor/internal/core/models"
)

// CorruptedArtifact is what a truncated or foreign file looks like on disk.
var CorruptedArtifact = []byte("\x80\x04\x95\x1a\x00garbage")

func isapreNames() []string {
	out := make([]string, 0, len(domain.Isapres()))
	for _, i := range domain.Isapres() {
		out = append(out, string(i))
	}
	return out
}

func tipoNames() []string {
	out := make([]string, 0, len(domain.Tipos()))
	for _, t := range domain.Tipos() {
		out = append(out, string(t))
	}
	return out
}

// ClassifierArtifact is a valid logistic regression over every category.
func ClassifierArtifact() []byte {
	isapres, tipos := isapreNames(), tipoNames()
	coef := make([]float64, 0, len(isapres)+len(tipos)+1)
	for i := range isapres {
		coef = append(coef, 0.15*float64(i%4)-0.2)
	}
	for j := range tipos {
		coef = append(coef, 0.1*float64(j%5)-0.25)
	}
	coef = append(coef, -0.35)

	return mustMarshal(models.LogisticRegression{
		Family:           models.FamilyLogisticRegression,
		IsapreCategories: isapres,
		TipoCategories:   tipos,
		TotalMean:        75000,
		TotalScale:       60000,
		Coefficients:     coef,
		Intercept:        0.4,
		Threshold:        0.5,
	})
}

// BayesianNetworkArtifact is a valid network with a full CPT over three bins.
func BayesianNetworkArtifact() []byte {
	isapres, tipos := isapreNames(), tipoNames()
	edges := []float64{20000, 80000, 200000}

	cpt := make(map[string]float64)
	ratio := make(map[string]float64)
	days := make(map[string]float64)
	for i, isapre := range isapres {
		days[isapre] = 8 + float64(i)
		for j, tipo := range tipos {
			for bin := 0; bin <= len(edges); bin++ {
				cpt[fmt.Sprintf("%s|%s|%d", isapre, tipo, bin)] = 0.3 + 0.05*float64(i%5) + 0.03*float64(j%4) + 0.02*float64(bin)
			}
		}
	}
	for j, tipo := range tipos {
		for bin := 0; bin <= len(edges); bin++ {
			ratio[fmt.Sprintf("%s|%d", tipo, bin)] = 0.45 + 0.02*float64(j%6) + 0.05*float64(bin)
		}
	}

	return mustMarshal(models.DiscreteBayesianNetwork{
		Family:           models.FamilyDiscreteBayesianNetwork,
		IsapreCategories: isapres,
		TipoCategories:   tipos,
		TotalBinEdges:    edges,
		ReimbursedCPT:    cpt,
		ReimbursedPrior:  0.5,
		ReimbursedRatio:  ratio,
		DefaultRatio:     0.5,
		ExpectedDays:     days,
		DefaultDays:      15,
	})
}

// MixtureArtifact is a valid two-class mixture model over every category.
func MixtureArtifact() []byte {
	approvedIsapre, deniedIsapre := make(map[string]float64), make(map[string]float64)
	for i, isapre := range isapreNames() {
		approvedIsapre[isapre] = 0.08 + 0.005*float64(i)
		deniedIsapre[isapre] = 0.12 - 0.005*float64(i)
	}
	approvedTipo, deniedTipo := make(map[string]float64), make(map[string]float64)
	for j, tipo := range tipoNames() {
		approvedTipo[tipo] = 0.06 + 0.004*float64(j)
		deniedTipo[tipo] = 0.1 - 0.004*float64(j)
	}

	return mustMarshal(models.GaussianMixtureClassifier{
		Family: models.FamilyGaussianMixture,
		Approved: models.MixtureClass{
			Prior:            0.65,
			IsapreLikelihood: approvedIsapre,
			TipoLikelihood:   approvedTipo,
			Components: []models.GaussianComponent{
				{Weight: 0.6, Mean: 10.2, Variance: 0.9},
				{Weight: 0.4, Mean: 11.6, Variance: 0.6},
			},
		},
		Denied: models.MixtureClass{
			Prior:            0.35,
			IsapreLikelihood: deniedIsapre,
			TipoLikelihood:   deniedTipo,
			Components: []models.GaussianComponent{
				{Weight: 1, Mean: 12.4, Variance: 1.1},
			},
		},
	})
}

// Artifacts returns the serialized fixture for every served model.
func Artifacts() map[domain.ModelName][]byte {
	return map[domain.ModelName][]byte{
		domain.ModelClassifier:      ClassifierArtifact(),
		domain.ModelBayesianNetwork: BayesianNetworkArtifact(),
		domain.ModelMixture:         MixtureArtifact(),
	}
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
