package domain

import (
	"math"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Isapre is the health insurer that received the reimbursement claim.
type Isapre string

const (
	IsapreBanmedica            Isapre = "Banmédica"
	IsapreColmena              Isapre = "Colmena"
	IsapreConsalud             Isapre = "Consalud"
	IsapreCruzBlanca           Isapre = "Cruz Blanca"
	IsapreEsencial             Isapre = "Esencial"
	IsapreFonasa               Isapre = "FONASA"
	IsapreFundacionBancoEstado Isapre = "Isapre Fundación BancoEstado"
	IsapreMasvida              Isapre = "Masvida"
	IsapreVidaTres             Isapre = "Vida Tres"
)

// Tipo is the kind of medical expense being claimed.
type Tipo string

const (
	TipoDental                   Tipo = "Dental"
	TipoExamenesImagenes         Tipo = "Examen / Imágenes"
	TipoFonoaudiologia           Tipo = "Fonoaudiología"
	TipoHoraMedica               Tipo = "Hora Médica"
	TipoKinesiologia             Tipo = "Kinesiología"
	TipoMedicamentos             Tipo = "Medicamentos"
	TipoOtro                     Tipo = "Otro"
	TipoProcedimientoAmbulatorio Tipo = "Proced. Ambulatorio"
	TipoProcedimientoHospital    Tipo = "Proced. Hospitalización"
	TipoPsicologia               Tipo = "Psicología"
	TipoTerapiaOcupacional       Tipo = "Terapia Ocupacional"
	TipoUrgencia                 Tipo = "Urgencia"
)

var (
	isapres = []Isapre{
		IsapreBanmedica, IsapreColmena, IsapreConsalud, IsapreCruzBlanca, IsapreEsencial,
		IsapreFonasa, IsapreFundacionBancoEstado, IsapreMasvida, IsapreVidaTres,
	}
	tipos = []Tipo{
		TipoDental, TipoExamenesImagenes, TipoFonoaudiologia, TipoHoraMedica, TipoKinesiologia,
		TipoMedicamentos, TipoOtro, TipoProcedimientoAmbulatorio, TipoProcedimientoHospital,
		TipoPsicologia, TipoTerapiaOcupacional, TipoUrgencia,
	}

	isapreSet = sets.New(isapres...)
	tipoSet   = sets.New(tipos...)
)

// Isapres returns every accepted insurer in declaration order.
func Isapres() []Isapre {
	return append([]Isapre(nil), isapres...)
}

// Tipos returns every accepted expense type in declaration order.
func Tipos() []Tipo {
	return append([]Tipo(nil), tipos...)
}

func (i Isapre) Valid() bool { return isapreSet.Has(i) }

func (t Tipo) Valid() bool { return tipoSet.Has(t) }

// PredictionInput is the validated claim every model scores. Total is the
// claimed amount in CLP.
type PredictionInput struct {
	Isapre Isapre `json:"isapre"`
	Tipo   Tipo   `json:"tipo"`
	Total  int    `json:"total"`
}

// NewPredictionInput validates raw values and returns an input that is safe to
// hand to any model.
func NewPredictionInput(isapre, tipo string, total int) (PredictionInput, error) {
	in := PredictionInput{Isapre: Isapre(isapre), Tipo: Tipo(tipo), Total: total}
	if err := in.Validate(); err != nil {
		return PredictionInput{}, err
	}
	return in, nil
}

func (in PredictionInput) Validate() error {
	if !in.Isapre.Valid() {
		return &ValidationError{Field: "isapre", Value: string(in.Isapre), Reason: "is not a supported insurer"}
	}
	if !in.Tipo.Valid() {
		return &ValidationError{Field: "tipo", Value: string(in.Tipo), Reason: "is not a supported expense type"}
	}
	if in.Total <= 0 {
		return &ValidationError{Field: "total", Value: in.Total, Reason: "must be greater than 0"}
	}
	return nil
}

// TotalLog is ln(1 + total), the extra feature the mixture model scores on.
func (in PredictionInput) TotalLog() float64 {
	return math.Log1p(float64(in.Total))
}
