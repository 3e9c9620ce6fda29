// Package pricing - рекомендации по цене задачи и минимальная цена для публикации.
package pricing

import (
	"context"
	"math"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
)

type Confidence string

const (
	ConfidenceLow  Confidence = "low"
	ConfidenceMid  Confidence = "mid"
	ConfidenceHigh Confidence = "high"
)

type Input struct {
	Category    valueobject.Category
	Skills      []string
	Complexity  valueobject.Complexity
	Urgency     valueobject.Urgency
	SampleCount int
}

type Factors struct {
	Base       decimal.Decimal `json:"base"`
	Skill      float64         `json:"skill"`
	Complexity float64         `json:"complexity"`
	Urgency    float64         `json:"urgency"`
}

type Recommendation struct {
	P25                   decimal.Decimal
	P50                   decimal.Decimal
	P75                   decimal.Decimal
	Floor                 decimal.Decimal
	Confidence            Confidence
	AcceptanceProbability float64
	Factors               Factors
}

// Oracle выдаёт рекомендацию по цене. Публикация задачи использует только Floor.
type Oracle interface {
	Recommend(ctx context.Context, in Input) (Recommendation, error)
}

type categoryBase struct {
	median int64
	iqr    int64
	floor  int64
}

var defaultTable = map[valueobject.Category]categoryBase{
	valueobject.CategoryProgramming: {median: 80, iqr: 40, floor: 30},
	valueobject.CategoryDesign:      {median: 60, iqr: 30, floor: 20},
	valueobject.CategoryWriting:     {median: 40, iqr: 20, floor: 15},
	valueobject.CategoryTranslation: {median: 50, iqr: 30, floor: 20},
	valueobject.CategoryMarketing:   {median: 60, iqr: 30, floor: 25},
	valueobject.CategoryAcademic:    {median: 80, iqr: 40, floor: 30},
	valueobject.CategoryOther:       {median: 50, iqr: 30, floor: 20},
}

var premiumSkills = map[string]struct{}{
	"AI/ML":      {},
	"Blockchain": {},
	"React":      {},
	"Rust":       {},
}

var complexityFactors = map[valueobject.Complexity]float64{
	valueobject.ComplexitySimple:  0.9,
	valueobject.ComplexityMedium:  1.0,
	valueobject.ComplexityComplex: 1.5,
}

var urgencyFactors = map[valueobject.Urgency]float64{
	valueobject.UrgencyNormal: 1.0,
	valueobject.UrgencyUrgent: 1.2,
	valueobject.UrgencyRush:   1.4,
}

// TableOracle считает цену по таблице категорий и поправочным коэффициентам.
type TableOracle struct {
	table map[valueobject.Category]categoryBase
}

func NewTableOracle() *TableOracle {
	return &TableOracle{table: defaultTable}
}

func (o *TableOracle) Recommend(_ context.Context, in Input) (Recommendation, error) {
	base, ok := o.table[in.Category]
	if !ok {
		base = o.table[valueobject.CategoryOther]
	}

	fSkill := skillFactor(in.Skills)
	fComplex := factorOr(complexityFactors, in.Complexity)
	fUrgency := factorOr(urgencyFactors, in.Urgency)
	factor := decimal.NewFromFloat(fSkill * fComplex * fUrgency)

	median := decimal.NewFromInt(base.median)
	halfIQR := decimal.NewFromInt(base.iqr).Div(decimal.NewFromInt(2))

	p50 := median.Mul(factor).Round(0)
	p25 := median.Sub(halfIQR).Mul(factor).Round(0)
	p75 := median.Add(halfIQR).Mul(factor).Round(0)
	floor := decimal.NewFromInt(base.floor).Mul(decimal.NewFromFloat(fComplex)).Round(0)

	return Recommendation{
		P25:                   p25,
		P50:                   p50,
		P75:                   p75,
		Floor:                 floor,
		Confidence:            confidenceFor(in.SampleCount),
		AcceptanceProbability: acceptanceProbability(p50, p75, floor),
		Factors: Factors{
			Base:       median,
			Skill:      fSkill,
			Complexity: fComplex,
			Urgency:    fUrgency,
		},
	}, nil
}

func skillFactor(skills []string) float64 {
	for _, s := range skills {
		if _, ok := premiumSkills[s]; ok {
			return 1.2
		}
	}
	return 1.0
}

func factorOr[K comparable](factors map[K]float64, key K) float64 {
	if f, ok := factors[key]; ok {
		return f
	}
	return 1.0
}

func confidenceFor(samples int) Confidence {
	switch {
	case samples < 10:
		return ConfidenceLow
	case samples < 30:
		return ConfidenceMid
	default:
		return ConfidenceHigh
	}
}

// acceptanceProbability ограничена диапазоном [0.05, 0.95].
func acceptanceProbability(p50, p75, floor decimal.Decimal) float64 {
	num, _ := p50.Sub(floor).Float64()
	den, _ := p75.Sub(floor).Float64()
	p := num / (den + 1e-6)
	return math.Max(0.05, math.Min(0.95, p))
}
