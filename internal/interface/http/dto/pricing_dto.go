package dto

import (
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/timebank-backend/internal/pricing"
)

type RecommendationResponse struct {
	P25                   decimal.Decimal `json:"p25"`
	P50                   decimal.Decimal `json:"p50"`
	P75                   decimal.Decimal `json:"p75"`
	Floor                 decimal.Decimal `json:"floor"`
	Confidence            string          `json:"confidence"`
	AcceptanceProbability float64         `json:"acceptanceProbability"`
	Factors               pricing.Factors `json:"factors"`
}

func ToRecommendationResponse(r pricing.Recommendation) RecommendationResponse {
	return RecommendationResponse{
		P25:                   r.P25,
		P50:                   r.P50,
		P75:                   r.P75,
		Floor:                 r.Floor,
		Confidence:            string(r.Confidence),
		AcceptanceProbability: r.AcceptanceProbability,
		Factors:               r.Factors,
	}
}
