package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/timebank-backend/internal/domain/valueobject"
	"github.com/ignatzorin/timebank-backend/internal/interface/http/dto"
	"github.com/ignatzorin/timebank-backend/internal/interface/http/response"
	"github.com/ignatzorin/timebank-backend/internal/pricing"
)

type PricingHandler struct {
	oracle pricing.Oracle
}

func NewPricingHandler(oracle pricing.Oracle) *PricingHandler {
	return &PricingHandler{oracle: oracle}
}

// Recommend обрабатывает GET /api/pricing/recommend?category&skills=a,b&complexity&urgency.
func (h *PricingHandler) Recommend(c *gin.Context) {
	var skills []string
	for _, s := range strings.Split(c.Query("skills"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}

	in := pricing.Input{
		Category:    valueobject.Category(c.Query("category")),
		Skills:      skills,
		Complexity:  valueobject.Complexity(c.Query("complexity")),
		Urgency:     valueobject.Urgency(c.Query("urgency")),
		SampleCount: parseIntQuery(c, "samples", 0),
	}

	rec, err := h.oracle.Recommend(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToRecommendationResponse(rec))
}
