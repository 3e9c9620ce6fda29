package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/timebank-backend/internal/logger"
	"github.com/ignatzorin/timebank-backend/internal/pricing"
)

const pricingSystemPrompt = `Ты оцениваешь стоимость задач на бирже фриланса, цены в монетах времени.
Тебе дают категорию, навыки, сложность, срочность и табличную оценку.
Ответь только JSON вида {"p25": число, "p50": число, "p75": число} без пояснений.`

type ChatCompleter interface {
	ChatCompletion(ctx context.Context, messages []Message, maxTokens int, temperature float64) (string, error)
}

// PricingOracle уточняет квантили табличного оракула через модель.
// Пол цены и факторы всегда берутся из таблицы; при ошибке модели отдаётся табличная оценка.
type PricingOracle struct {
	chat     ChatCompleter
	fallback pricing.Oracle
}

func NewPricingOracle(chat ChatCompleter, fallback pricing.Oracle) *PricingOracle {
	return &PricingOracle{chat: chat, fallback: fallback}
}

type estimate struct {
	P25 float64 `json:"p25"`
	P50 float64 `json:"p50"`
	P75 float64 `json:"p75"`
}

func (o *PricingOracle) Recommend(ctx context.Context, in pricing.Input) (pricing.Recommendation, error) {
	base, err := o.fallback.Recommend(ctx, in)
	if err != nil {
		return base, err
	}

	est, err := o.ask(ctx, in, base)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"category": in.Category,
			"error":    err.Error(),
		}).Warn("ai pricing unavailable, using table estimate")
		return base, nil
	}
	return merge(base, est), nil
}

func (o *PricingOracle) ask(ctx context.Context, in pricing.Input, base pricing.Recommendation) (estimate, error) {
	prompt := fmt.Sprintf(
		"Категория: %s\nНавыки: %s\nСложность: %s\nСрочность: %s\nТабличная оценка: p25=%s p50=%s p75=%s",
		in.Category, strings.Join(in.Skills, ", "), in.Complexity, in.Urgency,
		base.P25.String(), base.P50.String(), base.P75.String(),
	)
	content, err := o.chat.ChatCompletion(ctx, []Message{
		{Role: "system", Content: pricingSystemPrompt},
		{Role: "user", Content: prompt},
	}, 128, 0.2)
	if err != nil {
		return estimate{}, err
	}

	var est estimate
	if err := decodeJSONFromText(content, &est); err != nil {
		return estimate{}, err
	}
	if est.P25 <= 0 || est.P50 <= 0 || est.P75 <= 0 {
		return estimate{}, fmt.Errorf("ai: некорректная оценка %+v", est)
	}
	return est, nil
}

// merge подставляет квантили модели, упорядочивая их и не опуская ниже пола.
func merge(base pricing.Recommendation, est estimate) pricing.Recommendation {
	qs := []float64{est.P25, est.P50, est.P75}
	sort.Float64s(qs)

	clamp := func(v float64) decimal.Decimal {
		d := decimal.NewFromFloat(v).Round(0)
		if d.LessThan(base.Floor) {
			return base.Floor
		}
		return d
	}

	out := base
	out.P25 = clamp(qs[0])
	out.P50 = clamp(qs[1])
	out.P75 = clamp(qs[2])
	return out
}
