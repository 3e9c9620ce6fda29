package valueobject

import "github.com/ignatzorin/timebank-backend/internal/pkg/apperror"

type Category string

const (
	CategoryProgramming Category = "Programming"
	CategoryDesign      Category = "Design"
	CategoryWriting     Category = "Writing"
	CategoryMarketing   Category = "Marketing"
	CategoryTranslation Category = "Translation"
	CategoryAcademic    Category = "Academic"
	CategoryOther       Category = "Other"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryProgramming, CategoryDesign, CategoryWriting, CategoryMarketing,
		CategoryTranslation, CategoryAcademic, CategoryOther:
		return true
	}
	return false
}

func NewCategory(category string) (Category, error) {
	c := Category(category)
	if !c.IsValid() {
		return "", apperror.Validation("category", "неизвестная категория")
	}
	return c, nil
}

type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

func NewComplexity(value string) (Complexity, error) {
	switch c := Complexity(value); c {
	case "":
		return ComplexityMedium, nil
	case ComplexitySimple, ComplexityMedium, ComplexityComplex:
		return c, nil
	}
	return "", apperror.Validation("complexity", "некорректная сложность")
}

type Urgency string

const (
	UrgencyNormal Urgency = "normal"
	UrgencyUrgent Urgency = "urgent"
	UrgencyRush   Urgency = "rush"
)

func NewUrgency(value string) (Urgency, error) {
	switch u := Urgency(value); u {
	case "":
		return UrgencyNormal, nil
	case UrgencyNormal, UrgencyUrgent, UrgencyRush:
		return u, nil
	}
	return "", apperror.Validation("urgency", "некорректная срочность")
}
