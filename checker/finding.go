package checker

import (
	"fmt"

	"github.com/giygas/interactions-api/catalog/entities"
)

// Kind distinguishes interaction findings from allergy conflicts
type Kind string

const (
	KindInteraction Kind = "interaction"
	KindAllergy     Kind = "allergy"
)

// AllergyRecommendation is the fixed advice attached to allergy conflicts
const AllergyRecommendation = "Contraindication — choose alternative"

// Finding is a single detected interaction or allergy conflict
type Finding struct {
	Kind           Kind                      `json:"kind"`
	Drugs          []string                  `json:"drugs"`
	Severity       entities.Severity         `json:"severity"`
	Description    string                    `json:"description"`
	Recommendation string                    `json:"recommendation"`
	Rule           *entities.InteractionRule `json:"rule,omitempty"`
	Allergy        string                    `json:"allergy,omitempty"`
}

func newInteractionFinding(drugA, drugB string, rule entities.InteractionRule) Finding {
	return Finding{
		Kind:           KindInteraction,
		Drugs:          []string{drugA, drugB},
		Severity:       rule.Severity,
		Description:    rule.Description,
		Recommendation: rule.Recommendation,
		Rule:           &rule,
	}
}

func newAllergyFinding(drug, allergy string) Finding {
	return Finding{
		Kind:           KindAllergy,
		Drugs:          []string{drug},
		Severity:       entities.SeverityCritical,
		Description:    fmt.Sprintf("Patient allergic to %s", allergy),
		Recommendation: AllergyRecommendation,
		Allergy:        allergy,
	}
}

// Summary holds the counts shown on summary badges
type Summary struct {
	Total         int `json:"total"`
	CriticalCount int `json:"criticalCount"`
	HighCount     int `json:"highCount"`
	ModerateCount int `json:"moderateCount"`
	LowCount      int `json:"lowCount"`
	AllergyCount  int `json:"allergyCount"`
}

// Summarize counts findings per severity
func Summarize(findings []Finding) Summary {
	s := Summary{Total: len(findings)}
	for _, f := range findings {
		switch f.Severity {
		case entities.SeverityCritical:
			s.CriticalCount++
		case entities.SeverityHigh:
			s.HighCount++
		case entities.SeverityModerate:
			s.ModerateCount++
		case entities.SeverityLow:
			s.LowCount++
		}
		if f.Kind == KindAllergy {
			s.AllergyCount++
		}
	}
	return s
}
