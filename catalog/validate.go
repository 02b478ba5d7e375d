package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/giygas/interactions-api/catalog/entities"
	"github.com/giygas/interactions-api/catalog/textnorm"
)

var (
	// ErrDuplicateDrug is returned when two drugs share a name
	ErrDuplicateDrug = errors.New("duplicate drug name")
	// ErrInvalidDrug is returned for drugs without a name
	ErrInvalidDrug = errors.New("invalid drug")
	// ErrInvalidRule is returned for rules that can never be evaluated
	ErrInvalidRule = errors.New("invalid interaction rule")
)

// QualityReport lists catalog issues that are tolerated
type QualityReport struct {
	DrugCount          int
	RuleCount          int
	UnknownRuleDrugs   []string // rule drug names absent from the drug list
	DrugsWithoutDCI    []string
	RulesWithoutAdvice []string // rule IDs without recommendation
}

// Validate rejects catalogs that break the lookup invariants (unique drug names,
// one rule per unordered pair, no self-interactions) and reports tolerated issues.
func Validate(drugs []entities.DrugRecord, rules []entities.InteractionRule) (*QualityReport, error) {
	report := &QualityReport{
		DrugCount:          len(drugs),
		RuleCount:          len(rules),
		UnknownRuleDrugs:   []string{},
		DrugsWithoutDCI:    []string{},
		RulesWithoutAdvice: []string{},
	}

	names := make(map[string]bool, len(drugs))
	for i, d := range drugs {
		if strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("%w: drug at index %d has no name", ErrInvalidDrug, i)
		}
		if names[d.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDrug, d.Name)
		}
		names[d.Name] = true

		if strings.TrimSpace(d.ActiveIngredient) == "" {
			report.DrugsWithoutDCI = append(report.DrugsWithoutDCI, d.Name)
		}
	}

	pairs := make(map[string]string, len(rules))
	unknown := make(map[string]bool)
	for i, r := range rules {
		if strings.TrimSpace(r.DrugA) == "" || strings.TrimSpace(r.DrugB) == "" {
			return nil, fmt.Errorf("%w: rule %d (%s) is missing a drug name", ErrInvalidRule, i, r.ID)
		}
		if textnorm.Fold(r.DrugA) == textnorm.Fold(r.DrugB) {
			return nil, fmt.Errorf("%w: rule %s pairs %s with itself", ErrInvalidRule, r.ID, r.DrugA)
		}
		if r.Severity.Rank() == 0 {
			return nil, fmt.Errorf("%w: rule %s has no severity", ErrInvalidRule, r.ID)
		}

		key := pairKey(r.DrugA, r.DrugB)
		if other, exists := pairs[key]; exists {
			return nil, fmt.Errorf("%w: rules %s and %s cover the same pair %s/%s", ErrInvalidRule, other, r.ID, r.DrugA, r.DrugB)
		}
		pairs[key] = r.ID

		for _, name := range []string{r.DrugA, r.DrugB} {
			if !names[name] && !unknown[name] {
				unknown[name] = true
				report.UnknownRuleDrugs = append(report.UnknownRuleDrugs, name)
			}
		}

		if strings.TrimSpace(r.Recommendation) == "" {
			report.RulesWithoutAdvice = append(report.RulesWithoutAdvice, r.ID)
		}
	}

	return report, nil
}

// pairKey is order independent
func pairKey(a, b string) string {
	a, b = textnorm.Fold(a), textnorm.Fold(b)
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}
