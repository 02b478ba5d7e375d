// Package checker computes interaction and allergy findings for a prescription.
// Check is a pure function of its inputs: no state, no I/O, no errors.
package checker

import (
	"sort"
	"strings"

	"github.com/giygas/interactions-api/catalog/entities"
	"github.com/giygas/interactions-api/catalog/textnorm"
	"github.com/giygas/interactions-api/interfaces"
)

// Check returns every finding for the prescription, most severe first.
// patient may be nil. Pairs are visited in (i, j) order with i < j and only
// the first matching rule per pair is reported.
func Check(prescription []string, store interfaces.CatalogStore, patient *entities.Patient) []Finding {
	findings := []Finding{}
	if len(prescription) == 0 || store == nil {
		return findings
	}

	for i := 0; i < len(prescription); i++ {
		for j := i + 1; j < len(prescription); j++ {
			if rule, ok := store.FindRuleFor(prescription[i], prescription[j]); ok {
				findings = append(findings, newInteractionFinding(prescription[i], prescription[j], rule))
			}
		}
	}

	if patient != nil {
		for _, drug := range prescription {
			for _, allergy := range patient.Allergies {
				if AllergyMatches(drug, allergy) {
					findings = append(findings, newAllergyFinding(drug, allergy))
				}
			}
		}
	}

	SortBySeverity(findings)
	return findings
}

// AllergyMatches reports whether a drug name conflicts with an allergy: the drug
// name contains the allergy, or the allergy contains one of the drug name tokens.
// Matching ignores case and accents and is purely textual, so a brand name that
// does not spell out the allergen is not caught.
func AllergyMatches(drug, allergy string) bool {
	if textnorm.Contains(drug, allergy) {
		return true
	}

	foldedAllergy := textnorm.Fold(allergy)
	if foldedAllergy == "" {
		return false
	}
	for _, token := range textnorm.Tokens(drug) {
		if strings.Contains(foldedAllergy, token) {
			return true
		}
	}
	return false
}

// SortBySeverity orders findings by descending severity rank, keeping the
// original order between findings of the same severity.
func SortBySeverity(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Severity.Rank() > findings[j].Severity.Rank()
	})
}

// FilterMinSeverity keeps the findings at or above min, preserving order
func FilterMinSeverity(findings []Finding, min entities.Severity) []Finding {
	filtered := make([]Finding, 0, len(findings))
	for _, f := range findings {
		if f.Severity.Rank() >= min.Rank() {
			filtered = append(filtered, f)
		}
	}
	return filtered
}
