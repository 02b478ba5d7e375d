// Package catalog provides the drug and interaction reference data. The Store keeps an
// immutable snapshot behind an atomic.Value so a reload swaps the whole catalog at once
// while readers keep using the snapshot they started with.
package catalog

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/giygas/interactions-api/catalog/entities"
	"github.com/giygas/interactions-api/catalog/textnorm"
	"github.com/giygas/interactions-api/interfaces"
	"github.com/giygas/interactions-api/logging"
)

// AllCategories disables the category filter of FindDrugs
const AllCategories = "All"

// Compile-time check to ensure Store implements CatalogStore
var _ interfaces.CatalogStore = (*Store)(nil)

type snapshot struct {
	drugs    []entities.DrugRecord
	rules    []entities.InteractionRule
	byName   map[string]int // exact name -> index in drugs
	loadedAt time.Time
}

// Store is the in-memory catalog
type Store struct {
	data atomic.Value // *snapshot
}

// NewStore creates a store holding the given data
func NewStore(drugs []entities.DrugRecord, rules []entities.InteractionRule) *Store {
	s := &Store{}
	s.Replace(drugs, rules)
	return s
}

// Replace atomically swaps the catalog content
func (s *Store) Replace(drugs []entities.DrugRecord, rules []entities.InteractionRule) {
	snap := &snapshot{
		drugs:    append([]entities.DrugRecord(nil), drugs...),
		rules:    append([]entities.InteractionRule(nil), rules...),
		byName:   make(map[string]int, len(drugs)),
		loadedAt: time.Now(),
	}
	for i, d := range snap.drugs {
		if _, exists := snap.byName[d.Name]; !exists {
			snap.byName[d.Name] = i
		}
	}

	s.data.Store(snap)
}

func (s *Store) current() *snapshot {
	if v := s.data.Load(); v != nil {
		if snap, ok := v.(*snapshot); ok {
			return snap
		}
	}

	logging.Warn("Catalog snapshot is empty or invalid")
	return &snapshot{byName: map[string]int{}}
}

// Drugs returns every drug in insertion order
func (s *Store) Drugs() []entities.DrugRecord {
	return s.current().drugs
}

// Rules returns every interaction rule in insertion order
func (s *Store) Rules() []entities.InteractionRule {
	return s.current().rules
}

// LastLoaded returns when the current snapshot was installed
func (s *Store) LastLoaded() time.Time {
	return s.current().loadedAt
}

// Lookup returns the drug with exactly this name
func (s *Store) Lookup(name string) (entities.DrugRecord, bool) {
	snap := s.current()
	if i, ok := snap.byName[name]; ok {
		return snap.drugs[i], true
	}
	return entities.DrugRecord{}, false
}

// Categories lists the distinct categories in first-seen order
func (s *Store) Categories() []string {
	seen := make(map[string]bool)
	var categories []string
	for _, d := range s.current().drugs {
		key := textnorm.Fold(d.Category)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		categories = append(categories, d.Category)
	}
	return categories
}

// FindDrugs returns the drugs whose name or active ingredient contains query,
// ignoring case and accents. An empty query matches every drug. The category
// filter is exact (case-insensitive) unless it is empty or "All".
// Results keep catalog order.
func (s *Store) FindDrugs(query, category string) []entities.DrugRecord {
	q := textnorm.Fold(query)
	filterCategory := category != "" && textnorm.Fold(category) != textnorm.Fold(AllCategories)
	wantedCategory := textnorm.Fold(category)

	results := []entities.DrugRecord{}
	for _, d := range s.current().drugs {
		if filterCategory && textnorm.Fold(d.Category) != wantedCategory {
			continue
		}
		if q == "" || textnorm.Contains(d.Name, q) || textnorm.Contains(d.ActiveIngredient, q) {
			results = append(results, d)
		}
	}
	return results
}

// FindRuleFor returns the first rule matching the unordered pair (drugA, drugB).
// Exact name matches win over the ingredient fallback.
func (s *Store) FindRuleFor(drugA, drugB string) (entities.InteractionRule, bool) {
	if drugA == "" || drugB == "" || drugA == drugB {
		return entities.InteractionRule{}, false
	}

	snap := s.current()

	for _, rule := range snap.rules {
		if (rule.DrugA == drugA && rule.DrugB == drugB) || (rule.DrugA == drugB && rule.DrugB == drugA) {
			return rule, true
		}
	}

	if textnorm.Fold(drugA) == textnorm.Fold(drugB) {
		return entities.InteractionRule{}, false
	}

	keysA := snap.drugKeys(drugA)
	keysB := snap.drugKeys(drugB)

	for _, rule := range snap.rules {
		sideA := ruleKeys(rule.DrugA, rule.IngredientA)
		sideB := ruleKeys(rule.DrugB, rule.IngredientB)

		if (keysOverlap(keysA, sideA) && keysOverlap(keysB, sideB)) ||
			(keysOverlap(keysA, sideB) && keysOverlap(keysB, sideA)) {
			return rule, true
		}
	}

	return entities.InteractionRule{}, false
}

// drugKeys returns the folded identifiers a prescribed name can be matched on:
// the name itself plus, when the catalog knows the drug, its DCI and class.
func (snap *snapshot) drugKeys(name string) []string {
	keys := appendKey(nil, name)
	if i, ok := snap.byName[name]; ok {
		keys = appendKey(keys, snap.drugs[i].ActiveIngredient)
		keys = appendKey(keys, snap.drugs[i].Class)
	}
	return keys
}

func ruleKeys(name, ingredient string) []string {
	return appendKey(appendKey(nil, name), ingredient)
}

func appendKey(keys []string, value string) []string {
	if folded := textnorm.Fold(value); folded != "" {
		keys = append(keys, folded)
	}
	return keys
}

// keysOverlap is the ingredient fallback: two keys overlap when they are equal or
// one contains the other. Keys shorter than textnorm.MinTokenLength are only
// compared for equality.
func keysOverlap(drugKeys, ruleKeys []string) bool {
	for _, dk := range drugKeys {
		for _, rk := range ruleKeys {
			if dk == rk {
				return true
			}
			if len([]rune(rk)) >= textnorm.MinTokenLength && strings.Contains(dk, rk) {
				return true
			}
			if len([]rune(dk)) >= textnorm.MinTokenLength && strings.Contains(rk, dk) {
				return true
			}
		}
	}
	return false
}
