// Package prescription manages the working prescription of one user: the ordered
// list of drugs, the selected patient, the clinician notes and the findings
// recomputed after every change. A Set is not safe for concurrent use; the
// session layer serializes access.
package prescription

import (
	"strings"
	"time"

	"github.com/giygas/interactions-api/catalog/entities"
	"github.com/giygas/interactions-api/checker"
	"github.com/giygas/interactions-api/interfaces"
)

// MaxHistory bounds the number of check records kept per Set
const MaxHistory = 50

// State of a prescription
type State string

const (
	StateEmpty     State = "Empty"
	StatePopulated State = "Populated"
)

// CheckRecord is one entry of the check history
type CheckRecord struct {
	CheckedAt time.Time       `json:"checkedAt"`
	Drugs     []string        `json:"drugs"`
	PatientID string          `json:"patientId,omitempty"`
	Summary   checker.Summary `json:"summary"`
}

// Set is an ordered, duplicate-free list of drug names and its findings
type Set struct {
	store    interfaces.CatalogStore
	drugs    []string
	patient  *entities.Patient
	findings []checker.Finding
	notes    []string
	history  []CheckRecord
	now      func() time.Time
}

// NewSet creates an empty prescription checked against store
func NewSet(store interfaces.CatalogStore) *Set {
	return &Set{
		store:    store,
		findings: []checker.Finding{},
		now:      time.Now,
	}
}

// Add appends name if it is not already present. Returns false on duplicates
// and blank names, in which case nothing is recomputed.
func (s *Set) Add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || s.index(name) >= 0 {
		return false
	}

	s.drugs = append(s.drugs, name)
	s.recompute()
	return true
}

// Remove deletes name from the list. Returns false if it was absent.
func (s *Set) Remove(name string) bool {
	i := s.index(strings.TrimSpace(name))
	if i < 0 {
		return false
	}

	s.drugs = append(s.drugs[:i], s.drugs[i+1:]...)
	s.recompute()
	return true
}

// Clear empties drugs, findings and notes. The patient stays selected.
func (s *Set) Clear() {
	s.notes = nil
	if len(s.drugs) == 0 {
		return
	}

	s.drugs = nil
	s.recompute()
}

// SetPatient selects the patient whose allergies are checked; nil deselects.
// Returns false when the selection did not change.
func (s *Set) SetPatient(p *entities.Patient) bool {
	if samePatient(s.patient, p) {
		return false
	}

	if p != nil {
		cp := *p
		cp.Allergies = append([]string(nil), p.Allergies...)
		p = &cp
	}
	s.patient = p
	s.recompute()
	return true
}

// Patient returns the selected patient, or nil
func (s *Set) Patient() *entities.Patient {
	return s.patient
}

// Drugs returns a copy of the drug list in insertion order
func (s *Set) Drugs() []string {
	return append([]string{}, s.drugs...)
}

// Findings returns the findings of the last recomputation
func (s *Set) Findings() []checker.Finding {
	return append([]checker.Finding{}, s.findings...)
}

// Summary counts the current findings
func (s *Set) Summary() checker.Summary {
	return checker.Summarize(s.findings)
}

// State reports whether any drug is prescribed
func (s *Set) State() State {
	if len(s.drugs) == 0 {
		return StateEmpty
	}
	return StatePopulated
}

// AddNote appends a clinician note; blank notes are ignored
func (s *Set) AddNote(note string) bool {
	note = strings.TrimSpace(note)
	if note == "" {
		return false
	}
	s.notes = append(s.notes, note)
	return true
}

// Notes returns a copy of the notes
func (s *Set) Notes() []string {
	return append([]string{}, s.notes...)
}

// History returns the check records, oldest first
func (s *Set) History() []CheckRecord {
	return append([]CheckRecord{}, s.history...)
}

func (s *Set) index(name string) int {
	for i, d := range s.drugs {
		if d == name {
			return i
		}
	}
	return -1
}

func (s *Set) recompute() {
	s.findings = checker.Check(s.drugs, s.store, s.patient)

	record := CheckRecord{
		CheckedAt: s.now(),
		Drugs:     append([]string{}, s.drugs...),
		Summary:   checker.Summarize(s.findings),
	}
	if s.patient != nil {
		record.PatientID = s.patient.ID
	}

	s.history = append(s.history, record)
	if len(s.history) > MaxHistory {
		s.history = append([]CheckRecord(nil), s.history[len(s.history)-MaxHistory:]...)
	}
}

func samePatient(a, b *entities.Patient) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}
