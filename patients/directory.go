// Package patients provides the read-only patient directory used to pull
// allergies into a prescription check, along with each patient's past consultations.
package patients

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/giygas/interactions-api/catalog/entities"
	"github.com/giygas/interactions-api/interfaces"
)

//go:embed fixtures/patients.yaml
var defaultPatients []byte

var (
	ErrDuplicatePatient      = errors.New("duplicate patient id")
	ErrMissingID             = errors.New("patient without id")
	ErrDuplicateConsultation = errors.New("duplicate consultation id")
	ErrUnknownPatient        = errors.New("consultation for unknown patient")
)

// Compile-time check to ensure Directory implements PatientDirectory
var _ interfaces.PatientDirectory = (*Directory)(nil)

// Directory is an immutable set of patients keyed by ID
type Directory struct {
	patients      []entities.Patient
	byID          map[string]int
	consultations []entities.Consultation // newest first
}

// NewDirectory indexes patients and their consultations. Missing or duplicate IDs
// are rejected, as are consultations that point to an unknown patient.
func NewDirectory(patients []entities.Patient, consultations []entities.Consultation) (*Directory, error) {
	d := &Directory{
		patients: make([]entities.Patient, 0, len(patients)),
		byID:     make(map[string]int, len(patients)),
	}

	for i, p := range patients {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return nil, fmt.Errorf("patient %d: %w", i, ErrMissingID)
		}
		if _, exists := d.byID[p.ID]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePatient, p.ID)
		}
		if p.Allergies == nil {
			p.Allergies = []string{}
		}
		d.byID[p.ID] = len(d.patients)
		d.patients = append(d.patients, p)
	}

	seen := make(map[string]bool, len(consultations))
	for i, c := range consultations {
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" {
			return nil, fmt.Errorf("consultation %d: %w", i, ErrMissingID)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateConsultation, c.ID)
		}
		if _, ok := d.byID[c.PatientID]; !ok {
			return nil, fmt.Errorf("%w: consultation %s, patient %q", ErrUnknownPatient, c.ID, c.PatientID)
		}
		seen[c.ID] = true
		d.consultations = append(d.consultations, c)
	}

	// ISO dates sort lexically
	sort.SliceStable(d.consultations, func(i, j int) bool {
		return d.consultations[i].Date > d.consultations[j].Date
	})

	return d, nil
}

// LoadDefault builds the directory from the embedded demo patients
func LoadDefault() (*Directory, error) {
	var doc struct {
		Patients      []entities.Patient      `yaml:"patients"`
		Consultations []entities.Consultation `yaml:"consultations"`
	}
	if err := yaml.Unmarshal(defaultPatients, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode embedded patients: %w", err)
	}
	return NewDirectory(doc.Patients, doc.Consultations)
}

// Get returns the patient with this ID
func (d *Directory) Get(id string) (entities.Patient, bool) {
	i, ok := d.byID[id]
	if !ok {
		return entities.Patient{}, false
	}
	return d.patients[i], true
}

// List returns every patient in file order
func (d *Directory) List() []entities.Patient {
	return append([]entities.Patient{}, d.patients...)
}

// Consultations returns the consultations of patientID, newest first.
// An empty patientID returns every consultation.
func (d *Directory) Consultations(patientID string) []entities.Consultation {
	list := []entities.Consultation{}
	for _, c := range d.consultations {
		if patientID == "" || c.PatientID == patientID {
			list = append(list, c)
		}
	}
	return list
}
