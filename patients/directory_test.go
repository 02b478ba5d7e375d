package patients

import (
	"errors"
	"testing"

	"github.com/giygas/interactions-api/catalog/entities"
)

func TestLoadDefault(t *testing.T) {
	dir, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault failed: %v", err)
	}

	list := dir.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 patients, got %d", len(list))
	}

	tests := []struct {
		id        string
		lastName  string
		allergies []string
	}{
		{"1", "Kouamé", []string{"Pénicilline", "Aspirine"}},
		{"2", "Traoré", []string{"Latex"}},
		{"3", "Ouattara", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p, ok := dir.Get(tt.id)
			if !ok {
				t.Fatalf("patient %s not found", tt.id)
			}
			if p.LastName != tt.lastName {
				t.Errorf("expected %s, got %s", tt.lastName, p.LastName)
			}
			if p.Allergies == nil {
				t.Fatal("allergies must never be nil")
			}
			if len(p.Allergies) != len(tt.allergies) {
				t.Fatalf("expected allergies %v, got %v", tt.allergies, p.Allergies)
			}
			for i := range tt.allergies {
				if p.Allergies[i] != tt.allergies[i] {
					t.Errorf("allergy %d: expected %s, got %s", i, tt.allergies[i], p.Allergies[i])
				}
			}
		})
	}

	if _, ok := dir.Get("42"); ok {
		t.Error("unknown patient must not be found")
	}
}

func TestNewDirectoryErrors(t *testing.T) {
	tests := []struct {
		name     string
		patients []entities.Patient
		expected error
	}{
		{"missing id", []entities.Patient{{LastName: "Sans"}}, ErrMissingID},
		{"blank id", []entities.Patient{{ID: "  "}}, ErrMissingID},
		{"duplicate id", []entities.Patient{{ID: "1"}, {ID: "1"}}, ErrDuplicatePatient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDirectory(tt.patients, nil); !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestListReturnsCopy(t *testing.T) {
	dir, err := NewDirectory([]entities.Patient{{ID: "1", LastName: "A"}}, nil)
	if err != nil {
		t.Fatalf("NewDirectory failed: %v", err)
	}

	list := dir.List()
	list[0].LastName = "changed"

	if p, _ := dir.Get("1"); p.LastName != "A" {
		t.Error("List must not expose the internal slice")
	}
}

func TestConsultations(t *testing.T) {
	dir, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault failed: %v", err)
	}

	all := dir.Consultations("")
	if len(all) != 2 {
		t.Fatalf("expected 2 consultations, got %d", len(all))
	}
	if all[0].Date < all[1].Date {
		t.Errorf("expected newest first, got %s then %s", all[0].Date, all[1].Date)
	}

	tests := []struct {
		patientID string
		expected  int
		drug      string
	}{
		{"1", 1, "Metformine"},
		{"2", 1, "Prednisolone"},
		{"3", 0, ""},
		{"42", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.patientID, func(t *testing.T) {
			list := dir.Consultations(tt.patientID)
			if list == nil {
				t.Fatal("consultations must never be nil")
			}
			if len(list) != tt.expected {
				t.Fatalf("expected %d consultations, got %d", tt.expected, len(list))
			}
			if tt.drug != "" {
				if names := list[0].DrugNames(); len(names) != 1 || names[0] != tt.drug {
					t.Errorf("expected %s, got %v", tt.drug, names)
				}
			}
		})
	}
}

func TestNewDirectoryConsultationErrors(t *testing.T) {
	patients := []entities.Patient{{ID: "1"}}

	tests := []struct {
		name          string
		consultations []entities.Consultation
		expected      error
	}{
		{"missing id", []entities.Consultation{{PatientID: "1"}}, ErrMissingID},
		{"duplicate id", []entities.Consultation{{ID: "c", PatientID: "1"}, {ID: "c", PatientID: "1"}}, ErrDuplicateConsultation},
		{"unknown patient", []entities.Consultation{{ID: "c", PatientID: "9"}}, ErrUnknownPatient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDirectory(patients, tt.consultations); !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}
