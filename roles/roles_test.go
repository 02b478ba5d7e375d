package roles

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Role
	}{
		{"doctor", Doctor},
		{"Médecin", Doctor},
		{"medecin", Doctor},
		{"NURSE", Nurse},
		{"infirmier", Nurse},
		{" admin ", Admin},
		{"patient", Patient},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestParseUnknown(t *testing.T) {
	for _, input := range []string{"", "pharmacien", "root"} {
		if _, err := Parse(input); !errors.Is(err, ErrUnknownRole) {
			t.Errorf("Parse(%q): expected ErrUnknownRole, got %v", input, err)
		}
	}
}

func TestViews(t *testing.T) {
	role, views, err := Views("medecin")
	if err != nil {
		t.Fatalf("Views failed: %v", err)
	}
	if role != Doctor {
		t.Errorf("expected doctor, got %s", role)
	}
	if len(views) == 0 || views[0] != ViewDashboard || views[len(views)-1] != ViewSettings {
		t.Errorf("views must start with the dashboard and end with settings: %v", views)
	}

	views[0] = "changed"
	if _, again, _ := Views("doctor"); again[0] != ViewDashboard {
		t.Error("Views must return a copy")
	}
}

func TestEveryRoleHasViews(t *testing.T) {
	for _, r := range All() {
		if _, views, err := Views(string(r)); err != nil || len(views) == 0 {
			t.Errorf("role %s: views=%v err=%v", r, views, err)
		}
	}
}

func TestCanAccess(t *testing.T) {
	tests := []struct {
		role     Role
		view     string
		expected bool
	}{
		{Doctor, ViewDiagnostic, true},
		{Doctor, ViewInteractions, true},
		{Admin, ViewInteractions, true},
		{Nurse, ViewInteractions, false},
		{Nurse, ViewCare, true},
		{Admin, ViewDiagnostic, false},
		{Patient, ViewPatients, false},
		{Patient, ViewConsultations, true},
	}

	for _, tt := range tests {
		if got := CanAccess(tt.role, tt.view); got != tt.expected {
			t.Errorf("CanAccess(%s, %s) = %v, want %v", tt.role, tt.view, got, tt.expected)
		}
	}
}
