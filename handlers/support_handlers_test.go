package handlers

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/giygas/interactions-api/catalog/entities"
	"github.com/giygas/interactions-api/checker"
	"github.com/giygas/interactions-api/diagnostic"
	"github.com/giygas/interactions-api/patients"
	"github.com/giygas/interactions-api/roles"
)

func TestPatients(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := do(r, "GET", "/patients", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if list := decode[[]entities.Patient](t, rr); len(list) != 3 {
		t.Errorf("Expected 3 patients, got %d", len(list))
	}

	tests := []struct {
		name         string
		id           string
		expectedCode int
	}{
		{"known patient", "2", http.StatusOK},
		{"unknown patient", "404", http.StatusNotFound},
		{"invalid id", url.PathEscape("1;DROP"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(r, "GET", "/patients/"+tt.id, "")
			if rr.Code != tt.expectedCode {
				t.Errorf("Expected %d, got %d", tt.expectedCode, rr.Code)
			}
		})
	}
}

func TestConsultations(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name         string
		target       string
		expectedCode int
		expectedLen  int
	}{
		{"all", "/consultations", http.StatusOK, 2},
		{"filtered", "/consultations?patientId=1", http.StatusOK, 1},
		{"filter unknown patient", "/consultations?patientId=42", http.StatusNotFound, 0},
		{"filter invalid id", "/consultations?patientId=" + url.QueryEscape("1;DROP"), http.StatusBadRequest, 0},
		{"by patient", "/patients/2/consultations", http.StatusOK, 1},
		{"patient without consultations", "/patients/3/consultations", http.StatusOK, 0},
		{"unknown patient", "/patients/42/consultations", http.StatusNotFound, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(r, "GET", tt.target, "")
			if rr.Code != tt.expectedCode {
				t.Fatalf("Expected %d, got %d (%s)", tt.expectedCode, rr.Code, rr.Body.String())
			}
			if tt.expectedCode != http.StatusOK {
				return
			}

			list := decode[[]ConsultationView](t, rr)
			if len(list) != tt.expectedLen {
				t.Fatalf("Expected %d consultations, got %d", tt.expectedLen, len(list))
			}
			for _, c := range list {
				if c.Findings == nil {
					t.Errorf("Consultation %s: findings should be an array", c.ID)
				}
			}
		})
	}
}

func TestConsultationsAreRechecked(t *testing.T) {
	r, h := newTestRouter(t)

	dir, err := patients.NewDirectory(
		[]entities.Patient{{ID: "p1", LastName: "Test", Allergies: []string{"Aspirine"}}},
		[]entities.Consultation{
			{ID: "c1", PatientID: "p1", Date: "2025-02-01", Prescriptions: []entities.PrescribedDrug{
				{ID: "1", Drug: "Warfarine"}, {ID: "2", Drug: "Aspirine"},
			}},
			{ID: "c2", PatientID: "p1", Date: "2025-01-01", Prescriptions: []entities.PrescribedDrug{
				{ID: "3", Drug: "Paracétamol"},
			}},
		},
	)
	if err != nil {
		t.Fatalf("NewDirectory failed: %v", err)
	}
	h.patients = dir

	rr := do(r, "GET", "/patients/p1/consultations", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	list := decode[[]ConsultationView](t, rr)
	if len(list) != 2 || list[0].ID != "c1" {
		t.Fatalf("Expected c1 first, got %+v", list)
	}
	if s := checker.Summarize(list[0].Findings); s.CriticalCount != 2 {
		t.Errorf("Expected the interaction and the allergy, got %+v", s)
	}
	if len(list[1].Findings) != 0 {
		t.Errorf("Expected no findings for c2, got %d", len(list[1].Findings))
	}

	rr = do(r, "GET", "/stats", "")
	stats := decode[StatsResponse](t, rr)
	if stats.TotalPatients != 1 || stats.Consultations != 2 || stats.ConsultationAlerts != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestDashboardStats(t *testing.T) {
	r, _ := newTestRouter(t)
	do(r, "POST", "/sessions", "")

	rr := do(r, "GET", "/stats", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	stats := decode[StatsResponse](t, rr)
	expected := StatsResponse{
		TotalPatients:      3,
		Consultations:      2,
		ConsultationAlerts: 0,
		ActiveSessions:     1,
		CatalogDrugs:       20,
		CatalogRules:       10,
	}
	if stats != expected {
		t.Errorf("Expected %+v, got %+v", expected, stats)
	}
}

func TestSuggestDiagnostics(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name          string
		body          string
		expectedCode  int
		expectedFirst string
		matched       bool
	}{
		{"flu symptoms", `{"symptoms":"Fièvre, toux"}`, http.StatusOK, "Grippe saisonnière", true},
		{"accent free input", `{"symptoms":"fievre"}`, http.StatusOK, "Grippe saisonnière", true},
		{"cardiac symptoms", `{"symptoms":"douleur thoracique"}`, http.StatusOK, "Infarctus du myocarde", true},
		{"fallback", `{"symptoms":"démangeaisons"}`, http.StatusOK, "Syndrome viral", false},
		{"only separators", `{"symptoms":" , , "}`, http.StatusBadRequest, "", false},
		{"empty", `{"symptoms":""}`, http.StatusBadRequest, "", false},
		{"markup", `{"symptoms":"<script>x</script>"}`, http.StatusBadRequest, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(r, "POST", "/diagnostics", tt.body)
			if rr.Code != tt.expectedCode {
				t.Fatalf("Expected %d, got %d (%s)", tt.expectedCode, rr.Code, rr.Body.String())
			}
			if tt.expectedCode != http.StatusOK {
				return
			}

			resp := decode[diagnostic.Suggestion](t, rr)
			if resp.Matched != tt.matched {
				t.Errorf("Expected matched=%v, got %v", tt.matched, resp.Matched)
			}
			if len(resp.Diagnostics) == 0 || resp.Diagnostics[0].Name != tt.expectedFirst {
				t.Errorf("Expected %s first, got %+v", tt.expectedFirst, resp.Diagnostics)
			}
		})
	}
}

func TestRoleViews(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name         string
		role         string
		expectedCode int
		expectedRole roles.Role
		expectedLen  int
	}{
		{"doctor", "doctor", http.StatusOK, roles.Doctor, 6},
		{"french alias", "infirmier", http.StatusOK, roles.Nurse, 5},
		{"accented alias", url.PathEscape("Médecin"), http.StatusOK, roles.Doctor, 6},
		{"patient", "patient", http.StatusOK, roles.Patient, 4},
		{"unknown", "pharmacist", http.StatusNotFound, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(r, "GET", "/roles/"+tt.role+"/views", "")
			if rr.Code != tt.expectedCode {
				t.Fatalf("Expected %d, got %d", tt.expectedCode, rr.Code)
			}
			if tt.expectedCode != http.StatusOK {
				return
			}

			resp := decode[RoleViewsResponse](t, rr)
			if resp.Role != tt.expectedRole || len(resp.Views) != tt.expectedLen {
				t.Errorf("Expected %s with %d views, got %+v", tt.expectedRole, tt.expectedLen, resp)
			}
		})
	}
}
