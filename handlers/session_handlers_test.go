package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/interactions-api/prescription"
)

func createSession(t *testing.T, r chi.Router) string {
	t.Helper()

	rr := do(r, "POST", "/sessions", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201 on create, got %d", rr.Code)
	}

	resp := decode[SessionResponse](t, rr)
	if resp.ID == "" {
		t.Fatal("Session ID should not be empty")
	}
	if resp.State != prescription.StateEmpty {
		t.Errorf("New session should be Empty, got %s", resp.State)
	}
	if resp.Drugs == nil || resp.Findings == nil {
		t.Error("Drugs and findings should be arrays")
	}
	return resp.ID
}

func TestSessionLifecycle(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createSession(t, r)
	base := "/sessions/" + id

	rr := do(r, "GET", base, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 on get, got %d", rr.Code)
	}

	rr = do(r, "DELETE", base, "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("Expected 204 on delete, got %d", rr.Code)
	}

	for _, step := range []struct{ method, path string }{
		{"GET", base},
		{"DELETE", base},
		{"GET", base + "/history"},
	} {
		if rr = do(r, step.method, step.path, ""); rr.Code != http.StatusNotFound {
			t.Errorf("%s %s after delete: expected 404, got %d", step.method, step.path, rr.Code)
		}
	}
}

func TestSessionInvalidID(t *testing.T) {
	r, _ := newTestRouter(t)

	rr := do(r, "GET", "/sessions/"+url.PathEscape("bad id!"), "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid id, got %d", rr.Code)
	}
}

func TestSessionAddAndRemoveDrugs(t *testing.T) {
	r, _ := newTestRouter(t)
	base := "/sessions/" + createSession(t, r)

	rr := do(r, "POST", base+"/drugs", `{"name":"Warfarine"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201 on first add, got %d", rr.Code)
	}

	rr = do(r, "POST", base+"/drugs", `{"name":"Warfarine"}`)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected 200 when the drug is already present, got %d", rr.Code)
	}

	rr = do(r, "POST", base+"/drugs", `{"name":"Fluconazole"}`)
	resp := decode[SessionResponse](t, rr)
	if resp.State != prescription.StatePopulated {
		t.Errorf("Expected Populated, got %s", resp.State)
	}
	if len(resp.Drugs) != 2 || resp.Summary.HighCount != 1 {
		t.Fatalf("Expected 2 drugs and one High finding, got %v %+v", resp.Drugs, resp.Summary)
	}
	if resp.Findings[0].Rule == nil || resp.Findings[0].Rule.ID != "int-007" {
		t.Errorf("Expected int-007, got %+v", resp.Findings[0])
	}

	rr = do(r, "POST", base+"/drugs", `{"name":""}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty name, got %d", rr.Code)
	}

	rr = do(r, "DELETE", base+"/drugs/"+url.PathEscape("Ibuprofène"), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 removing an absent drug, got %d", rr.Code)
	}
	unchanged := decode[SessionResponse](t, rr)
	if len(unchanged.Drugs) != 2 || len(unchanged.Findings) != 1 {
		t.Errorf("Removing an absent drug should leave the session unchanged, got %v %d findings", unchanged.Drugs, len(unchanged.Findings))
	}

	rr = do(r, "DELETE", base+"/drugs/Fluconazole", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 on remove, got %d", rr.Code)
	}
	resp = decode[SessionResponse](t, rr)
	if len(resp.Findings) != 0 {
		t.Errorf("Findings should be recomputed after remove, got %d", len(resp.Findings))
	}
}

func TestSessionRemoveAccentedDrug(t *testing.T) {
	r, _ := newTestRouter(t)
	base := "/sessions/" + createSession(t, r)

	do(r, "POST", base+"/drugs", `{"name":"Fluoxétine"}`)

	rr := do(r, "DELETE", base+"/drugs/"+url.PathEscape("Fluoxétine"), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 removing an accented name, got %d (%s)", rr.Code, rr.Body.String())
	}
	if resp := decode[SessionResponse](t, rr); len(resp.Drugs) != 0 {
		t.Errorf("Expected empty prescription, got %v", resp.Drugs)
	}
}

func TestSessionPrescriptionIsCapped(t *testing.T) {
	r, _ := newTestRouter(t)
	base := "/sessions/" + createSession(t, r)

	for i := 0; i < MaxPrescriptionSize; i++ {
		rr := do(r, "POST", base+"/drugs", fmt.Sprintf(`{"name":"Drug%d"}`, i))
		if rr.Code != http.StatusCreated {
			t.Fatalf("Add %d: expected 201, got %d", i, rr.Code)
		}
	}

	rr := do(r, "POST", base+"/drugs", `{"name":"OneTooMany"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 past the cap, got %d", rr.Code)
	}

	rr = do(r, "POST", base+"/drugs", `{"name":"Drug0"}`)
	if rr.Code != http.StatusOK {
		t.Errorf("Re-adding a present drug at the cap should be a no-op, got %d", rr.Code)
	}
}

func TestSessionPatientAndClear(t *testing.T) {
	r, _ := newTestRouter(t)
	base := "/sessions/" + createSession(t, r)

	do(r, "POST", base+"/drugs", `{"name":"Aspirine"}`)

	rr := do(r, "PUT", base+"/patient", `{"patientId":"1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 selecting a patient, got %d", rr.Code)
	}
	resp := decode[SessionResponse](t, rr)
	if resp.Patient == nil || resp.Patient.ID != "1" {
		t.Fatalf("Expected patient 1, got %+v", resp.Patient)
	}
	if resp.Summary.AllergyCount != 1 {
		t.Errorf("Expected an allergy finding, got %+v", resp.Summary)
	}

	rr = do(r, "PUT", base+"/patient", `{"patientId":"42"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown patient, got %d", rr.Code)
	}

	rr = do(r, "POST", base+"/notes", `{"note":"Contrôle INR dans 3 jours"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201 adding a note, got %d (%s)", rr.Code, rr.Body.String())
	}
	if resp = decode[SessionResponse](t, rr); len(resp.Notes) != 1 {
		t.Errorf("Expected one note, got %v", resp.Notes)
	}

	rr = do(r, "POST", base+"/notes", `{"note":"<script>alert(1)</script>"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for markup in note, got %d", rr.Code)
	}

	rr = do(r, "DELETE", base+"/drugs", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 on clear, got %d", rr.Code)
	}
	resp = decode[SessionResponse](t, rr)
	if len(resp.Drugs) != 0 || len(resp.Findings) != 0 || len(resp.Notes) != 0 {
		t.Errorf("Clear should empty drugs, findings and notes, got %+v", resp)
	}
	if resp.Patient == nil {
		t.Error("Clear should keep the selected patient")
	}

	rr = do(r, "PUT", base+"/patient", `{"patientId":""}`)
	if resp = decode[SessionResponse](t, rr); resp.Patient != nil {
		t.Errorf("Empty patientId should deselect, got %+v", resp.Patient)
	}
}

func TestSessionHistory(t *testing.T) {
	r, _ := newTestRouter(t)
	id := createSession(t, r)
	base := "/sessions/" + id

	do(r, "POST", base+"/drugs", `{"name":"Warfarine"}`)
	do(r, "POST", base+"/drugs", `{"name":"Aspirine"}`)
	do(r, "POST", base+"/drugs", `{"name":"Aspirine"}`) // no-op

	rr := do(r, "GET", base+"/history", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	resp := decode[HistoryResponse](t, rr)
	if resp.SessionID != id {
		t.Errorf("Expected session %s, got %s", id, resp.SessionID)
	}
	if len(resp.History) != 2 {
		t.Fatalf("Expected 2 check records, got %d", len(resp.History))
	}
	if last := resp.History[1]; last.Summary.CriticalCount != 1 || len(last.Drugs) != 2 {
		t.Errorf("Unexpected last record: %+v", last)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	r, _ := newTestRouter(t)
	first := "/sessions/" + createSession(t, r)
	second := "/sessions/" + createSession(t, r)

	do(r, "POST", first+"/drugs", `{"name":"Warfarine"}`)

	rr := do(r, "GET", second, "")
	if resp := decode[SessionResponse](t, rr); len(resp.Drugs) != 0 {
		t.Errorf("Second session should be empty, got %v", resp.Drugs)
	}
}
