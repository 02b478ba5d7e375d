package handlers

import (
	"net/http"

	"github.com/giygas/interactions-api/catalog/entities"
	"github.com/giygas/interactions-api/checker"
	"github.com/giygas/interactions-api/diagnostic"
	"github.com/giygas/interactions-api/roles"
)

type diagnosticRequest struct {
	Symptoms string `json:"symptoms"`
}

// RoleViewsResponse lists the views a role can open
type RoleViewsResponse struct {
	Role  roles.Role `json:"role"`
	Views []string   `json:"views"`
}

// ListPatients returns every patient profile
func (h *HTTPHandlerImpl) ListPatients(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, http.StatusOK, h.patients.List())
}

// GetPatient returns one patient profile
func (h *HTTPHandlerImpl) GetPatient(w http.ResponseWriter, r *http.Request) {
	id, _ := urlParam(r, "id")
	if err := h.validator.ValidateIdentifier(id); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	patient, ok := h.patients.Get(id)
	if !ok {
		h.RespondWithError(w, http.StatusNotFound, "Patient not found")
		return
	}
	h.RespondWithJSON(w, http.StatusOK, patient)
}

// ConsultationView is a past consultation re-checked against the current catalog
// and the patient's allergies
type ConsultationView struct {
	entities.Consultation
	Findings []checker.Finding `json:"findings"`
}

// StatsResponse feeds the dashboard counters
type StatsResponse struct {
	TotalPatients      int `json:"totalPatients"`
	Consultations      int `json:"consultations"`
	ConsultationAlerts int `json:"consultationAlerts"` // consultations with at least one finding
	ActiveSessions     int `json:"activeSessions"`
	CatalogDrugs       int `json:"catalogDrugs"`
	CatalogRules       int `json:"catalogRules"`
}

// ListConsultations returns every consultation, or those of ?patientId= when set
func (h *HTTPHandlerImpl) ListConsultations(w http.ResponseWriter, r *http.Request) {
	patientID := r.URL.Query().Get("patientId")
	if patientID != "" && !h.knownPatient(w, patientID) {
		return
	}
	h.RespondWithJSON(w, http.StatusOK, h.consultationViews(h.patients.Consultations(patientID)))
}

// PatientConsultations returns the consultations of {id}, newest first
func (h *HTTPHandlerImpl) PatientConsultations(w http.ResponseWriter, r *http.Request) {
	id, _ := urlParam(r, "id")
	if !h.knownPatient(w, id) {
		return
	}
	h.RespondWithJSON(w, http.StatusOK, h.consultationViews(h.patients.Consultations(id)))
}

// DashboardStats returns live counters computed from the directory, sessions and catalog
func (h *HTTPHandlerImpl) DashboardStats(w http.ResponseWriter, r *http.Request) {
	views := h.consultationViews(h.patients.Consultations(""))

	alerts := 0
	for _, v := range views {
		if len(v.Findings) > 0 {
			alerts++
		}
	}

	h.RespondWithJSON(w, http.StatusOK, StatsResponse{
		TotalPatients:      len(h.patients.List()),
		Consultations:      len(views),
		ConsultationAlerts: alerts,
		ActiveSessions:     h.sessions.Len(),
		CatalogDrugs:       len(h.catalog.Drugs()),
		CatalogRules:       len(h.catalog.Rules()),
	})
}

// knownPatient validates id and writes 400 or 404 when it does not name a patient
func (h *HTTPHandlerImpl) knownPatient(w http.ResponseWriter, id string) bool {
	if err := h.validator.ValidateIdentifier(id); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if _, ok := h.patients.Get(id); !ok {
		h.RespondWithError(w, http.StatusNotFound, "Patient not found")
		return false
	}
	return true
}

func (h *HTTPHandlerImpl) consultationViews(consultations []entities.Consultation) []ConsultationView {
	views := make([]ConsultationView, 0, len(consultations))
	for _, c := range consultations {
		var patient *entities.Patient
		if p, ok := h.patients.Get(c.PatientID); ok {
			patient = &p
		}
		views = append(views, ConsultationView{
			Consultation: c,
			Findings:     checker.Check(c.DrugNames(), h.catalog, patient),
		})
	}
	return views
}

// SuggestDiagnostics maps a comma-separated symptom list to candidate diagnoses
func (h *HTTPHandlerImpl) SuggestDiagnostics(w http.ResponseWriter, r *http.Request) {
	var req diagnosticRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := h.validator.ValidateFreeText(req.Symptoms, MaxSymptomsLength); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	suggestion, err := diagnostic.Suggest(req.Symptoms)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondWithJSON(w, http.StatusOK, suggestion)
}

// RoleViews returns the ordered views of {role}
func (h *HTTPHandlerImpl) RoleViews(w http.ResponseWriter, r *http.Request) {
	name, _ := urlParam(r, "role")
	role, views, err := roles.Views(name)
	if err != nil {
		h.RespondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	h.RespondWithJSON(w, http.StatusOK, RoleViewsResponse{Role: role, Views: views})
}
