package handlers

import (
	"net/http"
	"strings"

	"github.com/giygas/interactions-api/catalog/entities"
	"github.com/giygas/interactions-api/checker"
	"github.com/giygas/interactions-api/logging"
	"github.com/giygas/interactions-api/metrics"
)

// CheckRequest is the body of POST /interactions/check
type CheckRequest struct {
	Drugs       []string `json:"drugs"`
	PatientID   string   `json:"patientId,omitempty"`
	Allergies   []string `json:"allergies,omitempty"`
	MinSeverity string   `json:"minSeverity,omitempty"`
}

// CheckResponse is the result of a prescription check
type CheckResponse struct {
	Findings []checker.Finding `json:"findings"`
	Summary  checker.Summary   `json:"summary"`
}

// FindDrugs searches the catalog by name or active ingredient
func (h *HTTPHandlerImpl) FindDrugs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")

	if err := h.validator.ValidateQuery(query); err != nil {
		logging.Warn("Unusual user input", "q", query)
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validator.ValidateQuery(category); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid category: "+err.Error())
		return
	}

	// Always return 200 with results array (empty if no matches)
	h.RespondWithJSON(w, http.StatusOK, h.catalog.FindDrugs(query, category))
}

// ListCategories returns the distinct drug categories
func (h *HTTPHandlerImpl) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.catalog.Categories()
	if categories == nil {
		categories = []string{}
	}
	h.RespondWithJSON(w, http.StatusOK, categories)
}

// ListInteractions returns every interaction rule
func (h *HTTPHandlerImpl) ListInteractions(w http.ResponseWriter, r *http.Request) {
	rules := h.catalog.Rules()
	if rules == nil {
		rules = []entities.InteractionRule{}
	}
	h.RespondWithJSON(w, http.StatusOK, rules)
}

// FindInteraction returns the rule for the pair ?a=&b=
func (h *HTTPHandlerImpl) FindInteraction(w http.ResponseWriter, r *http.Request) {
	a := strings.TrimSpace(r.URL.Query().Get("a"))
	b := strings.TrimSpace(r.URL.Query().Get("b"))

	if a == "" || b == "" {
		h.RespondWithError(w, http.StatusBadRequest, "Both a and b drug names are required")
		return
	}
	for _, name := range []string{a, b} {
		if err := h.validator.ValidateDrugName(name); err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	rule, ok := h.catalog.FindRuleFor(a, b)
	if !ok {
		h.RespondWithError(w, http.StatusNotFound, "No known interaction between "+a+" and "+b)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, rule)
}

// CheckPrescription runs a stateless check of a drug list
func (h *HTTPHandlerImpl) CheckPrescription(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	drugs, err := h.normalizeDrugs(req.Drugs)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(req.Allergies) > MaxAllergies {
		h.RespondWithError(w, http.StatusBadRequest, "Too many allergies")
		return
	}
	for _, allergy := range req.Allergies {
		if err := h.validator.ValidateDrugName(allergy); err != nil {
			h.RespondWithError(w, http.StatusBadRequest, "Invalid allergy: "+err.Error())
			return
		}
	}

	minSeverity := entities.SeverityUnknown
	if req.MinSeverity != "" {
		if minSeverity, err = entities.ParseSeverity(req.MinSeverity); err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	var patient *entities.Patient
	if req.PatientID != "" {
		if err := h.validator.ValidateIdentifier(req.PatientID); err != nil {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		p, ok := h.patients.Get(req.PatientID)
		if !ok {
			h.RespondWithError(w, http.StatusNotFound, "Patient not found")
			return
		}
		p.Allergies = append(append([]string{}, p.Allergies...), req.Allergies...)
		patient = &p
	} else if len(req.Allergies) > 0 {
		patient = &entities.Patient{Allergies: req.Allergies}
	}

	findings := checker.Check(drugs, h.catalog, patient)
	metrics.RecordCheck(metrics.SourceAPI, findings)

	findings = checker.FilterMinSeverity(findings, minSeverity)
	h.RespondWithJSON(w, http.StatusOK, CheckResponse{
		Findings: findings,
		Summary:  checker.Summarize(findings),
	})
}

// normalizeDrugs validates names, trims them and drops duplicates, keeping order
func (h *HTTPHandlerImpl) normalizeDrugs(names []string) ([]string, error) {
	if len(names) > MaxPrescriptionSize {
		return nil, errTooManyDrugs
	}

	seen := make(map[string]bool, len(names))
	drugs := make([]string, 0, len(names))
	for _, name := range names {
		if err := h.validator.ValidateDrugName(name); err != nil {
			return nil, err
		}
		name = strings.TrimSpace(name)
		if seen[name] {
			continue
		}
		seen[name] = true
		drugs = append(drugs, name)
	}
	return drugs, nil
}
