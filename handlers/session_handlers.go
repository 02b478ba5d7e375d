package handlers

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/giygas/interactions-api/catalog/entities"
	"github.com/giygas/interactions-api/checker"
	"github.com/giygas/interactions-api/logging"
	"github.com/giygas/interactions-api/metrics"
	"github.com/giygas/interactions-api/prescription"
	"github.com/giygas/interactions-api/session"
)

// SessionResponse is the JSON view of a session and its prescription
type SessionResponse struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"createdAt"`
	LastSeen  time.Time          `json:"lastSeen"`
	State     prescription.State `json:"state"`
	Drugs     []string           `json:"drugs"`
	Patient   *entities.Patient  `json:"patient"`
	Notes     []string           `json:"notes"`
	Findings  []checker.Finding  `json:"findings"`
	Summary   checker.Summary    `json:"summary"`
}

// HistoryResponse lists the check records of a session
type HistoryResponse struct {
	SessionID string                     `json:"sessionId"`
	History   []prescription.CheckRecord `json:"history"`
}

type addDrugRequest struct {
	Name string `json:"name"`
}

type setPatientRequest struct {
	PatientID string `json:"patientId"`
}

type addNoteRequest struct {
	Note string `json:"note"`
}

func newSessionResponse(sess *session.Session, set *prescription.Set) SessionResponse {
	return SessionResponse{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		LastSeen:  sess.LastSeen(),
		State:     set.State(),
		Drugs:     set.Drugs(),
		Patient:   set.Patient(),
		Notes:     set.Notes(),
		Findings:  set.Findings(),
		Summary:   set.Summary(),
	}
}

// lookupSession resolves {id} and answers 400/404 itself. Returns nil when answered.
func (h *HTTPHandlerImpl) lookupSession(w http.ResponseWriter, r *http.Request) *session.Session {
	id, _ := urlParam(r, "id")
	if err := h.validator.ValidateIdentifier(id); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid session id")
		return nil
	}

	sess, err := h.sessions.Get(id)
	if err != nil {
		h.RespondWithError(w, http.StatusNotFound, "Session not found")
		return nil
	}
	return sess
}

// CreateSession starts an empty prescription session
func (h *HTTPHandlerImpl) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create()
	metrics.SessionsActive.Set(float64(h.sessions.Len()))

	logging.Debug("Session created", "session_id", sess.ID)

	var resp SessionResponse
	sess.With(func(set *prescription.Set) {
		resp = newSessionResponse(sess, set)
	})
	h.RespondWithJSON(w, http.StatusCreated, resp)
}

// GetSession returns the session state
func (h *HTTPHandlerImpl) GetSession(w http.ResponseWriter, r *http.Request) {
	sess := h.lookupSession(w, r)
	if sess == nil {
		return
	}

	var resp SessionResponse
	sess.With(func(set *prescription.Set) {
		resp = newSessionResponse(sess, set)
	})
	h.RespondWithJSON(w, http.StatusOK, resp)
}

// DeleteSession ends a session
func (h *HTTPHandlerImpl) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id, _ := urlParam(r, "id")
	if err := h.validator.ValidateIdentifier(id); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	if err := h.sessions.Delete(id); err != nil {
		h.RespondWithError(w, http.StatusNotFound, "Session not found")
		return
	}
	metrics.SessionsActive.Set(float64(h.sessions.Len()))

	w.WriteHeader(http.StatusNoContent)
}

// AddDrug adds a drug to the session prescription. Adding a drug already
// present is not an error: the prescription is returned unchanged with 200.
func (h *HTTPHandlerImpl) AddDrug(w http.ResponseWriter, r *http.Request) {
	sess := h.lookupSession(w, r)
	if sess == nil {
		return
	}

	var req addDrugRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := h.validator.ValidateDrugName(req.Name); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	status := http.StatusOK
	var resp SessionResponse
	sess.With(func(set *prescription.Set) {
		if len(set.Drugs()) >= MaxPrescriptionSize && !slices.Contains(set.Drugs(), strings.TrimSpace(req.Name)) {
			status = http.StatusBadRequest
			return
		}
		if set.Add(req.Name) {
			status = http.StatusCreated
			metrics.RecordCheck(metrics.SourceSession, set.Findings())
		}
		resp = newSessionResponse(sess, set)
	})

	if status == http.StatusBadRequest {
		h.RespondWithError(w, status, errTooManyDrugs.Error())
		return
	}
	h.RespondWithJSON(w, status, resp)
}

// RemoveDrug removes {name} from the session prescription
func (h *HTTPHandlerImpl) RemoveDrug(w http.ResponseWriter, r *http.Request) {
	sess := h.lookupSession(w, r)
	if sess == nil {
		return
	}

	name, err := urlParam(r, "name")
	if err != nil || h.validator.ValidateDrugName(name) != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid drug name")
		return
	}
	name = strings.TrimSpace(name)

	// Removing an absent drug is a no-op and returns the unchanged session
	var resp SessionResponse
	sess.With(func(set *prescription.Set) {
		if set.Remove(name) {
			metrics.RecordCheck(metrics.SourceSession, set.Findings())
		}
		resp = newSessionResponse(sess, set)
	})

	h.RespondWithJSON(w, http.StatusOK, resp)
}

// ClearPrescription removes every drug and note from the session
func (h *HTTPHandlerImpl) ClearPrescription(w http.ResponseWriter, r *http.Request) {
	sess := h.lookupSession(w, r)
	if sess == nil {
		return
	}

	var resp SessionResponse
	sess.With(func(set *prescription.Set) {
		set.Clear()
		resp = newSessionResponse(sess, set)
	})
	h.RespondWithJSON(w, http.StatusOK, resp)
}

// SetSessionPatient selects the patient whose allergies are checked.
// An empty patientId deselects the current patient.
func (h *HTTPHandlerImpl) SetSessionPatient(w http.ResponseWriter, r *http.Request) {
	sess := h.lookupSession(w, r)
	if sess == nil {
		return
	}

	var req setPatientRequest
	if !h.decodeBody(w, r, &req) {
		return
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
		patient = &p
	}

	var resp SessionResponse
	sess.With(func(set *prescription.Set) {
		if set.SetPatient(patient) {
			metrics.RecordCheck(metrics.SourceSession, set.Findings())
		}
		resp = newSessionResponse(sess, set)
	})
	h.RespondWithJSON(w, http.StatusOK, resp)
}

// AddNote appends a clinician note to the session
func (h *HTTPHandlerImpl) AddNote(w http.ResponseWriter, r *http.Request) {
	sess := h.lookupSession(w, r)
	if sess == nil {
		return
	}

	var req addNoteRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if err := h.validator.ValidateFreeText(req.Note, MaxNoteLength); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var resp SessionResponse
	sess.With(func(set *prescription.Set) {
		set.AddNote(req.Note)
		resp = newSessionResponse(sess, set)
	})
	h.RespondWithJSON(w, http.StatusCreated, resp)
}

// SessionHistory returns the check records of the session, oldest first
func (h *HTTPHandlerImpl) SessionHistory(w http.ResponseWriter, r *http.Request) {
	sess := h.lookupSession(w, r)
	if sess == nil {
		return
	}

	var resp HistoryResponse
	sess.With(func(set *prescription.Set) {
		resp = HistoryResponse{SessionID: sess.ID, History: set.History()}
	})
	h.RespondWithJSON(w, http.StatusOK, resp)
}
