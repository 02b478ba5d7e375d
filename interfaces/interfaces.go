// Package interfaces defines core abstractions for the interactions API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"net/http"
	"time"

	"github.com/giygas/interactions-api/catalog/entities"
)

// CatalogStore defines the contract for the drug and interaction reference data.
// Implementations must be safe for concurrent reads; the checker only reads.
type CatalogStore interface {
	// Drug lookups
	FindDrugs(query, category string) []entities.DrugRecord
	Lookup(name string) (entities.DrugRecord, bool)
	Drugs() []entities.DrugRecord
	Categories() []string

	// Interaction lookups. FindRuleFor is symmetric in its arguments.
	FindRuleFor(drugA, drugB string) (entities.InteractionRule, bool)
	Rules() []entities.InteractionRule

	LastLoaded() time.Time
}

// CatalogLoader produces catalog content from a source (embedded data, file, ...)
type CatalogLoader interface {
	Load() ([]entities.DrugRecord, []entities.InteractionRule, error)
	Source() string
}

// CatalogReplacer is a CatalogStore whose content can be swapped atomically
type CatalogReplacer interface {
	CatalogStore
	Replace(drugs []entities.DrugRecord, rules []entities.InteractionRule)
}

// PatientDirectory gives read-only access to patient profiles and past consultations
type PatientDirectory interface {
	Get(id string) (entities.Patient, bool)
	List() []entities.Patient
	Consultations(patientID string) []entities.Consultation
}

// SessionStore is the part of the session store used by background jobs and health
type SessionStore interface {
	Len() int
	PruneIdle(ttl time.Duration) int
}

// ReloadReporter exposes the outcome of the last catalog reload
type ReloadReporter interface {
	LastReloadError() error
	IsReloading() bool
}

// Scheduler defines the contract for background jobs (catalog reload, session pruning)
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns the status label, data for the response body and the HTTP status
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// HTTPHandler defines the contract for HTTP request handlers.
type HTTPHandler interface {
	// Catalog
	FindDrugs(w http.ResponseWriter, r *http.Request)
	ListCategories(w http.ResponseWriter, r *http.Request)
	ListInteractions(w http.ResponseWriter, r *http.Request)
	FindInteraction(w http.ResponseWriter, r *http.Request)
	CheckPrescription(w http.ResponseWriter, r *http.Request)

	// Sessions
	CreateSession(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request)
	DeleteSession(w http.ResponseWriter, r *http.Request)
	AddDrug(w http.ResponseWriter, r *http.Request)
	RemoveDrug(w http.ResponseWriter, r *http.Request)
	ClearPrescription(w http.ResponseWriter, r *http.Request)
	SetSessionPatient(w http.ResponseWriter, r *http.Request)
	AddNote(w http.ResponseWriter, r *http.Request)
	SessionHistory(w http.ResponseWriter, r *http.Request)

	// Supporting data
	ListPatients(w http.ResponseWriter, r *http.Request)
	GetPatient(w http.ResponseWriter, r *http.Request)
	ListConsultations(w http.ResponseWriter, r *http.Request)
	PatientConsultations(w http.ResponseWriter, r *http.Request)
	DashboardStats(w http.ResponseWriter, r *http.Request)
	SuggestDiagnostics(w http.ResponseWriter, r *http.Request)
	RoleViews(w http.ResponseWriter, r *http.Request)

	// This will stay in all versions
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// InputValidator defines the contract for user input validation.
type InputValidator interface {
	// ValidateDrugName checks a drug name submitted for a prescription
	ValidateDrugName(input string) error

	// ValidateQuery checks a free-text search query (may be empty)
	ValidateQuery(input string) error

	// ValidateIdentifier checks session, patient and role identifiers
	ValidateIdentifier(input string) error

	// ValidateFreeText checks notes and symptom descriptions
	ValidateFreeText(input string, maxLength int) error
}
