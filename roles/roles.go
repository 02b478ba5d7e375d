// Package roles resolves a user role to the ordered list of views it can open.
package roles

import (
	"errors"
	"fmt"
	"strings"

	"github.com/giygas/interactions-api/catalog/textnorm"
)

// ErrUnknownRole is returned for roles outside the registry
var ErrUnknownRole = errors.New("unknown role")

// Role is a canonical role name
type Role string

const (
	Doctor  Role = "doctor"
	Nurse   Role = "nurse"
	Admin   Role = "admin"
	Patient Role = "patient"
)

// View identifiers
const (
	ViewDashboard     = "dashboard"
	ViewPatients      = "patients"
	ViewRecords       = "records"
	ViewDiagnostic    = "diagnostic"
	ViewInteractions  = "interactions"
	ViewCare          = "care"
	ViewConsultations = "consultations"
	ViewInformation   = "information"
	ViewSettings      = "settings"
)

var views = map[Role][]string{
	Doctor:  {ViewDashboard, ViewPatients, ViewRecords, ViewDiagnostic, ViewInteractions, ViewSettings},
	Nurse:   {ViewDashboard, ViewPatients, ViewRecords, ViewCare, ViewSettings},
	Admin:   {ViewDashboard, ViewPatients, ViewRecords, ViewInteractions, ViewSettings},
	Patient: {ViewDashboard, ViewConsultations, ViewInformation, ViewSettings},
}

var aliases = map[string]Role{
	"doctor":    Doctor,
	"medecin":   Doctor,
	"nurse":     Nurse,
	"infirmier": Nurse,
	"admin":     Admin,
	"patient":   Patient,
}

// Parse resolves a role name or French alias, ignoring case and accents
func Parse(name string) (Role, error) {
	if r, ok := aliases[textnorm.Fold(name)]; ok {
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, strings.TrimSpace(name))
}

// Views returns the views of a role in menu order
func Views(name string) (Role, []string, error) {
	r, err := Parse(name)
	if err != nil {
		return "", nil, err
	}
	return r, append([]string{}, views[r]...), nil
}

// CanAccess reports whether the role may open view
func CanAccess(r Role, view string) bool {
	for _, v := range views[r] {
		if v == view {
			return true
		}
	}
	return false
}

// All lists the canonical roles
func All() []Role {
	return []Role{Doctor, Nurse, Admin, Patient}
}
