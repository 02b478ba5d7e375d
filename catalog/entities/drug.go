// Package entities holds the reference data types shared by the catalog, the checker
// and the HTTP layer.
package entities

// DrugRecord is one entry of the drug catalog
type DrugRecord struct {
	Name              string   `json:"name" yaml:"name"`
	ActiveIngredient  string   `json:"activeIngredient" yaml:"activeIngredient"` // DCI, may be empty
	Category          string   `json:"category" yaml:"category"`
	Class             string   `json:"class,omitempty" yaml:"class"`
	Contraindications []string `json:"contraindications" yaml:"contraindications"`
	SideEffects       []string `json:"sideEffects" yaml:"sideEffects"`
}

// InteractionRule describes a known interaction between two drugs. The pair is unordered.
type InteractionRule struct {
	ID             string   `json:"id" yaml:"id"`
	DrugA          string   `json:"drugA" yaml:"drugA"`
	DrugB          string   `json:"drugB" yaml:"drugB"`
	IngredientA    string   `json:"ingredientA,omitempty" yaml:"ingredientA"`
	IngredientB    string   `json:"ingredientB,omitempty" yaml:"ingredientB"`
	Severity       Severity `json:"severity" yaml:"severity"`
	Description    string   `json:"description" yaml:"description"`
	Mechanism      string   `json:"mechanism" yaml:"mechanism"`
	Recommendation string   `json:"recommendation" yaml:"recommendation"`
	Alternative    string   `json:"alternative,omitempty" yaml:"alternative"`
	Monitoring     []string `json:"monitoring,omitempty" yaml:"monitoring"`
	Reference      string   `json:"reference,omitempty" yaml:"reference"`
	UpdatedOn      string   `json:"updatedOn,omitempty" yaml:"updatedOn"`
}

// Involves reports whether name is one of the two drugs of the rule (exact match)
func (r InteractionRule) Involves(name string) bool {
	return r.DrugA == name || r.DrugB == name
}

// Patient is the read-only view of a patient used by the checker
type Patient struct {
	ID         string   `json:"id" yaml:"id"`
	LastName   string   `json:"lastName" yaml:"lastName"`
	FirstName  string   `json:"firstName" yaml:"firstName"`
	BirthDate  string   `json:"birthDate,omitempty" yaml:"birthDate"`
	Sex        string   `json:"sex,omitempty" yaml:"sex"`
	Allergies  []string `json:"allergies" yaml:"allergies"`
	Conditions []string `json:"conditions" yaml:"conditions"`
	Treatments []string `json:"treatments,omitempty" yaml:"treatments"`
}

// PrescribedDrug is one line of a past consultation's prescription
type PrescribedDrug struct {
	ID        string `json:"id" yaml:"id"`
	Drug      string `json:"drug" yaml:"drug"`
	Dosage    string `json:"dosage" yaml:"dosage"`
	Frequency string `json:"frequency" yaml:"frequency"`
	Duration  string `json:"duration" yaml:"duration"`
}

// Consultation is a past visit recorded for a patient. Read-only.
type Consultation struct {
	ID            string           `json:"id" yaml:"id"`
	PatientID     string           `json:"patientId" yaml:"patientId"`
	Date          string           `json:"date" yaml:"date"` // YYYY-MM-DD
	Reason        string           `json:"reason" yaml:"reason"`
	Symptoms      []string         `json:"symptoms" yaml:"symptoms"`
	Diagnosis     string           `json:"diagnosis" yaml:"diagnosis"`
	Prescriptions []PrescribedDrug `json:"prescriptions" yaml:"prescriptions"`
	Exams         []string         `json:"exams" yaml:"exams"`
	Notes         string           `json:"notes,omitempty" yaml:"notes"`
}

// DrugNames returns the prescribed drug names in prescription order
func (c Consultation) DrugNames() []string {
	names := make([]string, 0, len(c.Prescriptions))
	for _, p := range c.Prescriptions {
		names = append(names, p.Drug)
	}
	return names
}
