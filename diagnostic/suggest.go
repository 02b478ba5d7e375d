// Package diagnostic maps free-text symptoms to a short list of candidate
// diagnoses from a fixed reference table. It is a lookup aid, not a model.
package diagnostic

import (
	"errors"
	"strings"

	"github.com/giygas/interactions-api/catalog/textnorm"
)

// ErrNoSymptoms is returned when the input holds no usable symptom
var ErrNoSymptoms = errors.New("no symptoms provided")

// Likelihood labels derived from the probability
const (
	LikelihoodHigh     = "High"
	LikelihoodModerate = "Moderate"
	LikelihoodLow      = "Low"
)

// Diagnosis is one candidate with its estimated probability (0-100)
type Diagnosis struct {
	Name        string   `json:"name"`
	Probability int      `json:"probability"`
	Likelihood  string   `json:"likelihood"`
	Exams       []string `json:"exams"`
}

// Suggestion is the answer for a symptom list
type Suggestion struct {
	Symptoms    []string    `json:"symptoms"`
	Matched     bool        `json:"matched"`
	Diagnostics []Diagnosis `json:"diagnostics"`
}

type entry struct {
	symptoms    []string
	diagnostics []Diagnosis
}

var table = []entry{
	{
		symptoms: []string{"Fièvre", "Toux", "Fatigue"},
		diagnostics: []Diagnosis{
			{Name: "Grippe saisonnière", Probability: 85, Exams: []string{"Test rapide grippe", "NFS"}},
			{Name: "Pneumonie", Probability: 35, Exams: []string{"Radiographie thoracique", "CRP"}},
			{Name: "COVID-19", Probability: 40, Exams: []string{"Test PCR COVID-19"}},
		},
	},
	{
		symptoms: []string{"Douleur thoracique", "Dyspnée", "Palpitations"},
		diagnostics: []Diagnosis{
			{Name: "Infarctus du myocarde", Probability: 60, Exams: []string{"ECG", "Troponines", "Échocardiographie"}},
			{Name: "Embolie pulmonaire", Probability: 45, Exams: []string{"D-dimères", "Angioscanner pulmonaire"}},
			{Name: "Péricardite", Probability: 25, Exams: []string{"ECG", "Échocardiographie"}},
		},
	},
}

var fallback = []Diagnosis{
	{Name: "Syndrome viral", Probability: 65, Exams: []string{"NFS", "CRP"}},
	{Name: "Affection bénigne", Probability: 45, Exams: []string{"Examen clinique approfondi"}},
	{Name: "Consultation spécialisée recommandée", Probability: 30, Exams: []string{"Selon orientation"}},
}

// ParseSymptoms splits a comma-separated list, lowercasing and trimming each
// entry and dropping empty ones
func ParseSymptoms(input string) []string {
	var symptoms []string
	for _, part := range strings.Split(input, ",") {
		if s := strings.ToLower(strings.TrimSpace(part)); s != "" {
			symptoms = append(symptoms, s)
		}
	}
	return symptoms
}

// Suggest returns the diagnostics of the first table entry sharing a symptom
// with the input (substring match either way, ignoring accents), or the
// generic fallback list when nothing matches.
func Suggest(input string) (Suggestion, error) {
	symptoms := ParseSymptoms(input)
	if len(symptoms) == 0 {
		return Suggestion{}, ErrNoSymptoms
	}

	for _, e := range table {
		if matchesAny(e.symptoms, symptoms) {
			return Suggestion{Symptoms: symptoms, Matched: true, Diagnostics: label(e.diagnostics)}, nil
		}
	}

	return Suggestion{Symptoms: symptoms, Diagnostics: label(fallback)}, nil
}

// Likelihood labels a probability: High from 70, Moderate from 50
func Likelihood(probability int) string {
	switch {
	case probability >= 70:
		return LikelihoodHigh
	case probability >= 50:
		return LikelihoodModerate
	default:
		return LikelihoodLow
	}
}

func matchesAny(reference, input []string) bool {
	for _, ref := range reference {
		for _, in := range input {
			if textnorm.Contains(ref, in) || textnorm.Contains(in, ref) {
				return true
			}
		}
	}
	return false
}

func label(diagnostics []Diagnosis) []Diagnosis {
	out := make([]Diagnosis, len(diagnostics))
	for i, d := range diagnostics {
		d.Likelihood = Likelihood(d.Probability)
		d.Exams = append([]string{}, d.Exams...)
		out[i] = d
	}
	return out
}
