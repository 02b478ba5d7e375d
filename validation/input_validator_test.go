package validation

import (
	"strings"
	"testing"
)

func TestNewInputValidator(t *testing.T) {
	validator := NewInputValidator()

	if validator == nil {
		t.Fatal("NewInputValidator returned nil")
	}

	if _, ok := validator.(*InputValidatorImpl); !ok {
		t.Error("NewInputValidator should return *InputValidatorImpl")
	}
}

func TestValidateDrugName(t *testing.T) {
	validator := NewInputValidator()

	testCases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Warfarine", false},
		{"accented", "Paracétamol", false},
		{"uppercase accent", "Éthambutol", false},
		{"with dosage", "Metformine 850mg", false},
		{"combination", "Amoxicilline/Acide clavulanique", false},
		{"percent", "Lidocaïne 2%", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("ab", 51), true},
		{"script tag", "<script>alert(1)</script>", true},
		{"sql injection", "x' or 1=1", true},
		{"comment", "Aspirine--", true},
		{"command injection", "Aspirine; rm", true},
		{"invalid characters", "Aspirine#1", true},
		{"repetition", "Aaaaaaaaaaaaaaaaa", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.ValidateDrugName(tc.input)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateDrugName(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
		})
	}
}

func TestValidateQuery(t *testing.T) {
	validator := NewInputValidator()

	testCases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty is allowed", "", false},
		{"short", "as", false},
		{"ingredient", "acide acétylsalicylique", false},
		{"too many words", "a b c d e f g", true},
		{"too long", strings.Repeat("x", 51), true},
		{"path traversal", "../etc", true},
		{"nosql", "{$ne:1}", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.ValidateQuery(tc.input)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateQuery(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
		})
	}
}

func TestValidateIdentifier(t *testing.T) {
	validator := NewInputValidator()

	testCases := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"uuid", "3f1c2b9e-7d4a-4f7e-9a51-2c8b6e0d1f3a", false},
		{"numeric", "1", false},
		{"role alias", "médecin", false},
		{"empty", "", true},
		{"space", "a b", true},
		{"slash", "a/b", true},
		{"too long", strings.Repeat("a", 65), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.ValidateIdentifier(tc.input)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
		})
	}
}

func TestValidateFreeText(t *testing.T) {
	validator := NewInputValidator()

	testCases := []struct {
		name    string
		input   string
		max     int
		wantErr bool
	}{
		{"note with punctuation", "INR à contrôler; revoir J+2 (préférer paracétamol).", 500, false},
		{"symptoms", "fièvre, toux, fatigue", 500, false},
		{"multiline", "ligne 1\nligne 2", 500, false},
		{"empty", "", 500, true},
		{"too long", strings.Repeat("a", 11), 10, true},
		{"markup", "<script>x</script>", 500, true},
		{"event handler", "<img onerror=x>", 500, true},
		{"control character", "note\x00", 500, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.ValidateFreeText(tc.input, tc.max)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateFreeText(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
		})
	}
}

func TestHasExcessiveRepetition(t *testing.T) {
	testCases := []struct {
		input    string
		expected bool
	}{
		{"", false},
		{"aaaaaaaaaa", false},
		{"aaaaaaaaaaa", true},
		{"ééééééééééé", true},
		{"abababababababab", false},
	}

	for _, tc := range testCases {
		if got := hasExcessiveRepetition(tc.input); got != tc.expected {
			t.Errorf("hasExcessiveRepetition(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}
