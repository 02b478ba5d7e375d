package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/giygas/interactions-api/logging"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	logging.InitLogger("")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
		absent   []string
	}{
		{
			name:     "critical pair",
			args:     []string{"check", "--drug", "Warfarine", "--drug", "Aspirine"},
			contains: []string{"Critical", "Warfarine + Aspirine", "1 finding(s): 1 critical"},
		},
		{
			name:     "no interaction",
			args:     []string{"check", "-d", "Aspirine", "-d", "Ibuprofène"},
			contains: []string{"No interaction or allergy conflict found."},
		},
		{
			name:     "patient allergy",
			args:     []string{"check", "-d", "Aspirine", "--patient", "1"},
			contains: []string{"allergy", "Patient allergic to Aspirine"},
		},
		{
			name:     "ad hoc allergy",
			args:     []string{"check", "-d", "Amoxicilline", "--allergy", "Amoxicilline"},
			contains: []string{"Patient allergic to Amoxicilline"},
		},
		{
			name:     "repeated drug flags",
			args:     []string{"check", "-d", "Warfarine", "-d", "Aspirine", "-d", " Aspirine", "--allergy", "Aspirine"},
			contains: []string{"2 finding(s): 2 critical"},
		},
		{
			name:     "min severity",
			args:     []string{"check", "-d", "Lisinopril", "-d", "Ibuprofène", "-d", "Warfarine", "-d", "Fluoxétine", "--min-severity", "High"},
			contains: []string{"No interaction or allergy conflict found."},
			absent:   []string{"Moderate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runRoot(t, tt.args...)
			if err != nil {
				t.Fatalf("Command failed: %v\n%s", err, out)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("Expected output to contain %q, got:\n%s", want, out)
				}
			}
			for _, unwanted := range tt.absent {
				if strings.Contains(out, unwanted) {
					t.Errorf("Expected output not to contain %q, got:\n%s", unwanted, out)
				}
			}
		})
	}
}

func TestCheckCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing drug flag", []string{"check"}},
		{"unknown patient", []string{"check", "-d", "Aspirine", "--patient", "99"}},
		{"bad severity", []string{"check", "-d", "Aspirine", "--min-severity", "extreme"}},
		{"missing catalog file", []string{"check", "-d", "Aspirine", "--catalog", "/nonexistent/catalog.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runRoot(t, tt.args...); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestCheckCommandWithCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `drugs:
  - name: Alpha
    activeIngredient: alphamine
    category: Test
  - name: Beta
    activeIngredient: betamine
    category: Test
rules:
  - id: t-1
    drugA: Alpha
    drugB: Beta
    severity: Élevée
    description: Alpha and Beta do not mix
    recommendation: Pick one
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write catalog: %v", err)
	}

	out, err := runRoot(t, "check", "-d", "Beta", "-d", "Alpha", "--catalog", path)
	if err != nil {
		t.Fatalf("Command failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "High") || !strings.Contains(out, "Alpha and Beta do not mix") {
		t.Errorf("Expected the file rule in output, got:\n%s", out)
	}
}

func TestDrugsCommand(t *testing.T) {
	out, err := runRoot(t, "drugs", "warf")
	if err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	if !strings.Contains(out, "Warfarine") || strings.Contains(out, "Aspirine") {
		t.Errorf("Unexpected search output:\n%s", out)
	}

	out, err = runRoot(t, "drugs", "--category", "Psychiatrie")
	if err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	for _, want := range []string{"Fluoxétine", "Lithium"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %s in category listing, got:\n%s", want, out)
		}
	}

	if _, err := runRoot(t, "drugs", "a", "b"); err == nil {
		t.Error("Expected an error for two positional arguments")
	}
}
