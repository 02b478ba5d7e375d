// Package validation checks user input reaching the interactions API.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/giygas/interactions-api/interfaces"
)

const (
	MaxDrugNameLength   = 100
	MaxQueryLength      = 50
	MaxIdentifierLength = 64
	MaxQueryWords       = 6
)

// Pre-compiled regex patterns, compiled once at package initialization
var (
	// Drug names and queries: letters (any script, accented included), digits and safe punctuation
	inputRegex = regexp.MustCompile(`^[\p{L}\p{N}\s\-\.\+'/,()%]+$`)

	// Session UUIDs, patient IDs and role names
	identifierRegex = regexp.MustCompile(`^[A-Za-z0-9_\-\p{L}]+$`)

	// Markup patterns are rejected everywhere, including notes
	markupPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "onblur=", "onchange=", "onsubmit=",
		"eval(", "expression(", "@import", "binding(", "behavior(",
	}

	// Injection patterns are rejected in names and queries only
	injectionPatterns = []string{
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"update set", "--", "/*", "*/", "xp_", "exec(", "execute(",
		// Command injection patterns
		"; ", "| ", "& ", "`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
		// LDAP injection patterns
		"*)(", "*|(", "*)%",
		// NoSQL injection patterns
		"{$ne:", "{$gt:", "{$where:", "{$or:", "{$regex:", "{$expr:",
	}
)

// Compile-time check to ensure InputValidatorImpl implements InputValidator
var _ interfaces.InputValidator = (*InputValidatorImpl)(nil)

// InputValidatorImpl implements the interfaces.InputValidator interface
type InputValidatorImpl struct{}

// NewInputValidator creates a new input validator
func NewInputValidator() interfaces.InputValidator {
	return &InputValidatorImpl{}
}

// ValidateDrugName validates a drug name sent for a prescription
func (v *InputValidatorImpl) ValidateDrugName(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("drug name cannot be empty")
	}

	if utf8.RuneCountInString(input) > MaxDrugNameLength {
		return fmt.Errorf("drug name too long: maximum %d characters", MaxDrugNameLength)
	}

	return v.checkSafeText(input)
}

// ValidateQuery validates a search query. An empty query is valid and lists everything.
func (v *InputValidatorImpl) ValidateQuery(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}

	if utf8.RuneCountInString(input) > MaxQueryLength {
		return fmt.Errorf("input too long: maximum %d characters", MaxQueryLength)
	}

	// Word count validation to prevent DoS attacks with many short words
	if len(strings.Fields(input)) > MaxQueryWords {
		return fmt.Errorf("search query too complex: maximum %d words allowed", MaxQueryWords)
	}

	return v.checkSafeText(input)
}

// ValidateIdentifier validates session, patient and role identifiers
func (v *InputValidatorImpl) ValidateIdentifier(input string) error {
	if input == "" {
		return fmt.Errorf("identifier cannot be empty")
	}

	if len(input) > MaxIdentifierLength {
		return fmt.Errorf("identifier too long: maximum %d characters", MaxIdentifierLength)
	}

	if !identifierRegex.MatchString(input) {
		return fmt.Errorf("identifier contains invalid characters. Only letters, numbers, hyphens and underscores are allowed")
	}

	return nil
}

// ValidateFreeText validates clinician notes and symptom lists. Punctuation is
// allowed but markup and control characters are not.
func (v *InputValidatorImpl) ValidateFreeText(input string, maxLength int) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("text cannot be empty")
	}

	if utf8.RuneCountInString(input) > maxLength {
		return fmt.Errorf("text too long: maximum %d characters", maxLength)
	}

	if !utf8.ValidString(input) {
		return fmt.Errorf("text is not valid UTF-8")
	}

	for _, r := range input {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return fmt.Errorf("text contains control characters")
		}
	}

	if containsAny(strings.ToLower(input), markupPatterns) {
		return fmt.Errorf("text contains potentially dangerous content")
	}

	return nil
}

func (v *InputValidatorImpl) checkSafeText(input string) error {
	lowerInput := strings.ToLower(input)
	if containsAny(lowerInput, markupPatterns) || containsAny(lowerInput, injectionPatterns) {
		return fmt.Errorf("input contains potentially dangerous content")
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces and common punctuation are allowed")
	}

	if hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

func containsAny(s string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(s, pattern) {
			return true
		}
	}
	return false
}

// hasExcessiveRepetition checks for the same character repeated more than 10 times consecutively
func hasExcessiveRepetition(input string) bool {
	var last rune
	run := 0
	for _, r := range input {
		if r == last {
			run++
			if run > 10 {
				return true
			}
			continue
		}
		last = r
		run = 1
	}
	return false
}
