// Package validation implements the three-stage screening applied to
// every provider response before it may be persisted or shown to a
// coach: PII leak detection, JSON parse + schema validation, and
// domain rule checks. It also re-validates coach-approved drafts.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	// Matches North American formats such as 555-123-4567,
	// (555) 123-4567, +1 555 123 4567, and bare 5551234567. The word
	// boundaries keep it from firing inside longer digit runs.
	phonePattern = regexp.MustCompile(`(\+?1[\s.-]?)?(\(\d{3}\)[\s.-]?|\b\d{3}[\s.-]?)\d{3}[\s.-]?\d{4}\b`)

	wordPattern = regexp.MustCompile(`[\p{L}\p{N}'-]+`)

	foldCaser = cases.Fold()
)

// DetectPII scans provider output for personally identifying content.
// The scan runs on raw text before any JSON parsing so leaks are
// caught even in malformed responses. Each finding is a short reason
// string; an empty result means the text is clean.
//
// displayName is the client's real name. Matching folds case per
// Unicode rules and tolerates a single-character typo so "Jon" still
// flags when the client is "John".
func DetectPII(text, displayName string) []string {
	var reasons []string

	if emailPattern.MatchString(text) {
		reasons = append(reasons, "email address detected in provider output")
	}
	if phonePattern.MatchString(text) {
		reasons = append(reasons, "phone number detected in provider output")
	}
	if part := matchDisplayName(text, displayName); part != "" {
		reasons = append(reasons, fmt.Sprintf("client display name (%q) detected in provider output", part))
	}
	return reasons
}

// matchDisplayName reports the first name part found in text as a
// whole word, or "" when none match. Name parts shorter than three
// characters are skipped; they produce too many false positives
// against exercise vocabulary.
func matchDisplayName(text, displayName string) string {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return ""
	}

	var parts []string
	for _, p := range strings.Fields(displayName) {
		if len([]rune(p)) >= 3 {
			parts = append(parts, foldCaser.String(p))
		}
	}
	if len(parts) == 0 {
		return ""
	}

	for _, word := range wordPattern.FindAllString(text, -1) {
		folded := foldCaser.String(word)
		for i, part := range parts {
			if folded == part || nearMiss(folded, part) {
				return strings.Fields(displayName)[nameIndex(displayName, i)]
			}
		}
	}
	return ""
}

// nearMiss reports whether two folded words are within edit distance
// one, catching simple misspellings of the client's name.
func nearMiss(a, b string) bool {
	if abs(len(a)-len(b)) > 1 {
		return false
	}
	return levenshtein.ComputeDistance(a, b) <= 1
}

// nameIndex maps an index into the filtered name-part slice back to
// the original Fields index.
func nameIndex(displayName string, filteredIdx int) int {
	seen := 0
	for i, p := range strings.Fields(displayName) {
		if len([]rune(p)) >= 3 {
			if seen == filteredIdx {
				return i
			}
			seen++
		}
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
