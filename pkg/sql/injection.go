package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult describes a field label that tripped the SQL
// injection detector.
type InjectionCheckResult struct {
	Fingerprint string // libinjection fingerprint of the detected pattern
	Label       string // the label that was checked
}

// CheckLabelForInjection runs libinjection's SQLi detector over a
// user-authored field label before it becomes a column identifier.
// Identifiers are always quote-escaped when embedded in DDL, so this is a
// second line of defense: labels that look like injection payloads are
// rejected outright at publish time instead of being stored as column
// names.
//
// Returns nil when the label is clean.
func CheckLabelForInjection(label string) *InjectionCheckResult {
	isSQLi, fingerprint := libinjection.IsSQLi(label)
	if !isSQLi {
		return nil
	}
	return &InjectionCheckResult{
		Fingerprint: string(fingerprint),
		Label:       label,
	}
}

// CheckFieldLabels vets every label and returns one result per label that
// failed. An empty slice means all labels are clean.
func CheckFieldLabels(labels []string) []*InjectionCheckResult {
	var results []*InjectionCheckResult
	for _, label := range labels {
		if result := CheckLabelForInjection(label); result != nil {
			results = append(results, result)
		}
	}
	return results
}
