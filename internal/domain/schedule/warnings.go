package schedule

import "fmt"

// WarningCode identifies the class of a composition warning.
type WarningCode string

const (
	// WarnNormalization - a raw record could not be classified or had an
	// invalid period range and was dropped from the output.
	WarnNormalization WarningCode = "normalization"

	// WarnUnresolvedLink - a cancel/makeup's linked regular id does not
	// resolve to any regular occurrence in the supplied set, or the
	// heuristic fallback matched more than one candidate.
	WarnUnresolvedLink WarningCode = "unresolved_link"

	// WarnConflict - two non-suppressed occurrences overlap in time on the
	// same date.
	WarnConflict WarningCode = "conflict"
)

// Warning is a non-fatal composition diagnostic. No warning ever removes
// data beyond what its documentation states; the engine always returns a
// best-effort composed list alongside the warnings. Warnings are meant for
// administrative surfaces, never for end users.
type Warning struct {
	Code WarningCode `json:"code"`

	// RecordID is the id of the record the warning is about.
	RecordID string `json:"record_id"`

	// OtherID is the second party for pairwise warnings (the other side of
	// a conflict, the dangling link target).
	OtherID string `json:"other_id,omitempty"`

	// Reason is a short human-readable explanation.
	Reason string `json:"reason"`
}

// Error-style rendering for logs. Warning intentionally does not implement
// the error interface: warnings are data, not failures.
func (w Warning) String() string {
	if w.OtherID != "" {
		return fmt.Sprintf("%s: %s (record %s, other %s)", w.Code, w.Reason, w.RecordID, w.OtherID)
	}
	return fmt.Sprintf("%s: %s (record %s)", w.Code, w.Reason, w.RecordID)
}

func normalizationWarning(recordID, reason string) Warning {
	return Warning{Code: WarnNormalization, RecordID: recordID, Reason: reason}
}

func unresolvedLinkWarning(recordID, linkID, reason string) Warning {
	return Warning{Code: WarnUnresolvedLink, RecordID: recordID, OtherID: linkID, Reason: reason}
}

func conflictWarning(aID, bID string) Warning {
	return Warning{Code: WarnConflict, RecordID: aID, OtherID: bID, Reason: "overlapping periods on the same date"}
}
