package domain

// EvaluationRecord is the aggregated result of evaluating one unit
// across the character panel. It is built incrementally as character
// tasks settle and emitted only once every character (and the summary
// step, when configured) has resolved to success or permanent failure.
type EvaluationRecord struct {
	// SubjectID identifies the evaluated unit.
	SubjectID string `json:"subject_id"`

	// Context is the feature context the prompts were rendered from.
	Context map[string]string `json:"site_metadata"`

	// Assessments maps character name to produced text. Characters that
	// failed permanently hold an error placeholder instead of discarding
	// the unit.
	Assessments map[string]string `json:"characters"`

	// Summary is the synthesized narrator text, empty when no summary
	// character is configured.
	Summary string `json:"summary"`
}

// FailureEntry records one permanently failed evaluation task.
type FailureEntry struct {
	// SubjectID identifies the unit the task belonged to.
	SubjectID string `json:"subject_id"`

	// Character is the character name, or "summary" for the synthesis
	// step, or empty when the unit itself could not be constructed.
	Character string `json:"character,omitempty"`

	// Reason is the final error description after retries were exhausted.
	Reason string `json:"reason"`
}

// FailureLedger is the append-only sequence of permanently failed
// tasks. Entries exist only for fully exhausted failures; nothing is
// pre-allocated. Appends happen from a single collector goroutine, so
// the ledger needs no locking and is safe to truncate at the last
// fully written entry on cancellation.
type FailureLedger struct {
	entries []FailureEntry
}

// Append adds an entry to the ledger.
func (l *FailureLedger) Append(entry FailureEntry) {
	l.entries = append(l.entries, entry)
}

// Entries returns the recorded failures in append order.
func (l *FailureLedger) Entries() []FailureEntry { return l.entries }

// Len returns the number of recorded failures.
func (l *FailureLedger) Len() int { return len(l.entries) }
