package schema

// Issue is a single validation finding with an optional 1-based line number.
// Line 0 means the finding has no meaningful position (e.g. empty input).
type Issue struct {
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// Verdict is the outcome of running the syntax validator over diagram code.
// Valid is true iff Errors is empty; warnings never affect validity.
type Verdict struct {
	Valid    bool        `json:"valid"`
	Kind     DiagramKind `json:"kind"`
	Errors   []Issue     `json:"errors,omitempty"`
	Warnings []Issue     `json:"warnings,omitempty"`
}

// AddError appends an error finding. Line may be 0 for positionless findings.
func (v *Verdict) AddError(line int, message string) {
	v.Errors = append(v.Errors, Issue{Message: message, Line: line})
	v.Valid = false
}

// AddWarning appends a warning finding.
func (v *Verdict) AddWarning(line int, message string) {
	v.Warnings = append(v.Warnings, Issue{Message: message, Line: line})
}

// Finalize recomputes Valid from the error list. Call after all checks ran.
func (v *Verdict) Finalize() {
	v.Valid = len(v.Errors) == 0
}
