// ABOUTME: Shared result annotations used by every calculator
// ABOUTME: Severity-tagged warnings surfaced alongside computed results

package models

// Severity levels for calculation warnings
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Warning flags an out-of-normal-range condition without halting computation
type Warning struct {
	Severity string `json:"severity"` // "info", "warning", "critical"
	Message  string `json:"message"`
}

// HasCritical reports whether any warning is critical
func HasCritical(warnings []Warning) bool {
	for _, w := range warnings {
		if w.Severity == SeverityCritical {
			return true
		}
	}
	return false
}
