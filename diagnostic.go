package framex

import "fmt"

// Severity indicates the severity of a diagnostic.
type Severity int

const (
	SeverityError   Severity = iota // an action's effect was discarded
	SeverityWarning                 // a referenced column/group was missing; action skipped
)

// Diagnostic is a non-fatal problem recorded during ingestion or an
// engine run. The run always continues and always yields a result table.
type Diagnostic struct {
	Severity Severity
	Source   string // action kind or "ingest"
	Message  string
}

// String formats the diagnostic as "[WARN] filter: message" or "[ERROR] ...".
func (d Diagnostic) String() string {
	sev := "ERROR"
	if d.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s", sev, d.Source, d.Message)
}

func warnf(source, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Source: source, Message: fmt.Sprintf(format, args...)}
}

func errorf(source, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityError, Source: source, Message: fmt.Sprintf(format, args...)}
}

// Warnings filters a diagnostic list down to warnings.
func Warnings(diags []Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Severity == SeverityWarning {
			out = append(out, d)
		}
	}
	return out
}

// Errors filters a diagnostic list down to errors.
func Errors(diags []Diagnostic) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}
