package resume

import "fmt"

// TooManyMutationsError is returned when a mutation list exceeds the
// configured cap.
type TooManyMutationsError struct {
	Count int
	Max   int
}

func (e *TooManyMutationsError) Error() string {
	return fmt.Sprintf("resume mutation produced %d changes - at most %d allowed", e.Count, e.Max)
}

// NoTemplatesFoundError is returned when a resume directory yields no
// eligible base templates.
type NoTemplatesFoundError struct {
	Dir string
}

func (e *NoTemplatesFoundError) Error() string {
	return fmt.Sprintf("no master_*.tex templates found in %s", e.Dir)
}

// CompilationError represents a LaTeX compilation failure.
type CompilationError struct {
	Message   string
	LogOutput string
	Cause     error
}

func (e *CompilationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("LaTeX compilation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("LaTeX compilation error: %s", e.Message)
}

func (e *CompilationError) Unwrap() error {
	return e.Cause
}
