package twincat

import "fmt"

// StructuralError reports a TcPOU container that cannot be processed at all.
// No chunks are produced for the input.
type StructuralError struct {
	Msg string
	Err error
}

func (e *StructuralError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *StructuralError) Unwrap() error { return e.Err }

func structural(format string, args ...any) error {
	return &StructuralError{Msg: fmt.Sprintf(format, args...)}
}
