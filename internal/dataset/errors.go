package dataset

import "fmt"

// ParseError reports a malformed record line.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: malformed record %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports a missing, duplicated, or misplaced section marker.
type SchemaError struct {
	Line int
	Msg  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}
