package pipeline

import (
	"fmt"
	"strings"
)

// UnknownDataSourceError reports a reference to a (data_source, data_entry)
// pair that was never registered.
type UnknownDataSourceError struct {
	Source string
	Entry  string
	Known  []string
}

func (e *UnknownDataSourceError) Error() string {
	return fmt.Sprintf("unknown data source %q entry %q (known: %s)",
		e.Source, e.Entry, strings.Join(e.Known, ", "))
}

// OutputMismatchError reports a step whose declared output field names do not
// match what the function actually produced.
type OutputMismatchError struct {
	Step     int // 1-based
	Function string
	Expected []string
	Produced []string
	Missing  []string
	Extra    []string
}

func (e *OutputMismatchError) Error() string {
	msg := fmt.Sprintf("transformation #%d (%s): declared output [%s] does not match produced output [%s]",
		e.Step, e.Function, strings.Join(e.Expected, ", "), strings.Join(e.Produced, ", "))
	if len(e.Missing) > 0 {
		msg += fmt.Sprintf("; missing: %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Extra) > 0 {
		msg += fmt.Sprintf("; unexpected: %s", strings.Join(e.Extra, ", "))
	}
	return msg
}

// StepError wraps any failure inside a transform step with the 1-based step
// index and function name, so every step-level error surfaces both to the
// operator. The wrapped error stays reachable through errors.Is/As.
type StepError struct {
	Step     int // 1-based
	Function string
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("transformation #%d (%s): %v", e.Step, e.Function, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
