package calypso

import (
	"fmt"

	"github.com/gregLibert/calypso-sv/pkg/iso7816"
)

// Category is the meaning a command gives to a status word.
type Category int

const (
	Success Category = iota
	IllegalParameter
	AccessForbidden
	IncorrectInputData
	DataAccessError
	SecurityDataError
	SecurityContextError
	CounterOverflow
	SessionBufferOverflow
	Terminated
	UnknownFailure
)

var categoryNames = [...]string{
	Success:               "Success",
	IllegalParameter:      "IllegalParameter",
	AccessForbidden:       "AccessForbidden",
	IncorrectInputData:    "IncorrectInputData",
	DataAccessError:       "DataAccessError",
	SecurityDataError:     "SecurityDataError",
	SecurityContextError:  "SecurityContextError",
	CounterOverflow:       "CounterOverflow",
	SessionBufferOverflow: "SessionBufferOverflow",
	Terminated:            "Terminated",
	UnknownFailure:        "UnknownFailure",
}

func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Err returns the sentinel error of the category, nil for Success.
func (c Category) Err() error {
	switch c {
	case Success:
		return nil
	case IllegalParameter:
		return ErrIllegalParameter
	case AccessForbidden:
		return ErrAccessForbidden
	case IncorrectInputData:
		return ErrIncorrectInputData
	case DataAccessError:
		return ErrDataAccess
	case SecurityDataError:
		return ErrSecurityData
	case SecurityContextError:
		return ErrSecurityContext
	case CounterOverflow:
		return ErrCounterOverflow
	case SessionBufferOverflow:
		return ErrSessionBufferOverflow
	case Terminated:
		return ErrTerminated
	default:
		return ErrUnknownStatus
	}
}

// StatusProperties is one entry of a StatusTable.
type StatusProperties struct {
	Description string
	Category    Category
}

// defaultStatus is merged into every table.
var defaultStatus = map[iso7816.StatusWord]StatusProperties{
	iso7816.SW_NO_ERROR: {"Success", Success},
}

// StatusTable maps the status words documented for a command to their
// meaning. It has no mutating method; tables are built once at package
// initialisation and shared by every command instance.
type StatusTable struct {
	entries map[iso7816.StatusWord]StatusProperties
}

// NewStatusTable returns a table holding the default entries overridden by
// entries. The argument is copied.
func NewStatusTable(entries map[iso7816.StatusWord]StatusProperties) StatusTable {
	m := make(map[iso7816.StatusWord]StatusProperties, len(defaultStatus)+len(entries))
	for sw, p := range defaultStatus {
		m[sw] = p
	}
	for sw, p := range entries {
		m[sw] = p
	}
	return StatusTable{entries: m}
}

// Lookup returns the documented meaning of sw.
func (t StatusTable) Lookup(sw iso7816.StatusWord) (StatusProperties, bool) {
	p, ok := t.entries[sw]
	return p, ok
}

// Len returns the number of documented status words.
func (t StatusTable) Len() int {
	return len(t.entries)
}

// Interpret resolves sw. Undocumented words are a success only for 9000;
// any other is an UnknownFailure described from its SW1.
func (t StatusTable) Interpret(sw iso7816.StatusWord) Outcome {
	if p, ok := t.entries[sw]; ok {
		return Outcome{Status: sw, Category: p.Category, Description: p.Description}
	}
	if sw == iso7816.SW_NO_ERROR {
		return Outcome{Status: sw, Category: Success, Description: "Success"}
	}
	return Outcome{Status: sw, Category: UnknownFailure, Description: "Unknown status " + sw.Verbose()}
}

// Outcome is the interpreted result of one command.
type Outcome struct {
	Status      iso7816.StatusWord
	Category    Category
	Description string
}

// IsSuccess reports whether the command succeeded.
func (o Outcome) IsSuccess() bool {
	return o.Category == Success
}

func (o Outcome) String() string {
	return fmt.Sprintf("[%04X] %s: %s", uint16(o.Status), o.Category, o.Description)
}

// Err returns nil for a success, otherwise a *StatusError for command.
func (o Outcome) Err(command string) error {
	if o.IsSuccess() {
		return nil
	}
	return &StatusError{Command: command, Outcome: o}
}

// StatusError reports a command that completed with a failure status word.
type StatusError struct {
	Command string
	Outcome Outcome
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s (SW %04X)", e.Command, e.Outcome.Description, uint16(e.Outcome.Status))
}

// Unwrap exposes the category sentinel.
func (e *StatusError) Unwrap() error {
	return e.Outcome.Category.Err()
}
