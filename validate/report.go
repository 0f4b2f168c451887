package validate

import (
	"fmt"
	"strings"

	"github.com/soheilade/atomic-server/atomic"
	"github.com/soheilade/atomic-server/internal/util"
)

// ValidMessage is the rendering of a report without defects.
const ValidMessage = "Valid!"

// SubjectError pairs a subject (or property URL) with the error it produced.
type SubjectError struct {
	Subject string
	Err     error
}

// Message returns the error text on a single line.
func (e SubjectError) Message() string {
	return errorLine(e.Err)
}

// InvalidValue is an atom whose raw value did not parse under its property's datatype.
type InvalidValue struct {
	Atom atomic.Atom
	Err  error
}

// Message returns the error text on a single line.
func (v InvalidValue) Message() string {
	return errorLine(v.Err)
}

// MissingProp records a property required by Class that Subject does not carry.
type MissingProp struct {
	Subject  string
	Property string
	Class    string
}

func (m MissingProp) String() string {
	return fmt.Sprintf("Missing property %s required by %s on %s", m.Property, m.Class, m.Subject)
}

// Report is the outcome of one validation run. It is fully populated before
// Validate returns and must be treated as read-only afterwards.
type Report struct {
	ResourceCount uint64
	AtomCount     uint64

	Unfetchable        []SubjectError
	UnfetchableClasses []SubjectError
	// UnfetchableProps is keyed by property URL, not by resource subject.
	UnfetchableProps []SubjectError
	InvalidValues    []InvalidValue

	// MissingProps lists class requirements that were not met. They do not
	// affect IsValid; use IsComplete for the strict check.
	MissingProps []MissingProp
}

// IsValid reports whether no resource, class or property lookup failed and
// every value parsed under its datatype.
func (r *Report) IsValid() bool {
	return len(r.Unfetchable) == 0 &&
		len(r.UnfetchableClasses) == 0 &&
		len(r.UnfetchableProps) == 0 &&
		len(r.InvalidValues) == 0
}

// IsComplete is IsValid plus every required class property being present.
func (r *Report) IsComplete() bool {
	return r.IsValid() && len(r.MissingProps) == 0
}

// Defects returns the number of lines String renders for an invalid report,
// and 0 for a valid one.
func (r *Report) Defects() int {
	return len(r.Unfetchable) + len(r.UnfetchableClasses) + len(r.UnfetchableProps) + len(r.InvalidValues)
}

// String renders one line per defect, in the order unfetchable resources,
// classes, properties, invalid values. A valid report renders as ValidMessage.
func (r *Report) String() string {
	if r.IsValid() {
		return ValidMessage
	}

	lines := make([]string, 0, r.Defects())
	for _, e := range r.Unfetchable {
		lines = append(lines, fmt.Sprintf("Cannot fetch Resource %s: %s", util.SingleLine(e.Subject), e.Message()))
	}
	for _, e := range r.UnfetchableClasses {
		lines = append(lines, fmt.Sprintf("Cannot fetch Class %s: %s", util.SingleLine(e.Subject), e.Message()))
	}
	for _, e := range r.UnfetchableProps {
		lines = append(lines, fmt.Sprintf("Cannot fetch Property %s: %s", util.SingleLine(e.Subject), e.Message()))
	}
	for _, v := range r.InvalidValues {
		lines = append(lines, fmt.Sprintf("Invalid value %s: %s", util.SingleLine(v.Atom.String()), v.Message()))
	}
	return strings.Join(lines, "\n")
}

// MissingString renders one line per missing required property, or "" when
// there are none.
func (r *Report) MissingString() string {
	lines := make([]string, 0, len(r.MissingProps))
	for _, m := range r.MissingProps {
		lines = append(lines, m.String())
	}
	return strings.Join(lines, "\n")
}

// Summary is a one-line overview suitable for logs and CLI footers.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d resources, %d atoms, %d defects, %d missing properties",
		r.ResourceCount, r.AtomCount, r.Defects(), len(r.MissingProps))
}

func errorLine(err error) string {
	if err == nil {
		return ""
	}
	return util.SingleLine(err.Error())
}
