package bench

import (
	"errors"
	"fmt"
)

// ErrInvalidCase is returned by Suite.Add for an empty name or a nil operation.
var ErrInvalidCase = errors.New("invalid case")

// Operation is the unit of work measured by a Case. The returned value is
// discarded; it only exists so the work cannot be optimised away.
type Operation func() (any, error)

// Case is a named operation belonging to exactly one Suite.
type Case struct {
	Name string
	Op   Operation
}

// DuplicateNameError reports a second registration of the same case name.
type DuplicateNameError struct {
	Suite string
	Name  string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("suite %q: duplicate case name %q", e.Suite, e.Name)
}

// Suite is an ordered collection of Cases compared against one another.
type Suite struct {
	Label string

	cases []Case
	names map[string]struct{}
}

// NewSuite returns an empty suite.
func NewSuite(label string) *Suite {
	return &Suite{
		Label: label,
		names: make(map[string]struct{}),
	}
}

// Add registers op under name. Registration order is kept for display and
// for breaking ties in the report.
func (s *Suite) Add(name string, op Operation) error {
	if name == "" {
		return fmt.Errorf("suite %q: empty case name: %w", s.Label, ErrInvalidCase)
	}
	if op == nil {
		return fmt.Errorf("suite %q: case %q has no operation: %w", s.Label, name, ErrInvalidCase)
	}
	if s.names == nil {
		s.names = make(map[string]struct{})
	}
	if _, ok := s.names[name]; ok {
		return &DuplicateNameError{Suite: s.Label, Name: name}
	}
	s.names[name] = struct{}{}
	s.cases = append(s.cases, Case{Name: name, Op: op})
	return nil
}

// MustAdd is like Add but panics on error.
func (s *Suite) MustAdd(name string, op Operation) *Suite {
	if err := s.Add(name, op); err != nil {
		panic(err)
	}
	return s
}

// Cases returns a copy of the registered cases in registration order.
func (s *Suite) Cases() []Case {
	out := make([]Case, len(s.cases))
	copy(out, s.cases)
	return out
}

// Len returns the number of registered cases.
func (s *Suite) Len() int { return len(s.cases) }
