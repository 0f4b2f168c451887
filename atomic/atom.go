// Package atomic defines the Atomic Data model: atoms, resources, properties,
// classes and datatypes, plus typed value construction.
package atomic

import "fmt"

// Atom is a single (subject, property, value) triple. The value is kept in its
// raw serialized form; use NewValue to interpret it under a Datatype.
type Atom struct {
	Subject  string
	Property string
	Value    string
}

// NewAtom creates an atom from its three parts
func NewAtom(subject, property, value string) Atom {
	return Atom{Subject: subject, Property: property, Value: value}
}

// String renders the atom for diagnostics: subject property "value"
func (a Atom) String() string {
	return fmt.Sprintf("%s %s %q", a.Subject, a.Property, a.Value)
}

// PropVal is one (property, raw value) pair of a resource.
type PropVal struct {
	Property string
	Value    string
}

// Resource is a subject and all of its property-value pairs.
type Resource struct {
	Subject string
	Values  []PropVal
}

// Get returns the raw value for a property and whether it is present.
func (r Resource) Get(property string) (string, bool) {
	for _, pv := range r.Values {
		if pv.Property == property {
			return pv.Value, true
		}
	}
	return "", false
}

// Atoms expands the resource into its atoms, in value order.
func (r Resource) Atoms() []Atom {
	atoms := make([]Atom, 0, len(r.Values))
	for _, pv := range r.Values {
		atoms = append(atoms, NewAtom(r.Subject, pv.Property, pv.Value))
	}
	return atoms
}

// Property is a declared attribute with an associated datatype.
type Property struct {
	Subject     string
	Shortname   string
	Description string
	DataType    Datatype
	// ClassType is the class values of this property should be instances of,
	// empty when unconstrained.
	ClassType string
}

// Class is a named grouping declaring which properties its members must have.
type Class struct {
	Subject     string
	Shortname   string
	Description string
	Requires    []Property
	Recommends  []Property
}
