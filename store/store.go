// Package store holds Atomic Data resources and resolves the properties and
// classes they reference.
package store

import (
	_ "embed"
	"sort"
	"sync"

	"github.com/soheilade/atomic-server/atomic"
	"github.com/soheilade/atomic-server/errors"
	"github.com/soheilade/atomic-server/parse"
)

//go:embed default_store.ad3
var defaultStore string

// Storelike is the read-only view of a store that validation needs.
type Storelike interface {
	// AllResources enumerates every resource in a store-defined order.
	AllResources() []atomic.Resource
	// GetProperty resolves a property by its subject URL.
	GetProperty(url string) (*atomic.Property, error)
	// GetClassesForSubject resolves the classes a subject claims via isA.
	// A subject without isA has no classes.
	GetClassesForSubject(subject string) ([]atomic.Class, error)
}

// Store is an in-memory resource store, safe for concurrent use.
// Enumeration is deterministic: subjects ascend, and values ascend by property.
type Store struct {
	mu        sync.RWMutex
	resources map[string]map[string]string
}

var _ Storelike = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{resources: make(map[string]map[string]string)}
}

// Populate loads the core ontology: the base properties, classes and datatypes.
func (s *Store) Populate() error {
	atoms, err := parse.ParseAD3(defaultStore)
	if err != nil {
		return errors.Wrap(err, "parse default store")
	}
	return s.AddAtoms(atoms)
}

// AddAtom sets one value; an existing value for the same subject and property is replaced.
func (s *Store) AddAtom(atom atomic.Atom) error {
	return s.AddAtoms([]atomic.Atom{atom})
}

// AddAtoms sets every atom. Nothing is stored when any atom lacks a subject or property.
func (s *Store) AddAtoms(atoms []atomic.Atom) error {
	for i, a := range atoms {
		if a.Subject == "" || a.Property == "" {
			return errors.NewInvalidRequestError("atom %d: subject and property must not be empty", i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range atoms {
		r, ok := s.resources[a.Subject]
		if !ok {
			r = make(map[string]string)
			s.resources[a.Subject] = r
		}
		r[a.Property] = a.Value
	}
	return nil
}

// Len returns the number of resources.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.resources)
}

// GetResource returns one resource by subject.
func (s *Store) GetResource(subject string) (atomic.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values, ok := s.resources[subject]
	if !ok {
		return atomic.Resource{}, errors.NewNotFoundError("resource %s is not in the store", subject)
	}
	return toResource(subject, values), nil
}

// AllResources returns every resource, sorted by subject.
func (s *Store) AllResources() []atomic.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subjects := make([]string, 0, len(s.resources))
	for subject := range s.resources {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	resources := make([]atomic.Resource, 0, len(subjects))
	for _, subject := range subjects {
		resources = append(resources, toResource(subject, s.resources[subject]))
	}
	return resources
}

// Atoms returns every atom in enumeration order.
func (s *Store) Atoms() []atomic.Atom {
	var atoms []atomic.Atom
	for _, r := range s.AllResources() {
		atoms = append(atoms, r.Atoms()...)
	}
	return atoms
}

// GetProperty resolves a property. The resource must exist and declare a datatype.
func (s *Store) GetProperty(url string) (*atomic.Property, error) {
	r, err := s.GetResource(url)
	if err != nil {
		return nil, errors.NewNotFoundError("property %s is not in the store", url)
	}

	datatype, ok := r.Get(atomic.PropDatatype)
	if !ok {
		return nil, errors.NewNotFoundError("property %s has no datatype", url)
	}

	prop := &atomic.Property{
		Subject:  url,
		DataType: atomic.Datatype(datatype),
	}
	prop.Shortname, _ = r.Get(atomic.PropShortname)
	prop.Description, _ = r.Get(atomic.PropDescription)
	prop.ClassType, _ = r.Get(atomic.PropClassType)
	return prop, nil
}

// GetClass resolves a class with its required and recommended properties.
func (s *Store) GetClass(url string) (*atomic.Class, error) {
	r, err := s.GetResource(url)
	if err != nil {
		return nil, errors.NewNotFoundError("class %s is not in the store", url)
	}

	shortname, ok := r.Get(atomic.PropShortname)
	if !ok {
		return nil, errors.NewNotFoundError("class %s has no shortname", url)
	}

	class := &atomic.Class{
		Subject:   url,
		Shortname: shortname,
	}
	class.Description, _ = r.Get(atomic.PropDescription)

	if class.Requires, err = s.propertyList(r, atomic.PropRequires); err != nil {
		return nil, errors.Wrapf(err, "class %s requires", url)
	}
	if class.Recommends, err = s.propertyList(r, atomic.PropRecommends); err != nil {
		return nil, errors.Wrapf(err, "class %s recommends", url)
	}
	return class, nil
}

// GetClassesForSubject resolves each class listed in the subject's isA value.
func (s *Store) GetClassesForSubject(subject string) ([]atomic.Class, error) {
	r, err := s.GetResource(subject)
	if err != nil {
		return nil, err
	}

	raw, ok := r.Get(atomic.PropIsA)
	if !ok {
		return nil, nil
	}
	urls, err := atomic.ParseResourceArray(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "isA of %s", subject)
	}

	classes := make([]atomic.Class, 0, len(urls))
	for _, url := range urls {
		class, err := s.GetClass(url)
		if err != nil {
			return nil, err
		}
		classes = append(classes, *class)
	}
	return classes, nil
}

func (s *Store) propertyList(r atomic.Resource, property string) ([]atomic.Property, error) {
	raw, ok := r.Get(property)
	if !ok {
		return nil, nil
	}
	urls, err := atomic.ParseResourceArray(raw)
	if err != nil {
		return nil, err
	}

	props := make([]atomic.Property, 0, len(urls))
	for _, url := range urls {
		prop, err := s.GetProperty(url)
		if err != nil {
			return nil, err
		}
		props = append(props, *prop)
	}
	return props, nil
}

func toResource(subject string, values map[string]string) atomic.Resource {
	props := make([]string, 0, len(values))
	for prop := range values {
		props = append(props, prop)
	}
	sort.Strings(props)

	r := atomic.Resource{Subject: subject, Values: make([]atomic.PropVal, 0, len(props))}
	for _, prop := range props {
		r.Values = append(r.Values, atomic.PropVal{Property: prop, Value: values[prop]})
	}
	return r
}
