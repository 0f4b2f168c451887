package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soheilade/atomic-server/atomic"
	"github.com/soheilade/atomic-server/errors"
)

const (
	personClass = "https://example.com/classes/Person"
	ageProp     = "https://example.com/properties/age"
	alice       = "https://example.com/people/alice"
)

func populated(t *testing.T) *Store {
	t.Helper()
	s := New()
	require.NoError(t, s.Populate())
	return s
}

func withPerson(t *testing.T) *Store {
	t.Helper()
	s := populated(t)
	require.NoError(t, s.AddAtoms([]atomic.Atom{
		atomic.NewAtom(ageProp, atomic.PropIsA, `["`+atomic.ClassProperty+`"]`),
		atomic.NewAtom(ageProp, atomic.PropShortname, "age"),
		atomic.NewAtom(ageProp, atomic.PropDatatype, string(atomic.DatatypeInteger)),
		atomic.NewAtom(ageProp, atomic.PropDescription, "Age in years"),
		atomic.NewAtom(personClass, atomic.PropIsA, `["`+atomic.ClassClass+`"]`),
		atomic.NewAtom(personClass, atomic.PropShortname, "person"),
		atomic.NewAtom(personClass, atomic.PropDescription, "A human"),
		atomic.NewAtom(personClass, atomic.PropRequires, `["`+atomic.PropShortname+`","`+ageProp+`"]`),
		atomic.NewAtom(alice, atomic.PropIsA, `["`+personClass+`"]`),
		atomic.NewAtom(alice, atomic.PropShortname, "alice"),
	}))
	return s
}

func TestPopulate(t *testing.T) {
	s := populated(t)

	assert.Equal(t, 20, s.Len())
	assert.Len(t, s.Atoms(), 77)

	for _, dt := range atomic.KnownDatatypes {
		_, err := s.GetResource(string(dt))
		assert.NoError(t, err, "datatype %s should be populated", dt)
	}
}

func TestAllResourcesIsSorted(t *testing.T) {
	s := New()
	require.NoError(t, s.AddAtoms([]atomic.Atom{
		atomic.NewAtom("https://example.com/b", "https://example.com/p2", "2"),
		atomic.NewAtom("https://example.com/b", "https://example.com/p1", "1"),
		atomic.NewAtom("https://example.com/a", "https://example.com/p1", "x"),
	}))

	resources := s.AllResources()
	require.Len(t, resources, 2)
	assert.Equal(t, "https://example.com/a", resources[0].Subject)
	assert.Equal(t, []atomic.PropVal{
		{Property: "https://example.com/p1", Value: "1"},
		{Property: "https://example.com/p2", Value: "2"},
	}, resources[1].Values)
}

func TestAddAtomReplacesValue(t *testing.T) {
	s := New()
	require.NoError(t, s.AddAtom(atomic.NewAtom(alice, atomic.PropShortname, "a")))
	require.NoError(t, s.AddAtom(atomic.NewAtom(alice, atomic.PropShortname, "alice")))

	r, err := s.GetResource(alice)
	require.NoError(t, err)
	assert.Equal(t, []atomic.PropVal{{Property: atomic.PropShortname, Value: "alice"}}, r.Values)
}

func TestAddAtomsRejectsEmptyParts(t *testing.T) {
	s := New()
	err := s.AddAtoms([]atomic.Atom{
		atomic.NewAtom(alice, atomic.PropShortname, "alice"),
		atomic.NewAtom("", atomic.PropShortname, "nobody"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsInvalidRequestError(err))
	assert.Equal(t, 0, s.Len(), "no atoms stored when one is rejected")
}

func TestGetProperty(t *testing.T) {
	s := populated(t)

	prop, err := s.GetProperty(atomic.PropIsA)
	require.NoError(t, err)
	assert.Equal(t, atomic.DatatypeResourceArray, prop.DataType)
	assert.Equal(t, "is-a", prop.Shortname)
	assert.Equal(t, atomic.ClassClass, prop.ClassType)
	assert.NotEmpty(t, prop.Description)
}

func TestGetPropertyErrors(t *testing.T) {
	s := populated(t)
	require.NoError(t, s.AddAtom(atomic.NewAtom("https://example.com/untyped", atomic.PropShortname, "untyped")))

	_, err := s.GetProperty("https://example.com/missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
	assert.Contains(t, err.Error(), "is not in the store")

	_, err = s.GetProperty("https://example.com/untyped")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no datatype")
}

func TestGetClass(t *testing.T) {
	s := withPerson(t)

	class, err := s.GetClass(personClass)
	require.NoError(t, err)
	assert.Equal(t, "person", class.Shortname)
	require.Len(t, class.Requires, 2)
	assert.Equal(t, atomic.PropShortname, class.Requires[0].Subject)
	assert.Equal(t, atomic.DatatypeInteger, class.Requires[1].DataType)
	assert.Empty(t, class.Recommends)

	core, err := s.GetClass(atomic.ClassProperty)
	require.NoError(t, err)
	assert.Len(t, core.Requires, 3)
	assert.Len(t, core.Recommends, 1)
}

func TestGetClassErrors(t *testing.T) {
	s := withPerson(t)
	require.NoError(t, s.AddAtoms([]atomic.Atom{
		atomic.NewAtom("https://example.com/classes/Nameless", atomic.PropDescription, "no shortname"),
		atomic.NewAtom("https://example.com/classes/Broken", atomic.PropShortname, "broken"),
		atomic.NewAtom("https://example.com/classes/Broken", atomic.PropRequires, `["https://example.com/properties/ghost"]`),
	}))

	tests := []struct {
		name     string
		url      string
		contains string
	}{
		{"missing class", "https://example.com/classes/Ghost", "is not in the store"},
		{"no shortname", "https://example.com/classes/Nameless", "has no shortname"},
		{"unresolvable requirement", "https://example.com/classes/Broken", "property https://example.com/properties/ghost is not in the store"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.GetClass(tt.url)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestGetClassesForSubject(t *testing.T) {
	s := withPerson(t)

	classes, err := s.GetClassesForSubject(alice)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, personClass, classes[0].Subject)

	require.NoError(t, s.AddAtom(atomic.NewAtom("https://example.com/plain", atomic.PropShortname, "plain")))
	classes, err = s.GetClassesForSubject("https://example.com/plain")
	require.NoError(t, err)
	assert.Empty(t, classes)
}

func TestGetClassesForSubjectErrors(t *testing.T) {
	s := withPerson(t)
	require.NoError(t, s.AddAtoms([]atomic.Atom{
		atomic.NewAtom("https://example.com/bad-isa", atomic.PropIsA, "https://example.com/classes/Person"),
		atomic.NewAtom("https://example.com/ghost-isa", atomic.PropIsA, `["https://example.com/classes/Ghost"]`),
	}))

	_, err := s.GetClassesForSubject("https://example.com/bad-isa")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "isA of https://example.com/bad-isa")

	_, err = s.GetClassesForSubject("https://example.com/ghost-isa")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))

	_, err = s.GetClassesForSubject("https://example.com/nobody")
	assert.True(t, errors.IsNotFoundError(err))
}
