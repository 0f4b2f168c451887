package validate

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ad "github.com/soheilade/atomic-server/atomic"
	"github.com/soheilade/atomic-server/errors"
)

func TestReportIsValid(t *testing.T) {
	failure := errors.New("boom")

	tests := []struct {
		name     string
		report   Report
		valid    bool
		complete bool
	}{
		{"empty", Report{}, true, true},
		{"unfetchable", Report{Unfetchable: []SubjectError{{"s", failure}}}, false, false},
		{"classes", Report{UnfetchableClasses: []SubjectError{{"s", failure}}}, false, false},
		{"props", Report{UnfetchableProps: []SubjectError{{"p", failure}}}, false, false},
		{"invalid value", Report{InvalidValues: []InvalidValue{{ad.NewAtom("s", "p", "v"), failure}}}, false, false},
		{"missing only", Report{MissingProps: []MissingProp{{"s", "p", "c"}}}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.report.IsValid())
			assert.Equal(t, tt.complete, tt.report.IsComplete())
		})
	}
}

func TestReportString(t *testing.T) {
	r := &Report{
		Unfetchable:        []SubjectError{{"https://a.example/r", errors.New("status 404")}},
		UnfetchableClasses: []SubjectError{{"https://a.example/c", errors.New("class missing")}},
		UnfetchableProps:   []SubjectError{{"https://a.example/p", errors.New("property missing")}},
		InvalidValues:      []InvalidValue{{ad.NewAtom("https://a.example/r", "https://a.example/p", "x"), errors.New("not an integer")}},
		MissingProps:       []MissingProp{{"https://a.example/r", "https://a.example/q", "https://a.example/c"}},
	}

	want := strings.Join([]string{
		"Cannot fetch Resource https://a.example/r: status 404",
		"Cannot fetch Class https://a.example/c: class missing",
		"Cannot fetch Property https://a.example/p: property missing",
		`Invalid value https://a.example/r https://a.example/p "x": not an integer`,
	}, "\n")
	assert.Equal(t, want, r.String())
	assert.Equal(t, 4, r.Defects())
	assert.Equal(t, "0 resources, 0 atoms, 4 defects, 1 missing properties", r.Summary())
}

func TestReportStringKeepsOneLinePerDefect(t *testing.T) {
	r := &Report{
		Unfetchable: []SubjectError{{"s", errors.New("line one\nline two")}},
	}

	assert.Equal(t, "Cannot fetch Resource s: line one line two", r.String())
}

func TestReportStringFlattensIdentifiers(t *testing.T) {
	r := &Report{
		UnfetchableClasses: []SubjectError{{"https://e.com/r\nsecond", errors.New("no class")}},
		UnfetchableProps:   []SubjectError{{"https://e.com/p\r\nsecond", errors.New("not in the store")}},
		InvalidValues: []InvalidValue{{
			Atom: ad.NewAtom("https://e.com/s\nx", "https://e.com/p\ny", "v"),
			Err:  errors.New("bad"),
		}},
	}

	lines := strings.Split(r.String(), "\n")
	require.Len(t, lines, r.Defects())
	assert.Equal(t, "Cannot fetch Class https://e.com/r second: no class", lines[0])
	assert.Equal(t, "Cannot fetch Property https://e.com/p second: not in the store", lines[1])
	assert.Equal(t, `Invalid value https://e.com/s x https://e.com/p y "v": bad`, lines[2])
}

func TestReportValidRendering(t *testing.T) {
	r := &Report{ResourceCount: 3, AtomCount: 9, MissingProps: []MissingProp{{"s", "p", "c"}}}

	assert.Equal(t, ValidMessage, r.String())
	assert.Zero(t, r.Defects())
	assert.Equal(t, "Missing property p required by c on s", r.MissingString())
}

func TestReportMissingStringEmpty(t *testing.T) {
	assert.Empty(t, (&Report{}).MissingString())
}

func TestMessageNilError(t *testing.T) {
	assert.Empty(t, SubjectError{Subject: "s"}.Message())
}

func TestCountersSaturate(t *testing.T) {
	e := New()
	r := &Report{AtomCount: math.MaxUint64}
	s := &memStore{
		resources:  []ad.Resource{{Subject: "s", Values: []ad.PropVal{{Property: "p", Value: "v"}}}},
		properties: map[string]ad.Property{"p": {Subject: "p", DataType: ad.DatatypeString}},
	}

	e.checkResource(s, s.resources[0], r)

	assert.Equal(t, uint64(math.MaxUint64), r.AtomCount)
}
