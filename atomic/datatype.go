package atomic

import "strings"

// Datatype identifies how a raw value is interpreted. Datatypes are URLs.
type Datatype string

// Atomic Data datatypes
const (
	DatatypeAtomicURL     Datatype = "https://atomicdata.dev/datatypes/atomicURL"
	DatatypeString        Datatype = "https://atomicdata.dev/datatypes/string"
	DatatypeMarkdown      Datatype = "https://atomicdata.dev/datatypes/markdown"
	DatatypeSlug          Datatype = "https://atomicdata.dev/datatypes/slug"
	DatatypeInteger       Datatype = "https://atomicdata.dev/datatypes/integer"
	DatatypeFloat         Datatype = "https://atomicdata.dev/datatypes/float"
	DatatypeBoolean       Datatype = "https://atomicdata.dev/datatypes/boolean"
	DatatypeDate          Datatype = "https://atomicdata.dev/datatypes/date"
	DatatypeTimestamp     Datatype = "https://atomicdata.dev/datatypes/timestamp"
	DatatypeResourceArray Datatype = "https://atomicdata.dev/datatypes/resourceArray"
)

// KnownDatatypes lists every datatype NewValue can check.
var KnownDatatypes = []Datatype{
	DatatypeAtomicURL,
	DatatypeString,
	DatatypeMarkdown,
	DatatypeSlug,
	DatatypeInteger,
	DatatypeFloat,
	DatatypeBoolean,
	DatatypeDate,
	DatatypeTimestamp,
	DatatypeResourceArray,
}

// IsKnown reports whether the datatype is one of KnownDatatypes.
func (d Datatype) IsKnown() bool {
	for _, known := range KnownDatatypes {
		if d == known {
			return true
		}
	}
	return false
}

// Shortname returns the last path segment of the datatype URL.
func (d Datatype) Shortname() string {
	s := string(d)
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}

func (d Datatype) String() string {
	return string(d)
}
