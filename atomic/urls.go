package atomic

// Well-known Atomic Data URLs used by the core ontology.
const (
	// Classes
	ClassClass    = "https://atomicdata.dev/classes/Class"
	ClassProperty = "https://atomicdata.dev/classes/Property"
	ClassDatatype = "https://atomicdata.dev/classes/Datatype"

	// Properties
	PropShortname   = "https://atomicdata.dev/properties/shortname"
	PropDescription = "https://atomicdata.dev/properties/description"
	PropIsA         = "https://atomicdata.dev/properties/isA"
	PropDatatype    = "https://atomicdata.dev/properties/datatype"
	PropRequires    = "https://atomicdata.dev/properties/requires"
	PropRecommends  = "https://atomicdata.dev/properties/recommends"
	PropClassType   = "https://atomicdata.dev/properties/classtype"
)
