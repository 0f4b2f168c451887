package atomic

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/soheilade/atomic-server/errors"
)

// DateLayout is the serialized form of the date datatype.
const DateLayout = "2006-01-02"

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Value is a raw value interpreted under a Datatype.
type Value interface {
	Datatype() Datatype
	String() string
}

// Text holds string, markdown and slug values.
type Text struct {
	Kind Datatype
	Text string
}

func (v Text) Datatype() Datatype { return v.Kind }
func (v Text) String() string     { return v.Text }

// Integer is a signed 64-bit integer value.
type Integer int64

func (v Integer) Datatype() Datatype { return DatatypeInteger }
func (v Integer) String() string     { return strconv.FormatInt(int64(v), 10) }

// Float is a 64-bit floating point value.
type Float float64

func (v Float) Datatype() Datatype { return DatatypeFloat }
func (v Float) String() string     { return strconv.FormatFloat(float64(v), 'g', -1, 64) }

// Boolean is a true/false value.
type Boolean bool

func (v Boolean) Datatype() Datatype { return DatatypeBoolean }
func (v Boolean) String() string     { return strconv.FormatBool(bool(v)) }

// Date is a calendar date without time of day.
type Date time.Time

func (v Date) Datatype() Datatype { return DatatypeDate }
func (v Date) String() string     { return time.Time(v).Format(DateLayout) }

// Timestamp is a point in time in unix milliseconds.
type Timestamp int64

func (v Timestamp) Datatype() Datatype { return DatatypeTimestamp }
func (v Timestamp) String() string     { return strconv.FormatInt(int64(v), 10) }

// Time converts the timestamp to a UTC time.Time.
func (v Timestamp) Time() time.Time { return time.UnixMilli(int64(v)).UTC() }

// AtomicURL is a reference to another resource.
type AtomicURL string

func (v AtomicURL) Datatype() Datatype { return DatatypeAtomicURL }
func (v AtomicURL) String() string     { return string(v) }

// ResourceArray is an ordered list of resource references.
type ResourceArray []string

func (v ResourceArray) Datatype() Datatype { return DatatypeResourceArray }

func (v ResourceArray) String() string {
	data, _ := json.Marshal([]string(v))
	return string(data)
}

// Unsupported carries values whose datatype NewValue does not know how to check.
type Unsupported struct {
	Kind Datatype
	Raw  string
}

func (v Unsupported) Datatype() Datatype { return v.Kind }
func (v Unsupported) String() string     { return v.Raw }

// NewValue interprets raw under datatype dt. Errors are marked with
// errors.ErrInvalidValue. Unknown datatypes yield an Unsupported value and no
// error: only declared, known datatypes are enforced.
func NewValue(raw string, dt Datatype) (Value, error) {
	switch dt {
	case DatatypeString, DatatypeMarkdown:
		return Text{Kind: dt, Text: raw}, nil

	case DatatypeSlug:
		if !slugPattern.MatchString(raw) {
			return nil, errors.NewInvalidValueError("%q is not a valid slug: only lowercase letters, digits and single dashes are allowed", raw)
		}
		return Text{Kind: dt, Text: raw}, nil

	case DatatypeInteger:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.NewInvalidValueError("%q is not a valid integer", raw)
		}
		return Integer(i), nil

	case DatatypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.NewInvalidValueError("%q is not a valid float", raw)
		}
		return Float(f), nil

	case DatatypeBoolean:
		switch raw {
		case "true":
			return Boolean(true), nil
		case "false":
			return Boolean(false), nil
		}
		return nil, errors.NewInvalidValueError("%q is not a valid boolean: expected true or false", raw)

	case DatatypeDate:
		d, err := time.Parse(DateLayout, raw)
		if err != nil {
			return nil, errors.NewInvalidValueError("%q is not a valid date: expected YYYY-MM-DD", raw)
		}
		return Date(d), nil

	case DatatypeTimestamp:
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, errors.NewInvalidValueError("%q is not a valid timestamp: expected unix milliseconds", raw)
		}
		return Timestamp(ms), nil

	case DatatypeAtomicURL:
		if err := checkURL(raw); err != nil {
			return nil, err
		}
		return AtomicURL(raw), nil

	case DatatypeResourceArray:
		return parseResourceArray(raw)
	}

	return Unsupported{Kind: dt, Raw: raw}, nil
}

// ParseResourceArray parses a serialized resource array without the
// datatype dispatch of NewValue.
func ParseResourceArray(raw string) (ResourceArray, error) {
	v, err := parseResourceArray(raw)
	if err != nil {
		return nil, err
	}
	return v.(ResourceArray), nil
}

func parseResourceArray(raw string) (Value, error) {
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return nil, errors.NewInvalidValueError("%q is not a valid resource array: expected a JSON array of URLs", raw)
	}
	for i, item := range items {
		if err := checkURL(item); err != nil {
			return nil, errors.Wrapf(err, "resource array item %d", i)
		}
	}
	return ResourceArray(items), nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" || strings.ContainsAny(raw, " \t\n") {
		return errors.NewInvalidValueError("%q is not a valid URL", raw)
	}
	return nil
}
