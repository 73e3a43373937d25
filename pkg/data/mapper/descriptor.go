// Package mapper converts configuration documents between their typed,
// plain and flat representations.
//
// The shape of every persisted model is declared once as a Descriptor
// table. The ObjectMapper walks those tables to flatten a plain document
// into key/scalar pairs, to rebuild it from such pairs with type coercion,
// and to apply single-key updates. Binding a plain document to a Go struct
// is delegated to YAML struct tags.
package mapper

// Kind is the structural kind of a property.
type Kind int

const (
	KindScalar Kind = iota
	KindObject
	KindArray
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// ScalarType is the coercion target of a scalar value.
type ScalarType int

const (
	TypeString ScalarType = iota
	TypeInt
	TypeBool
	TypeFloat
	TypeTime
	TypeSemVer
)

func (t ScalarType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeFloat:
		return "float"
	case TypeTime:
		return "time"
	case TypeSemVer:
		return "semver"
	default:
		return "unknown"
	}
}

// Property describes one field of an object.
//
// For KindScalar, Type is the value type. For KindArray and KindMap, Elem is
// the element descriptor when elements are objects; otherwise Type is the
// element scalar type. For KindObject, Elem is required.
type Property struct {
	Name string
	Kind Kind
	Type ScalarType
	Elem *Descriptor
}

// HasObjectElements reports whether the property's values are objects.
func (p Property) HasObjectElements() bool {
	return p.Elem != nil
}

// Descriptor is the property table of an object type.
type Descriptor struct {
	Name       string
	Properties []Property

	index map[string]int
}

// NewDescriptor builds a descriptor from its properties.
func NewDescriptor(name string, properties ...Property) *Descriptor {
	d := &Descriptor{
		Name:       name,
		Properties: properties,
		index:      make(map[string]int, len(properties)),
	}
	for i, p := range properties {
		d.index[p.Name] = i
	}
	return d
}

// Property looks up a property by name.
func (d *Descriptor) Property(name string) (Property, bool) {
	i, ok := d.index[name]
	if !ok {
		return Property{}, false
	}
	return d.Properties[i], true
}

// String declares a string property.
func String(name string) Property {
	return Property{Name: name, Kind: KindScalar, Type: TypeString}
}

// Int declares an integer property.
func Int(name string) Property {
	return Property{Name: name, Kind: KindScalar, Type: TypeInt}
}

// Bool declares a boolean property.
func Bool(name string) Property {
	return Property{Name: name, Kind: KindScalar, Type: TypeBool}
}

// Float declares a floating point property.
func Float(name string) Property {
	return Property{Name: name, Kind: KindScalar, Type: TypeFloat}
}

// Time declares an RFC 3339 timestamp property.
func Time(name string) Property {
	return Property{Name: name, Kind: KindScalar, Type: TypeTime}
}

// SemVer declares a semantic version property.
func SemVer(name string) Property {
	return Property{Name: name, Kind: KindScalar, Type: TypeSemVer}
}

// Object declares a nested object property.
func Object(name string, elem *Descriptor) Property {
	return Property{Name: name, Kind: KindObject, Elem: elem}
}

// ObjectArray declares an array of objects.
func ObjectArray(name string, elem *Descriptor) Property {
	return Property{Name: name, Kind: KindArray, Elem: elem}
}

// ScalarArray declares an array of scalars.
func ScalarArray(name string, t ScalarType) Property {
	return Property{Name: name, Kind: KindArray, Type: t}
}

// ObjectMap declares a string-keyed map of objects.
func ObjectMap(name string, elem *Descriptor) Property {
	return Property{Name: name, Kind: KindMap, Elem: elem}
}

// ScalarMap declares a string-keyed map of scalars.
func ScalarMap(name string, t ScalarType) Property {
	return Property{Name: name, Kind: KindMap, Type: t}
}
