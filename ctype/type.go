package ctype

import (
	"fmt"
	"strings"
)

type Kind string

const (
	VoidKind     = Kind("void")
	IntKind      = Kind("int")
	BoolKind     = Kind("bool")
	FloatKind    = Kind("float")
	StructKind   = Kind("struct")
	UnionKind    = Kind("union")
	EnumKind     = Kind("enum")
	TypedefKind  = Kind("typedef")
	PointerKind  = Kind("pointer")
	ArrayKind    = Kind("array")
	FunctionKind = Kind("function")
)

type Qualifiers uint8

const (
	ConstQualifier Qualifiers = 1 << iota
	VolatileQualifier
	RestrictQualifier
	AtomicQualifier
)

func (quals Qualifiers) String() string {
	names := []string{}
	if quals&ConstQualifier != 0 {
		names = append(names, "const")
	}
	if quals&VolatileQualifier != 0 {
		names = append(names, "volatile")
	}
	if quals&RestrictQualifier != 0 {
		names = append(names, "restrict")
	}
	if quals&AtomicQualifier != 0 {
		names = append(names, "_Atomic")
	}
	return strings.Join(names, " ")
}

// A QualifiedType with a nil Type indicates no result.
type QualifiedType struct {
	Type       *Type
	Qualifiers Qualifiers
}

func (qualified QualifiedType) IsNone() bool {
	return qualified.Type == nil
}

// Type is the canonical descriptor for a source-language type.  Descriptor
// identity is pointer identity; descriptors for derived types are
// deduplicated by the owning index.
type Type struct {
	Kind Kind

	// Applicable to int, bool, float, typedef, enum, and named
	// struct/union types.  Empty for anonymous aggregates.
	Name string

	// Applicable to int, bool, float, struct, and union types.
	ByteSize uint64

	// Only applicable to ints.
	Signed bool

	// Only applicable to typedefs.
	Aliased QualifiedType

	// Only applicable to pointers.
	WordSize   uint64
	Referenced QualifiedType

	// Only applicable to arrays.  Length is meaningless when Complete is
	// false.  Complete also records struct/union completeness.
	Complete bool
	Length   uint64
	Element  QualifiedType

	// Only applicable to structs and unions.
	Members []Member

	// Only applicable to enums.
	Underlying  *Type
	Enumerators []Enumerator

	// Only applicable to functions.
	Return     QualifiedType
	Parameters []Parameter
	Variadic   bool
}

// Member's BitOffset is relative to the start of the immediately containing
// aggregate, not the outermost one.
type Member struct {
	Name         string // empty for anonymous members
	Type         QualifiedType
	BitOffset    uint64
	BitFieldSize uint64 // 0 when not a bit field
}

type Enumerator struct {
	Name  string
	Value int64
}

type Parameter struct {
	Name string
	Type QualifiedType
}

func (typ *Type) HasMembers() bool {
	return typ.Kind == StructKind || typ.Kind == UnionKind
}

// UnderlyingType follows the typedef chain to the first non-typedef
// descriptor.  Qualifiers on intermediate typedefs are dropped; only the
// terminal descriptor matters for member resolution.
func (typ *Type) UnderlyingType() *Type {
	current := typ
	for current != nil && current.Kind == TypedefKind {
		current = current.Aliased.Type
	}
	return current
}

func (typ *Type) String() string {
	switch typ.Kind {
	case StructKind, UnionKind, EnumKind:
		name := typ.Name
		if name == "" {
			name = "<anonymous>"
		}
		return fmt.Sprintf("%s %s", typ.Kind, name)
	case TypedefKind:
		return typ.Name
	case PointerKind:
		return typ.Referenced.String() + " *"
	case ArrayKind:
		if typ.Complete {
			return fmt.Sprintf("%s [%d]", typ.Element.String(), typ.Length)
		}
		return typ.Element.String() + " []"
	case FunctionKind:
		params := []string{}
		for _, param := range typ.Parameters {
			params = append(params, param.Type.String())
		}
		if typ.Variadic {
			params = append(params, "...")
		}
		return fmt.Sprintf(
			"%s (%s)",
			typ.Return.String(),
			strings.Join(params, ", "))
	}
	return typ.Name
}

func (qualified QualifiedType) String() string {
	if qualified.Type == nil {
		return "<none>"
	}
	if qualified.Qualifiers == 0 {
		return qualified.Type.String()
	}
	return qualified.Qualifiers.String() + " " + qualified.Type.String()
}
