package ctype

// Primitive enumerates the canonical C primitive types the index
// recognises.  The values double as the primitive's preferred spelling.
type Primitive string

const (
	CharPrimitive             = Primitive("char")
	SignedCharPrimitive       = Primitive("signed char")
	UnsignedCharPrimitive     = Primitive("unsigned char")
	ShortPrimitive            = Primitive("short")
	UnsignedShortPrimitive    = Primitive("unsigned short")
	IntPrimitive              = Primitive("int")
	UnsignedIntPrimitive      = Primitive("unsigned int")
	LongPrimitive             = Primitive("long")
	UnsignedLongPrimitive     = Primitive("unsigned long")
	LongLongPrimitive         = Primitive("long long")
	UnsignedLongLongPrimitive = Primitive("unsigned long long")
	BoolPrimitive             = Primitive("_Bool")
	FloatPrimitive            = Primitive("float")
	DoublePrimitive           = Primitive("double")
	LongDoublePrimitive       = Primitive("long double")
	SizePrimitive             = Primitive("size_t")
	PtrdiffPrimitive          = Primitive("ptrdiff_t")
	VoidPrimitive             = Primitive("void")
)

// Spellings are ordered; the first entry is the spelling used in
// diagnostics and in descriptors synthesised from defaults.
var primitiveSpellings = map[Primitive][]string{
	CharPrimitive:         {"char"},
	SignedCharPrimitive:   {"signed char", "char signed"},
	UnsignedCharPrimitive: {"unsigned char", "char unsigned"},
	ShortPrimitive: {
		"short",
		"signed short",
		"short int",
		"signed short int",
	},
	UnsignedShortPrimitive: {
		"unsigned short",
		"short unsigned",
		"short unsigned int",
		"unsigned short int",
	},
	IntPrimitive:         {"int", "signed", "signed int"},
	UnsignedIntPrimitive: {"unsigned int", "unsigned"},
	LongPrimitive: {
		"long",
		"signed long",
		"long int",
		"signed long int",
	},
	UnsignedLongPrimitive: {
		"unsigned long",
		"long unsigned",
		"long unsigned int",
		"unsigned long int",
	},
	LongLongPrimitive: {
		"long long",
		"signed long long",
		"long long int",
		"signed long long int",
	},
	UnsignedLongLongPrimitive: {
		"unsigned long long",
		"long long unsigned",
		"long long unsigned int",
		"unsigned long long int",
	},
	BoolPrimitive:       {"_Bool"},
	FloatPrimitive:      {"float"},
	DoublePrimitive:     {"double"},
	LongDoublePrimitive: {"long double", "double long"},
	SizePrimitive:       {"size_t"},
	PtrdiffPrimitive:    {"ptrdiff_t"},
	VoidPrimitive:       {"void"},
}

func (primitive Primitive) Spellings() []string {
	return primitiveSpellings[primitive]
}

// Kind returns the type kind a finder should be queried with when
// resolving the primitive.
func (primitive Primitive) Kind() Kind {
	switch primitive {
	case BoolPrimitive:
		return BoolKind
	case FloatPrimitive, DoublePrimitive, LongDoublePrimitive:
		return FloatKind
	case SizePrimitive, PtrdiffPrimitive:
		return TypedefKind
	case VoidPrimitive:
		return VoidKind
	default:
		return IntKind
	}
}

var spellingToPrimitive = map[string]Primitive{}

func init() {
	for primitive, spellings := range primitiveSpellings {
		for _, spelling := range spellings {
			spellingToPrimitive[spelling] = primitive
		}
	}
}

// PrimitiveBySpelling maps any known spelling ("long unsigned int") to its
// primitive.  Returns "" for unknown spellings.
func PrimitiveBySpelling(spelling string) Primitive {
	return spellingToPrimitive[spelling]
}

// PrimitiveOf classifies a descriptor by matching its name against the
// known spellings of primitives with the same kind.  Returns "" when the
// descriptor is not a recognised primitive.
func PrimitiveOf(typ *Type) Primitive {
	if typ == nil {
		return ""
	}
	if typ.Kind == VoidKind {
		return VoidPrimitive
	}

	primitive, ok := spellingToPrimitive[typ.Name]
	if !ok {
		return ""
	}
	if primitive.Kind() != typ.Kind {
		return ""
	}
	return primitive
}

// Shared default descriptors, handed out when no finder resolves a
// primitive.  Immutable after process init.
var (
	VoidType = &Type{Kind: VoidKind, Name: "void"}

	defaultChar = &Type{
		Kind:     IntKind,
		Name:     "char",
		ByteSize: 1,
		Signed:   true,
	}
	defaultSignedChar = &Type{
		Kind:     IntKind,
		Name:     "signed char",
		ByteSize: 1,
		Signed:   true,
	}
	defaultUnsignedChar = &Type{
		Kind:     IntKind,
		Name:     "unsigned char",
		ByteSize: 1,
	}
	defaultShort = &Type{
		Kind:     IntKind,
		Name:     "short",
		ByteSize: 2,
		Signed:   true,
	}
	defaultUnsignedShort = &Type{
		Kind:     IntKind,
		Name:     "unsigned short",
		ByteSize: 2,
	}
	defaultInt = &Type{
		Kind:     IntKind,
		Name:     "int",
		ByteSize: 4,
		Signed:   true,
	}
	defaultUnsignedInt = &Type{
		Kind:     IntKind,
		Name:     "unsigned int",
		ByteSize: 4,
	}
	defaultLong = &Type{
		Kind:     IntKind,
		Name:     "long",
		ByteSize: 8,
		Signed:   true,
	}
	defaultUnsignedLong = &Type{
		Kind:     IntKind,
		Name:     "unsigned long",
		ByteSize: 8,
	}
	defaultLongLong = &Type{
		Kind:     IntKind,
		Name:     "long long",
		ByteSize: 8,
		Signed:   true,
	}
	defaultUnsignedLongLong = &Type{
		Kind:     IntKind,
		Name:     "unsigned long long",
		ByteSize: 8,
	}
	defaultBool = &Type{
		Kind:     BoolKind,
		Name:     "_Bool",
		ByteSize: 1,
	}
	defaultFloat = &Type{
		Kind:     FloatKind,
		Name:     "float",
		ByteSize: 4,
	}
	defaultDouble = &Type{
		Kind:     FloatKind,
		Name:     "double",
		ByteSize: 8,
	}
	defaultLongDouble = &Type{
		Kind:     FloatKind,
		Name:     "long double",
		ByteSize: 16,
	}

	// 32-bit targets get these instead of the 8 byte defaults.
	DefaultLong32 = &Type{
		Kind:     IntKind,
		Name:     "long",
		ByteSize: 4,
		Signed:   true,
	}
	DefaultUnsignedLong32 = &Type{
		Kind:     IntKind,
		Name:     "unsigned long",
		ByteSize: 4,
	}
)

var defaultPrimitives = map[Primitive]*Type{
	CharPrimitive:             defaultChar,
	SignedCharPrimitive:       defaultSignedChar,
	UnsignedCharPrimitive:     defaultUnsignedChar,
	ShortPrimitive:            defaultShort,
	UnsignedShortPrimitive:    defaultUnsignedShort,
	IntPrimitive:              defaultInt,
	UnsignedIntPrimitive:      defaultUnsignedInt,
	LongPrimitive:             defaultLong,
	UnsignedLongPrimitive:     defaultUnsignedLong,
	LongLongPrimitive:         defaultLongLong,
	UnsignedLongLongPrimitive: defaultUnsignedLongLong,
	BoolPrimitive:             defaultBool,
	FloatPrimitive:            defaultFloat,
	DoublePrimitive:           defaultDouble,
	LongDoublePrimitive:       defaultLongDouble,
	VoidPrimitive:             VoidType,
}

// DefaultPrimitiveType returns the shared default descriptor for a
// primitive, or nil for primitives without one (size_t and ptrdiff_t are
// synthesised per-index from the target word size).
func DefaultPrimitiveType(primitive Primitive) *Type {
	return defaultPrimitives[primitive]
}
