package dwarfinder

import (
	"debug/dwarf"
	"fmt"

	"github.com/shahraaz-cn/drgn/ctype"
)

var qualifierNames = map[string]ctype.Qualifiers{
	"const":    ctype.ConstQualifier,
	"volatile": ctype.VolatileQualifier,
	"restrict": ctype.RestrictQualifier,
	"atomic":   ctype.AtomicQualifier,
}

// convert translates a debug/dwarf type graph into canonical descriptors,
// folding qualifier wrappers into the returned qualifier set.  Conversion
// memoises per dwarf.Type node and inserts aggregates before resolving
// their fields so that self-referential structures terminate.
func (finder *Finder) convert(
	dwarfType dwarf.Type,
) (
	ctype.QualifiedType,
	error,
) {
	qualifiers := ctype.Qualifiers(0)
	for {
		qualType, ok := dwarfType.(*dwarf.QualType)
		if !ok {
			break
		}

		qualifier, ok := qualifierNames[qualType.Qual]
		if !ok {
			return ctype.QualifiedType{}, fmt.Errorf(
				"unsupported type qualifier (%s)",
				qualType.Qual)
		}

		qualifiers |= qualifier
		dwarfType = qualType.Type
	}

	cached, ok := finder.byType[dwarfType]
	if ok {
		return ctype.QualifiedType{
			Type:       cached,
			Qualifiers: qualifiers,
		}, nil
	}

	converted, err := finder.convertUnqualified(dwarfType)
	if err != nil {
		return ctype.QualifiedType{}, err
	}

	return ctype.QualifiedType{
		Type:       converted,
		Qualifiers: qualifiers,
	}, nil
}

func (finder *Finder) convertUnqualified(
	dwarfType dwarf.Type,
) (
	*ctype.Type,
	error,
) {
	switch typed := dwarfType.(type) {
	case *dwarf.VoidType:
		return ctype.VoidType, nil

	case *dwarf.BoolType:
		return finder.memoise(
			dwarfType,
			&ctype.Type{
				Kind:     ctype.BoolKind,
				Name:     typed.Name,
				ByteSize: uint64(typed.ByteSize),
			}), nil

	case *dwarf.CharType:
		return finder.memoise(
			dwarfType,
			&ctype.Type{
				Kind:     ctype.IntKind,
				Name:     typed.Name,
				ByteSize: uint64(typed.ByteSize),
				Signed:   true,
			}), nil

	case *dwarf.UcharType:
		return finder.memoise(
			dwarfType,
			&ctype.Type{
				Kind:     ctype.IntKind,
				Name:     typed.Name,
				ByteSize: uint64(typed.ByteSize),
			}), nil

	case *dwarf.IntType:
		return finder.memoise(
			dwarfType,
			&ctype.Type{
				Kind:     ctype.IntKind,
				Name:     typed.Name,
				ByteSize: uint64(typed.ByteSize),
				Signed:   true,
			}), nil

	case *dwarf.UintType:
		return finder.memoise(
			dwarfType,
			&ctype.Type{
				Kind:     ctype.IntKind,
				Name:     typed.Name,
				ByteSize: uint64(typed.ByteSize),
			}), nil

	case *dwarf.FloatType:
		return finder.memoise(
			dwarfType,
			&ctype.Type{
				Kind:     ctype.FloatKind,
				Name:     typed.Name,
				ByteSize: uint64(typed.ByteSize),
			}), nil

	case *dwarf.PtrType:
		referenced, err := finder.convert(typed.Type)
		if err != nil {
			return nil, err
		}
		return finder.index.PointerType(referenced)

	case *dwarf.ArrayType:
		element, err := finder.convert(typed.Type)
		if err != nil {
			return nil, err
		}
		if typed.Count < 0 {
			return finder.index.IncompleteArrayType(element), nil
		}
		return finder.index.ArrayType(uint64(typed.Count), element), nil

	case *dwarf.TypedefType:
		typ := finder.memoise(
			dwarfType,
			&ctype.Type{
				Kind: ctype.TypedefKind,
				Name: typed.Name,
			})

		aliased, err := finder.convert(typed.Type)
		if err != nil {
			return nil, err
		}
		typ.Aliased = aliased
		return typ, nil

	case *dwarf.StructType:
		return finder.convertStruct(typed)

	case *dwarf.EnumType:
		return finder.convertEnum(typed)

	case *dwarf.FuncType:
		return finder.convertFunc(typed)
	}

	return nil, fmt.Errorf("unsupported DWARF type (%s)", dwarfType)
}

func (finder *Finder) memoise(
	dwarfType dwarf.Type,
	typ *ctype.Type,
) *ctype.Type {
	finder.byType[dwarfType] = typ
	return typ
}

func (finder *Finder) convertStruct(
	typed *dwarf.StructType,
) (
	*ctype.Type,
	error,
) {
	kind := ctype.StructKind
	if typed.Kind == "union" {
		kind = ctype.UnionKind
	}

	typ := finder.memoise(
		typed,
		&ctype.Type{
			Kind:     kind,
			Name:     typed.StructName,
			ByteSize: uint64(typed.ByteSize),
			Complete: !typed.Incomplete,
		})

	for _, field := range typed.Field {
		memberType, err := finder.convert(field.Type)
		if err != nil {
			return nil, err
		}

		typ.Members = append(
			typ.Members,
			ctype.Member{
				Name:         field.Name,
				Type:         memberType,
				BitOffset:    fieldBitOffset(field),
				BitFieldSize: uint64(field.BitSize),
			})
	}

	return typ, nil
}

// fieldBitOffset normalises the two DWARF bit field encodings to a bit
// offset from the start of the containing aggregate.  The legacy
// DW_AT_bit_offset encoding counts from the most significant bit of the
// storage unit; this assumes a little-endian target, like the rest of
// the reader.
func fieldBitOffset(field *dwarf.StructField) uint64 {
	if field.BitSize == 0 {
		return uint64(field.ByteOffset * 8)
	}

	if field.DataBitOffset != 0 {
		return uint64(field.DataBitOffset)
	}

	storageBits := field.Type.Size() * 8
	return uint64(
		field.ByteOffset*8 + storageBits - field.BitOffset - field.BitSize)
}

func (finder *Finder) convertEnum(
	typed *dwarf.EnumType,
) (
	*ctype.Type,
	error,
) {
	typ := finder.memoise(
		typed,
		&ctype.Type{
			Kind:       ctype.EnumKind,
			Name:       typed.EnumName,
			Underlying: enumUnderlying(uint64(typed.ByteSize)),
		})

	for _, value := range typed.Val {
		typ.Enumerators = append(
			typ.Enumerators,
			ctype.Enumerator{
				Name:  value.Name,
				Value: value.Val,
			})
	}

	return typ, nil
}

// debug/dwarf does not surface an enum's underlying type entry; pick the
// standard signed integer matching the enum's storage size.
func enumUnderlying(byteSize uint64) *ctype.Type {
	switch byteSize {
	case 1:
		return ctype.DefaultPrimitiveType(ctype.SignedCharPrimitive)
	case 2:
		return ctype.DefaultPrimitiveType(ctype.ShortPrimitive)
	case 8:
		return ctype.DefaultPrimitiveType(ctype.LongLongPrimitive)
	default:
		return ctype.DefaultPrimitiveType(ctype.IntPrimitive)
	}
}

func (finder *Finder) convertFunc(
	typed *dwarf.FuncType,
) (
	*ctype.Type,
	error,
) {
	typ := finder.memoise(
		typed,
		&ctype.Type{
			Kind:   ctype.FunctionKind,
			Return: ctype.QualifiedType{Type: ctype.VoidType},
		})

	if typed.ReturnType != nil {
		returnType, err := finder.convert(typed.ReturnType)
		if err != nil {
			return nil, err
		}
		typ.Return = returnType
	}

	for _, parameter := range typed.ParamType {
		_, variadic := parameter.(*dwarf.DotDotDotType)
		if variadic {
			typ.Variadic = true
			continue
		}

		parameterType, err := finder.convert(parameter)
		if err != nil {
			return nil, err
		}

		typ.Parameters = append(
			typ.Parameters,
			ctype.Parameter{Type: parameterType})
	}

	return typ, nil
}
