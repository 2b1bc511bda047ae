package typeindex

import (
	"fmt"

	"github.com/shahraaz-cn/drgn/ctype"
)

// FindPrimitive resolves a canonical C primitive.  The finder chain
// reflects the inspected program's actual debug info and wins when it has
// an answer; the shared defaults apply when debug info is silent.  The
// result is cached for the lifetime of the index.
func (index *Index) FindPrimitive(
	primitive ctype.Primitive,
) (
	*ctype.Type,
	error,
) {
	cached, ok := index.primitiveTypes[primitive]
	if ok {
		return cached, nil
	}

	resolved, err := index.resolvePrimitive(primitive)
	if err != nil {
		return nil, err
	}

	index.primitiveTypes[primitive] = resolved
	return resolved, nil
}

func (index *Index) resolvePrimitive(
	primitive ctype.Primitive,
) (
	*ctype.Type,
	error,
) {
	if primitive.Spellings() == nil {
		return nil, fmt.Errorf(
			"%w: unknown primitive type (%s)",
			ErrInvalidArgument,
			primitive)
	}

	if primitive == ctype.VoidPrimitive {
		return ctype.VoidType, nil
	}

	kind := primitive.Kind()
	for _, spelling := range primitive.Spellings() {
		result, err := index.findFromFinders(kind, spelling, "")
		if err != nil {
			return nil, err
		}

		if result.IsNone() {
			continue
		}

		// A descriptor of the right kind but the wrong classification
		// (e.g. one named "odd int" returned for the spelling "int") is
		// ignored rather than surfaced; the defaults below take over.
		// Classification goes by name only; the byte size is not checked.
		if ctype.PrimitiveOf(result.Type) == primitive {
			return result.Type, nil
		}
	}

	switch primitive {
	case ctype.LongPrimitive, ctype.UnsignedLongPrimitive:
		// The platform meaning of long follows the word size.
		if index.wordSize == 0 {
			return nil, fmt.Errorf(
				"%w: word size must be set to resolve %s",
				ErrInvalidArgument,
				primitive)
		}
		if index.wordSize == 4 {
			if primitive == ctype.LongPrimitive {
				return ctype.DefaultLong32, nil
			}
			return ctype.DefaultUnsignedLong32, nil
		}

	case ctype.SizePrimitive, ctype.PtrdiffPrimitive:
		return index.synthesizeSizePrimitive(primitive)
	}

	return ctype.DefaultPrimitiveType(primitive), nil
}

// synthesizeSizePrimitive builds an index-owned typedef for size_t or
// ptrdiff_t aliasing the first standard integer whose size equals the
// target word size.
func (index *Index) synthesizeSizePrimitive(
	primitive ctype.Primitive,
) (
	*ctype.Type,
	error,
) {
	if index.wordSize == 0 {
		return nil, fmt.Errorf(
			"%w: word size must be set to resolve %s",
			ErrInvalidArgument,
			primitive)
	}

	candidates := []ctype.Primitive{
		ctype.UnsignedLongPrimitive,
		ctype.UnsignedLongLongPrimitive,
		ctype.UnsignedIntPrimitive,
	}
	if primitive == ctype.PtrdiffPrimitive {
		candidates = []ctype.Primitive{
			ctype.LongPrimitive,
			ctype.LongLongPrimitive,
			ctype.IntPrimitive,
		}
	}

	for _, candidate := range candidates {
		aliased, err := index.FindPrimitive(candidate)
		if err != nil {
			return nil, err
		}

		if aliased.ByteSize != index.wordSize {
			continue
		}

		return &ctype.Type{
			Kind:    ctype.TypedefKind,
			Name:    string(primitive),
			Aliased: ctype.QualifiedType{Type: aliased},
		}, nil
	}

	return nil, fmt.Errorf(
		"%w: no suitable integer type for %s (word size %d)",
		ErrInvalidArgument,
		primitive,
		index.wordSize)
}
