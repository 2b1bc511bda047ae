package typeindex

import (
	"fmt"

	"github.com/shahraaz-cn/drgn/ctype"
)

// PointerType returns the canonical pointer descriptor referencing the
// given qualified type.  At most one descriptor exists per (referenced
// identity, referenced qualifiers) pair; repeated calls return the same
// pointer.
func (index *Index) PointerType(
	referenced ctype.QualifiedType,
) (
	*ctype.Type,
	error,
) {
	if index.wordSize == 0 {
		return nil, fmt.Errorf(
			"%w: word size must be set to create pointer types",
			ErrInvalidArgument)
	}

	key := pointerKey{
		referenced: referenced.Type,
		qualifiers: referenced.Qualifiers,
	}

	existing, ok := index.pointerTypes[key]
	if ok {
		return existing, nil
	}

	pointer := &ctype.Type{
		Kind:       ctype.PointerKind,
		WordSize:   index.wordSize,
		Referenced: referenced,
	}
	index.pointerTypes[key] = pointer
	return pointer, nil
}

// ArrayType returns the canonical descriptor for a complete array of
// length elements.
func (index *Index) ArrayType(
	length uint64,
	element ctype.QualifiedType,
) *ctype.Type {
	return index.internArray(
		arrayKey{
			element:    element.Type,
			qualifiers: element.Qualifiers,
			complete:   true,
			length:     length,
		},
		element)
}

// IncompleteArrayType returns the canonical descriptor for an array of
// unknown length.  Length never participates in equality for incomplete
// arrays.
func (index *Index) IncompleteArrayType(
	element ctype.QualifiedType,
) *ctype.Type {
	return index.internArray(
		arrayKey{
			element:    element.Type,
			qualifiers: element.Qualifiers,
		},
		element)
}

func (index *Index) internArray(
	key arrayKey,
	element ctype.QualifiedType,
) *ctype.Type {
	existing, ok := index.arrayTypes[key]
	if ok {
		return existing
	}

	array := &ctype.Type{
		Kind:     ctype.ArrayKind,
		Complete: key.complete,
		Length:   key.length,
		Element:  element,
	}
	index.arrayTypes[key] = array
	return array
}
