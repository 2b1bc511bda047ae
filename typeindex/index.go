package typeindex

import (
	"fmt"

	"github.com/shahraaz-cn/drgn/ctype"
)

// A Finder resolves a named type against some backing source (debug info,
// synthetic definitions).  It reports "not mine" by returning an empty
// QualifiedType with a nil error, and "found" by returning a populated
// result whose kind matches the requested kind.  An empty filename means
// any translation unit.
//
// Finders may recurse into the owning index (e.g. to build pointer or
// array descriptors for members they are constructing).
type Finder func(
	kind ctype.Kind,
	name string,
	filename string,
) (
	ctype.QualifiedType,
	error,
)

type pointerKey struct {
	referenced *ctype.Type
	qualifiers ctype.Qualifiers
}

type arrayKey struct {
	element    *ctype.Type
	qualifiers ctype.Qualifiers
	complete   bool
	length     uint64
}

type memberKey struct {
	outer *ctype.Type
	name  string
}

// MemberValue describes a (possibly nested) member of an aggregate.
// BitOffset is relative to the start of the outermost containing type.
type MemberValue struct {
	Type         ctype.QualifiedType
	BitOffset    uint64
	BitFieldSize uint64
}

// Index resolves named source-language types to canonical descriptors and
// constructs deduplicated derived types on demand.  It is not safe for
// concurrent use; callers needing that must serialise above the index.
type Index struct {
	wordSize uint64

	// Most recently added finder last; consulted in LIFO order.
	finders []Finder

	primitiveTypes map[ctype.Primitive]*ctype.Type

	pointerTypes map[pointerKey]*ctype.Type
	arrayTypes   map[arrayKey]*ctype.Type

	members       map[memberKey]MemberValue
	membersCached map[*ctype.Type]struct{}
}

func NewIndex() *Index {
	return &Index{
		primitiveTypes: map[ctype.Primitive]*ctype.Type{},
		pointerTypes:   map[pointerKey]*ctype.Type{},
		arrayTypes:     map[arrayKey]*ctype.Type{},
		members:        map[memberKey]MemberValue{},
		membersCached:  map[*ctype.Type]struct{}{},
	}
}

// SetWordSize sets the target machine's pointer size in bytes.  It must be
// called before constructing pointer types or resolving word-size
// dependent primitives.
func (index *Index) SetWordSize(wordSize uint64) error {
	if wordSize != 4 && wordSize != 8 {
		return fmt.Errorf(
			"%w: unsupported word size (%d)",
			ErrInvalidArgument,
			wordSize)
	}
	index.wordSize = wordSize
	return nil
}

func (index *Index) WordSize() uint64 {
	return index.wordSize
}

func (index *Index) AddFinder(finder Finder) {
	index.finders = append(index.finders, finder)
}

// RemoveFinder removes the most recently added finder.  Removing from an
// empty chain is a no-op.
func (index *Index) RemoveFinder() {
	if len(index.finders) == 0 {
		return
	}
	index.finders = index.finders[:len(index.finders)-1]
}

// findFromFinders runs the chain in LIFO order.  It stops on the first
// populated result or the first error; exhaustion returns an empty
// QualifiedType with a nil error.
func (index *Index) findFromFinders(
	kind ctype.Kind,
	name string,
	filename string,
) (
	ctype.QualifiedType,
	error,
) {
	for idx := len(index.finders) - 1; idx >= 0; idx-- {
		result, err := index.finders[idx](kind, name, filename)
		if err != nil {
			return ctype.QualifiedType{}, err
		}

		if result.IsNone() {
			continue
		}

		if result.Type.Kind != kind {
			return ctype.QualifiedType{}, &KindMismatchError{
				Want: kind,
				Got:  result.Type,
			}
		}

		return result, nil
	}

	return ctype.QualifiedType{}, nil
}

// Find resolves a named type.  filename restricts the search to a single
// translation unit; an empty filename matches any.
func (index *Index) Find(
	kind ctype.Kind,
	name string,
	filename string,
) (
	ctype.QualifiedType,
	error,
) {
	result, err := index.findFromFinders(kind, name, filename)
	if err != nil {
		return ctype.QualifiedType{}, err
	}

	if result.IsNone() {
		return ctype.QualifiedType{}, &TypeNotFoundError{
			Kind:     kind,
			Name:     name,
			Filename: filename,
		}
	}

	return result, nil
}
