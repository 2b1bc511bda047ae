package typeindex

import (
	"errors"
	"fmt"
	"testing"

	"github.com/pattyshack/gt/testing/expect"
	"github.com/pattyshack/gt/testing/suite"

	"github.com/shahraaz-cn/drgn/ctype"
)

// mapFinder resolves from a fixed (kind, name, filename) table.  An empty
// requested filename matches an entry registered under any filename; a
// non-empty one matches only an entry registered under that filename.
type mapFinderEntry struct {
	kind     ctype.Kind
	name     string
	filename string
}

type mapFinder map[mapFinderEntry]ctype.QualifiedType

func (finder mapFinder) find(
	kind ctype.Kind,
	name string,
	filename string,
) (
	ctype.QualifiedType,
	error,
) {
	result, ok := finder[mapFinderEntry{
		kind:     kind,
		name:     name,
		filename: filename,
	}]
	if ok {
		return result, nil
	}

	if filename != "" {
		return ctype.QualifiedType{}, nil
	}

	// Filename wildcard: any registered translation unit matches.
	for entry, registered := range finder {
		if entry.kind == kind && entry.name == name {
			return registered, nil
		}
	}

	return ctype.QualifiedType{}, nil
}

func intType(name string, size uint64, signed bool) *ctype.Type {
	return &ctype.Type{
		Kind:     ctype.IntKind,
		Name:     name,
		ByteSize: size,
		Signed:   signed,
	}
}

type IndexSuite struct{}

func TestIndex(t *testing.T) {
	suite.RunTests(t, &IndexSuite{})
}

func (IndexSuite) TestSetWordSize(t *testing.T) {
	index := NewIndex()
	expect.Equal(t, uint64(0), index.WordSize())

	err := index.SetWordSize(5)
	expect.Error(t, err, "unsupported word size (5)")
	expect.True(t, errors.Is(err, ErrInvalidArgument))

	expect.Nil(t, index.SetWordSize(4))
	expect.Equal(t, uint64(4), index.WordSize())

	expect.Nil(t, index.SetWordSize(8))
	expect.Equal(t, uint64(8), index.WordSize())
}

func (IndexSuite) TestFindNotFound(t *testing.T) {
	index := NewIndex()

	_, err := index.Find(ctype.StructKind, "task_struct", "")
	expect.Error(t, err, "could not find 'struct task_struct'")
	expect.True(t, errors.Is(err, ErrNotFound))

	_, err = index.Find(ctype.StructKind, "task_struct", "sched.c")
	expect.Error(t, err, "could not find 'struct task_struct' in 'sched.c'")

	_, err = index.Find(ctype.TypedefKind, "pid_t", "")
	expect.Error(t, err, "could not find 'pid_t'")

	_, err = index.Find(ctype.IntKind, "u64", "")
	expect.Error(t, err, "could not find 'int type u64'")
}

func (IndexSuite) TestFindHit(t *testing.T) {
	index := NewIndex()

	point := &ctype.Type{Kind: ctype.StructKind, Name: "point", ByteSize: 8}
	index.AddFinder(mapFinder{
		{kind: ctype.StructKind, name: "point"}: {Type: point},
	}.find)

	result, err := index.Find(ctype.StructKind, "point", "")
	expect.Nil(t, err)
	expect.Equal(t, point, result.Type)
	expect.Equal(t, ctype.Qualifiers(0), result.Qualifiers)
}

func (IndexSuite) TestFindKindMismatch(t *testing.T) {
	index := NewIndex()

	// A finder registered for name "T" returns a struct when an enum was
	// requested: a type error, not a lookup miss.
	wrong := &ctype.Type{Kind: ctype.StructKind, Name: "T"}
	index.AddFinder(
		func(
			kind ctype.Kind,
			name string,
			filename string,
		) (
			ctype.QualifiedType,
			error,
		) {
			if name == "T" {
				return ctype.QualifiedType{Type: wrong}, nil
			}
			return ctype.QualifiedType{}, nil
		})

	_, err := index.Find(ctype.EnumKind, "T", "")
	expect.Error(t, err, "expected enum type, found 'struct T'")
	expect.True(t, errors.Is(err, ErrWrongKind))
	expect.False(t, errors.Is(err, ErrNotFound))
}

func (IndexSuite) TestFinderLIFO(t *testing.T) {
	index := NewIndex()

	first := &ctype.Type{Kind: ctype.StructKind, Name: "shadowed"}
	second := &ctype.Type{Kind: ctype.StructKind, Name: "shadowed"}

	index.AddFinder(mapFinder{
		{kind: ctype.StructKind, name: "shadowed"}: {Type: first},
	}.find)
	index.AddFinder(mapFinder{
		{kind: ctype.StructKind, name: "shadowed"}: {Type: second},
	}.find)

	result, err := index.Find(ctype.StructKind, "shadowed", "")
	expect.Nil(t, err)
	expect.Equal(t, second, result.Type)

	index.RemoveFinder()

	result, err = index.Find(ctype.StructKind, "shadowed", "")
	expect.Nil(t, err)
	expect.Equal(t, first, result.Type)

	index.RemoveFinder()

	_, err = index.Find(ctype.StructKind, "shadowed", "")
	expect.True(t, errors.Is(err, ErrNotFound))

	// Unmatched pop is tolerated.
	index.RemoveFinder()
}

func (IndexSuite) TestFinderError(t *testing.T) {
	index := NewIndex()

	boom := fmt.Errorf("backing store corrupted")
	index.AddFinder(
		func(
			kind ctype.Kind,
			name string,
			filename string,
		) (
			ctype.QualifiedType,
			error,
		) {
			return ctype.QualifiedType{}, boom
		})

	// Added last, so consulted first: its miss falls through to the
	// failing finder, whose error is returned unchanged.
	index.AddFinder(
		func(
			kind ctype.Kind,
			name string,
			filename string,
		) (
			ctype.QualifiedType,
			error,
		) {
			return ctype.QualifiedType{}, nil
		})

	_, err := index.Find(ctype.StructKind, "anything", "")
	expect.Equal(t, boom, err)
}

func (IndexSuite) TestFindQualifiedResult(t *testing.T) {
	index := NewIndex()

	jiffies := intType("unsigned long", 8, false)
	index.AddFinder(mapFinder{
		{kind: ctype.IntKind, name: "unsigned long"}: {
			Type:       jiffies,
			Qualifiers: ctype.VolatileQualifier,
		},
	}.find)

	result, err := index.Find(ctype.IntKind, "unsigned long", "")
	expect.Nil(t, err)
	expect.Equal(t, jiffies, result.Type)
	expect.Equal(t, ctype.VolatileQualifier, result.Qualifiers)
}

func (IndexSuite) TestFilenameFilter(t *testing.T) {
	index := NewIndex()

	schedValue := &ctype.Type{Kind: ctype.StructKind, Name: "value"}
	index.AddFinder(mapFinder{
		{kind: ctype.StructKind, name: "value", filename: "sched.c"}: {
			Type: schedValue,
		},
	}.find)

	result, err := index.Find(ctype.StructKind, "value", "sched.c")
	expect.Nil(t, err)
	expect.Equal(t, schedValue, result.Type)

	// Empty filename matches any translation unit.
	result, err = index.Find(ctype.StructKind, "value", "")
	expect.Nil(t, err)
	expect.Equal(t, schedValue, result.Type)

	_, err = index.Find(ctype.StructKind, "value", "fs.c")
	expect.True(t, errors.Is(err, ErrNotFound))
}
