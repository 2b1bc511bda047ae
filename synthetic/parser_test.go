package synthetic

import (
	"testing"

	"github.com/pattyshack/gt/testing/expect"
	"github.com/pattyshack/gt/testing/suite"

	"github.com/shahraaz-cn/drgn/ctype"
	"github.com/shahraaz-cn/drgn/typeindex"
)

type ParserSuite struct{}

func TestParser(t *testing.T) {
	suite.RunTests(t, &ParserSuite{})
}

func (ParserSuite) newFinder(t *testing.T) *Finder {
	index := typeindex.NewIndex()
	expect.Nil(t, index.SetWordSize(8))

	finder, err := NewFinder(index, []byte(`
types:
  - kind: struct
    name: page
    incomplete: true
`))
	expect.Nil(t, err)

	index.AddFinder(finder.Find)
	return finder
}

func (s ParserSuite) TestPrimitiveSpellings(t *testing.T) {
	finder := s.newFinder(t)

	result, err := finder.resolveExpr("unsigned long int")
	expect.Nil(t, err)
	expect.Equal(
		t,
		ctype.DefaultPrimitiveType(ctype.UnsignedLongPrimitive),
		result.Type)

	result, err = finder.resolveExpr("void")
	expect.Nil(t, err)
	expect.Equal(t, ctype.VoidType, result.Type)
}

func (s ParserSuite) TestQualifiers(t *testing.T) {
	finder := s.newFinder(t)

	result, err := finder.resolveExpr("const volatile int")
	expect.Nil(t, err)
	expect.Equal(
		t,
		ctype.ConstQualifier|ctype.VolatileQualifier,
		result.Qualifiers)

	// Trailing qualifier position.
	result, err = finder.resolveExpr("int const")
	expect.Nil(t, err)
	expect.Equal(t, ctype.ConstQualifier, result.Qualifiers)
}

func (s ParserSuite) TestPointers(t *testing.T) {
	finder := s.newFinder(t)

	result, err := finder.resolveExpr("const char **")
	expect.Nil(t, err)
	expect.Equal(t, ctype.PointerKind, result.Type.Kind)

	inner := result.Type.Referenced
	expect.Equal(t, ctype.Qualifiers(0), inner.Qualifiers)
	expect.Equal(t, ctype.PointerKind, inner.Type.Kind)
	expect.Equal(
		t,
		ctype.ConstQualifier,
		inner.Type.Referenced.Qualifiers)

	// A qualifier after * qualifies the pointer, not the target.
	result, err = finder.resolveExpr("char * const")
	expect.Nil(t, err)
	expect.Equal(t, ctype.ConstQualifier, result.Qualifiers)
	expect.Equal(t, ctype.PointerKind, result.Type.Kind)
	expect.Equal(
		t,
		ctype.Qualifiers(0),
		result.Type.Referenced.Qualifiers)
}

func (s ParserSuite) TestTaggedTypes(t *testing.T) {
	finder := s.newFinder(t)

	result, err := finder.resolveExpr("struct page *")
	expect.Nil(t, err)
	expect.Equal(t, ctype.PointerKind, result.Type.Kind)
	expect.Equal(t, "page", result.Type.Referenced.Type.Name)
	expect.False(t, result.Type.Referenced.Type.Complete)
}

func (s ParserSuite) TestArrays(t *testing.T) {
	finder := s.newFinder(t)

	result, err := finder.resolveExpr("int [4]")
	expect.Nil(t, err)
	expect.True(t, result.Type.Complete)
	expect.Equal(t, uint64(4), result.Type.Length)

	result, err = finder.resolveExpr("int []")
	expect.Nil(t, err)
	expect.Equal(t, ctype.ArrayKind, result.Type.Kind)
	expect.False(t, result.Type.Complete)

	// Array of pointers.
	result, err = finder.resolveExpr("char *[4]")
	expect.Nil(t, err)
	expect.Equal(t, ctype.ArrayKind, result.Type.Kind)
	expect.Equal(t, ctype.PointerKind, result.Type.Element.Type.Kind)
}

func (s ParserSuite) TestErrors(t *testing.T) {
	finder := s.newFinder(t)

	_, err := finder.resolveExpr("")
	expect.Error(t, err, "empty type expression")

	_, err = finder.resolveExpr("const *")
	expect.Error(t, err, "has no base name")

	_, err = finder.resolveExpr("int [4")
	expect.Error(t, err, "unterminated array suffix")

	_, err = finder.resolveExpr("int [many]")
	expect.Error(t, err, "invalid array length 'many'")

	_, err = finder.resolveExpr("int [4] extra")
	expect.Error(t, err, "trailing tokens")

	_, err = finder.resolveExpr("undefined_name")
	expect.Error(t, err, "could not find 'undefined_name'")
}
