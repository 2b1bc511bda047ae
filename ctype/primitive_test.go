package ctype

import (
	"testing"

	"github.com/pattyshack/gt/testing/expect"
	"github.com/pattyshack/gt/testing/suite"
)

type PrimitiveSuite struct{}

func TestPrimitive(t *testing.T) {
	suite.RunTests(t, &PrimitiveSuite{})
}

func (PrimitiveSuite) TestSpellings(t *testing.T) {
	expect.Equal(t, []string{"char"}, CharPrimitive.Spellings())

	longSpellings := LongPrimitive.Spellings()
	expect.Equal(t, 4, len(longSpellings))
	expect.Equal(t, "long", longSpellings[0])

	expect.Nil(t, Primitive("bogus").Spellings())
}

func (PrimitiveSuite) TestSpellingLookup(t *testing.T) {
	expect.Equal(t, LongPrimitive, PrimitiveBySpelling("signed long int"))
	expect.Equal(
		t,
		UnsignedLongPrimitive,
		PrimitiveBySpelling("long unsigned int"))
	expect.Equal(t, IntPrimitive, PrimitiveBySpelling("signed"))
	expect.Equal(t, BoolPrimitive, PrimitiveBySpelling("_Bool"))
	expect.Equal(t, Primitive(""), PrimitiveBySpelling("uint64_t"))
}

func (PrimitiveSuite) TestKind(t *testing.T) {
	expect.Equal(t, IntKind, LongPrimitive.Kind())
	expect.Equal(t, BoolKind, BoolPrimitive.Kind())
	expect.Equal(t, FloatKind, LongDoublePrimitive.Kind())
	expect.Equal(t, TypedefKind, SizePrimitive.Kind())
	expect.Equal(t, VoidKind, VoidPrimitive.Kind())
}

func (PrimitiveSuite) TestClassification(t *testing.T) {
	expect.Equal(
		t,
		LongPrimitive,
		PrimitiveOf(&Type{
			Kind:     IntKind,
			Name:     "long int",
			ByteSize: 8,
			Signed:   true,
		}))

	// Right name, wrong kind.
	expect.Equal(
		t,
		Primitive(""),
		PrimitiveOf(&Type{Kind: FloatKind, Name: "long int"}))

	expect.Equal(t, VoidPrimitive, PrimitiveOf(&Type{Kind: VoidKind}))
	expect.Equal(t, Primitive(""), PrimitiveOf(nil))
	expect.Equal(
		t,
		Primitive(""),
		PrimitiveOf(&Type{Kind: StructKind, Name: "int"}))
}

func (PrimitiveSuite) TestDefaults(t *testing.T) {
	long := DefaultPrimitiveType(LongPrimitive)
	expect.Equal(t, IntKind, long.Kind)
	expect.Equal(t, uint64(8), long.ByteSize)
	expect.True(t, long.Signed)

	expect.Equal(t, uint64(4), DefaultLong32.ByteSize)
	expect.True(t, DefaultLong32.Signed)
	expect.Equal(t, uint64(4), DefaultUnsignedLong32.ByteSize)
	expect.False(t, DefaultUnsignedLong32.Signed)

	expect.Equal(
		t,
		uint64(16),
		DefaultPrimitiveType(LongDoublePrimitive).ByteSize)

	expect.Equal(t, VoidType, DefaultPrimitiveType(VoidPrimitive))

	// size_t and ptrdiff_t have no shared default; they are synthesised
	// per target.
	expect.Nil(t, DefaultPrimitiveType(SizePrimitive))
	expect.Nil(t, DefaultPrimitiveType(PtrdiffPrimitive))
}

func (PrimitiveSuite) TestDefaultsClassifyAsThemselves(t *testing.T) {
	for primitive := range primitiveSpellings {
		if primitive == SizePrimitive || primitive == PtrdiffPrimitive {
			continue
		}

		expect.Equal(
			t,
			primitive,
			PrimitiveOf(DefaultPrimitiveType(primitive)))
	}

	expect.Equal(t, LongPrimitive, PrimitiveOf(DefaultLong32))
	expect.Equal(t, UnsignedLongPrimitive, PrimitiveOf(DefaultUnsignedLong32))
}
