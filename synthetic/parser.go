package synthetic

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shahraaz-cn/drgn/ctype"
	"github.com/shahraaz-cn/drgn/typeindex"
)

var qualifierNames = map[string]ctype.Qualifiers{
	"const":    ctype.ConstQualifier,
	"volatile": ctype.VolatileQualifier,
	"restrict": ctype.RestrictQualifier,
	"_Atomic":  ctype.AtomicQualifier,
}

var tagKinds = map[string]ctype.Kind{
	"struct": ctype.StructKind,
	"union":  ctype.UnionKind,
	"enum":   ctype.EnumKind,
}

func (finder *Finder) resolveExpr(expr string) (ctype.QualifiedType, error) {
	return ResolveExpr(finder.index, expr)
}

// ResolveExpr parses a C type expression of the form
//
//	[qualifiers] [tag] name [qualifiers] {* [qualifiers]} [ "[" len? "]" ]
//
// resolving the base name through the index and constructing derived
// types via the index's intern tables.  Array suffixes bind last:
// "char * [4]" is an array of four pointers.
func ResolveExpr(
	index *typeindex.Index,
	expr string,
) (
	ctype.QualifiedType,
	error,
) {
	tokens := tokenize(expr)
	if len(tokens) == 0 {
		return ctype.QualifiedType{}, fmt.Errorf("empty type expression")
	}

	position := 0

	qualifiers := ctype.Qualifiers(0)
	for position < len(tokens) {
		qualifier, ok := qualifierNames[tokens[position]]
		if !ok {
			break
		}
		qualifiers |= qualifier
		position++
	}

	tagKind := ctype.Kind("")
	if position < len(tokens) {
		kind, ok := tagKinds[tokens[position]]
		if ok {
			tagKind = kind
			position++
		}
	}

	nameWords := []string{}
	for position < len(tokens) {
		token := tokens[position]
		_, isQualifier := qualifierNames[token]
		if isQualifier || token == "*" || token == "[" {
			break
		}
		nameWords = append(nameWords, token)
		position++
	}
	if len(nameWords) == 0 {
		return ctype.QualifiedType{}, fmt.Errorf(
			"type expression '%s' has no base name",
			expr)
	}
	name := strings.Join(nameWords, " ")

	// Qualifiers may also trail the base name (int const).
	for position < len(tokens) {
		qualifier, ok := qualifierNames[tokens[position]]
		if !ok {
			break
		}
		qualifiers |= qualifier
		position++
	}

	current, err := resolveBase(index, tagKind, name)
	if err != nil {
		return ctype.QualifiedType{}, err
	}
	current.Qualifiers |= qualifiers

	for position < len(tokens) && tokens[position] == "*" {
		position++

		pointer, err := index.PointerType(current)
		if err != nil {
			return ctype.QualifiedType{}, err
		}

		current = ctype.QualifiedType{Type: pointer}
		for position < len(tokens) {
			qualifier, ok := qualifierNames[tokens[position]]
			if !ok {
				break
			}
			current.Qualifiers |= qualifier
			position++
		}
	}

	if position < len(tokens) && tokens[position] == "[" {
		position++

		length := ""
		if position < len(tokens) && tokens[position] != "]" {
			length = tokens[position]
			position++
		}

		if position >= len(tokens) || tokens[position] != "]" {
			return ctype.QualifiedType{}, fmt.Errorf(
				"unterminated array suffix in '%s'",
				expr)
		}
		position++

		if length == "" {
			current = ctype.QualifiedType{
				Type: index.IncompleteArrayType(current),
			}
		} else {
			count, err := strconv.ParseUint(length, 10, 64)
			if err != nil {
				return ctype.QualifiedType{}, fmt.Errorf(
					"invalid array length '%s': %w",
					length,
					err)
			}

			current = ctype.QualifiedType{
				Type: index.ArrayType(count, current),
			}
		}
	}

	if position != len(tokens) {
		return ctype.QualifiedType{}, fmt.Errorf(
			"trailing tokens in type expression '%s'",
			expr)
	}

	return current, nil
}

func resolveBase(
	index *typeindex.Index,
	tagKind ctype.Kind,
	name string,
) (
	ctype.QualifiedType,
	error,
) {
	if tagKind != "" {
		return index.Find(tagKind, name, "")
	}

	primitive := ctype.PrimitiveBySpelling(name)
	if primitive != "" {
		typ, err := index.FindPrimitive(primitive)
		if err != nil {
			return ctype.QualifiedType{}, err
		}
		return ctype.QualifiedType{Type: typ}, nil
	}

	return index.Find(ctype.TypedefKind, name, "")
}

func tokenize(expr string) []string {
	replaced := strings.NewReplacer(
		"*", " * ",
		"[", " [ ",
		"]", " ] ",
	).Replace(expr)
	return strings.Fields(replaced)
}
