package main

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/shahraaz-cn/drgn/ctype"
	"github.com/shahraaz-cn/drgn/typeindex"
)

// YAML rendering of descriptors.  Nested types are rendered as type name
// strings, which also cuts cycles through self-referential aggregates.
type typeDescription struct {
	Kind       string `yaml:"kind"`
	Name       string `yaml:"name,omitempty"`
	Qualifiers string `yaml:"qualifiers,omitempty"`
	Size       uint64 `yaml:"size,omitempty"`
	Signed     bool   `yaml:"signed,omitempty"`
	Incomplete bool   `yaml:"incomplete,omitempty"`

	Aliases string `yaml:"aliases,omitempty"`

	To string `yaml:"to,omitempty"`

	Element string  `yaml:"element,omitempty"`
	Length  *uint64 `yaml:"length,omitempty"`

	Members []memberDescription `yaml:"members,omitempty"`

	Enumerators []enumeratorDescription `yaml:"enumerators,omitempty"`

	Returns    string   `yaml:"returns,omitempty"`
	Parameters []string `yaml:"parameters,omitempty"`
	Variadic   bool     `yaml:"variadic,omitempty"`
}

type memberDescription struct {
	Name         string `yaml:"name,omitempty"`
	Type         string `yaml:"type"`
	BitOffset    uint64 `yaml:"bit_offset"`
	BitFieldSize uint64 `yaml:"bit_field_size,omitempty"`
}

type enumeratorDescription struct {
	Name  string `yaml:"name"`
	Value int64  `yaml:"value"`
}

func describeType(typ *ctype.Type) typeDescription {
	description := typeDescription{
		Kind:   string(typ.Kind),
		Name:   typ.Name,
		Size:   typ.ByteSize,
		Signed: typ.Signed,
	}

	switch typ.Kind {
	case ctype.TypedefKind:
		description.Aliases = typ.Aliased.String()

	case ctype.PointerKind:
		description.To = typ.Referenced.String()
		description.Size = typ.WordSize

	case ctype.ArrayKind:
		description.Element = typ.Element.String()
		if typ.Complete {
			length := typ.Length
			description.Length = &length
		} else {
			description.Incomplete = true
		}

	case ctype.StructKind, ctype.UnionKind:
		description.Incomplete = !typ.Complete
		for _, member := range typ.Members {
			description.Members = append(
				description.Members,
				memberDescription{
					Name:         member.Name,
					Type:         member.Type.String(),
					BitOffset:    member.BitOffset,
					BitFieldSize: member.BitFieldSize,
				})
		}

	case ctype.EnumKind:
		for _, enumerator := range typ.Enumerators {
			description.Enumerators = append(
				description.Enumerators,
				enumeratorDescription{
					Name:  enumerator.Name,
					Value: enumerator.Value,
				})
		}

	case ctype.FunctionKind:
		description.Returns = typ.Return.String()
		for _, parameter := range typ.Parameters {
			description.Parameters = append(
				description.Parameters,
				parameter.Type.String())
		}
		description.Variadic = typ.Variadic
	}

	return description
}

func describeQualified(qualified ctype.QualifiedType) typeDescription {
	description := describeType(qualified.Type)
	description.Qualifiers = qualified.Qualifiers.String()
	return description
}

func describeMember(value typeindex.MemberValue) memberDescription {
	return memberDescription{
		Type:         value.Type.String(),
		BitOffset:    value.BitOffset,
		BitFieldSize: value.BitFieldSize,
	}
}

func printDescription(description interface{}) error {
	content, err := yaml.Marshal(description)
	if err != nil {
		return err
	}

	fmt.Print(string(content))
	return nil
}
