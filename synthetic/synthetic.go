package synthetic

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shahraaz-cn/drgn/ctype"
	"github.com/shahraaz-cn/drgn/typeindex"
)

// Document is the YAML surface for a set of synthetic type definitions.
// An optional filename scopes the definitions to a single translation
// unit for filename-filtered lookups.
type Document struct {
	Filename string    `yaml:"filename"`
	Types    []TypeDef `yaml:"types"`
}

type TypeDef struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`

	// Byte size (int/bool/float/struct/union/enum); signedness (int).
	Size   uint64 `yaml:"size"`
	Signed bool   `yaml:"signed"`

	// typedef target and enum underlying type, as a type expression.
	Type string `yaml:"type"`

	// struct/union.
	Incomplete bool        `yaml:"incomplete"`
	Members    []MemberDef `yaml:"members"`

	// enum.
	Enumerators []EnumeratorDef `yaml:"enumerators"`
}

type MemberDef struct {
	Name string `yaml:"name"`

	// Exactly one of Type (an expression resolved through the index) or
	// Inline (an anonymous nested aggregate) must be set.
	Type   string   `yaml:"type"`
	Inline *TypeDef `yaml:"inline"`

	BitOffset    uint64 `yaml:"bit_offset"`
	BitFieldSize uint64 `yaml:"bit_field_size"`
}

type EnumeratorDef struct {
	Name  string `yaml:"name"`
	Value int64  `yaml:"value"`
}

type defKey struct {
	kind ctype.Kind
	name string
}

// Finder resolves named types from a parsed Document.  Definitions are
// materialised lazily on first lookup; member and typedef type
// expressions resolve through the owning index, re-entering this finder
// for names it defines itself.
type Finder struct {
	index    *typeindex.Index
	filename string

	defs  map[defKey]*TypeDef
	built map[defKey]*ctype.Type
}

// NewFinder parses a YAML document and returns a finder over its
// definitions.  The finder must be registered on the same index it was
// created with.
func NewFinder(
	index *typeindex.Index,
	content []byte,
) (
	*Finder,
	error,
) {
	document := Document{}
	err := yaml.Unmarshal(content, &document)
	if err != nil {
		return nil, fmt.Errorf("failed to parse type definitions: %w", err)
	}

	finder := &Finder{
		index:    index,
		filename: document.Filename,
		defs:     map[defKey]*TypeDef{},
		built:    map[defKey]*ctype.Type{},
	}

	for idx, def := range document.Types {
		kind, err := defKind(def.Kind)
		if err != nil {
			return nil, err
		}
		if def.Name == "" {
			return nil, fmt.Errorf("unnamed top-level type definition")
		}

		key := defKey{kind: kind, name: def.Name}
		_, ok := finder.defs[key]
		if ok {
			return nil, fmt.Errorf(
				"duplicate definition of '%s %s'",
				def.Kind,
				def.Name)
		}

		finder.defs[key] = &document.Types[idx]
	}

	return finder, nil
}

func defKind(kind string) (ctype.Kind, error) {
	switch ctype.Kind(kind) {
	case ctype.IntKind,
		ctype.BoolKind,
		ctype.FloatKind,
		ctype.StructKind,
		ctype.UnionKind,
		ctype.EnumKind,
		ctype.TypedefKind:

		return ctype.Kind(kind), nil
	}
	return "", fmt.Errorf("unsupported definition kind (%s)", kind)
}

// Find implements typeindex.Finder.
func (finder *Finder) Find(
	kind ctype.Kind,
	name string,
	filename string,
) (
	ctype.QualifiedType,
	error,
) {
	if filename != "" &&
		finder.filename != "" &&
		filename != finder.filename &&
		!strings.HasSuffix(finder.filename, "/"+filename) {

		return ctype.QualifiedType{}, nil
	}

	key := defKey{kind: kind, name: name}

	built, ok := finder.built[key]
	if ok {
		return ctype.QualifiedType{Type: built}, nil
	}

	def, ok := finder.defs[key]
	if !ok {
		return ctype.QualifiedType{}, nil
	}

	typ, err := finder.build(key, def)
	if err != nil {
		return ctype.QualifiedType{}, err
	}

	return ctype.QualifiedType{Type: typ}, nil
}

func (finder *Finder) build(
	key defKey,
	def *TypeDef,
) (
	*ctype.Type,
	error,
) {
	typ := &ctype.Type{
		Kind:     key.kind,
		Name:     def.Name,
		ByteSize: def.Size,
		Signed:   def.Signed,
	}

	// Insert before resolving referents so that self-referential
	// definitions (struct foo { struct foo *next; }) terminate.
	finder.built[key] = typ

	err := finder.populate(typ, def)
	if err != nil {
		delete(finder.built, key)
		return nil, err
	}

	return typ, nil
}

func (finder *Finder) populate(typ *ctype.Type, def *TypeDef) error {
	switch typ.Kind {
	case ctype.TypedefKind:
		aliased, err := finder.resolveExpr(def.Type)
		if err != nil {
			return fmt.Errorf("typedef %s: %w", def.Name, err)
		}
		typ.Aliased = aliased

	case ctype.StructKind, ctype.UnionKind:
		if def.Incomplete {
			return nil
		}
		typ.Complete = true

		for _, memberDef := range def.Members {
			member, err := finder.buildMember(def.Name, memberDef)
			if err != nil {
				return err
			}
			typ.Members = append(typ.Members, member)
		}

	case ctype.EnumKind:
		underlying, err := finder.resolveExpr(def.Type)
		if err != nil {
			return fmt.Errorf("enum %s: %w", def.Name, err)
		}
		typ.Underlying = underlying.Type

		for _, enumerator := range def.Enumerators {
			typ.Enumerators = append(
				typ.Enumerators,
				ctype.Enumerator{
					Name:  enumerator.Name,
					Value: enumerator.Value,
				})
		}
	}

	return nil
}

func (finder *Finder) buildMember(
	owner string,
	def MemberDef,
) (
	ctype.Member,
	error,
) {
	member := ctype.Member{
		Name:         def.Name,
		BitOffset:    def.BitOffset,
		BitFieldSize: def.BitFieldSize,
	}

	if def.Inline != nil {
		kind, err := defKind(def.Inline.Kind)
		if err != nil {
			return ctype.Member{}, err
		}

		inline := &ctype.Type{
			Kind:     kind,
			Name:     def.Inline.Name,
			ByteSize: def.Inline.Size,
		}
		err = finder.populate(inline, def.Inline)
		if err != nil {
			return ctype.Member{}, err
		}

		member.Type = ctype.QualifiedType{Type: inline}
		return member, nil
	}

	resolved, err := finder.resolveExpr(def.Type)
	if err != nil {
		return ctype.Member{}, fmt.Errorf(
			"member %s.%s: %w",
			owner,
			def.Name,
			err)
	}

	member.Type = resolved
	return member, nil
}
