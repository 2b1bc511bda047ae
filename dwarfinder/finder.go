package dwarfinder

import (
	"debug/dwarf"
	"debug/elf"
	"fmt"
	"strings"

	"github.com/ianlancetaylor/demangle"

	"github.com/shahraaz-cn/drgn/ctype"
	"github.com/shahraaz-cn/drgn/typeindex"
)

// DW_ATE encodings for base types.
const (
	encodingBoolean      = 2
	encodingFloat        = 4
	encodingSigned       = 5
	encodingSignedChar   = 6
	encodingUnsigned     = 7
	encodingUnsignedChar = 8
)

type nameKey struct {
	kind ctype.Kind
	name string
}

type dieEntry struct {
	offset   dwarf.Offset
	unitName string
}

// Finder resolves named types against an ELF binary's DWARF debug info.
// The info section is walked once up front to index named type and
// subprogram entries; descriptors are converted lazily on lookup.
//
// The finder constructs pointer and array descriptors through the owning
// index's intern tables, so the index's word size must be set before the
// first lookup.
type Finder struct {
	index *typeindex.Index
	data  *dwarf.Data

	wordSize uint64

	entries map[nameKey][]dieEntry

	// Conversion caches.  byOffset covers subprogram entries (which
	// debug/dwarf's type reader does not handle); byType memoises the
	// dwarf.Type graph conversion.
	byOffset map[dwarf.Offset]*ctype.Type
	byType   map[dwarf.Type]*ctype.Type
}

// NewFinder opens an ELF file and indexes its DWARF info.  The returned
// finder's Find method must be registered on index.
func NewFinder(
	index *typeindex.Index,
	path string,
) (
	*Finder,
	error,
) {
	file, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open '%s': %w", path, err)
	}
	defer file.Close()

	data, err := file.DWARF()
	if err != nil {
		return nil, fmt.Errorf(
			"failed to read debug info from '%s': %w",
			path,
			err)
	}

	wordSize := uint64(8)
	if file.Class == elf.ELFCLASS32 {
		wordSize = 4
	}

	finder := &Finder{
		index:    index,
		data:     data,
		wordSize: wordSize,
		entries:  map[nameKey][]dieEntry{},
		byOffset: map[dwarf.Offset]*ctype.Type{},
		byType:   map[dwarf.Type]*ctype.Type{},
	}

	err = finder.indexEntries()
	if err != nil {
		return nil, err
	}

	return finder, nil
}

// WordSize is the pointer size implied by the binary's ELF class.
func (finder *Finder) WordSize() uint64 {
	return finder.wordSize
}

func (finder *Finder) indexEntries() error {
	reader := finder.data.Reader()

	unitName := ""
	for {
		entry, err := reader.Next()
		if err != nil {
			return fmt.Errorf("failed to walk debug info: %w", err)
		}
		if entry == nil {
			break
		}

		switch entry.Tag {
		case dwarf.TagCompileUnit:
			name, ok := entry.Val(dwarf.AttrName).(string)
			if ok {
				unitName = name
			}

		case dwarf.TagStructType, dwarf.TagClassType:
			finder.record(ctype.StructKind, entry, unitName)
		case dwarf.TagUnionType:
			finder.record(ctype.UnionKind, entry, unitName)
		case dwarf.TagEnumerationType:
			finder.record(ctype.EnumKind, entry, unitName)
		case dwarf.TagTypedef:
			finder.record(ctype.TypedefKind, entry, unitName)

		case dwarf.TagBaseType:
			kind, ok := baseTypeKind(entry)
			if ok {
				finder.record(kind, entry, unitName)
			}

		case dwarf.TagSubprogram:
			finder.recordSubprogram(entry, unitName)
		}
	}

	return nil
}

func baseTypeKind(entry *dwarf.Entry) (ctype.Kind, bool) {
	encoding, ok := entry.Val(dwarf.AttrEncoding).(int64)
	if !ok {
		return "", false
	}

	switch encoding {
	case encodingBoolean:
		return ctype.BoolKind, true
	case encodingFloat:
		return ctype.FloatKind, true
	case encodingSigned,
		encodingSignedChar,
		encodingUnsigned,
		encodingUnsignedChar:

		return ctype.IntKind, true
	}
	return "", false
}

func (finder *Finder) record(
	kind ctype.Kind,
	entry *dwarf.Entry,
	unitName string,
) {
	name, ok := entry.Val(dwarf.AttrName).(string)
	if !ok || name == "" {
		return
	}

	key := nameKey{kind: kind, name: name}
	finder.entries[key] = append(
		finder.entries[key],
		dieEntry{
			offset:   entry.Offset,
			unitName: unitName,
		})
}

// recordSubprogram indexes a function under its source name and, for
// mangled C++ linkage names, under the demangled spelling as well.
func (finder *Finder) recordSubprogram(
	entry *dwarf.Entry,
	unitName string,
) {
	finder.record(ctype.FunctionKind, entry, unitName)

	linkageName, ok := entry.Val(dwarf.AttrLinkageName).(string)
	if !ok || linkageName == "" {
		return
	}

	demangled, err := demangle.ToString(linkageName)
	if err != nil {
		return
	}

	key := nameKey{kind: ctype.FunctionKind, name: demangled}
	finder.entries[key] = append(
		finder.entries[key],
		dieEntry{
			offset:   entry.Offset,
			unitName: unitName,
		})
}

func matchesUnit(unitName string, filename string) bool {
	if filename == "" || unitName == filename {
		return true
	}
	return strings.HasSuffix(unitName, "/"+filename)
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
	for _, entry := range finder.entries[nameKey{kind: kind, name: name}] {
		if !matchesUnit(entry.unitName, filename) {
			continue
		}

		if kind == ctype.FunctionKind {
			typ, err := finder.convertSubprogram(entry.offset)
			if err != nil {
				return ctype.QualifiedType{}, err
			}
			return ctype.QualifiedType{Type: typ}, nil
		}

		dwarfType, err := finder.data.Type(entry.offset)
		if err != nil {
			return ctype.QualifiedType{}, fmt.Errorf(
				"failed to read type '%s': %w",
				name,
				err)
		}

		return finder.convert(dwarfType)
	}

	return ctype.QualifiedType{}, nil
}

// convertSubprogram builds a function descriptor from a subprogram DIE's
// return type and formal parameters.
func (finder *Finder) convertSubprogram(
	offset dwarf.Offset,
) (
	*ctype.Type,
	error,
) {
	cached, ok := finder.byOffset[offset]
	if ok {
		return cached, nil
	}

	reader := finder.data.Reader()
	reader.Seek(offset)

	entry, err := reader.Next()
	if err != nil {
		return nil, fmt.Errorf("failed to read subprogram: %w", err)
	}

	typ := &ctype.Type{
		Kind:   ctype.FunctionKind,
		Return: ctype.QualifiedType{Type: ctype.VoidType},
	}
	finder.byOffset[offset] = typ

	returnOffset, ok := entry.Val(dwarf.AttrType).(dwarf.Offset)
	if ok {
		returnType, err := finder.convertAt(returnOffset)
		if err != nil {
			return nil, err
		}
		typ.Return = returnType
	}

	if !entry.Children {
		return typ, nil
	}

	depth := 0
	for {
		child, err := reader.Next()
		if err != nil {
			return nil, fmt.Errorf(
				"failed to read subprogram parameters: %w",
				err)
		}
		if child == nil {
			break
		}

		if child.Tag == 0 {
			if depth == 0 {
				break
			}
			depth--
			continue
		}

		if depth == 0 {
			switch child.Tag {
			case dwarf.TagFormalParameter:
				parameterOffset, ok := child.Val(dwarf.AttrType).(dwarf.Offset)
				if ok {
					parameterType, err := finder.convertAt(parameterOffset)
					if err != nil {
						return nil, err
					}

					name, _ := child.Val(dwarf.AttrName).(string)
					typ.Parameters = append(
						typ.Parameters,
						ctype.Parameter{
							Name: name,
							Type: parameterType,
						})
				}

			case dwarf.TagUnspecifiedParameters:
				typ.Variadic = true
			}
		}

		if child.Children {
			depth++
		}
	}

	return typ, nil
}

func (finder *Finder) convertAt(
	offset dwarf.Offset,
) (
	ctype.QualifiedType,
	error,
) {
	dwarfType, err := finder.data.Type(offset)
	if err != nil {
		return ctype.QualifiedType{}, fmt.Errorf(
			"failed to read referenced type: %w",
			err)
	}
	return finder.convert(dwarfType)
}
