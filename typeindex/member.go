package typeindex

import (
	"github.com/shahraaz-cn/drgn/ctype"
)

// FindMember resolves a member of a struct or union by name, flattening
// anonymous nested aggregates.  The cache keys on the underlying type so
// that a struct and a typedef of it share entries.  Once an aggregate has
// been cached, a miss is authoritative.
func (index *Index) FindMember(
	typ *ctype.Type,
	name string,
) (
	MemberValue,
	error,
) {
	underlying := typ.UnderlyingType()
	if underlying == nil || !underlying.HasMembers() {
		return MemberValue{}, &NotAggregateError{Type: typ}
	}

	key := memberKey{outer: underlying, name: name}

	value, ok := index.members[key]
	if ok {
		return value, nil
	}

	_, cached := index.membersCached[underlying]
	if cached {
		return MemberValue{}, &MemberNotFoundError{Type: typ, Name: name}
	}

	index.cacheMembers(underlying, underlying, 0)
	index.membersCached[underlying] = struct{}{}

	value, ok = index.members[key]
	if !ok {
		return MemberValue{}, &MemberNotFoundError{Type: typ, Name: name}
	}

	return value, nil
}

// cacheMembers flattens current's members into the cache under outer,
// expanding anonymous aggregates depth first in source order.  When two
// members flatten to the same name, the first encountered wins; ambiguous
// access is a source-language concern, not the index's.
func (index *Index) cacheMembers(
	outer *ctype.Type,
	current *ctype.Type,
	baseBitOffset uint64,
) {
	for _, member := range current.Members {
		if member.Name != "" {
			key := memberKey{outer: outer, name: member.Name}

			_, ok := index.members[key]
			if ok {
				continue
			}

			index.members[key] = MemberValue{
				Type:         member.Type,
				BitOffset:    baseBitOffset + member.BitOffset,
				BitFieldSize: member.BitFieldSize,
			}
			continue
		}

		// Anonymous member.  Only aggregates contribute nested names.
		nested := member.Type.Type.UnderlyingType()
		if nested == nil || !nested.HasMembers() {
			continue
		}

		index.cacheMembers(outer, nested, baseBitOffset+member.BitOffset)
	}
}
