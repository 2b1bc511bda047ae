package typeindex

import (
	"fmt"

	"github.com/shahraaz-cn/drgn/ctype"
)

// Error categories.  Consumers branch on these with errors.Is; the
// structured error types below all unwrap to one of them.
var (
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrNotFound        = fmt.Errorf("not found")
	ErrWrongKind       = fmt.Errorf("wrong type kind")
)

// TypeNotFoundError reports that no finder resolved a named type.
type TypeNotFoundError struct {
	Kind     ctype.Kind
	Name     string
	Filename string
}

func (err *TypeNotFoundError) Error() string {
	spelling := string(err.Kind)
	name := err.Name
	if err.Kind == ctype.StructKind ||
		err.Kind == ctype.UnionKind ||
		err.Kind == ctype.EnumKind {

		name = spelling + " " + name
	} else if err.Kind != ctype.TypedefKind {
		name = spelling + " type " + name
	}

	if err.Filename != "" {
		return fmt.Sprintf("could not find '%s' in '%s'", name, err.Filename)
	}
	return fmt.Sprintf("could not find '%s'", name)
}

func (err *TypeNotFoundError) Unwrap() error {
	return ErrNotFound
}

// MemberNotFoundError reports an authoritative member-cache miss.
type MemberNotFoundError struct {
	Type *ctype.Type
	Name string
}

func (err *MemberNotFoundError) Error() string {
	return fmt.Sprintf("'%s' has no member '%s'", err.Type, err.Name)
}

func (err *MemberNotFoundError) Unwrap() error {
	return ErrNotFound
}

// KindMismatchError reports a structural mismatch: a finder returned a
// descriptor of the wrong kind, or an operation was applied to a kind
// that does not support it.
type KindMismatchError struct {
	Want ctype.Kind
	Got  *ctype.Type
}

func (err *KindMismatchError) Error() string {
	return fmt.Sprintf("expected %s type, found '%s'", err.Want, err.Got)
}

func (err *KindMismatchError) Unwrap() error {
	return ErrWrongKind
}

// NotAggregateError reports a member lookup on a non-struct, non-union
// type.
type NotAggregateError struct {
	Type *ctype.Type
}

func (err *NotAggregateError) Error() string {
	return fmt.Sprintf("'%s' is not a structure or union", err.Type)
}

func (err *NotAggregateError) Unwrap() error {
	return ErrWrongKind
}
