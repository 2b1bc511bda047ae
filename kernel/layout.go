// Package kernel resolves the structure shapes a linux kernel traversal
// needs, using only type index operations.  Kernel versions move and
// rename members; each probe attempts the modern shape first and falls
// back on a lookup miss.  A type error is never a version signal and
// always propagates.
package kernel

import (
	"errors"

	"github.com/shahraaz-cn/drgn/ctype"
	"github.com/shahraaz-cn/drgn/typeindex"
)

type PIDTableKind string

const (
	// 4.15 and later store the namespace's PIDs in an IDR.
	IDRTable = PIDTableKind("idr")
	// Older kernels use the global pid_hash table plus a per-namespace
	// bitmap.
	HashTable = PIDTableKind("hash")
)

// PIDTable describes where a traversal finds the PID table for a
// pid_namespace.  Offsets are bit offsets into struct pid_namespace.
type PIDTable struct {
	Kind PIDTableKind

	// IDRTable only.
	IDROffset uint64

	// HashTable only.
	PIDMapOffset  uint64
	LastPIDOffset uint64
}

func DetectPIDTable(index *typeindex.Index) (PIDTable, error) {
	namespace, err := index.Find(ctype.StructKind, "pid_namespace", "")
	if err != nil {
		return PIDTable{}, err
	}

	idr, err := index.FindMember(namespace.Type, "idr")
	if err == nil {
		return PIDTable{
			Kind:      IDRTable,
			IDROffset: idr.BitOffset,
		}, nil
	}
	if !errors.Is(err, typeindex.ErrNotFound) {
		return PIDTable{}, err
	}

	pidMap, err := index.FindMember(namespace.Type, "pidmap")
	if err != nil {
		return PIDTable{}, err
	}

	lastPID, err := index.FindMember(namespace.Type, "last_pid")
	if err != nil {
		return PIDTable{}, err
	}

	return PIDTable{
		Kind:          HashTable,
		PIDMapOffset:  pidMap.BitOffset,
		LastPIDOffset: lastPID.BitOffset,
	}, nil
}

type RadixTreeKind string

const (
	// 4.20 replaced the radix tree internals with the XArray.
	XArrayTree = RadixTreeKind("xarray")
	RadixTree  = RadixTreeKind("radix")
)

// RadixTreeRoot describes how to reach the root node pointer of a
// radix_tree_root across the XArray transition.
type RadixTreeRoot struct {
	Kind RadixTreeKind

	// Bit offset of xa_head (xarray kernels) or rnode (older kernels)
	// within struct radix_tree_root.
	RootOffset uint64
}

func DetectRadixTree(index *typeindex.Index) (RadixTreeRoot, error) {
	root, err := index.Find(ctype.StructKind, "radix_tree_root", "")
	if err != nil {
		return RadixTreeRoot{}, err
	}

	head, err := index.FindMember(root.Type, "xa_head")
	if err == nil {
		return RadixTreeRoot{
			Kind:       XArrayTree,
			RootOffset: head.BitOffset,
		}, nil
	}
	if !errors.Is(err, typeindex.ErrNotFound) {
		return RadixTreeRoot{}, err
	}

	node, err := index.FindMember(root.Type, "rnode")
	if err != nil {
		return RadixTreeRoot{}, err
	}

	return RadixTreeRoot{
		Kind:       RadixTree,
		RootOffset: node.BitOffset,
	}, nil
}

// TaskFields resolves the task_struct members a task list traversal
// dereferences, in one shot.
type TaskFields struct {
	PID   typeindex.MemberValue
	Comm  typeindex.MemberValue
	Tasks typeindex.MemberValue
}

func ResolveTaskFields(index *typeindex.Index) (TaskFields, error) {
	task, err := index.Find(ctype.StructKind, "task_struct", "")
	if err != nil {
		return TaskFields{}, err
	}

	fields := TaskFields{}

	fields.PID, err = index.FindMember(task.Type, "pid")
	if err != nil {
		return TaskFields{}, err
	}

	fields.Comm, err = index.FindMember(task.Type, "comm")
	if err != nil {
		return TaskFields{}, err
	}

	fields.Tasks, err = index.FindMember(task.Type, "tasks")
	if err != nil {
		return TaskFields{}, err
	}

	return fields, nil
}
