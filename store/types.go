package store

import (
	matching "github.com/ryancwalsh/donation-matching"
)

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = matching.ReadOnlyKVStore
type SetDeleter = matching.SetDeleter
type KVStore = matching.KVStore
type Iterator = matching.Iterator
type CacheableKVStore = matching.CacheableKVStore
type KVCacheWrap = matching.KVCacheWrap
type CommitKVStore = matching.CommitKVStore
type CommitID = matching.CommitID

// Batch can write multiple ops atomically to an underlying KVStore
type Batch interface {
	SetDeleter
	Write() error
}

// Model groups together key and value to return
type Model struct {
	Key   []byte
	Value []byte
}

// Pair is a simple helper to build a Model.
func Pair(key, value []byte) Model {
	return Model{Key: key, Value: value}
}

type opKind int32

const (
	setKind opKind = iota + 1
	delKind
)

// Op is either set or delete
type Op struct {
	kind  opKind
	key   []byte
	value []byte // only for set
}

// IsSetOp returns true if it is setting (false implies delete)
func (o Op) IsSetOp() bool {
	return o.kind == setKind
}

// Key returns the key that the operation is applied to.
func (o Op) Key() []byte {
	return o.key
}

// Apply performs the stored operation on a writable store
func (o Op) Apply(out SetDeleter) error {
	switch o.kind {
	case setKind:
		return out.Set(o.key, o.value)
	case delKind:
		return out.Delete(o.key)
	default:
		panic("Unknown opKind")
	}
}

// SetOp is a helper to create a set operation
func SetOp(key, value []byte) Op {
	return Op{
		kind:  setKind,
		key:   key,
		value: value,
	}
}

// DelOp is a helper to create a del operation
func DelOp(key []byte) Op {
	return Op{
		kind: delKind,
		key:  key,
	}
}
