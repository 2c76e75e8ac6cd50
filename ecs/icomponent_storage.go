package ecs

import "iter"

// iComponentStorage is an interface for a type-erased component storage.
// Components are addressed by entity slot index.
type iComponentStorage interface {
	Set(index uint32, item any, version uint64) bool
	Delete(index uint32) bool
	Get(index uint32) (any, bool)
	Version(index uint32) uint64
	Has(index uint32) bool
	Len() int
	Iter() iter.Seq[uint32]
}
