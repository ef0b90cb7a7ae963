package core

import "context"

// KeyValueStore is the capability the engine binds to. ReadInt reports
// ok=false for a key that was never written; WriteInt is assumed durable by
// the next read and never fails observably.
//
// The engine performs no locking of its own. Implementations must tolerate
// whatever concurrency the host allows on the handle that owns them.
type KeyValueStore interface {
	ReadInt(key string) (value uint64, ok bool)
	WriteInt(key string, value uint64)
}

// Storage is the fallible form implemented by backend adapters.
type Storage interface {
	ReadInt(ctx context.Context, key string) (value uint64, ok bool, err error)
	WriteInt(ctx context.Context, key string, value uint64) error
}

// StoreFuncs adapts a pair of functions into a KeyValueStore. Whatever state
// the functions close over stays owned by the caller and must outlive every
// core bound to it.
type StoreFuncs struct {
	Read  func(key string) (uint64, bool)
	Write func(key string, value uint64)
}

func (f StoreFuncs) ReadInt(key string) (uint64, bool) {
	if f.Read == nil {
		return 0, false
	}
	return f.Read(key)
}

func (f StoreFuncs) WriteInt(key string, value uint64) {
	if f.Write != nil {
		f.Write(key, value)
	}
}

// StoreOption selects the store a new core binds to. It is one of
// DefaultStore or CustomStore.
type StoreOption interface {
	storeOption()
}

// DefaultStore asks the builder to open a built-in backend named by
// Descriptor, e.g. "memory:", "file:/var/lib/app/prompts.json",
// "sqlite:/tmp/prompts.db" or "redis://localhost:6379/0".
type DefaultStore struct {
	Descriptor string
}

// CustomStore binds a caller-supplied store. Binding performs no I/O and
// cannot fail.
type CustomStore struct {
	Store KeyValueStore
}

func (DefaultStore) storeOption() {}
func (CustomStore) storeOption()  {}

var (
	_ KeyValueStore = StoreFuncs{}
	_ StoreOption   = DefaultStore{}
	_ StoreOption   = CustomStore{}
)
