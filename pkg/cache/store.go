package cache

import (
	"github.com/evelooter/looter/pkg/esi"
)

// Store is the shared response cache injected into the pipeline. It
// combines the detail and name stores behind one handle; implementations
// must keep both write-once per key.
type Store interface {
	esi.DetailCache
	esi.NameCache
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
