package esi

import "context"

// DetailCache is the killmail-detail side of the shared response cache.
// Entries are write-once per ID; a Put for an existing ID is a no-op.
type DetailCache interface {
	GetDetail(ctx context.Context, id int64) (Killmail, bool)
	PutDetail(ctx context.Context, id int64, km Killmail)
	ContainsDetail(ctx context.Context, id int64) bool
}

// NameCache is the entity-name side of the shared response cache.
// A given ID always resolves to the same name for the process lifetime.
type NameCache interface {
	GetName(ctx context.Context, id int64) (string, bool)
	PutName(ctx context.Context, id int64, name string)
	ContainsName(ctx context.Context, id int64) bool
}
