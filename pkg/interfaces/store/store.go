package store

import "context"

// EntryStore persists opaque cache entries keyed by query name.
// Implementations decide the physical layout; the disk store keeps
// one file per name inside a configured directory.
type EntryStore interface {
	// Read returns the stored bytes for name. The boolean reports
	// whether an entry exists; absence is not an error.
	Read(ctx context.Context, name string) ([]byte, bool, error)
	// Write replaces the entry for name. Readers must never observe
	// a partially written entry.
	Write(ctx context.Context, name string, data []byte) error
	// Delete removes the entry for name. Deleting an absent entry is
	// a no-op and returns nil.
	Delete(ctx context.Context, name string) error
}

// Nop store reports misses and ignores writes.
type Nop struct{}

var _ EntryStore = (*Nop)(nil)

func (n *Nop) Read(ctx context.Context, name string) ([]byte, bool, error) { return nil, false, nil }
func (n *Nop) Write(ctx context.Context, name string, data []byte) error   { return nil }
func (n *Nop) Delete(ctx context.Context, name string) error               { return nil }
