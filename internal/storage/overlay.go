package storage

import (
	"errors"
	"strings"
)

// Overlay buffers writes and deletes on top of a base DB. Reads see the
// pending mutations; the base is untouched until Commit. Discarding the
// overlay (or simply dropping it) leaves the base exactly as it was, which
// is what makes a multi-step operation behave as a single atomic unit.
type Overlay struct {
	base    DB
	writes  map[string][]byte
	deletes map[string]struct{}
}

// NewOverlay creates an empty overlay over base.
func NewOverlay(base DB) *Overlay {
	return &Overlay{
		base:    base,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

// Get retrieves a value, preferring pending writes over the base.
func (o *Overlay) Get(key []byte) ([]byte, error) {
	k := string(key)
	if v, ok := o.writes[k]; ok {
		return v, nil
	}
	if _, ok := o.deletes[k]; ok {
		return nil, errors.New("key not found")
	}
	return o.base.Get(key)
}

// Put records a pending write.
func (o *Overlay) Put(key, value []byte) error {
	k := string(key)
	v := make([]byte, len(value))
	copy(v, value)
	o.writes[k] = v
	delete(o.deletes, k)
	return nil
}

// Delete records a pending delete.
func (o *Overlay) Delete(key []byte) error {
	k := string(key)
	delete(o.writes, k)
	o.deletes[k] = struct{}{}
	return nil
}

// Has checks for a key through the pending mutations.
func (o *Overlay) Has(key []byte) (bool, error) {
	k := string(key)
	if _, ok := o.writes[k]; ok {
		return true, nil
	}
	if _, ok := o.deletes[k]; ok {
		return false, nil
	}
	return o.base.Has(key)
}

// ForEach iterates over the merged view: base entries not overridden or
// deleted, then pending writes matching the prefix.
func (o *Overlay) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	err := o.base.ForEach(prefix, func(key, value []byte) error {
		k := string(key)
		if _, ok := o.writes[k]; ok {
			return nil
		}
		if _, ok := o.deletes[k]; ok {
			return nil
		}
		return fn(key, value)
	})
	if err != nil {
		return err
	}
	p := string(prefix)
	for k, v := range o.writes {
		if strings.HasPrefix(k, p) {
			if err := fn([]byte(k), v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Commit applies all pending mutations to the base, atomically when the base
// supports batching.
func (o *Overlay) Commit() error {
	if batcher, ok := o.base.(Batcher); ok {
		batch := batcher.NewBatch()
		for k, v := range o.writes {
			if err := batch.Put([]byte(k), v); err != nil {
				return err
			}
		}
		for k := range o.deletes {
			if err := batch.Delete([]byte(k)); err != nil {
				return err
			}
		}
		if err := batch.Commit(); err != nil {
			return err
		}
	} else {
		for k, v := range o.writes {
			if err := o.base.Put([]byte(k), v); err != nil {
				return err
			}
		}
		for k := range o.deletes {
			if err := o.base.Delete([]byte(k)); err != nil {
				return err
			}
		}
	}
	o.Discard()
	return nil
}

// Discard drops all pending mutations.
func (o *Overlay) Discard() {
	o.writes = make(map[string][]byte)
	o.deletes = make(map[string]struct{})
}

// Close is a no-op. The base DB manages its own lifecycle.
func (o *Overlay) Close() error {
	return nil
}

// Update runs fn against an overlay of db and commits the buffered writes
// only if fn returns nil. On error every pending mutation is discarded and
// the base DB is left untouched.
func Update(db DB, fn func(DB) error) error {
	ov := NewOverlay(db)
	if err := fn(ov); err != nil {
		return err
	}
	return ov.Commit()
}
