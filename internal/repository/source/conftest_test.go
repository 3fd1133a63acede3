package source

import (
	"context"

	"github.com/kailas-cloud/plotsearch/internal/db"
)

// fakeHashStore is an in-memory HashStore keyed by Redis key.
type fakeHashStore struct {
	hashes  map[string]map[string]string
	strings map[string]bool // keys holding non-hash values
	scanErr error
	closed  bool
}

func (f *fakeHashStore) Scan(_ context.Context, _ string) ([]string, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	keys := make([]string, 0, len(f.hashes)+len(f.strings))
	for k := range f.hashes {
		keys = append(keys, k)
	}
	for k := range f.strings {
		keys = append(keys, k)
	}
	return keys, nil
}

func (f *fakeHashStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	if f.strings[key] {
		return nil, &db.Error{Op: db.OpHGetAll, Key: key, Err: db.ErrWrongType}
	}
	h, ok := f.hashes[key]
	if !ok {
		return nil, &db.Error{Op: db.OpHGetAll, Key: key, Err: db.ErrKeyNotFound}
	}
	return h, nil
}

func (f *fakeHashStore) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		if f.strings[k] {
			return nil, &db.Error{Op: db.OpHGetAll, Key: k, Err: db.ErrWrongType}
		}
		out[i] = f.hashes[k]
	}
	return out, nil
}

func (f *fakeHashStore) Close() { f.closed = true }
