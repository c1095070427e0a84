package ingest

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/sangminoh/vast/vasterr"
)

// Archive is the content-addressed event store of spec §6 ("content
// contract required for replay"): events are durably keyed by their
// stamped event ID, with a digest returned on Put so callers can verify
// what was stored without a round trip. A fastcache layer in front of
// goleveldb absorbs repeated reads of recently ingested (and therefore
// likely recently queried) events.
type Archive struct {
	db    *leveldb.DB
	cache *fastcache.Cache
}

// OpenArchive opens (or creates) the archive at path with an in-memory
// read cache of cacheBytes.
func OpenArchive(path string, cacheBytes int) (*Archive, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, &vasterr.FilesystemError{Path: path, Err: err}
	}
	return &Archive{db: db, cache: fastcache.New(cacheBytes)}, nil
}

func idKey(id uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	return buf[:]
}

// Put durably stores record under id and returns its content digest.
func (a *Archive) Put(id uint64, record []byte) ([32]byte, error) {
	digest := sha256.Sum256(record)
	key := idKey(id)
	if err := a.db.Put(key, record, nil); err != nil {
		return digest, &vasterr.FilesystemError{Path: "archive", Err: err}
	}
	a.cache.Set(key, record)
	return digest, nil
}

// Get retrieves the record stored under id.
func (a *Archive) Get(id uint64) ([]byte, error) {
	key := idKey(id)
	if cached := a.cache.Get(nil, key); cached != nil {
		return cached, nil
	}
	record, err := a.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, &vasterr.ValidationError{Msg: "no archived record for that event ID"}
		}
		return nil, &vasterr.FilesystemError{Path: "archive", Err: err}
	}
	a.cache.Set(key, record)
	return record, nil
}

// Close closes the backing database.
func (a *Archive) Close() error {
	return a.db.Close()
}
