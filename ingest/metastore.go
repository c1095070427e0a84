package ingest

import (
	"encoding/binary"
	"errors"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/sangminoh/vast/vasterr"
)

// addRequest is the typed message a MetaStore's mailbox carries (spec
// §4.5 "Replenish: send add(key, batch_size) to meta store; await
// reply carrying the prior counter value").
type addRequest struct {
	key   string
	n     uint64
	reply chan addReply
}

type addReply struct {
	prior uint64
	err   error
}

// MetaStore is the singleton ID authority of spec §4.5: a durable
// counter keyed by name, backed by goleveldb so the counter survives
// process restarts. It runs as a single-threaded actor over its own
// request channel rather than guarding the counter with a mutex,
// matching the actor model's "no intra-actor locking required".
type MetaStore struct {
	db      *leveldb.DB
	mailbox chan addRequest
	done    chan struct{}
}

// OpenMetaStore opens (or creates) the meta store at path and starts
// its serving goroutine.
func OpenMetaStore(path string) (*MetaStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, &vasterr.FilesystemError{Path: path, Err: err}
	}
	ms := &MetaStore{db: db, mailbox: make(chan addRequest), done: make(chan struct{})}
	go ms.run()
	return ms, nil
}

func (ms *MetaStore) run() {
	for req := range ms.mailbox {
		prior, err := ms.handleAdd(req.key, req.n)
		req.reply <- addReply{prior: prior, err: err}
	}
	close(ms.done)
}

func (ms *MetaStore) handleAdd(key string, n uint64) (uint64, error) {
	var prior uint64
	raw, err := ms.db.Get([]byte(key), nil)
	switch {
	case err == nil:
		prior = binary.BigEndian.Uint64(raw)
	case errors.Is(err, leveldb.ErrNotFound):
		prior = 0
	default:
		return 0, &vasterr.FilesystemError{Path: key, Err: err}
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], prior+n)
	if err := ms.db.Put([]byte(key), buf[:], nil); err != nil {
		return 0, &vasterr.FilesystemError{Path: key, Err: err}
	}
	return prior, nil
}

// Add durably increments the counter named key by n and returns its
// prior value, the allocation the caller now owns exclusively.
func (ms *MetaStore) Add(key string, n uint64) (uint64, error) {
	reply := make(chan addReply, 1)
	ms.mailbox <- addRequest{key: key, n: n, reply: reply}
	r := <-reply
	return r.prior, r.err
}

// Close stops the serving goroutine and closes the backing database.
func (ms *MetaStore) Close() error {
	close(ms.mailbox)
	<-ms.done
	return ms.db.Close()
}
