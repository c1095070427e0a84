package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sangminoh/vast/metrics"
	"github.com/sangminoh/vast/vasterr"
	"github.com/sangminoh/vast/value"
)

// Record is one ingested event: Raw is its archival encoding, Fields
// is the flattened set of indexed field paths ("namespace.field") to
// their typed values, used to drive the per-field indexers.
type Record struct {
	Raw    []byte
	Fields map[string]value.Value
}

// ArchiveSink receives one copy of every stamped event (spec §4.5
// "forwards one copy to the archive").
type ArchiveSink interface {
	Put(id uint64, record []byte) ([32]byte, error)
}

// IndexSink receives the other copy, pushed to per-field indexers
// (spec §4.5 "one copy ... to the indexers. Indexers update per-field
// value indexes").
type IndexSink interface {
	Push(id uint64, fields map[string]value.Value)
}

type ingestRequest struct {
	records []Record
	reply   chan error
}

// Importer is the per-ingest-lane actor of spec §4.5: it owns a
// contiguous slice of the monotone event-ID space, stamps arriving
// batches, and ships them to the archive and index sinks.
type Importer struct {
	// LaneID is a random identifier assigned to this importer's ingest
	// lane when it is constructed. Nothing in this package reads it; the
	// persisted state lives under dir regardless of LaneID.
	LaneID uuid.UUID

	dir     string
	archive ArchiveSink
	index   IndexSink
	meta    *MetaStore

	state         State
	batchSize     uint64
	lastReplenish time.Time
	buffered      []Record
	metaDown      bool

	mailbox chan ingestRequest
	done    chan struct{}
}

// replenishWindow is the "within 10s" window of spec §4.5 point 5.
const replenishWindow = 10 * time.Second

// defaultBatchSize seeds batchSize on a fresh importer; spec §4.5
// leaves the initial value unspecified, so this is a reasonable
// starting allocation unit rather than a value the grammar pins down.
const defaultBatchSize = 1024

// NewImporter opens (or resumes) an importer rooted at dir (spec §4.5
// "Restart": read (next, available) from disk, absent files mean a
// fresh start).
func NewImporter(dir string, archive ArchiveSink, index IndexSink, meta *MetaStore) (*Importer, error) {
	state, err := LoadState(dir)
	if err != nil {
		return nil, err
	}
	return &Importer{
		LaneID:    uuid.New(),
		dir:       dir,
		archive:   archive,
		index:     index,
		meta:      meta,
		state:     state,
		batchSize: defaultBatchSize,
		mailbox:   make(chan ingestRequest),
		done:      make(chan struct{}),
	}, nil
}

// Run drives the importer's mailbox until ctx is canceled or a filesystem
// error terminates the actor (spec §7: "Filesystem errors on the ingest
// path terminate the importer actor with the error reason").
func (im *Importer) Run(ctx context.Context) {
	defer close(im.done)
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-im.mailbox:
			err := im.handle(ctx, req.records)
			req.reply <- err
			if _, fatal := err.(*vasterr.FilesystemError); fatal {
				return
			}
		}
	}
}

// Ingest submits a batch of size k (spec §4.5 point 2) and blocks until
// it has been stamped, buffered, or rejected.
func (im *Importer) Ingest(ctx context.Context, records []Record) error {
	reply := make(chan error, 1)
	select {
	case im.mailbox <- ingestRequest{records: records, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (im *Importer) handle(ctx context.Context, records []Record) error {
	if im.metaDown {
		return &vasterr.Unspecified{Msg: "meta store unavailable, cannot stamp new events"}
	}

	k := uint64(len(records))
	if k <= im.state.Available {
		if err := im.ship(ctx, records, im.state.Next); err != nil {
			return err
		}
		im.state.Next += k
		im.state.Available -= k
	} else {
		if err := im.ship(ctx, records[:im.state.Available], im.state.Next); err != nil {
			return err
		}
		im.state.Next += im.state.Available
		im.buffered = append(im.buffered, records[im.state.Available:]...)
		im.state.Available = 0
	}

	metrics.IngestedEvents.Add(float64(k))

	if im.state.Available < im.batchSize/10 || len(im.buffered) > 0 {
		if err := im.replenish(ctx); err != nil {
			return err
		}
	}

	return im.state.Save(im.dir)
}

// replenish implements spec §4.5 point 4-5: adapt batch_size, request
// an allocation of exactly that size from the meta store, and flush any
// buffered remainder into it.
func (im *Importer) replenish(ctx context.Context) error {
	size := im.batchSize
	now := time.Now()
	if !im.lastReplenish.IsZero() && now.Sub(im.lastReplenish) < replenishWindow {
		size *= 2
	}
	if uint64(len(im.buffered)) > size {
		size = uint64(len(im.buffered))
	}

	prior, err := im.meta.Add("id", size)
	if err != nil {
		im.metaDown = true
		return &vasterr.Unspecified{Msg: "meta store replenish failed: " + err.Error()}
	}

	im.batchSize = size
	im.lastReplenish = now
	metrics.BatchSize.Set(float64(im.batchSize))

	im.state.Next = prior
	im.state.Available = im.batchSize

	for len(im.buffered) > 0 && im.state.Available > 0 {
		n := im.state.Available
		if n > uint64(len(im.buffered)) {
			n = uint64(len(im.buffered))
		}
		batch := im.buffered[:n]
		im.buffered = im.buffered[n:]
		if err := im.ship(ctx, batch, im.state.Next); err != nil {
			return err
		}
		im.state.Next += n
		im.state.Available -= n
	}
	return nil
}

// ship fans a stamped batch out to the archive and index sinks
// concurrently (spec §4.5 "same send fan-out" to both pools). A failure
// on either side is a filesystem error per spec §7 and is returned to the
// caller, which terminates the importer actor rather than silently
// advancing past the lost batch.
func (im *Importer) ship(ctx context.Context, records []Record, startID uint64) error {
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		for i, rec := range records {
			if _, err := im.archive.Put(startID+uint64(i), rec.Raw); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		for i, rec := range records {
			im.index.Push(startID+uint64(i), rec.Fields)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return &vasterr.FilesystemError{Path: im.dir, Err: err}
	}
	return nil
}

// BatchSize returns the importer's current adaptive batch size,
// exposed for tests and metrics.
func (im *Importer) BatchSize() uint64 { return im.batchSize }

// State returns a copy of the importer's current (next, available)
// pair.
func (im *Importer) State() State { return im.state }
