package query

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sangminoh/vast/bitmap"
	"github.com/sangminoh/vast/metrics"
)

// Execute evaluates a compiled query tree and returns the bitmap of
// matching positions (spec §4.4 "Execution"/"Streaming"). Every leaf's
// index.Lookup call is dispatched to its own goroutine via errgroup —
// mirroring core/bloombits.Matcher's scheduler/distributor split, one
// goroutine per leaf "column", fan-in combine — rather than evaluating
// the tree strictly left to right; dropping ctx cancels outstanding
// leaf dispatches and the caller never sees their results (spec §5
// "dropping the result bitmap consumer stops further leaf dispatches").
func Execute(ctx context.Context, root CompiledNode) (*bitmap.Bitmap, error) {
	start := time.Now()
	defer func() { metrics.QueryLatency.Observe(time.Since(start).Seconds()) }()

	leaves := collectLeaves(root)
	results := make([]*bitmap.Bitmap, len(leaves))

	g, gctx := errgroup.WithContext(ctx)
	for i, leaf := range leaves {
		i, leaf := i, leaf
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			bm, err := leaf.Idx.Lookup(leaf.Op, leaf.Value)
			if err != nil {
				return err
			}
			results[i] = bm
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	next := 0
	return combine(root, results, &next), nil
}

// collectLeaves walks the tree in the same pre-order combine will use,
// so results[i] lines up with the i-th leaf visited during combination.
func collectLeaves(n CompiledNode) []CompiledLeaf {
	var leaves []CompiledLeaf
	var walk func(CompiledNode)
	walk = func(n CompiledNode) {
		switch t := n.(type) {
		case CompiledAnd:
			walk(t.L)
			walk(t.R)
		case CompiledOr:
			walk(t.L)
			walk(t.R)
		case CompiledLeaf:
			leaves = append(leaves, t)
		}
	}
	walk(n)
	return leaves
}

// combine recombines the already-dispatched leaf results following the
// Boolean tree (spec §4.4: "Combine leaves ... using AND/OR/NAND").
// AND/OR/XOR are commutative and associative at the bitmap level, so
// the order partial results arrived in never matters — only the tree
// shape does.
func combine(n CompiledNode, results []*bitmap.Bitmap, next *int) *bitmap.Bitmap {
	switch t := n.(type) {
	case CompiledAnd:
		l := combine(t.L, results, next)
		r := combine(t.R, results, next)
		metrics.BitmapOps.WithLabelValues("AND").Inc()
		return bitmap.Apply(l, r, bitmap.AND)
	case CompiledOr:
		l := combine(t.L, results, next)
		r := combine(t.R, results, next)
		metrics.BitmapOps.WithLabelValues("OR").Inc()
		return bitmap.Apply(l, r, bitmap.OR)
	case CompiledLeaf:
		bm := results[*next]
		*next++
		return bm
	}
	return bitmap.New()
}

// Select returns the event IDs a result bitmap selects (spec §4.4 "the
// final bitmap enumerates matching event IDs via select<true> iteration").
func Select(bm *bitmap.Bitmap) []uint64 {
	var ids []uint64
	for i := uint64(0); i < bm.Size(); i++ {
		if bm.Get(i) {
			ids = append(ids, i)
		}
	}
	return ids
}
