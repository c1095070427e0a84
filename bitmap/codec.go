package bitmap

import (
	"encoding/binary"
	"fmt"

	"github.com/sangminoh/vast/vasterr"
)

// Encode serializes the bitmap to its wire form: a run-length list of
// (word, length) pairs, one per block, in the same order Range() yields
// them. This is the "content contract required for replay" (spec §6): an
// index bitmap round-trips byte-for-byte through Encode/Decode, which is
// what lets the archive and index pools persist and later rehydrate a
// segment's bitmaps independent of how it was originally built.
//
// Adapted from go-ethereum's common/bitutil run-length codec (there applied
// to a flat byte stream; here applied directly to the block sequence, so
// no trial decompression/resizing loop is needed).
func (bm *Bitmap) Encode() []byte {
	buf := make([]byte, 0, 8+len(bm.blocks)*16)
	var hdr [8]byte
	binary.LittleEndian.PutUint64(hdr[:], uint64(len(bm.blocks)))
	buf = append(buf, hdr[:]...)
	for _, blk := range bm.blocks {
		var rec [16]byte
		binary.LittleEndian.PutUint64(rec[0:8], blk.Word)
		binary.LittleEndian.PutUint64(rec[8:16], blk.N)
		buf = append(buf, rec[:]...)
	}
	return buf
}

// Decode reconstructs a bitmap previously produced by Encode.
func Decode(data []byte) (*Bitmap, error) {
	if len(data) < 8 {
		return nil, &vasterr.FilesystemError{Path: "<bitmap>", Err: fmt.Errorf("truncated header: %d bytes", len(data))}
	}
	count := binary.LittleEndian.Uint64(data[:8])
	data = data[8:]
	if uint64(len(data)) != count*16 {
		return nil, &vasterr.FilesystemError{Path: "<bitmap>", Err: fmt.Errorf("block table size mismatch: want %d bytes, have %d", count*16, len(data))}
	}
	bm := New()
	bm.blocks = make([]Block, 0, count)
	for i := uint64(0); i < count; i++ {
		rec := data[i*16 : i*16+16]
		word := binary.LittleEndian.Uint64(rec[0:8])
		n := binary.LittleEndian.Uint64(rec[8:16])
		bm.blocks = append(bm.blocks, Block{Word: word, N: n})
		bm.size += n
	}
	return bm, nil
}
