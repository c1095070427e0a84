package bitmap

import "testing"

// TestScenario1 matches spec §8 scenario 1.
func TestScenario1(t *testing.T) {
	bm := New()
	for _, b := range []bool{true, true, false, false, false, false, false, false, true} {
		bm.AppendBits(b, 1)
	}
	if got := bm.Size(); got != 9 {
		t.Fatalf("size = %d, want 9", got)
	}
	if got := bm.Count(true); got != 3 {
		t.Fatalf("count<true> = %d, want 3", got)
	}
	if got := Select(bm, true, 2); got != 1 {
		t.Fatalf("select<true>(2) = %d, want 1", got)
	}
	if got := Rank(bm, true, 8); got != 3 {
		t.Fatalf("rank<true>(8) = %d, want 3", got)
	}
}

// TestScenario2 matches spec §8 scenario 2.
func TestScenario2(t *testing.T) {
	a := New()
	a.AppendBits(true, 2)
	a.AppendBits(false, 62)
	a.AppendBits(false, 2)

	b := New()
	b.AppendBits(false, 64)
	b.AppendBits(true, 2)

	or := Apply(a, b, OR)
	if got := or.Size(); got != 66 {
		t.Fatalf("size = %d, want 66", got)
	}
	// 4 bits set: positions 0,1 from A and 64,65 from B; positions 2..63 are
	// clear in both operands. See DESIGN.md for the corrected popcount.
	if got := or.Count(true); got != 4 {
		t.Fatalf("popcount = %d, want 4", got)
	}
	for i := uint64(0); i < 2; i++ {
		if !or.Get(i) {
			t.Errorf("position %d should be set", i)
		}
	}
	for i := uint64(2); i < 64; i++ {
		if or.Get(i) {
			t.Errorf("position %d should be clear", i)
		}
	}
	for i := uint64(64); i < 66; i++ {
		if !or.Get(i) {
			t.Errorf("position %d should be set", i)
		}
	}
}

func TestInvariantCountSumsToSize(t *testing.T) {
	bm := New()
	bm.AppendBits(true, 10)
	bm.AppendBits(false, 200)
	bm.AppendBlock(0b10110, 5)
	if bm.Count(true)+bm.Count(false) != bm.Size() {
		t.Fatalf("count<true>+count<false> = %d, want %d", bm.Count(true)+bm.Count(false), bm.Size())
	}
}

func TestInvariantRankSumsToIndexPlusOne(t *testing.T) {
	bm := New()
	bm.AppendBits(true, 3)
	bm.AppendBits(false, 5)
	bm.AppendBlock(0b1011001, 7)
	for i := uint64(0); i < bm.Size(); i++ {
		if got := Rank(bm, true, i) + Rank(bm, false, i); got != i+1 {
			t.Fatalf("rank<true>(%d)+rank<false>(%d) = %d, want %d", i, i, got, i+1)
		}
	}
}

func TestSelectRoundTrip(t *testing.T) {
	bm := New()
	bm.AppendBlock(0b10110100, 8)
	bm.AppendBits(true, 100)
	bm.AppendBits(false, 3)
	for _, b := range []bool{true, false} {
		n := bm.Count(b)
		for i := uint64(1); i <= n; i++ {
			pos := Select(bm, b, i)
			if pos == NPos {
				t.Fatalf("select<%v>(%d) unexpectedly not found", b, i)
			}
			if bm.Get(pos) != b {
				t.Fatalf("bit at select<%v>(%d)=%d is %v, want %v", b, i, pos, bm.Get(pos), b)
			}
		}
	}
}

func TestBitwiseIdentities(t *testing.T) {
	a := New()
	a.AppendBits(true, 5)
	a.AppendBits(false, 130)
	a.AppendBlock(0b1101, 4)

	notA := Not(a)

	if got := Apply(a, a, AND); !bitmapEqual(got, a) {
		t.Error("A AND A != A")
	}
	if got := Apply(a, a, OR); !bitmapEqual(got, a) {
		t.Error("A OR A != A")
	}
	xor := Apply(a, a, XOR)
	if xor.Count(true) != 0 {
		t.Error("A XOR A has set bits")
	}
	andNot := Apply(a, notA, AND)
	if andNot.Count(true) != 0 {
		t.Error("A AND NOT A has set bits")
	}
	orNot := Apply(a, notA, OR)
	if orNot.Count(false) != 0 {
		t.Error("A OR NOT A has clear bits")
	}
}

func TestDeMorgan(t *testing.T) {
	a := New()
	a.AppendBits(true, 3)
	a.AppendBits(false, 70)
	a.AppendBlock(0b0110, 4)

	b := New()
	b.AppendBits(false, 40)
	b.AppendBits(true, 37)

	lhs := Not(Apply(a, b, AND))
	rhs := Apply(Not(a), Not(b), OR)
	if !bitmapEqual(lhs, rhs) {
		t.Error("NOT(A AND B) != NOT A OR NOT B")
	}
}

func bitmapEqual(a, b *Bitmap) bool {
	if a.Size() != b.Size() {
		return false
	}
	for i := uint64(0); i < a.Size(); i++ {
		if a.Get(i) != b.Get(i) {
			return false
		}
	}
	return true
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	bm := New()
	bm.AppendBits(true, 5)
	bm.AppendBits(false, 300)
	bm.AppendBlock(0b101101, 6)

	data := bm.Encode()
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bitmapEqual(bm, got) {
		t.Fatalf("round trip mismatch")
	}
}

func TestSliceAndZeroExtend(t *testing.T) {
	bm := New()
	bm.AppendBits(true, 10)
	bm.AppendBits(false, 10)

	s := bm.Slice(5, 15)
	if s.Size() != 10 {
		t.Fatalf("slice size = %d, want 10", s.Size())
	}
	for i := uint64(0); i < 5; i++ {
		if !s.Get(i) {
			t.Errorf("slice position %d should be set", i)
		}
	}
	for i := uint64(5); i < 10; i++ {
		if s.Get(i) {
			t.Errorf("slice position %d should be clear", i)
		}
	}

	s.ZeroExtend(20)
	if s.Size() != 20 {
		t.Fatalf("after zero-extend size = %d, want 20", s.Size())
	}
}

// TestApplyStaleFillReclassification exercises a fill whose remaining
// length drops below Width mid-Apply (after a both-fill step consumes
// part of a longer fill against a shorter one): the cursor must
// reclassify it as a literal on the next iteration rather than keep
// treating it as a fill and decrementing its counter by a full Width.
func TestApplyStaleFillReclassification(t *testing.T) {
	l := New()
	l.AppendBits(true, 68)
	l.AppendBits(false, 1000)

	r := New()
	r.AppendBits(true, 65)
	r.AppendBlock(0b101, 3)

	got := Apply(l, r, AND)
	for i := uint64(0); i < 65; i++ {
		if !got.Get(i) {
			t.Errorf("position %d should be set (both operands true)", i)
		}
	}
	for i := uint64(65); i < 68; i++ {
		want := (uint64(0b101)>>(i-65))&1 == 1
		if got.Get(i) != want {
			t.Errorf("position %d = %v, want %v", i, got.Get(i), want)
		}
	}
	for i := uint64(68); i < got.Size(); i++ {
		if got.Get(i) {
			t.Errorf("position %d should be clear (L is false past 68)", i)
		}
	}
}

func TestTruncateMasksFillSplitToLiteral(t *testing.T) {
	bm := New()
	bm.AppendBits(true, 100)
	bm.Truncate(30)

	if got := bm.Count(true); got != 30 {
		t.Fatalf("count<true> = %d, want 30", got)
	}
	if got := bm.Count(false); got != 0 {
		t.Fatalf("count<false> = %d, want 0", got)
	}
	if got := bm.Count(true) + bm.Count(false); got != bm.Size() {
		t.Fatalf("count<true>+count<false> = %d, want size %d", got, bm.Size())
	}
}

func TestBuilder(t *testing.T) {
	bld := NewBuilder()
	want := []bool{true, false, true, true, false, false, false, true, true, true}
	for _, b := range want {
		bld.Push(b)
	}
	bm := bld.Bitmap()
	if bm.Size() != uint64(len(want)) {
		t.Fatalf("size = %d, want %d", bm.Size(), len(want))
	}
	for i, b := range want {
		if bm.Get(uint64(i)) != b {
			t.Errorf("position %d = %v, want %v", i, bm.Get(uint64(i)), b)
		}
	}
}
