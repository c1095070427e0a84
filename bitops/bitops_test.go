package bitops

import "testing"

func TestLSBMask(t *testing.T) {
	tests := []struct {
		n    uint
		want uint64
	}{
		{0, 0},
		{1, 0x1},
		{4, 0xf},
		{63, (uint64(1) << 63) - 1},
		{64, ^uint64(0)},
	}
	for _, tc := range tests {
		if got := LSBMask(tc.n); got != tc.want {
			t.Errorf("LSBMask(%d) = %#x, want %#x", tc.n, got, tc.want)
		}
	}
}

func TestPopcount(t *testing.T) {
	if got := Popcount(0); got != 0 {
		t.Errorf("Popcount(0) = %d, want 0", got)
	}
	if got := Popcount(^uint64(0)); got != 64 {
		t.Errorf("Popcount(all-ones) = %d, want 64", got)
	}
	if got := Popcount(0b1011); got != 3 {
		t.Errorf("Popcount(0b1011) = %d, want 3", got)
	}
}

func TestAllOrNone(t *testing.T) {
	if !AllOrNone(0, 64) {
		t.Error("all-zero word should be homogeneous")
	}
	if !AllOrNone(^uint64(0), 64) {
		t.Error("all-one word should be homogeneous")
	}
	if AllOrNone(0b10, 64) {
		t.Error("mixed word should not be homogeneous")
	}
}

func TestRankSelectInverse(t *testing.T) {
	// bits (lsb first): 1,1,0,0,0,0,0,0,1 ...
	x := uint64(0b1) | uint64(0b1)<<1 | uint64(0b1)<<8
	for i := uint(0); i < 64; i++ {
		r := Rank(x, true, i)
		if r == 0 {
			continue
		}
		pos := Select(x, true, r)
		if pos > i {
			t.Fatalf("rank/select mismatch at i=%d: rank=%d select(rank)=%d", i, r, pos)
		}
	}
}

func TestSelectNotFound(t *testing.T) {
	if got := Select(0, true, 1); got != NPos {
		t.Errorf("Select(0, true, 1) = %d, want NPos", got)
	}
	if got := Select(^uint64(0), true, 0); got != NPos {
		t.Errorf("Select(x, true, 0) = %d, want NPos (1-based)", got)
	}
}

func TestReverseRoundTrip(t *testing.T) {
	x := uint64(0x0102030405060708)
	if got := Reverse(Reverse(x)); got != x {
		t.Errorf("Reverse(Reverse(x)) = %#x, want %#x", got, x)
	}
}

func TestWordsForBits(t *testing.T) {
	cases := map[uint64]uint64{0: 0, 1: 1, 64: 1, 65: 2, 128: 2, 129: 3}
	for n, want := range cases {
		if got := WordsForBits(n); got != want {
			t.Errorf("WordsForBits(%d) = %d, want %d", n, got, want)
		}
	}
}
