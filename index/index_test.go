package index

import (
	"net/netip"
	"testing"

	"github.com/sangminoh/vast/value"
)

func positions(bm interface {
	Get(uint64) bool
	Size() uint64
}) []uint64 {
	var out []uint64
	for i := uint64(0); i < bm.Size(); i++ {
		if bm.Get(i) {
			out = append(out, i)
		}
	}
	return out
}

func pushAll(idx Index, vals []value.Value) {
	for i := range vals {
		v := vals[i]
		idx.Push(&v)
	}
}

func TestArithmeticIndexEquality(t *testing.T) {
	idx := NewArithmeticIndex(value.KindInt)
	pushAll(idx, []value.Value{value.Int(3), value.Int(5), value.Int(3), value.Int(7)})
	bm, err := idx.Lookup(OpEQ, value.Int(3))
	if err != nil {
		t.Fatal(err)
	}
	got := positions(bm)
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestArithmeticIndexRange(t *testing.T) {
	idx := NewArithmeticIndex(value.KindInt)
	pushAll(idx, []value.Value{value.Int(-5), value.Int(0), value.Int(5), value.Int(10)})
	bm, err := idx.Lookup(OpGE, value.Int(0))
	if err != nil {
		t.Fatal(err)
	}
	got := positions(bm)
	if len(got) != 3 || got[0] != 1 {
		t.Fatalf("got %v", got)
	}
	bm, err = idx.Lookup(OpLT, value.Int(0))
	if err != nil {
		t.Fatal(err)
	}
	got = positions(bm)
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestStringIndexMatch(t *testing.T) {
	idx := NewStringIndex()
	pushAll(idx, []value.Value{value.String("foo.com"), value.String("bar.com"), value.String("foo.net")})
	bm, err := idx.Lookup(OpMatch, value.String("^foo"))
	if err != nil {
		t.Fatal(err)
	}
	got := positions(bm)
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestPatternIndexEquality(t *testing.T) {
	idx := NewPatternIndex()
	p1, _ := value.MakePattern("^http.*")
	p2, _ := value.MakePattern("^ftp.*")
	pushAll(idx, []value.Value{p1, p2, p1})
	bm, err := idx.Lookup(OpMatch, p1)
	if err != nil {
		t.Fatal(err)
	}
	got := positions(bm)
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestAddressIndexSubnet(t *testing.T) {
	idx := NewAddressIndex()
	pushAll(idx, []value.Value{
		value.Addr(netip.MustParseAddr("192.168.1.1")),
		value.Addr(netip.MustParseAddr("10.0.0.1")),
		value.Addr(netip.MustParseAddr("192.168.1.200")),
	})
	subnet := value.MakeSubnet(netip.MustParsePrefix("192.168.1.0/24"))
	bm, err := idx.Lookup(OpIn, subnet)
	if err != nil {
		t.Fatal(err)
	}
	got := positions(bm)
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestAddressIndexEquality(t *testing.T) {
	idx := NewAddressIndex()
	a := netip.MustParseAddr("172.16.0.5")
	pushAll(idx, []value.Value{value.Addr(a), value.Addr(netip.MustParseAddr("172.16.0.6"))})
	bm, err := idx.Lookup(OpEQ, value.Addr(a))
	if err != nil {
		t.Fatal(err)
	}
	got := positions(bm)
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestPortIndexEqualityWithWildcardProtocol(t *testing.T) {
	idx := NewPortIndex()
	pushAll(idx, []value.Value{
		value.MakePort(80, "tcp"),
		value.MakePort(80, "udp"),
		value.MakePort(443, "tcp"),
	})
	bm, err := idx.Lookup(OpEQ, value.MakePort(80, ""))
	if err != nil {
		t.Fatal(err)
	}
	got := positions(bm)
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("got %v", got)
	}

	bm, err = idx.Lookup(OpEQ, value.MakePort(80, "tcp"))
	if err != nil {
		t.Fatal(err)
	}
	got = positions(bm)
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("got %v", got)
	}
}

func TestPortIndexRange(t *testing.T) {
	idx := NewPortIndex()
	pushAll(idx, []value.Value{value.MakePort(22, ""), value.MakePort(80, ""), value.MakePort(8080, "")})
	bm, err := idx.Lookup(OpGT, value.MakePort(80, ""))
	if err != nil {
		t.Fatal(err)
	}
	got := positions(bm)
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestContainerIndexVector(t *testing.T) {
	child := NewArithmeticIndex(value.KindInt)
	idx := NewContainerIndex(child)
	pushAll(idx, []value.Value{
		value.MakeVector([]value.Value{value.Int(1), value.Int(2)}),
		value.MakeVector([]value.Value{value.Int(3), value.Int(4)}),
		value.MakeVector([]value.Value{value.Int(5)}),
	})
	bm, err := idx.Lookup(OpEQ, value.Int(4))
	if err != nil {
		t.Fatal(err)
	}
	got := positions(bm)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("got %v", got)
	}
}

func TestContainerIndexSet(t *testing.T) {
	child := NewStringIndex()
	idx := NewContainerIndex(child)
	pushAll(idx, []value.Value{
		value.MakeSet([]value.Value{value.String("a"), value.String("b")}),
		value.MakeSet([]value.Value{value.String("c")}),
	})
	bm, err := idx.Lookup(OpEQ, value.String("a"))
	if err != nil {
		t.Fatal(err)
	}
	got := positions(bm)
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("got %v", got)
	}
}
