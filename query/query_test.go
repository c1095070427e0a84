package query

import (
	"context"
	"net/netip"
	"testing"
	"time"

	"github.com/sangminoh/vast/index"
	"github.com/sangminoh/vast/value"
)

func mustParse(t *testing.T, src string) Query {
	t.Helper()
	q, err := Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return q
}

func TestScenario3AddressAndDuration(t *testing.T) {
	addrIdx := index.NewAddressIndex()
	durIdx := index.NewArithmeticIndex(value.KindDuration)

	addrs := []netip.Addr{
		netip.MustParseAddr("192.168.1.5"),
		netip.MustParseAddr("192.168.1.5"),
		netip.MustParseAddr("10.0.0.1"),
	}
	durs := []time.Duration{1500 * time.Millisecond, 500 * time.Millisecond, 2000 * time.Millisecond}
	for i := range addrs {
		av := value.Addr(addrs[i])
		dv := value.Dur(durs[i])
		addrIdx.Push(&av)
		durIdx.Push(&dv)
	}

	schema := &Schema{Fields: map[string]value.Kind{
		"conn.id.resp_h": value.KindAddress,
		"conn.duration":  value.KindDuration,
	}}
	indexes := &IndexSet{Indexes: map[string]index.Index{
		"conn.id.resp_h": addrIdx,
		"conn.duration":  durIdx,
	}}

	q := mustParse(t, `conn.id.resp_h in 192.168.0.0/16 && conn.duration > 1s`)
	normalized := Normalize(q)
	node, err := Validate(normalized, schema)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	compiled, err := Compile(node, indexes)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	bm, err := Execute(context.Background(), compiled)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if bm.Size() != 3 {
		t.Fatalf("size = %d, want 3", bm.Size())
	}
	want := []bool{true, false, false}
	for i, w := range want {
		if bm.Get(uint64(i)) != w {
			t.Errorf("bit %d = %v, want %v", i, bm.Get(uint64(i)), w)
		}
	}
	ids := Select(bm)
	if len(ids) != 1 || ids[0] != 0 {
		t.Fatalf("selected ids = %v, want [0]", ids)
	}
}

func TestScenario6TagNameMatch(t *testing.T) {
	nameIdx := index.NewStringIndex()
	for _, name := range []string{"http_req", "dns", "http_resp"} {
		v := value.String(name)
		nameIdx.Push(&v)
	}

	indexes := &IndexSet{Indexes: map[string]index.Index{
		string(TagName): nameIdx,
	}}

	q := mustParse(t, `&name ~ /http.*/`)
	normalized := Normalize(q)
	node, err := Validate(normalized, nil)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	compiled, err := Compile(node, indexes)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	bm, err := Execute(context.Background(), compiled)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := []bool{true, false, true}
	for i, w := range want {
		if bm.Get(uint64(i)) != w {
			t.Errorf("bit %d = %v, want %v", i, bm.Get(uint64(i)), w)
		}
	}
}

func TestNegationPushesToLeaf(t *testing.T) {
	q := mustParse(t, `!(conn.duration == 1s)`)
	normalized := Normalize(q)
	leaf, ok := normalized.(EventClause)
	if !ok {
		t.Fatalf("got %T, want EventClause", normalized)
	}
	if leaf.Op != RelNE {
		t.Fatalf("negated == should become !=, got %s", leaf.Op)
	}
}

func TestDeMorganOnBinaryQuery(t *testing.T) {
	q := mustParse(t, `!(conn.duration == 1s && conn.duration == 2s)`)
	normalized := Normalize(q)
	bq, ok := normalized.(BinaryQuery)
	if !ok {
		t.Fatalf("got %T, want BinaryQuery", normalized)
	}
	if bq.Op != "||" {
		t.Fatalf("De Morgan should flip && to ||, got %s", bq.Op)
	}
}

func TestValidateUnknownFieldFails(t *testing.T) {
	q := mustParse(t, `foo.bar == 1`)
	schema := &Schema{Fields: map[string]value.Kind{}}
	if _, err := Validate(Normalize(q), schema); err == nil {
		t.Fatal("expected validation error for unknown field")
	}
}

func TestValidateIllegalOperatorFails(t *testing.T) {
	q := mustParse(t, `conn.proto ~ /tcp/`)
	schema := &Schema{Fields: map[string]value.Kind{"conn.proto": value.KindInt}}
	if _, err := Validate(Normalize(q), schema); err == nil {
		t.Fatal("expected validation error for ~ on an int field")
	}
}
