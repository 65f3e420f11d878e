package fugue

import (
	"reflect"
	"testing"
)

func TestSequentialTyping(t *testing.T) {
	d := NewDoc()
	for i, ch := range "hello" {
		if _, err := d.LocalInsert("author", i, string(ch)); err != nil {
			t.Fatal(err)
		}
	}
	got := d.GetArray()
	want := []string{"h", "e", "l", "l", "o"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestConcurrentInsertsConverge(t *testing.T) {
	a := NewDoc()
	b := NewDoc()
	if _, err := a.LocalInsert("a", 0, "x"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.LocalInsert("b", 0, "y"); err != nil {
		t.Fatal(err)
	}

	if err := MergeInto(a, b); err != nil {
		t.Fatal(err)
	}
	if err := MergeInto(b, a); err != nil {
		t.Fatal(err)
	}

	ga, gb := a.GetArray(), b.GetArray()
	if !reflect.DeepEqual(ga, gb) {
		t.Fatalf("diverged: a=%v b=%v", ga, gb)
	}
	if len(ga) != 2 {
		t.Fatalf("expected 2 items, got %v", ga)
	}
}

func TestDeleteThenMerge(t *testing.T) {
	base := NewDoc()
	for _, s := range []string{"a", "b", "c"} {
		if _, err := base.LocalInsert("seed", base.Length(), s); err != nil {
			t.Fatal(err)
		}
	}
	replica := NewDoc()
	if err := MergeInto(replica, base); err != nil {
		t.Fatal(err)
	}
	if err := base.LocalDelete("seed", 1); err != nil {
		t.Fatal(err)
	}
	if err := MergeInto(replica, base); err != nil {
		t.Fatal(err)
	}
	got := replica.GetArray()
	want := []string{"a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestInsertPositionOutOfRange(t *testing.T) {
	d := NewDoc()
	if _, err := d.LocalInsert("a", 3, "x"); err == nil {
		t.Fatal("expected an error for an out-of-range position")
	}
}

func TestThreeReplicaConvergence(t *testing.T) {
	docs := []*Doc{NewDoc(), NewDoc(), NewDoc()}
	agents := []string{"r0", "r1", "r2"}
	for i, d := range docs {
		for k := 0; k < 3; k++ {
			if _, err := d.LocalInsert(agents[i], d.Length(), "v"); err != nil {
				t.Fatal(err)
			}
		}
	}
	for round := 0; round < 2; round++ {
		for i := range docs {
			for j := range docs {
				if i == j {
					continue
				}
				if err := MergeInto(docs[i], docs[j]); err != nil {
					t.Fatal(err)
				}
			}
		}
	}
	want := docs[0].GetArray()
	for i := 1; i < len(docs); i++ {
		if !reflect.DeepEqual(docs[i].GetArray(), want) {
			t.Fatalf("replica %d diverged: got %v want %v", i, docs[i].GetArray(), want)
		}
	}
	if len(want) != 9 {
		t.Fatalf("expected 9 items, got %d", len(want))
	}
}
