package listcrdt

import (
	"reflect"
	"testing"
)

var allFlatAlgorithms = []Algorithm{YjsClassic, YjsMod, RGA, Sync9}

// replicate builds n empty documents for the given algorithm.
func replicate(n int, alg Algorithm) []*Doc {
	docs := make([]*Doc, n)
	for i := range docs {
		docs[i] = NewDoc(alg)
	}
	return docs
}

func mergeAll(docs []*Doc) error {
	for i := range docs {
		for j := range docs {
			if i == j {
				continue
			}
			if err := MergeInto(docs[i], docs[j]); err != nil {
				return err
			}
		}
	}
	return nil
}

func TestConvergenceTwoConcurrentInserts(t *testing.T) {
	for _, alg := range allFlatAlgorithms {
		t.Run(alg.String(), func(t *testing.T) {
			a := NewDoc(alg)
			b := NewDoc(alg)

			if _, err := a.LocalInsert("a", 0, "x"); err != nil {
				t.Fatal(err)
			}
			if _, err := b.LocalInsert("b", 0, "y"); err != nil {
				t.Fatal(err)
			}

			if err := MergeInto(a, b); err != nil {
				t.Fatalf("merge into a: %v", err)
			}
			if err := MergeInto(b, a); err != nil {
				t.Fatalf("merge into b: %v", err)
			}

			ga, gb := a.GetArray(), b.GetArray()
			if !reflect.DeepEqual(ga, gb) {
				t.Fatalf("documents diverged: a=%v b=%v", ga, gb)
			}
			if len(ga) != 2 {
				t.Fatalf("expected 2 visible items, got %v", ga)
			}
		})
	}
}

func TestConvergenceThreeReplicasAllPairsMerge(t *testing.T) {
	for _, alg := range allFlatAlgorithms {
		t.Run(alg.String(), func(t *testing.T) {
			docs := replicate(3, alg)
			agents := []string{"r0", "r1", "r2"}
			for i, d := range docs {
				for k := 0; k < 4; k++ {
					if _, err := d.LocalInsert(agents[i], d.Length(), "v"); err != nil {
						t.Fatal(err)
					}
				}
			}

			if err := mergeAll(docs); err != nil {
				t.Fatalf("merge: %v", err)
			}
			// A second round: merges are idempotent once everyone has
			// everyone else's history.
			if err := mergeAll(docs); err != nil {
				t.Fatalf("second merge round: %v", err)
			}

			want := docs[0].GetArray()
			for i := 1; i < len(docs); i++ {
				got := docs[i].GetArray()
				if !reflect.DeepEqual(got, want) {
					t.Fatalf("replica %d diverged: got %v want %v", i, got, want)
				}
			}
			if len(want) != 12 {
				t.Fatalf("expected 12 items total, got %d", len(want))
			}
		})
	}
}

func TestConvergenceWithDeletes(t *testing.T) {
	for _, alg := range allFlatAlgorithms {
		t.Run(alg.String(), func(t *testing.T) {
			a := NewDoc(alg)
			for _, s := range []string{"a", "b", "c"} {
				if _, err := a.LocalInsert("a", a.Length(), s); err != nil {
					t.Fatal(err)
				}
			}
			b := NewDoc(alg)
			if err := MergeInto(b, a); err != nil {
				t.Fatal(err)
			}

			if err := a.LocalDelete("a", 1); err != nil {
				t.Fatal(err)
			}
			if _, err := b.LocalInsert("b", 1, "z"); err != nil {
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
				t.Fatalf("documents diverged after delete: a=%v b=%v", ga, gb)
			}
		})
	}
}

func TestMergeIntoRejectsCrossAlgorithm(t *testing.T) {
	a := NewDoc(YjsClassic)
	b := NewDoc(RGA)
	err := MergeInto(a, b)
	if err == nil {
		t.Fatal("expected error merging across algorithms")
	}
	cerr, ok := err.(*Error)
	if !ok || cerr.Kind != UnsupportedOp {
		t.Fatalf("expected UnsupportedOp, got %v", err)
	}
}

func TestIntegrateRejectsCausalGap(t *testing.T) {
	d := NewDoc(YjsMod)
	bad := Item{ID: Id{Agent: "x", Seq: 1}, Content: "v", ContentPresent: true}
	err := d.Integrate(bad, -1)
	if err == nil {
		t.Fatal("expected causal gap error")
	}
	cerr, ok := err.(*Error)
	if !ok || cerr.Kind != CausalGap {
		t.Fatalf("expected CausalGap, got %v", err)
	}
}

func TestLocalDeleteIsIdempotentOnContent(t *testing.T) {
	d := NewDoc(RGA)
	if _, err := d.LocalInsert("a", 0, "x"); err != nil {
		t.Fatal(err)
	}
	if err := d.LocalDelete("a", 0); err != nil {
		t.Fatal(err)
	}
	if d.Length() != 0 {
		t.Fatalf("expected length 0 after delete, got %d", d.Length())
	}
	// Position 0 no longer names a visible item (the only entry in Content
	// is now a tombstone), so a second delete there is out of range and
	// leaves the document untouched.
	err := d.LocalDelete("a", 0)
	if cerr, ok := err.(*Error); !ok || cerr.Kind != PositionOutOfRange {
		t.Fatalf("re-deleting past the visible end should be PositionOutOfRange, got %v", err)
	}
	if d.Length() != 0 {
		t.Fatalf("expected length still 0, got %d", d.Length())
	}
}
