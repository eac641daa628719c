package search

import (
	"reflect"
	"testing"

	"github.com/rushteam/deckit/core"
)

func TestRescue_PrependsByMatchStrength(t *testing.T) {
	candidates := []*core.Candidate{
		mediaItem(1, core.MediaMovie, "The Matrix", "1999", 20000, 8.2),
		mediaItem(2, core.MediaMovie, "Matrix Reloaded", "2003", 15000, 7.2),
		mediaItem(3, core.MediaMovie, "Matrix", "1998", 50, 5.1),
		mediaItem(4, core.MediaMovie, "Inception", "2010", 30000, 8.8),
	}
	ranked := []*core.Candidate{candidates[0]} // 主排序只召回了 The Matrix

	got := Rescue("matrix", candidates, ranked, 10)
	want := []string{"Matrix", "Matrix Reloaded", "The Matrix"}
	if !reflect.DeepEqual(names(got), want) {
		t.Fatalf("Rescue = %v, want %v", names(got), want)
	}
}

func TestRescue_PreservesRankedOrder(t *testing.T) {
	a := mediaItem(1, core.MediaMovie, "Alien", "1979", 1, 1)
	b := mediaItem(2, core.MediaMovie, "Aliens", "1986", 1, 1)
	ranked := []*core.Candidate{b, a} // 主排序已有顺序原样保留

	got := Rescue("predator", []*core.Candidate{a, b}, ranked, 10)
	if !reflect.DeepEqual(names(got), []string{"Aliens", "Alien"}) {
		t.Fatalf("Rescue reordered ranked results: %v", names(got))
	}
}

func TestRescue_EmptyQueryTruncatesRanked(t *testing.T) {
	ranked := []*core.Candidate{
		mediaItem(1, core.MediaMovie, "A", "", 1, 1),
		mediaItem(2, core.MediaMovie, "B", "", 1, 1),
	}
	got := Rescue("", nil, ranked, 1)
	if !reflect.DeepEqual(names(got), []string{"A"}) {
		t.Fatalf("Rescue with empty query = %v", names(got))
	}
}

func TestRescue_RespectsLimit(t *testing.T) {
	candidates := []*core.Candidate{
		mediaItem(1, core.MediaMovie, "Matrix", "1998", 1, 1),
		mediaItem(2, core.MediaMovie, "Matrix Reloaded", "2003", 1, 1),
	}
	got := Rescue("matrix", candidates, nil, 1)
	if !reflect.DeepEqual(names(got), []string{"Matrix"}) {
		t.Fatalf("Rescue with limit 1 = %v", names(got))
	}
	if got := Rescue("matrix", candidates, nil, 0); got != nil {
		t.Fatalf("Rescue with limit 0 = %v, want nil", names(got))
	}
}

func TestFuzzyNode_RescueBelowMinimum(t *testing.T) {
	node := NewFuzzyNode()
	sctx := &core.SessionContext{Params: map[string]interface{}{"query": "matrix"}}
	candidates := []*core.Candidate{
		mediaItem(1, core.MediaMovie, "Matrix", "1998", 10, 5.0),
		mediaItem(2, core.MediaMovie, "Unrelated Title", "2000", 10, 5.0),
	}

	got, err := node.Process(nil, sctx, candidates)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(got) == 0 || got[0].Name != "Matrix" {
		t.Fatalf("Process = %v, want Matrix recalled", names(got))
	}
}
