package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/deckit/core"
)

func item(id int64, kind core.MediaKind) *core.Candidate {
	return core.NewCandidate(id, kind)
}

func TestTopNNode(t *testing.T) {
	in := []*core.Candidate{item(1, core.MediaMovie), item(2, core.MediaMovie), item(3, core.MediaMovie)}

	out, err := (&TopNNode{N: 2}).Process(context.Background(), nil, in)
	if err != nil || len(out) != 2 {
		t.Fatalf("TopN(2) = %d items, err=%v", len(out), err)
	}
	if out[0].ID != 1 || out[1].ID != 2 {
		t.Errorf("TopN must keep head order, got [%d %d]", out[0].ID, out[1].ID)
	}

	// N<=0 或候选不足时原样放行
	out, err = (&TopNNode{}).Process(context.Background(), nil, in)
	if err != nil || len(out) != 3 {
		t.Errorf("TopN(0) = %d items, err=%v, want passthrough", len(out), err)
	}
}

func TestDedupNode(t *testing.T) {
	in := []*core.Candidate{
		item(1, core.MediaMovie),
		item(1, core.MediaTV), // 同 ID 不同类型保留
		item(1, core.MediaMovie),
		nil,
		item(2, core.MediaMovie),
	}

	out, err := (&DedupNode{}).Process(context.Background(), nil, in)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}
	wantKeys := []core.Key{
		{ID: 1, Kind: core.MediaMovie},
		{ID: 1, Kind: core.MediaTV},
		{ID: 2, Kind: core.MediaMovie},
	}
	for i, k := range wantKeys {
		if out[i].Key() != k {
			t.Errorf("out[%d] = %v, want %v", i, out[i].Key(), k)
		}
	}
}
