package rerank

import (
	"context"

	"github.com/rushteam/deckit/core"
	"github.com/rushteam/deckit/pipeline"
)

// DedupNode 按 (ID, Kind) 去重，保留首个出现，顺序不变。
// 不同媒体类型的同 ID 条目视为不同条目。
type DedupNode struct{}

func (n *DedupNode) Name() string {
	return "rerank.dedup"
}

func (n *DedupNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *DedupNode) Process(
	_ context.Context,
	_ *core.SessionContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	seen := make(map[core.Key]struct{}, len(candidates))
	out := make([]*core.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c == nil {
			continue
		}
		k := c.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}
