// Package rerank 提供重排 Node：截断、去重等对已排序候选集的收尾处理。
package rerank

import (
	"context"

	"github.com/rushteam/deckit/core"
	"github.com/rushteam/deckit/pipeline"
)

// TopNNode 截断候选集，只保留前 N 个。
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.SessionContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if n.N <= 0 || len(candidates) <= n.N {
		return candidates, nil
	}
	return candidates[:n.N], nil
}
