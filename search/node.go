package search

import (
	"context"

	"github.com/rushteam/deckit/core"
	"github.com/rushteam/deckit/pipeline"
)

const (
	// DefaultLimit 搜索结果默认条数上限。
	DefaultLimit = 50
	// DefaultMinResults 主排序结果低于该数量时触发兜底匹配。
	DefaultMinResults = 3
)

// FuzzyNode 是模糊搜索排序 Node：从会话上下文取查询词，
// 对上游候选排序截断，结果过稀时追加兜底匹配。
type FuzzyNode struct {
	Ranker *Ranker
	// Limit 结果条数上限，<=0 时用 DefaultLimit。
	Limit int
	// MinResults 兜底触发阈值，<=0 时用 DefaultMinResults。
	MinResults int
}

func NewFuzzyNode() *FuzzyNode {
	return &FuzzyNode{
		Ranker:     NewRanker(),
		Limit:      DefaultLimit,
		MinResults: DefaultMinResults,
	}
}

func (n *FuzzyNode) Name() string {
	return "rank.fuzzy"
}

func (n *FuzzyNode) Kind() pipeline.Kind {
	return pipeline.KindRank
}

func (n *FuzzyNode) Process(
	_ context.Context,
	sctx *core.SessionContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	r := n.Ranker
	if r == nil {
		r = NewRanker()
	}
	limit := n.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	minResults := n.MinResults
	if minResults <= 0 {
		minResults = DefaultMinResults
	}

	query := ""
	if sctx != nil {
		query = sctx.Query()
	}

	ranked := r.Rank(query, candidates, limit)
	if query != "" && len(ranked) < minResults {
		ranked = Rescue(query, candidates, ranked, limit)
	}
	return ranked, nil
}
