// Package builders 在 init 中注册内置 Node 的配置构建器。
// 配置驱动的入口处 import _ "github.com/rushteam/deckit/config/builders" 即可。
package builders

import (
	"fmt"

	"github.com/rushteam/deckit/config"
	"github.com/rushteam/deckit/core"
	"github.com/rushteam/deckit/filter"
	"github.com/rushteam/deckit/pipeline"
	"github.com/rushteam/deckit/pkg/conv"
	"github.com/rushteam/deckit/rerank"
	"github.com/rushteam/deckit/search"
)

func init() {
	config.Register("filter", BuildFilterNode)
	config.Register("rank.fuzzy", BuildFuzzyNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.dedup", BuildDedupNode)
}

// BuildFilterNode 根据配置组合过滤器：
//
//	type: filter
//	config:
//	  kind: movie            # all / movie / tv
//	  providers: [Netflix]
//	  genres: [Drama]
//	  expr: 'candidate.rating >= 6.5'
func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	filters := make([]filter.Filter, 0, 2)

	facets := core.NewFilters()
	hasFacet := false
	switch conv.ConfigGet(cfg, "kind", "") {
	case "movie":
		facets.Kind = core.KindMovie
		hasFacet = true
	case "tv":
		facets.Kind = core.KindTV
		hasFacet = true
	case "", "all":
	default:
		return nil, fmt.Errorf("unknown kind: %v", cfg["kind"])
	}
	for _, p := range conv.SliceAnyToString(cfg["providers"]) {
		facets.Providers[p] = struct{}{}
		hasFacet = true
	}
	for _, g := range conv.SliceAnyToString(cfg["genres"]) {
		facets.Genres[g] = struct{}{}
		hasFacet = true
	}
	if hasFacet {
		filters = append(filters, &filter.FacetFilter{Filters: facets})
	}

	if expr := conv.ConfigGet(cfg, "expr", ""); expr != "" {
		ef, err := filter.NewExprFilter(expr)
		if err != nil {
			return nil, fmt.Errorf("compile expr: %w", err)
		}
		filters = append(filters, ef)
	}

	return &filter.FilterNode{Filters: filters}, nil
}

// BuildFuzzyNode 构建模糊搜索排序 Node：
//
//	type: rank.fuzzy
//	config:
//	  limit: 50
//	  min_results: 3
//	  threshold: 25
//	  max_candidates: 500
func BuildFuzzyNode(cfg map[string]interface{}) (pipeline.Node, error) {
	node := search.NewFuzzyNode()
	if n := conv.ConfigGetInt(cfg, "limit", 0); n > 0 {
		node.Limit = n
	}
	if n := conv.ConfigGetInt(cfg, "min_results", 0); n > 0 {
		node.MinResults = n
	}
	if n := conv.ConfigGetInt(cfg, "threshold", 0); n > 0 {
		node.Ranker.Threshold = n
	}
	if n := conv.ConfigGetInt(cfg, "max_candidates", 0); n > 0 {
		node.Ranker.MaxCandidates = n
	}
	return node, nil
}

// BuildTopNNode 构建截断 Node。
func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	n := conv.ConfigGetInt(cfg, "n", 0)
	if n <= 0 {
		return nil, fmt.Errorf("rerank.topn: n is required")
	}
	return &rerank.TopNNode{N: n}, nil
}

// BuildDedupNode 构建去重 Node。
func BuildDedupNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.DedupNode{}, nil
}
